package capture

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/vova616/screenshot"

	"github.com/soocke/critter-bot-go/domain/battle"
	"github.com/soocke/critter-bot-go/domain/vision"
)

// Source grabs a fresh frame of the bound viewport on every call. Captures
// are synchronous on the caller's goroutine; nothing is cached, so every
// decision downstream sees current pixels.
type Source struct {
	logger   *slog.Logger
	viewport *Viewport

	captures     atomic.Uint64
	failures     atomic.Uint64
	captureNanos atomic.Uint64
}

var _ battle.FrameSource = (*Source)(nil)

// SourceStats summarises capture behaviour for instrumentation.
type SourceStats struct {
	Captures   uint64
	Failures   uint64
	AvgCapture time.Duration
}

func NewSource(logger *slog.Logger, viewport *Viewport) *Source {
	return &Source{logger: logger, viewport: viewport}
}

// Capture grabs the viewport. A failed grab is treated as viewport loss:
// the window closing or minimizing is the only way this fails in practice,
// and the session must halt on it.
func (s *Source) Capture(ctx context.Context) (*vision.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	img, err := screenshot.CaptureRect(s.viewport.Rect())
	if err != nil {
		s.failures.Add(1)
		return nil, fmt.Errorf("capture: grab %v: %w: %v", s.viewport.Rect(), battle.ErrViewportLost, err)
	}
	s.captures.Add(1)
	s.captureNanos.Add(uint64(time.Since(start).Nanoseconds()))
	return &vision.Frame{Img: img, CapturedAt: time.Now()}, nil
}

// Stats returns capture counters.
func (s *Source) Stats() SourceStats {
	captures := s.captures.Load()
	var avg time.Duration
	if total := s.captureNanos.Load(); captures > 0 && total > 0 {
		avg = time.Duration(total / captures)
	}
	return SourceStats{
		Captures:   captures,
		Failures:   s.failures.Load(),
		AvgCapture: avg,
	}
}

// LogStats writes the capture counters to the structured log.
func (s *Source) LogStats() {
	stats := s.Stats()
	s.logger.Debug("capture stats",
		slog.Uint64("captures", stats.Captures),
		slog.Uint64("failures", stats.Failures),
		slog.Duration("avg_capture", stats.AvgCapture),
	)
}
