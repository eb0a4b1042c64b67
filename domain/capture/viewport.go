// Package capture binds the game window and grabs frames from it.
package capture

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/go-vgo/robotgo"
)

// Viewport is the screen rectangle of the bound game window. Geometry is
// queried once at bind time and on explicit Refresh; the game runs
// windowed and is not expected to move mid-session.
type Viewport struct {
	logger *slog.Logger
	pid    int
	name   string
	rect   image.Rectangle
}

// BindViewport locates the game process by name, raises its window, and
// records its bounds.
func BindViewport(logger *slog.Logger, processName string) (*Viewport, error) {
	pids, err := robotgo.FindIds(processName)
	if err != nil {
		return nil, fmt.Errorf("capture: find process %q: %w", processName, err)
	}
	if len(pids) == 0 {
		return nil, fmt.Errorf("capture: process %q not running", processName)
	}
	pid := pids[0]
	if err := robotgo.ActivePid(pid); err != nil {
		logger.Warn("could not raise game window", slog.Any("error", err))
	}
	v := &Viewport{logger: logger, pid: pid, name: processName}
	if err := v.Refresh(); err != nil {
		return nil, err
	}
	logger.Info("viewport bound",
		slog.String("process", processName),
		slog.Int("pid", pid),
		slog.Int("width", v.rect.Dx()),
		slog.Int("height", v.rect.Dy()),
	)
	return v, nil
}

// Refresh re-queries the window bounds. Fails when the window is gone.
func (v *Viewport) Refresh() error {
	x, y, w, h := robotgo.GetBounds(v.pid)
	if w <= 0 || h <= 0 {
		return fmt.Errorf("capture: window for %q (pid %d) has no bounds", v.name, v.pid)
	}
	v.rect = image.Rect(x, y, x+w, y+h)
	return nil
}

// Rect returns the viewport screen rectangle.
func (v *Viewport) Rect() image.Rectangle { return v.rect }

// Origin returns the screen coordinates of the viewport's top-left corner,
// the offset for all viewport-relative click bindings.
func (v *Viewport) Origin() (int, int) { return v.rect.Min.X, v.rect.Min.Y }
