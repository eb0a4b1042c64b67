package battle

import (
	"context"
	"time"

	"github.com/soocke/critter-bot-go/domain/vision"
)

// FrameSource delivers a fresh pixel snapshot of the bound viewport. A
// failed capture means the viewport is gone and must halt the session.
type FrameSource interface {
	Capture(ctx context.Context) (*vision.Frame, error)
}

// Perception bundles the per-tick reads the controller makes. Every call
// takes a fresh frame; nothing is cached between calls, so decisions never
// act on stale pixels.
type Perception interface {
	// Tick captures a frame and advances phase detection.
	Tick(ctx context.Context) (DetectionResult, error)
	// HP, CaptureRate and Rarity measure their fixed regions on a fresh
	// frame.
	HP(ctx context.Context) (vision.Reading, error)
	CaptureRate(ctx context.Context) (vision.Reading, error)
	Rarity(ctx context.Context) (RarityResult, error)
	// Reset clears phase hysteresis at an encounter boundary.
	Reset(now time.Time)
}

// Perceptor implements Perception over a FrameSource and the extractors.
type Perceptor struct {
	source   FrameSource
	detector *Detector
	hp       *HPExtractor
	rate     *CaptureRateExtractor
	rarity   *RarityClassifier
}

var _ Perception = (*Perceptor)(nil)

func NewPerceptor(source FrameSource, detector *Detector, hp *HPExtractor, rate *CaptureRateExtractor, rarity *RarityClassifier) *Perceptor {
	return &Perceptor{
		source:   source,
		detector: detector,
		hp:       hp,
		rate:     rate,
		rarity:   rarity,
	}
}

func (p *Perceptor) Tick(ctx context.Context) (DetectionResult, error) {
	frame, err := p.source.Capture(ctx)
	if err != nil {
		return DetectionResult{}, err
	}
	return p.detector.Detect(frame)
}

func (p *Perceptor) HP(ctx context.Context) (vision.Reading, error) {
	frame, err := p.source.Capture(ctx)
	if err != nil {
		return vision.Unknown(), err
	}
	return p.hp.Extract(frame)
}

func (p *Perceptor) CaptureRate(ctx context.Context) (vision.Reading, error) {
	frame, err := p.source.Capture(ctx)
	if err != nil {
		return vision.Unknown(), err
	}
	return p.rate.Extract(frame)
}

func (p *Perceptor) Rarity(ctx context.Context) (RarityResult, error) {
	frame, err := p.source.Capture(ctx)
	if err != nil {
		return RarityResult{}, err
	}
	return p.rarity.Classify(frame)
}

func (p *Perceptor) Reset(now time.Time) {
	p.detector.Reset(now)
}
