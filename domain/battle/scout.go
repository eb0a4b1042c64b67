package battle

import (
	"context"
	"image"
	"log/slog"

	"gocv.io/x/gocv"

	"github.com/soocke/critter-bot-go/config"
	"github.com/soocke/critter-bot-go/domain/vision"
)

// SpotFinder locates the next encounter spot on screen while searching.
type SpotFinder interface {
	// Find returns the click point of the best spot match, or ok=false
	// when no spot scores above the threshold.
	Find(ctx context.Context) (config.Point, bool, error)
}

// Scout template-matches the configured spot image against a half-scale
// frame. Matching small keeps the search tick cheap; the hit location is
// scaled back up before clicking.
type Scout struct {
	logger    *slog.Logger
	source    FrameSource
	templates *vision.TemplateStore
	name      string
	threshold float64
}

var _ SpotFinder = (*Scout)(nil)

func NewScout(logger *slog.Logger, source FrameSource, templates *vision.TemplateStore, cfg *config.Config) *Scout {
	return &Scout{
		logger:    logger,
		source:    source,
		templates: templates,
		name:      cfg.SpotTemplate,
		threshold: cfg.SpotThreshold,
	}
}

func (s *Scout) Find(ctx context.Context) (config.Point, bool, error) {
	tpl, ok := s.templates.Get(s.name)
	if !ok {
		return config.Point{}, false, nil
	}
	frame, err := s.source.Capture(ctx)
	if err != nil {
		return config.Point{}, false, err
	}
	mat, err := vision.MatFromFrame(frame)
	if err != nil {
		return config.Point{}, false, err
	}
	defer mat.Close()

	small := gocv.NewMat()
	defer small.Close()
	gocv.Resize(mat, &small, image.Point{}, 0.5, 0.5, gocv.InterpolationLinear)

	tplSmall := gocv.NewMat()
	defer tplSmall.Close()
	gocv.Resize(tpl, &tplSmall, image.Point{}, 0.5, 0.5, gocv.InterpolationLinear)

	score, loc, fits := vision.MatchTemplate(small, tplSmall)
	if !fits || score < s.threshold {
		s.logger.Debug("scanning", slog.Float64("score", score))
		return config.Point{}, false, nil
	}

	center := config.Point{
		X: loc.X*2 + tpl.Cols()/2,
		Y: loc.Y*2 + tpl.Rows()/2,
	}
	s.logger.Info("spot found",
		slog.Float64("score", score),
		slog.Int("x", center.X),
		slog.Int("y", center.Y),
	)
	return center, true, nil
}
