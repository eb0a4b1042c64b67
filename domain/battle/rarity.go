package battle

import (
	"image"
	"log/slog"

	"gocv.io/x/gocv"

	"github.com/soocke/critter-bot-go/domain/vision"
)

// The enemy HUD sits near the top-mid-right of the viewport; the rarity is
// encoded in the color of the wedge over the portrait's top-left corner.
const (
	hudXLo, hudXHi = 0.58, 0.97
	hudYLo, hudYHi = 0.03, 0.20

	portraitMinArea   = 1800.0
	portraitMaxArea   = 30000.0
	portraitMinAspect = 0.85
	portraitMaxAspect = 1.15

	wedgeFrac = 0.45
)

// RarityResult is a classified rarity with a confidence score.
type RarityResult struct {
	Rarity     Rarity
	Confidence float64
	Known      bool
}

// RarityClassifier reads the enemy rarity from the HUD portrait wedge.
type RarityClassifier struct {
	logger *slog.Logger
}

func NewRarityClassifier(logger *slog.Logger) *RarityClassifier {
	return &RarityClassifier{logger: logger}
}

// Classify locates the portrait inside the HUD region, samples its top-left
// wedge, and maps the mean hue to a rarity. When no square contour
// qualifies, a fixed-offset guess near the HUD's top-right corner stands in.
func (c *RarityClassifier) Classify(frame *vision.Frame) (RarityResult, error) {
	mat, err := vision.MatFromFrame(frame)
	if err != nil {
		return RarityResult{}, err
	}
	defer mat.Close()

	bounds := image.Rect(0, 0, mat.Cols(), mat.Rows())
	hud := vision.RelROI(bounds, hudXLo, hudYLo, hudXHi, hudYHi)
	region, ok := vision.CropROI(mat, hud)
	if !ok {
		return RarityResult{}, ErrMeasurementUnavailable
	}
	defer region.Close()

	portrait, found := findPortrait(region)
	if !found {
		portrait = fallbackPortrait(hud.Dx(), hud.Dy())
	}

	pr, ok := vision.CropROI(region, portrait)
	if !ok {
		return RarityResult{}, ErrMeasurementUnavailable
	}
	defer pr.Close()

	wedge, ok := vision.CropROI(pr, image.Rect(0, 0,
		int(float64(portrait.Dx())*wedgeFrac),
		int(float64(portrait.Dy())*wedgeFrac)))
	if !ok {
		return RarityResult{}, ErrMeasurementUnavailable
	}
	defer wedge.Close()

	h, s, v := vision.MeanHSV(wedge)
	rarity, conf := classifyWedge(h, s, v)
	c.logger.Debug("rarity classified",
		slog.String("rarity", rarity.String()),
		slog.Float64("confidence", conf),
		slog.Float64("hue", h),
		slog.Float64("sat", s),
		slog.Bool("portrait_contour", found),
	)
	return RarityResult{Rarity: rarity, Confidence: conf, Known: true}, nil
}

// findPortrait searches the HUD crop for the largest near-square contour
// within the portrait size band.
func findPortrait(region gocv.Mat) (image.Rectangle, bool) {
	best := image.Rectangle{}
	bestArea := 0.0
	for _, b := range vision.EdgeBoxes(region) {
		boxArea := float64(b.Rect.Dx() * b.Rect.Dy())
		if boxArea < portraitMinArea || boxArea > portraitMaxArea {
			continue
		}
		aspect := float64(b.Rect.Dx()) / float64(max(1, b.Rect.Dy()))
		if aspect < portraitMinAspect || aspect > portraitMaxAspect {
			continue
		}
		if boxArea > bestArea {
			bestArea = boxArea
			best = b.Rect
		}
	}
	return best, bestArea > 0
}

// fallbackPortrait guesses a square inset from the HUD's top-right corner.
func fallbackPortrait(w, h int) image.Rectangle {
	size := min(w, h) * 45 / 100
	if size < 60 {
		size = 60
	}
	x := w - size - 10
	if x < 0 {
		x = 0
	}
	return image.Rect(x, 10, x+size, 10+size)
}

// classifyWedge maps the wedge's mean HSV to a rarity. The first block is
// the confident hue-band table; the second is a nearest-plausible fallback
// for washed-out or off-band readings.
func classifyWedge(h, s, v float64) (Rarity, float64) {
	switch {
	case s < 40 && v > 80:
		return RarityCommon, 0.90
	case h >= 95 && h <= 130 && s >= 60:
		return RarityRare, 0.85
	case h >= 45 && h <= 85 && s >= 55:
		return RarityEpic, 0.85
	case h >= 20 && h <= 40 && s >= 60:
		return RarityLegendary, 0.85
	case (h >= 145 && h <= 175 || h <= 10) && s >= 50:
		return RarityExotic, 0.80
	}
	switch {
	case s < 45:
		return RarityCommon, 0.55
	case h < 20 || h > 150:
		return RarityExotic, 0.55
	case h < 45:
		return RarityLegendary, 0.55
	case h < 95:
		return RarityEpic, 0.55
	default:
		return RarityRare, 0.55
	}
}
