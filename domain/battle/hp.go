package battle

import (
	"image"
	"log/slog"

	"gocv.io/x/gocv"

	"github.com/soocke/critter-bot-go/config"
	"github.com/soocke/critter-bot-go/domain/vision"
)

// Alive-bar hue bands in OpenCV HSV units. A health bar drains right to
// left and recolors from green through yellow to red as it empties.
const (
	hpSatMin = 45.0
	hpValMin = 60.0
)

type hueBand struct{ lo, hi float64 }

var hpAliveBands = []hueBand{
	{35, 95},   // green
	{20, 35},   // yellow
	{0, 10},    // red, low end
	{160, 180}, // red, wrap-around
}

// HPExtractor reads the enemy health bar fill from a thin bar ROI.
type HPExtractor struct {
	logger *slog.Logger
	roi    config.ROI
}

// NewHPExtractor builds an extractor for the configured bar rectangle.
func NewHPExtractor(logger *slog.Logger, roi config.ROI) *HPExtractor {
	return &HPExtractor{logger: logger, roi: roi}
}

// Extract finds each row's rightmost alive-colored pixel and averages the
// offsets, normalized by bar width. A bar with no qualifying pixel anywhere
// reads unknown, never 0 or 100: an empty bar and a mislocated ROI look the
// same pixel-wise and only the caller can decide which it is.
func (e *HPExtractor) Extract(frame *vision.Frame) (vision.Reading, error) {
	mat, err := vision.MatFromFrame(frame)
	if err != nil {
		return vision.Unknown(), err
	}
	defer mat.Close()

	region, ok := vision.CropROI(mat, image.Rect(e.roi.X, e.roi.Y, e.roi.X+e.roi.W, e.roi.Y+e.roi.H))
	if !ok {
		return vision.Unknown(), ErrMeasurementUnavailable
	}
	defer region.Close()

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(region, &hsv, gocv.ColorBGRToHSV)

	rows := hsv.Rows()
	cols := hsv.Cols()
	if rows == 0 || cols == 0 {
		return vision.Unknown(), ErrMeasurementUnavailable
	}

	sum := 0.0
	counted := 0
	for y := 0; y < rows; y++ {
		for x := cols - 1; x >= 0; x-- {
			px := hsv.GetVecbAt(y, x)
			if isAlivePixel(float64(px[0]), float64(px[1]), float64(px[2])) {
				sum += float64(x + 1)
				counted++
				break
			}
		}
	}
	if counted == 0 {
		return vision.Unknown(), nil
	}
	percent := sum / float64(counted) / float64(cols) * 100
	reading := vision.KnownPercent(percent)
	e.logger.Debug("hp extracted",
		slog.Float64("percent", reading.Percent),
		slog.Int("rows_counted", counted),
	)
	return reading, nil
}

func isAlivePixel(h, s, v float64) bool {
	if s < hpSatMin || v < hpValMin {
		return false
	}
	for _, b := range hpAliveBands {
		if h >= b.lo && h <= b.hi {
			return true
		}
	}
	return false
}
