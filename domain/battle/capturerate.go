package battle

import (
	"image"
	"log/slog"
	"regexp"
	"strconv"

	"gocv.io/x/gocv"

	"github.com/soocke/critter-bot-go/config"
	"github.com/soocke/critter-bot-go/domain/vision"
)

var leadingPercentRe = regexp.MustCompile(`(\d{1,3})\s*%?`)

// CaptureRateExtractor reads the displayed capture-rate percentage from its
// HUD ROI. Primary path is OCR over a binarized crop; when the OCR engine
// is unavailable a coarse brightness heuristic stands in.
type CaptureRateExtractor struct {
	logger *slog.Logger
	roi    config.ROI
	ocr    *vision.OCR
}

// NewCaptureRateExtractor builds the extractor. ocr may be disabled.
func NewCaptureRateExtractor(logger *slog.Logger, roi config.ROI, ocr *vision.OCR) *CaptureRateExtractor {
	return &CaptureRateExtractor{logger: logger, roi: roi, ocr: ocr}
}

// Extract returns the capture rate in [0,100], or unknown when neither the
// OCR path nor the fallback produces a usable value.
func (e *CaptureRateExtractor) Extract(frame *vision.Frame) (vision.Reading, error) {
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

	if e.ocr.Available() {
		if reading, ok := e.ocrRead(region); ok {
			return reading, nil
		}
	}
	if reading, ok := e.brightnessRead(region); ok {
		e.logger.Debug("capture rate from brightness fallback",
			slog.Float64("percent", reading.Percent))
		return reading, nil
	}
	return vision.Unknown(), nil
}

// ocrRead binarizes the crop with an Otsu threshold, flips it when the text
// came out light-on-dark, and runs constrained digit recognition.
func (e *CaptureRateExtractor) ocrRead(region gocv.Mat) (vision.Reading, bool) {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(region, &gray, gocv.ColorBGRToGray)

	bin := gocv.NewMat()
	defer bin.Close()
	gocv.Threshold(gray, &bin, 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu)

	// Tesseract wants dark text on a light background. When most pixels
	// came out black the text is the light part, so invert.
	total := bin.Rows() * bin.Cols()
	if total == 0 {
		return vision.Unknown(), false
	}
	if float64(gocv.CountNonZero(bin))/float64(total) < 0.5 {
		gocv.BitwiseNot(bin, &bin)
	}

	img, err := bin.ToImage()
	if err != nil {
		return vision.Unknown(), false
	}
	text, err := e.ocr.ReadDigits(img)
	if err != nil {
		return vision.Unknown(), false
	}
	percent, ok := parseLeadingPercent(text)
	if !ok {
		return vision.Unknown(), false
	}
	e.logger.Debug("capture rate from ocr",
		slog.String("text", text),
		slog.Int("percent", percent))
	return vision.KnownPercent(float64(percent)), true
}

// brightnessRead buckets the crop's mean brightness into a coarse 25/50/75
// estimate. Better than nothing when OCR is out, still explicit enough for
// the rating resolver to reject via its tolerance.
func (e *CaptureRateExtractor) brightnessRead(region gocv.Mat) (vision.Reading, bool) {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(region, &gray, gocv.ColorBGRToGray)
	if gray.Rows() == 0 || gray.Cols() == 0 {
		return vision.Unknown(), false
	}
	mean := gray.Mean().Val1
	switch {
	case mean < 64:
		return vision.Unknown(), false
	case mean < 120:
		return vision.KnownPercent(25), true
	case mean < 180:
		return vision.KnownPercent(50), true
	default:
		return vision.KnownPercent(75), true
	}
}

// parseLeadingPercent extracts the first integer in the recognized text and
// clamps it to [0,100].
func parseLeadingPercent(text string) (int, bool) {
	m := leadingPercentRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	if n < 0 {
		n = 0
	}
	if n > 100 {
		n = 100
	}
	return n, true
}
