package vision

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"log/slog"

	"github.com/nfnt/resize"
	"github.com/otiai10/gosseract"
)

// OCR wraps a tesseract client. The engine is optional: when the client
// cannot be created the wrapper stays usable and every read reports
// unavailable, letting callers fall back to pixel heuristics.
type OCR struct {
	logger *slog.Logger
	client *gosseract.Client
}

// NewOCR probes the tesseract runtime. A failed probe returns a disabled
// wrapper, not an error.
func NewOCR(logger *slog.Logger) *OCR {
	o := &OCR{logger: logger}
	func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Warn("ocr unavailable", slog.Any("reason", r))
				o.client = nil
			}
		}()
		o.client = gosseract.NewClient()
	}()
	if o.client != nil {
		logger.Info("ocr engine ready")
	}
	return o
}

// Available reports whether the tesseract engine loaded.
func (o *OCR) Available() bool { return o != nil && o.client != nil }

// ReadDigits recognizes a digits-and-percent string from the given image.
// The crop is upscaled 3x before recognition; small HUD text is otherwise
// below tesseract's reliable size.
func (o *OCR) ReadDigits(img image.Image) (string, error) {
	return o.read(img, "0123456789%")
}

// ReadWords recognizes free text from the given image.
func (o *OCR) ReadWords(img image.Image) (string, error) {
	return o.read(img, "")
}

func (o *OCR) read(img image.Image, whitelist string) (string, error) {
	if !o.Available() {
		return "", fmt.Errorf("vision: ocr engine not available")
	}
	big := resize.Resize(uint(img.Bounds().Dx()*3), 0, img, resize.Bilinear)
	var buf bytes.Buffer
	if err := png.Encode(&buf, big); err != nil {
		return "", fmt.Errorf("vision: encode ocr crop: %w", err)
	}
	if err := o.client.SetWhitelist(whitelist); err != nil {
		return "", fmt.Errorf("vision: set ocr whitelist: %w", err)
	}
	if err := o.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("vision: set ocr image: %w", err)
	}
	text, err := o.client.Text()
	if err != nil {
		return "", fmt.Errorf("vision: ocr text: %w", err)
	}
	return text, nil
}

// Close releases the tesseract client.
func (o *OCR) Close() {
	if o != nil && o.client != nil {
		o.client.Close()
		o.client = nil
	}
}
