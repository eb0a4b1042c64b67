package battle

import (
	"image"
	"image/color"
	"image/draw"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/soocke/critter-bot-go/config"
	"github.com/soocke/critter-bot-go/domain/vision"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testFrame builds a dark frame and paints the given rect with c.
func testFrame(w, h int, rect image.Rectangle, c color.RGBA) *vision.Frame {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{color.RGBA{20, 20, 20, 255}}, image.Point{}, draw.Src)
	draw.Draw(img, rect, &image.Uniform{c}, image.Point{}, draw.Src)
	return &vision.Frame{Img: img, CapturedAt: time.Now()}
}

func TestHPExtract_PartialBar(t *testing.T) {
	roi := config.ROI{X: 10, Y: 10, W: 100, H: 8}
	// Bar filled green for the left 60 of 100 columns.
	frame := testFrame(200, 100, image.Rect(10, 10, 70, 18), color.RGBA{30, 220, 30, 255})

	e := NewHPExtractor(discardLogger(), roi)
	reading, err := e.Extract(frame)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !reading.Known {
		t.Fatal("reading unknown, want known")
	}
	if reading.Percent < 55 || reading.Percent > 65 {
		t.Errorf("percent = %v, want ~60", reading.Percent)
	}
}

func TestHPExtract_NoQualifyingPixelIsUnknown(t *testing.T) {
	roi := config.ROI{X: 10, Y: 10, W: 100, H: 8}
	// Nothing but the dark background inside the ROI.
	frame := testFrame(200, 100, image.Rectangle{}, color.RGBA{})

	e := NewHPExtractor(discardLogger(), roi)
	reading, err := e.Extract(frame)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if reading.Known {
		t.Errorf("reading = %+v, want unknown (never 0 or 100)", reading)
	}
}

func TestIsAlivePixel(t *testing.T) {
	cases := []struct {
		name    string
		h, s, v float64
		want    bool
	}{
		{name: "saturated green", h: 60, s: 200, v: 200, want: true},
		{name: "yellow band", h: 25, s: 120, v: 150, want: true},
		{name: "red low end", h: 5, s: 150, v: 150, want: true},
		{name: "red wrap-around", h: 170, s: 150, v: 150, want: true},
		{name: "washed out", h: 60, s: 10, v: 200, want: false},
		{name: "too dark", h: 60, s: 200, v: 20, want: false},
		{name: "blue is not alive", h: 110, s: 200, v: 200, want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isAlivePixel(tc.h, tc.s, tc.v); got != tc.want {
				t.Errorf("isAlivePixel(%v,%v,%v) = %v, want %v", tc.h, tc.s, tc.v, got, tc.want)
			}
		})
	}
}
