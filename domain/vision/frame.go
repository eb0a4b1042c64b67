package vision

import (
	"fmt"
	"image"
	"time"

	"gocv.io/x/gocv"
)

// Frame is an immutable pixel snapshot of the bound viewport.
type Frame struct {
	Img        *image.RGBA
	CapturedAt time.Time
}

// Bounds returns the pixel bounds of the frame.
func (f *Frame) Bounds() image.Rectangle {
	if f == nil || f.Img == nil {
		return image.Rectangle{}
	}
	return f.Img.Bounds()
}

// Reading is an explicit present/absent measurement result. Extractors
// return Known=false instead of guessing 0 or 100 when no usable signal
// exists.
type Reading struct {
	Percent float64
	Known   bool
}

// KnownPercent builds a Reading clamped to [0,100].
func KnownPercent(p float64) Reading {
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	return Reading{Percent: p, Known: true}
}

// Unknown is the absent Reading.
func Unknown() Reading { return Reading{} }

// MatFromFrame converts the frame into a 3-channel BGR Mat for OpenCV
// processing. The caller owns the returned Mat and must Close it.
func MatFromFrame(f *Frame) (gocv.Mat, error) {
	if f == nil || f.Img == nil {
		return gocv.Mat{}, fmt.Errorf("vision: nil frame")
	}
	mat, err := gocv.ImageToMatRGB(f.Img)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("vision: convert frame: %w", err)
	}
	return mat, nil
}

// CropROI returns the sub-mat of m for the given rectangle, clamped to the
// mat bounds. The returned Mat shares storage with m; Close it after use.
// ok is false when the clamped region is empty.
func CropROI(m gocv.Mat, r image.Rectangle) (gocv.Mat, bool) {
	full := image.Rect(0, 0, m.Cols(), m.Rows())
	clamped := r.Intersect(full)
	if clamped.Empty() {
		return gocv.Mat{}, false
	}
	return m.Region(clamped), true
}

// RelROI scales a rectangle expressed as fractions of the frame size into
// pixel coordinates. Fractions are in [0,1].
func RelROI(bounds image.Rectangle, x0, y0, x1, y1 float64) image.Rectangle {
	w := float64(bounds.Dx())
	h := float64(bounds.Dy())
	return image.Rect(
		bounds.Min.X+int(w*x0),
		bounds.Min.Y+int(h*y0),
		bounds.Min.X+int(w*x1),
		bounds.Min.Y+int(h*y1),
	)
}
