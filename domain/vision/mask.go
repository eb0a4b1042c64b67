package vision

import (
	"image"

	"gocv.io/x/gocv"
)

// HueRange is an HSV band in OpenCV units (H 0-180, S/V 0-255).
type HueRange struct {
	HLo, HHi float64
	SLo, VLo float64
}

// HueRatio reports the fraction of pixels inside bgr that fall within any of
// the given hue bands. Returns 0 for an empty mat.
func HueRatio(bgr gocv.Mat, bands ...HueRange) float64 {
	if bgr.Empty() {
		return 0
	}
	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(bgr, &hsv, gocv.ColorBGRToHSV)

	total := hsv.Rows() * hsv.Cols()
	if total == 0 {
		return 0
	}

	hits := 0
	for _, b := range bands {
		mask := gocv.NewMat()
		gocv.InRangeWithScalar(hsv,
			gocv.NewScalar(b.HLo, b.SLo, b.VLo, 0),
			gocv.NewScalar(b.HHi, 255, 255, 0),
			&mask)
		hits += gocv.CountNonZero(mask)
		mask.Close()
	}
	return float64(hits) / float64(total)
}

// MeanHSV returns the average hue, saturation and value of the region.
func MeanHSV(bgr gocv.Mat) (h, s, v float64) {
	if bgr.Empty() {
		return 0, 0, 0
	}
	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(bgr, &hsv, gocv.ColorBGRToHSV)
	mean := hsv.Mean()
	return mean.Val1, mean.Val2, mean.Val3
}

// Box is a contour bounding box with the raw contour area and the fill
// ratio (contour area over box area).
type Box struct {
	Rect image.Rectangle
	Area float64
	Fill float64
}

// EdgeBoxes finds contour bounding boxes on an edge map of the region:
// grayscale, Canny, a small dilation to close gaps, then external contours.
func EdgeBoxes(bgr gocv.Mat) []Box {
	if bgr.Empty() {
		return nil
	}
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(bgr, &gray, gocv.ColorBGRToGray)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, 60, 140)

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3))
	defer kernel.Close()
	gocv.Dilate(edges, &edges, kernel)

	contours := gocv.FindContours(edges, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	boxes := make([]Box, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		c := contours.At(i)
		rect := gocv.BoundingRect(c)
		area := gocv.ContourArea(c)
		boxArea := float64(rect.Dx() * rect.Dy())
		fill := 0.0
		if boxArea > 0 {
			fill = area / boxArea
		}
		boxes = append(boxes, Box{Rect: rect, Area: area, Fill: fill})
	}
	return boxes
}

// MatchTemplate runs normalized cross-correlation of tpl over region and
// returns the best score and its top-left location. ok is false when the
// template does not fit inside the region.
func MatchTemplate(region, tpl gocv.Mat) (score float64, loc image.Point, ok bool) {
	if region.Empty() || tpl.Empty() {
		return 0, image.Point{}, false
	}
	if tpl.Cols() > region.Cols() || tpl.Rows() > region.Rows() {
		return 0, image.Point{}, false
	}
	result := gocv.NewMat()
	defer result.Close()
	mask := gocv.NewMat()
	defer mask.Close()
	gocv.MatchTemplate(region, tpl, &result, gocv.TmCcoeffNormed, mask)
	_, maxVal, _, maxLoc := gocv.MinMaxLoc(result)
	return float64(maxVal), maxLoc, true
}
