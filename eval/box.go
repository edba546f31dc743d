// Package eval - Computes per-class average precision and mAP for object
// detection results.
package eval

import (
	"fmt"

	"github.com/chewxy/math32"
)

// unionEps guards the IoU division when both boxes have zero area.
const unionEps = 1e-6

// Box is an axis-aligned bounding box in top-left/bottom-right convention.
type Box struct {
	X1, Y1, X2, Y2 float32
}

// Detection is a predicted box together with its confidence score. The class
// label and image index are carried by the grouping of the input, not by the
// detection itself.
type Detection struct {
	Box
	Score float32
}

// Area returns the area of the box. Negative widths or heights are not
// canonicalized; callers that care about degenerate boxes must not rely on
// this value alone.
func (b Box) Area() float32 {
	return (b.X2 - b.X1) * (b.Y2 - b.Y1)
}

func (b Box) String() string {
	return fmt.Sprintf("(%f, %f), (%f, %f)", b.X1, b.Y1, b.X2, b.Y2)
}

// IoU calculates the Intersection over Union of two boxes.
//
// The intersection rectangle spans from the maximum of the top-left
// coordinates to the minimum of the bottom-right coordinates. If that
// rectangle is inverted on either axis the boxes do not overlap and the
// result is 0. This also covers degenerate input boxes (x2 < x1 or y2 < y1),
// which overlap nothing.
//
// Arguments:
//   - a: The first box.
//   - b: The second box.
//
// Returns:
//   - The IoU value between 0 and 1.
func IoU(a, b Box) float32 {
	ix1 := math32.Max(a.X1, b.X1)
	iy1 := math32.Max(a.Y1, b.Y1)
	ix2 := math32.Min(a.X2, b.X2)
	iy2 := math32.Min(a.Y2, b.Y2)

	if ix2 < ix1 || iy2 < iy1 {
		return 0
	}
	intersection := (ix2 - ix1) * (iy2 - iy1)

	// Inclusion-exclusion, with a small epsilon so two zero-area boxes do
	// not divide by zero.
	union := a.Area() + b.Area() - intersection + unionEps
	return intersection / union
}
