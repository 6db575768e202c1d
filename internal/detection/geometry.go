package detection

import (
	"image"
	"math"
)

// Bounds represents a rectangular bounding box in page pixel coordinates.
//
// The coordinate convention follows standard image bounds:
//   - (X1, Y1) is the top-left corner (inclusive)
//   - (X2, Y2) is the bottom-right corner (exclusive)
type Bounds struct {
	X1 int `json:"x1"` // Left edge (inclusive)
	Y1 int `json:"y1"` // Top edge (inclusive)
	X2 int `json:"x2"` // Right edge (exclusive)
	Y2 int `json:"y2"` // Bottom edge (exclusive)
}

// Rect builds Bounds from two corners in any order.
func Rect(x1, y1, x2, y2 int) Bounds {
	if x2 < x1 {
		x1, x2 = x2, x1
	}
	if y2 < y1 {
		y1, y2 = y2, y1
	}
	return Bounds{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// Width is X2 - X1, never negative.
func (b Bounds) Width() int { return max(0, b.X2-b.X1) }

// Height is Y2 - Y1, never negative.
func (b Bounds) Height() int { return max(0, b.Y2-b.Y1) }

// Area is Width × Height.
func (b Bounds) Area() int { return b.Width() * b.Height() }

// Empty reports whether the box covers no pixels.
func (b Bounds) Empty() bool { return b.X2 <= b.X1 || b.Y2 <= b.Y1 }

// CenterX is the horizontal center in continuous pixel coordinates.
func (b Bounds) CenterX() float64 { return float64(b.X1+b.X2-1) / 2 }

// CenterY is the vertical center in continuous pixel coordinates.
func (b Bounds) CenterY() float64 { return float64(b.Y1+b.Y2-1) / 2 }

// Intersect returns the overlapping region, or an empty Bounds.
func (b Bounds) Intersect(o Bounds) Bounds {
	r := Bounds{
		X1: max(b.X1, o.X1),
		Y1: max(b.Y1, o.Y1),
		X2: min(b.X2, o.X2),
		Y2: min(b.Y2, o.Y2),
	}
	if r.Empty() {
		return Bounds{}
	}
	return r
}

// Union returns the smallest box covering both. Empty operands are ignored.
func (b Bounds) Union(o Bounds) Bounds {
	if b.Empty() {
		return o
	}
	if o.Empty() {
		return b
	}
	return Bounds{
		X1: min(b.X1, o.X1),
		Y1: min(b.Y1, o.Y1),
		X2: max(b.X2, o.X2),
		Y2: max(b.Y2, o.Y2),
	}
}

// Expand grows the box by dx on the left and right and dy on top and bottom.
// Negative values shrink it.
func (b Bounds) Expand(dx, dy int) Bounds {
	return Bounds{X1: b.X1 - dx, Y1: b.Y1 - dy, X2: b.X2 + dx, Y2: b.Y2 + dy}
}

// Clamp limits the box to a width×height page.
func (b Bounds) Clamp(width, height int) Bounds {
	return b.Intersect(Bounds{X2: width, Y2: height})
}

// Contains reports whether pixel (x, y) lies inside the box.
func (b Bounds) Contains(x, y int) bool {
	return x >= b.X1 && x < b.X2 && y >= b.Y1 && y < b.Y2
}

// Rectangle converts to the standard library type.
func (b Bounds) Rectangle() image.Rectangle {
	return image.Rect(b.X1, b.Y1, b.X2, b.Y2)
}

// IoU is the intersection-over-union of two boxes (0 when either is empty).
func IoU(a, b Bounds) float64 {
	inter := a.Intersect(b).Area()
	if inter == 0 {
		return 0
	}
	union := a.Area() + b.Area() - inter
	return float64(inter) / float64(union)
}

// centerDistance is the Euclidean distance between box centers.
func centerDistance(a, b Bounds) float64 {
	return math.Hypot(a.CenterX()-b.CenterX(), a.CenterY()-b.CenterY())
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// px converts a length in staff spacings to whole pixels, never below floor.
func px(spacings, spacing float64, floor int) int {
	return max(floor, int(math.Round(spacings*spacing)))
}
