package detection

import (
	"context"
	"iter"
	"math"
)

// Origin is the corner normalized rectangles are measured from.
type Origin int

const (
	// OriginTopLeft: y grows downward, like page pixels.
	OriginTopLeft Origin = iota
	// OriginBottomLeft: y grows upward, as most contour and vision toolkits report.
	OriginBottomLeft
)

// NormRect is a rectangle in normalized [0, 1] page coordinates.
type NormRect struct {
	X, Y, W, H float64
}

// BlobSet is the output of a BlobFinder. Rects is consumed once.
type BlobSet struct {
	Origin Origin
	Rects  iter.Seq[NormRect]
}

// BlobFinder extracts candidate ink blobs from a binary page.
//
// Implementations are expected to favor recall; the detector filters,
// splits and scores whatever comes back. A failing finder costs the page its
// noteheads, not the whole run.
type BlobFinder interface {
	FindBlobs(ctx context.Context, ink *InkMap) (BlobSet, error)
}

// ComponentFinder is the in-process BlobFinder: every 8-connected component
// of at least MinArea pixels becomes one rectangle. Rectangles are reported
// with a bottom-left origin.
type ComponentFinder struct {
	MinArea int
}

// FindBlobs labels the map and returns the component boxes lazily.
func (f ComponentFinder) FindBlobs(ctx context.Context, ink *InkMap) (BlobSet, error) {
	if err := ctx.Err(); err != nil {
		return BlobSet{}, err
	}
	if ink == nil || ink.Width == 0 || ink.Height == 0 {
		return BlobSet{Origin: OriginBottomLeft, Rects: func(func(NormRect) bool) {}}, nil
	}
	comps := LabelComponents(ink, ink.Bounds(), false)
	w, h := float64(ink.Width), float64(ink.Height)
	return BlobSet{
		Origin: OriginBottomLeft,
		Rects: func(yield func(NormRect) bool) {
			for _, c := range comps {
				if c.Area < f.MinArea {
					continue
				}
				r := NormRect{
					X: float64(c.Bounds.X1) / w,
					Y: (h - float64(c.Bounds.Y2)) / h,
					W: float64(c.Bounds.Width()) / w,
					H: float64(c.Bounds.Height()) / h,
				}
				if !yield(r) {
					return
				}
			}
		},
	}, nil
}

// ToPixelBounds converts a normalized rectangle to page pixels, flipping y
// for bottom-left origins and clamping to the page. Edges are rounded to the
// nearest pixel boundary.
func ToPixelBounds(r NormRect, origin Origin, width, height int) Bounds {
	w, h := float64(width), float64(height)
	x1 := math.Round(r.X * w)
	x2 := math.Round((r.X + r.W) * w)
	var y1, y2 float64
	switch origin {
	case OriginBottomLeft:
		y1 = math.Round((1 - r.Y - r.H) * h)
		y2 = math.Round((1 - r.Y) * h)
	default:
		y1 = math.Round(r.Y * h)
		y2 = math.Round((r.Y + r.H) * h)
	}
	if math.IsNaN(x1+x2+y1+y2) {
		return Bounds{}
	}
	return Rect(int(x1), int(y1), int(x2), int(y2)).Clamp(width, height)
}
