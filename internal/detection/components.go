package detection

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Component is a connected ink blob with the statistics the scorers need.
type Component struct {
	// Area is the number of ink pixels.
	Area int `json:"area"`

	// Bounds is the tight bounding box of the pixels.
	Bounds Bounds `json:"bounds"`

	// CentroidX, CentroidY are the mean pixel coordinates.
	CentroidX float64 `json:"centroid_x"`
	CentroidY float64 `json:"centroid_y"`

	// Fill is Area divided by the bounding-box area.
	Fill float64 `json:"fill"`

	// Aspect is bounding-box width over height.
	Aspect float64 `json:"aspect"`

	// Eccentricity is the ratio of the principal axis lengths (>= 1).
	// A disc scores 1, a thin line scores its length over its thickness.
	Eccentricity float64 `json:"eccentricity"`

	// Pixels holds flat indices (y*Width+x) when requested from the labeler.
	Pixels []int `json:"-"`
}

// LabelComponents flood-fills the ink inside region into 8-connected blobs.
//
// Pixels outside region are treated as paper, so a blob crossing the region
// edge is cut there. When keepPixels is set each Component carries its
// pixel list, which the noise cleaner uses to delete blobs.
//
// # Algorithm
//
// A single raster scan seeds an explicit stack-based fill at each unvisited
// ink pixel (no recursion, so page-sized blobs such as staff lines are safe).
// First and second moments are accumulated during the fill; the covariance
// eigenvalues give the principal axes for Eccentricity.
func LabelComponents(m *InkMap, region Bounds, keepPixels bool) []Component {
	region = region.Clamp(m.Width, m.Height)
	if region.Empty() {
		return nil
	}
	visited := make([]bool, len(m.Pix))
	components := make([]Component, 0)
	stack := make([]int, 0, 64)

	for y := region.Y1; y < region.Y2; y++ {
		for x := region.X1; x < region.X2; x++ {
			start := y*m.Width + x
			if m.Pix[start] == 0 || visited[start] {
				continue
			}

			var acc moments
			var pixels []int
			minX, minY, maxX, maxY := x, y, x, y

			visited[start] = true
			stack = append(stack[:0], start)
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				px, py := p%m.Width, p/m.Width

				acc.add(float64(px), float64(py))
				if keepPixels {
					pixels = append(pixels, p)
				}
				minX, maxX = min(minX, px), max(maxX, px)
				minY, maxY = min(minY, py), max(maxY, py)

				// 8-connected neighbors
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						if dx == 0 && dy == 0 {
							continue
						}
						nx, ny := px+dx, py+dy
						if !region.Contains(nx, ny) {
							continue
						}
						n := ny*m.Width + nx
						if m.Pix[n] == 0 || visited[n] {
							continue
						}
						visited[n] = true
						stack = append(stack, n)
					}
				}
			}

			b := Bounds{X1: minX, Y1: minY, X2: maxX + 1, Y2: maxY + 1}
			cx, cy := acc.mean()
			components = append(components, Component{
				Area:         acc.n,
				Bounds:       b,
				CentroidX:    cx,
				CentroidY:    cy,
				Fill:         float64(acc.n) / float64(b.Area()),
				Aspect:       float64(b.Width()) / float64(b.Height()),
				Eccentricity: acc.eccentricity(),
				Pixels:       pixels,
			})
		}
	}
	return components
}

// moments accumulates raw first and second moments of a pixel set.
type moments struct {
	n             int
	sx, sy        float64
	sxx, syy, sxy float64
}

func (a *moments) add(x, y float64) {
	a.n++
	a.sx += x
	a.sy += y
	a.sxx += x * x
	a.syy += y * y
	a.sxy += x * y
}

func (a *moments) mean() (float64, float64) {
	if a.n == 0 {
		return 0, 0
	}
	return a.sx / float64(a.n), a.sy / float64(a.n)
}

// axes returns the covariance eigenvalues, largest first. Each pixel is
// treated as a unit square, which adds 1/12 of variance per axis and keeps
// single-pixel-wide strokes from reporting a zero minor axis.
func (a *moments) axes() (major, minor float64) {
	if a.n == 0 {
		return 0, 0
	}
	n := float64(a.n)
	mx, my := a.sx/n, a.sy/n
	cxx := a.sxx/n - mx*mx + 1.0/12
	cyy := a.syy/n - my*my + 1.0/12
	cxy := a.sxy/n - mx*my

	var eig mat.EigenSym
	if !eig.Factorize(mat.NewSymDense(2, []float64{cxx, cxy, cxy, cyy}), false) {
		return math.Max(cxx, cyy), math.Min(cxx, cyy)
	}
	vals := eig.Values(nil)
	return math.Max(vals[1], 0), math.Max(vals[0], 0)
}

func (a *moments) eccentricity() float64 {
	major, minor := a.axes()
	if major <= 0 {
		return 1
	}
	if minor <= 1e-9 {
		return 100
	}
	return math.Min(100, math.Sqrt(major/minor))
}

// inkMoments accumulates the ink pixels of b.
func inkMoments(m *InkMap, b Bounds) moments {
	b = b.Clamp(m.Width, m.Height)
	var acc moments
	for y := b.Y1; y < b.Y2; y++ {
		row := m.Pix[y*m.Width : (y+1)*m.Width]
		for x := b.X1; x < b.X2; x++ {
			if row[x] != 0 {
				acc.add(float64(x), float64(y))
			}
		}
	}
	return acc
}

// strokeThickness estimates the average stroke width of the ink in acc:
// area divided by the principal-axis length (sqrt(12·λmax) for a uniform bar).
func strokeThickness(acc moments) float64 {
	major, _ := acc.axes()
	if major <= 0 {
		return 0
	}
	length := math.Sqrt(12 * major)
	if length < 1 {
		return float64(acc.n)
	}
	return float64(acc.n) / length
}
