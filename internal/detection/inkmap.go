package detection

import (
	"github.com/ironsheep/notecolor-mcp/internal/imaging"
)

// InkMap is a binary ink grid: Pix[y*Width+x] is 1 for ink, 0 for paper.
//
// Stages never modify an InkMap they did not allocate; anything that erases
// ink returns a new map.
type InkMap struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewInkMap allocates an empty (all paper) map.
func NewInkMap(width, height int) *InkMap {
	width, height = max(0, width), max(0, height)
	return &InkMap{Width: width, Height: height, Pix: make([]uint8, width*height)}
}

// Binarize thresholds a raster: a pixel is ink when the average of its R, G
// and B channels is below cutoff.
func Binarize(r *imaging.Raster, cutoff uint8) *InkMap {
	if r == nil {
		return NewInkMap(0, 0)
	}
	m := NewInkMap(r.Width, r.Height)
	c := 3 * int(cutoff)
	for i := range m.Pix {
		o := 4 * i
		if int(r.Pix[o])+int(r.Pix[o+1])+int(r.Pix[o+2]) < c {
			m.Pix[i] = 1
		}
	}
	return m
}

// Bounds covers the whole map.
func (m *InkMap) Bounds() Bounds { return Bounds{X2: m.Width, Y2: m.Height} }

// At reports ink at (x, y); outside the map is paper.
func (m *InkMap) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Pix[y*m.Width+x] != 0
}

// Set writes a pixel; out-of-range writes are ignored.
func (m *InkMap) Set(x, y int, ink bool) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	var v uint8
	if ink {
		v = 1
	}
	m.Pix[y*m.Width+x] = v
}

// Clone returns an independent copy.
func (m *InkMap) Clone() *InkMap {
	c := &InkMap{Width: m.Width, Height: m.Height, Pix: make([]uint8, len(m.Pix))}
	copy(c.Pix, m.Pix)
	return c
}

// Count returns the number of ink pixels in the map.
func (m *InkMap) Count() int {
	n := 0
	for _, v := range m.Pix {
		n += int(v)
	}
	return n
}

// CountIn returns the number of ink pixels inside b (clamped to the map).
func (m *InkMap) CountIn(b Bounds) int {
	b = b.Clamp(m.Width, m.Height)
	n := 0
	for y := b.Y1; y < b.Y2; y++ {
		row := m.Pix[y*m.Width : (y+1)*m.Width]
		for x := b.X1; x < b.X2; x++ {
			n += int(row[x])
		}
	}
	return n
}

// InkBounds returns the tight box around the ink inside b, or an empty Bounds.
func (m *InkMap) InkBounds(b Bounds) Bounds {
	b = b.Clamp(m.Width, m.Height)
	minX, minY, maxX, maxY := b.X2, b.Y2, b.X1-1, b.Y1-1
	for y := b.Y1; y < b.Y2; y++ {
		row := m.Pix[y*m.Width : (y+1)*m.Width]
		for x := b.X1; x < b.X2; x++ {
			if row[x] == 0 {
				continue
			}
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}
	if maxX < minX {
		return Bounds{}
	}
	return Bounds{X1: minX, Y1: minY, X2: maxX + 1, Y2: maxY + 1}
}

// Fill is the ink fraction of b (0 for an empty box).
func (m *InkMap) Fill(b Bounds) float64 {
	a := b.Clamp(m.Width, m.Height).Area()
	if a == 0 {
		return 0
	}
	return float64(m.CountIn(b)) / float64(a)
}

// RowCounts returns ink per row of b, indexed from b.Y1.
func (m *InkMap) RowCounts(b Bounds) []int {
	b = b.Clamp(m.Width, m.Height)
	out := make([]int, b.Height())
	for y := b.Y1; y < b.Y2; y++ {
		row := m.Pix[y*m.Width : (y+1)*m.Width]
		for x := b.X1; x < b.X2; x++ {
			out[y-b.Y1] += int(row[x])
		}
	}
	return out
}

// ColumnCounts returns ink per column of b, indexed from b.X1.
func (m *InkMap) ColumnCounts(b Bounds) []int {
	b = b.Clamp(m.Width, m.Height)
	out := make([]int, b.Width())
	for y := b.Y1; y < b.Y2; y++ {
		row := m.Pix[y*m.Width : (y+1)*m.Width]
		for x := b.X1; x < b.X2; x++ {
			out[x-b.X1] += int(row[x])
		}
	}
	return out
}

// longestColumnRun returns the longest unbroken vertical ink run in column x
// between rows y1 (inclusive) and y2 (exclusive).
func (m *InkMap) longestColumnRun(x, y1, y2 int) int {
	best, cur := 0, 0
	for y := y1; y < y2; y++ {
		if m.At(x, y) {
			cur++
			best = max(best, cur)
		} else {
			cur = 0
		}
	}
	return best
}

// longestRowRun is the horizontal counterpart of longestColumnRun.
func (m *InkMap) longestRowRun(y, x1, x2 int) int {
	best, cur := 0, 0
	for x := x1; x < x2; x++ {
		if m.At(x, y) {
			cur++
			best = max(best, cur)
		} else {
			cur = 0
		}
	}
	return best
}
