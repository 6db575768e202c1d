package detection

// Mask is a binary grid anchored at (X0, Y0) in page coordinates.
//
// Masks usually cover one system, so they carry their own origin; every
// accessor takes page coordinates and treats anything outside the grid as
// unmarked. A nil *Mask is a valid, empty mask.
type Mask struct {
	X0, Y0        int
	Width, Height int
	Pix           []uint8
}

// NewMask allocates an empty mask covering region.
func NewMask(region Bounds) *Mask {
	w, h := region.Width(), region.Height()
	return &Mask{X0: region.X1, Y0: region.Y1, Width: w, Height: h, Pix: make([]uint8, w*h)}
}

// Bounds is the page area the mask covers.
func (m *Mask) Bounds() Bounds {
	if m == nil {
		return Bounds{}
	}
	return Bounds{X1: m.X0, Y1: m.Y0, X2: m.X0 + m.Width, Y2: m.Y0 + m.Height}
}

// At reports whether page pixel (x, y) is marked.
func (m *Mask) At(x, y int) bool {
	if m == nil {
		return false
	}
	x, y = x-m.X0, y-m.Y0
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Pix[y*m.Width+x] != 0
}

// Set marks page pixel (x, y); pixels outside the mask are ignored.
func (m *Mask) Set(x, y int) {
	x, y = x-m.X0, y-m.Y0
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	m.Pix[y*m.Width+x] = 1
}

// Count returns the number of marked pixels.
func (m *Mask) Count() int {
	if m == nil {
		return 0
	}
	n := 0
	for _, v := range m.Pix {
		n += int(v)
	}
	return n
}

// Union marks every pixel that is marked in o. Only the area shared by the
// two masks is touched.
func (m *Mask) Union(o *Mask) {
	if m == nil || o == nil {
		return
	}
	shared := m.Bounds().Intersect(o.Bounds())
	for y := shared.Y1; y < shared.Y2; y++ {
		for x := shared.X1; x < shared.X2; x++ {
			if o.At(x, y) {
				m.Set(x, y)
			}
		}
	}
}

// Dilate returns a copy grown by radius pixels in every direction (square
// structuring element). The result keeps the receiver's extent.
func (m *Mask) Dilate(radius int) *Mask {
	if m == nil {
		return nil
	}
	out := &Mask{X0: m.X0, Y0: m.Y0, Width: m.Width, Height: m.Height, Pix: make([]uint8, len(m.Pix))}
	if radius <= 0 {
		copy(out.Pix, m.Pix)
		return out
	}
	w, h := m.Width, m.Height

	// Separable: a horizontal pass into tmp, then a vertical pass into out.
	tmp := make([]uint8, len(m.Pix))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if m.Pix[y*w+x] == 0 {
				continue
			}
			for xx := max(0, x-radius); xx <= min(w-1, x+radius); xx++ {
				tmp[y*w+xx] = 1
			}
		}
	}
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			if tmp[y*w+x] == 0 {
				continue
			}
			for yy := max(0, y-radius); yy <= min(h-1, y+radius); yy++ {
				out.Pix[yy*w+x] = 1
			}
		}
	}
	return out
}

// CoveredInk counts the ink pixels of b and how many of them are marked.
// Ink marked by except is left out of both counts; except may be nil.
func (m *Mask) CoveredInk(ink *InkMap, b Bounds, except *Mask) (covered, total int) {
	b = b.Clamp(ink.Width, ink.Height)
	for y := b.Y1; y < b.Y2; y++ {
		row := ink.Pix[y*ink.Width : (y+1)*ink.Width]
		for x := b.X1; x < b.X2; x++ {
			if row[x] == 0 || except.At(x, y) {
				continue
			}
			total++
			if m.At(x, y) {
				covered++
			}
		}
	}
	return covered, total
}

// OverlapRatio is the fraction of the ink in b that the mask marks, not
// counting ink marked by except.
func (m *Mask) OverlapRatio(ink *InkMap, b Bounds, except *Mask) float64 {
	covered, total := m.CoveredInk(ink, b, except)
	if total == 0 {
		return 0
	}
	return float64(covered) / float64(total)
}

// runLengths returns, for every pixel of region, the length of the ink run
// through it along (dx, dy); paper gets 0. Pixels outside region count as
// paper. dy must be 0 or 1 (and dx 1 when dy is 0) so that the forward
// pass only looks back at pixels it has already visited.
func runLengths(m *InkMap, region Bounds, dx, dy int) []int32 {
	region = region.Clamp(m.Width, m.Height)
	w, h := region.Width(), region.Height()
	fwd := make([]int32, w*h)
	for y := 0; y < h; y++ {
		row := m.Pix[(region.Y1+y)*m.Width:]
		for x := 0; x < w; x++ {
			if row[region.X1+x] == 0 {
				continue
			}
			px, py := x-dx, y-dy
			if px >= 0 && px < w && py >= 0 {
				fwd[y*w+x] = fwd[py*w+px] + 1
			} else {
				fwd[y*w+x] = 1
			}
		}
	}

	out := make([]int32, w*h)
	for y := h - 1; y >= 0; y-- {
		for x := w - 1; x >= 0; x-- {
			i := y*w + x
			if fwd[i] == 0 {
				continue
			}
			nx, ny := x+dx, y+dy
			if nx >= 0 && nx < w && ny < h && fwd[ny*w+nx] > 0 {
				out[i] = out[ny*w+nx]
			} else {
				out[i] = fwd[i]
			}
		}
	}
	return out
}

// VerticalStrokeMask marks stems, barline fragments and other long thin
// strokes inside region.
//
// # Algorithm
//
//  1. Column scan: every column is cut into vertical ink runs, bridging
//     paper gaps of up to StrokeGap px. A run at least StrokeMinLen·S long
//     whose mean horizontal run width is at most StrokeMaxWidth·S is marked.
//     Runs that are too wide on average (a stem through a notehead) still
//     mark their thin stretches when those are long enough on their own.
//  2. Thin components: ink that is thin in at least one direction is
//     labeled; components whose box is at least StrokeCompMinLong·S long
//     and at most StrokeCompMaxShort·S across are marked. This catches
//     ties, slurs and flag tails that no single column sees.
//  3. The mask is dilated by StrokeDilate px.
//
// The map passed in should already have its staff lines removed; otherwise
// every stem crossing a line reports a page-wide width there.
func VerticalStrokeMask(ink *InkMap, region Bounds, spacing float64, p Params) *Mask {
	region = region.Clamp(ink.Width, ink.Height)
	mask := NewMask(region)
	if region.Empty() {
		return mask
	}
	spacing = max(spacing, p.MinSpacing)
	w := region.Width()
	hrun := runLengths(ink, region, 1, 0)
	vrun := runLengths(ink, region, 0, 1)
	minLen := px(p.StrokeMinLen, spacing, 3)
	maxWidth := max(2, p.StrokeMaxWidth*spacing)

	local := func(x, y int) int { return (y-region.Y1)*w + (x - region.X1) }

	for x := region.X1; x < region.X2; x++ {
		y := region.Y1
		for y < region.Y2 {
			if !ink.At(x, y) {
				y++
				continue
			}
			start, end, gap := y, y+1, 0
			for yy := y + 1; yy < region.Y2; yy++ {
				if ink.At(x, yy) {
					end, gap = yy+1, 0
					continue
				}
				gap++
				if gap > p.StrokeGap {
					break
				}
			}
			y = end
			if end-start < minLen {
				continue
			}

			var sum, n float64
			for yy := start; yy < end; yy++ {
				if ink.At(x, yy) {
					sum += float64(hrun[local(x, yy)])
					n++
				}
			}
			if sum/n <= maxWidth {
				for yy := start; yy < end; yy++ {
					if ink.At(x, yy) {
						mask.Set(x, yy)
					}
				}
				continue
			}
			markThinStretches(mask, ink, x, start, end, minLen, p.StrokeGap, func(yy int) bool {
				return float64(hrun[local(x, yy)]) <= maxWidth
			})
		}
	}

	thin := NewInkMap(w, region.Height())
	for i := range thin.Pix {
		if hrun[i] == 0 {
			continue
		}
		if float64(min(hrun[i], vrun[i])) <= maxWidth {
			thin.Pix[i] = 1
		}
	}
	minLong := p.StrokeCompMinLong * spacing
	maxShort := p.StrokeCompMaxShort * spacing
	for _, c := range LabelComponents(thin, thin.Bounds(), true) {
		long := float64(max(c.Bounds.Width(), c.Bounds.Height()))
		short := float64(min(c.Bounds.Width(), c.Bounds.Height()))
		if long < minLong || short > maxShort {
			continue
		}
		for _, i := range c.Pixels {
			mask.Set(region.X1+i%w, region.Y1+i/w)
		}
	}

	return mask.Dilate(p.StrokeDilate)
}

// markThinStretches marks the ink of column x in [y1, y2) where thin holds,
// for stretches (gaps up to maxGap bridged) of at least minLen rows.
func markThinStretches(mask *Mask, ink *InkMap, x, y1, y2, minLen, maxGap int, thin func(y int) bool) {
	first, last := -1, -1
	flush := func() {
		if first >= 0 && last-first+1 >= minLen {
			for y := first; y <= last; y++ {
				if ink.At(x, y) {
					mask.Set(x, y)
				}
			}
		}
		first, last = -1, -1
	}
	for y := y1; y < y2; y++ {
		if !ink.At(x, y) || !thin(y) {
			continue
		}
		if first >= 0 && y-last-1 > maxGap {
			flush()
		}
		if first < 0 {
			first = y
		}
		last = y
	}
	flush()
}

// EraseStrokes returns a copy of ink with every stroke pixel cleared unless
// protect marks it.
func EraseStrokes(ink *InkMap, stroke, protect *Mask) *InkMap {
	out := ink.Clone()
	b := stroke.Bounds().Clamp(ink.Width, ink.Height)
	for y := b.Y1; y < b.Y2; y++ {
		for x := b.X1; x < b.X2; x++ {
			if stroke.At(x, y) && !protect.At(x, y) {
				out.Pix[y*ink.Width+x] = 0
			}
		}
	}
	return out
}
