package detection

import "math"

// RemoveStaffLines returns a copy of m with the staff lines of every system
// cleared.
//
// Inside each line's band (StaffBandHalf·S either side of the center) a
// pixel is cleared when its vertical ink run is no taller than the band.
// Noteheads, stems and barlines crossing the line keep their pixels because
// their runs continue above or below it.
func RemoveStaffLines(m *InkMap, systems []System, p Params) *InkMap {
	out := m.Clone()
	for _, sys := range systems {
		spacing := max(sys.Spacing, p.MinSpacing)
		half := staffBandHalf(spacing, p)
		maxRun := int32(math.Ceil(2*half)) + 1
		margin := int(maxRun) + 1
		for _, line := range sys.Lines() {
			y1 := int(math.Floor(line - half - 0.5))
			y2 := int(math.Ceil(line+half+0.5)) + 1

			// Runs are measured in a window that extends past the band by
			// more than maxRun, so truncation at the window edge never turns
			// a long run into a short one.
			window := Bounds{X1: sys.Bounds.X1, Y1: y1 - margin, X2: sys.Bounds.X2, Y2: y2 + margin}.Clamp(m.Width, m.Height)
			if window.Empty() {
				continue
			}
			vrun := runLengths(m, window, 0, 1)
			w := window.Width()
			for y := max(y1, window.Y1); y < min(y2, window.Y2); y++ {
				if !nearLine([]float64{line}, y, half) {
					continue
				}
				for x := window.X1; x < window.X2; x++ {
					n := vrun[(y-window.Y1)*w+(x-window.X1)]
					if n > 0 && n <= maxRun {
						out.Pix[y*m.Width+x] = 0
					}
				}
			}
		}
	}
	return out
}

// EraseHorizontalRuns clears long thin horizontal ink inside region: tie
// and beam remnants, and staff fragments that survived line removal.
//
// A pixel is erased when its horizontal run is at least HRunMinLen·S, its
// vertical run is at most HRunMaxThick·S, it is outside every staff-line
// band and protect does not mark it. When that would remove more than
// HRunMaxErase of the region's ink the erasure is abandoned: the second
// return value is true and the first is an unmodified copy of ink.
func EraseHorizontalRuns(ink *InkMap, region Bounds, lines []float64, spacing float64, protect *Mask, p Params) (*InkMap, bool) {
	out := ink.Clone()
	region = region.Clamp(ink.Width, ink.Height)
	if region.Empty() {
		return out, false
	}
	spacing = max(spacing, p.MinSpacing)
	w := region.Width()
	hrun := runLengths(ink, region, 1, 0)
	vrun := runLengths(ink, region, 0, 1)
	minLen := int32(px(p.HRunMinLen, spacing, 4))
	maxThick := int32(px(p.HRunMaxThick, spacing, 2))
	band := staffBandHalf(spacing, p)

	erase := make([]int, 0)
	for i, n := range hrun {
		if n < minLen || vrun[i] > maxThick {
			continue
		}
		x, y := region.X1+i%w, region.Y1+i/w
		if nearLine(lines, y, band) || protect.At(x, y) {
			continue
		}
		erase = append(erase, y*ink.Width+x)
	}
	if len(erase) == 0 {
		return out, false
	}
	if float64(len(erase)) > p.HRunMaxErase*float64(ink.CountIn(region)) {
		return out, true
	}
	for _, i := range erase {
		out.Pix[i] = 0
	}
	return out, false
}
