package detection

// Scan directions of the directional mask, in the order of Params.DirMinLen.
const (
	DirHorizontal = iota
	DirVertical
	DirDiagonal     // down-right
	DirAntiDiagonal // down-left
)

var scanSteps = [4][2]int{{1, 0}, {0, 1}, {1, 1}, {-1, 1}}

// perpendicular[d] is the direction whose run length measures the width of
// a stroke running along d.
var perpendicular = [4]int{DirVertical, DirHorizontal, DirAntiDiagonal, DirDiagonal}

// DirectionalStrokeMask marks pixels that sit on a long thin run in any of
// four directions: horizontal, vertical and both diagonals.
//
// For direction d a pixel is marked when its run along d is at least
// DirMinLen[d]·S and its run across d is at most DirMaxWidth[d]·S.
// Horizontal runs inside staff-line bands are ignored so leftover line ink
// does not light up the whole system.
//
// The mask is not used for erasure; the scorer reads its overlap with a
// candidate as a "line-like" signal (ties, slurs, hairpins, beams).
func DirectionalStrokeMask(ink *InkMap, region Bounds, lines []float64, spacing float64, p Params) *Mask {
	region = region.Clamp(ink.Width, ink.Height)
	mask := NewMask(region)
	if region.Empty() {
		return mask
	}
	spacing = max(spacing, p.MinSpacing)
	w := region.Width()
	band := staffBandHalf(spacing, p)

	var runs [4][]int32
	for d, step := range scanSteps {
		runs[d] = runLengths(ink, region, step[0], step[1])
	}

	for d := range scanSteps {
		along, across := runs[d], runs[perpendicular[d]]
		minLen := int32(px(p.DirMinLen[d], spacing, 3))
		maxWidth := int32(px(p.DirMaxWidth[d], spacing, 2))
		for i, n := range along {
			if n < minLen || across[i] > maxWidth {
				continue
			}
			if d == DirHorizontal && nearLine(lines, region.Y1+i/w, band) {
				continue
			}
			mask.Pix[i] = 1
		}
	}
	return mask
}

// staffBandHalf is the half height, in px, of the band treated as staff line
// around each line center.
func staffBandHalf(spacing float64, p Params) float64 {
	return max(1, p.StaffBandHalf*spacing)
}

// nearLine reports whether row y lies within half of any line center.
func nearLine(lines []float64, y int, half float64) bool {
	for _, l := range lines {
		if d := float64(y) - l; d >= -half-0.5 && d <= half+0.5 {
			return true
		}
	}
	return false
}
