package detection

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/notecolor-mcp/internal/imaging"
)

// Staff is one five-line staff; Lines holds the line centers top to bottom.
type Staff struct {
	Lines [5]float64 `json:"lines"`
}

// Top is the y of the first line.
func (s Staff) Top() float64 { return s.Lines[0] }

// Bottom is the y of the fifth line.
func (s Staff) Bottom() float64 { return s.Lines[4] }

// Center is the y of the middle line.
func (s Staff) Center() float64 { return s.Lines[2] }

// Spacing is the mean gap between adjacent lines.
func (s Staff) Spacing() float64 { return (s.Lines[4] - s.Lines[0]) / 4 }

// StaffModel is the staff geometry of one page.
type StaffModel struct {
	Staves  []Staff `json:"staves"`
	Spacing float64 `json:"spacing"`
	peaks   int
}

// DetectStaves finds five-line staves from horizontal ink projections.
//
// Returns nil when no threshold yields a usable peak structure; callers treat
// that as a page with one fallback system.
//
// # Algorithm
//
//  1. Downsample the page to StaffTargetWidth (speed; line positions are
//     mapped back to full resolution at the end).
//  2. For each luminance threshold in StaffThresholds, count dark pixels per
//     row and pick rows that are local maxima above StaffRowMinFrac·width,
//     suppressing weaker peaks closer than StaffPeakMinSep. Each peak is
//     refined to the ink-weighted centroid of its neighborhood so thick
//     lines report their center.
//  3. Walk the sorted peaks, accepting any five consecutive peaks whose four
//     gaps all lie within StaffGapTolerance of their median. If none
//     qualify, the five-peak window with the lowest gap variance is used.
//  4. The threshold with the most staves wins; ties go to more peaks.
func DetectStaves(r *imaging.Raster, p Params) *StaffModel {
	if r == nil || r.Width == 0 || r.Height == 0 {
		return nil
	}
	small, _ := imaging.Downsample(r, p.StaffTargetWidth)
	yScale := float64(r.Height) / float64(small.Height)

	var best *StaffModel
	for _, threshold := range p.StaffThresholds {
		model := detectAtThreshold(small, uint8(clampFloat(float64(threshold), 0, 255)), p)
		if model == nil {
			continue
		}
		if best == nil ||
			len(model.Staves) > len(best.Staves) ||
			(len(model.Staves) == len(best.Staves) && model.peaks > best.peaks) {
			best = model
		}
	}
	if best == nil {
		return nil
	}

	for i := range best.Staves {
		for j := range best.Staves[i].Lines {
			best.Staves[i].Lines[j] = (best.Staves[i].Lines[j]+0.5)*yScale - 0.5
		}
	}
	best.Spacing = math.Max(p.MinSpacing, best.Spacing*yScale)
	return best
}

func detectAtThreshold(r *imaging.Raster, threshold uint8, p Params) *StaffModel {
	rows := make([]float64, r.Height)
	for y := 0; y < r.Height; y++ {
		n := 0
		for x := 0; x < r.Width; x++ {
			if r.Luma(x, y) < threshold {
				n++
			}
		}
		rows[y] = float64(n)
	}

	peaks := findRowPeaks(rows, p.StaffRowMinFrac*float64(r.Width), p.StaffPeakMinSep)
	if len(peaks) < 5 {
		return nil
	}

	staves := groupStaves(peaks, p)
	if len(staves) == 0 {
		if s, ok := lowestVarianceWindow(peaks, p); ok {
			staves = []Staff{s}
		}
	}
	if len(staves) == 0 {
		return nil
	}

	gaps := make([]float64, 0, 4*len(staves))
	for _, s := range staves {
		for i := 1; i < 5; i++ {
			gaps = append(gaps, s.Lines[i]-s.Lines[i-1])
		}
	}
	return &StaffModel{Staves: staves, Spacing: median(gaps), peaks: len(peaks)}
}

// findRowPeaks returns refined y positions of projection peaks.
func findRowPeaks(rows []float64, floor float64, minSep int) []float64 {
	type peak struct {
		y int
		v float64
	}
	candidates := make([]peak, 0)
	for y, v := range rows {
		if v < floor || v <= 0 {
			continue
		}
		if y > 0 && rows[y-1] > v {
			continue
		}
		if y < len(rows)-1 && rows[y+1] > v {
			continue
		}
		candidates = append(candidates, peak{y, v})
	}

	// Strongest first, then drop anything within minSep of a kept peak.
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].v > candidates[j].v })
	kept := make([]peak, 0, len(candidates))
	for _, c := range candidates {
		ok := true
		for _, k := range kept {
			if abs(c.y-k.y) < minSep {
				ok = false
				break
			}
		}
		if ok {
			kept = append(kept, c)
		}
	}

	out := make([]float64, 0, len(kept))
	for _, k := range kept {
		var sum, wsum float64
		for y := k.y - 1; y <= k.y+1; y++ {
			if y < 0 || y >= len(rows) || rows[y] < 0.5*k.v {
				continue
			}
			sum += float64(y) * rows[y]
			wsum += rows[y]
		}
		out = append(out, sum/wsum)
	}
	sort.Float64s(out)
	return out
}

// groupStaves greedily takes runs of five evenly spaced peaks.
func groupStaves(peaks []float64, p Params) []Staff {
	staves := make([]Staff, 0)
	for i := 0; i+5 <= len(peaks); {
		window := peaks[i : i+5]
		if evenlySpaced(window, p) {
			var s Staff
			copy(s.Lines[:], window)
			staves = append(staves, s)
			i += 5
			continue
		}
		i++
	}
	return staves
}

func evenlySpaced(window []float64, p Params) bool {
	gaps := make([]float64, 4)
	for i := 1; i < 5; i++ {
		gaps[i-1] = window[i] - window[i-1]
	}
	med := median(gaps)
	if med < p.StaffMinGap {
		return false
	}
	tol := p.StaffGapTolerance*med + 1
	for _, g := range gaps {
		if math.Abs(g-med) > tol {
			return false
		}
	}
	return true
}

func lowestVarianceWindow(peaks []float64, p Params) (Staff, bool) {
	bestVar := math.Inf(1)
	bestAt := -1
	gaps := make([]float64, 4)
	for i := 0; i+5 <= len(peaks); i++ {
		for j := 1; j < 5; j++ {
			gaps[j-1] = peaks[i+j] - peaks[i+j-1]
		}
		if median(gaps) < p.StaffMinGap {
			continue
		}
		if v := stat.Variance(gaps, nil); v < bestVar {
			bestVar, bestAt = v, i
		}
	}
	if bestAt < 0 {
		return Staff{}, false
	}
	var s Staff
	copy(s.Lines[:], peaks[bestAt:bestAt+5])
	return s, true
}

// median of xs; xs is not modified.
func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	if len(sorted)%2 == 1 {
		return sorted[len(sorted)/2]
	}
	return stat.Mean(sorted[len(sorted)/2-1:len(sorted)/2+1], nil)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
