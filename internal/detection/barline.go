package detection

import (
	"math"
	"sort"
)

// Barline is a scored vertical barline candidate.
type Barline struct {
	Bounds Bounds  `json:"bounds"`
	Score  float64 `json:"score"`
	System int     `json:"system"`
}

// DetectBarlines scans every system for thin, tall, dense ink columns.
//
// published holds the barlines scoring at least BarlinePublishScore; all
// holds every scored run and feeds the near-barline veto of the rejection
// engine. Both are ordered by system, then x. Fallback systems have no
// staff band and produce no barlines.
func DetectBarlines(ink *InkMap, systems []System, p Params) (published, all []Barline) {
	for i, sys := range systems {
		for _, b := range systemBarlines(ink, sys, i, p) {
			all = append(all, b)
			if b.Score >= p.BarlinePublishScore {
				published = append(published, b)
			}
		}
	}
	return published, all
}

// barlineBand is the vertical scan band of a system: the extent of its
// staff lines padded by BarlineBandPad·S. For a grand system the band runs
// from the treble top line to the bass bottom line.
func barlineBand(sys System, p Params) (y1, y2 int, ok bool) {
	lines := sys.Lines()
	if len(lines) == 0 {
		return 0, 0, false
	}
	pad := p.BarlineBandPad * sys.Spacing
	top, bottom := lines[0], lines[len(lines)-1]
	y1 = max(sys.Bounds.Y1, int(math.Floor(top-pad)))
	y2 = min(sys.Bounds.Y2, int(math.Ceil(bottom+pad))+1)
	return y1, y2, y2 > y1
}

// systemBarlines implements the per-system column scan.
//
// # Algorithm
//
//  1. Skip the symbol zone at the left of the system (clef, key and time
//     signature): min(BarlineSymbolZoneFrac of the width, BarlineSymbolZoneMax·S).
//  2. For each column of the band compute the ink fraction and the longest
//     unbroken run as fractions of the band height. Each series is smoothed
//     with a radius-1 box filter, keeping the raw value where it is larger
//     so one- and two-pixel barlines are not diluted by their neighbors.
//  3. Columns with run fraction >= BarlineMinRunFrac and ink fraction >=
//     BarlineMinInkFrac qualify; contiguous qualifying columns form a run.
//  4. score = 0.75·mean run fraction + 0.20·min(1, mean ink fraction/0.40)
//     + 0.05 when the run is no wider than 3× the expected thickness.
//     Runs whose ends look like a notehead is attached are stems, and
//     their score is halved.
//  5. Runs at most BarlineMergeGap px apart are merged, keeping the higher
//     score. Merged runs are then padded by one column each side and span
//     the system's height.
func systemBarlines(ink *InkMap, sys System, index int, p Params) []Barline {
	b := sys.Bounds.Clamp(ink.Width, ink.Height)
	y1, y2, ok := barlineBand(sys, p)
	if b.Empty() || !ok {
		return nil
	}
	spacing := max(sys.Spacing, p.MinSpacing)
	zone := int(math.Min(p.BarlineSymbolZoneFrac*float64(b.Width()), p.BarlineSymbolZoneMax*spacing))
	x1 := b.X1 + zone
	if x1 >= b.X2 {
		return nil
	}

	bandH := float64(y2 - y1)
	n := b.X2 - x1
	runFrac := make([]float64, n)
	inkFrac := make([]float64, n)
	band := Bounds{X1: x1, Y1: y1, X2: b.X2, Y2: y2}
	for i, c := range ink.ColumnCounts(band) {
		inkFrac[i] = float64(c) / bandH
		runFrac[i] = float64(ink.longestColumnRun(x1+i, y1, y2)) / bandH
	}
	runFrac = smoothKeepPeaks(runFrac)
	inkFrac = smoothKeepPeaks(inkFrac)

	thickness := math.Max(1, p.BarlineThickness*spacing)
	var runs []Barline
	for i := 0; i < n; {
		if runFrac[i] < p.BarlineMinRunFrac || inkFrac[i] < p.BarlineMinInkFrac {
			i++
			continue
		}
		j := i
		var sumRun, sumInk float64
		for j < n && runFrac[j] >= p.BarlineMinRunFrac && inkFrac[j] >= p.BarlineMinInkFrac {
			sumRun += runFrac[j]
			sumInk += inkFrac[j]
			j++
		}
		width := j - i
		score := 0.75*sumRun/float64(width) + 0.20*math.Min(1, sumInk/float64(width)/0.40)
		if float64(width) <= 3*thickness {
			score += 0.05
		}

		cols := Bounds{X1: x1 + i, Y1: y1, X2: x1 + j, Y2: y2}
		if headAttached(ink, cols, spacing) {
			score *= 0.5
		}
		runs = append(runs, Barline{Bounds: cols, Score: clampFloat(score, 0, 1), System: index})
		i = j
	}

	found := mergeBarlines(runs, p.BarlineMergeGap)
	for i := range found {
		cols := found[i].Bounds
		found[i].Bounds = Bounds{X1: cols.X1 - 1, Y1: b.Y1, X2: cols.X2 + 1, Y2: b.Y2}.Clamp(ink.Width, ink.Height)
	}
	return found
}

// smoothKeepPeaks box-filters v with radius 1 and keeps the larger of the
// raw and smoothed value at each index.
func smoothKeepPeaks(v []float64) []float64 {
	out := make([]float64, len(v))
	for i := range v {
		var sum float64
		n := 0
		for j := max(0, i-1); j <= min(len(v)-1, i+1); j++ {
			sum += v[j]
			n++
		}
		out[i] = math.Max(v[i], sum/float64(n))
	}
	return out
}

// headAttached reports whether either end of the tallest ink run in cols
// carries a notehead, which marks a stem. A side window holds a head when
// its ink spans at least half a spacing both ways and fills more than 0.4
// of its own box; open rings pass, staff-line stubs do not.
func headAttached(ink *InkMap, cols Bounds, spacing float64) bool {
	top, bottom := cols.Y2, cols.Y1
	for x := cols.X1; x < cols.X2; x++ {
		start, best, bestStart := -1, 0, -1
		for y := cols.Y1; y <= cols.Y2; y++ {
			if y < cols.Y2 && ink.At(x, y) {
				if start < 0 {
					start = y
				}
				continue
			}
			if start >= 0 && y-start > best {
				best, bestStart = y-start, start
			}
			start = -1
		}
		if bestStart >= 0 {
			top, bottom = min(top, bestStart), max(bottom, bestStart+best)
		}
	}
	if bottom <= top {
		return false
	}

	// A head hangs off one side of its stem, so each side is judged alone.
	side := px(1.2, spacing, 3)
	dy := px(0.7, spacing, 2)
	minSize := 0.5 * spacing
	for _, y := range []int{top, bottom} {
		left := Bounds{X1: cols.X1 - side, Y1: y - dy, X2: cols.X1, Y2: y + dy}
		right := Bounds{X1: cols.X2, Y1: y - dy, X2: cols.X2 + side, Y2: y + dy}
		for _, win := range []Bounds{left, right} {
			blob := ink.InkBounds(win)
			if float64(blob.Width()) >= minSize && float64(blob.Height()) >= minSize && ink.Fill(blob) > 0.4 {
				return true
			}
		}
	}
	return false
}

// mergeBarlines joins barlines of the same system whose column spans are at
// most gap px apart (paper columns between them). The merged box covers
// both; the score is the higher one.
func mergeBarlines(bars []Barline, gap int) []Barline {
	if len(bars) < 2 {
		return bars
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Bounds.X1 < bars[j].Bounds.X1 })
	out := []Barline{bars[0]}
	for _, b := range bars[1:] {
		last := &out[len(out)-1]
		if b.System == last.System && b.Bounds.X1-last.Bounds.X2 <= gap {
			last.Bounds = last.Bounds.Union(b.Bounds)
			last.Score = math.Max(last.Score, b.Score)
			continue
		}
		out = append(out, b)
	}
	return out
}
