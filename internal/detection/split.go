package detection

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// SplitCandidate breaks an oversized candidate box into single noteheads.
//
// Boxes smaller than SplitTrigger heads in both directions come back
// unchanged. Larger boxes are split in this order:
//
//  1. Wide split on the column projection, ignoring beam rows (rows holding
//     at least SplitBeamRow of the busiest row's ink) and stem columns (see
//     stemColumns). Every resulting piece may then be split tall.
//  2. Otherwise a tall split on the row projection of the central columns,
//     for stacked chords.
//  3. Otherwise, when the box is at least SplitForceAspect long for its
//     width and spans two or more head sizes, an even split along its long
//     axis. Pieces that are mostly paper are dropped.
//
// A box whose ink is dominated by one thin central vertical stroke is a
// barline or stem and is never split. Pieces are shrunk to their ink and
// de-duplicated with IoU non-maximum suppression.
func SplitCandidate(ink *InkMap, b Bounds, spacing float64, p Params) []Bounds {
	spacing = max(spacing, p.MinSpacing)
	headW := p.HeadWidth * spacing
	headH := p.HeadHeight * spacing
	wide := float64(b.Width()) >= p.SplitTrigger*headW
	tall := float64(b.Height()) >= p.SplitTrigger*headH
	if b.Empty() || (!wide && !tall) {
		return []Bounds{b}
	}
	if dominantStroke(ink, b, spacing) {
		return []Bounds{b}
	}

	var pieces []Bounds
	if wide {
		pieces = splitAxis(ink, b, spacing, true, stemColumns(ink, b, spacing), p)
	}
	if len(pieces) >= 2 {
		out := make([]Bounds, 0, len(pieces))
		for _, piece := range pieces {
			if float64(piece.Height()) >= p.SplitTrigger*headH {
				if sub := splitAxis(ink, piece, spacing, false, nil, p); len(sub) >= 2 {
					out = append(out, sub...)
					continue
				}
			}
			out = append(out, piece)
		}
		pieces = out
	} else if tall {
		pieces = splitAxis(ink, b, spacing, false, nil, p)
	}
	if len(pieces) < 2 {
		pieces = forcedSplit(ink, b, headW, headH, p)
	}
	if len(pieces) < 2 {
		return []Bounds{b}
	}
	return suppressOverlaps(pieces, p.SplitNMSIoU)
}

// splitAxis splits b along x (wide) or y (tall) at the valleys of the ink
// projection. It returns nil unless at least two supported peaks exist.
// Columns flagged in skip (indexed from b.X1) hold no ink for a wide split.
func splitAxis(ink *InkMap, b Bounds, spacing float64, wide bool, skip []bool, p Params) []Bounds {
	var proj []float64
	if wide {
		proj = columnProjection(ink, b, p.SplitBeamRow, skip)
	} else {
		// Central columns only: stems hug the sides of a chord.
		inset := b.Width() / 5
		band := Bounds{X1: b.X1 + inset, Y1: b.Y1, X2: b.X2 - inset, Y2: b.Y2}
		if band.Empty() {
			band = b
		}
		for _, v := range ink.RowCounts(band) {
			proj = append(proj, float64(v))
		}
	}
	if len(proj) < 3 {
		return nil
	}
	proj = boxSmooth(proj)
	peak := floats.Max(proj)
	if peak <= 0 {
		return nil
	}
	floor := math.Max(0.6*median(proj), 0.35*peak)

	segments := projectionSegments(proj, floor)
	minSupport := px(p.SplitMinSupport, spacing, 2)
	kept := segments[:0]
	for _, s := range segments {
		if s[1]-s[0] >= minSupport {
			kept = append(kept, s)
		}
	}
	if len(kept) < 2 {
		return nil
	}

	origin, end := b.X1, b.X2
	if !wide {
		origin, end = b.Y1, b.Y2
	}
	cuts := []int{origin}
	for i := 1; i < len(kept); i++ {
		cuts = append(cuts, origin+(kept[i-1][1]+kept[i][0])/2)
	}
	cuts = append(cuts, end)
	if !wide {
		skip = nil
	}
	return piecesAt(ink, b, cuts, wide, skip)
}

// stemColumns flags the columns of b that carry a stem: a group of at most
// max(2, 0.35·S) adjacent columns, each holding one unbroken run
// of at least 3/4 of the box height. A shared stem between the heads of a
// second would otherwise fill the valley between them. It returns nil when
// no column qualifies.
func stemColumns(ink *InkMap, b Bounds, spacing float64) []bool {
	h := b.Height()
	if h == 0 {
		return nil
	}
	tall := make([]bool, b.Width())
	for i := range tall {
		tall[i] = float64(ink.longestColumnRun(b.X1+i, b.Y1, b.Y2)) >= 0.75*float64(h)
	}
	maxWidth := math.Max(2, 0.35*spacing)
	var out []bool
	for i := 0; i < len(tall); {
		if !tall[i] {
			i++
			continue
		}
		j := i
		for j < len(tall) && tall[j] {
			j++
		}
		if float64(j-i) <= maxWidth {
			if out == nil {
				out = make([]bool, len(tall))
			}
			for k := i; k < j; k++ {
				out[k] = true
			}
		}
		i = j
	}
	return out
}

// columnProjection sums ink per column of b, leaving out beam rows and the
// columns flagged in skip. If nearly every row looks like a beam (solid
// blocks) all rows are used.
func columnProjection(ink *InkMap, b Bounds, beamFrac float64, skip []bool) []float64 {
	rows := ink.RowCounts(b)
	maxRow := 0
	for _, v := range rows {
		maxRow = max(maxRow, v)
	}
	beam := make([]bool, len(rows))
	skipped := 0
	for i, v := range rows {
		if maxRow > 0 && float64(v) >= beamFrac*float64(maxRow) {
			beam[i] = true
			skipped++
		}
	}
	if skipped*4 > len(rows)*3 {
		beam = make([]bool, len(rows))
	}

	proj := make([]float64, b.Width())
	for y := b.Y1; y < b.Y2; y++ {
		if beam[y-b.Y1] {
			continue
		}
		for x := b.X1; x < b.X2; x++ {
			if skip != nil && skip[x-b.X1] {
				continue
			}
			if ink.At(x, y) {
				proj[x-b.X1]++
			}
		}
	}
	return proj
}

func boxSmooth(v []float64) []float64 {
	out := make([]float64, len(v))
	for i := range v {
		lo, hi := max(0, i-1), min(len(v)-1, i+1)
		out[i] = floats.Sum(v[lo:hi+1]) / float64(hi-lo+1)
	}
	return out
}

// projectionSegments returns [start, end) index ranges where proj stays at
// or above floor. A range is cut again at any interior valley that drops
// below 0.7 of the smaller of the maxima on either side.
func projectionSegments(proj []float64, floor float64) [][2]int {
	var out [][2]int
	for i := 0; i < len(proj); {
		if proj[i] < floor {
			i++
			continue
		}
		j := i
		for j < len(proj) && proj[j] >= floor {
			j++
		}
		out = append(out, splitValleys(proj, i, j)...)
		i = j
	}
	return out
}

func splitValleys(proj []float64, start, end int) [][2]int {
	for k := start + 1; k < end-1; k++ {
		if proj[k] > proj[k-1] || proj[k] > proj[k+1] {
			continue
		}
		left := floats.Max(proj[start:k])
		right := floats.Max(proj[k+1 : end])
		if proj[k] < 0.7*math.Min(left, right) {
			return append([][2]int{{start, k}}, splitValleys(proj, k+1, end)...)
		}
	}
	return [][2]int{{start, end}}
}

// piecesAt cuts b at the given coordinates and shrinks each piece to its
// ink. Columns flagged in skip (indexed from b.X1) are left out of the
// shrink, so a shared stem does not stretch its heads.
func piecesAt(ink *InkMap, b Bounds, cuts []int, wide bool, skip []bool) []Bounds {
	out := make([]Bounds, 0, len(cuts)-1)
	for i := 1; i < len(cuts); i++ {
		piece := b
		if wide {
			piece.X1, piece.X2 = cuts[i-1], cuts[i]
		} else {
			piece.Y1, piece.Y2 = cuts[i-1], cuts[i]
		}
		if tight := inkBoundsSkipping(ink, piece, b.X1, skip); !tight.Empty() {
			out = append(out, tight)
		}
	}
	return out
}

// inkBoundsSkipping is InkMap.InkBounds ignoring the columns flagged in
// skip, which is indexed from x0.
func inkBoundsSkipping(ink *InkMap, b Bounds, x0 int, skip []bool) Bounds {
	if skip == nil {
		return ink.InkBounds(b)
	}
	b = b.Clamp(ink.Width, ink.Height)
	minX, minY, maxX, maxY := b.X2, b.Y2, b.X1-1, b.Y1-1
	for x := b.X1; x < b.X2; x++ {
		if i := x - x0; i >= 0 && i < len(skip) && skip[i] {
			continue
		}
		for y := b.Y1; y < b.Y2; y++ {
			if ink.At(x, y) {
				minX, maxX = min(minX, x), max(maxX, x)
				minY, maxY = min(minY, y), max(maxY, y)
			}
		}
	}
	if maxX < minX {
		return Bounds{}
	}
	return Bounds{X1: minX, Y1: minY, X2: maxX + 1, Y2: maxY + 1}
}

// forcedSplit cuts b evenly along its long axis when its proportions say it
// holds several heads.
func forcedSplit(ink *InkMap, b Bounds, headW, headH float64, p Params) []Bounds {
	w, h := float64(b.Width()), float64(b.Height())
	wide := w >= h
	long, short, head := w, h, headW
	if !wide {
		long, short, head = h, w, headH
	}
	n := int(math.Round(long / head))
	if short <= 0 || long/short < p.SplitForceAspect || n < 2 {
		return nil
	}

	origin := b.X1
	if !wide {
		origin = b.Y1
	}
	cuts := make([]int, n+1)
	for i := range cuts {
		cuts[i] = origin + int(math.Round(float64(i)*long/float64(n)))
	}
	var out []Bounds
	for _, piece := range piecesAt(ink, b, cuts, wide, nil) {
		if ink.Fill(piece) >= 0.2 {
			out = append(out, piece)
		}
	}
	return out
}

// dominantStroke reports whether b's ink is mostly one thin vertical stroke
// through its central columns.
func dominantStroke(ink *InkMap, b Bounds, spacing float64) bool {
	h := b.Height()
	if h == 0 {
		return false
	}
	first, last := -1, -1
	for x := b.X1; x < b.X2; x++ {
		if float64(ink.longestColumnRun(x, b.Y1, b.Y2)) < 0.85*float64(h) {
			continue
		}
		if first >= 0 && x > last+1 {
			return false // more than one stroke
		}
		if first < 0 {
			first = x
		}
		last = x
	}
	if first < 0 {
		return false
	}
	if float64(last-first+1) > math.Max(2, 0.35*spacing) {
		return false
	}
	center := b.CenterX()
	third := float64(b.Width()) / 3
	if math.Abs(float64(first+last)/2-center) > math.Max(1, third/2) {
		return false
	}
	stroke := ink.CountIn(Bounds{X1: first, Y1: b.Y1, X2: last + 1, Y2: b.Y2})
	total := ink.CountIn(b)
	return total > 0 && float64(total-stroke) < 0.35*float64(total)
}

// suppressOverlaps drops boxes overlapping a larger kept box by more than
// iou, then orders the survivors left to right, top to bottom.
func suppressOverlaps(boxes []Bounds, iou float64) []Bounds {
	sorted := append([]Bounds(nil), boxes...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Area() > sorted[j].Area() })
	kept := make([]Bounds, 0, len(sorted))
	for _, b := range sorted {
		ok := true
		for _, k := range kept {
			if IoU(b, k) > iou {
				ok = false
				break
			}
		}
		if ok {
			kept = append(kept, b)
		}
	}
	sort.Slice(kept, func(i, j int) bool {
		if kept[i].X1 != kept[j].X1 {
			return kept[i].X1 < kept[j].X1
		}
		return kept[i].Y1 < kept[j].Y1
	})
	return kept
}
