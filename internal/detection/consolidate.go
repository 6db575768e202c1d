package detection

import (
	"math"
	"sort"
)

// better reports whether a should be preferred over b when only one of them
// can stay: higher score, then smaller box, then top-left position.
func better(a, b Candidate) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.Bounds.Area() != b.Bounds.Area() {
		return a.Bounds.Area() < b.Bounds.Area()
	}
	if a.Bounds.X1 != b.Bounds.X1 {
		return a.Bounds.X1 < b.Bounds.X1
	}
	return a.Bounds.Y1 < b.Bounds.Y1
}

// SuppressClusters removes small candidates that sit in dense clusters.
//
// A candidate is small when its area is at most ClusterAreaFrac·S². A small
// candidate with ClusterMinNeighbors or more small neighbors (same system,
// centers within ClusterRadius·S) is dropped unless it is the best of its
// neighborhood. Neighborhoods are computed on the input as a whole, so the
// result does not depend on order and a second pass changes nothing.
func SuppressClusters(cs []Candidate, p Params) (kept, dropped []Candidate) {
	small := make([]bool, len(cs))
	for i, c := range cs {
		s := max(c.Spacing, p.MinSpacing)
		small[i] = float64(c.Bounds.Area()) <= p.ClusterAreaFrac*s*s
	}
	for i, c := range cs {
		if !small[i] {
			kept = append(kept, c)
			continue
		}
		radius := p.ClusterRadius * max(c.Spacing, p.MinSpacing)
		neighbors, best := 0, true
		for j, o := range cs {
			if i == j || !small[j] || o.System != c.System || centerDistance(c.Bounds, o.Bounds) > radius {
				continue
			}
			neighbors++
			if better(o, c) {
				best = false
			}
		}
		if neighbors >= p.ClusterMinNeighbors && !best {
			dropped = append(dropped, c)
			continue
		}
		kept = append(kept, c)
	}
	return kept, dropped
}

// slotKey identifies one notehead position: a staff step at an x bucket.
type slotKey struct {
	system int
	clef   Clef
	step   int
	bucket int
}

// ConsolidateSlots keeps the best candidate for every (system, clef, step,
// x bucket) slot. Buckets are SlotBin·S wide. Chord tones differ in step
// and successive notes in bucket, so both survive. Output keeps input order.
func ConsolidateSlots(cs []Candidate, p Params) (kept, dropped []Candidate) {
	winner := make(map[slotKey]int, len(cs))
	keys := make([]slotKey, len(cs))
	for i, c := range cs {
		bin := p.SlotBin * max(c.Spacing, p.MinSpacing)
		keys[i] = slotKey{
			system: c.System,
			clef:   c.Fit.Clef,
			step:   c.Fit.Step,
			bucket: int(math.Floor(c.Bounds.CenterX() / bin)),
		}
		if w, ok := winner[keys[i]]; !ok || better(c, cs[w]) {
			winner[keys[i]] = i
		}
	}
	for i, c := range cs {
		if winner[keys[i]] == i {
			kept = append(kept, c)
		} else {
			dropped = append(dropped, c)
		}
	}
	return kept, dropped
}

// DedupeByRadius drops candidates whose center lies within DedupeRadius·S of
// a kept one. Smaller boxes are kept first (tighter localization), then
// higher scores. The survivors come back in input order.
func DedupeByRadius(cs []Candidate, p Params) (kept, dropped []Candidate) {
	order := make([]int, len(cs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ca, cb := cs[order[a]], cs[order[b]]
		if ca.Bounds.Area() != cb.Bounds.Area() {
			return ca.Bounds.Area() < cb.Bounds.Area()
		}
		return ca.Score > cb.Score
	})

	keep := make([]bool, len(cs))
	var accepted []int
	for _, i := range order {
		c := cs[i]
		dup := false
		for _, k := range accepted {
			radius := p.DedupeRadius * max(min(c.Spacing, cs[k].Spacing), p.MinSpacing)
			if centerDistance(c.Bounds, cs[k].Bounds) <= radius {
				dup = true
				break
			}
		}
		if !dup {
			keep[i] = true
			accepted = append(accepted, i)
		}
	}
	for i, c := range cs {
		if keep[i] {
			kept = append(kept, c)
		} else {
			dropped = append(dropped, c)
		}
	}
	return kept, dropped
}
