package detection

import (
	"slices"
	"testing"
)

func cand(x, y, w, h, step int, score float64) Candidate {
	return Candidate{
		Bounds:  Rect(x, y, x+w, y+h),
		Spacing: 12,
		Fit:     StaffFit{Clef: ClefTreble, Step: step},
		Score:   score,
	}
}

func TestConsolidateSlots(t *testing.T) {
	p := DefaultParams()
	cs := []Candidate{
		cand(100, 100, 14, 11, 4, 2.1),
		cand(101, 100, 14, 11, 4, 2.4), // same slot, better
		cand(100, 112, 14, 11, 2, 2.0), // chord tone below
		cand(140, 100, 14, 11, 4, 2.0), // next note
	}
	kept, dropped := ConsolidateSlots(cs, p)
	if len(kept) != 3 || len(dropped) != 1 {
		t.Fatalf("kept %d dropped %d, want 3 and 1", len(kept), len(dropped))
	}
	if dropped[0].Bounds != cs[0].Bounds {
		t.Errorf("dropped %v, want the weaker slot twin", dropped[0].Bounds)
	}
	if kept[0].Bounds != cs[1].Bounds {
		t.Errorf("kept order not preserved: %v", kept[0].Bounds)
	}
}

func TestDedupeByRadius(t *testing.T) {
	p := DefaultParams()
	a := cand(100, 100, 14, 11, 4, 2.0)
	b := cand(102, 101, 14, 11, 3, 2.5) // 0.19 S away, different step
	c := cand(98, 99, 18, 13, 4, 2.8)   // larger box around the same head
	far := cand(130, 100, 14, 11, 4, 1.0)

	kept, dropped := DedupeByRadius([]Candidate{a, b, c, far}, p)
	if len(kept) != 2 || len(dropped) != 2 {
		t.Fatalf("kept %v", kept)
	}
	if kept[0].Bounds != b.Bounds || kept[1].Bounds != far.Bounds {
		t.Errorf("kept %v and %v", kept[0].Bounds, kept[1].Bounds)
	}
}

func TestSuppressClusters(t *testing.T) {
	p := DefaultParams()
	var cs []Candidate
	for i := range 4 {
		cs = append(cs, cand(100+3*i, 100, 3, 3, 4, 1.0+0.1*float64(i)))
	}
	big := cand(104, 96, 14, 11, 4, 1.0)
	cs = append(cs, big)

	kept, dropped := SuppressClusters(cs, p)
	if len(dropped) != 3 {
		t.Fatalf("dropped %d, want 3", len(dropped))
	}
	if len(kept) != 2 || kept[0].Bounds != cs[3].Bounds || kept[1].Bounds != big.Bounds {
		t.Errorf("kept %+v", kept)
	}

	// Fewer than ClusterMinNeighbors neighbors leaves small marks alone.
	kept, _ = SuppressClusters(cs[:3], p)
	if len(kept) != 3 {
		t.Errorf("pair of neighbors suppressed: %d kept", len(kept))
	}
}

func TestConsolidation_Idempotent(t *testing.T) {
	p := DefaultParams()
	cs := []Candidate{
		cand(100, 100, 14, 11, 4, 2.1),
		cand(101, 100, 14, 11, 4, 2.4),
		cand(100, 112, 14, 11, 2, 2.0),
		cand(103, 102, 3, 3, 3, 0.5),
		cand(106, 102, 3, 3, 3, 0.6),
		cand(109, 102, 3, 3, 3, 0.7),
		cand(112, 102, 3, 3, 3, 0.8),
		cand(200, 100, 14, 11, 4, 2.2),
	}
	stages := []struct {
		name string
		fn   func([]Candidate, Params) ([]Candidate, []Candidate)
	}{
		{"clusters", SuppressClusters},
		{"slots", ConsolidateSlots},
		{"dedupe", DedupeByRadius},
	}
	for _, st := range stages {
		t.Run(st.name, func(t *testing.T) {
			once, _ := st.fn(cs, p)
			twice, dropped := st.fn(once, p)
			if len(dropped) != 0 || !slices.EqualFunc(once, twice, func(a, b Candidate) bool { return a.Bounds == b.Bounds }) {
				t.Errorf("second pass changed the set: %d -> %d", len(once), len(twice))
			}
		})
	}
}
