package detection

import "testing"

func TestRemoveIsolated(t *testing.T) {
	m := NewInkMap(20, 20)
	m.Set(2, 2, true)   // alone
	m.Set(10, 10, true) // pair: each has one neighbor
	m.Set(11, 10, true)
	inkRect(m, 15, 15, 18, 18) // block survives

	out := RemoveIsolated(m)
	if out.At(2, 2) || out.At(10, 10) || out.At(11, 10) {
		t.Error("pixels with at most one neighbor should be removed")
	}
	if out.CountIn(Bounds{X1: 15, Y1: 15, X2: 18, Y2: 18}) != 9 {
		t.Error("block should be untouched")
	}
	if !m.At(2, 2) {
		t.Error("input map was modified")
	}
}

func TestRemoveSmallComponents(t *testing.T) {
	m := NewInkMap(30, 30)
	inkRect(m, 1, 1, 3, 3)     // 4 px
	inkRect(m, 10, 10, 20, 20) // 100 px

	out := RemoveSmallComponents(m, 5)
	if out.CountIn(Bounds{X1: 0, Y1: 0, X2: 5, Y2: 5}) != 0 {
		t.Error("small component should be removed")
	}
	if out.Count() != 100 {
		t.Errorf("Count = %d, want 100", out.Count())
	}
}

func TestCleanNoise_EmptyMap(t *testing.T) {
	out := CleanNoise(NewInkMap(50, 50), 10, DefaultParams())
	if out.Count() != 0 {
		t.Errorf("Count = %d", out.Count())
	}
}
