package detection

import (
	"testing"

	"github.com/ironsheep/notecolor-mcp/internal/imaging"
)

func TestRemoveStaffLines_KeepsHeadsAndStems(t *testing.T) {
	p := DefaultParams()
	r := imaging.NewRaster(300, 200)
	lines := drawStaff(r, 50, 12, 2, 10, 290)
	fillEllipse(r, 100, lines[2], 7.5, 5.5) // head on the middle line
	fillRect(r, 200, 40, 202, 120)          // barline-like stroke
	ink := Binarize(r, p.InkCutoff)

	sys := staffSystem(lines, r.Width, r.Height)
	out := RemoveStaffLines(ink, []System{sys}, p)

	if out.CountIn(Bounds{X1: 10, Y1: 48, X2: 80, Y2: 52}) != 0 {
		t.Error("top line should be removed")
	}
	if !out.At(100, int(lines[2])) {
		t.Error("head pixel on the line should survive")
	}
	if !out.At(201, int(lines[1])) {
		t.Error("vertical stroke crossing a line should survive")
	}
	if !ink.At(20, 50) {
		t.Error("input map was modified")
	}
}

func TestEraseHorizontalRuns(t *testing.T) {
	p := DefaultParams()
	region := Bounds{X2: 200, Y2: 120}

	t.Run("erases a thin run", func(t *testing.T) {
		ink := NewInkMap(200, 120)
		inkRect(ink, 20, 30, 170, 32)  // 150×2 run
		inkRect(ink, 60, 40, 140, 120) // large solid block
		out, aborted := EraseHorizontalRuns(ink, region, nil, 10, nil, p)
		if aborted {
			t.Fatal("erasure should not abort")
		}
		if out.CountIn(Bounds{X1: 20, Y1: 30, X2: 170, Y2: 32}) != 0 {
			t.Error("thin run should be erased")
		}
		if out.CountIn(Bounds{X1: 60, Y1: 40, X2: 140, Y2: 120}) != 80*80 {
			t.Error("block should be untouched")
		}
	})

	t.Run("aborts on over-erasure", func(t *testing.T) {
		ink := NewInkMap(200, 120)
		inkRect(ink, 20, 30, 170, 32)
		inkRect(ink, 60, 40, 100, 80) // 1600 px: the run is ~16% of the ink
		out, aborted := EraseHorizontalRuns(ink, region, nil, 10, nil, p)
		if !aborted {
			t.Fatal("erasure should abort")
		}
		if out.Count() != ink.Count() {
			t.Errorf("aborted erasure changed the map: %d -> %d", ink.Count(), out.Count())
		}
	})

	t.Run("skips staff bands and protected ink", func(t *testing.T) {
		ink := NewInkMap(200, 120)
		inkRect(ink, 20, 30, 170, 32)
		inkRect(ink, 20, 90, 170, 92)
		inkRect(ink, 0, 0, 200, 20) // bulk ink so the guard stays quiet
		protect := NewMask(region)
		for x := 20; x < 170; x++ {
			protect.Set(x, 90)
			protect.Set(x, 91)
		}
		out, aborted := EraseHorizontalRuns(ink, region, []float64{30.5}, 10, protect, p)
		if aborted {
			t.Fatal("unexpected abort")
		}
		if out.CountIn(Bounds{X1: 20, Y1: 30, X2: 170, Y2: 32}) != 300 {
			t.Error("run inside a staff band should be kept")
		}
		if out.CountIn(Bounds{X1: 20, Y1: 90, X2: 170, Y2: 92}) != 300 {
			t.Error("protected run should be kept")
		}
	})
}
