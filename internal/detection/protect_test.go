package detection

import (
	"testing"

	"github.com/ironsheep/notecolor-mcp/internal/imaging"
)

func TestHollowHeadMask(t *testing.T) {
	p := DefaultParams()
	r := imaging.NewRaster(130, 40)
	fillRing(r, 20, 20.5, 7, 5, 4.5, 2.5) // half note head
	fillEllipse(r, 50, 20.5, 7, 5)        // filled head
	fillRect(r, 75, 14, 88, 28)           // square frame around a square hole
	for y := 17; y < 24; y++ {
		for x := 78; x < 84; x++ {
			r.SetGray(x, y, 255)
		}
	}
	fillRing(r, 105, 20.5, 7, 5, 4.5, 2.5) // ring broken open on the right
	for y := 19; y < 23; y++ {
		for x := 108; x < 113; x++ {
			r.SetGray(x, y, 255)
		}
	}
	ink := Binarize(r, p.InkCutoff)

	mask := HollowHeadMask(ink, ink.Bounds(), 12, p)

	// The 9x6 hole at (16,18) grows by 4 px each way.
	want := Bounds{X1: 12, Y1: 14, X2: 29, Y2: 28}
	if got := mask.Count(); got != want.Area() {
		t.Errorf("marked %d px, want %d", got, want.Area())
	}
	for _, pt := range [][2]int{{want.X1, want.Y1}, {want.X2 - 1, want.Y2 - 1}, {14, 20}, {20, 20}} {
		if !mask.At(pt[0], pt[1]) {
			t.Errorf("ring pixel %v not marked", pt)
		}
	}
	for _, pt := range [][2]int{{50, 20}, {81, 20}, {105, 20}} {
		if mask.At(pt[0], pt[1]) {
			t.Errorf("pixel %v marked", pt)
		}
	}
}

func TestHollowHeadMask_EmptyRegion(t *testing.T) {
	ink := NewInkMap(10, 10)
	if got := HollowHeadMask(ink, Bounds{X1: 20, Y1: 20, X2: 30, Y2: 30}, 12, DefaultParams()); got.Count() != 0 {
		t.Errorf("marked %d px outside the map", got.Count())
	}
}
