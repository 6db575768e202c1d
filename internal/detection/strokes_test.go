package detection

import (
	"testing"

	"github.com/ironsheep/notecolor-mcp/internal/imaging"
)

func TestMask_OriginAndDilate(t *testing.T) {
	m := NewMask(Bounds{X1: 10, Y1: 20, X2: 20, Y2: 30})
	m.Set(15, 25)
	m.Set(0, 0) // outside, ignored

	if !m.At(15, 25) || m.At(5, 5) {
		t.Fatal("At should use page coordinates")
	}
	if m.Count() != 1 {
		t.Fatalf("Count = %d", m.Count())
	}

	d := m.Dilate(1)
	if d.Count() != 9 {
		t.Errorf("dilated Count = %d, want 9", d.Count())
	}
	if !d.At(14, 24) || !d.At(16, 26) || d.At(17, 25) {
		t.Error("dilation should cover exactly the 3×3 neighborhood")
	}
	if m.Count() != 1 {
		t.Error("Dilate modified the receiver")
	}

	var nilMask *Mask
	if nilMask.At(1, 1) || nilMask.Count() != 0 {
		t.Error("nil mask should be empty")
	}
}

func TestMask_OverlapRatio(t *testing.T) {
	ink := NewInkMap(20, 20)
	inkRect(ink, 0, 0, 10, 10)
	m := NewMask(Bounds{X2: 20, Y2: 20})
	for y := 0; y < 10; y++ {
		m.Set(0, y)
		m.Set(1, y)
	}
	if got := m.OverlapRatio(ink, Bounds{X2: 10, Y2: 10}, nil); got != 0.2 {
		t.Errorf("OverlapRatio = %v, want 0.2", got)
	}
	if got := m.OverlapRatio(ink, Bounds{X1: 15, Y1: 15, X2: 20, Y2: 20}, nil); got != 0 {
		t.Errorf("OverlapRatio over paper = %v", got)
	}

	except := NewMask(Bounds{X1: 8, X2: 10, Y2: 10})
	for i := range except.Pix {
		except.Pix[i] = 1
	}
	if got := m.OverlapRatio(ink, Bounds{X2: 10, Y2: 10}, except); got != 0.25 {
		t.Errorf("OverlapRatio with except = %v, want 0.25", got)
	}
}

func TestRunLengths(t *testing.T) {
	m := NewInkMap(10, 10)
	inkRect(m, 2, 3, 7, 4) // 5 wide, 1 tall
	for i := 0; i < 4; i++ {
		m.Set(1+i, 5+i, true)
	}
	region := m.Bounds()

	h := runLengths(m, region, 1, 0)
	if h[3*10+4] != 5 || h[0] != 0 {
		t.Errorf("horizontal runs wrong: %d %d", h[3*10+4], h[0])
	}
	v := runLengths(m, region, 0, 1)
	if v[3*10+4] != 1 {
		t.Errorf("vertical run = %d, want 1", v[3*10+4])
	}
	d := runLengths(m, region, 1, 1)
	if d[6*10+2] != 4 {
		t.Errorf("diagonal run = %d, want 4", d[6*10+2])
	}
}

// stemmedHead draws a filled head at (cx, cy) with an up-stem on its right.
func stemmedHead(r *imaging.Raster, cx, cy float64, spacing int) {
	s := float64(spacing)
	fillEllipse(r, cx, cy, 0.65*s, 0.5*s)
	x := int(cx + 0.65*s - 1)
	fillRect(r, x-1, int(cy-3.5*s), x+1, int(cy))
}

func TestVerticalStrokeMask_StemNotHead(t *testing.T) {
	p := DefaultParams()
	r := imaging.NewRaster(120, 120)
	stemmedHead(r, 44, 80, 10)
	ink := Binarize(r, p.InkCutoff)

	mask := VerticalStrokeMask(ink, ink.Bounds(), 10, p)
	if !mask.At(49, 55) {
		t.Error("stem pixel should be marked")
	}
	if mask.At(42, 80) {
		t.Error("head center should not be marked")
	}
}

func TestVerticalStrokeMask_Tie(t *testing.T) {
	p := DefaultParams()
	ink := NewInkMap(100, 40)
	// A shallow arc, two pixels thick, 40 px (4 spacings) long.
	for x := 30; x < 70; x++ {
		d := float64(x-50) / 20
		y := 20 + int(4*d*d)
		ink.Set(x, y, true)
		ink.Set(x, y+1, true)
	}
	mask := VerticalStrokeMask(ink, ink.Bounds(), 10, p)
	if mask.OverlapRatio(ink, ink.Bounds(), nil) < 0.9 {
		t.Errorf("tie coverage = %.2f, want it marked as stroke", mask.OverlapRatio(ink, ink.Bounds(), nil))
	}
}

func TestEraseStrokes_RespectsProtect(t *testing.T) {
	p := DefaultParams()
	r := imaging.NewRaster(120, 120)
	stemmedHead(r, 44, 80, 10)
	ink := Binarize(r, p.InkCutoff)

	stroke := VerticalStrokeMask(ink, ink.Bounds(), 10, p)
	protect := BuildProtectMask(ink, ink.Bounds(), 10, p)
	out := EraseStrokes(ink, stroke, protect)

	if out.At(49, 55) {
		t.Error("stem should be erased")
	}
	for _, pt := range [][2]int{{44, 80}, {40, 78}, {48, 80}} {
		if !out.At(pt[0], pt[1]) {
			t.Errorf("head pixel %v was erased", pt)
		}
	}
	if !ink.At(49, 55) {
		t.Error("input map was modified")
	}
	t.Logf("erased %d of %d pixels", ink.Count()-out.Count(), ink.Count())
}

func TestBuildProtectMask_SkipsBeamsAndStems(t *testing.T) {
	p := DefaultParams()
	ink := NewInkMap(200, 100)
	inkRect(ink, 10, 10, 190, 15)  // beam, 0.5 spacing thick
	inkRect(ink, 50, 15, 52, 60)   // stem
	inkRect(ink, 100, 50, 113, 60) // head-sized block

	mask := BuildProtectMask(ink, ink.Bounds(), 10, p)
	if mask.At(100, 12) {
		t.Error("beam should not be protected")
	}
	if mask.At(51, 40) {
		t.Error("stem should not be protected")
	}
	if !mask.At(106, 55) {
		t.Error("head core should be protected")
	}
}

func TestDirectionalStrokeMask(t *testing.T) {
	p := DefaultParams()
	ink := NewInkMap(200, 200)
	for i := 0; i < 40; i++ { // diagonal stroke, 2 px wide
		ink.Set(20+i, 20+i, true)
		ink.Set(21+i, 20+i, true)
	}
	inkRect(ink, 100, 100, 113, 110) // head-sized block
	lines := []float64{150}
	inkRect(ink, 0, 150, 200, 151) // staff line remnant

	mask := DirectionalStrokeMask(ink, ink.Bounds(), lines, 10, p)
	if !mask.At(40, 40) {
		t.Error("diagonal stroke should be marked")
	}
	if mask.At(106, 105) {
		t.Error("head block should not be marked")
	}
	if mask.At(100, 150) {
		t.Error("horizontal runs inside a staff band are ignored")
	}
}
