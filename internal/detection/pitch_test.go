package detection

import (
	"strings"
	"testing"
)

func TestClassifyPitch(t *testing.T) {
	tests := []struct {
		clef Clef
		step int
		want PitchClass
	}{
		{ClefTreble, 0, PitchE},
		{ClefTreble, 1, PitchF},
		{ClefTreble, 8, PitchF},
		{ClefTreble, -2, PitchC},
		{ClefTreble, -5, PitchG},
		{ClefBass, 0, PitchG},
		{ClefBass, 4, PitchD},
		{ClefBass, 10, PitchC},
		{ClefBass, -1, PitchF},
		{ClefNone, 5, PitchC},
	}
	for _, tt := range tests {
		if got := ClassifyPitch(StaffFit{Clef: tt.clef, Step: tt.step}); got != tt.want {
			t.Errorf("ClassifyPitch(%v, %d) = %v, want %v", tt.clef, tt.step, got, tt.want)
		}
	}
}

func TestPitchClass_Colors(t *testing.T) {
	seen := map[string]bool{}
	for pc := PitchC; pc <= PitchB; pc++ {
		hex := pc.Hex()
		if len(hex) != 7 || !strings.HasPrefix(hex, "#") {
			t.Errorf("%v: bad hex %q", pc, hex)
		}
		if seen[hex] {
			t.Errorf("%v: color %s reused", pc, hex)
		}
		seen[hex] = true
	}

	r, g, b := PitchC.Color().RGB255()
	if r < 200 || g > 60 || b > 60 {
		t.Errorf("C should be red, got %d,%d,%d", r, g, b)
	}
	if PitchA.String() != "A" {
		t.Errorf("String = %q", PitchA.String())
	}
}
