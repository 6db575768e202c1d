package detection

import (
	"encoding/json"

	"github.com/lucasb-eyer/go-colorful"
)

// PitchClass is a note letter, C through B.
type PitchClass int

const (
	PitchC PitchClass = iota
	PitchD
	PitchE
	PitchF
	PitchG
	PitchA
	PitchB
)

var pitchNames = [7]string{"C", "D", "E", "F", "G", "A", "B"}

func (pc PitchClass) String() string {
	return pitchNames[mod7(int(pc))]
}

// MarshalJSON writes the letter.
func (pc PitchClass) MarshalJSON() ([]byte, error) { return json.Marshal(pc.String()) }

// Color is the display color of the class. Hues are spread evenly around
// the wheel starting with C at red.
func (pc PitchClass) Color() colorful.Color {
	return colorful.Hsv(float64(mod7(int(pc)))*360.0/7, 0.85, 0.9)
}

// Hex is Color as "#rrggbb".
func (pc PitchClass) Hex() string { return pc.Color().Hex() }

// Step 0 is the bottom line of the staff.
var (
	trebleSteps = [7]PitchClass{PitchE, PitchF, PitchG, PitchA, PitchB, PitchC, PitchD}
	bassSteps   = [7]PitchClass{PitchG, PitchA, PitchB, PitchC, PitchD, PitchE, PitchF}
)

// ClassifyPitch maps a staff fit to its pitch class. Bass fits use the bass
// sequence; treble and fallback fits use the treble one.
func ClassifyPitch(fit StaffFit) PitchClass {
	if fit.Clef == ClefBass {
		return bassSteps[mod7(fit.Step)]
	}
	return trebleSteps[mod7(fit.Step)]
}

func mod7(v int) int {
	return ((v % 7) + 7) % 7
}
