package detection

import (
	"encoding/json"
	"math"
)

// Clef tells which staff a step index is counted on.
type Clef int

const (
	// ClefNone marks pseudo steps on a fallback system.
	ClefNone Clef = iota
	ClefTreble
	ClefBass
)

func (c Clef) String() string {
	switch c {
	case ClefTreble:
		return "treble"
	case ClefBass:
		return "bass"
	default:
		return "none"
	}
}

// MarshalJSON writes the clef name.
func (c Clef) MarshalJSON() ([]byte, error) { return json.Marshal(c.String()) }

// StaffFit places a vertical position on a staff.
//
// Step counts half spacings from the bottom line of the staff, upward
// positive: 0 is the bottom line, 1 the space above it, 8 the top line.
// Lines are even, spaces odd. Error is the distance, in steps, from the
// exact position to Step.
type StaffFit struct {
	Clef  Clef    `json:"clef"`
	Step  int     `json:"step"`
	Error float64 `json:"step_error"`
}

// GateResult is the outcome of the staff-step gate: a fit and its score, or
// the reason the candidate was rejected.
type GateResult struct {
	Fit    StaffFit
	Score  float64
	Reason RejectReason
}

// OK reports whether the candidate passed the gate.
func (g GateResult) OK() bool { return g.Reason == RejectNone }

// fitStaff measures cy against one staff's lines, top to bottom.
func fitStaff(lines []float64, clef Clef, cy, minSpacing float64) StaffFit {
	spacing := max((lines[4]-lines[0])/4, minSpacing)
	raw := (lines[4] - cy) / (spacing / 2)
	step := math.Round(raw)
	return StaffFit{Clef: clef, Step: int(step), Error: math.Abs(raw - step)}
}

// GateCandidate snaps the vertical center cy to the staff-step grid of sys.
//
// Single staves are read in treble clef. On a grand system the fit with the
// clearly lower error wins; when the errors are within 0.15 steps of each
// other the staff whose middle line is closer wins, with GapBassBias steps
// taken off the bass distance for positions between the staves.
//
// Fallback systems have no grid: the step is counted in half spacings up
// from the page bottom and scored FallbackGateScore.
//
// Steps beyond ±MaxStepIndex and errors above StepHardTol are rejected.
// Errors up to StepSoftTol score 1; beyond it the score is
// max(0, 1 - error/0.5).
func GateCandidate(sys System, cy float64, p Params) GateResult {
	if sys.IsFallback || len(sys.Treble) != 5 {
		spacing := max(sys.Spacing, p.MinSpacing)
		step := int(math.Round((float64(sys.Bounds.Y2) - cy) / (spacing / 2)))
		return GateResult{Fit: StaffFit{Clef: ClefNone, Step: step}, Score: p.FallbackGateScore}
	}

	fit := fitStaff(sys.Treble, ClefTreble, cy, p.MinSpacing)
	if sys.IsGrand() {
		bass := fitStaff(sys.Bass, ClefBass, cy, p.MinSpacing)
		switch {
		case bass.Error < fit.Error-0.15:
			fit = bass
		case fit.Error < bass.Error-0.15:
		default:
			dTreble := math.Abs(float64(fit.Step - 4))
			dBass := math.Abs(float64(bass.Step - 4))
			if sys.InGap(cy) {
				dBass -= p.GapBassBias
			}
			if dBass < dTreble {
				fit = bass
			}
		}
	}

	if abs(fit.Step) > p.MaxStepIndex {
		return GateResult{Fit: fit, Reason: RejectStepRange}
	}
	if fit.Error > p.StepHardTol {
		return GateResult{Fit: fit, Reason: RejectStepError}
	}
	score := 1.0
	if fit.Error > p.StepSoftTol {
		score = clampFloat(1-fit.Error/0.5, 0, 1)
	}
	return GateResult{Fit: fit, Score: score}
}
