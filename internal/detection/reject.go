package detection

import (
	"encoding/json"
	"math"
)

// RejectReason says why a candidate did not become a notehead.
type RejectReason int

const (
	RejectNone RejectReason = iota
	RejectSize
	RejectStepRange
	RejectStepError
	RejectNearBarline
	RejectStaccato
	RejectFlatFar
	RejectTieSlur
	RejectStemLadder
	RejectGapArtifact
	RejectEmpty
	RejectLedger
	RejectTail
	RejectCluster
	RejectSlotDuplicate
	RejectDuplicate
)

var rejectNames = [...]string{
	RejectNone:          "none",
	RejectSize:          "size",
	RejectStepRange:     "step_range",
	RejectStepError:     "step_error",
	RejectNearBarline:   "near_barline",
	RejectStaccato:      "staccato_dot",
	RejectFlatFar:       "flat_far_from_staff",
	RejectTieSlur:       "tie_slur",
	RejectStemLadder:    "stem_ladder",
	RejectGapArtifact:   "gap_artifact",
	RejectEmpty:         "empty",
	RejectLedger:        "ledger_fragment",
	RejectTail:          "tail",
	RejectCluster:       "cluster",
	RejectSlotDuplicate: "slot_duplicate",
	RejectDuplicate:     "duplicate",
}

func (r RejectReason) String() string {
	if r < 0 || int(r) >= len(rejectNames) {
		return "unknown"
	}
	return rejectNames[r]
}

// MarshalJSON writes the reason name.
func (r RejectReason) MarshalJSON() ([]byte, error) { return json.Marshal(r.String()) }

// Candidate is a notehead candidate as it moves through gating, scoring,
// rejection and consolidation.
type Candidate struct {
	Bounds     Bounds
	System     int
	Spacing    float64
	Fit        StaffFit
	GateScore  float64
	Shape      ShapeMetrics
	ShapeScore float64
	Score      float64 // GateWeight·GateScore + ShapeWeight·ShapeScore
}

// IsStrong reports whether c looks enough like a notehead to bypass the
// heuristic vetoes.
func IsStrong(c Candidate, p Params) bool {
	return c.ShapeScore > p.StrongShape && c.Shape.StrokeOverlap < p.StrongOverlap && !c.Shape.ColumnStem
}

// rejectContext is what the vetoes need besides the candidate.
type rejectContext struct {
	system   System
	barlines []Barline // every scored barline of the candidate's system
	ink      *InkMap   // stroke-erased ink
	params   Params
}

// Reject runs the veto rules in order and returns the first that fires.
// Strong candidates (see IsStrong) pass every rule.
func (rc rejectContext) Reject(c Candidate) RejectReason {
	p := rc.params
	m := c.Shape
	if IsStrong(c, p) {
		return RejectNone
	}
	if m.InkExtent < p.MinInkExtent {
		return RejectEmpty
	}
	spacing := max(c.Spacing, p.MinSpacing)
	cy := c.Bounds.CenterY()

	// Near a barline: a fragment, or something tall that overlaps strokes.
	for _, bar := range rc.barlines {
		if bar.Score < p.BarlineVetoScore {
			continue
		}
		reach := float64(bar.Bounds.Width())/2 + 0.6*spacing
		if math.Abs(c.Bounds.CenterX()-bar.Bounds.CenterX()) > reach {
			continue
		}
		if (m.Width < 0.8 && m.Height < 0.8) || (m.Height > 1.4 && m.StrokeOverlap > 0.25) {
			return RejectNearBarline
		}
	}

	if m.Width < 0.55 && m.Height < 0.55 && m.Fill > 0.7 {
		return RejectStaccato
	}

	if !rc.system.IsFallback && m.Height < 0.45 && m.Width > 1.2 &&
		rc.system.NearestLineDistance(cy) > 0.6*spacing {
		return RejectFlatFar
	}

	if (m.Width > 1.6 || m.Aspect > 2.2) && m.Thickness < 0.35 && m.Fill < 0.4 &&
		(m.Eccentricity > 3 || m.LineOverlap > 0.5) {
		return RejectTieSlur
	}

	if (m.ColumnStem && m.Height > 0.6) ||
		(m.StrokeOverlap > 0.45 && m.Width*m.Height < 1.0) ||
		(m.Aspect < 0.5 && m.StrokeOverlap > 0.25) {
		return RejectStemLadder
	}

	ledger := rc.ledgerPatch(c.Bounds, spacing)
	if rc.system.InGap(cy) && (m.Aspect > 1.8 || m.Aspect < 0.55) &&
		(m.StrokeOverlap > 0.1 || m.LineOverlap > 0.3 || m.ColumnStem ||
			m.Thickness < p.ThinStroke || ledger.centerRun > 0.85) {
		return RejectGapArtifact
	}

	if ledger.centerRun > 0.85 && ledger.fill < 0.35 {
		return RejectLedger
	}

	// Stroke overlap alone is not a tail: a stemmed head is overlapped too.
	// It counts only when the surrounding ink leans to one side.
	tail := rc.tailPatch(c.Bounds, spacing)
	if (tail.asymmetry > 0.6 && tail.fill < 0.3) ||
		((m.Eccentricity > p.EccentricityHigh || (m.StrokeOverlap > 0.3 && tail.asymmetry > 0.4)) && tail.fill < 0.25) {
		return RejectTail
	}
	return RejectNone
}

// patchMetrics describe the ink in a window around a candidate.
type patchMetrics struct {
	fill      float64 // ink fraction of the window
	centerRun float64 // longest run on the center row / window width
	asymmetry float64 // |left - right| / (left + right) ink
}

func measurePatch(ink *InkMap, win Bounds) patchMetrics {
	win = win.Clamp(ink.Width, ink.Height)
	if win.Empty() {
		return patchMetrics{}
	}
	var pm patchMetrics
	pm.fill = ink.Fill(win)
	cy := (win.Y1 + win.Y2) / 2
	pm.centerRun = float64(ink.longestRowRun(cy, win.X1, win.X2)) / float64(win.Width())
	mid := (win.X1 + win.X2) / 2
	left := ink.CountIn(Bounds{X1: win.X1, Y1: win.Y1, X2: mid, Y2: win.Y2})
	right := ink.CountIn(Bounds{X1: mid, Y1: win.Y1, X2: win.X2, Y2: win.Y2})
	if left+right > 0 {
		pm.asymmetry = math.Abs(float64(left-right)) / float64(left+right)
	}
	return pm
}

// ledgerPatch looks half a spacing to each side: a ledger-line fragment
// shows a center-row run across nearly the whole window and little else.
func (rc rejectContext) ledgerPatch(b Bounds, spacing float64) patchMetrics {
	return measurePatch(rc.ink, b.Expand(px(0.5, spacing, 1), 0))
}

// tailPatch looks 0.3 spacings around the box: flag tails and slur ends
// leave their ink on one side.
func (rc rejectContext) tailPatch(b Bounds, spacing float64) patchMetrics {
	d := px(0.3, spacing, 1)
	return measurePatch(rc.ink, b.Expand(d, d))
}
