package detection

import (
	"math"
	"sort"
)

// System is one printed line of music: a single staff or a treble+bass pair.
//
// Treble holds the five line y's of the upper (or only) staff; Bass is nil for
// single-staff systems. Fallback systems have neither and cover the page.
type System struct {
	Treble     []float64 `json:"treble,omitempty"`
	Bass       []float64 `json:"bass,omitempty"`
	Spacing    float64   `json:"spacing"`
	Bounds     Bounds    `json:"bounds"`
	IsFallback bool      `json:"is_fallback"`
}

// IsGrand reports whether the system pairs a treble and a bass staff.
func (s System) IsGrand() bool { return len(s.Treble) == 5 && len(s.Bass) == 5 }

// Lines returns every staff line y of the system, top to bottom.
func (s System) Lines() []float64 {
	out := make([]float64, 0, len(s.Treble)+len(s.Bass))
	out = append(out, s.Treble...)
	return append(out, s.Bass...)
}

// NearestLineDistance is the vertical distance from y to the closest staff line
// (+Inf for systems without lines).
func (s System) NearestLineDistance(y float64) float64 {
	best := math.Inf(1)
	for _, l := range s.Lines() {
		best = math.Min(best, math.Abs(y-l))
	}
	return best
}

// InGap reports whether y lies strictly between the treble bottom line and
// the bass top line of a grand system.
func (s System) InGap(y float64) bool {
	return s.IsGrand() && y > s.Treble[4] && y < s.Bass[0]
}

// BuildSystems groups staves into systems.
//
// Staves are sorted by center. Each unused staff looks ahead at most
// GrandStaffLookahead staves for a bass partner whose gap (partner top minus
// this bottom) lies within [GrandStaffGapMin, GrandStaffGapMax]·S, choosing
// the gap closest to GrandStaffGapTarget·S. Paired staves are consumed;
// leftovers become single-staff systems.
//
// A nil or empty model produces one fallback system spanning the page, with
// spacing pageHeight/FallbackSpacingDiv. Every system's bounds are the line
// extent padded by SystemPad·S vertically, full page width, clamped to the page.
func BuildSystems(model *StaffModel, pageWidth, pageHeight int, p Params) []System {
	if model == nil || len(model.Staves) == 0 {
		return []System{fallbackSystem(model, pageWidth, pageHeight, p)}
	}

	staves := append([]Staff(nil), model.Staves...)
	sort.Slice(staves, func(i, j int) bool { return staves[i].Center() < staves[j].Center() })

	used := make([]bool, len(staves))
	systems := make([]System, 0, len(staves))
	for i, treble := range staves {
		if used[i] {
			continue
		}
		used[i] = true
		spacing := math.Max(p.MinSpacing, treble.Spacing())

		partner := -1
		bestDelta := math.Inf(1)
		for j := i + 1; j < len(staves) && j <= i+p.GrandStaffLookahead; j++ {
			if used[j] {
				continue
			}
			gap := (staves[j].Top() - treble.Bottom()) / spacing
			if gap < p.GrandStaffGapMin || gap > p.GrandStaffGapMax {
				continue
			}
			if d := math.Abs(gap - p.GrandStaffGapTarget); d < bestDelta {
				bestDelta, partner = d, j
			}
		}

		sys := System{Treble: append([]float64(nil), treble.Lines[:]...)}
		if partner >= 0 {
			used[partner] = true
			bass := staves[partner]
			sys.Bass = append([]float64(nil), bass.Lines[:]...)
			spacing = math.Max(p.MinSpacing, (treble.Spacing()+bass.Spacing())/2)
		}
		sys.Spacing = spacing
		sys.Bounds = systemBounds(sys.Lines(), spacing, pageWidth, pageHeight, p)
		systems = append(systems, sys)
	}
	return systems
}

func systemBounds(lines []float64, spacing float64, pageWidth, pageHeight int, p Params) Bounds {
	top, bottom := lines[0], lines[len(lines)-1]
	pad := p.SystemPad * spacing
	return Bounds{
		X1: 0,
		Y1: int(math.Floor(top - pad)),
		X2: pageWidth,
		Y2: int(math.Ceil(bottom+pad)) + 1,
	}.Clamp(pageWidth, pageHeight)
}

// fallbackSystem covers the page when no staff structure was found. If the
// model still carries a spacing estimate it is kept.
func fallbackSystem(model *StaffModel, pageWidth, pageHeight int, p Params) System {
	spacing := float64(pageHeight) / math.Max(1, p.FallbackSpacingDiv)
	if model != nil && model.Spacing > 0 {
		spacing = model.Spacing
	}
	return System{
		Spacing:    math.Max(p.MinSpacing, spacing),
		Bounds:     Bounds{X2: max(0, pageWidth), Y2: max(0, pageHeight)},
		IsFallback: true,
	}
}

// systemAt returns the index of the system that owns y: among systems whose
// bounds contain y the one whose line extent is closest wins (padding of
// neighboring systems can overlap); otherwise the nearest bounds. -1 when
// there are no systems.
func systemAt(systems []System, y float64) int {
	best, bestCost := -1, math.Inf(1)
	for i, s := range systems {
		var cost float64
		if y >= float64(s.Bounds.Y1) && y < float64(s.Bounds.Y2) {
			if lines := s.Lines(); len(lines) > 0 {
				top, bottom := lines[0], lines[len(lines)-1]
				cost = math.Max(0, math.Max(top-y, y-bottom))
			}
		} else {
			outside := math.Min(math.Abs(y-float64(s.Bounds.Y1)), math.Abs(y-float64(s.Bounds.Y2)))
			cost = 1e6 + outside
		}
		if cost < bestCost {
			best, bestCost = i, cost
		}
	}
	return best
}
