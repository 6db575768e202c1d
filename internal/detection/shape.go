package detection

import "math"

// ShapeMetrics are the geometric measurements the scorer and the rejection
// rules read. Lengths are in staff spacings.
type ShapeMetrics struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Aspect float64 `json:"aspect"` // width / height

	// Fill is the ink fraction of the candidate box.
	Fill float64 `json:"fill"`

	// InkExtent is the area of the tight ink box over the candidate box.
	InkExtent float64 `json:"ink_extent"`

	// StrokeOverlap is the fraction of the box's unprotected pre-erasure ink
	// covered by the vertical stroke mask.
	StrokeOverlap float64 `json:"stroke_overlap"`

	// LineOverlap is the same fraction for the directional mask.
	LineOverlap float64 `json:"line_overlap"`

	// ColumnStem is set when the two heaviest columns hold more than
	// ColumnStemShare of the ink.
	ColumnStem bool `json:"column_stem"`

	Eccentricity float64 `json:"eccentricity"`
	Thickness    float64 `json:"thickness"`
}

// ShapeInputs are the page maps a candidate is measured against.
type ShapeInputs struct {
	Ink         *InkMap // stroke-erased ink the candidate was found on
	Raw         *InkMap // ink before stroke erasure
	Stroke      *Mask   // vertical stroke mask of the candidate's system
	Protect     *Mask   // head cores and rings; their ink is not counted as stroke
	Directional *Mask
	Spacing     float64
}

// MeasureShape computes the metrics of box b.
func MeasureShape(in ShapeInputs, b Bounds, p Params) ShapeMetrics {
	spacing := max(in.Spacing, p.MinSpacing)
	b = b.Clamp(in.Ink.Width, in.Ink.Height)
	m := ShapeMetrics{
		Width:  float64(b.Width()) / spacing,
		Height: float64(b.Height()) / spacing,
	}
	if b.Empty() {
		return m
	}
	m.Aspect = float64(b.Width()) / float64(b.Height())
	m.Fill = in.Ink.Fill(b)
	m.InkExtent = float64(in.Ink.InkBounds(b).Area()) / float64(b.Area())

	raw := in.Raw
	if raw == nil {
		raw = in.Ink
	}
	m.StrokeOverlap = in.Stroke.OverlapRatio(raw, b, in.Protect)
	m.LineOverlap = in.Directional.OverlapRatio(raw, b, in.Protect)

	cols := in.Ink.ColumnCounts(b)
	total, first, second := 0, 0, 0
	for _, c := range cols {
		total += c
		switch {
		case c > first:
			first, second = c, first
		case c > second:
			second = c
		}
	}
	m.ColumnStem = total > 0 && float64(first+second) > p.ColumnStemShare*float64(total)

	acc := inkMoments(in.Ink, b)
	m.Eccentricity = acc.eccentricity()
	m.Thickness = strokeThickness(acc) / spacing
	return m
}

// ShapeScore rates how notehead-like the metrics are, in [0, 1].
//
// The base is 0.6·fill closeness + 0.4·roundness. Fill closeness is 1
// within FillSlack of FillTarget and falls linearly to 0 over the next 0.45;
// roundness falls from 1 at eccentricity 1 to 0 at eccentricity 4. The base
// is scaled by (1 - StrokeOverlap), by ColumnStemPenalty for column stems,
// and by ThinPenalty for eccentric thin ink (ties, slurs, tails).
func ShapeScore(m ShapeMetrics, p Params) float64 {
	if m.Fill == 0 {
		return 0
	}
	fill := clampFloat(1-math.Max(0, math.Abs(m.Fill-p.FillTarget)-p.FillSlack)/0.45, 0, 1)
	round := clampFloat(1-(m.Eccentricity-1)/3, 0, 1)
	s := 0.6*fill + 0.4*round
	s *= 1 - clampFloat(m.StrokeOverlap, 0, 1)
	if m.ColumnStem {
		s *= p.ColumnStemPenalty
	}
	if m.Eccentricity > p.EccentricityHigh && m.Thickness < p.ThinStroke {
		s *= p.ThinPenalty
	}
	return clampFloat(s, 0, 1)
}

