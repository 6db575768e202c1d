package detection

import (
	"math"

	"github.com/ironsheep/notecolor-mcp/internal/imaging"
)

// fillRect paints [x1,x2)×[y1,y2) black.
func fillRect(r *imaging.Raster, x1, y1, x2, y2 int) {
	for y := y1; y < y2; y++ {
		for x := x1; x < x2; x++ {
			r.SetGray(x, y, 0)
		}
	}
}

// fillEllipse paints every pixel whose center lies inside the ellipse.
func fillEllipse(r *imaging.Raster, cx, cy, rx, ry float64) {
	for y := int(math.Floor(cy - ry)); y <= int(math.Ceil(cy+ry)); y++ {
		for x := int(math.Floor(cx - rx)); x <= int(math.Ceil(cx+rx)); x++ {
			dx, dy := (float64(x)-cx)/rx, (float64(y)-cy)/ry
			if dx*dx+dy*dy <= 1 {
				r.SetGray(x, y, 0)
			}
		}
	}
}

// fillRing paints an open notehead: the outer ellipse minus the inner one.
func fillRing(r *imaging.Raster, cx, cy, rx, ry, innerX, innerY float64) {
	fillEllipse(r, cx, cy, rx, ry)
	for y := int(math.Floor(cy - innerY)); y <= int(math.Ceil(cy+innerY)); y++ {
		for x := int(math.Floor(cx - innerX)); x <= int(math.Ceil(cx+innerX)); x++ {
			dx, dy := (float64(x)-cx)/innerX, (float64(y)-cy)/innerY
			if dx*dx+dy*dy <= 1 {
				r.SetGray(x, y, 255)
			}
		}
	}
}

// drawStaff draws five lines of the given thickness starting at row top and
// returns the true line centers.
func drawStaff(r *imaging.Raster, top, spacing, thick, x1, x2 int) []float64 {
	lines := make([]float64, 5)
	for i := range lines {
		y := top + i*spacing
		fillRect(r, x1, y, x2, y+thick)
		lines[i] = float64(y) + float64(thick-1)/2
	}
	return lines
}

// staffSystem builds a single-staff system directly from line positions.
func staffSystem(lines []float64, width, height int) System {
	var s Staff
	copy(s.Lines[:], lines)
	model := &StaffModel{Staves: []Staff{s}, Spacing: s.Spacing()}
	return BuildSystems(model, width, height, DefaultParams())[0]
}

// inkRect returns a blank map with [x1,x2)×[y1,y2) inked.
func inkRect(m *InkMap, x1, y1, x2, y2 int) {
	for y := y1; y < y2; y++ {
		for x := x1; x < x2; x++ {
			m.Set(x, y, true)
		}
	}
}
