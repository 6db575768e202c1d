package detection

import (
	"math"
	"testing"

	"github.com/ironsheep/notecolor-mcp/internal/imaging"
)

func TestDetectStaves_SingleStaff(t *testing.T) {
	tests := []struct {
		name    string
		width   int
		spacing int
		thick   int
	}{
		{"narrow page", 800, 12, 2},
		{"thin lines", 900, 10, 1},
		{"downsampled page", 2400, 24, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := imaging.NewRaster(tt.width, 20*tt.spacing)
			want := drawStaff(r, 4*tt.spacing, tt.spacing, tt.thick, 20, tt.width-20)

			model := DetectStaves(r, DefaultParams())
			if model == nil {
				t.Fatal("no staff model")
			}
			if len(model.Staves) != 1 {
				t.Fatalf("got %d staves, want 1", len(model.Staves))
			}
			for i, y := range model.Staves[0].Lines {
				if math.Abs(y-want[i]) > 1 {
					t.Errorf("line %d at %.2f, want %.2f ±1", i, y, want[i])
				}
			}
			if rel := math.Abs(model.Spacing-float64(tt.spacing)) / float64(tt.spacing); rel > 0.05 {
				t.Errorf("spacing %.2f, want %d ±5%%", model.Spacing, tt.spacing)
			}
		})
	}
}

func TestDetectStaves_TwoStaves(t *testing.T) {
	r := imaging.NewRaster(1000, 600)
	drawStaff(r, 100, 12, 2, 30, 970)
	drawStaff(r, 300, 12, 2, 30, 970)

	model := DetectStaves(r, DefaultParams())
	if model == nil || len(model.Staves) != 2 {
		t.Fatalf("expected 2 staves, got %+v", model)
	}
	if model.Staves[0].Top() > model.Staves[1].Top() {
		t.Error("staves should be ordered top to bottom")
	}
}

func TestDetectStaves_NoStaff(t *testing.T) {
	r := imaging.NewRaster(400, 300)
	fillEllipse(r, 100, 100, 8, 6)
	if model := DetectStaves(r, DefaultParams()); model != nil {
		t.Errorf("expected nil model, got %+v", model)
	}
	if model := DetectStaves(nil, DefaultParams()); model != nil {
		t.Error("nil raster should give nil model")
	}
}

func TestFindRowPeaks_RefinesThickLines(t *testing.T) {
	rows := make([]float64, 20)
	rows[5], rows[6] = 100, 100
	rows[12] = 90
	peaks := findRowPeaks(rows, 50, 2)
	if len(peaks) != 2 {
		t.Fatalf("peaks = %v", peaks)
	}
	if peaks[0] != 5.5 || peaks[1] != 12 {
		t.Errorf("peaks = %v, want [5.5 12]", peaks)
	}
}

func TestLowestVarianceWindow(t *testing.T) {
	peaks := []float64{10, 13, 30, 40, 50, 60, 71, 100}
	s, ok := lowestVarianceWindow(peaks, DefaultParams())
	if !ok {
		t.Fatal("expected a window")
	}
	if s.Lines[0] != 30 || s.Lines[4] != 71 {
		t.Errorf("window = %v", s.Lines)
	}
}
