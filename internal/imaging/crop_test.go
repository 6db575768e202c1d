package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
	"testing"
)

// quadrantPage is 100x100 with a black top-left quadrant.
func quadrantPage() *Raster {
	r := NewRaster(100, 100)
	for y := 0; y < 50; y++ {
		for x := 0; x < 50; x++ {
			r.SetGray(x, y, 0)
		}
	}
	return r
}

// decodeResult turns a PNGResult back into an image.
func decodeResult(t *testing.T, res *PNGResult) image.Image {
	t.Helper()
	if res.MimeType != "image/png" {
		t.Errorf("MimeType: got %s, want image/png", res.MimeType)
	}
	data, err := base64.StdEncoding.DecodeString(res.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode PNG: %v", err)
	}
	return img
}

func TestCropRegion(t *testing.T) {
	res, err := CropRegion(quadrantPage(), image.Rect(25, 25, 75, 75), 1)
	if err != nil {
		t.Fatalf("CropRegion failed: %v", err)
	}
	if res.Width != 50 || res.Height != 50 {
		t.Errorf("dimensions: got %dx%d, want 50x50", res.Width, res.Height)
	}

	img := decodeResult(t, res)
	if r, _, _, _ := img.At(5, 5).RGBA(); r != 0 {
		t.Errorf("top-left of crop should be black, got r=%d", r)
	}
	if r, _, _, _ := img.At(40, 40).RGBA(); r != 0xFFFF {
		t.Errorf("bottom-right of crop should be white, got r=%d", r)
	}
}

func TestCropRegion_Scale(t *testing.T) {
	tests := []struct {
		name  string
		scale float64
		want  int
	}{
		{"native", 1, 40},
		{"zero means native", 0, 40},
		{"double", 2, 80},
		{"half", 0.5, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := CropRegion(quadrantPage(), image.Rect(10, 10, 50, 50), tt.scale)
			if err != nil {
				t.Fatalf("CropRegion: %v", err)
			}
			if res.Width != tt.want || res.Height != tt.want {
				t.Errorf("got %dx%d, want %dx%d", res.Width, res.Height, tt.want, tt.want)
			}
		})
	}
}

func TestCropRegion_Clamped(t *testing.T) {
	res, err := CropRegion(quadrantPage(), image.Rect(80, -20, 140, 30), 1)
	if err != nil {
		t.Fatalf("CropRegion: %v", err)
	}
	if res.Width != 20 || res.Height != 30 {
		t.Errorf("clamped to %dx%d, want 20x30", res.Width, res.Height)
	}
}

func TestCropRegion_Errors(t *testing.T) {
	if _, err := CropRegion(quadrantPage(), image.Rect(120, 120, 150, 150), 1); err == nil {
		t.Error("region outside the page: want error")
	}
	if _, err := CropRegion(quadrantPage(), image.Rect(0, 0, 10, 10), 0.01); err == nil {
		t.Error("scale collapsing the region: want error")
	}
}
