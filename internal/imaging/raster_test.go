package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestNewRaster(t *testing.T) {
	r := NewRaster(4, 3)
	if r.Width != 4 || r.Height != 3 || len(r.Pix) != 48 {
		t.Fatalf("got %dx%d with %d bytes", r.Width, r.Height, len(r.Pix))
	}
	if r.Luma(2, 1) != 0xFF {
		t.Errorf("new raster should be white, luma %d", r.Luma(2, 1))
	}
	if n := NewRaster(-1, 5); n.Width != 0 || len(n.Pix) != 0 {
		t.Errorf("negative width: %+v", n)
	}
}

func TestRaster_SetGrayAndLuma(t *testing.T) {
	r := NewRaster(10, 10)
	r.SetGray(3, 4, 40)
	r.SetGray(-1, 0, 0) // ignored
	r.SetGray(10, 0, 0) // ignored

	if got := r.Luma(3, 4); got != 40 {
		t.Errorf("Luma(3,4) = %d, want 40", got)
	}
	if got := r.Luma(-5, 2); got != 0xFF {
		t.Errorf("outside reads %d, want white", got)
	}
}

func TestFromImage(t *testing.T) {
	gray := image.NewGray(image.Rect(5, 5, 15, 13)) // offset origin
	gray.SetGray(5, 5, color.Gray{Y: 10})
	gray.SetGray(14, 12, color.Gray{Y: 200})

	r := FromImage(gray)
	if r.Width != 10 || r.Height != 8 {
		t.Fatalf("size %dx%d, want 10x8", r.Width, r.Height)
	}
	if r.Luma(0, 0) != 10 || r.Luma(9, 7) != 200 {
		t.Errorf("corners: %d %d", r.Luma(0, 0), r.Luma(9, 7))
	}

	back := r.Image()
	if c := back.RGBAAt(9, 7); c.R != 200 || c.A != 0xFF {
		t.Errorf("Image() pixel = %v", c)
	}
	back.Pix[0] = 99
	if r.Pix[0] == 99 {
		t.Error("Image() must return a copy")
	}
}

func TestDownsample(t *testing.T) {
	r := NewRaster(400, 100)
	for y := 40; y < 44; y++ {
		for x := range 400 {
			r.SetGray(x, y, 0)
		}
	}

	small, scale := Downsample(r, 100)
	if small.Width != 100 || small.Height != 25 {
		t.Fatalf("downsampled to %dx%d, want 100x25", small.Width, small.Height)
	}
	if scale != 4 {
		t.Errorf("scale = %v, want 4", scale)
	}
	if small.Luma(50, 10) > 60 {
		t.Errorf("line lost in downsample: luma %d", small.Luma(50, 10))
	}

	same, scale := Downsample(r, 800)
	if same != r || scale != 1 {
		t.Error("narrow raster should be returned unchanged")
	}
}
