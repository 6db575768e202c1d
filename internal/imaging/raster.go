package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/clone"
	"github.com/disintegration/imaging"
)

// Raster is a rendered page held as a flat RGBA buffer.
//
// Pixel (x, y) occupies Pix[4*(y*Width+x) : 4*(y*Width+x)+4] in R, G, B, A order.
// The origin is the top-left corner; every Raster produced by this package
// starts at (0, 0) regardless of the bounds of the image it was built from.
type Raster struct {
	Width  int
	Height int
	Pix    []byte
}

// NewRaster allocates a white, fully opaque raster.
func NewRaster(width, height int) *Raster {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	pix := make([]byte, 4*width*height)
	for i := range pix {
		pix[i] = 0xFF
	}
	return &Raster{Width: width, Height: height, Pix: pix}
}

// FromImage copies any decoded image into a Raster.
//
// The conversion goes through an RGBA clone so palette, YCbCr, gray and 16-bit
// images all end up with the same 8-bit layout.
func FromImage(img image.Image) *Raster {
	rgba := clone.AsRGBA(img)
	b := rgba.Bounds()
	w, h := b.Dx(), b.Dy()
	out := &Raster{Width: w, Height: h, Pix: make([]byte, 4*w*h)}
	for y := 0; y < h; y++ {
		src := rgba.Pix[y*rgba.Stride : y*rgba.Stride+4*w]
		copy(out.Pix[4*y*w:4*(y+1)*w], src)
	}
	return out
}

// Image wraps a copy of the raster as an *image.RGBA.
func (r *Raster) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	copy(img.Pix, r.Pix)
	return img
}

// Luma returns the average of the R, G and B channels at (x, y).
// Coordinates outside the raster read as white.
func (r *Raster) Luma(x, y int) uint8 {
	if x < 0 || y < 0 || x >= r.Width || y >= r.Height {
		return 0xFF
	}
	i := 4 * (y*r.Width + x)
	return uint8((int(r.Pix[i]) + int(r.Pix[i+1]) + int(r.Pix[i+2])) / 3)
}

// SetGray paints (x, y) with an opaque gray level. Out-of-range writes are ignored.
func (r *Raster) SetGray(x, y int, v uint8) {
	if x < 0 || y < 0 || x >= r.Width || y >= r.Height {
		return
	}
	i := 4 * (y*r.Width + x)
	r.Pix[i], r.Pix[i+1], r.Pix[i+2], r.Pix[i+3] = v, v, v, 0xFF
}

// Downsample shrinks the raster to targetWidth, preserving aspect ratio.
//
// Returns the (possibly unchanged) raster and the scale factor that maps a
// coordinate in the returned raster back to the source: src = dst * scale.
// Rasters already at or below targetWidth are returned as-is with scale 1.
func Downsample(r *Raster, targetWidth int) (*Raster, float64) {
	if r == nil || targetWidth <= 0 || r.Width <= targetWidth {
		return r, 1
	}
	resized := imaging.Resize(r.Image(), targetWidth, 0, imaging.Box)
	out := FromImage(resized)
	return out, float64(r.Width) / float64(out.Width)
}
