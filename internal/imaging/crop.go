package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
)

// PNGResult carries an encoded image back to a caller.
type PNGResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// CropRegion extracts rect from the page, optionally rescaled, as a PNG.
//
// rect is clamped to the page first; an empty intersection is an error.
// A scale of 0 or 1 keeps the native resolution.
func CropRegion(r *Raster, rect image.Rectangle, scale float64) (*PNGResult, error) {
	page := image.Rect(0, 0, r.Width, r.Height)
	rect = rect.Intersect(page)
	if rect.Empty() {
		return nil, fmt.Errorf("crop region outside page bounds (%dx%d)", r.Width, r.Height)
	}

	cropped := imaging.Crop(r.Image(), rect)

	if scale != 1.0 && scale > 0 {
		newWidth := int(float64(cropped.Bounds().Dx()) * scale)
		newHeight := int(float64(cropped.Bounds().Dy()) * scale)
		if newWidth < 1 || newHeight < 1 {
			return nil, fmt.Errorf("scale %.3f collapses region to nothing", scale)
		}
		cropped = imaging.Resize(cropped, newWidth, newHeight, imaging.Lanczos)
	}

	return encodePNG(cropped)
}

func encodePNG(img image.Image) (*PNGResult, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return &PNGResult{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
