package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"
)

// OverlayBox is one rectangle to outline on the page.
type OverlayBox struct {
	Rect  image.Rectangle
	Color string // "#RRGGBB" or "#RRGGBBAA"
	Label string // short tag drawn above the box; only A-G are rendered
}

// RenderOverlay draws detections on top of the page and returns a PNG.
//
// Each box gets a 2px outline in its color plus a translucent fill so the
// note-head stays readable underneath. Bars are shaded in a neutral blue.
// Boxes with an unparseable color fall back to opaque red.
func RenderOverlay(r *Raster, boxes []OverlayBox, bars []image.Rectangle) (*PNGResult, error) {
	if r == nil {
		return nil, fmt.Errorf("no page to render")
	}
	result := r.Image()
	bounds := result.Bounds()

	barColor := color.NRGBA{R: 40, G: 90, B: 220, A: 90}
	for _, b := range bars {
		fillRect(result, b.Intersect(bounds), barColor)
	}

	for _, box := range boxes {
		rect := box.Rect.Intersect(bounds)
		if rect.Empty() {
			continue
		}
		c, err := parseHexColor(box.Color)
		if err != nil {
			c = color.RGBA{255, 0, 0, 255}
		}
		fillRect(result, rect, color.NRGBA{R: c.R, G: c.G, B: c.B, A: 70})
		strokeRect(result, rect, c, 2)
		if box.Label != "" {
			drawLabel(result, rect.Min.X, rect.Min.Y-8, box.Label, color.RGBA{255, 255, 255, 255}, c)
		}
	}

	return encodePNG(result)
}

func fillRect(img *image.RGBA, rect image.Rectangle, c color.Color) {
	if rect.Empty() {
		return
	}
	draw.Draw(img, rect, &image.Uniform{C: c}, image.Point{}, draw.Over)
}

func strokeRect(img *image.RGBA, rect image.Rectangle, c color.RGBA, width int) {
	for i := 0; i < width; i++ {
		top := image.Rect(rect.Min.X, rect.Min.Y+i, rect.Max.X, rect.Min.Y+i+1)
		bottom := image.Rect(rect.Min.X, rect.Max.Y-1-i, rect.Max.X, rect.Max.Y-i)
		left := image.Rect(rect.Min.X+i, rect.Min.Y, rect.Min.X+i+1, rect.Max.Y)
		right := image.Rect(rect.Max.X-1-i, rect.Min.Y, rect.Max.X-i, rect.Max.Y)
		for _, edge := range []image.Rectangle{top, bottom, left, right} {
			draw.Draw(img, edge.Intersect(rect), &image.Uniform{C: c}, image.Point{}, draw.Src)
		}
	}
}

// parseHexColor parses a hex color string like "#FF0000" or "#FF000080"
func parseHexColor(hex string) (color.RGBA, error) {
	if len(hex) == 0 {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint8 = 0, 0, 0, 255

	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 16)
		g = uint8(val >> 8)
		b = uint8(val)
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 24)
		g = uint8(val >> 16)
		b = uint8(val >> 8)
		a = uint8(val)
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color length")
	}

	return color.RGBA{R: r, G: g, B: b, A: a}, nil
}

// noteGlyphs is a 3x5 pixel font covering the seven pitch letters.
var noteGlyphs = map[rune][]string{
	'A': {"010", "101", "111", "101", "101"},
	'B': {"110", "101", "110", "101", "110"},
	'C': {"011", "100", "100", "100", "011"},
	'D': {"110", "101", "101", "101", "110"},
	'E': {"111", "100", "110", "100", "111"},
	'F': {"111", "100", "110", "100", "100"},
	'G': {"011", "100", "101", "101", "011"},
}

// drawLabel draws text on a solid background starting at (x, y).
// Characters without a glyph advance the cursor but draw nothing.
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	bounds := img.Bounds()
	charWidth := 4
	labelWidth := len(text) * charWidth
	labelHeight := 7

	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			px, py := x+dx, y+dy
			if image.Pt(px, py).In(bounds) {
				img.SetRGBA(px, py, bg)
			}
		}
	}

	cx := x
	for _, ch := range text {
		glyph, ok := noteGlyphs[ch]
		if !ok {
			cx += charWidth
			continue
		}
		for row, line := range glyph {
			for col, pixel := range line {
				if pixel == '1' {
					px, py := cx+col, y+row
					if image.Pt(px, py).In(bounds) {
						img.SetRGBA(px, py, fg)
					}
				}
			}
		}
		cx += charWidth
	}
}
