package detection

// BuildProtectMask marks the solid cores of notehead-like ink in region so
// stroke erasure leaves heads intact where a stem or tie touches them.
//
// A pixel is core when both its horizontal and vertical ink runs are at
// least ProtectCoreMin·S long and the horizontal run is at most
// ProtectCoreMax·S (longer runs belong to beams). The core is dilated by
// ProtectDilate·S so the rim of the head is covered too.
func BuildProtectMask(ink *InkMap, region Bounds, spacing float64, p Params) *Mask {
	region = region.Clamp(ink.Width, ink.Height)
	mask := NewMask(region)
	if region.Empty() {
		return mask
	}
	spacing = max(spacing, p.MinSpacing)
	hrun := runLengths(ink, region, 1, 0)
	vrun := runLengths(ink, region, 0, 1)
	core := int32(px(p.ProtectCoreMin, spacing, 2))
	beam := int32(px(p.ProtectCoreMax, spacing, 4))

	for i := range mask.Pix {
		if hrun[i] >= core && vrun[i] >= core && hrun[i] <= beam {
			mask.Pix[i] = 1
		}
	}
	return mask.Dilate(px(p.ProtectDilate, spacing, 1))
}

// HollowHeadMask marks the rings of half and whole noteheads in region.
//
// Open heads have no solid core, so BuildProtectMask misses them and the
// ring next to a stem reads as stroke ink. Instead the enclosed paper is
// found: 4-connected paper components that do not touch the region edge.
// A hole qualifies when it is between max(2 px, HoleMinWidth·S) and
// HeadWidth·S wide, at most HoleMaxHeight·S tall, at least HoleMinAspect
// times wider than tall, and fills at most HoleMaxFill of its own box (the
// gaps between staff lines and stems are rectangles). The hole's box grown
// by HoleRingPad·S is marked.
func HollowHeadMask(ink *InkMap, region Bounds, spacing float64, p Params) *Mask {
	region = region.Clamp(ink.Width, ink.Height)
	mask := NewMask(region)
	if region.Empty() {
		return mask
	}
	spacing = max(spacing, p.MinSpacing)
	minW := max(2, p.HoleMinWidth*spacing)
	maxW := p.HeadWidth * spacing
	maxH := p.HoleMaxHeight * spacing
	pad := px(p.HoleRingPad, spacing, 1)

	w, h := region.Width(), region.Height()
	paper := func(i int) bool { return !ink.At(region.X1+i%w, region.Y1+i/w) }
	seen := make([]bool, w*h)
	stack := make([]int, 0, 64)
	for start := range seen {
		if seen[start] || !paper(start) {
			continue
		}
		seen[start] = true
		stack = append(stack[:0], start)
		area, open := 0, false
		minX, minY, maxX, maxY := w, h, -1, -1
		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := i%w, i/w
			area++
			if x == 0 || y == 0 || x == w-1 || y == h-1 {
				open = true
			}
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)

			// 4-connected: paper leaking through a diagonal is still enclosed.
			for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
				nx, ny := x+d[0], y+d[1]
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				n := ny*w + nx
				if seen[n] || !paper(n) {
					continue
				}
				seen[n] = true
				stack = append(stack, n)
			}
		}
		if open {
			continue
		}

		hw, hh := float64(maxX-minX+1), float64(maxY-minY+1)
		if hw < minW || hw > maxW || hh > maxH || hw < p.HoleMinAspect*hh ||
			float64(area) > p.HoleMaxFill*hw*hh {
			continue
		}
		hole := Bounds{X1: region.X1 + minX, Y1: region.Y1 + minY, X2: region.X1 + maxX + 1, Y2: region.Y1 + maxY + 1}
		ring := hole.Expand(pad, pad).Intersect(region)
		for y := ring.Y1; y < ring.Y2; y++ {
			for x := ring.X1; x < ring.X2; x++ {
				mask.Set(x, y)
			}
		}
	}
	return mask
}
