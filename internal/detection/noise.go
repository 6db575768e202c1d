package detection

import "math"

// RemoveIsolated clears ink pixels that have at most one inked 8-neighbor.
// The result is a new map; m is left untouched.
func RemoveIsolated(m *InkMap) *InkMap {
	out := m.Clone()
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.Pix[y*m.Width+x] == 0 {
				continue
			}
			neighbors := 0
			for dy := -1; dy <= 1 && neighbors < 2; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if (dx != 0 || dy != 0) && m.At(x+dx, y+dy) {
						neighbors++
					}
				}
			}
			if neighbors <= 1 {
				out.Pix[y*m.Width+x] = 0
			}
		}
	}
	return out
}

// RemoveSmallComponents deletes every connected blob with fewer than minArea
// pixels. Larger blobs are copied through unchanged.
func RemoveSmallComponents(m *InkMap, minArea int) *InkMap {
	out := m.Clone()
	if minArea <= 1 {
		return out
	}
	for _, c := range LabelComponents(m, m.Bounds(), true) {
		if c.Area >= minArea {
			continue
		}
		for _, p := range c.Pixels {
			out.Pix[p] = 0
		}
	}
	return out
}

// CleanNoise removes isolated pixels, then dust specks smaller than
// NoiseAreaFrac·S² (at least 2 px).
func CleanNoise(m *InkMap, spacing float64, p Params) *InkMap {
	minArea := max(2, int(math.Round(p.NoiseAreaFrac*spacing*spacing)))
	return RemoveSmallComponents(RemoveIsolated(m), minArea)
}
