package slicmosaic

import "github.com/lucasb-eyer/go-colorful"

// MarkBoundaries draws region borders onto buf in place. A pixel is painted
// when one of its 4-neighbours carries a lower label, so every border is one
// pixel wide and lies on the higher-labelled (outer) side. Pixels whose
// 4-neighbours all share their label are never touched.
func MarkBoundaries(buf *Image, labels *LabelMap, c colorful.Color) *Image {
	w, h := labels.W, labels.H
	r := float32(max(0, min(1, c.R)) * 255)
	g := float32(max(0, min(1, c.G)) * 255)
	b := float32(max(0, min(1, c.B)) * 255)
	for y := range h {
		for x := range w {
			label := labels.Labels[labelOffset(w, x, y)]
			for k := range 4 {
				nx, ny := x+dx4[k], y+dy4[k]
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				if labels.Labels[labelOffset(w, nx, ny)] < label {
					buf.Set(x, y, r, g, b)
					break
				}
			}
		}
	}
	return buf
}
