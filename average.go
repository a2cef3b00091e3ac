package slicmosaic

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/lucasb-eyer/go-colorful"
)

// Region summarises one label of a LabelMap.
type Region struct {
	Label  int
	Area   int
	CX, CY float64
	Mean   colorful.Color // normalized RGB in [0,1]
}

type regionAccumulator struct {
	label           int
	r, g, b, cx, cy float64
	count           int
}

// AverageRegions flattens every region of labels to the mean colour of its
// pixels in rgb. The returned buffer is new; every pixel of it is written.
func AverageRegions(rgb *Image, labels *LabelMap) (*Image, []Region, error) {
	if err := checkShape(rgb); err != nil {
		return nil, nil, err
	}
	if rgb.C != 3 {
		return nil, nil, fmt.Errorf("%w: averaging needs 3 channels, got %d", ErrInvalidChannelCount, rgb.C)
	}
	if labels == nil || labels.W != rgb.W || labels.H != rgb.H || len(labels.Labels) != rgb.W*rgb.H {
		return nil, nil, ErrShapeMismatch
	}
	w, h := rgb.W, rgb.H

	// Labels may be sparse, so each distinct label gets a dense slot.
	slots := make(map[int]int)
	var acc []regionAccumulator
	pixSlot := make([]int, w*h)
	last, lastSlot := 0, -1
	for y := range h {
		for x := range w {
			i := labelOffset(w, x, y)
			label := labels.Labels[i]
			if label != last || lastSlot < 0 {
				if label < 1 {
					return nil, nil, fmt.Errorf("%w: label %d is not positive", ErrShapeMismatch, label)
				}
				s, ok := slots[label]
				if !ok {
					s = len(acc)
					slots[label] = s
					acc = append(acc, regionAccumulator{label: label})
				}
				last, lastSlot = label, s
			}
			pixSlot[i] = lastSlot
			off := pixOffset(w, x, y)
			a := &acc[lastSlot]
			a.r += float64(rgb.Pix[off])
			a.g += float64(rgb.Pix[off+1])
			a.b += float64(rgb.Pix[off+2])
			a.cx += float64(x)
			a.cy += float64(y)
			a.count++
		}
	}

	means := make([][3]float32, len(acc))
	regions := make([]Region, 0, len(acc))
	for s, a := range acc {
		n := float64(a.count)
		means[s] = [3]float32{float32(a.r / n), float32(a.g / n), float32(a.b / n)}
		regions = append(regions, Region{
			Label: a.label,
			Area:  a.count,
			CX:    a.cx / n,
			CY:    a.cy / n,
			Mean:  colorful.Color{R: a.r / n / 255.0, G: a.g / n / 255.0, B: a.b / n / 255.0},
		})
	}
	slices.SortFunc(regions, func(a, b Region) int { return cmp.Compare(a.Label, b.Label) })

	mosaic := NewImage(w, h, 3)
	for i, s := range pixSlot {
		m := means[s]
		mosaic.Pix[i*3] = m[0]
		mosaic.Pix[i*3+1] = m[1]
		mosaic.Pix[i*3+2] = m[2]
	}
	return mosaic, regions, nil
}
