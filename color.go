package slicmosaic

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// White is the default background for flattening transparent pixels.
var White = colorful.Color{R: 1, G: 1, B: 1}

type lab32 struct {
	W, H int
	Pix  []float32 // Interleaved LAB, len = W*H*3
}

func checkShape(img *Image) error {
	if img == nil || img.W <= 0 || img.H <= 0 {
		return ErrEmptyImage
	}
	if img.C != 3 && img.C != 4 {
		return fmt.Errorf("%w: got %d, want 3 or 4", ErrInvalidChannelCount, img.C)
	}
	if len(img.Pix) != img.W*img.H*img.C {
		return fmt.Errorf("%w: buffer holds %d samples, want %d", ErrInvalidChannelCount, len(img.Pix), img.W*img.H*img.C)
	}
	return nil
}

// ToRGB returns a 3-channel copy of img. A fourth channel is treated as
// straight alpha and composited over background.
func ToRGB(img *Image, background colorful.Color) (*Image, error) {
	if err := checkShape(img); err != nil {
		return nil, err
	}
	w, h := img.W, img.H
	out := NewImage(w, h, 3)
	if img.C == 3 {
		copy(out.Pix, img.Pix)
		return out, nil
	}
	for i := range w * h {
		src := img.Pix[i*4 : i*4+4]
		a := float64(max(0, min(255, src[3]))) / 255.0
		fg := colorful.Color{
			R: float64(src[0]) / 255.0,
			G: float64(src[1]) / 255.0,
			B: float64(src[2]) / 255.0,
		}
		c := background.BlendRgb(fg, a)
		out.Pix[i*3] = float32(c.R * 255.0)
		out.Pix[i*3+1] = float32(c.G * 255.0)
		out.Pix[i*3+2] = float32(c.B * 255.0)
	}
	return out, nil
}

// ============ RGB → LAB ============

func toLab(rgb *Image) lab32 {
	h := rgb.H
	w := rgb.W
	lab := lab32{
		W:   w,
		H:   h,
		Pix: make([]float32, h*w*3),
	}
	// Memoised per distinct colour.
	cache := make(map[[3]float32][3]float32)
	for y := range h {
		for x := range w {
			off := pixOffset(w, x, y)
			key := [3]float32{rgb.Pix[off], rgb.Pix[off+1], rgb.Pix[off+2]}
			v, ok := cache[key]
			if !ok {
				c := colorful.Color{
					R: float64(key[0]) / 255.0,
					G: float64(key[1]) / 255.0,
					B: float64(key[2]) / 255.0,
				}
				l, a, b := c.Lab()
				v = [3]float32{float32(l * 100), float32(a * 100), float32(b * 100)}
				cache[key] = v
			}
			lab.Pix[off] = v[0]
			lab.Pix[off+1] = v[1]
			lab.Pix[off+2] = v[2]
		}
	}
	return lab
}

// Grayscale returns the luminance of a 3-channel image in [0,1].
func Grayscale(rgb *Image) *Gray {
	g := &Gray{W: rgb.W, H: rgb.H, Pix: make([]float32, rgb.W*rgb.H)}
	for i := range g.Pix {
		r := float64(rgb.Pix[i*3]) / 255.0
		gr := float64(rgb.Pix[i*3+1]) / 255.0
		b := float64(rgb.Pix[i*3+2]) / 255.0
		g.Pix[i] = float32(0.2125*r + 0.7154*gr + 0.0721*b)
	}
	return g
}
