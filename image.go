package slicmosaic

import (
	"image"
	"image/color"
)

// Image is an interleaved raster buffer. Every channel, alpha included, is
// stored in [0,255]. C is 3 or 4 for input images and always 3 once the
// image has been through ToRGB.
type Image struct {
	W, H, C int
	Pix     []float32 // len = W*H*C
}

func NewImage(w, h, c int) *Image {
	return &Image{W: w, H: h, C: c, Pix: make([]float32, max(w*h*c, 0))}
}

// FromImage copies a decoded image into an Image. Sources that report
// themselves opaque produce 3 channels, everything else 4 (non-premultiplied).
func FromImage(src image.Image) *Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	c := 4
	if o, ok := src.(interface{ Opaque() bool }); ok && o.Opaque() {
		c = 3
	}
	img := NewImage(w, h, c)
	for y := range h {
		for x := range w {
			nc := color.NRGBAModel.Convert(src.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			off := (y*w + x) * c
			img.Pix[off] = float32(nc.R)
			img.Pix[off+1] = float32(nc.G)
			img.Pix[off+2] = float32(nc.B)
			if c == 4 {
				img.Pix[off+3] = float32(nc.A)
			}
		}
	}
	return img
}

// ToNRGBA renders the buffer as an 8-bit image. Samples are rounded and
// clamped to [0,255]; a fourth channel, if present, is used as alpha.
func (im *Image) ToNRGBA() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, im.W, im.H))
	for y := range im.H {
		for x := range im.W {
			off := (y*im.W + x) * im.C
			a := uint8(255)
			if im.C == 4 {
				a = to8(im.Pix[off+3])
			}
			out.SetNRGBA(x, y, color.NRGBA{
				R: to8(im.Pix[off]),
				G: to8(im.Pix[off+1]),
				B: to8(im.Pix[off+2]),
				A: a,
			})
		}
	}
	return out
}

func (im *Image) Clone() *Image {
	out := &Image{W: im.W, H: im.H, C: im.C, Pix: make([]float32, len(im.Pix))}
	copy(out.Pix, im.Pix)
	return out
}

// At returns the first three channels of pixel (x, y).
func (im *Image) At(x, y int) (r, g, b float32) {
	off := (y*im.W + x) * im.C
	return im.Pix[off], im.Pix[off+1], im.Pix[off+2]
}

func (im *Image) Set(x, y int, r, g, b float32) {
	off := (y*im.W + x) * im.C
	im.Pix[off], im.Pix[off+1], im.Pix[off+2] = r, g, b
}

// Gray is a single-channel luminance buffer in [0,1].
type Gray struct {
	W, H int
	Pix  []float32 // len = W*H
}

// LabelMap assigns a region label in 1..Count to every pixel.
type LabelMap struct {
	W, H   int
	Labels []int // len = W*H
	Count  int
}

func (lm *LabelMap) At(x, y int) int {
	return lm.Labels[labelOffset(lm.W, x, y)]
}

func to8(v float32) uint8 {
	return uint8(max(0, min(255, v+0.5)))
}

func pixOffset(w, x, y int) int {
	return (y*w + x) * 3
}

func labelOffset(w, x, y int) int {
	return y*w + x
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
