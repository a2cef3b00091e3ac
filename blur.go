package slicmosaic

import (
	"image"
	"image/color"

	"github.com/disintegration/gift"
)

// Samples pass through gift at 16 bits; 8-bit values map exactly (v*257).
const scale16 = 65535.0 / 255.0

// GaussianBlur smooths each channel of buf independently with a Gaussian
// kernel. Samples beyond the border repeat the edge pixel. sigma <= 0
// returns buf unchanged.
func GaussianBlur(buf *Image, sigma float64) *Image {
	if sigma <= 0 || buf.W == 0 || buf.H == 0 {
		return buf
	}
	src := image.NewNRGBA64(image.Rect(0, 0, buf.W, buf.H))
	for y := range buf.H {
		for x := range buf.W {
			off := (y*buf.W + x) * buf.C
			a := uint16(0xffff)
			if buf.C == 4 {
				a = to16(buf.Pix[off+3])
			}
			src.SetNRGBA64(x, y, color.NRGBA64{
				R: to16(buf.Pix[off]),
				G: to16(buf.Pix[off+1]),
				B: to16(buf.Pix[off+2]),
				A: a,
			})
		}
	}

	g := gift.New(gift.GaussianBlur(float32(sigma)))
	dst := image.NewNRGBA64(g.Bounds(src.Bounds()))
	g.Draw(dst, src)

	out := NewImage(buf.W, buf.H, buf.C)
	for y := range buf.H {
		for x := range buf.W {
			c := dst.NRGBA64At(x, y)
			off := (y*buf.W + x) * buf.C
			out.Pix[off] = float32(float64(c.R) / scale16)
			out.Pix[off+1] = float32(float64(c.G) / scale16)
			out.Pix[off+2] = float32(float64(c.B) / scale16)
			if buf.C == 4 {
				out.Pix[off+3] = float32(float64(c.A) / scale16)
			}
		}
	}
	return out
}

// blurGray is the Canny pre-smoothing step on a [0,1] luminance buffer.
func blurGray(g *Gray, sigma float64) *Gray {
	if sigma <= 0 {
		return g
	}
	src := image.NewGray16(image.Rect(0, 0, g.W, g.H))
	for i, v := range g.Pix {
		src.SetGray16(i%g.W, i/g.W, color.Gray16{Y: uint16(max(0, min(1, v))*0xffff + 0.5)})
	}
	f := gift.New(gift.GaussianBlur(float32(sigma)))
	dst := image.NewGray16(f.Bounds(src.Bounds()))
	f.Draw(dst, src)

	out := &Gray{W: g.W, H: g.H, Pix: make([]float32, len(g.Pix))}
	for i := range out.Pix {
		out.Pix[i] = float32(dst.Gray16At(i%g.W, i/g.W).Y) / 0xffff
	}
	return out
}

func to16(v float32) uint16 {
	return uint16(max(0, min(65535, float64(v)*scale16+0.5)))
}
