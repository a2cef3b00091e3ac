package slicmosaic

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

var colorfulRed = colorful.Color{R: 1}

// newTestImage builds a 3-channel image from a per-pixel colour function.
func newTestImage(w, h int, fn func(x, y int) (r, g, b float32)) *Image {
	img := NewImage(w, h, 3)
	for y := range h {
		for x := range w {
			r, g, b := fn(x, y)
			img.Set(x, y, r, g, b)
		}
	}
	return img
}

func solid(r, g, b float32) func(x, y int) (float32, float32, float32) {
	return func(int, int) (float32, float32, float32) { return r, g, b }
}

// scene is a red disc over a smooth gradient background.
func scene(x, y int) (float32, float32, float32) {
	dx, dy := float64(x-16), float64(y-12)
	if dx*dx+dy*dy < 81 {
		return 220, 40, 40
	}
	return float32(x * 6), float32(100 + y*3), float32(200 - x*4)
}

func gradient(x, y int) (float32, float32, float32) {
	return float32(x * 8), float32(y * 8), 128
}

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}
