package slicmosaic

import "math"

// EdgeOptions configures the Canny detector. Thresholds apply to the Sobel
// gradient magnitude of a [0,1] luminance image.
type EdgeOptions struct {
	Sigma float64
	Low   float64
	High  float64
}

func DefaultEdgeOptions() EdgeOptions {
	return EdgeOptions{Sigma: 1, Low: 0.1, High: 0.2}
}

// DetectEdges runs Canny edge detection: Gaussian smoothing, Sobel
// gradients, non-maximum suppression and hysteresis. The one-pixel image
// border is never reported as an edge.
func DetectEdges(gray *Gray, opt EdgeOptions) []bool {
	w, h := gray.W, gray.H
	mask := make([]bool, w*h)
	if w < 3 || h < 3 {
		return mask
	}
	smooth := blurGray(gray, opt.Sigma)
	at := func(x, y int) float64 {
		return float64(smooth.Pix[clampInt(y, 0, h-1)*w+clampInt(x, 0, w-1)])
	}

	gx := make([]float64, w*h)
	gy := make([]float64, w*h)
	mag := make([]float64, w*h)
	for y := range h {
		for x := range w {
			i := y*w + x
			gx[i] = (at(x+1, y-1) + 2*at(x+1, y) + at(x+1, y+1)) -
				(at(x-1, y-1) + 2*at(x-1, y) + at(x-1, y+1))
			gy[i] = (at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)) -
				(at(x-1, y-1) + 2*at(x, y-1) + at(x+1, y-1))
			mag[i] = math.Hypot(gx[i], gy[i])
		}
	}

	// Non-maximum suppression along the gradient direction, quantised to
	// 0, 45, 90 and 135 degrees.
	thin := make([]float64, w*h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			m := mag[i]
			if m == 0 {
				continue
			}
			angle := math.Atan2(gy[i], gx[i]) * 180 / math.Pi
			if angle < 0 {
				angle += 180
			}
			var n1, n2 float64
			switch {
			case angle < 22.5 || angle >= 157.5:
				n1, n2 = mag[i-1], mag[i+1]
			case angle < 67.5:
				n1, n2 = mag[i-w-1], mag[i+w+1]
			case angle < 112.5:
				n1, n2 = mag[i-w], mag[i+w]
			default:
				n1, n2 = mag[i-w+1], mag[i+w-1]
			}
			if m >= n1 && m >= n2 {
				thin[i] = m
			}
		}
	}

	// Hysteresis: weak pixels survive only when 8-connected to a strong one.
	stack := make([]int, 0, 64)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			if thin[i] == 0 || thin[i] < opt.High || mask[i] {
				continue
			}
			mask[i] = true
			stack = append(stack[:0], i)
			for len(stack) > 0 {
				cur := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				cx, cy := cur%w, cur/w
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						nx, ny := cx+dx, cy+dy
						if nx < 1 || nx >= w-1 || ny < 1 || ny >= h-1 {
							continue
						}
						j := ny*w + nx
						if !mask[j] && thin[j] > 0 && thin[j] >= opt.Low {
							mask[j] = true
							stack = append(stack, j)
						}
					}
				}
			}
		}
	}
	return mask
}

// OverlayEdges paints every pixel of buf selected by mask black, in place.
func OverlayEdges(buf *Image, mask []bool) *Image {
	for i, edge := range mask {
		if edge {
			buf.Pix[i*buf.C] = 0
			buf.Pix[i*buf.C+1] = 0
			buf.Pix[i*buf.C+2] = 0
		}
	}
	return buf
}
