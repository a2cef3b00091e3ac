package slicmosaic

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/hashicorp/go-hclog"
)

const (
	defaultMaxIterations = 10
	// Total centre displacement, in pixels, below which clustering stops.
	convergenceThreshold = 0.1
)

type SegmentOptions struct {
	// Requested number of superpixels. The result may hold fewer.
	Segments int
	// Weight of spatial distance against Lab colour distance.
	// 0 clusters on colour only; around 10 gives regular cells on photos;
	// 40+ approaches a plain grid.
	Compactness float64
	// Upper bound on k-means rounds. 0 means 10.
	MaxIterations int
	// Goroutines used for pixel assignment. 0 means GOMAXPROCS.
	// The labels do not depend on this value.
	Workers int
	Logger  hclog.Logger
}

type center struct {
	x, y    float64
	l, a, b float64
}

type accumulator struct {
	l, a, b, sx, sy float64
	count           int
}

type slic struct {
	lab       lab32
	step      float64
	invStep2  float64 // m^2 / S^2
	centers   []center
	clusters  []int
	distances []float64
	rows      [][]int
	workers   int
	logger    hclog.Logger
}

// Segment partitions a 3-channel image into about nSegments connected
// superpixels.
func Segment(rgb *Image, nSegments int, compactness float64) (*LabelMap, error) {
	return SegmentWith(rgb, SegmentOptions{Segments: nSegments, Compactness: compactness})
}

func SegmentWith(rgb *Image, opt SegmentOptions) (*LabelMap, error) {
	if err := checkShape(rgb); err != nil {
		return nil, err
	}
	if rgb.C != 3 {
		return nil, fmt.Errorf("%w: segmentation needs 3 channels, got %d", ErrInvalidChannelCount, rgb.C)
	}
	if err := validateSegmentation(opt.Segments, opt.Compactness); err != nil {
		return nil, err
	}
	iters := opt.MaxIterations
	if iters <= 0 {
		iters = defaultMaxIterations
	}
	workers := opt.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	logger := opt.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	s := newSlic(toLab(rgb), opt.Segments, opt.Compactness, workers, logger)
	s.seed(opt.Segments)
	s.iterate(iters)
	return s.enforceConnectivity(opt.Segments), nil
}

func validateSegmentation(n int, compactness float64) error {
	if n < 1 {
		return fmt.Errorf("%w: %d (must be at least 1)", ErrInvalidSegmentCount, n)
	}
	if compactness < 0 || math.IsNaN(compactness) || math.IsInf(compactness, 0) {
		return fmt.Errorf("%w: %v (must be a finite non-negative number)", ErrInvalidCompactness, compactness)
	}
	return nil
}

func newSlic(lab lab32, n int, compactness float64, workers int, logger hclog.Logger) *slic {
	w, h := lab.W, lab.H
	step := math.Sqrt(float64(h*w) / float64(n))
	s := &slic{
		lab:       lab,
		step:      step,
		invStep2:  compactness * compactness / (step * step),
		clusters:  make([]int, h*w),
		distances: make([]float64, h*w),
		rows:      make([][]int, h),
		workers:   workers,
		logger:    logger,
	}
	return s
}

// gridSize picks the seed grid for step S, never exceeding n seeds or one
// seed per pixel along an axis.
func gridSize(w, h, n int, step float64) (nx, ny int) {
	nx = clampInt(int(math.Round(float64(w)/step)), 1, w)
	ny = clampInt(int(math.Round(float64(h)/step)), 1, h)
	for nx*ny > n {
		if nx >= ny && nx > 1 {
			nx--
		} else {
			ny--
		}
	}
	return nx, ny
}

// ============ SEEDING ============

func (s *slic) seed(n int) {
	w, h := s.lab.W, s.lab.H
	nx, ny := gridSize(w, h, n, s.step)
	s.centers = make([]center, 0, nx*ny)
	for gy := range ny {
		cy := int((float64(gy) + 0.5) * float64(h) / float64(ny))
		for gx := range nx {
			cx := int((float64(gx) + 0.5) * float64(w) / float64(nx))
			lx, ly := s.lowestGradient(cx, cy)
			off := pixOffset(w, lx, ly)
			s.centers = append(s.centers, center{
				x: float64(lx),
				y: float64(ly),
				l: float64(s.lab.Pix[off]),
				a: float64(s.lab.Pix[off+1]),
				b: float64(s.lab.Pix[off+2]),
			})
		}
	}
	s.logger.Debug("seeded superpixel grid", "requested", n, "seeds", len(s.centers), "step", s.step)
}

// lowestGradient scans the 3x3 neighbourhood in row-major order so that
// ties resolve to the smallest row, then the smallest column.
func (s *slic) lowestGradient(cx, cy int) (int, int) {
	w, h := s.lab.W, s.lab.H
	minGrad := math.MaxFloat64
	lx, ly := cx, cy
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			nx, ny := cx+dx, cy+dy
			if nx < 0 || nx >= w || ny < 0 || ny >= h {
				continue
			}
			grad := s.gradient(nx, ny)
			if grad < minGrad {
				minGrad = grad
				lx, ly = nx, ny
			}
		}
	}
	return lx, ly
}

func (s *slic) gradient(x, y int) float64 {
	w, h := s.lab.W, s.lab.H
	return s.labDistance2(max(x-1, 0), y, min(x+1, w-1), y) +
		s.labDistance2(x, max(y-1, 0), x, min(y+1, h-1))
}

func (s *slic) labDistance2(x1, y1, x2, y2 int) float64 {
	off1 := pixOffset(s.lab.W, x1, y1)
	off2 := pixOffset(s.lab.W, x2, y2)
	dL := float64(s.lab.Pix[off1] - s.lab.Pix[off2])
	dA := float64(s.lab.Pix[off1+1] - s.lab.Pix[off2+1])
	dB := float64(s.lab.Pix[off1+2] - s.lab.Pix[off2+2])
	return dL*dL + dA*dA + dB*dB
}

// ============ CLUSTERING ============

func (s *slic) iterate(maxIterations int) {
	for it := range maxIterations {
		s.assign()
		moved, dropped := s.recenter()
		s.logger.Trace("slic iteration", "iteration", it+1, "centers", len(s.centers), "dropped", dropped, "moved", moved)
		if moved < convergenceThreshold {
			s.logger.Debug("slic converged", "iterations", it+1)
			return
		}
	}
}

// distance2 is the squared joint distance D^2 = dc^2 + (ds/S)^2 m^2.
func (s *slic) distance2(c *center, x, y int, off int) float64 {
	dL := float64(s.lab.Pix[off]) - c.l
	dA := float64(s.lab.Pix[off+1]) - c.a
	dB := float64(s.lab.Pix[off+2]) - c.b
	dx := float64(x) - c.x
	dy := float64(y) - c.y
	return dL*dL + dA*dA + dB*dB + (dx*dx+dy*dy)*s.invStep2
}

// window returns the inclusive pixel range within S of c along one axis.
func window(pos, step float64, size int) (int, int) {
	return max(int(math.Ceil(pos-step)), 0), min(int(math.Floor(pos+step)), size-1)
}

func (s *slic) assign() {
	w, h := s.lab.W, s.lab.H
	for y := range s.rows {
		s.rows[y] = s.rows[y][:0]
	}
	for ci := range s.centers {
		y0, y1 := window(s.centers[ci].y, s.step, h)
		for y := y0; y <= y1; y++ {
			s.rows[y] = append(s.rows[y], ci)
		}
	}

	s.parallelRows(func(rowStart, rowEnd int) {
		for y := rowStart; y < rowEnd; y++ {
			row := y * w
			for x := range w {
				s.distances[row+x] = math.MaxFloat64
				s.clusters[row+x] = -1
			}
			// Centre indices are ascending, so strict comparison keeps the
			// lowest index on ties.
			for _, ci := range s.rows[y] {
				c := &s.centers[ci]
				x0, x1 := window(c.x, s.step, w)
				for x := x0; x <= x1; x++ {
					pIdx := row + x
					d := s.distance2(c, x, y, pIdx*3)
					if d < s.distances[pIdx] {
						s.distances[pIdx] = d
						s.clusters[pIdx] = ci
					}
				}
			}
			for x := range w {
				if s.clusters[row+x] == -1 {
					s.assignNearest(x, y)
				}
			}
		}
	})
}

// assignNearest handles pixels that no search window reached.
func (s *slic) assignNearest(x, y int) {
	pIdx := labelOffset(s.lab.W, x, y)
	for ci := range s.centers {
		d := s.distance2(&s.centers[ci], x, y, pIdx*3)
		if d < s.distances[pIdx] {
			s.distances[pIdx] = d
			s.clusters[pIdx] = ci
		}
	}
}

func (s *slic) parallelRows(fn func(rowStart, rowEnd int)) {
	h := s.lab.H
	workers := min(s.workers, h)
	if workers <= 1 {
		fn(0, h)
		return
	}
	band := (h + workers - 1) / workers
	var wg sync.WaitGroup
	for y0 := 0; y0 < h; y0 += band {
		y1 := min(y0+band, h)
		wg.Go(func() { fn(y0, y1) })
	}
	wg.Wait()
}

// recenter moves every centre to the mean of its pixels and drops centres
// that lost all of them. It returns the total displacement of the survivors.
func (s *slic) recenter() (float64, int) {
	w, h := s.lab.W, s.lab.H
	acc := make([]accumulator, len(s.centers))
	for y := range h {
		for x := range w {
			pIdx := labelOffset(w, x, y)
			ci := s.clusters[pIdx]
			off := pIdx * 3
			acc[ci].l += float64(s.lab.Pix[off])
			acc[ci].a += float64(s.lab.Pix[off+1])
			acc[ci].b += float64(s.lab.Pix[off+2])
			acc[ci].sx += float64(x)
			acc[ci].sy += float64(y)
			acc[ci].count++
		}
	}

	next := make([]center, 0, len(s.centers))
	moved := 0.0
	for ci, c := range s.centers {
		if acc[ci].count == 0 {
			continue
		}
		n := float64(acc[ci].count)
		nc := center{
			x: acc[ci].sx / n,
			y: acc[ci].sy / n,
			l: acc[ci].l / n,
			a: acc[ci].a / n,
			b: acc[ci].b / n,
		}
		moved += math.Hypot(nc.x-c.x, nc.y-c.y)
		next = append(next, nc)
	}
	dropped := len(s.centers) - len(next)
	s.centers = next
	return moved, dropped
}
