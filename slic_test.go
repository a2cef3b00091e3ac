package slicmosaic

import (
	"errors"
	"math"
	"slices"
	"testing"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// sameLabelGraph links every pair of 4-neighbours that share a label. When
// each label is one connected region, the graph has exactly Count components.
func sameLabelGraph(lm *LabelMap) *simple.UndirectedGraph {
	g := simple.NewUndirectedGraph()
	for i := range lm.Labels {
		g.AddNode(simple.Node(i))
	}
	for y := range lm.H {
		for x := range lm.W {
			i := labelOffset(lm.W, x, y)
			if x+1 < lm.W && lm.Labels[i+1] == lm.Labels[i] {
				g.SetEdge(g.NewEdge(simple.Node(i), simple.Node(i+1)))
			}
			if y+1 < lm.H && lm.Labels[i+lm.W] == lm.Labels[i] {
				g.SetEdge(g.NewEdge(simple.Node(i), simple.Node(i+lm.W)))
			}
		}
	}
	return g
}

func distinctLabels(lm *LabelMap) int {
	seen := make(map[int]bool)
	for _, l := range lm.Labels {
		seen[l] = true
	}
	return len(seen)
}

func TestSegmentErrors(t *testing.T) {
	img := newTestImage(8, 8, scene)
	tests := []struct {
		name        string
		img         *Image
		segments    int
		compactness float64
		want        error
	}{
		{"zero segments", img, 0, 10, ErrInvalidSegmentCount},
		{"negative segments", img, -3, 10, ErrInvalidSegmentCount},
		{"negative compactness", img, 10, -0.5, ErrInvalidCompactness},
		{"NaN compactness", img, 10, math.NaN(), ErrInvalidCompactness},
		{"empty image", &Image{C: 3}, 10, 10, ErrEmptyImage},
		{"alpha channel", NewImage(4, 4, 4), 10, 10, ErrInvalidChannelCount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lm, err := Segment(tt.img, tt.segments, tt.compactness)
			if !errors.Is(err, tt.want) {
				t.Errorf("Segment() error = %v, want %v", err, tt.want)
			}
			if lm != nil {
				t.Errorf("Segment() returned a label map alongside error %v", err)
			}
		})
	}
}

func TestSegmentRegionsAreConnected(t *testing.T) {
	img := newTestImage(32, 24, scene)
	for _, n := range []int{1, 10, 50, 200} {
		for _, m := range []float64{0, 10, 40} {
			lm, err := Segment(img, n, m)
			if err != nil {
				t.Fatalf("Segment(n=%d, m=%v) error = %v", n, m, err)
			}
			if got := distinctLabels(lm); got != lm.Count {
				t.Errorf("n=%d m=%v: %d distinct labels, Count = %d", n, m, got, lm.Count)
			}
			if slices.Min(lm.Labels) != 1 || slices.Max(lm.Labels) != lm.Count {
				t.Errorf("n=%d m=%v: labels span %d..%d, want 1..%d",
					n, m, slices.Min(lm.Labels), slices.Max(lm.Labels), lm.Count)
			}
			if comps := len(topo.ConnectedComponents(sameLabelGraph(lm))); comps != lm.Count {
				t.Errorf("n=%d m=%v: %d connected components for %d labels", n, m, comps, lm.Count)
			}
		}
	}
}

func TestSegmentSingleSegment(t *testing.T) {
	for _, size := range [][2]int{{8, 8}, {8, 2}, {1, 13}, {31, 17}} {
		lm, err := Segment(newTestImage(size[0], size[1], scene), 1, 10)
		if err != nil {
			t.Fatalf("Segment(%v) error = %v", size, err)
		}
		if lm.Count != 1 {
			t.Errorf("Segment(%v, n=1).Count = %d, want 1", size, lm.Count)
		}
	}
}

func TestSegmentMoreSegmentsThanPixels(t *testing.T) {
	lm, err := Segment(newTestImage(1, 1, solid(1, 2, 3)), 100, 10)
	if err != nil {
		t.Fatalf("Segment() error = %v", err)
	}
	if lm.Count != 1 || lm.Labels[0] != 1 {
		t.Errorf("Segment(1x1) = %+v, want a single label 1", lm)
	}
}

func TestSegmentIgnoresWorkerCount(t *testing.T) {
	img := newTestImage(40, 30, scene)
	base, err := SegmentWith(img, SegmentOptions{Segments: 30, Compactness: 10, Workers: 1})
	if err != nil {
		t.Fatalf("SegmentWith() error = %v", err)
	}
	for _, workers := range []int{2, 3, 8, 64} {
		got, err := SegmentWith(img, SegmentOptions{Segments: 30, Compactness: 10, Workers: workers})
		if err != nil {
			t.Fatalf("SegmentWith(workers=%d) error = %v", workers, err)
		}
		if got.Count != base.Count || !slices.Equal(got.Labels, base.Labels) {
			t.Errorf("workers=%d changed the segmentation", workers)
		}
	}
}

func TestSegmentCountGrowsWithSegments(t *testing.T) {
	img := newTestImage(32, 32, gradient)
	prev := 0
	for _, n := range []int{1, 4, 16, 64} {
		lm, err := Segment(img, n, 10)
		if err != nil {
			t.Fatalf("Segment(n=%d) error = %v", n, err)
		}
		if lm.Count < prev {
			t.Errorf("Segment(n=%d).Count = %d, fewer than %d for a smaller n", n, lm.Count, prev)
		}
		prev = lm.Count
	}
	if prev < 16 {
		t.Errorf("Segment(n=64).Count = %d, want at least 16", prev)
	}
}

func TestGridSize(t *testing.T) {
	tests := []struct {
		name   string
		w, h   int
		n      int
		nx, ny int
	}{
		{"square", 4, 4, 4, 2, 2},
		{"single segment", 8, 2, 1, 1, 1},
		{"wide image", 40, 10, 4, 4, 1},
		{"more segments than pixels", 2, 2, 100, 2, 2},
		{"hundred on square", 100, 100, 100, 10, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			step := math.Sqrt(float64(tt.w*tt.h) / float64(tt.n))
			nx, ny := gridSize(tt.w, tt.h, tt.n, step)
			if nx != tt.nx || ny != tt.ny {
				t.Errorf("gridSize() = %d x %d, want %d x %d", nx, ny, tt.nx, tt.ny)
			}
			if nx*ny > tt.n {
				t.Errorf("gridSize() seeds %d centres, more than %d", nx*ny, tt.n)
			}
		})
	}
}

func TestLowestGradientTieBreak(t *testing.T) {
	s := newSlic(toLab(newTestImage(5, 5, solid(50, 50, 50))), 1, 10, 1, nil)
	if x, y := s.lowestGradient(2, 2); x != 1 || y != 1 {
		t.Errorf("lowestGradient on a flat image = (%d, %d), want (1, 1)", x, y)
	}
}

func TestLowestGradientAvoidsEdges(t *testing.T) {
	// Step between columns 2 and 3; only those two columns see it.
	img := newTestImage(7, 5, func(x, y int) (float32, float32, float32) {
		if x < 3 {
			return 0, 0, 0
		}
		return 255, 255, 255
	})
	s := newSlic(toLab(img), 1, 10, 1, nil)
	if x, y := s.lowestGradient(4, 2); x != 4 || y != 1 {
		t.Errorf("lowestGradient near a step = (%d, %d), want (4, 1)", x, y)
	}
}
