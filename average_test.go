package slicmosaic

import (
	"errors"
	"math"
	"testing"
)

func halfLabels(w, h int) *LabelMap {
	lm := &LabelMap{W: w, H: h, Labels: make([]int, w*h), Count: 2}
	for y := range h {
		for x := range w {
			lm.Labels[labelOffset(w, x, y)] = 1
			if x >= w/2 {
				lm.Labels[labelOffset(w, x, y)] = 2
			}
		}
	}
	return lm
}

func TestAverageRegions(t *testing.T) {
	// Left half alternates 0/100 red, right half is a flat blue.
	img := newTestImage(4, 2, func(x, y int) (float32, float32, float32) {
		if x < 2 {
			return float32(((x + y) % 2) * 100), 0, 0
		}
		return 0, 0, 200
	})
	flat, regions, err := AverageRegions(img, halfLabels(4, 2))
	if err != nil {
		t.Fatalf("AverageRegions() error = %v", err)
	}

	for y := range 2 {
		for x := range 4 {
			r, g, b := flat.At(x, y)
			want := [3]float32{50, 0, 0}
			if x >= 2 {
				want = [3]float32{0, 0, 200}
			}
			if r != want[0] || g != want[1] || b != want[2] {
				t.Errorf("pixel (%d, %d) = %v %v %v, want %v", x, y, r, g, b, want)
			}
		}
	}

	if len(regions) != 2 {
		t.Fatalf("got %d regions, want 2", len(regions))
	}
	left := regions[0]
	if left.Label != 1 || left.Area != 4 {
		t.Errorf("left region = %+v, want label 1 with area 4", left)
	}
	if !almostEqual(left.CX, 0.5, 1e-9) || !almostEqual(left.CY, 0.5, 1e-9) {
		t.Errorf("left centroid = (%v, %v), want (0.5, 0.5)", left.CX, left.CY)
	}
	if !almostEqual(left.Mean.R, 50.0/255.0, 1e-9) {
		t.Errorf("left mean red = %v, want %v", left.Mean.R, 50.0/255.0)
	}
	if !almostEqual(regions[1].Mean.B, 200.0/255.0, 1e-9) {
		t.Errorf("right mean blue = %v, want %v", regions[1].Mean.B, 200.0/255.0)
	}
}

func TestAverageRegionsLeavesInputAlone(t *testing.T) {
	img := newTestImage(6, 4, scene)
	before := img.Clone()
	flat, _, err := AverageRegions(img, halfLabels(6, 4))
	if err != nil {
		t.Fatalf("AverageRegions() error = %v", err)
	}
	if &flat.Pix[0] == &img.Pix[0] {
		t.Fatal("AverageRegions() wrote into its input buffer")
	}
	for i := range img.Pix {
		if img.Pix[i] != before.Pix[i] {
			t.Fatalf("input sample %d changed from %v to %v", i, before.Pix[i], img.Pix[i])
		}
	}
}

func TestAverageRegionsSkipsUnusedLabels(t *testing.T) {
	lm := &LabelMap{W: 2, H: 1, Labels: []int{1, 3}, Count: 2}
	_, regions, err := AverageRegions(newTestImage(2, 1, gradient), lm)
	if err != nil {
		t.Fatalf("AverageRegions() error = %v", err)
	}
	if len(regions) != 2 || regions[0].Label != 1 || regions[1].Label != 3 {
		t.Errorf("regions = %+v, want labels 1 and 3", regions)
	}
}

func TestAverageRegionsSparseLabels(t *testing.T) {
	lm := &LabelMap{W: 3, H: 1, Labels: []int{math.MaxInt, 1, math.MaxInt}, Count: 2}
	img := newTestImage(3, 1, func(x, y int) (float32, float32, float32) {
		return float32(x * 100), 0, 0
	})
	flat, regions, err := AverageRegions(img, lm)
	if err != nil {
		t.Fatalf("AverageRegions() error = %v", err)
	}
	if len(regions) != 2 || regions[0].Label != 1 || regions[1].Label != math.MaxInt {
		t.Fatalf("regions = %+v, want labels 1 and MaxInt", regions)
	}
	if regions[1].Area != 2 || !almostEqual(regions[1].CX, 1, 1e-9) {
		t.Errorf("sparse region = %+v, want area 2 centred at x=1", regions[1])
	}
	for x, want := range []float32{100, 100, 100} {
		if r, _, _ := flat.At(x, 0); r != want {
			t.Errorf("pixel %d red = %v, want %v", x, r, want)
		}
	}
}

func TestAverageRegionsErrors(t *testing.T) {
	img := newTestImage(4, 2, gradient)
	tests := []struct {
		name   string
		img    *Image
		labels *LabelMap
		want   error
	}{
		{"nil labels", img, nil, ErrShapeMismatch},
		{"wrong width", img, halfLabels(2, 2), ErrShapeMismatch},
		{"short label slice", img, &LabelMap{W: 4, H: 2, Labels: make([]int, 5)}, ErrShapeMismatch},
		{"zero label", img, &LabelMap{W: 4, H: 2, Labels: make([]int, 8)}, ErrShapeMismatch},
		{"alpha image", NewImage(4, 2, 4), halfLabels(4, 2), ErrInvalidChannelCount},
		{"empty image", &Image{C: 3}, halfLabels(4, 2), ErrEmptyImage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := AverageRegions(tt.img, tt.labels); !errors.Is(err, tt.want) {
				t.Errorf("AverageRegions() error = %v, want %v", err, tt.want)
			}
		})
	}
}
