package utils

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"slices"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"github.com/setanarut/slicmosaic"
)

type PaletteMethod int

const (
	// Region means weighted by region area. Exact for a flat mosaic.
	PaletteMethodRegions PaletteMethod = iota
	PaletteMethodDominantColor
	PaletteMethodKMeans
)

func (m PaletteMethod) String() string {
	switch m {
	case PaletteMethodDominantColor:
		return "dominantcolor"
	case PaletteMethodKMeans:
		return "kmeans"
	default:
		return "regions"
	}
}

// ParsePaletteMethod is the inverse of PaletteMethod.String.
func ParsePaletteMethod(s string) (PaletteMethod, error) {
	for _, m := range []PaletteMethod{PaletteMethodRegions, PaletteMethodDominantColor, PaletteMethodKMeans} {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown palette method: %s (valid: regions, dominantcolor, kmeans)", s)
}

// WeightedColor is a palette candidate; Weight is usually a pixel count.
type WeightedColor struct {
	Col    colorful.Color
	Weight float64
}

// MosaicPalette extracts k colours from a built mosaic using method.
func MosaicPalette(mb *slicmosaic.MosaicBuilder, k int, method PaletteMethod) ([]colorful.Color, error) {
	if mb == nil || mb.Mosaic == nil {
		return nil, fmt.Errorf("mosaic has not been built")
	}
	if k < 1 {
		return nil, fmt.Errorf("color count must be at least 1, got %d", k)
	}
	var cands []WeightedColor
	switch method {
	case PaletteMethodDominantColor:
		cands = dominantCandidates(mb.Mosaic.ToNRGBA(), max(24, k*8))
	case PaletteMethodKMeans:
		var err error
		cands, err = kmeansCandidates(mb.Mosaic.ToNRGBA(), min(max(k*4, k+2), len(mb.Regions)))
		if err != nil {
			return nil, err
		}
	default:
		cands = RegionCandidates(mb.Regions)
	}
	if len(cands) == 0 {
		return nil, fmt.Errorf("no palette candidates found (method: %s)", method)
	}
	return SelectDiverse(cands, k), nil
}

// RegionCandidates turns averaged regions into candidates, largest first.
func RegionCandidates(regions []slicmosaic.Region) []WeightedColor {
	out := make([]WeightedColor, 0, len(regions))
	for _, r := range regions {
		out = append(out, WeightedColor{Col: r.Mean.Clamped(), Weight: float64(r.Area)})
	}
	slices.SortStableFunc(out, func(a, b WeightedColor) int {
		switch {
		case a.Weight > b.Weight:
			return -1
		case a.Weight < b.Weight:
			return 1
		}
		return 0
	})
	return out
}

func dominantCandidates(img image.Image, n int) []WeightedColor {
	found := dominantcolor.FindWeight(img, n)
	out := make([]WeightedColor, 0, len(found))
	for _, c := range found {
		col, _ := colorful.MakeColor(c.RGBA)
		out = append(out, WeightedColor{Col: col.Clamped(), Weight: c.Weight})
	}
	return out
}

func kmeansCandidates(img image.Image, k int) ([]WeightedColor, error) {
	b := img.Bounds()
	// Subsample to keep kmeans tractable on large images.
	const maxSamples = 12000
	step := 1
	if b.Dx()*b.Dy() > maxSamples {
		step = int(math.Sqrt(float64(b.Dx()*b.Dy())/maxSamples)) + 1
	}
	var dataset clusters.Observations
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			c, _ := colorful.MakeColor(img.At(x, y))
			dataset = append(dataset, clusters.Coordinates{c.R, c.G, c.B})
		}
	}
	k = min(k, len(dataset))
	if k < 1 {
		return nil, nil
	}
	cc, err := kmeans.New().Partition(dataset, k)
	if err != nil {
		return nil, fmt.Errorf("kmeans partition failed: %w", err)
	}
	out := make([]WeightedColor, 0, len(cc))
	for _, c := range cc {
		if len(c.Observations) == 0 || len(c.Center) < 3 {
			continue
		}
		col := colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}.Clamped()
		out = append(out, WeightedColor{Col: col, Weight: float64(len(c.Observations))})
	}
	return out, nil
}

// SelectDiverse greedily picks up to k colours: the heaviest candidate
// first, then whichever candidate is farthest in Lab from everything picked
// so far, with heavier candidates favoured.
func SelectDiverse(cands []WeightedColor, k int) []colorful.Color {
	if k <= 0 || len(cands) == 0 {
		return nil
	}
	k = min(k, len(cands))
	maxW := 0.0
	for _, c := range cands {
		maxW = max(maxW, c.Weight)
	}
	if maxW <= 0 {
		maxW = 1
	}

	first := 0
	for i, c := range cands {
		if c.Weight > cands[first].Weight {
			first = i
		}
	}
	picked := []int{first}
	used := make([]bool, len(cands))
	used[first] = true
	// nearest[i] is the Lab distance from candidate i to the closest pick.
	nearest := make([]float64, len(cands))
	for i, c := range cands {
		nearest[i] = c.Col.DistanceLab(cands[first].Col)
	}

	for len(picked) < k {
		best, bestScore := -1, -1.0
		for i, c := range cands {
			if used[i] {
				continue
			}
			score := nearest[i] * (0.55 + 0.45*math.Sqrt(max(c.Weight, 0)/maxW))
			if score > bestScore {
				best, bestScore = i, score
			}
		}
		if best < 0 {
			break
		}
		used[best] = true
		picked = append(picked, best)
		for i, c := range cands {
			nearest[i] = min(nearest[i], c.Col.DistanceLab(cands[best].Col))
		}
	}

	out := make([]colorful.Color, 0, len(picked))
	for _, i := range picked {
		out = append(out, cands[i].Col)
	}
	return out
}

// SortPaletteByBrightness orders colours from darkest to brightest by
// relative luminance.
func SortPaletteByBrightness(palette []colorful.Color) {
	luma := func(c colorful.Color) float64 {
		r, g, b := c.LinearRgb()
		return 0.2126*r + 0.7152*g + 0.0722*b
	}
	slices.SortStableFunc(palette, func(a, b colorful.Color) int {
		ya, yb := luma(a), luma(b)
		switch {
		case ya < yb:
			return -1
		case ya > yb:
			return 1
		}
		return 0
	})
}

// PaletteSwatch renders palette as a strip of tileSize squares.
func PaletteSwatch(palette []colorful.Color, tileSize int) (*image.NRGBA, error) {
	if len(palette) == 0 {
		return nil, fmt.Errorf("empty palette")
	}
	if tileSize <= 0 {
		tileSize = 64
	}
	img := image.NewNRGBA(image.Rect(0, 0, tileSize*len(palette), tileSize))
	for i, c := range palette {
		r, g, b := c.Clamped().RGB255()
		fill := color.NRGBA{R: r, G: g, B: b, A: 255}
		for y := range tileSize {
			for x := i * tileSize; x < (i+1)*tileSize; x++ {
				img.SetNRGBA(x, y, fill)
			}
		}
	}
	return img, nil
}
