package utils

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/setanarut/slicmosaic"
)

// GallerySegments are the segment counts the variant gallery renders by default.
var GallerySegments = []int{100, 200, 300, 500}

// Variants renders one mosaic per segment count. Each run gets its own
// builder, so they execute concurrently. Results keep the order of segments.
func Variants(img *slicmosaic.Image, segments []int, opt slicmosaic.Options) ([]*slicmosaic.Image, error) {
	out := make([]*slicmosaic.Image, len(segments))
	errs := make([]error, len(segments))
	var wg sync.WaitGroup
	for i, n := range segments {
		wg.Go(func() {
			o := opt
			o.Segments = n
			if o.Logger != nil {
				o.Logger = o.Logger.With("segments", n)
			}
			out[i], errs[i] = slicmosaic.Run(img, o)
		})
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("variant with %d segments: %w", segments[i], err)
		}
	}
	return out, nil
}

// Gallery places images left to right with gap pixels of bg between them,
// top-aligned.
func Gallery(images []image.Image, gap int, bg color.Color) *image.NRGBA {
	w, h := 0, 0
	for i, img := range images {
		b := img.Bounds()
		w += b.Dx()
		if i > 0 {
			w += gap
		}
		h = max(h, b.Dy())
	}
	canvas := Fill(max(w, 1), max(h, 1), bg)
	x := 0
	for _, img := range images {
		b := img.Bounds()
		draw.Draw(canvas, image.Rect(x, 0, x+b.Dx(), b.Dy()), img, b.Min, draw.Src)
		x += b.Dx() + gap
	}
	return canvas
}
