package slicmosaic

import (
	"image"
	"math"

	"github.com/hashicorp/go-hclog"
	"github.com/lucasb-eyer/go-colorful"
)

type Options struct {
	// Number of SLIC regions requested.
	// Larger values give smaller tiles and a mosaic closer to the input.
	// The original gallery used 100, 200, 300 and 500.
	Segments int
	// Trade-off between colour fit and spatial regularity.
	// Ideal start: 10. Lower => tiles hug colour edges; higher => square tiles.
	Compactness float64
	// Post effects, applied in this order.
	Blur       bool
	Edges      bool
	Boundaries bool
	// Gaussian sigma for Blur. 0 means 1.
	BlurSigma float64
	// Canny settings for Edges. Edges are found on the original image.
	// The zero value means DefaultEdgeOptions().
	Edge EdgeOptions
	// Colour of boundary lines.
	BoundaryColor colorful.Color
	// Colour transparent input pixels are flattened onto. nil means White.
	Background *colorful.Color
	// k-means rounds; 0 means 10.
	MaxIterations int
	// Assignment goroutines; 0 means GOMAXPROCS.
	Workers int
	// Receives debug and trace records. nil discards them.
	Logger hclog.Logger
}

func DefaultOptions() Options {
	return Options{
		Segments:      100,
		Compactness:   10,
		BlurSigma:     1,
		Edge:          DefaultEdgeOptions(),
		BoundaryColor: colorful.Color{R: 0, G: 0, B: 0},
		MaxIterations: defaultMaxIterations,
	}
}

// withDefaults replaces zero values that stand for a default.
func (opt Options) withDefaults() Options {
	if opt.BlurSigma <= 0 {
		opt.BlurSigma = 1
	}
	if opt.Edge == (EdgeOptions{}) {
		opt.Edge = DefaultEdgeOptions()
	}
	if opt.Logger == nil {
		opt.Logger = hclog.NewNullLogger()
	}
	return opt
}

func (opt Options) background() colorful.Color {
	if opt.Background == nil {
		return White
	}
	return *opt.Background
}

const (
	tilesAcross = 24
	// An 8px tile keeps the connectivity floor H*W/(4n) at 16 pixels.
	minTileSide = 8
)

// OptionsFromSize picks the segment count so that about tilesAcross tiles
// span the longer side, which lands in the 100-500 range of the variant
// gallery for typical photos. Tiles never shrink below minTileSide, so
// small images do not collapse into one-pixel regions.
func OptionsFromSize(size image.Point) Options {
	opt := DefaultOptions()
	if size.X <= 0 || size.Y <= 0 {
		return opt
	}
	side := max(float64(max(size.X, size.Y))/tilesAcross, minTileSide)
	opt.Segments = max(1, int(math.Round(float64(size.X*size.Y)/(side*side))))
	return opt
}

// MosaicBuilder runs the mosaic pipeline on one input and keeps the
// intermediate products.
type MosaicBuilder struct {
	Input   *Image
	Rgb     *Image
	Labels  *LabelMap
	Regions []Region
	// Flat is the region-averaged image before any post effect.
	Flat *Image
	// Mosaic is the final image. It is Flat itself when no effect is enabled.
	Mosaic *Image
}

func NewMosaicBuilder(input *Image) *MosaicBuilder {
	return &MosaicBuilder{Input: input}
}

// Build validates the input and options before doing any work, then runs
// conversion, segmentation, averaging and the enabled effects. Results of an
// earlier Build are cleared first; a failed Build leaves only Input set.
func (mb *MosaicBuilder) Build(opt Options) error {
	*mb = MosaicBuilder{Input: mb.Input}
	if err := checkShape(mb.Input); err != nil {
		return err
	}
	if err := validateSegmentation(opt.Segments, opt.Compactness); err != nil {
		return err
	}
	opt = opt.withDefaults()
	logger := opt.Logger

	rgb, err := ToRGB(mb.Input, opt.background())
	if err != nil {
		return err
	}
	labels, err := SegmentWith(rgb, SegmentOptions{
		Segments:      opt.Segments,
		Compactness:   opt.Compactness,
		MaxIterations: opt.MaxIterations,
		Workers:       opt.Workers,
		Logger:        logger.Named("slic"),
	})
	if err != nil {
		return err
	}
	flat, regions, err := AverageRegions(rgb, labels)
	if err != nil {
		return err
	}
	logger.Debug("regions averaged", "requested", opt.Segments, "regions", len(regions))

	mosaic := flat
	if opt.Blur || opt.Edges || opt.Boundaries {
		mosaic = mosaic.Clone()
	}
	if opt.Blur {
		mosaic = GaussianBlur(mosaic, opt.BlurSigma)
	}
	if opt.Edges {
		mosaic = OverlayEdges(mosaic, DetectEdges(Grayscale(rgb), opt.Edge))
	}
	if opt.Boundaries {
		mosaic = MarkBoundaries(mosaic, labels, opt.BoundaryColor)
	}

	mb.Rgb, mb.Labels, mb.Regions, mb.Flat, mb.Mosaic = rgb, labels, regions, flat, mosaic
	return nil
}

// Run turns img into a mosaic. It keeps no state between calls; identical
// inputs give identical outputs.
func Run(img *Image, opt Options) (*Image, error) {
	mb := NewMosaicBuilder(img)
	if err := mb.Build(opt); err != nil {
		return nil, err
	}
	return mb.Mosaic, nil
}
