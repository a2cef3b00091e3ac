// Package cli provides the command-line interface for slicmosaic.
package cli

import (
	"fmt"
	"image"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/setanarut/slicmosaic"
	"github.com/setanarut/slicmosaic/internal/version"
	"github.com/setanarut/slicmosaic/utils"
)

// NewRootCmd builds the command tree. Each call returns independent
// commands and flag state.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "slicmosaic",
		Short: "Turn images into superpixel mosaics",
		Long: `slicmosaic partitions an image into superpixels with SLIC clustering and
flattens every superpixel to its mean colour. Blur, edge lines from the
original image and superpixel boundaries can be layered on top.`,
		Version:      version.Short(),
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")
	root.PersistentFlags().BoolP("quiet", "q", false, "suppress non-error output")
	root.SetVersionTemplate(version.String() + "\n")

	root.AddCommand(newRenderCmd())
	root.AddCommand(newGalleryCmd())
	root.AddCommand(newPaletteCmd())
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	})
	return root
}

// newLogger returns the command logger: Debug with --verbose, Error with
// --quiet, Info otherwise. Records go to the command's stderr.
func newLogger(cmd *cobra.Command) hclog.Logger {
	level := hclog.Info
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = hclog.Debug
	}
	if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
		level = hclog.Error
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "slicmosaic",
		Output: cmd.ErrOrStderr(),
		Level:  level,
	})
}

// mosaicFlags are the pipeline options shared by every command.
type mosaicFlags struct {
	segments    int
	compactness float64
	blur        bool
	edges       bool
	boundaries  bool
	sigma       float64
	maxSize     uint
	iterations  int
}

func (f *mosaicFlags) register(fs *pflag.FlagSet, boundaries bool) {
	fs.IntVarP(&f.segments, "segments", "n", 100, "number of superpixels to request")
	fs.Float64VarP(&f.compactness, "compactness", "c", 10, "spatial regularity of superpixels (>= 0)")
	fs.BoolVar(&f.blur, "blur", false, "apply a Gaussian blur to the mosaic")
	fs.BoolVar(&f.edges, "edges", false, "draw edges of the original image in black")
	fs.BoolVar(&f.boundaries, "boundaries", boundaries, "draw superpixel boundaries in black")
	fs.Float64Var(&f.sigma, "sigma", 1, "Gaussian sigma used by --blur")
	fs.UintVar(&f.maxSize, "max-size", 0, "downscale the input so no side exceeds this many pixels (0 keeps the size)")
	fs.IntVar(&f.iterations, "iterations", 10, "maximum SLIC iterations")
}

func (f *mosaicFlags) options(logger hclog.Logger) slicmosaic.Options {
	opt := slicmosaic.DefaultOptions()
	opt.Segments = f.segments
	opt.Compactness = f.compactness
	opt.Blur = f.blur
	opt.Edges = f.edges
	opt.Boundaries = f.boundaries
	opt.BlurSigma = f.sigma
	opt.MaxIterations = f.iterations
	opt.Logger = logger
	return opt
}

// loadInput expands, decodes and optionally downscales the input image.
func loadInput(path string, maxSize uint, logger hclog.Logger) (image.Image, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("invalid image path: %w", err)
	}
	logger.Debug("loading image", "path", expanded)
	img, err := utils.ReadImage(expanded)
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}
	before := img.Bounds().Size()
	img = utils.Downscale(img, maxSize)
	logger.Debug("image loaded", "size", before, "working_size", img.Bounds().Size())
	return img, nil
}
