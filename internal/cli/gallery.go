package cli

import (
	"fmt"
	"image"
	"image/color"

	"github.com/spf13/cobra"

	"github.com/setanarut/slicmosaic"
	"github.com/setanarut/slicmosaic/utils"
)

type galleryOptions struct {
	mosaicFlags
	output   string
	counts   []int
	gap      int
	original bool
}

func newGalleryCmd() *cobra.Command {
	opts := &galleryOptions{}
	cmd := &cobra.Command{
		Use:   "gallery <image>",
		Short: "Render mosaics at several segment counts side by side",
		Long: `Render the original image and one mosaic per segment count in a single strip.

Boundaries are drawn by default; pass --boundaries=false to turn them off.

Examples:
  # Original plus 100, 200, 300 and 500 superpixels
  slicmosaic gallery photo.jpg -o gallery.png

  # Custom counts on a downscaled copy
  slicmosaic gallery --counts 50,150,400 --max-size 800 photo.jpg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGallery(cmd, args[0], opts)
		},
	}
	opts.register(cmd.Flags(), true)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "gallery.png", "output file, or - for PNG on stdout")
	cmd.Flags().IntSliceVar(&opts.counts, "counts", utils.GallerySegments, "segment counts to render")
	cmd.Flags().IntVar(&opts.gap, "gap", 8, "pixels between panels")
	cmd.Flags().BoolVar(&opts.original, "original", true, "include the original image as the first panel")
	return cmd
}

func runGallery(cmd *cobra.Command, input string, opts *galleryOptions) error {
	logger := newLogger(cmd)
	if len(opts.counts) == 0 {
		return fmt.Errorf("at least one segment count is required")
	}
	src, err := loadInput(input, opts.maxSize, logger)
	if err != nil {
		return err
	}

	variants, err := utils.Variants(slicmosaic.FromImage(src), opts.counts, opts.options(logger))
	if err != nil {
		return fmt.Errorf("failed to build mosaics: %w", err)
	}

	panels := make([]image.Image, 0, len(variants)+1)
	if opts.original {
		panels = append(panels, src)
	}
	for _, v := range variants {
		panels = append(panels, v.ToNRGBA())
	}
	logger.Info("gallery built", "panels", len(panels), "counts", opts.counts)
	return writeImage(cmd, logger, utils.Gallery(panels, opts.gap, color.White), opts.output)
}
