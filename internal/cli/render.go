package cli

import (
	"fmt"
	"image"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/setanarut/slicmosaic"
	"github.com/setanarut/slicmosaic/utils"
)

type renderOptions struct {
	mosaicFlags
	output        string
	palette       string
	paletteSize   int
	paletteMethod string
}

func newRenderCmd() *cobra.Command {
	opts := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render <image>",
		Short: "Render a superpixel mosaic of an image",
		Long: `Render a superpixel mosaic of an image.

Supported input formats: JPEG, PNG, GIF, WebP
Output format follows the output extension: .png, .jpg, .bmp, .tif

Examples:
  # 100 superpixels, no effects
  slicmosaic render photo.jpg -o mosaic.png

  # 300 superpixels with boundary lines
  slicmosaic render -n 300 --boundaries photo.jpg -o mosaic.png

  # Soft mosaic with edges from the original, written to stdout
  slicmosaic render --blur --edges photo.jpg -o - > mosaic.png

  # Also save the five dominant mosaic colours as a swatch
  slicmosaic render --palette swatch.png --palette-size 5 photo.jpg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args[0], opts)
		},
	}
	opts.register(cmd.Flags(), false)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "mosaic.png", "output file, or - for PNG on stdout")
	cmd.Flags().StringVar(&opts.palette, "palette", "", "also save a palette swatch of the mosaic to this file")
	cmd.Flags().IntVar(&opts.paletteSize, "palette-size", 8, "number of palette colours")
	cmd.Flags().StringVar(&opts.paletteMethod, "palette-method", "regions", "palette method (regions, dominantcolor, kmeans)")
	return cmd
}

func runRender(cmd *cobra.Command, input string, opts *renderOptions) error {
	logger := newLogger(cmd)
	method, err := utils.ParsePaletteMethod(opts.paletteMethod)
	if err != nil {
		return err
	}
	src, err := loadInput(input, opts.maxSize, logger)
	if err != nil {
		return err
	}

	builder := slicmosaic.NewMosaicBuilder(slicmosaic.FromImage(src))
	if err := builder.Build(opts.options(logger)); err != nil {
		return fmt.Errorf("failed to build mosaic: %w", err)
	}
	logger.Info("mosaic built", "requested", opts.segments, "regions", builder.Labels.Count)

	if err := writeImage(cmd, logger, builder.Mosaic.ToNRGBA(), opts.output); err != nil {
		return err
	}

	if opts.palette != "" {
		palette, err := utils.MosaicPalette(builder, opts.paletteSize, method)
		if err != nil {
			return fmt.Errorf("failed to extract palette: %w", err)
		}
		utils.SortPaletteByBrightness(palette)
		swatch, err := utils.PaletteSwatch(palette, 64)
		if err != nil {
			return err
		}
		if err := writeImage(cmd, logger, swatch, opts.palette); err != nil {
			return err
		}
	}
	return nil
}

// writeImage saves img to path, or PNG-encodes it to stdout when path is "-".
func writeImage(cmd *cobra.Command, logger hclog.Logger, img image.Image, path string) error {
	if path == "-" {
		out := cmd.OutOrStdout()
		if isTerminal(out) {
			return fmt.Errorf("refusing to write binary image data to a terminal")
		}
		return utils.Encode(out, img, utils.FormatPNG)
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}
	if err := utils.SaveImage(img, expanded); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	logger.Info("image written", "path", expanded, "format", utils.FormatFromPath(expanded))
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
