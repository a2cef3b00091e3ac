package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/setanarut/slicmosaic"
	"github.com/setanarut/slicmosaic/utils"
)

type paletteOptions struct {
	mosaicFlags
	colours int
	method  string
	swatch  string
}

func newPaletteCmd() *cobra.Command {
	opts := &paletteOptions{}
	cmd := &cobra.Command{
		Use:   "palette <image>",
		Short: "Print the dominant colours of an image's mosaic",
		Long: `Build a mosaic and print its dominant colours as hex codes, darkest first.

The default method weights every superpixel colour by its area. The
dominantcolor and kmeans methods cluster the rendered mosaic instead.

Examples:
  slicmosaic palette photo.jpg
  slicmosaic palette -k 5 --method kmeans --swatch swatch.png photo.jpg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPalette(cmd, args[0], opts)
		},
	}
	opts.register(cmd.Flags(), false)
	cmd.Flags().IntVarP(&opts.colours, "colours", "k", 8, "number of colours to print")
	cmd.Flags().StringVar(&opts.method, "method", "regions", "palette method (regions, dominantcolor, kmeans)")
	cmd.Flags().StringVar(&opts.swatch, "swatch", "", "also save a swatch image to this file")
	return cmd
}

func runPalette(cmd *cobra.Command, input string, opts *paletteOptions) error {
	logger := newLogger(cmd)
	method, err := utils.ParsePaletteMethod(opts.method)
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
	palette, err := utils.MosaicPalette(builder, opts.colours, method)
	if err != nil {
		return fmt.Errorf("failed to extract palette: %w", err)
	}
	utils.SortPaletteByBrightness(palette)

	hexes := make([]string, len(palette))
	for i, c := range palette {
		hexes[i] = c.Clamped().Hex()
	}
	fmt.Fprintln(cmd.OutOrStdout(), strings.Join(hexes, "\n"))

	if opts.swatch != "" {
		swatch, err := utils.PaletteSwatch(palette, 64)
		if err != nil {
			return err
		}
		return writeImage(cmd, logger, swatch, opts.swatch)
	}
	return nil
}
