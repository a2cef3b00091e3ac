// slicmosaic renders superpixel mosaics of images.
package main

import (
	"os"

	"github.com/setanarut/slicmosaic/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
