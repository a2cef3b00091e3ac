package utils

import (
	"bytes"
	"image"
	"image/color"
	"path/filepath"
	"testing"
)

func checker(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			c := color.NRGBA{R: 250, G: 20, B: 20, A: 255}
			if (x+y)%2 == 0 {
				c = color.NRGBA{R: 10, G: 40, B: 200, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"out.png", FormatPNG},
		{"out.PNG", FormatPNG},
		{"photo.jpg", FormatJPEG},
		{"photo.JPEG", FormatJPEG},
		{"scan.bmp", FormatBMP},
		{"scan.tif", FormatTIFF},
		{"scan.tiff", FormatTIFF},
		{"noext", FormatPNG},
		{"weird.webp", FormatPNG},
	}
	for _, tt := range tests {
		if got := FormatFromPath(tt.path); got != tt.want {
			t.Errorf("FormatFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestSaveAndReadImageLossless(t *testing.T) {
	src := checker(5, 3)
	for _, name := range []string{"out.png", "out.bmp", "out.tiff"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			if err := SaveImage(src, path); err != nil {
				t.Fatalf("SaveImage() error = %v", err)
			}
			got, err := ReadImage(path)
			if err != nil {
				t.Fatalf("ReadImage() error = %v", err)
			}
			if got.Bounds() != src.Bounds() {
				t.Fatalf("bounds = %v, want %v", got.Bounds(), src.Bounds())
			}
			for y := range 3 {
				for x := range 5 {
					want := src.NRGBAAt(x, y)
					have := color.NRGBAModel.Convert(got.At(x, y)).(color.NRGBA)
					if have != want {
						t.Errorf("pixel (%d, %d) = %v, want %v", x, y, have, want)
					}
				}
			}
		})
	}
}

func TestEncodeJPEG(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, checker(8, 8), FormatJPEG); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	_, format, err := image.Decode(&buf)
	if err != nil {
		t.Fatalf("image.Decode() error = %v", err)
	}
	if format != "jpeg" {
		t.Errorf("decoded format = %q, want jpeg", format)
	}
}

func TestEncodeUnknownFormat(t *testing.T) {
	if err := Encode(&bytes.Buffer{}, checker(1, 1), Format("gif")); err == nil {
		t.Error("Expected an error for an unsupported format")
	}
}

func TestReadImageErrors(t *testing.T) {
	if _, err := ReadImage(""); err == nil {
		t.Error("Expected an error for an empty path")
	}
	if _, err := ReadImage(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}

func TestDownscale(t *testing.T) {
	src := checker(100, 50)
	got := Downscale(src, 20)
	if b := got.Bounds(); b.Dx() != 20 || b.Dy() != 10 {
		t.Errorf("Downscale(100x50, 20) = %dx%d, want 20x10", b.Dx(), b.Dy())
	}
	if Downscale(src, 100) != image.Image(src) {
		t.Error("Downscale() resized an image already within bounds")
	}
	if Downscale(src, 0) != image.Image(src) {
		t.Error("Downscale(maxSide=0) resized the image")
	}
}

func TestFill(t *testing.T) {
	img := Fill(3, 2, color.RGBA{R: 1, G: 2, B: 3, A: 255})
	if img.Bounds().Dx() != 3 || img.Bounds().Dy() != 2 {
		t.Fatalf("Fill() bounds = %v", img.Bounds())
	}
	want := color.NRGBA{R: 1, G: 2, B: 3, A: 255}
	if got := img.NRGBAAt(2, 1); got != want {
		t.Errorf("Fill() pixel = %v, want %v", got, want)
	}
}
