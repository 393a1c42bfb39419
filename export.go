package fractal

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Format is a raster file format supported by Save.
type Format string

const (
	FormatPNG  Format = "png"
	FormatTIFF Format = "tiff"
	FormatBMP  Format = "bmp"
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG, nil
	case ".tif", ".tiff":
		return FormatTIFF, nil
	case ".bmp":
		return FormatBMP, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, f Format, img image.Image) error {
	switch f {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	case FormatBMP:
		return bmp.Encode(w, img)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(f))
}

// Save writes img to path, choosing the encoder from the extension
// (.png, .tif/.tiff, .bmp).
func Save(path string, img image.Image) (err error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("save %s: %w", path, cerr)
		}
	}()
	if err := Encode(file, f, img); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
