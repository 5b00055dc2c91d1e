package present

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
)

// Supported snapshot formats.
type Format uint8

const (
	PNG Format = iota
	WebP
	TGA
)

func (f Format) String() string {
	switch f {
	case WebP:
		return "webp"
	case TGA:
		return "tga"
	}
	return "png"
}

// Select a snapshot format from a file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return PNG, nil
	case ".webp":
		return WebP, nil
	case ".tga":
		return TGA, nil
	}
	return PNG, fmt.Errorf("present: unsupported snapshot format %q", filepath.Ext(path))
}

// Encode an image in the requested format.
func Encode(w io.Writer, format Format, img image.Image) error {
	switch format {
	case WebP:
		return nativewebp.Encode(w, img, nil)
	case TGA:
		return tga.Encode(w, img)
	}
	return png.Encode(w, img)
}

// Write an image to a file; the format is selected by the file extension.
func Export(path string, img image.Image) error {
	format, err := FormatForPath(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("present: could not create snapshot: %w", err)
	}
	if err = Encode(f, format, img); err != nil {
		f.Close()
		return fmt.Errorf("present: could not encode %s snapshot: %w", format, err)
	}
	if err = f.Close(); err != nil {
		return err
	}

	logger.Noticef("wrote %dx%d %s snapshot to %s", img.Bounds().Dx(), img.Bounds().Dy(), format, path)
	return nil
}

// Export the last presented frame.
func (p *Presenter) Snapshot(path string) error {
	img, _, err := p.LastFrame()
	if err != nil {
		return err
	}
	return Export(path, img)
}
