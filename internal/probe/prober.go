// Package probe inspects image files without fully decoding them. A header
// probe reads only the metadata needed for dimensions and format detection,
// so it doubles as a cheap structural-integrity check before the pipeline
// commits to an expensive full decode.
package probe

import (
	"errors"
	"fmt"
	"image"
	"os"

	// Decoder registration. The probe and the pipeline's full decode both go
	// through the stdlib image registry, so one set of blank imports covers
	// every recognized input format.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Sentinel errors for the pre-decode validation failures that have no
// underlying OS error to wrap.
var (
	ErrNotRegularFile = errors.New("not a regular file")
	ErrEmptyFile      = errors.New("file is empty")
)

// Info holds image header metadata obtained without a full decode.
type Info struct {
	Width  int
	Height int
	Format string // Registered format name, e.g. "jpeg", "png", "webp".
	Size   int64  // File size in bytes.
}

// Pixels returns the total pixel count.
func (i *Info) Pixels() int { return i.Width * i.Height }

// Probe opens path and parses the image header. The file is read only as
// far as the header; pixel data is never decoded.
func Probe(path string) (*Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("parse image header %q: %w", path, err)
	}

	info := &Info{Width: cfg.Width, Height: cfg.Height, Format: format}
	if fi, err := f.Stat(); err == nil {
		info.Size = fi.Size()
	}
	return info, nil
}

// ValidateFile runs the full pre-decode validation: path must exist, be a
// regular readable file with nonzero size, and carry a structurally valid
// image header. Returns header info on success.
func ValidateFile(path string) (*Info, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %q: %w", path, err)
	}
	if !fi.Mode().IsRegular() {
		return nil, fmt.Errorf("%q: %w", path, ErrNotRegularFile)
	}
	if fi.Size() == 0 {
		return nil, fmt.Errorf("%q: %w", path, ErrEmptyFile)
	}
	return Probe(path)
}
