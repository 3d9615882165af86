package utils

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedFormat is wrapped by EncodeError when the output extension
// has no encoder that keeps the alpha channel.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// DecodeError reports an input file that could not be opened or decoded.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError reports an output file that could not be created or written.
type EncodeError struct {
	Path string
	Err  error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s: %v", e.Path, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// ReadImage decodes PNG, JPEG, GIF, BMP, TIFF and WebP files.
// Failures are returned as *DecodeError.
func ReadImage(path string) (image.Image, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	return img, nil
}

type encodeFunc func(io.Writer, image.Image) error

func encoderFor(path string) (encodeFunc, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", "":
		return png.Encode, nil
	case ".bmp":
		return bmp.Encode, nil
	case ".tif", ".tiff":
		return func(w io.Writer, img image.Image) error {
			return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// SaveImage writes img to filename, picking the encoder from the extension.
// Failures are returned as *EncodeError.
func SaveImage(img image.Image, filename string) error {
	enc, err := encoderFor(filename)
	if err != nil {
		return &EncodeError{Path: filename, Err: err}
	}
	f, err := os.Create(filepath.Clean(filename))
	if err != nil {
		return &EncodeError{Path: filename, Err: err}
	}
	if err := enc(f, img); err != nil {
		_ = f.Close()
		return &EncodeError{Path: filename, Err: err}
	}
	if err := f.Close(); err != nil {
		return &EncodeError{Path: filename, Err: err}
	}
	return nil
}
