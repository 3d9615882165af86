package alphableed

import (
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// ErrSizeMismatch is returned when a pixel buffer does not hold exactly W*H pixels.
var ErrSizeMismatch = errors.New("alphableed: pixel buffer does not match dimensions")

// Raster is a row-major W x H grid of pixels.
type Raster struct {
	W, H int
	Pix  []Pixel // len = W*H
}

func NewRaster(w, h int) *Raster {
	w, h = max(w, 0), max(h, 0)
	return &Raster{W: w, H: h, Pix: make([]Pixel, w*h)}
}

// WrapRaster validates pix against the dimensions and returns a Raster that
// aliases it. This is the only place the buffer length is checked; Bleed
// trusts the Raster it is given.
func WrapRaster(w, h int, pix []Pixel) (*Raster, error) {
	if w < 0 || h < 0 || len(pix) != w*h {
		return nil, fmt.Errorf("%w: %dx%d with %d pixels", ErrSizeMismatch, w, h, len(pix))
	}
	return &Raster{W: w, H: h, Pix: pix}, nil
}

func (r *Raster) offset(x, y int) int {
	return y*r.W + x
}

func (r *Raster) At(x, y int) Pixel {
	return r.Pix[r.offset(x, y)]
}

func (r *Raster) Set(x, y int, p Pixel) {
	r.Pix[r.offset(x, y)] = p
}

func (r *Raster) Clone() *Raster {
	return &Raster{W: r.W, H: r.H, Pix: append([]Pixel(nil), r.Pix...)}
}

// FromImage copies img into a new Raster. *image.NRGBA sources are read
// directly so the color hidden under zero alpha is kept; any other image is
// first drawn onto an NRGBA canvas.
func FromImage(img image.Image) *Raster {
	b := img.Bounds()
	src, ok := img.(*image.NRGBA)
	if !ok {
		src = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(src, src.Bounds(), img, b.Min, draw.Src)
		b = src.Bounds()
	}
	r := NewRaster(b.Dx(), b.Dy())
	for y := range r.H {
		off := src.PixOffset(b.Min.X, b.Min.Y+y)
		for x := range r.W {
			s := src.Pix[off+x*4 : off+x*4+4 : off+x*4+4]
			r.Pix[r.offset(x, y)] = Pixel{R: s[0], G: s[1], B: s[2], A: s[3]}
		}
	}
	return r
}

// NRGBA returns the raster as a new non-premultiplied image anchored at (0, 0).
func (r *Raster) NRGBA() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, r.W, r.H))
	for i, p := range r.Pix {
		out.Pix[i*4] = p.R
		out.Pix[i*4+1] = p.G
		out.Pix[i*4+2] = p.B
		out.Pix[i*4+3] = p.A
	}
	return out
}
