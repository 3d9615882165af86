package alphableed

import "image/color"

// Pixel is a non-premultiplied 8-bit RGBA value.
type Pixel struct {
	R, G, B, A uint8
}

// IsTransparent reports whether the alpha channel is zero.
func (p Pixel) IsTransparent() bool {
	return p.A == 0
}

func (p Pixel) NRGBA() color.NRGBA {
	return color.NRGBA{R: p.R, G: p.G, B: p.B, A: p.A}
}

// Position is a pixel coordinate inside a Raster.
type Position struct {
	X, Y int
}
