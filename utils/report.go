package utils

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/setanarut/alphableed"
	"gonum.org/v1/gonum/stat"
)

// Report summarizes how exposed a raster is to color fringing.
type Report struct {
	Width, Height int
	// Transparent pixels with at least one opaque neighbor. These are the
	// pixels a bilinear filter mixes into visible edges.
	EdgePixels int
	// Lab distance between the hidden color of each edge pixel and the mean
	// color of its opaque neighbors.
	MeanDeltaE   float64
	StdDevDeltaE float64
	// Colors of the opaque pixels that touch transparency, darkest first.
	Palette []colorful.Color
}

// Inspect measures the fringe exposure of r. k and method control the
// boundary palette; k <= 0 skips it.
func Inspect(r *alphableed.Raster, k int, method PaletteMethod) Report {
	rep := Report{Width: r.W, Height: r.H}
	var deltas []float64
	var boundary []alphableed.Pixel
	for y := range r.H {
		for x := range r.W {
			p := r.At(x, y)
			if p.IsTransparent() {
				if d, ok := edgeDelta(r, x, y, p); ok {
					deltas = append(deltas, d)
				}
			} else if touchesTransparent(r, x, y) {
				boundary = append(boundary, p)
			}
		}
	}
	rep.EdgePixels = len(deltas)
	switch {
	case len(deltas) > 1:
		rep.MeanDeltaE, rep.StdDevDeltaE = stat.MeanStdDev(deltas, nil)
	case len(deltas) == 1:
		rep.MeanDeltaE = deltas[0]
	}
	rep.Palette = ExtractPalette(boundary, k, method)
	return rep
}

func edgeDelta(r *alphableed.Raster, x, y int, p alphableed.Pixel) (float64, bool) {
	var sr, sg, sb, n float64
	for _, q := range alphableed.Neighbors(alphableed.Position{X: x, Y: y}, r.W, r.H) {
		o := r.At(q.X, q.Y)
		if o.IsTransparent() {
			continue
		}
		sr += float64(o.R)
		sg += float64(o.G)
		sb += float64(o.B)
		n++
	}
	if n == 0 {
		return 0, false
	}
	mean := colorful.Color{R: sr / n / 255, G: sg / n / 255, B: sb / n / 255}
	hidden := colorful.Color{R: float64(p.R) / 255, G: float64(p.G) / 255, B: float64(p.B) / 255}
	return hidden.DistanceLab(mean), true
}

func touchesTransparent(r *alphableed.Raster, x, y int) bool {
	for _, q := range alphableed.Neighbors(alphableed.Position{X: x, Y: y}, r.W, r.H) {
		if r.At(q.X, q.Y).IsTransparent() {
			return true
		}
	}
	return false
}

func (rep Report) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "size %dx%d, edge pixels %d, delta E %.4f (std %.4f)",
		rep.Width, rep.Height, rep.EdgePixels, rep.MeanDeltaE, rep.StdDevDeltaE)
	if len(rep.Palette) > 0 {
		hex := make([]string, len(rep.Palette))
		for i, c := range rep.Palette {
			hex[i] = c.Hex()
		}
		fmt.Fprintf(&sb, ", boundary palette %s", strings.Join(hex, " "))
	}
	return sb.String()
}
