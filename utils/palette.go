package utils

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"slices"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"github.com/setanarut/alphableed"
)

var ErrEmptyPalette = errors.New("empty palette")

type PaletteMethod int

const (
	PaletteMethodDominantColor PaletteMethod = iota
	PaletteMethodKMeans
)

func (m PaletteMethod) String() string {
	switch m {
	case PaletteMethodKMeans:
		return "kmeans"
	default:
		return "dominantcolor"
	}
}

// ParsePaletteMethod maps a method name as printed by String back to its value.
func ParsePaletteMethod(s string) (PaletteMethod, error) {
	switch s {
	case "dominantcolor", "":
		return PaletteMethodDominantColor, nil
	case "kmeans":
		return PaletteMethodKMeans, nil
	}
	return 0, fmt.Errorf("unknown palette method %q", s)
}

// SortPaletteByBrightness orders colors from darkest to brightest by
// relative luminance.
func SortPaletteByBrightness(palette []colorful.Color) {
	slices.SortFunc(palette, func(a, b colorful.Color) int {
		return cmpFloat(luminance(a), luminance(b))
	})
}

func luminance(c colorful.Color) float64 {
	r, g, b := c.LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

type weightedColor struct {
	Col    colorful.Color
	Weight float64
}

// ExtractPalette returns up to k representative colors of the opaque pixels
// in px, darkest first. Transparent pixels are ignored.
func ExtractPalette(px []alphableed.Pixel, k int, method PaletteMethod) []colorful.Color {
	opaque := make([]alphableed.Pixel, 0, len(px))
	for _, p := range px {
		if !p.IsTransparent() {
			opaque = append(opaque, p)
		}
	}
	if k <= 0 || len(opaque) == 0 {
		return nil
	}
	var out []colorful.Color
	switch method {
	case PaletteMethodKMeans:
		out = extractKMeansPalette(opaque, k)
		if len(out) == 0 {
			alphableed.Logger().Warn("palette: kmeans returned empty palette, falling back to dominantcolor")
			out = extractDominantPalette(opaque, k)
		}
	default:
		out = extractDominantPalette(opaque, k)
	}
	SortPaletteByBrightness(out)
	return out
}

// extractDominantPalette packs the pixels into a square tile so that
// dominantcolor sees only the selected pixels. The last row is padded by
// repeating pixels from the start.
func extractDominantPalette(px []alphableed.Pixel, k int) []colorful.Color {
	side := int(math.Ceil(math.Sqrt(float64(len(px)))))
	tile := image.NewNRGBA(image.Rect(0, 0, side, side))
	for i := range side * side {
		tile.SetNRGBA(i%side, i/side, px[i%len(px)].NRGBA())
	}
	candidates := dominantcolor.FindWeight(tile, max(24, k*8))
	weighted := make([]weightedColor, 0, len(candidates))
	for _, c := range candidates {
		col, _ := colorful.MakeColor(c.RGBA)
		weighted = append(weighted, weightedColor{Col: col.Clamped(), Weight: c.Weight})
	}
	return selectDiverseWeightedColors(weighted, k)
}

func extractKMeansPalette(px []alphableed.Pixel, k int) []colorful.Color {
	// One cluster is the mean; kmeans never recenters a single cluster.
	if k == 1 {
		return []colorful.Color{meanColor(px)}
	}
	workK := max(k*4, k+2)
	// Few distinct colors are their own exact clusters.
	if hist := histogram(px); len(hist) <= workK {
		return selectDiverseWeightedColors(hist, k)
	}

	// Subsample to keep kmeans tractable on large boundaries.
	const maxSamples = 12000
	step := 1
	if len(px) > maxSamples {
		step = int(math.Ceil(float64(len(px)) / maxSamples))
	}
	dataset := make(clusters.Observations, 0, min(len(px), maxSamples))
	for i := 0; i < len(px); i += step {
		dataset = append(dataset, clusters.Coordinates{
			float64(px[i].R) / 255.0,
			float64(px[i].G) / 255.0,
			float64(px[i].B) / 255.0,
		})
	}
	km := kmeans.New()
	cc, err := km.Partition(dataset, min(workK, len(dataset)))
	if err != nil || len(cc) == 0 {
		return nil
	}
	weighted := make([]weightedColor, 0, len(cc))
	for _, c := range cc {
		if len(c.Observations) == 0 {
			continue
		}
		// Member mean rather than c.Center, which may be a stale random seed.
		var sum [3]float64
		for _, o := range c.Observations {
			co := o.Coordinates()
			sum[0] += co[0]
			sum[1] += co[1]
			sum[2] += co[2]
		}
		n := float64(len(c.Observations))
		weighted = append(weighted, weightedColor{
			Col:    colorful.Color{R: sum[0] / n, G: sum[1] / n, B: sum[2] / n}.Clamped(),
			Weight: n,
		})
	}
	return selectDiverseWeightedColors(weighted, k)
}

func meanColor(px []alphableed.Pixel) colorful.Color {
	var r, g, b float64
	for _, p := range px {
		r += float64(p.R)
		g += float64(p.G)
		b += float64(p.B)
	}
	n := float64(len(px)) * 255
	return colorful.Color{R: r / n, G: g / n, B: b / n}
}

// histogram counts exact RGB values, heaviest first and ties broken by value
// so selection is deterministic.
func histogram(px []alphableed.Pixel) []weightedColor {
	counts := make(map[[3]uint8]int)
	for _, p := range px {
		counts[[3]uint8{p.R, p.G, p.B}]++
	}
	keys := make([][3]uint8, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, func(a, b [3]uint8) int {
		if d := counts[b] - counts[a]; d != 0 {
			return d
		}
		return slices.Compare(a[:], b[:])
	})
	out := make([]weightedColor, len(keys))
	for i, key := range keys {
		out[i] = weightedColor{
			Col:    colorful.Color{R: float64(key[0]) / 255, G: float64(key[1]) / 255, B: float64(key[2]) / 255},
			Weight: float64(counts[key]),
		}
	}
	return out
}

// selectDiverseWeightedColors picks k candidates, starting from the heaviest
// and then repeatedly taking the one farthest in Lab from those already
// chosen, scaled by its weight.
func selectDiverseWeightedColors(cands []weightedColor, k int) []colorful.Color {
	if k <= 0 || len(cands) == 0 {
		return nil
	}
	k = min(k, len(cands))
	lab := make([][3]float64, len(cands))
	weights := make([]float64, len(cands))
	maxW := 0.0
	for i, c := range cands {
		l, a, b := c.Col.Clamped().Lab()
		lab[i] = [3]float64{l, a, b}
		weights[i] = max(c.Weight, 1e-6)
		maxW = max(maxW, weights[i])
	}

	selected := make([]bool, len(cands))
	picked := make([]int, 0, k)
	seed := 0
	for i := 1; i < len(cands); i++ {
		if weights[i] > weights[seed] {
			seed = i
		}
	}
	picked = append(picked, seed)
	selected[seed] = true

	for len(picked) < k {
		best, bestScore := -1, -1.0
		for i := range cands {
			if selected[i] {
				continue
			}
			minD2 := math.MaxFloat64
			for _, s := range picked {
				d0 := lab[i][0] - lab[s][0]
				d1 := lab[i][1] - lab[s][1]
				d2 := lab[i][2] - lab[s][2]
				minD2 = min(minD2, d0*d0+d1*d1+d2*d2)
			}
			score := math.Sqrt(minD2) * (0.55 + 0.45*math.Sqrt(weights[i]/maxW))
			if score > bestScore {
				best, bestScore = i, score
			}
		}
		if best < 0 {
			break
		}
		selected[best] = true
		picked = append(picked, best)
	}

	out := make([]colorful.Color, len(picked))
	for i, idx := range picked {
		out[i] = cands[idx].Col.Clamped()
	}
	return out
}

// PaletteImage renders palette as a row of tileSize x tileSize swatches.
func PaletteImage(palette []colorful.Color, tileSize int) (*image.RGBA, error) {
	if len(palette) == 0 {
		return nil, ErrEmptyPalette
	}
	if tileSize <= 0 {
		tileSize = 64
	}
	img := image.NewRGBA(image.Rect(0, 0, tileSize*len(palette), tileSize))
	for i, c := range palette {
		r, g, b := c.Clamped().RGB255()
		swatch := color.RGBA{R: r, G: g, B: b, A: 255}
		for y := range tileSize {
			for x := i * tileSize; x < (i+1)*tileSize; x++ {
				img.SetRGBA(x, y, swatch)
			}
		}
	}
	return img, nil
}

// SavePalette writes the swatch strip of palette to filename.
func SavePalette(palette []colorful.Color, tileSize int, filename string) error {
	img, err := PaletteImage(palette, tileSize)
	if err != nil {
		return err
	}
	return SaveImage(img, filename)
}
