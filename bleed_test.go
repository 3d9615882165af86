package alphableed_test

import (
	"bytes"
	"fmt"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/setanarut/alphableed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red         = alphableed.Pixel{R: 255, A: 255}
	blue        = alphableed.Pixel{B: 255, A: 255}
	transparent = alphableed.Pixel{}
)

func raster(t *testing.T, w, h int, pix ...alphableed.Pixel) *alphableed.Raster {
	t.Helper()
	r, err := alphableed.WrapRaster(w, h, pix)
	require.NoError(t, err)
	return r
}

// noisy returns a w x h raster where roughly a third of the pixels are
// opaque and every pixel carries random color, including the transparent ones.
func noisy(w, h int, seed int64) *alphableed.Raster {
	rng := rand.New(rand.NewSource(seed))
	r := alphableed.NewRaster(w, h)
	for i := range r.Pix {
		p := alphableed.Pixel{R: uint8(rng.Intn(256)), G: uint8(rng.Intn(256)), B: uint8(rng.Intn(256))}
		if rng.Intn(3) == 0 {
			p.A = uint8(1 + rng.Intn(255))
		}
		r.Pix[i] = p
	}
	return r
}

func TestBleed_Linear(t *testing.T) {
	r := raster(t, 3, 1, red, transparent, blue)
	res := alphableed.Bleed(r, alphableed.DefaultOptions())

	assert.Equal(t, alphableed.Pixel{R: 127, G: 0, B: 127, A: 0}, r.At(1, 0))
	assert.Equal(t, red, r.At(0, 0))
	assert.Equal(t, blue, r.At(2, 0))
	assert.Equal(t, alphableed.Result{Passes: 1, Bled: 1}, res)
}

func TestBleed_DiagonalWeighsLikeOrthogonal(t *testing.T) {
	// (0,0) sees (1,0) orthogonally and (1,1) diagonally.
	r := raster(t, 2, 2,
		transparent, alphableed.Pixel{R: 200, A: 255},
		transparent, alphableed.Pixel{G: 200, A: 255},
	)
	alphableed.Bleed(r, alphableed.DefaultOptions())

	assert.Equal(t, alphableed.Pixel{R: 100, G: 100, B: 0, A: 0}, r.At(0, 0))
	assert.Equal(t, alphableed.Pixel{R: 100, G: 100, B: 0, A: 0}, r.At(0, 1))
}

func TestBleed_TruncatesAverage(t *testing.T) {
	r := raster(t, 3, 1,
		alphableed.Pixel{R: 1, G: 254, B: 3, A: 255},
		transparent,
		alphableed.Pixel{R: 2, G: 255, B: 4, A: 10},
	)
	alphableed.Bleed(r, alphableed.DefaultOptions())
	assert.Equal(t, alphableed.Pixel{R: 1, G: 254, B: 3, A: 0}, r.At(1, 0))
}

func TestBleed_BandPasses(t *testing.T) {
	for n := 1; n <= 9; n++ {
		t.Run(fmt.Sprintf("Row%d", n), func(t *testing.T) {
			pix := make([]alphableed.Pixel, n+2)
			pix[0], pix[n+1] = red, blue
			r := raster(t, n+2, 1, pix...)
			res := alphableed.Bleed(r, alphableed.DefaultOptions())
			assert.Equal(t, (n+1)/2, res.Passes)
			assert.Equal(t, n, res.Bled)
		})
		t.Run(fmt.Sprintf("Band%d", n), func(t *testing.T) {
			const h = 4
			r := alphableed.NewRaster(n+2, h)
			for y := range h {
				r.Set(0, y, red)
				r.Set(n+1, y, blue)
			}
			res := alphableed.Bleed(r, alphableed.DefaultOptions())
			assert.Equal(t, (n+1)/2, res.Passes)
			assert.Equal(t, n*h, res.Bled)
		})
	}
}

func TestBleed_CenterUsesBledNeighbors(t *testing.T) {
	r := raster(t, 5, 1, red, transparent, transparent, transparent, blue)
	res := alphableed.Bleed(r, alphableed.DefaultOptions())

	require.Equal(t, 2, res.Passes)
	assert.Equal(t, alphableed.Pixel{R: 255}, r.At(1, 0))
	assert.Equal(t, alphableed.Pixel{B: 255}, r.At(3, 0))
	// Neither neighbor of the center was opaque in the input.
	assert.Equal(t, alphableed.Pixel{R: 127, B: 127}, r.At(2, 0))
}

func TestBleed_SecondRingAveragesFirstRing(t *testing.T) {
	// Opaque pixel in the corner of a 3x3: the far column and row are
	// reached only in the second pass.
	r := alphableed.NewRaster(3, 3)
	r.Set(0, 0, alphableed.Pixel{R: 90, G: 30, B: 60, A: 255})
	res := alphableed.Bleed(r, alphableed.DefaultOptions())

	assert.Equal(t, 2, res.Passes)
	assert.Equal(t, 8, res.Bled)
	for _, p := range r.Pix[1:] {
		assert.Equal(t, alphableed.Pixel{R: 90, G: 30, B: 60}, p)
	}
}

func TestBleed_Invariants(t *testing.T) {
	sizes := []struct{ w, h int }{{1, 1}, {7, 1}, {1, 9}, {16, 16}, {33, 20}}
	for i, sz := range sizes {
		t.Run(fmt.Sprintf("%dx%d", sz.w, sz.h), func(t *testing.T) {
			in := noisy(sz.w, sz.h, int64(i+1))
			out := in.Clone()
			alphableed.Bleed(out, alphableed.DefaultOptions())

			require.Equal(t, in.W, out.W)
			require.Equal(t, in.H, out.H)
			for j := range in.Pix {
				assert.Equal(t, in.Pix[j].A, out.Pix[j].A, "alpha at %d", j)
				if !in.Pix[j].IsTransparent() {
					assert.Equal(t, in.Pix[j], out.Pix[j], "opaque pixel at %d", j)
				}
			}

			again := out.Clone()
			alphableed.Bleed(again, alphableed.DefaultOptions())
			assert.Equal(t, out.Pix, again.Pix)
		})
	}
}

func TestBleed_NoOp(t *testing.T) {
	t.Run("AllOpaque", func(t *testing.T) {
		in := noisy(8, 8, 7)
		for i := range in.Pix {
			in.Pix[i].A = 255
		}
		out := in.Clone()
		res := alphableed.Bleed(out, alphableed.DefaultOptions())
		assert.Equal(t, in.Pix, out.Pix)
		assert.Zero(t, res)
	})
	t.Run("AllTransparent", func(t *testing.T) {
		in := noisy(8, 8, 8)
		for i := range in.Pix {
			in.Pix[i].A = 0
		}
		out := in.Clone()
		res := alphableed.Bleed(out, alphableed.DefaultOptions())
		assert.Equal(t, in.Pix, out.Pix)
		assert.Zero(t, res)
	})
	t.Run("Empty", func(t *testing.T) {
		res := alphableed.Bleed(alphableed.NewRaster(0, 0), alphableed.DefaultOptions())
		assert.Zero(t, res)
	})
}

func TestBleed_WorkersMatchSequential(t *testing.T) {
	in := noisy(97, 61, 42)
	// Keep only a sparse set of opaque pixels so frontiers stay long over
	// several passes.
	for i := range in.Pix {
		if i%37 != 0 {
			in.Pix[i].A = 0
		}
	}
	seq := in.Clone()
	want := alphableed.Bleed(seq, alphableed.DefaultOptions())

	for _, workers := range []int{2, 3, 8} {
		t.Run(fmt.Sprintf("Workers%d", workers), func(t *testing.T) {
			par := in.Clone()
			got := alphableed.Bleed(par, alphableed.Options{Workers: workers, MinParallel: 1})
			assert.Equal(t, want, got)
			assert.Equal(t, seq.Pix, par.Pix)
		})
	}
}

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	alphableed.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { alphableed.SetLogger(nil) })

	alphableed.Bleed(raster(t, 5, 1, red, transparent, transparent, transparent, blue), alphableed.DefaultOptions())

	out := buf.String()
	assert.Contains(t, out, "pass=1 frontier=2")
	assert.Contains(t, out, "pass=2 frontier=1")
	assert.Contains(t, out, "passes=2 bled=3")
}

func ExampleBleed() {
	r, _ := alphableed.WrapRaster(3, 1, []alphableed.Pixel{
		{R: 255, A: 255},
		{},
		{B: 255, A: 255},
	})
	res := alphableed.Bleed(r, alphableed.DefaultOptions())
	fmt.Println(r.At(1, 0), res.Passes)
	// Output: {127 0 127 0} 1
}
