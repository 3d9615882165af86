// Package alphableed extrapolates color into the transparent pixels of an
// image so that resampling does not pull dark fringes into visible edges.
//
// Transparent pixels next to opaque content receive the plain average of
// their opaque neighbors. The fill then spreads outward one ring per pass,
// each pass using the colors written by the previous one. Alpha is never
// changed.
package alphableed

import (
	"image"
	"log/slog"
	"runtime"
	"sync"
)

type Options struct {
	// Goroutines used to compute the colors of one pass.
	// 0 or 1 keeps the whole run on the calling goroutine.
	Workers int
	// Frontiers shorter than this are computed sequentially even when
	// Workers > 1. Goroutine startup dominates on short frontiers.
	MinParallel int
}

func DefaultOptions() Options {
	return Options{
		Workers:     1,
		MinParallel: 4096,
	}
}

// OptionsFromSize enables one worker per CPU for images larger than 512x512.
func OptionsFromSize(size image.Point) Options {
	opt := DefaultOptions()
	if size.X*size.Y > 512*512 {
		opt.Workers = runtime.GOMAXPROCS(0)
	}
	return opt
}

// Result describes a finished run.
type Result struct {
	// Passes is the number of non-empty frontiers processed.
	Passes int
	// Bled is the number of transparent pixels that received a color.
	Bled int
}

// Bleed fills the RGB of transparent pixels in r in place. Alpha values and
// the color of opaque pixels are left untouched. The output does not depend
// on opt.Workers.
func Bleed(r *Raster, opt Options) Result {
	b := &bleeder{
		r:     r,
		opt:   opt,
		marks: newMarks(r.W, r.H),
	}
	frontier := b.seed()
	passes := 0
	for len(frontier) > 0 {
		passes++
		Logger().Debug("alphableed: pass", slog.Int("pass", passes), slog.Int("frontier", len(frontier)))
		frontier = b.pass(frontier)
	}
	b.finalize()
	res := Result{Passes: passes, Bled: len(b.pendingClear)}
	Logger().Debug("alphableed: done",
		slog.Int("width", r.W), slog.Int("height", r.H),
		slog.Int("passes", res.Passes), slog.Int("bled", res.Bled))
	return res
}

// BleedImage converts img, bleeds it and returns the result as a new image.
func BleedImage(img image.Image, opt Options) (*image.NRGBA, Result) {
	r := FromImage(img)
	res := Bleed(r, opt)
	return r.NRGBA(), res
}

type bleeder struct {
	r            *Raster
	opt          Options
	marks        marks
	pendingClear []Position
	colors       []Pixel // per-pass write buffer, indexed like the frontier
	nbuf         []Position
}

// seed marks every opaque pixel and returns the transparent pixels that
// touch one.
func (b *bleeder) seed() []Position {
	var frontier []Position
	for y := range b.r.H {
		for x := range b.r.W {
			p := Position{X: x, Y: y}
			if !b.r.At(x, y).IsTransparent() {
				b.marks.mark(p)
				continue
			}
			if b.hasOpaqueNeighbor(p) {
				b.marks.mark(p)
				frontier = append(frontier, p)
			}
		}
	}
	return frontier
}

func (b *bleeder) hasOpaqueNeighbor(p Position) bool {
	b.nbuf = appendNeighbors(b.nbuf[:0], p, b.r.W, b.r.H)
	for _, n := range b.nbuf {
		if !b.r.At(n.X, n.Y).IsTransparent() {
			return true
		}
	}
	return false
}

// pass computes a color for every frontier position against the grid as it
// stood when the pass began, then commits all of them at once.
func (b *bleeder) pass(frontier []Position) []Position {
	if cap(b.colors) < len(frontier) {
		b.colors = make([]Pixel, len(frontier))
	}
	colors := b.colors[:len(frontier)]

	var next []Position
	if b.opt.Workers > 1 && len(frontier) >= b.opt.MinParallel {
		b.averageParallel(frontier, colors)
		for _, p := range frontier {
			next = b.discover(p, next)
		}
	} else {
		for i, p := range frontier {
			b.nbuf = appendNeighbors(b.nbuf[:0], p, b.r.W, b.r.H)
			colors[i] = average(b.r, b.nbuf)
			next = b.discover(p, next)
		}
	}

	for i, p := range frontier {
		b.r.Set(p.X, p.Y, colors[i])
	}
	b.pendingClear = append(b.pendingClear, frontier...)
	return next
}

// averageParallel splits the frontier into contiguous chunks. Workers only
// read the grid and write their own slots of colors.
func (b *bleeder) averageParallel(frontier []Position, colors []Pixel) {
	workers := min(b.opt.Workers, len(frontier))
	chunk := (len(frontier) + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < len(frontier); start += chunk {
		end := min(start+chunk, len(frontier))
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			nbuf := make([]Position, 0, 8)
			for i := start; i < end; i++ {
				nbuf = appendNeighbors(nbuf[:0], frontier[i], b.r.W, b.r.H)
				colors[i] = average(b.r, nbuf)
			}
		}(start, end)
	}
	wg.Wait()
}

// discover schedules the unmarked transparent neighbors of p.
func (b *bleeder) discover(p Position, next []Position) []Position {
	b.nbuf = appendNeighbors(b.nbuf[:0], p, b.r.W, b.r.H)
	for _, n := range b.nbuf {
		if b.r.At(n.X, n.Y).IsTransparent() && !b.marks.has(n) {
			b.marks.mark(n)
			next = append(next, n)
		}
	}
	return next
}

// average returns the truncated mean RGB of the opaque pixels among
// neighbors, with alpha set to 255 so the pixel contributes to the next pass.
func average(r *Raster, neighbors []Position) Pixel {
	var sr, sg, sb, n uint32
	for _, q := range neighbors {
		px := r.At(q.X, q.Y)
		if px.IsTransparent() {
			continue
		}
		sr += uint32(px.R)
		sg += uint32(px.G)
		sb += uint32(px.B)
		n++
	}
	if n == 0 {
		panic("alphableed: frontier pixel has no opaque neighbor")
	}
	return Pixel{R: uint8(sr / n), G: uint8(sg / n), B: uint8(sb / n), A: 255}
}

// finalize restores zero alpha on every pixel written during propagation.
func (b *bleeder) finalize() {
	for _, p := range b.pendingClear {
		i := b.r.offset(p.X, p.Y)
		b.r.Pix[i].A = 0
	}
}
