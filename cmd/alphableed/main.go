// Command alphableed fills the color of transparent pixels in an image so
// that resampling does not produce dark fringes around opaque content.
//
// Usage:
//
//	alphableed [flags] <input> [output]
//
// When output is omitted the input file is overwritten.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/setanarut/alphableed"
	"github.com/setanarut/alphableed/utils"
)

const (
	exitOK = iota
	exitDecode
	exitUsage
	exitEncode
	exitFailure
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("alphableed", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		workers = fs.Int("workers", 0, "goroutines per pass (0 picks from image size)")
		report  = fs.Bool("report", false, "print fringe report for input and output")
		method  = fs.String("palette", "dominantcolor", "boundary palette method: dominantcolor or kmeans")
		colors  = fs.Int("colors", 5, "boundary palette size in the report")
		verbose = fs.Bool("v", false, "debug logging")
	)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: alphableed [flags] <input> [output]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if fs.NArg() < 1 || fs.NArg() > 2 {
		fs.Usage()
		return exitUsage
	}
	paletteMethod, err := utils.ParsePaletteMethod(*method)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	alphableed.SetLogger(logger)
	defer alphableed.SetLogger(nil)

	input := fs.Arg(0)
	output := input
	if fs.NArg() == 2 {
		output = fs.Arg(1)
	}

	img, err := utils.ReadImage(input)
	if err != nil {
		logger.Error("cannot read input", "err", err)
		return exitCode(err)
	}
	r := alphableed.FromImage(img)
	if *report {
		fmt.Fprintf(stdout, "input:  %v\n", utils.Inspect(r, *colors, paletteMethod))
	}

	opt := alphableed.OptionsFromSize(img.Bounds().Size())
	if *workers > 0 {
		opt.Workers = *workers
	}
	res := alphableed.Bleed(r, opt)
	logger.Debug("bled", "input", input, "passes", res.Passes, "pixels", res.Bled)
	if *report {
		fmt.Fprintf(stdout, "output: %v\n", utils.Inspect(r, *colors, paletteMethod))
	}

	if err := utils.SaveImage(r.NRGBA(), output); err != nil {
		logger.Error("cannot write output", "err", err)
		return exitCode(err)
	}
	return exitOK
}

func exitCode(err error) int {
	var decErr *utils.DecodeError
	var encErr *utils.EncodeError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &decErr):
		return exitDecode
	case errors.As(err, &encErr):
		return exitEncode
	}
	return exitFailure
}
