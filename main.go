// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The spritesheet executable packs the frames of an animated image into a
// grid sprite sheet.
//
// Usage:
//
//	spritesheet [options] <src> <dst>
//
// Each frame of src is shrunk to fit a cell of the grid, preserving its
// aspect ratio, and centered within the cell. Frames are placed in raster
// order. If src has more frames than the grid can hold, the excess frames
// are discarded and a warning is printed. A src of "-" reads from stdin and
// a dst of "-" writes a PNG image to stdout.
//
// Options are read from the spritesheet/config.toml file in the user's XDG
// config directory if it exists, or from the file given by -config.
// Command line flags take precedence over the configuration file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/kortschak/spritesheet/internal/animation"
	"github.com/kortschak/spritesheet/internal/config"
	"github.com/kortschak/spritesheet/internal/output"
	"github.com/kortschak/spritesheet/internal/sheet"
	"github.com/kortschak/spritesheet/internal/slogext"
	"github.com/kortschak/spritesheet/internal/version"
)

// Exit status codes.
const (
	success       = 0
	internalError = 1 << (iota - 1)
	invocationError
)

func main() { os.Exit(Main()) }

func Main() int {
	defaults := config.Defaults()
	flag.Int("cell_width", defaults.CellWidth, "cell width in pixels")
	flag.Int("cell_height", defaults.CellHeight, "cell height in pixels")
	flag.Int("rows", defaults.Rows, "number of rows in the grid")
	flag.Int("cols", defaults.Cols, "number of columns in the grid")
	flag.String("resample", defaults.Resample, fmt.Sprintf("resampling filter (%s)", strings.Join(sheet.Resamplers(), ", ")))
	flag.Bool("label", defaults.Label, "label each cell with its frame index")
	flag.String("log", defaults.LogLevel, "logging level (debug, info, warn or error)")
	raw := flag.Bool("raw", false, "use GIF frames as stored rather than rendered")
	index := flag.String("index", "", "write an atlas index to this path (.json or .cbor)")
	cfgPath := flag.String("config", "", "configuration file (default is the user's spritesheet/config.toml)")
	lines := flag.Bool("lines", false, "display source line details in logs")
	v := flag.Bool("version", false, "print version and exit")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "usage: spritesheet [options] <src> <dst>")
		flag.PrintDefaults()
	}
	flag.Parse()
	if *v {
		err := version.Print(os.Stdout, "spritesheet")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return internalError
		}
		return success
	}
	if flag.NArg() != 2 {
		flag.Usage()
		return invocationError
	}
	src, dst := flag.Arg(0), flag.Arg(1)

	settings, err := loadSettings(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return invocationError
	}
	level, err := settings.Level()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return invocationError
	}
	resampler, err := sheet.ResamplerFor(settings.Resample)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return invocationError
	}
	if dst != "-" {
		_, err = output.FormatFor(dst)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return invocationError
		}
	}
	if *index != "" {
		_, err = output.IndexFormatFor(*index)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return invocationError
		}
	}

	log := slog.New(slogext.GoID{Handler: slogext.NewJSONHandler(os.Stderr, &slogext.HandlerOptions{
		Level:     level,
		AddSource: slogext.NewAtomicBool(*lines),
	})})
	// mlog is the logger for main.
	mlog := log.With(slog.String("component", "spritesheet.main"))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	mlog.LogAttrs(ctx, slog.LevelDebug, "configuration", slog.Any("settings", settings))

	var frames []image.Image
	decOpts := &animation.DecodeOptions{Raw: *raw, Log: log.With(slog.String("component", "spritesheet.decode"))}
	if src == "-" {
		frames, err = animation.Decode(os.Stdin, decOpts)
	} else {
		frames, err = animation.DecodeFile(src, decOpts)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return internalError
	}

	grid := settings.Grid()
	res, err := sheet.Pack(frames, grid, &sheet.Options{
		Resampler: resampler,
		Label:     settings.Label,
		Log:       log.With(slog.String("component", "spritesheet.pack")),
		Warn: func(w sheet.CapacityWarning) {
			fmt.Fprintf(os.Stderr, "warning: %v\n", w)
		},
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return internalError
	}

	if dst == "-" {
		err = output.Encode(os.Stdout, res.Canvas, output.PNG)
	} else {
		err = output.WriteImage(ctx, dst, res.Canvas)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return internalError
	}
	if *index != "" {
		err = output.WriteIndex(ctx, *index, output.NewIndex(grid, res))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return internalError
		}
	}

	mlog.LogAttrs(ctx, slog.LevelInfo, "wrote sprite sheet",
		slog.String("src", src),
		slog.String("dst", dst),
		slog.Int("placed", res.Placed),
		slog.Int("discarded", res.Discarded),
		slog.Any("bounds", slogext.Stringer{Stringer: res.Canvas.Bounds()}),
	)
	return success
}

// loadSettings returns the configuration obtained from the defaults, the
// configuration file and the command line flags in increasing order of
// precedence. If path is empty the user's configuration file is used if
// it exists.
func loadSettings(path string) (config.Settings, error) {
	settings := config.Defaults()
	if path == "" {
		var err error
		path, err = config.Find()
		if err != nil && !errors.Is(err, config.ErrNotFound) {
			return settings, err
		}
	}
	if path != "" {
		f, err := config.Load(path)
		if err != nil {
			return settings, err
		}
		settings.Apply(f)
	}

	flag.Visit(func(f *flag.Flag) {
		g, ok := f.Value.(flag.Getter)
		if !ok {
			return
		}
		switch f.Name {
		case "cell_width":
			settings.CellWidth = g.Get().(int)
		case "cell_height":
			settings.CellHeight = g.Get().(int)
		case "rows":
			settings.Rows = g.Get().(int)
		case "cols":
			settings.Cols = g.Get().(int)
		case "resample":
			settings.Resample = g.Get().(string)
		case "label":
			settings.Label = g.Get().(bool)
		case "log":
			settings.LogLevel = g.Get().(string)
		}
	})

	paths, err := settings.Validate()
	if err != nil {
		var fields []string
		for _, p := range paths {
			fields = append(fields, strings.Join(p, "."))
		}
		return settings, fmt.Errorf("invalid configuration: %s: %w", strings.Join(fields, " "), err)
	}
	return settings, nil
}
