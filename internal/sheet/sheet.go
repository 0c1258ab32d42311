// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sheet packs a sequence of frames into a grid sprite sheet.
//
// Frames are placed in raster order, one per cell, shrunk to fit the cell
// while preserving aspect ratio and centered within it. Frames are never
// enlarged. Frames beyond the capacity of the grid are discarded and the
// truncation is reported to the caller.
package sheet

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"

	"golang.org/x/image/draw"

	"github.com/kortschak/spritesheet/internal/slogext"
)

// ErrEmptyInput is returned by Pack when there are no frames to pack.
var ErrEmptyInput = errors.New("no frames to pack")

// Options are optional parameters for Pack.
type Options struct {
	// Resampler is used to shrink frames that do not fit
	// their cell. If nil, the DefaultResampler is used.
	Resampler Resampler

	// Warn is called once before compositing if the
	// number of frames exceeds the grid capacity.
	Warn func(CapacityWarning)

	// Label indicates that the frame index should be
	// drawn in the top-left corner of each used cell.
	Label bool

	// Log is used to log packing progress. If nil,
	// no logging is done.
	Log *slog.Logger
}

// Result is the result of a Pack operation.
type Result struct {
	// Canvas is the composite sprite sheet.
	Canvas *image.NRGBA

	// Placed and Discarded are the number of frames
	// placed on the canvas and the number not placed
	// due to the grid's capacity.
	Placed    int
	Discarded int

	// Placements holds the geometry of each placed
	// frame, in frame order.
	Placements []Placement
}

// Placement describes where a frame was placed on the canvas.
type Placement struct {
	// Index is the index of the frame in the source sequence.
	Index int

	// Row and Col are the grid coordinates of the cell.
	Row int
	Col int

	// Cell is the cell rectangle on the canvas.
	Cell image.Rectangle

	// Frame is the rectangle covered by the placed
	// frame. It is centered within Cell.
	Frame image.Rectangle

	// Source is the native size of the frame.
	Source image.Point

	// Scaled indicates whether the frame was resampled.
	Scaled bool
}

// CapacityWarning is signaled when a frame sequence does not fit a grid.
type CapacityWarning struct {
	Frames   int
	Capacity int
}

// Discarded returns the number of frames that will not be placed.
func (w CapacityWarning) Discarded() int {
	return w.Frames - w.Capacity
}

func (w CapacityWarning) String() string {
	return fmt.Sprintf("source has %d frames, only the first %d will be placed", w.Frames, w.Capacity)
}

// Pack composites frames onto a transparent canvas according to the grid
// configuration cfg. The configuration is validated before any allocation;
// an invalid configuration results in a *ConfigError and an empty frame
// sequence results in ErrEmptyInput. Frames beyond the capacity of the grid
// are not placed, and are reported by the Discarded field of the result and
// via opts.Warn if it is not nil; this is not an error.
func Pack(frames []image.Image, cfg Config, opts *Options) (*Result, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		return nil, ErrEmptyInput
	}
	if opts == nil {
		opts = &Options{}
	}
	resampler := opts.Resampler
	if resampler == nil {
		resampler, err = ResamplerFor(DefaultResampler)
		if err != nil {
			return nil, err
		}
	}
	ctx := context.Background()

	res := &Result{Placed: len(frames)}
	if capacity := cfg.Capacity(); len(frames) > capacity {
		res.Placed = capacity
		res.Discarded = len(frames) - capacity
		w := CapacityWarning{Frames: len(frames), Capacity: capacity}
		if opts.Log != nil {
			opts.Log.LogAttrs(ctx, slog.LevelWarn, "capacity exceeded", slog.Any("warning", slogext.Stringer{Stringer: w}))
		}
		if opts.Warn != nil {
			opts.Warn(w)
		}
	}

	res.Canvas = image.NewNRGBA(cfg.Bounds())
	res.Placements = make([]Placement, 0, res.Placed)
	cell := image.Point{X: cfg.CellWidth, Y: cfg.CellHeight}
	for i, frame := range frames[:res.Placed] {
		src := frame.Bounds()
		row, col, r := cfg.Cell(i)
		size, scaled := Fit(src.Size(), cell)
		p := Placement{
			Index:  i,
			Row:    row,
			Col:    col,
			Cell:   r,
			Frame:  image.Rectangle{Max: size}.Add(r.Min.Add(Offset(size, cell))),
			Source: src.Size(),
			Scaled: scaled,
		}
		if scaled {
			frame = resampler.Resample(frame, size.X, size.Y)
		}
		draw.Copy(res.Canvas, p.Frame.Min, frame, frame.Bounds(), draw.Over, nil)
		if opts.Label {
			label(res.Canvas, r, i)
		}
		if opts.Log != nil {
			opts.Log.LogAttrs(ctx, slog.LevelDebug, "placed frame",
				slog.Int("index", i),
				slog.Any("cell", slogext.Stringer{Stringer: r}),
				slog.Any("frame", slogext.Stringer{Stringer: p.Frame}),
				slog.Bool("scaled", scaled),
			)
		}
		res.Placements = append(res.Placements, p)
	}
	return res, nil
}

// Fit returns the size of an image of size src shrunk to fit within cell,
// preserving its aspect ratio, and whether the size differs from src. Images
// that already fit are not enlarged.
func Fit(src, cell image.Point) (size image.Point, scaled bool) {
	s := math.Min(math.Min(float64(cell.X)/float64(src.X), float64(cell.Y)/float64(src.Y)), 1)
	if s == 1 {
		return src, false
	}
	size = image.Point{
		X: max(1, int(math.Round(float64(src.X)*s))),
		Y: max(1, int(math.Round(float64(src.Y)*s))),
	}
	return size, size != src
}

// Offset returns the offset of an image of the given size centered within
// cell. Odd remainders are floored.
func Offset(size, cell image.Point) image.Point {
	return image.Point{X: (cell.X - size.X) / 2, Y: (cell.Y - size.Y) / 2}
}
