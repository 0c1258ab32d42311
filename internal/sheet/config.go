// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sheet

import (
	"fmt"
	"image"
)

// Config is a sprite sheet grid configuration.
type Config struct {
	// CellWidth and CellHeight are the pixel dimensions
	// of each cell of the grid.
	CellWidth  int `json:"cell_width" toml:"cell_width"`
	CellHeight int `json:"cell_height" toml:"cell_height"`
	// Rows and Cols are the number of cells in
	// each dimension of the grid.
	Rows int `json:"rows" toml:"rows"`
	Cols int `json:"cols" toml:"cols"`
}

// DefaultConfig returns the default grid configuration, an 8×8 grid
// of 128×128 pixel cells.
func DefaultConfig() Config {
	return Config{CellWidth: 128, CellHeight: 128, Rows: 8, Cols: 8}
}

// MaxPixels is the largest number of pixels a sprite sheet canvas may hold.
const MaxPixels = 1 << 28

// Validate returns a *ConfigError if any of the receiver's dimensions is
// not positive or the canvas would hold more than MaxPixels pixels.
func (c Config) Validate() error {
	for _, f := range []struct {
		name string
		val  int
	}{
		{name: "cell_width", val: c.CellWidth},
		{name: "cell_height", val: c.CellHeight},
		{name: "rows", val: c.Rows},
		{name: "cols", val: c.Cols},
	} {
		if f.val <= 0 {
			return &ConfigError{Field: f.name, Value: fmt.Sprint(f.val)}
		}
	}
	// Each product is checked by division so that no
	// intermediate value can overflow.
	if c.CellWidth > MaxPixels/c.Cols || c.CellHeight > MaxPixels/c.Rows {
		return c.sizeError()
	}
	if c.Rows*c.CellHeight > MaxPixels/(c.Cols*c.CellWidth) {
		return c.sizeError()
	}
	return nil
}

func (c Config) sizeError() error {
	return &ConfigError{Field: "grid", Value: fmt.Sprintf("%d×%d cells of %d×%d", c.Cols, c.Rows, c.CellWidth, c.CellHeight)}
}

// Capacity returns the number of frames the grid can hold.
func (c Config) Capacity() int {
	return c.Rows * c.Cols
}

// Bounds returns the bounds of a canvas holding the grid.
func (c Config) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.Cols*c.CellWidth, c.Rows*c.CellHeight)
}

// Cell returns the row and column of the cell holding frame i and the
// cell's rectangle on the canvas. Frames are placed in raster order.
func (c Config) Cell(i int) (row, col int, r image.Rectangle) {
	row, col = i/c.Cols, i%c.Cols
	min := image.Point{X: col * c.CellWidth, Y: row * c.CellHeight}
	return row, col, image.Rectangle{Min: min, Max: min.Add(image.Point{X: c.CellWidth, Y: c.CellHeight})}
}

// ConfigError is returned when a grid configuration is invalid.
type ConfigError struct {
	Field string
	Value string
}

func (e *ConfigError) Error() string {
	switch e.Field {
	case "resample":
		return fmt.Sprintf("invalid resampler: %q", e.Value)
	case "grid":
		return fmt.Sprintf("invalid grid: %s exceeds %d pixels", e.Value, MaxPixels)
	}
	return fmt.Sprintf("invalid %s: %s must be positive", e.Field, e.Value)
}
