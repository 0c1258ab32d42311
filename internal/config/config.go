// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config provides sprite sheet configuration loading and validation.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/kortschak/spritesheet/internal/sheet"
	"github.com/kortschak/spritesheet/internal/xdg"
)

// Name is the path of the configuration file relative to the
// XDG config directories.
const Name = "spritesheet/config.toml"

// Settings is a complete configuration.
type Settings struct {
	CellWidth  int    `json:"cell_width"`
	CellHeight int    `json:"cell_height"`
	Rows       int    `json:"rows"`
	Cols       int    `json:"cols"`
	Resample   string `json:"resample"`
	Label      bool   `json:"label"`
	LogLevel   string `json:"log_level"`
}

// Defaults returns the default configuration.
func Defaults() Settings {
	grid := sheet.DefaultConfig()
	return Settings{
		CellWidth:  grid.CellWidth,
		CellHeight: grid.CellHeight,
		Rows:       grid.Rows,
		Cols:       grid.Cols,
		Resample:   sheet.DefaultResampler,
		LogLevel:   "info",
	}
}

// Grid returns the grid configuration held by s.
func (s Settings) Grid() sheet.Config {
	return sheet.Config{
		CellWidth:  s.CellWidth,
		CellHeight: s.CellHeight,
		Rows:       s.Rows,
		Cols:       s.Cols,
	}
}

// Level returns the logging level held by s.
func (s Settings) Level() (slog.Level, error) {
	var l slog.Level
	err := l.UnmarshalText([]byte(s.LogLevel))
	return l, err
}

// Validate checks s against Schema and checks that the grid it describes
// can be allocated, returning the paths of any invalid fields. An oversized
// grid is reported with the path "grid".
func (s Settings) Validate() (paths [][]string, err error) {
	paths, err = Validate(Schema, s)
	if err != nil {
		return paths, err
	}
	err = s.Grid().Validate()
	if err != nil {
		return [][]string{{"grid"}}, err
	}
	return nil, nil
}

// Apply sets the fields of s that are specified in f.
func (s *Settings) Apply(f *File) {
	if f == nil {
		return
	}
	set(&s.CellWidth, f.CellWidth)
	set(&s.CellHeight, f.CellHeight)
	set(&s.Rows, f.Rows)
	set(&s.Cols, f.Cols)
	set(&s.Resample, f.Resample)
	set(&s.Label, f.Label)
	set(&s.LogLevel, f.LogLevel)
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// File is a configuration file. Fields that are nil are not specified
// by the file.
type File struct {
	CellWidth  *int    `toml:"cell_width"`
	CellHeight *int    `toml:"cell_height"`
	Rows       *int    `toml:"rows"`
	Cols       *int    `toml:"cols"`
	Resample   *string `toml:"resample"`
	Label      *bool   `toml:"label"`
	LogLevel   *string `toml:"log_level"`
}

// Load reads the TOML configuration file at path. Keys that are not
// part of the configuration are reported as an error.
func Load(path string) (*File, error) {
	var f File
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, " "))
	}
	return &f, nil
}

// ErrNotFound is returned by Find when no configuration file exists.
var ErrNotFound = errors.New("no config file")

// Find returns the path to the user's configuration file.
func Find() (string, error) {
	path, err := xdg.Config(Name, false)
	if err != nil {
		return "", ErrNotFound
	}
	return path, nil
}
