// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package output

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fxamacker/cbor/v2"

	"github.com/kortschak/spritesheet/internal/sheet"
)

// Index is a sprite sheet atlas index describing where each frame was placed.
type Index struct {
	CellWidth  int     `json:"cell_width" cbor:"cell_width"`
	CellHeight int     `json:"cell_height" cbor:"cell_height"`
	Rows       int     `json:"rows" cbor:"rows"`
	Cols       int     `json:"cols" cbor:"cols"`
	Width      int     `json:"width" cbor:"width"`
	Height     int     `json:"height" cbor:"height"`
	Discarded  int     `json:"discarded" cbor:"discarded"`
	Frames     []Entry `json:"frames" cbor:"frames"`
}

// Entry is the placement of a single frame.
type Entry struct {
	Index   int  `json:"index" cbor:"index"`
	Row     int  `json:"row" cbor:"row"`
	Col     int  `json:"col" cbor:"col"`
	X       int  `json:"x" cbor:"x"`
	Y       int  `json:"y" cbor:"y"`
	W       int  `json:"w" cbor:"w"`
	H       int  `json:"h" cbor:"h"`
	SourceW int  `json:"source_w" cbor:"source_w"`
	SourceH int  `json:"source_h" cbor:"source_h"`
	Scaled  bool `json:"scaled" cbor:"scaled"`
}

// NewIndex returns the atlas index for a packing result.
func NewIndex(cfg sheet.Config, res *sheet.Result) Index {
	b := res.Canvas.Bounds()
	idx := Index{
		CellWidth:  cfg.CellWidth,
		CellHeight: cfg.CellHeight,
		Rows:       cfg.Rows,
		Cols:       cfg.Cols,
		Width:      b.Dx(),
		Height:     b.Dy(),
		Discarded:  res.Discarded,
		Frames:     make([]Entry, len(res.Placements)),
	}
	for i, p := range res.Placements {
		idx.Frames[i] = Entry{
			Index:   p.Index,
			Row:     p.Row,
			Col:     p.Col,
			X:       p.Frame.Min.X,
			Y:       p.Frame.Min.Y,
			W:       p.Frame.Dx(),
			H:       p.Frame.Dy(),
			SourceW: p.Source.X,
			SourceH: p.Source.Y,
			Scaled:  p.Scaled,
		}
	}
	return idx
}

// Index formats.
const (
	JSON Format = "json"
	CBOR Format = "cbor"
)

// IndexFormatFor returns the index format for path based on its extension.
func IndexFormatFor(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return JSON, nil
	case ".cbor":
		return CBOR, nil
	default:
		return "", fmt.Errorf("unsupported index format: %s", ext)
	}
}

// WriteIndex writes idx to path as JSON or CBOR depending on the path's
// extension.
func WriteIndex(ctx context.Context, path string, idx Index) error {
	format, err := IndexFormatFor(path)
	if err != nil {
		return err
	}
	var b []byte
	switch format {
	case JSON:
		b, err = json.MarshalIndent(idx, "", "\t")
		b = append(b, '\n')
	case CBOR:
		b, err = cbor.Marshal(idx)
	}
	if err != nil {
		return err
	}
	return WriteFile(ctx, path, func(w io.Writer) error {
		_, err := w.Write(b)
		return err
	})
}
