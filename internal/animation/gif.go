// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package animation

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"io"

	"golang.org/x/image/draw"
)

// IsGIF returns whether the data held by r is a GIF image.
func IsGIF(r ReadPeeker) bool {
	return hasMagic("GIF8?a", r)
}

// ReadPeeker is an io.Reader that can also peek n bytes ahead.
type ReadPeeker interface {
	io.Reader
	Peek(n int) ([]byte, error)
}

// AsReadPeeker converts an io.Reader to a ReadPeeker.
func AsReadPeeker(r io.Reader) ReadPeeker {
	if r, ok := r.(ReadPeeker); ok {
		return r
	}
	return bufio.NewReader(r)
}

// hasMagic returns whether r starts with the provided magic bytes.
func hasMagic(magic string, r ReadPeeker) bool {
	b, err := r.Peek(len(magic))
	if err != nil || len(b) != len(magic) {
		return false
	}
	for i, c := range b {
		if magic[i] != c && magic[i] != '?' {
			return false
		}
	}
	return true
}

// decodeGIF returns the frames of the GIF held in r. If raw is false, each
// frame is the complete rendering of the logical screen after the frame has
// been drawn, otherwise each frame is the frame's own image data translated
// to the origin.
func decodeGIF(r io.Reader, raw bool) ([]image.Image, image.Config, error) {
	g, err := gif.DecodeAll(r)
	if err != nil {
		return nil, image.Config{}, err
	}
	if len(g.Image) == 0 {
		return nil, g.Config, ErrNoFrames
	}
	if len(g.Image) != len(g.Disposal) && g.Disposal != nil {
		return nil, g.Config, fmt.Errorf("mismatched image count and disposal count: %d != %d", len(g.Image), len(g.Disposal))
	}
	pal, ok := g.Config.ColorModel.(color.Palette)
	if idx := int(g.BackgroundIndex); ok && idx >= len(pal) {
		return nil, g.Config, fmt.Errorf("global background colour index not in palette: %d", idx)
	}

	frames := make([]image.Image, 0, len(g.Image))
	if raw {
		for _, frame := range g.Image {
			frames = append(frames, clone(frame, frame.Bounds()))
		}
		return frames, g.Config, nil
	}

	screen := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if screen.Empty() {
		for _, frame := range g.Image {
			screen = screen.Union(frame.Bounds())
		}
	}
	dst := image.NewNRGBA(screen)
	for f, frame := range g.Image {
		var disposal byte
		if g.Disposal != nil {
			disposal = g.Disposal[f]
		}
		var restore *image.NRGBA
		if disposal == gif.DisposalPrevious {
			restore = clone(dst, frame.Bounds())
		}
		draw.Copy(dst, frame.Bounds().Min, frame, frame.Bounds(), draw.Over, nil)
		frames = append(frames, clone(dst, screen))
		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(dst, frame.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			draw.Copy(dst, frame.Bounds().Min, restore, restore.Bounds(), draw.Src, nil)
		}
	}
	return frames, g.Config, nil
}

// clone returns a copy of the r region of src translated to the origin.
func clone(src image.Image, r image.Rectangle) *image.NRGBA {
	dst := image.NewNRGBA(image.Rectangle{Max: r.Size()})
	draw.Copy(dst, image.Point{}, src, r, draw.Src, nil)
	return dst
}
