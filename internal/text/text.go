// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package text provides functions for rendering [basicfont.Face] fonts to
// an image.
package text

import (
	"image"
	"image/color"
	"image/draw"
	"strings"

	"github.com/bbrks/wrap/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Size returns the size, in font rows and columns, of the bounding rectangle.
func Size(bound image.Rectangle, fnt *basicfont.Face) (rows, cols int) {
	rows = bound.Dy() / fnt.Height
	cols = bound.Dx() / (fnt.Width + 1)
	return rows, cols
}

// Lines returns text broken into lines that fit within rows and cols.
// If words is true, lines are broken at word boundaries where possible.
// Text that does not fit is truncated with an ellipsis when there is room
// for one.
func Lines(text string, rows, cols int, words bool) []string {
	if rows <= 0 || cols <= 0 {
		return nil
	}
	var lines []string
	if words {
		wrapper := wrap.NewWrapper()
		wrapper.StripTrailingNewline = true
		wrapper.CutLongWords = true
		lines = strings.Split(wrapper.Wrap(text, cols), "\n")
		for i, l := range lines {
			lines[i] = strings.TrimSpace(l)
		}
	} else {
		for t := []rune(text); len(t) != 0; {
			n := min(cols, len(t))
			lines = append(lines, string(t[:n]))
			t = t[n:]
		}
	}
	if len(lines) <= rows {
		return lines
	}
	const ellipsis = "..."
	lines = lines[:rows]
	if cols < len(ellipsis) {
		return lines
	}
	last := []rune(lines[rows-1])
	if len(last) > cols-len(ellipsis) {
		last = last[:cols-len(ellipsis)]
	}
	lines[rows-1] = string(last) + ellipsis
	return lines
}

// Draw draws the provided text to the destination in the provided color.
// Relative position of the text is specified by dx and dy which must be
// in the range [0, 1]. If words is true, text spanning lines will be broken
// at word boundaries where possible. Nothing is drawn if dst is too small
// to hold a single glyph.
func Draw(dst draw.Image, text string, col color.Color, fnt *basicfont.Face, dx, dy float64, words bool) {
	rows, cols := Size(dst.Bounds(), fnt)
	lines := Lines(text, rows, cols, words)
	if len(lines) == 0 {
		return
	}

	min := dst.Bounds().Min
	dot := func(i int) fixed.Point26_6 {
		return fixed.P(min.X, min.Y+fnt.Ascent+fnt.Height*i)
	}
	if dx != 0 || dy != 0 {
		b := newBounds(dst)
		for i, l := range lines {
			b.drawString(l, fnt, dot(i))
		}
		dst = b.offset(dst, dx, dy)
	}
	fg := &image.Uniform{col}
	for i, l := range lines {
		d := font.Drawer{Dst: dst, Src: fg, Face: fnt, Dot: dot(i)}
		d.DrawString(l)
	}
}

// Outlined is an image that renders a single pixel width outline
// around a drawing.
type Outlined[T draw.Image] struct {
	Text       T
	Background T

	OutlineColor color.Color
}

func (o Outlined[T]) Set(x, y int, c color.Color) {
	o.Text.Set(x, y, c)
	for _, d := range [...]image.Point{{X: -1}, {X: 1}, {Y: -1}, {Y: 1}, {}} {
		o.Background.Set(x+d.X, y+d.Y, o.OutlineColor)
	}
}

func (o Outlined[T]) At(x, y int) color.Color {
	// m is the maximum color value returned by image.Color.RGBA.
	const m = 1<<16 - 1

	rT, gT, bT, aT := o.Text.At(x, y).RGBA()
	rO, gO, bO, aO := o.Background.At(x, y).RGBA()
	a := m - aT
	return color.RGBA64{
		R: uint16(rO*a/m + rT),
		G: uint16(gO*a/m + gT),
		B: uint16(bO*a/m + bT),
		A: uint16(aO*a/m + aT),
	}
}

func (o Outlined[T]) Bounds() image.Rectangle {
	return o.Text.Bounds().Intersect(o.Background.Bounds())
}

func (o Outlined[T]) ColorModel() color.Model {
	return color.RGBA64Model
}

// Shrink reduces the bounds of an Image by a margin.
type Shrink struct {
	draw.Image

	// Margin is the margin size in pixels.
	Margin int
}

func (s Shrink) Bounds() image.Rectangle {
	return s.Image.Bounds().Inset(s.Margin)
}

// bounds is the extent of rendered glyphs.
type bounds image.Rectangle

func newBounds(dst draw.Image) *bounds {
	b := bounds(image.Rectangle{Min: dst.Bounds().Max, Max: dst.Bounds().Min})
	return &b
}

func (b *bounds) drawString(s string, fnt font.Face, dot fixed.Point26_6) {
	prev := rune(-1)
	for _, c := range s {
		if prev >= 0 {
			dot.X += fnt.Kern(prev, c)
		}
		dr, _, _, advance, ok := fnt.Glyph(dot, c)
		if !ok {
			continue
		}
		b.include(dr.Min)
		b.include(dr.Max)
		dot.X += advance
		prev = c
	}
}

func (b *bounds) include(p image.Point) {
	b.Min.X = min(b.Min.X, p.X)
	b.Min.Y = min(b.Min.Y, p.Y)
	b.Max.X = max(b.Max.X, p.X)
	b.Max.Y = max(b.Max.Y, p.Y)
}

func (b *bounds) offset(img draw.Image, dx, dy float64) draw.Image {
	d := img.Bounds().Max.Sub(b.Max)
	return offset{Image: img, offset: image.Point{X: int(float64(d.X) * dx), Y: int(float64(d.Y) * dy)}}
}

// offset is an image translated by a fixed offset.
type offset struct {
	draw.Image
	offset image.Point
}

func (o offset) Set(x, y int, c color.Color) {
	o.Image.Set(x+o.offset.X, y+o.offset.Y, c)
}

func (o offset) At(x, y int) color.Color {
	return o.Image.At(x+o.offset.X, y+o.offset.Y)
}
