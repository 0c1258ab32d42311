// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sheet

import (
	"image"
	"image/color"
	"strconv"

	"golang.org/x/image/draw"
	"golang.org/x/image/font/basicfont"

	"github.com/kortschak/spritesheet/internal/text"
)

// label draws the frame index i in the top-left corner of cell.
func label(dst draw.Image, cell image.Rectangle, i int) {
	mask := text.Outlined[*image.NRGBA]{
		Text:         image.NewNRGBA(cell),
		Background:   image.NewNRGBA(cell),
		OutlineColor: color.Black,
	}
	text.Draw(text.Shrink{Image: mask, Margin: 1}, strconv.Itoa(i), color.White, basicfont.Face7x13, 0, 0, false)
	draw.Copy(dst, cell.Min, mask, mask.Bounds(), draw.Over, nil)
}
