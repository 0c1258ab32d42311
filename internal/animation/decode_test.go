// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package animation

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var (
	transparent = color.NRGBA{}
	red         = color.NRGBA{R: 0xff, A: 0xff}
	green       = color.NRGBA{G: 0xff, A: 0xff}
	blue        = color.NRGBA{B: 0xff, A: 0xff}
)

var pal = color.Palette{transparent, red, green, blue}

// paletted returns a frame with bounds r filled with palette index idx.
func paletted(r image.Rectangle, idx uint8) *image.Paletted {
	img := image.NewPaletted(r, pal)
	for i := range img.Pix {
		img.Pix[i] = idx
	}
	return img
}

func encodeGIF(t *testing.T, g *gif.GIF) []byte {
	t.Helper()
	if g.Delay == nil {
		g.Delay = make([]int, len(g.Image))
	}
	var buf bytes.Buffer
	err := gif.EncodeAll(&buf, g)
	if err != nil {
		t.Fatalf("unexpected error encoding gif: %v", err)
	}
	return buf.Bytes()
}

// colors returns the colors of img sampled at each of the points in at.
func colors(img image.Image, at []image.Point) []color.NRGBA {
	c := make([]color.NRGBA, len(at))
	for i, p := range at {
		c[i] = color.NRGBAModel.Convert(img.At(p.X, p.Y)).(color.NRGBA)
	}
	return c
}

func TestDecodeOrder(t *testing.T) {
	screen := image.Rect(0, 0, 8, 8)
	data := encodeGIF(t, &gif.GIF{
		Image: []*image.Paletted{
			paletted(screen, 1),
			paletted(screen, 2),
			paletted(screen, 3),
			paletted(screen, 2),
		},
	})
	frames, err := Decode(bytes.NewReader(data), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got []color.NRGBA
	for _, f := range frames {
		if f.Bounds() != screen {
			t.Errorf("unexpected frame bounds: got %v want %v", f.Bounds(), screen)
		}
		got = append(got, colors(f, []image.Point{{X: 4, Y: 4}})...)
	}
	want := []color.NRGBA{red, green, blue, green}
	if !cmp.Equal(want, got) {
		t.Errorf("unexpected frame order:\n--- want:\n+++ got:\n%s", cmp.Diff(want, got))
	}
}

func TestDecodeIndependentFrames(t *testing.T) {
	screen := image.Rect(0, 0, 4, 4)
	data := encodeGIF(t, &gif.GIF{
		Image: []*image.Paletted{paletted(screen, 1), paletted(screen, 2)},
	})
	frames, err := Decode(bytes.NewReader(data), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f0 := frames[0].(*image.NRGBA)
	f1 := frames[1].(*image.NRGBA)
	if &f0.Pix[0] == &f1.Pix[0] {
		t.Fatal("frames share pixel storage")
	}
	f1.SetNRGBA(0, 0, blue)
	if c := f0.NRGBAAt(0, 0); c != red {
		t.Errorf("modification of frame 1 altered frame 0: got %v", c)
	}
}

var disposalTests = []struct {
	name     string
	disposal []byte
	// want is the sequence of colors at the sample points
	// for each frame.
	want [][]color.NRGBA
}{
	{
		name:     "none",
		disposal: []byte{gif.DisposalNone, gif.DisposalNone, gif.DisposalNone},
		want: [][]color.NRGBA{
			{red, red, transparent},
			{red, green, transparent},
			{red, green, blue},
		},
	},
	{
		name:     "background",
		disposal: []byte{gif.DisposalNone, gif.DisposalBackground, gif.DisposalNone},
		want: [][]color.NRGBA{
			{red, red, transparent},
			{red, green, transparent},
			{red, transparent, blue},
		},
	},
	{
		name:     "previous",
		disposal: []byte{gif.DisposalNone, gif.DisposalPrevious, gif.DisposalNone},
		want: [][]color.NRGBA{
			{red, red, transparent},
			{red, green, transparent},
			{red, red, blue},
		},
	},
}

func TestDecodeCoalesce(t *testing.T) {
	// Sample points: inside only the first frame, inside the first and
	// second frames, and inside only the third frame which lies over a
	// transparent region of the first.
	at := []image.Point{{X: 1, Y: 1}, {X: 5, Y: 5}, {X: 13, Y: 13}}
	for _, test := range disposalTests {
		t.Run(test.name, func(t *testing.T) {
			first := paletted(image.Rect(0, 0, 16, 16), 1)
			for y := 10; y < 16; y++ {
				for x := 10; x < 16; x++ {
					first.SetColorIndex(x, y, 0)
				}
			}
			data := encodeGIF(t, &gif.GIF{
				Image: []*image.Paletted{
					first,
					paletted(image.Rect(4, 4, 8, 8), 2),
					paletted(image.Rect(12, 12, 14, 14), 3),
				},
				Disposal: test.disposal,
			})
			frames, err := Decode(bytes.NewReader(data), nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var got [][]color.NRGBA
			for _, f := range frames {
				if f.Bounds() != image.Rect(0, 0, 16, 16) {
					t.Errorf("unexpected coalesced frame bounds: %v", f.Bounds())
				}
				got = append(got, colors(f, at))
			}
			if !cmp.Equal(test.want, got) {
				t.Errorf("unexpected frame content:\n--- want:\n+++ got:\n%s", cmp.Diff(test.want, got))
			}
		})
	}
}

func TestDecodeRaw(t *testing.T) {
	data := encodeGIF(t, &gif.GIF{
		Image: []*image.Paletted{
			paletted(image.Rect(0, 0, 16, 16), 1),
			paletted(image.Rect(4, 4, 8, 10), 2),
			paletted(image.Rect(2, 3, 14, 5), 0),
		},
		Config: image.Config{Width: 16, Height: 16},
	})
	frames, err := Decode(bytes.NewReader(data), &DecodeOptions{Raw: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got []image.Rectangle
	for _, f := range frames {
		got = append(got, f.Bounds())
	}
	want := []image.Rectangle{
		image.Rect(0, 0, 16, 16),
		image.Rect(0, 0, 4, 6),
		image.Rect(0, 0, 12, 2),
	}
	if !cmp.Equal(want, got) {
		t.Errorf("unexpected raw frame bounds:\n--- want:\n+++ got:\n%s", cmp.Diff(want, got))
	}
	if c := colors(frames[1], []image.Point{{}})[0]; c != green {
		t.Errorf("unexpected raw frame color: got %v want %v", c, green)
	}
	if c := colors(frames[2], []image.Point{{X: 1, Y: 1}})[0]; c != transparent {
		t.Errorf("unexpected raw frame color: got %v want %v", c, transparent)
	}
}

func TestDecodeStill(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 5, 3))
	src.SetNRGBA(2, 1, blue)
	var buf bytes.Buffer
	err := png.Encode(&buf, src)
	if err != nil {
		t.Fatalf("unexpected error encoding png: %v", err)
	}
	frames, err := Decode(&buf, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(frames) != 1 {
		t.Fatalf("unexpected number of frames: %d", len(frames))
	}
	if frames[0].Bounds() != src.Bounds() {
		t.Errorf("unexpected bounds: got %v want %v", frames[0].Bounds(), src.Bounds())
	}
	got := colors(frames[0], []image.Point{{X: 2, Y: 1}, {X: 0, Y: 0}})
	want := []color.NRGBA{blue, transparent}
	if !cmp.Equal(want, got) {
		t.Errorf("unexpected colors:\n--- want:\n+++ got:\n%s", cmp.Diff(want, got))
	}
}

func TestDecodeErrors(t *testing.T) {
	truncated := encodeGIF(t, &gif.GIF{
		Image: []*image.Paletted{paletted(image.Rect(0, 0, 8, 8), 1)},
	})
	truncated = truncated[:len(truncated)/2]

	for _, test := range []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{name: "garbage", data: []byte("not an image at all"), wantErr: image.ErrFormat},
		{name: "empty", data: nil, wantErr: image.ErrFormat},
		{name: "truncated_gif", data: truncated},
	} {
		t.Run(test.name, func(t *testing.T) {
			frames, err := Decode(bytes.NewReader(test.data), nil)
			if frames != nil {
				t.Errorf("unexpected frames: %d", len(frames))
			}
			var decErr *DecodeError
			if !errors.As(err, &decErr) {
				t.Fatalf("expected *DecodeError, got %T: %v", err, err)
			}
			if test.wantErr != nil && !errors.Is(err, test.wantErr) {
				t.Errorf("unexpected error: got %v want %v", err, test.wantErr)
			}
		})
	}
}

func TestDecodeFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "anim.gif")
	data := encodeGIF(t, &gif.GIF{
		Image: []*image.Paletted{
			paletted(image.Rect(0, 0, 4, 4), 1),
			paletted(image.Rect(0, 0, 4, 4), 2),
		},
	})
	err := os.WriteFile(path, data, 0o644)
	if err != nil {
		t.Fatalf("unexpected error writing test file: %v", err)
	}
	frames, err := DecodeFile(path, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(frames) != 2 {
		t.Errorf("unexpected number of frames: %d", len(frames))
	}

	missing := filepath.Join(dir, "missing.gif")
	_, err = DecodeFile(missing, nil)
	var decErr *DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("expected *DecodeError, got %T: %v", err, err)
	}
	if decErr.Path != missing {
		t.Errorf("unexpected error path: got %q want %q", decErr.Path, missing)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected not exist error, got %v", err)
	}

	bad := filepath.Join(dir, "bad.gif")
	err = os.WriteFile(bad, []byte("GIF89a"), 0o644)
	if err != nil {
		t.Fatalf("unexpected error writing test file: %v", err)
	}
	_, err = DecodeFile(bad, nil)
	if !errors.As(err, &decErr) || decErr.Path != bad {
		t.Errorf("expected *DecodeError for %s, got %v", bad, err)
	}
	if err != nil && !strings.Contains(err.Error(), bad) {
		t.Errorf("error does not mention path: %v", err)
	}
}

func TestIsGIF(t *testing.T) {
	for _, test := range []struct {
		data string
		want bool
	}{
		{data: "GIF89a...", want: true},
		{data: "GIF87a...", want: true},
		{data: "GIF8", want: false},
		{data: "\x89PNG\r\n\x1a\n", want: false},
		{data: "", want: false},
	} {
		got := IsGIF(AsReadPeeker(strings.NewReader(test.data)))
		if got != test.want {
			t.Errorf("unexpected result for %q: got %t want %t", test.data, got, test.want)
		}
	}
}
