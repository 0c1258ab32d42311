// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package animation

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrNoFrames is the error wrapped by a DecodeError when a source
// holds no frames.
var ErrNoFrames = errors.New("no frames")

// DecodeError is returned when a frame sequence cannot be decoded.
type DecodeError struct {
	// Path is the path of the source, if known.
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("decode: %v", e.Err)
	}
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// DecodeOptions are optional parameters for Decode and DecodeFile.
type DecodeOptions struct {
	// Raw specifies that GIF frames should be returned as
	// stored rather than rendered onto the logical screen.
	// Raw frames may have differing sizes.
	Raw bool

	// Log is used to log decoding details. If nil, no
	// logging is done.
	Log *slog.Logger
}

// Decode returns the frames of the animated image held in r in animation
// order. Each frame is an independent *image.NRGBA with bounds at the origin.
// GIF data is decoded as an animation, any other image format registered
// with the image package is decoded as a single frame. Errors are returned
// as a *DecodeError.
func Decode(r io.Reader, opts *DecodeOptions) ([]image.Image, error) {
	if opts == nil {
		opts = &DecodeOptions{}
	}
	rp := AsReadPeeker(r)
	var (
		frames []image.Image
		cfg    image.Config
		format string
		err    error
	)
	if IsGIF(rp) {
		format = "gif"
		frames, cfg, err = decodeGIF(rp, opts.Raw)
	} else {
		var img image.Image
		img, format, err = image.Decode(rp)
		if err == nil {
			b := img.Bounds()
			cfg = image.Config{ColorModel: img.ColorModel(), Width: b.Dx(), Height: b.Dy()}
			frames = []image.Image{clone(img, b)}
		}
	}
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	if len(frames) == 0 {
		return nil, &DecodeError{Err: ErrNoFrames}
	}
	if opts.Log != nil {
		opts.Log.LogAttrs(context.Background(), slog.LevelDebug, "decoded frames",
			slog.String("format", format),
			slog.Int("frames", len(frames)),
			slog.Int("width", cfg.Width),
			slog.Int("height", cfg.Height),
			slog.Bool("raw", opts.Raw),
		)
	}
	return frames, nil
}

// DecodeFile returns the frames of the animated image in the file at path.
// See [Decode] for details.
func DecodeFile(path string, opts *DecodeOptions) ([]image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	defer f.Close()
	frames, err := Decode(f, opts)
	if err != nil {
		var decErr *DecodeError
		if errors.As(err, &decErr) {
			decErr.Path = path
		}
		return nil, err
	}
	return frames, nil
}
