// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sheet

import (
	"image"
	"sort"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
)

// Resampler scales images.
type Resampler interface {
	// Resample returns src scaled to w×h. The bounds of the
	// returned image need not start at the origin.
	Resample(src image.Image, w, h int) image.Image
}

// DefaultResampler is the name of the resampler used when none is specified.
const DefaultResampler = "lanczos"

var resamplers = map[string]Resampler{
	"lanczos":        lanczos{},
	"catmullrom":     interpolator{draw.CatmullRom},
	"bilinear":       interpolator{draw.BiLinear},
	"approxbilinear": interpolator{draw.ApproxBiLinear},
	"nearest":        interpolator{draw.NearestNeighbor},
}

// ResamplerFor returns the named Resampler. If name is empty, the
// DefaultResampler is returned. An unknown name results in a *ConfigError.
func ResamplerFor(name string) (Resampler, error) {
	if name == "" {
		name = DefaultResampler
	}
	r, ok := resamplers[name]
	if !ok {
		return nil, &ConfigError{Field: "resample", Value: name}
	}
	return r, nil
}

// Resamplers returns the sorted list of valid resampler names.
func Resamplers() []string {
	names := make([]string, 0, len(resamplers))
	for n := range resamplers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// lanczos is a Lanczos-3 resampler.
type lanczos struct{}

func (lanczos) Resample(src image.Image, w, h int) image.Image {
	return resize.Resize(uint(w), uint(h), src, resize.Lanczos3)
}

// interpolator is a resampler backed by a draw.Interpolator.
type interpolator struct {
	draw.Interpolator
}

func (r interpolator) Resample(src image.Image, w, h int) image.Image {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	r.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}
