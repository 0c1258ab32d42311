// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package output provides sprite sheet serialization.
package output

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Format is an image encoding format.
type Format string

const (
	PNG  Format = "png"
	TIFF Format = "tiff"
	BMP  Format = "bmp"
)

// FormatFor returns the image format for the destination path based on its
// extension. Paths without an extension are written as PNG.
func FormatFor(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png", "":
		return PNG, nil
	case ".tif", ".tiff":
		return TIFF, nil
	case ".bmp":
		return BMP, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", ext)
	}
}

// Encode writes img to w in the specified format. All formats retain the
// alpha channel.
func Encode(w io.Writer, img image.Image, format Format) error {
	switch format {
	case PNG:
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		return enc.Encode(w, img)
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	case BMP:
		return bmp.Encode(w, img)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// LockRetry is the delay between attempts to obtain a destination lock.
const LockRetry = 10 * time.Millisecond

// WriteImage writes img to path in the format implied by the path's
// extension. See WriteFile for details of how the file is written.
func WriteImage(ctx context.Context, path string, img image.Image) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	return WriteFile(ctx, path, func(w io.Writer) error {
		return Encode(w, img, format)
	})
}

// WriteFile writes the data written by fn to path. The data is written to a
// temporary file in the destination directory and then renamed to path while
// an advisory lock is held on path+".lock", so the file at path is always
// complete. The lock file is left in place after the write so that all
// writers lock the same inode. WriteFile waits for the lock until ctx is
// done.
func WriteFile(ctx context.Context, path string, fn func(io.Writer) error) (err error) {
	lockPath := path + ".lock"
	fl := flock.New(lockPath)
	ok, err := fl.TryLockContext(ctx, LockRetry)
	if err != nil {
		return fmt.Errorf("lock %s: %w", path, err)
	}
	if !ok {
		return fmt.Errorf("lock %s: not acquired", path)
	}
	defer func() {
		err = errors.Join(err, fl.Unlock())
	}()

	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(f.Name())
		}
	}()
	err = fn(f)
	if err != nil {
		f.Close()
		return err
	}
	err = f.Close()
	if err != nil {
		return err
	}
	err = os.Chmod(f.Name(), 0o644)
	if err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}
