// Copyright 2025 go-graytone Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ppm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/ajroetker/go-graytone/graytone"
)

// ReadFile decodes the P6 image stored at path. Errors opening or reading
// the file are returned as is; malformed content wraps ErrFormat or
// ErrTooLarge.
func ReadFile(path string) (*graytone.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Encode writes img as a P6 image.
func Encode(w io.Writer, img *graytone.Image) error {
	if len(img.Pix) != 3*img.Pixels() {
		return fmt.Errorf("ppm: %d bytes for a %dx%d RGB image", len(img.Pix), img.Width, img.Height)
	}
	return encode(w, "P6", img.Pix, img.Width, img.Height)
}

// EncodeGray writes width*height gray bytes as a P5 image.
func EncodeGray(w io.Writer, pix []uint8, width, height int) error {
	if len(pix) != width*height {
		return fmt.Errorf("ppm: %d bytes for a %dx%d gray image", len(pix), width, height)
	}
	return encode(w, "P5", pix, width, height)
}

func encode(w io.Writer, magic string, pix []uint8, width, height int) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "%s\n%d %d\n255\n", magic, width, height); err != nil {
		return err
	}
	if _, err := bw.Write(pix); err != nil {
		return err
	}
	return bw.Flush()
}

// WriteGrayFile writes a P5 image to path. A ".gz" or ".zst" extension
// selects gzip or zstd compression.
func WriteGrayFile(path string, pix []uint8, width, height int) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	w, err := compressor(f, path)
	if err != nil {
		return err
	}
	if err := EncodeGray(w, pix, width, height); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func compressor(w io.Writer, path string) (io.WriteCloser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		return gzip.NewWriter(w), nil
	case ".zst":
		return zstd.NewWriter(w)
	default:
		return nopCloser{w}, nil
	}
}
