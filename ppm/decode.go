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

// Package ppm reads binary PPM (P6) images and writes binary PGM (P5)
// images. Either side may be gzip- or zstd-compressed.
package ppm

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/ajroetker/go-graytone/graytone"
)

var (
	// ErrFormat reports a malformed or unsupported raster.
	ErrFormat = errors.New("ppm: invalid format")

	// ErrTooLarge reports dimensions whose pixel count exceeds MaxPixels.
	ErrTooLarge = errors.New("ppm: image too large")
)

// MaxPixels bounds width*height accepted by Decode.
const MaxPixels = 1 << 26

// maxToken bounds the length of a header token.
const maxToken = 32

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Decode reads a P6 image with maxval 255 from r. The header must be
// followed by exactly 3*width*height bytes and then end of input.
//
// Compressed input is detected by its magic bytes and decompressed on the
// fly.
func Decode(r io.Reader) (*graytone.Image, error) {
	br := bufio.NewReader(r)
	magic, _ := br.Peek(len(zstdMagic))
	switch {
	case bytes.HasPrefix(magic, gzipMagic):
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("%w: gzip: %v", ErrFormat, err)
		}
		defer zr.Close()
		br = bufio.NewReader(zr)
	case bytes.HasPrefix(magic, zstdMagic):
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %v", ErrFormat, err)
		}
		defer zr.Close()
		br = bufio.NewReader(zr)
	}
	d := decoder{r: br}
	return d.decode()
}

type decoder struct {
	r *bufio.Reader
}

func (d *decoder) decode() (*graytone.Image, error) {
	magic, err := d.token("magic number")
	if err != nil {
		return nil, err
	}
	if magic != "P6" {
		return nil, fmt.Errorf("%w: magic number %q, want \"P6\"", ErrFormat, magic)
	}
	width, err := d.dimension("width")
	if err != nil {
		return nil, err
	}
	height, err := d.dimension("height")
	if err != nil {
		return nil, err
	}
	maxval, err := d.token("maxval")
	if err != nil {
		return nil, err
	}
	if maxval != "255" {
		return nil, fmt.Errorf("%w: maxval %q, want 255", ErrFormat, maxval)
	}
	if c, err := d.r.ReadByte(); err != nil || !isSpace(c) {
		return nil, fmt.Errorf("%w: header not terminated by a whitespace byte", ErrFormat)
	}

	if width*height > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooLarge, width, height)
	}
	img := graytone.NewImage(int(width), int(height))
	if _, err := io.ReadFull(d.r, img.Pix); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: pixel data truncated, want %d bytes", ErrFormat, len(img.Pix))
		}
		return nil, fmt.Errorf("ppm: reading pixel data: %w", err)
	}
	if _, err := d.r.ReadByte(); err == nil {
		return nil, fmt.Errorf("%w: trailing data after %d pixel bytes", ErrFormat, len(img.Pix))
	} else if !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("ppm: reading pixel data: %w", err)
	}
	return img, nil
}

// dimension parses a positive decimal width or height.
func (d *decoder) dimension(what string) (uint64, error) {
	tok, err := d.token(what)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(tok, 10, 32)
	switch {
	case errors.Is(err, strconv.ErrRange):
		return 0, fmt.Errorf("%w: %s %s", ErrTooLarge, what, tok)
	case err != nil:
		return 0, fmt.Errorf("%w: %s %q is not a number", ErrFormat, what, tok)
	case v == 0:
		return 0, fmt.Errorf("%w: %s is zero", ErrFormat, what)
	case v > MaxPixels:
		return 0, fmt.Errorf("%w: %s %d", ErrTooLarge, what, v)
	}
	return v, nil
}

// token skips whitespace and comments and returns the next header token.
// A comment also ends a token.
func (d *decoder) token(what string) (string, error) {
	for {
		c, err := d.r.ReadByte()
		if err != nil {
			return "", d.headerErr(err, what)
		}
		if isSpace(c) {
			continue
		}
		if c == '#' {
			if err := d.skipComment(); err != nil {
				return "", d.headerErr(err, what)
			}
			continue
		}
		_ = d.r.UnreadByte()
		break
	}

	var tok []byte
	for {
		c, err := d.r.ReadByte()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", d.headerErr(err, what)
		}
		if isSpace(c) || c == '#' {
			_ = d.r.UnreadByte()
			break
		}
		if tok = append(tok, c); len(tok) > maxToken {
			return "", fmt.Errorf("%w: %s too long", ErrFormat, what)
		}
	}
	return string(tok), nil
}

func (d *decoder) skipComment() error {
	_, err := d.r.ReadSlice('\n')
	for errors.Is(err, bufio.ErrBufferFull) {
		_, err = d.r.ReadSlice('\n')
	}
	return err
}

func (d *decoder) headerErr(err error, what string) error {
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: unexpected end of header reading %s", ErrFormat, what)
	}
	return fmt.Errorf("ppm: reading %s: %w", what, err)
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
