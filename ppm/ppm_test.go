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
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajroetker/go-graytone/graytone"
)

func testImage(width, height int) *graytone.Image {
	img := graytone.NewImage(width, height)
	for i := range img.Pix {
		img.Pix[i] = uint8(i * 7)
	}
	return img
}

func raw(header string, n int) []byte {
	return append([]byte(header), make([]byte, n)...)
}

func TestDecodeRoundTrip(t *testing.T) {
	img := testImage(5, 3)
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, img))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("P6\n5 3\n255\n")))

	got, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, img, got)
}

func TestDecodeHeaderVariants(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"minimal", "P6 2 2 255\n"},
		{"tabs and crlf", "P6\t2\r\n2\r\n255\r"},
		{"comments", "P6\n# created by hand\n2 # width\n# height next\n2\n255\n"},
		{"comment ends token", "P6#x\n2#y\n2\n255 "},
		{"leading whitespace", "  \nP6 2 2 255\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := Decode(bytes.NewReader(raw(tt.header, 12)))
			require.NoError(t, err)
			assert.Equal(t, 2, img.Width)
			assert.Equal(t, 2, img.Height)
			assert.Len(t, img.Pix, 12)
		})
	}
}

func TestDecodeSingleHeaderTerminator(t *testing.T) {
	// Only one whitespace byte ends the header: a second one is pixel data.
	data := append([]byte("P6 1 1 255\n\n"), 2, 3)
	img, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, []uint8{'\n', 2, 3}, img.Pix)
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"wrong magic", raw("P5 2 2 255\n", 4)},
		{"ascii ppm", raw("P3 2 2 255\n", 12)},
		{"lowercase magic", raw("p6 2 2 255\n", 12)},
		{"zero width", raw("P6 0 2 255\n", 0)},
		{"zero height", raw("P6 2 0 255\n", 0)},
		{"negative width", raw("P6 -2 2 255\n", 12)},
		{"non numeric", raw("P6 two 2 255\n", 12)},
		{"maxval 65535", raw("P6 2 2 65535\n", 24)},
		{"maxval 1", raw("P6 2 2 1\n", 12)},
		{"missing maxval", []byte("P6 2 2")},
		{"comment after maxval", raw("P6 2 2 255# c\n", 12)},
		{"truncated pixels", raw("P6 2 2 255\n", 11)},
		{"extra pixels", raw("P6 2 2 255\n", 13)},
		{"no pixels", []byte("P6 2 2 255\n")},
		{"unterminated comment", []byte("P6 # no newline")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(bytes.NewReader(tt.data))
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestDecodeTooLarge(t *testing.T) {
	for _, header := range []string{
		"P6 99999999999999999999 1 255\n",
		"P6 4294967296 1 255\n",
		"P6 100000 100000 255\n",
		"P6 67108865 1 255\n",
	} {
		_, err := Decode(strings.NewReader(header))
		assert.ErrorIs(t, err, ErrTooLarge, header)
		assert.False(t, errors.Is(err, ErrFormat), header)
	}
}

func TestDecodeCompressed(t *testing.T) {
	img := testImage(9, 4)
	var plain bytes.Buffer
	require.NoError(t, Encode(&plain, img))

	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	_, err := gw.Write(plain.Bytes())
	require.NoError(t, err)
	require.NoError(t, gw.Close())

	var zs bytes.Buffer
	zw, err := zstd.NewWriter(&zs)
	require.NoError(t, err)
	_, err = zw.Write(plain.Bytes())
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	for name, data := range map[string][]byte{"gzip": gz.Bytes(), "zstd": zs.Bytes()} {
		t.Run(name, func(t *testing.T) {
			got, err := Decode(bytes.NewReader(data))
			require.NoError(t, err)
			assert.Equal(t, img, got)
		})
	}
}

func TestEncodeGray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeGray(&buf, []uint8{1, 2, 3, 4, 5, 6}, 3, 2))
	assert.Equal(t, "P5\n3 2\n255\n\x01\x02\x03\x04\x05\x06", buf.String())

	assert.Error(t, EncodeGray(io.Discard, []uint8{1, 2}, 3, 2))
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadFile(filepath.Join(dir, "missing.ppm"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.False(t, errors.Is(err, ErrFormat))

	bad := filepath.Join(dir, "bad.ppm")
	require.NoError(t, os.WriteFile(bad, []byte("P5 1 1 255\n\x00"), 0o644))
	_, err = ReadFile(bad)
	assert.ErrorIs(t, err, ErrFormat)

	img := testImage(4, 4)
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, img))
	good := filepath.Join(dir, "good.ppm")
	require.NoError(t, os.WriteFile(good, buf.Bytes(), 0o644))
	got, err := ReadFile(good)
	require.NoError(t, err)
	assert.Equal(t, img, got)
}

func TestWriteGrayFile(t *testing.T) {
	dir := t.TempDir()
	pix := []uint8{10, 20, 30, 40}
	want := "P5\n2 2\n255\n\x0a\x14\x1e\x28"

	open := map[string]func(io.Reader) (io.Reader, error){
		"out.pgm": func(r io.Reader) (io.Reader, error) { return r, nil },
		"out.pgm.gz": func(r io.Reader) (io.Reader, error) {
			return gzip.NewReader(r)
		},
		"out.pgm.zst": func(r io.Reader) (io.Reader, error) {
			return zstd.NewReader(r)
		},
	}
	for name, wrap := range open {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, WriteGrayFile(path, pix, 2, 2))

			f, err := os.Open(path)
			require.NoError(t, err)
			defer f.Close()
			r, err := wrap(f)
			require.NoError(t, err)
			data, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, want, string(data))
		})
	}
}

func TestWriteGrayFileBadDir(t *testing.T) {
	err := WriteGrayFile(filepath.Join(t.TempDir(), "no", "such", "dir.pgm"), []uint8{0}, 1, 1)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
