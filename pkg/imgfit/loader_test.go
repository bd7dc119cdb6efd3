// ABOUTME: Tests for the loader façade across native and legacy inputs
// ABOUTME: Checks reported format, dimensions, and stream position on all paths

package imgfit

import (
	"bytes"
	"errors"
	"image"
	"testing"
)

func TestLoad_Formats(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		format string
	}{
		{"png", makePNG(t, 20, 10), "png"},
		{"jpeg", makeJPEG(t, 20, 10), "jpeg"},
		{"gif", makeGIF(t, 20, 10), "gif"},
		{"bmp", makeBMP(t, 20, 10), "bmp"},
		{"tga", makeTGA(t, 20, 10), "tga"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := bytes.NewReader(tt.data)
			img, format, err := Load(r)
			if err != nil {
				t.Fatal(err)
			}
			if format != tt.format {
				t.Errorf("format = %q, want %q", format, tt.format)
			}
			if b := img.Bounds(); b.Dx() != 20 || b.Dy() != 10 {
				t.Errorf("got %dx%d, want 20x10", b.Dx(), b.Dy())
			}
			if pos := position(t, r); pos != 0 {
				t.Errorf("position = %d, want 0", pos)
			}
		})
	}
}

func TestLoad_LegacyPixelsSurvive(t *testing.T) {
	want := gradient(9, 5)
	img, _, err := Load(bytes.NewReader(makeTGA(t, 9, 5)))
	if err != nil {
		t.Fatal(err)
	}
	for y := range 5 {
		for x := range 9 {
			r1, g1, b1, a1 := img.At(x, y).RGBA()
			r2, g2, b2, a2 := want.At(x, y).RGBA()
			if r1 != r2 || g1 != g2 || b1 != b2 || a1 != a2 {
				t.Fatalf("pixel (%d,%d) differs", x, y)
			}
		}
	}
}

func TestLoad_UndecodableRestoresPosition(t *testing.T) {
	r := bytes.NewReader(bytes.Repeat([]byte("not an image "), 10))
	_, _, err := Load(r)
	if !errors.Is(err, image.ErrFormat) {
		t.Fatalf("got %v, want image.ErrFormat", err)
	}
	if pos := position(t, r); pos != 0 {
		t.Errorf("position = %d, want 0", pos)
	}
}

func TestLoad_NilStream(t *testing.T) {
	if _, _, err := Load(nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("got %v, want ErrInvalidArgument", err)
	}
}
