// ABOUTME: Tests for header-only dimension parsing, MIME detection, and Probe
// ABOUTME: Probe must report legacy dimensions and restore the stream position

package imgfit

import (
	"bytes"
	"errors"
	"testing"
)

func TestGetDimensions(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		w, h int
	}{
		{"png", makePNG(t, 123, 45), 123, 45},
		{"jpeg", makeJPEG(t, 64, 32), 64, 32},
		{"gif", makeGIF(t, 17, 9), 17, 9},
		{"bmp", makeBMP(t, 30, 11), 30, 11},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dim, err := GetDimensions(tt.data)
			if err != nil {
				t.Fatal(err)
			}
			if dim.Width != tt.w || dim.Height != tt.h {
				t.Errorf("got %v, want %dx%d", dim, tt.w, tt.h)
			}
		})
	}
}

func TestGetDimensions_Errors(t *testing.T) {
	if _, err := GetDimensions([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for short data")
	}
	if _, err := GetDimensions(bytes.Repeat([]byte{0x42}, 16)); err == nil {
		t.Error("expected error for unrecognized data")
	}
}

func TestDetectMIME(t *testing.T) {
	tests := []struct {
		data []byte
		want string
	}{
		{makePNG(t, 2, 2), "image/png"},
		{makeJPEG(t, 2, 2), "image/jpeg"},
		{makeGIF(t, 2, 2), "image/gif"},
		{makeBMP(t, 2, 2), "image/bmp"},
		{[]byte("II*\x00rest"), "image/tiff"},
		{[]byte("RIFF\x00\x00\x00\x00WEBPVP8 "), "image/webp"},
		{[]byte("hello"), "application/octet-stream"},
	}
	for _, tt := range tests {
		if got := DetectMIME(tt.data); got != tt.want {
			t.Errorf("DetectMIME(%q...) = %q, want %q", tt.data[:2], got, tt.want)
		}
	}
}

func TestProbe(t *testing.T) {
	tests := []struct {
		name      string
		data      []byte
		container ContainerFormat
		mime      string
	}{
		{"png", makePNG(t, 40, 30), FormatNativelyDecodable, "image/png"},
		{"tga", makeTGA(t, 40, 30), FormatLegacyFooterTagged, "image/x-tga"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := bytes.NewReader(tt.data)
			info, err := Probe(r)
			if err != nil {
				t.Fatal(err)
			}
			if info.Container != tt.container || info.MIME != tt.mime {
				t.Errorf("got %+v", info)
			}
			if info.Width != 40 || info.Height != 30 {
				t.Errorf("got %v, want 40x30", info.Dimensions)
			}
			if pos := position(t, r); pos != 0 {
				t.Errorf("position = %d, want 0", pos)
			}
		})
	}
}

func TestProbe_CorruptLegacyHeader(t *testing.T) {
	data := make([]byte, 40)
	data[2] = 99
	copy(data[len(data)-FooterSize+8:], FooterSignature)
	if _, err := Probe(bytes.NewReader(data)); !errors.Is(err, ErrParseFailure) {
		t.Errorf("got %v, want ErrParseFailure", err)
	}
}

func TestProbe_LegacyImageID(t *testing.T) {
	id := "scan n\xb0 7"
	data := make([]byte, 18)
	data[0] = byte(len(id))
	data[2] = 2
	data[12], data[14] = 1, 1
	data[16] = 24
	data = append(data, id...)
	data = append(data, 0x10, 0x20, 0x30)
	data = append(data, make([]byte, 8)...)
	data = append(data, FooterSignature+".\x00"...)

	info, err := Probe(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if info.ID != "scan n° 7" {
		t.Errorf("ID = %q, want %q", info.ID, "scan n° 7")
	}
}
