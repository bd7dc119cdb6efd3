// ABOUTME: Tests for the TGA codec: round trip, RLE packets, origins, color maps, errors
// ABOUTME: Fixtures are built byte by byte so each header field is explicit

package tga

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"io"
	"testing"
)

func tgaHeader(imageType, depth, descriptor byte, w, h int) []byte {
	b := make([]byte, headerSize)
	b[2] = imageType
	b[12], b[13] = byte(w), byte(w>>8)
	b[14], b[15] = byte(h), byte(h>>8)
	b[16] = depth
	b[17] = descriptor
	return b
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	src.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	src.SetNRGBA(2, 1, color.NRGBA{G: 200, B: 10, A: 128})

	var buf bytes.Buffer
	if err := Encode(&buf, src); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasSuffix(buf.Bytes(), Footer()) {
		t.Error("encoded image missing TGA 2.0 footer")
	}

	got, err := Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if got.Bounds() != src.Bounds() {
		t.Fatalf("bounds = %v, want %v", got.Bounds(), src.Bounds())
	}
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			want := src.NRGBAAt(x, y)
			if c := got.(*image.NRGBA).NRGBAAt(x, y); c != want {
				t.Errorf("pixel (%d,%d) = %v, want %v", x, y, c, want)
			}
		}
	}
}

func TestDecode_RLETrueColor(t *testing.T) {
	data := tgaHeader(typeRLETrueColor, 24, descTopBottom, 3, 1)
	data = append(data, 0x81, 0, 0, 255) // repeat red twice
	data = append(data, 0x00, 255, 0, 0) // one raw blue

	img, err := Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	m := img.(*image.NRGBA)
	red := color.NRGBA{R: 255, A: 255}
	blue := color.NRGBA{B: 255, A: 255}
	for x, want := range []color.NRGBA{red, red, blue} {
		if c := m.NRGBAAt(x, 0); c != want {
			t.Errorf("pixel %d = %v, want %v", x, c, want)
		}
	}
}

func TestDecode_BottomLeftOrigin(t *testing.T) {
	data := tgaHeader(typeTrueColor, 24, 0, 1, 2)
	data = append(data, 0, 0, 255) // first stored row is the bottom one
	data = append(data, 0, 255, 0)

	img, err := Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	m := img.(*image.NRGBA)
	if c := m.NRGBAAt(0, 1); c.R != 255 {
		t.Errorf("bottom pixel = %v, want red", c)
	}
	if c := m.NRGBAAt(0, 0); c.G != 255 {
		t.Errorf("top pixel = %v, want green", c)
	}
}

func TestDecode_ColorMapped(t *testing.T) {
	data := tgaHeader(typeColorMapped, 8, descTopBottom, 2, 1)
	data[1] = 1
	data[5] = 2  // two entries
	data[7] = 24 // 24-bit entries
	data = append(data, 0, 0, 255, 255, 255, 255)
	data = append(data, 1, 0)

	img, err := Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	m := img.(*image.NRGBA)
	if c := m.NRGBAAt(0, 0); c != (color.NRGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("pixel 0 = %v, want white", c)
	}
	if c := m.NRGBAAt(1, 0); c != (color.NRGBA{R: 255, A: 255}) {
		t.Errorf("pixel 1 = %v, want red", c)
	}
}

func TestDecode_Grayscale(t *testing.T) {
	data := tgaHeader(typeGray, 8, descTopBottom, 2, 1)
	data = append(data, 10, 200)

	img, err := Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	g, ok := img.(*image.Gray)
	if !ok {
		t.Fatalf("got %T, want *image.Gray", img)
	}
	if g.GrayAt(1, 0).Y != 200 {
		t.Errorf("pixel 1 = %d, want 200", g.GrayAt(1, 0).Y)
	}
}

func TestDecode_Packed16(t *testing.T) {
	data := tgaHeader(typeTrueColor, 16, descTopBottom|1, 1, 1)
	data = append(data, 0x00, 0xfc) // attribute bit set, red = 31

	img, err := Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	c := img.(*image.NRGBA).NRGBAAt(0, 0)
	if c != (color.NRGBA{R: 255, A: 255}) {
		t.Errorf("pixel = %v, want opaque red", c)
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want func(error) bool
	}{
		{"short header", []byte{0, 0, 2}, func(err error) bool { return errors.Is(err, ErrTruncated) }},
		{"truncated pixels", append(tgaHeader(typeTrueColor, 24, 0, 2, 2), 1, 2, 3), func(err error) bool { return errors.Is(err, ErrTruncated) }},
		{"bad type", tgaHeader(7, 24, 0, 1, 1), func(err error) bool { var fe FormatError; return errors.As(err, &fe) }},
		{"no image data", tgaHeader(typeNone, 24, 0, 1, 1), func(err error) bool { return errors.Is(err, ErrUnsupported) }},
		{"bad depth", tgaHeader(typeTrueColor, 12, 0, 1, 1), func(err error) bool { return errors.Is(err, ErrUnsupported) }},
		{"zero width", tgaHeader(typeTrueColor, 24, 0, 0, 1), func(err error) bool { var fe FormatError; return errors.As(err, &fe) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(bytes.NewReader(tt.data))
			if err == nil || !tt.want(err) {
				t.Errorf("Decode error = %v", err)
			}
		})
	}
}

func TestDecodeConfig(t *testing.T) {
	cfg, err := DecodeConfig(bytes.NewReader(tgaHeader(typeTrueColor, 32, 8, 640, 480)))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 640 || cfg.Height != 480 {
		t.Errorf("got %dx%d, want 640x480", cfg.Width, cfg.Height)
	}
	if cfg.ColorModel != color.NRGBAModel {
		t.Error("expected NRGBA color model")
	}
}

func TestFooter_Layout(t *testing.T) {
	f := Footer()
	if len(f) != 26 {
		t.Fatalf("footer length = %d, want 26", len(f))
	}
	if string(f[8:24]) != Signature {
		t.Errorf("signature field = %q", f[8:24])
	}
}

func TestDecode_PixelLimit(t *testing.T) {
	huge := append(tgaHeader(typeTrueColor, 32, descTopBottom, 0xffff, 0xffff), Footer()...)
	if _, err := Decode(bytes.NewReader(huge)); !errors.Is(err, ErrUnsupported) {
		t.Errorf("65535x65535: got %v, want ErrUnsupported", err)
	}

	data := tgaHeader(typeTrueColor, 24, descTopBottom, 3, 2)
	data = append(data, make([]byte, 3*2*3)...)
	if _, err := (Decoder{MaxPixels: 4}).Decode(bytes.NewReader(data)); !errors.Is(err, ErrUnsupported) {
		t.Errorf("MaxPixels 4: got %v, want ErrUnsupported", err)
	}
	if _, err := (Decoder{MaxPixels: 6}).Decode(bytes.NewReader(data)); err != nil {
		t.Errorf("MaxPixels 6: %v", err)
	}
}

func TestDecode_ClaimedSizeExceedsStream(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"raw", append(tgaHeader(typeTrueColor, 24, 0, 4000, 4000), make([]byte, 64)...)},
		{"rle", append(tgaHeader(typeRLETrueColor, 24, 0, 4000, 4000), make([]byte, 64)...)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(bytes.NewReader(tt.data)); !errors.Is(err, ErrTruncated) {
				t.Errorf("got %v, want ErrTruncated", err)
			}
		})
	}
}

func TestDecode_NonSeekableTruncated(t *testing.T) {
	data := append(tgaHeader(typeTrueColor, 24, 0, 4, 4), 1, 2, 3)
	if _, err := Decode(io.MultiReader(bytes.NewReader(data))); !errors.Is(err, ErrTruncated) {
		t.Errorf("got %v, want ErrTruncated", err)
	}
}

func TestImageID(t *testing.T) {
	data := tgaHeader(typeTrueColor, 24, 0, 1, 1)
	id := []byte("Caf\xe9\x00\x00")
	data[0] = byte(len(id))
	data = append(data, id...)
	data = append(data, 0, 0, 0)

	got, err := ImageID(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if got != "Café" {
		t.Errorf("ImageID = %q, want %q", got, "Café")
	}

	if _, err := ImageID(bytes.NewReader(data[:headerSize+2])); !errors.Is(err, ErrTruncated) {
		t.Errorf("short ID: got %v, want ErrTruncated", err)
	}
}
