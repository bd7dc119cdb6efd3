// ABOUTME: Truevision TGA decoder for color-mapped, true-color, and grayscale images
// ABOUTME: Handles raw and RLE packets, 8/15/16/24/32 bit pixels, and both origins

package tga

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"golang.org/x/text/encoding/charmap"
)

// FormatError reports that the input is not a valid TGA image.
type FormatError string

func (e FormatError) Error() string { return "tga: invalid format: " + string(e) }

var (
	// ErrUnsupported is returned for image types or depths this codec does not handle.
	ErrUnsupported = errors.New("tga: unsupported image")
	// ErrTruncated is returned when the stream ends inside the header or pixel data.
	ErrTruncated = errors.New("tga: truncated data")
)

const headerSize = 18

// Image types.
const (
	typeNone         = 0
	typeColorMapped  = 1
	typeTrueColor    = 2
	typeGray         = 3
	typeRLEColorMap  = 9
	typeRLETrueColor = 10
	typeRLEGray      = 11
)

// Descriptor bits.
const (
	descAlphaMask = 0x0f
	descRightLeft = 0x10
	descTopBottom = 0x20
)

type header struct {
	idLength     uint8
	colorMapType uint8
	imageType    uint8
	cmFirst      uint16
	cmLength     uint16
	cmDepth      uint8
	width        uint16
	height       uint16
	depth        uint8
	descriptor   uint8
}

func (h header) rle() bool { return h.imageType >= typeRLEColorMap }

func (h header) base() uint8 {
	if h.rle() {
		return h.imageType - 8
	}
	return h.imageType
}

func (h header) alphaBits() int { return int(h.descriptor & descAlphaMask) }

func readHeader(r io.Reader) (header, error) {
	var b [headerSize]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return header{}, truncated(err)
	}
	h := header{
		idLength:     b[0],
		colorMapType: b[1],
		imageType:    b[2],
		cmFirst:      binary.LittleEndian.Uint16(b[3:5]),
		cmLength:     binary.LittleEndian.Uint16(b[5:7]),
		cmDepth:      b[7],
		width:        binary.LittleEndian.Uint16(b[12:14]),
		height:       binary.LittleEndian.Uint16(b[14:16]),
		depth:        b[16],
		descriptor:   b[17],
	}
	return h, h.validate()
}

func (h header) validate() error {
	switch h.imageType {
	case typeColorMapped, typeTrueColor, typeGray, typeRLEColorMap, typeRLETrueColor, typeRLEGray:
	case typeNone:
		return fmt.Errorf("%w: no image data", ErrUnsupported)
	default:
		return FormatError(fmt.Sprintf("image type %d", h.imageType))
	}
	if h.colorMapType > 1 {
		return FormatError(fmt.Sprintf("color map type %d", h.colorMapType))
	}
	if h.width == 0 || h.height == 0 {
		return FormatError("zero dimension")
	}

	switch h.base() {
	case typeColorMapped:
		if h.colorMapType != 1 {
			return FormatError("color-mapped image without color map")
		}
		if h.depth != 8 {
			return fmt.Errorf("%w: %d bit color-mapped pixels", ErrUnsupported, h.depth)
		}
		switch h.cmDepth {
		case 15, 16, 24, 32:
		default:
			return fmt.Errorf("%w: %d bit color map entries", ErrUnsupported, h.cmDepth)
		}
	case typeTrueColor:
		switch h.depth {
		case 15, 16, 24, 32:
		default:
			return fmt.Errorf("%w: %d bit true-color pixels", ErrUnsupported, h.depth)
		}
	case typeGray:
		if h.depth != 8 && h.depth != 16 {
			return fmt.Errorf("%w: %d bit grayscale pixels", ErrUnsupported, h.depth)
		}
	}
	return nil
}

func (h header) colorModel() color.Model {
	if h.base() == typeGray && h.depth == 8 {
		return color.GrayModel
	}
	return color.NRGBAModel
}

// DecodeConfig returns the dimensions and color model without decoding pixels.
func DecodeConfig(r io.Reader) (image.Config, error) {
	h, err := readHeader(r)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: h.colorModel(),
		Width:      int(h.width),
		Height:     int(h.height),
	}, nil
}

// ImageID returns the free-form image ID field that follows the header,
// decoded from ISO 8859-1 with trailing NULs removed.
func ImageID(r io.Reader) (string, error) {
	h, err := readHeader(r)
	if err != nil {
		return "", err
	}
	raw := make([]byte, h.idLength)
	if _, err := io.ReadFull(r, raw); err != nil {
		return "", truncated(err)
	}
	text, err := charmap.ISO8859_1.NewDecoder().Bytes(bytes.TrimRight(raw, "\x00"))
	if err != nil {
		return "", FormatError("image ID: " + err.Error())
	}
	return string(text), nil
}

// DefaultMaxPixels bounds the canvas a zero Decoder will allocate.
const DefaultMaxPixels = 1 << 26

// Decoder decodes TGA images within a pixel budget. The zero value uses
// DefaultMaxPixels.
type Decoder struct {
	MaxPixels int
}

// Decode is Decoder{}.Decode.
func Decode(r io.Reader) (image.Image, error) {
	return Decoder{}.Decode(r)
}

// Decode reads a TGA image. Grayscale 8-bit images decode to *image.Gray,
// everything else to *image.NRGBA. The footer, if any, is not consulted.
// When r is an io.Seeker, headers claiming more pixel data than the stream
// holds fail with ErrTruncated before the canvas is allocated.
func (dec Decoder) Decode(r io.Reader) (image.Image, error) {
	remaining := int64(-1)
	if s, ok := r.(io.Seeker); ok {
		remaining = bytesLeft(s)
	}

	br := bufio.NewReader(r)
	h, err := readHeader(br)
	if err != nil {
		return nil, err
	}

	limit := dec.MaxPixels
	if limit <= 0 {
		limit = DefaultMaxPixels
	}
	pixels := int64(h.width) * int64(h.height)
	if pixels > int64(limit) {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixel limit", ErrUnsupported, h.width, h.height, limit)
	}
	if remaining >= 0 && remaining < h.minSize() {
		return nil, ErrTruncated
	}

	if _, err := br.Discard(int(h.idLength)); err != nil {
		return nil, truncated(err)
	}

	var palette []color.NRGBA
	if h.colorMapType == 1 {
		palette, err = readColorMap(br, h)
		if err != nil {
			return nil, err
		}
	}

	d := decoder{
		r:       br,
		h:       h,
		palette: palette,
		bpp:     (int(h.depth) + 7) / 8,
	}
	return d.decode()
}

// minSize is the smallest encoding the header allows: a full raw payload, or
// for RLE one maximal packet per 128 pixels.
func (h header) minSize() int64 {
	bpp := (int64(h.depth) + 7) / 8
	pixels := int64(h.width) * int64(h.height)
	data := pixels * bpp
	if h.rle() {
		data = (pixels + 127) / 128 * (1 + bpp)
	}
	cm := int64(0)
	if h.colorMapType == 1 {
		cm = int64(h.cmLength) * ((int64(h.cmDepth) + 7) / 8)
	}
	return headerSize + int64(h.idLength) + cm + data
}

// bytesLeft returns the bytes between the current position and the end of s,
// or -1 when s cannot report it. The position is left unchanged.
func bytesLeft(s io.Seeker) int64 {
	cur, err := s.Seek(0, io.SeekCurrent)
	if err != nil {
		return -1
	}
	end, err := s.Seek(0, io.SeekEnd)
	if _, serr := s.Seek(cur, io.SeekStart); serr != nil || err != nil {
		return -1
	}
	return end - cur
}

func readColorMap(r io.Reader, h header) ([]color.NRGBA, error) {
	size := (int(h.cmDepth) + 7) / 8
	raw := make([]byte, int(h.cmLength)*size)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, truncated(err)
	}
	palette := make([]color.NRGBA, h.cmLength)
	for i := range palette {
		palette[i] = trueColor(raw[i*size:(i+1)*size], int(h.cmDepth), h.cmDepth == 32)
	}
	return palette, nil
}

type decoder struct {
	r       *bufio.Reader
	h       header
	palette []color.NRGBA
	bpp     int

	// RLE packet state.
	run    int
	repeat bool
	pixel  [4]byte
}

func (d *decoder) decode() (image.Image, error) {
	w, ht := int(d.h.width), int(d.h.height)
	var gray *image.Gray
	var nrgba *image.NRGBA
	if d.h.colorModel() == color.GrayModel {
		gray = image.NewGray(image.Rect(0, 0, w, ht))
	} else {
		nrgba = image.NewNRGBA(image.Rect(0, 0, w, ht))
	}

	buf := make([]byte, d.bpp)
	for row := 0; row < ht; row++ {
		y := ht - 1 - row
		if d.h.descriptor&descTopBottom != 0 {
			y = row
		}
		for col := 0; col < w; col++ {
			x := col
			if d.h.descriptor&descRightLeft != 0 {
				x = w - 1 - col
			}
			if err := d.next(buf); err != nil {
				return nil, err
			}
			if gray != nil {
				gray.Pix[y*gray.Stride+x] = buf[0]
				continue
			}
			c, err := d.convert(buf)
			if err != nil {
				return nil, err
			}
			i := nrgba.PixOffset(x, y)
			nrgba.Pix[i+0] = c.R
			nrgba.Pix[i+1] = c.G
			nrgba.Pix[i+2] = c.B
			nrgba.Pix[i+3] = c.A
		}
	}
	if gray != nil {
		return gray, nil
	}
	return nrgba, nil
}

// next fills buf with the raw bytes of the next pixel, expanding RLE packets.
func (d *decoder) next(buf []byte) error {
	if !d.h.rle() {
		if _, err := io.ReadFull(d.r, buf); err != nil {
			return truncated(err)
		}
		return nil
	}

	if d.run == 0 {
		p, err := d.r.ReadByte()
		if err != nil {
			return truncated(err)
		}
		d.run = int(p&0x7f) + 1
		d.repeat = p&0x80 != 0
		if d.repeat {
			if _, err := io.ReadFull(d.r, d.pixel[:d.bpp]); err != nil {
				return truncated(err)
			}
		}
	}
	d.run--
	if d.repeat {
		copy(buf, d.pixel[:d.bpp])
		return nil
	}
	if _, err := io.ReadFull(d.r, buf); err != nil {
		return truncated(err)
	}
	return nil
}

func (d *decoder) convert(buf []byte) (color.NRGBA, error) {
	switch d.h.base() {
	case typeColorMapped:
		idx := int(buf[0]) - int(d.h.cmFirst)
		if idx < 0 || idx >= len(d.palette) {
			return color.NRGBA{}, FormatError(fmt.Sprintf("color index %d out of range", buf[0]))
		}
		return d.palette[idx], nil
	case typeGray:
		a := uint8(0xff)
		if d.h.alphaBits() > 0 {
			a = buf[1]
		}
		return color.NRGBA{R: buf[0], G: buf[0], B: buf[0], A: a}, nil
	default:
		return trueColor(buf, int(d.h.depth), d.h.alphaBits() > 0), nil
	}
}

// trueColor converts little-endian BGR(A) or packed 5-5-5 pixel bytes.
func trueColor(b []byte, depth int, alpha bool) color.NRGBA {
	switch depth {
	case 15, 16:
		v := binary.LittleEndian.Uint16(b)
		c := color.NRGBA{
			R: expand5(uint8(v>>10) & 0x1f),
			G: expand5(uint8(v>>5) & 0x1f),
			B: expand5(uint8(v) & 0x1f),
			A: 0xff,
		}
		if depth == 16 && alpha && v&0x8000 == 0 {
			c.A = 0
		}
		return c
	case 24:
		return color.NRGBA{R: b[2], G: b[1], B: b[0], A: 0xff}
	default:
		a := uint8(0xff)
		if alpha {
			a = b[3]
		}
		return color.NRGBA{R: b[2], G: b[1], B: b[0], A: a}
	}
}

func expand5(v uint8) uint8 { return v<<3 | v>>2 }

func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrTruncated
	}
	return err
}
