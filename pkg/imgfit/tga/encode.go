// ABOUTME: TGA encoder writing uncompressed 32-bit top-left images with a 2.0 footer
// ABOUTME: Used to export fitted canvases and to build legacy-format fixtures

package tga

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"io"
)

// Signature is the TGA 2.0 footer signature.
const Signature = "TRUEVISION-XFILE"

// Footer returns the 26-byte TGA 2.0 footer with no extension or developer area.
func Footer() []byte {
	f := make([]byte, 0, 26)
	f = append(f, 0, 0, 0, 0, 0, 0, 0, 0)
	f = append(f, Signature...)
	return append(f, '.', 0)
}

// Encode writes m as an uncompressed 32-bit true-color TGA with alpha.
func Encode(w io.Writer, m image.Image) error {
	b := m.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 || b.Dx() > 0xffff || b.Dy() > 0xffff {
		return fmt.Errorf("tga: cannot encode %dx%d image", b.Dx(), b.Dy())
	}

	bw := bufio.NewWriter(w)
	var h [headerSize]byte
	h[2] = typeTrueColor
	binary.LittleEndian.PutUint16(h[12:14], uint16(b.Dx()))
	binary.LittleEndian.PutUint16(h[14:16], uint16(b.Dy()))
	h[16] = 32
	h[17] = descTopBottom | 8
	if _, err := bw.Write(h[:]); err != nil {
		return err
	}

	px := make([]byte, 4)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(m.At(x, y)).(color.NRGBA)
			px[0], px[1], px[2], px[3] = c.B, c.G, c.R, c.A
			if _, err := bw.Write(px); err != nil {
				return err
			}
		}
	}
	if _, err := bw.Write(Footer()); err != nil {
		return err
	}
	return bw.Flush()
}
