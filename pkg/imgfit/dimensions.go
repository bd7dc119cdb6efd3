// ABOUTME: Header-only dimension and MIME probing for PNG, JPEG, GIF, WebP, BMP, and TGA
// ABOUTME: Reads a bounded prefix; the stream position is restored afterwards

package imgfit

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"io"

	"github.com/mauromedda/imgfit/pkg/imgfit/tga"
)

// maxProbeBytes bounds how much of a stream Probe reads to find dimensions.
const maxProbeBytes = 64 << 10

// Dimensions holds the width and height of an image.
type Dimensions struct {
	Width  int
	Height int
}

func (d Dimensions) String() string { return fmt.Sprintf("%dx%d", d.Width, d.Height) }

// Info is the result of Probe.
type Info struct {
	Container ContainerFormat
	MIME      string
	Dimensions
	// ID is the image ID text of a legacy stream, empty when absent.
	ID string
}

// Probe classifies rs and reads its dimensions from the header alone.
func Probe(rs io.ReadSeeker) (info Info, err error) {
	container, err := Classify(rs)
	if err != nil {
		return Info{}, err
	}

	start, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return Info{}, fmt.Errorf("reading stream position: %w", err)
	}
	defer func() {
		if _, serr := rs.Seek(start, io.SeekStart); serr != nil && err == nil {
			err = fmt.Errorf("restoring stream position: %w", serr)
		}
	}()

	head, err := io.ReadAll(io.LimitReader(rs, maxProbeBytes))
	if err != nil {
		return Info{}, fmt.Errorf("reading header: %w", err)
	}

	info = Info{Container: container}
	if container == FormatLegacyFooterTagged {
		cfg, err := tga.DecodeConfig(bytes.NewReader(head))
		if err != nil {
			return Info{}, &ParseError{Err: err}
		}
		id, err := tga.ImageID(bytes.NewReader(head))
		if err != nil {
			return Info{}, &ParseError{Err: err}
		}
		info.MIME = "image/x-tga"
		info.Dimensions = Dimensions{Width: cfg.Width, Height: cfg.Height}
		info.ID = id
		return info, nil
	}

	info.MIME = DetectMIME(head)
	if info.Dimensions, err = GetDimensions(head); err == nil {
		return info, nil
	}

	// Formats without a fixed header layout (TIFF) need the registered decoder.
	if _, err := rs.Seek(start, io.SeekStart); err != nil {
		return Info{}, fmt.Errorf("rewinding stream: %w", err)
	}
	cfg, _, err := image.DecodeConfig(rs)
	if err != nil {
		return Info{}, fmt.Errorf("reading image config: %w", err)
	}
	info.Dimensions = Dimensions{Width: cfg.Width, Height: cfg.Height}
	return info, nil
}

// GetDimensions extracts width and height from image header bytes.
// Returns an error for unrecognized formats or truncated data.
func GetDimensions(data []byte) (Dimensions, error) {
	if len(data) < 8 {
		return Dimensions{}, fmt.Errorf("data too short (%d bytes)", len(data))
	}

	switch DetectMIME(data) {
	case "image/png":
		return parsePNGDimensions(data)
	case "image/jpeg":
		return parseJPEGDimensions(data)
	case "image/gif":
		return parseGIFDimensions(data)
	case "image/webp":
		return parseWebPDimensions(data)
	case "image/bmp":
		return parseBMPDimensions(data)
	}
	return Dimensions{}, fmt.Errorf("unrecognized image format")
}

// DetectMIME returns a MIME type based on the magic bytes of image data.
// TGA has no leading magic and is only recognized through Classify.
func DetectMIME(data []byte) string {
	switch {
	case len(data) >= 4 && data[0] == 0x89 && data[1] == 'P' && data[2] == 'N' && data[3] == 'G':
		return "image/png"
	case len(data) >= 2 && data[0] == 0xFF && data[1] == 0xD8:
		return "image/jpeg"
	case len(data) >= 3 && data[0] == 'G' && data[1] == 'I' && data[2] == 'F':
		return "image/gif"
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP":
		return "image/webp"
	case len(data) >= 2 && data[0] == 'B' && data[1] == 'M':
		return "image/bmp"
	case len(data) >= 4 && (string(data[0:4]) == "II*\x00" || string(data[0:4]) == "MM\x00*"):
		return "image/tiff"
	}
	return "application/octet-stream"
}

// parsePNGDimensions reads width/height from the IHDR chunk.
func parsePNGDimensions(data []byte) (Dimensions, error) {
	if len(data) < 24 {
		return Dimensions{}, fmt.Errorf("PNG data too short for IHDR")
	}
	w := int(binary.BigEndian.Uint32(data[16:20]))
	h := int(binary.BigEndian.Uint32(data[20:24]))
	return Dimensions{Width: w, Height: h}, nil
}

// parseJPEGDimensions scans for SOF markers (0xFFC0-0xFFC2) to find dimensions.
func parseJPEGDimensions(data []byte) (Dimensions, error) {
	i := 2
	for i < len(data)-1 {
		if data[i] != 0xFF {
			i++
			continue
		}
		marker := data[i+1]

		if marker >= 0xC0 && marker <= 0xC2 {
			if i+9 >= len(data) {
				return Dimensions{}, fmt.Errorf("JPEG SOF truncated")
			}
			h := int(binary.BigEndian.Uint16(data[i+5 : i+7]))
			w := int(binary.BigEndian.Uint16(data[i+7 : i+9]))
			return Dimensions{Width: w, Height: h}, nil
		}

		if i+3 >= len(data) {
			break
		}
		segLen := int(binary.BigEndian.Uint16(data[i+2 : i+4]))
		if segLen < 2 {
			break
		}
		i += 2 + segLen
	}
	return Dimensions{}, fmt.Errorf("JPEG SOF marker not found")
}

// parseGIFDimensions reads the logical screen descriptor.
func parseGIFDimensions(data []byte) (Dimensions, error) {
	if len(data) < 10 {
		return Dimensions{}, fmt.Errorf("GIF data too short for header")
	}
	w := int(binary.LittleEndian.Uint16(data[6:8]))
	h := int(binary.LittleEndian.Uint16(data[8:10]))
	return Dimensions{Width: w, Height: h}, nil
}

// parseWebPDimensions handles VP8, VP8L, and VP8X chunk formats.
func parseWebPDimensions(data []byte) (Dimensions, error) {
	if len(data) < 16 {
		return Dimensions{}, fmt.Errorf("WebP data too short")
	}

	switch chunk := string(data[12:16]); chunk {
	case "VP8 ":
		if len(data) < 30 {
			return Dimensions{}, fmt.Errorf("WebP VP8 data too short")
		}
		w := int(binary.LittleEndian.Uint16(data[26:28])) & 0x3FFF
		h := int(binary.LittleEndian.Uint16(data[28:30])) & 0x3FFF
		return Dimensions{Width: w, Height: h}, nil
	case "VP8L":
		if len(data) < 25 {
			return Dimensions{}, fmt.Errorf("WebP VP8L data too short")
		}
		bits := binary.LittleEndian.Uint32(data[21:25])
		return Dimensions{Width: int(bits&0x3FFF) + 1, Height: int((bits>>14)&0x3FFF) + 1}, nil
	case "VP8X":
		if len(data) < 30 {
			return Dimensions{}, fmt.Errorf("WebP VP8X data too short")
		}
		w := int(data[24]) | int(data[25])<<8 | int(data[26])<<16 + 1
		h := int(data[27]) | int(data[28])<<8 | int(data[29])<<16 + 1
		return Dimensions{Width: w, Height: h}, nil
	default:
		return Dimensions{}, fmt.Errorf("unknown WebP chunk: %s", chunk)
	}
}

// parseBMPDimensions reads a BITMAPINFOHEADER. Height is negative for
// top-down bitmaps.
func parseBMPDimensions(data []byte) (Dimensions, error) {
	if len(data) < 26 {
		return Dimensions{}, fmt.Errorf("BMP data too short for info header")
	}
	w := int(int32(binary.LittleEndian.Uint32(data[18:22])))
	h := int(int32(binary.LittleEndian.Uint32(data[22:26])))
	if h < 0 {
		h = -h
	}
	return Dimensions{Width: w, Height: h}, nil
}
