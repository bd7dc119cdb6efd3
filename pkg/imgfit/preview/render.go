// ABOUTME: Preview dispatcher for fitted canvases
// ABOUTME: Routes to Kitty, iTerm2, or half-block based on the terminal protocol

package preview

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strconv"
)

// Render produces terminal-ready lines for img using the detected protocol.
func Render(img image.Image, maxCols int) ([]string, error) {
	return RenderWith(Detect(), img, maxCols)
}

// RenderWith renders img with an explicit protocol. Kitty and iTerm2 output
// is a single line; half-block output is one line per two pixel rows.
func RenderWith(proto Protocol, img image.Image, maxCols int) ([]string, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("empty image")
	}
	if maxCols <= 0 {
		return nil, fmt.Errorf("invalid column count %d", maxCols)
	}

	switch proto {
	case ProtoKitty:
		data, err := encodePNG(img)
		if err != nil {
			return nil, err
		}
		cols, rows := cellSize(img.Bounds().Dx(), img.Bounds().Dy(), maxCols)
		return []string{EncodeKitty(data, cols, rows)}, nil
	case ProtoITerm2:
		data, err := encodePNG(img)
		if err != nil {
			return nil, err
		}
		cols, _ := cellSize(img.Bounds().Dx(), img.Bounds().Dy(), maxCols)
		return []string{EncodeITerm2(data, strconv.Itoa(cols))}, nil
	default:
		return RenderHalfBlock(img, maxCols), nil
	}
}

// cellSize scales pixel dimensions to terminal cells; cells are roughly
// twice as tall as they are wide.
func cellSize(w, h, maxCols int) (int, int) {
	scale := 1.0
	if w > maxCols {
		scale = float64(maxCols) / float64(w)
	}
	cols := max(int(float64(w)*scale), 1)
	rows := max(int(float64(h)*scale/2.0), 1)
	return cols, rows
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}
