// ABOUTME: ANSI half-block renderer for terminals without an image protocol
// ABOUTME: Uses ▄ with fg/bg true-color escapes to double vertical resolution

package preview

import (
	"fmt"
	"image"
	"strings"

	"golang.org/x/image/draw"
)

// RenderHalfBlock converts an image to ANSI art using the lower-half block
// character. For every 2 pixel rows the background is the top pixel and the
// foreground the bottom one. Wider images are scaled down to maxCols.
func RenderHalfBlock(img image.Image, maxCols int) []string {
	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if srcW == 0 || srcH == 0 || maxCols <= 0 {
		return nil
	}

	targetW, targetH := srcW, srcH
	if targetW > maxCols {
		targetH = max(targetH*maxCols/targetW, 1)
		targetW = maxCols
	}

	scaled := img
	if targetW != srcW || targetH != srcH {
		dst := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		scaled = dst
	}
	origin := scaled.Bounds().Min

	var lines []string
	for y := 0; y < targetH; y += 2 {
		var b strings.Builder
		for x := range targetW {
			topR, topG, topB := rgbAt(scaled, origin.X+x, origin.Y+y)

			var botR, botG, botB uint8
			if y+1 < targetH {
				botR, botG, botB = rgbAt(scaled, origin.X+x, origin.Y+y+1)
			}
			fmt.Fprintf(&b, "\x1b[48;2;%d;%d;%dm\x1b[38;2;%d;%d;%dm▄",
				topR, topG, topB, botR, botG, botB)
		}
		b.WriteString("\x1b[0m")
		lines = append(lines, b.String())
	}
	return lines
}

func rgbAt(img image.Image, x, y int) (uint8, uint8, uint8) {
	r, g, b, _ := img.At(x, y).RGBA()
	return uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)
}
