// ABOUTME: Kitty (chunked APC) and iTerm2 (OSC 1337) inline image encoders
// ABOUTME: Both carry the PNG bytes of the fitted canvas as base64

package preview

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const kittyChunkSize = 4096 // Max base64 chars per chunk

// EncodeKitty encodes PNG data into Kitty graphics protocol escape sequences.
// The first chunk carries the full header; continuation chunks only m=.
func EncodeKitty(pngData []byte, cols, rows int) string {
	if len(pngData) == 0 {
		return ""
	}

	encoded := base64.StdEncoding.EncodeToString(pngData)
	var b strings.Builder
	for i := 0; i < len(encoded); i += kittyChunkSize {
		end := min(i+kittyChunkSize, len(encoded))
		more := 1
		if end == len(encoded) {
			more = 0
		}
		if i == 0 {
			fmt.Fprintf(&b, "\x1b_Ga=T,f=100,q=2,c=%d,r=%d,m=%d;%s\x1b\\", cols, rows, more, encoded[i:end])
		} else {
			fmt.Fprintf(&b, "\x1b_Gm=%d;%s\x1b\\", more, encoded[i:end])
		}
	}
	return b.String()
}

// EncodeITerm2 encodes image data into an iTerm2 inline image escape sequence.
// width is a cell count, percentage, or "auto".
func EncodeITerm2(data []byte, width string) string {
	if len(data) == 0 {
		return ""
	}
	encoded := base64.StdEncoding.EncodeToString(data)
	return fmt.Sprintf("\x1b]1337;File=inline=1;size=%d;width=%s:%s\a", len(data), width, encoded)
}
