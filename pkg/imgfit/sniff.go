// ABOUTME: Container classification by the TGA 2.0 footer signature in the stream tail
// ABOUTME: Weak heuristic: TGA 1.0 files carry no footer and classify as natively decodable

package imgfit

import (
	"bytes"
	"fmt"
	"io"

	"github.com/mauromedda/imgfit/internal/log"
)

const (
	// DefaultWindowSize is the chunk size used to capture the stream tail.
	DefaultWindowSize = 1024
	// FooterSize is the length of the TGA 2.0 file footer.
	FooterSize = 26
	// FooterSignature marks a TGA 2.0 footer.
	FooterSignature = "TRUEVISION-XFILE"
)

// ContainerFormat classifies how a stream must be decoded.
type ContainerFormat int

const (
	FormatUnknown            ContainerFormat = iota
	FormatLegacyFooterTagged                 // needs transcoding before generic decode
	FormatNativelyDecodable                  // can go straight to image.Decode
)

// String returns the format name.
func (f ContainerFormat) String() string {
	switch f {
	case FormatLegacyFooterTagged:
		return "legacy-footer-tagged"
	case FormatNativelyDecodable:
		return "native"
	default:
		return "unknown"
	}
}

// Sniffer classifies streams. The zero value uses DefaultWindowSize.
type Sniffer struct {
	WindowSize int
}

// Classify reports whether rs ends in a TGA 2.0 footer. The read position is
// restored before returning. A stream too short to hold a footer is not tagged.
func Classify(rs io.ReadSeeker) (ContainerFormat, error) {
	return Sniffer{}.Classify(rs)
}

// Classify is the configurable form of the package-level Classify.
func (s Sniffer) Classify(rs io.ReadSeeker) (ContainerFormat, error) {
	if rs == nil {
		return FormatUnknown, invalidArg("nil stream")
	}
	window := s.WindowSize
	if window <= 0 {
		window = DefaultWindowSize
	}

	tail, err := CaptureTail(rs, window)
	if err != nil {
		return FormatUnknown, fmt.Errorf("capturing stream tail: %w", err)
	}

	if tail.Total() < FooterSize {
		log.Debug("sniff: %d bytes is shorter than the footer, not tagged", tail.Total())
		return FormatNativelyDecodable, nil
	}

	if HasFooterSignature(tail.Suffix(FooterSize)) {
		log.Debug("sniff: footer signature found in %d byte stream", tail.Total())
		return FormatLegacyFooterTagged, nil
	}
	return FormatNativelyDecodable, nil
}

// HasFooterSignature reports whether footer contains the signature anywhere.
// Producers do not agree on its offset, so the whole footer is searched.
func HasFooterSignature(footer []byte) bool {
	return bytes.Contains(footer, []byte(FooterSignature))
}
