// ABOUTME: Transcodes footer-tagged TGA streams to PNG via a pluggable codec
// ABOUTME: image/png never writes tIME, so equal pixels give byte-identical output

package imgfit

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/mauromedda/imgfit/internal/log"
	"github.com/mauromedda/imgfit/pkg/imgfit/tga"
)

// Codec decodes the legacy container into pixels.
type Codec interface {
	Decode(r io.Reader) (image.Image, error)
}

// CodecFunc adapts a plain decode function to Codec.
type CodecFunc func(r io.Reader) (image.Image, error)

// Decode calls f(r).
func (f CodecFunc) Decode(r io.Reader) (image.Image, error) { return f(r) }

// TGACodec is the default legacy codec. It refuses images larger than
// tga.DefaultMaxPixels.
var TGACodec Codec = tga.Decoder{}

// Transcoder converts legacy-tagged streams to PNG. The zero value uses
// TGACodec, DefaultWindowSize, and png.DefaultCompression.
type Transcoder struct {
	Sniffer     Sniffer
	Codec       Codec
	Compression png.CompressionLevel
}

// Transcode is Transcoder{}.Transcode.
func Transcode(rs io.ReadSeeker) (*bytes.Reader, error) {
	return Transcoder{}.Transcode(rs)
}

// Transcode returns a PNG reader positioned at 0 when rs is footer-tagged,
// or nil with no error when rs should be decoded as is. rs is left at its
// entry position on every path.
func (t Transcoder) Transcode(rs io.ReadSeeker) (out *bytes.Reader, err error) {
	if rs == nil {
		return nil, invalidArg("nil stream")
	}

	format, err := t.Sniffer.Classify(rs)
	if err != nil {
		return nil, err
	}
	if format != FormatLegacyFooterTagged {
		return nil, nil
	}

	start, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("reading stream position: %w", err)
	}
	defer func() {
		if _, serr := rs.Seek(start, io.SeekStart); serr != nil && err == nil {
			out, err = nil, fmt.Errorf("rewinding input: %w", serr)
		}
	}()

	codec := t.Codec
	if codec == nil {
		codec = TGACodec
	}
	img, err := codec.Decode(rs)
	if err != nil {
		if isParseError(err) {
			return nil, &ParseError{Err: err}
		}
		return nil, err
	}

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: t.Compression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	log.Debug("transcode: %dx%d legacy image to %d byte PNG", img.Bounds().Dx(), img.Bounds().Dy(), buf.Len())
	return bytes.NewReader(buf.Bytes()), nil
}

// isParseError reports whether err is a deterministic parse failure of the
// input bytes rather than an I/O or resource failure.
func isParseError(err error) bool {
	var fe tga.FormatError
	switch {
	case errors.As(err, &fe),
		errors.Is(err, tga.ErrUnsupported),
		errors.Is(err, tga.ErrTruncated),
		errors.Is(err, image.ErrFormat),
		errors.Is(err, io.ErrUnexpectedEOF):
		return true
	}
	return false
}
