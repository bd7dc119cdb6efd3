// ABOUTME: Loader façade: sniff, optionally transcode, then decode with image.Decode
// ABOUTME: Registers the stdlib and x/image decoders used on the native path

package imgfit

import (
	"fmt"
	"image"
	"io"

	// Register decoders for the native path.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Loader decodes any supported stream. The zero value is ready to use.
type Loader struct {
	Transcoder Transcoder
}

// Load is Loader{}.Load.
func Load(rs io.ReadSeeker) (image.Image, string, error) {
	return Loader{}.Load(rs)
}

// Load decodes rs, routing footer-tagged streams through the transcoder.
// It returns the image and the source format name ("tga" for the legacy
// path). rs is left at its entry position on every path.
func (l Loader) Load(rs io.ReadSeeker) (img image.Image, format string, err error) {
	if rs == nil {
		return nil, "", invalidArg("nil stream")
	}

	converted, err := l.Transcoder.Transcode(rs)
	if err != nil {
		return nil, "", err
	}
	if converted != nil {
		img, _, err = image.Decode(converted)
		if err != nil {
			return nil, "", fmt.Errorf("decoding transcoded image: %w", err)
		}
		return img, "tga", nil
	}

	start, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, "", fmt.Errorf("reading stream position: %w", err)
	}
	defer func() {
		if _, serr := rs.Seek(start, io.SeekStart); serr != nil && err == nil {
			img, format, err = nil, "", fmt.Errorf("restoring stream position: %w", serr)
		}
	}()

	img, format, err = image.Decode(rs)
	if err != nil {
		return nil, "", fmt.Errorf("decoding image: %w", err)
	}
	return img, format, nil
}
