// ABOUTME: Aspect-preserving fit of a source image into a fixed-size PNG canvas
// ABOUTME: CatmullRom scaling into one destination rect; margin filled by the edge policy

package imgfit

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"
	"strings"

	"golang.org/x/image/draw"
)

// EdgePolicy decides what the canvas margin outside the destination rect holds.
type EdgePolicy int

const (
	// EdgeMirror mirror-tiles the drawn rect across the margin on both axes.
	EdgeMirror EdgePolicy = iota
	// EdgeTransparent leaves the margin fully transparent.
	EdgeTransparent
)

// String returns the policy name accepted by ParseEdgePolicy.
func (e EdgePolicy) String() string {
	if e == EdgeTransparent {
		return "transparent"
	}
	return "mirror"
}

// ParseEdgePolicy parses "mirror" or "transparent". Empty means mirror.
func ParseEdgePolicy(s string) (EdgePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "mirror":
		return EdgeMirror, nil
	case "transparent", "none":
		return EdgeTransparent, nil
	default:
		return EdgeMirror, fmt.Errorf("unknown edge policy %q", s)
	}
}

// ResampleSpec is the output canvas size and margin policy.
type ResampleSpec struct {
	Width  int
	Height int
	Edge   EdgePolicy
}

func (s ResampleSpec) validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return invalidArg("canvas %dx%d", s.Width, s.Height)
	}
	return nil
}

// CompositionPlan is derived once per resample call.
type CompositionPlan struct {
	Dest          image.Rectangle
	Interpolation draw.Interpolator
	Edge          EdgePolicy
}

// FitRect returns the destination rect for a srcW x srcH image on a
// dstW x dstH canvas. Relatively wider sources keep full width at y=0;
// relatively taller ones keep full height and are centered horizontally.
func FitRect(srcW, srcH, dstW, dstH int) image.Rectangle {
	destAspect := float64(dstW) / float64(dstH)
	srcAspect := float64(srcW) / float64(srcH)
	rel := srcAspect / destAspect

	if rel >= 1.0 {
		h := atLeastOne(math.Round(float64(dstH) / rel))
		return image.Rect(0, 0, dstW, h)
	}
	x := int(math.Round(float64(dstW) * (1 - rel) / 2))
	w := atLeastOne(math.Round(float64(dstW) * rel))
	return image.Rect(x, 0, x+w, dstH)
}

func atLeastOne(v float64) int {
	if v < 1 {
		return 1
	}
	return int(v)
}

// Resampler composes canvases. The zero value uses draw.CatmullRom and
// png.DefaultCompression.
type Resampler struct {
	Interpolator draw.Interpolator
	Compression  png.CompressionLevel
}

// Resample is Resampler{}.Resample.
func Resample(src image.Image, spec ResampleSpec) (*bytes.Reader, error) {
	return Resampler{}.Resample(src, spec)
}

// Plan computes the composition plan for src without drawing.
func (r Resampler) Plan(src image.Image, spec ResampleSpec) (CompositionPlan, error) {
	if src == nil {
		return CompositionPlan{}, invalidArg("nil image")
	}
	if err := spec.validate(); err != nil {
		return CompositionPlan{}, err
	}
	b := src.Bounds()
	if b.Empty() {
		return CompositionPlan{}, invalidArg("empty source image")
	}

	interp := r.Interpolator
	if interp == nil {
		interp = draw.CatmullRom
	}
	return CompositionPlan{
		Dest:          FitRect(b.Dx(), b.Dy(), spec.Width, spec.Height),
		Interpolation: interp,
		Edge:          spec.Edge,
	}, nil
}

// Compose draws src onto a spec-sized canvas and returns it unencoded.
func (r Resampler) Compose(src image.Image, spec ResampleSpec) (*image.NRGBA, error) {
	plan, err := r.Plan(src, spec)
	if err != nil {
		return nil, err
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, spec.Width, spec.Height))
	plan.Interpolation.Scale(canvas, plan.Dest, src, src.Bounds(), draw.Src, nil)
	if plan.Edge == EdgeMirror {
		mirrorMargin(canvas, plan.Dest)
	}
	return canvas, nil
}

// Resample fits src into the canvas and returns it PNG-encoded at position 0.
// The output is always exactly spec.Width x spec.Height.
func (r Resampler) Resample(src image.Image, spec ResampleSpec) (*bytes.Reader, error) {
	canvas, err := r.Compose(src, spec)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: r.Compression}
	if err := enc.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return bytes.NewReader(buf.Bytes()), nil
}

// mirrorMargin fills every canvas pixel outside dest with its reflection
// inside dest, flipping on each tile boundary.
func mirrorMargin(canvas *image.NRGBA, dest image.Rectangle) {
	b := canvas.Bounds()
	if dest.Eq(b) || dest.Empty() {
		return
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		sy := mirror(y, dest.Min.Y, dest.Dy())
		for x := b.Min.X; x < b.Max.X; x++ {
			if image.Pt(x, y).In(dest) {
				continue
			}
			sx := mirror(x, dest.Min.X, dest.Dx())
			si := canvas.PixOffset(sx, sy)
			di := canvas.PixOffset(x, y)
			copy(canvas.Pix[di:di+4], canvas.Pix[si:si+4])
		}
	}
}

func mirror(c, lo, n int) int {
	period := 2 * n
	m := (c - lo) % period
	if m < 0 {
		m += period
	}
	if m >= n {
		m = period - 1 - m
	}
	return lo + m
}
