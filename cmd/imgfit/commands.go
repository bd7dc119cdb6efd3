// ABOUTME: Command implementations over the imgfit library
// ABOUTME: Each file gets its own stream; fit fans files out over internal/batch

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"slices"

	"github.com/mauromedda/imgfit/internal/batch"
	"github.com/mauromedda/imgfit/internal/log"
	"github.com/mauromedda/imgfit/pkg/imgfit"
	"github.com/mauromedda/imgfit/pkg/imgfit/preview"
)

func requireFiles(files []string) error {
	if len(files) == 0 {
		return errors.New("no input files")
	}
	return nil
}

func (a *app) sniff(args []string) error {
	files, err := plainArgs("sniff", args, a.stderr)
	if err != nil {
		return err
	}
	if err := requireFiles(files); err != nil {
		return err
	}

	sniffer := a.loader.Transcoder.Sniffer
	styled := isTerminal(a.stdout)
	var failed int
	for _, path := range files {
		rs, closeFn, err := a.openInput(path)
		if err != nil {
			log.Error("%v", err)
			failed++
			continue
		}
		format, err := sniffer.Classify(rs)
		closeFn()
		if err != nil {
			log.Error("%s: %v", path, err)
			failed++
			continue
		}
		fmt.Fprintf(a.stdout, "%s\t%s\n", pathLabel(path, styled), formatLabel(format, styled))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(files))
	}
	return nil
}

func (a *app) info(args []string) error {
	files, err := plainArgs("info", args, a.stderr)
	if err != nil {
		return err
	}
	if err := requireFiles(files); err != nil {
		return err
	}

	styled := isTerminal(a.stdout)
	var failed int
	for _, path := range files {
		rs, closeFn, err := a.openInput(path)
		if err != nil {
			log.Error("%v", err)
			failed++
			continue
		}
		info, err := imgfit.Probe(rs)
		closeFn()
		if err != nil {
			log.Error("%s: %v", path, err)
			failed++
			continue
		}
		line := fmt.Sprintf("%s\t%s\t%s\t%s", pathLabel(path, styled), formatLabel(info.Container, styled), info.MIME, info.Dimensions)
		if info.ID != "" {
			line += "\t" + info.ID
		}
		fmt.Fprintln(a.stdout, line)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(files))
	}
	return nil
}

// convert writes the PNG form of one input: the transcoder output for legacy
// files, a plain re-encode for everything else.
func (a *app) convert(args []string) error {
	ca, err := parseConvert(args, a.stderr)
	if err != nil {
		return err
	}
	if len(ca.files) != 1 {
		return errors.New("convert takes exactly one input file")
	}

	rs, closeFn, err := a.openInput(ca.files[0])
	if err != nil {
		return err
	}
	defer closeFn()

	converted, err := a.loader.Transcoder.Transcode(rs)
	if err != nil {
		return err
	}
	if converted == nil {
		img, format, err := image.Decode(rs)
		if err != nil {
			return fmt.Errorf("decoding image: %w", err)
		}
		log.Debug("convert: re-encoding %s input", format)
		var buf bytes.Buffer
		enc := png.Encoder{CompressionLevel: a.compressor}
		if err := enc.Encode(&buf, img); err != nil {
			return fmt.Errorf("encoding PNG: %w", err)
		}
		converted = bytes.NewReader(buf.Bytes())
	}
	return a.writeOutput(ca.out, converted)
}

func (a *app) spec(c canvasFlags) (imgfit.ResampleSpec, error) {
	edge, err := imgfit.ParseEdgePolicy(c.edge)
	if err != nil {
		return imgfit.ResampleSpec{}, err
	}
	spec := imgfit.ResampleSpec{Width: c.width, Height: c.height, Edge: edge}
	if spec.Width <= 0 || spec.Height <= 0 {
		return spec, fmt.Errorf("canvas must be positive, got %dx%d", spec.Width, spec.Height)
	}
	return spec, nil
}

func (a *app) fit(ctx context.Context, args []string) error {
	fa, err := parseFit(args, a.stderr, a.defaults())
	if err != nil {
		return err
	}
	if err := requireFiles(fa.files); err != nil {
		return err
	}
	if len(fa.files) > 1 && slices.Contains(fa.files, "-") {
		return errors.New("stdin input cannot be combined with other files")
	}
	spec, err := a.spec(fa.canvasFlags)
	if err != nil {
		return err
	}
	if fa.outDir != "" {
		if err := os.MkdirAll(fa.outDir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	outputs, err := fitOutputs(fa.files, fa.outDir)
	if err != nil {
		return err
	}

	results := batch.Run(ctx, fa.files, fa.workers, func(_ context.Context, path string) error {
		return a.fitOne(path, outputs[path], spec)
	})

	for _, r := range results {
		if r.Err == nil && outputs[r.Item] != "" {
			fmt.Fprintf(a.stderr, "%s -> %s\n", r.Item, outputs[r.Item])
		}
	}
	failed := batch.Failed(results)
	for _, r := range failed {
		log.Error("%s: %v", r.Item, r.Err)
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d files failed", len(failed), len(results))
	}
	return nil
}

// fitOutputs maps each input to its output path ("" for stdout) and rejects
// inputs that would write the same file.
func fitOutputs(files []string, outDir string) (map[string]string, error) {
	outputs := make(map[string]string, len(files))
	owner := make(map[string]string, len(files))
	for _, path := range files {
		if _, dup := outputs[path]; dup {
			return nil, fmt.Errorf("%s given more than once", path)
		}
		if path == "-" {
			outputs[path] = ""
			continue
		}
		out := fitOutputPath(path, outDir)
		if prev, ok := owner[out]; ok {
			return nil, fmt.Errorf("%s and %s would both write %s", prev, path, out)
		}
		owner[out] = path
		outputs[path] = out
	}
	return outputs, nil
}

func (a *app) fitOne(path, out string, spec imgfit.ResampleSpec) error {
	rs, closeFn, err := a.openInput(path)
	if err != nil {
		return err
	}
	defer closeFn()

	img, format, err := a.loader.Load(rs)
	if err != nil {
		return err
	}
	log.Debug("fit: %s is %s %v", path, format, img.Bounds().Size())

	canvas, err := a.resampler.Resample(img, spec)
	if err != nil {
		return err
	}
	return a.writeOutput(out, canvas)
}

func (a *app) preview(args []string) error {
	pa, err := parsePreview(args, a.stderr, a.defaults())
	if err != nil {
		return err
	}
	if len(pa.files) != 1 {
		return errors.New("preview takes exactly one input file")
	}
	spec, err := a.spec(pa.canvasFlags)
	if err != nil {
		return err
	}
	proto, err := preview.ParseProtocol(pa.protocol)
	if err != nil {
		return err
	}

	rs, closeFn, err := a.openInput(pa.files[0])
	if err != nil {
		return err
	}
	defer closeFn()

	img, _, err := a.loader.Load(rs)
	if err != nil {
		return err
	}
	canvas, err := a.resampler.Compose(img, spec)
	if err != nil {
		return err
	}

	cols := pa.cols
	if cols <= 0 {
		cols = terminalCols(a.stdout, 80)
	}
	lines, err := preview.RenderWith(proto, canvas, cols)
	if err != nil {
		return err
	}
	for _, line := range lines {
		fmt.Fprintln(a.stdout, line)
	}
	return nil
}
