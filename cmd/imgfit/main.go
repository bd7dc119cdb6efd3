// ABOUTME: CLI entry point for imgfit: sniff, info, convert, fit, and preview
// ABOUTME: Loads config, sets log level, cancels batch work on Ctrl+C

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"io"
	"os"
	"os/signal"

	"github.com/mauromedda/imgfit/internal/config"
	"github.com/mauromedda/imgfit/internal/log"
	"github.com/mauromedda/imgfit/pkg/imgfit"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// defaults carries config values into command flag defaults.
type defaults struct {
	width, height int
	edge          string
	outDir        string
	workers       int
}

// app is the per-invocation state shared by commands.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	settings   *config.Settings
	loader     imgfit.Loader
	resampler  imgfit.Resampler
	compressor png.CompressionLevel
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	defer log.SetOutput(log.SetOutput(stderr))

	g, err := parseGlobal(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if g.version {
		fmt.Fprintf(stdout, "imgfit %s (%s)\n", version, commit)
		return 0
	}
	if len(g.rest) == 0 {
		fmt.Fprintln(stderr, "usage: imgfit [-config FILE] [-v] <sniff|info|convert|fit|preview> [flags] FILE...")
		return 2
	}

	settings, err := loadSettings(g.config)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	a, err := newApp(settings, stdin, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	if g.verbose {
		log.SetLevel(log.LevelDebug)
	}

	cmd, rest := g.rest[0], g.rest[1:]
	switch cmd {
	case "sniff":
		err = a.sniff(rest)
	case "info":
		err = a.info(rest)
	case "convert":
		err = a.convert(rest)
	case "fit":
		err = a.fit(ctx, rest)
	case "preview":
		err = a.preview(rest)
	default:
		if s, ok := suggestCommand(cmd); ok {
			fmt.Fprintf(stderr, "unknown command %q, did you mean %q?\n", cmd, s)
		} else {
			fmt.Fprintf(stderr, "unknown command %q\n", cmd)
		}
		return 2
	}
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		log.Error("%s: %v", cmd, err)
		return 1
	}
	return 0
}

func loadSettings(path string) (*config.Settings, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolving working directory: %w", err)
	}
	return config.Load(cwd)
}

func newApp(s *config.Settings, stdin io.Reader, stdout, stderr io.Writer) (*app, error) {
	lvl, err := log.ParseLevel(s.LogLevel)
	if err != nil {
		return nil, err
	}
	log.SetLevel(lvl)

	comp, err := compressionLevel(s.Compression)
	if err != nil {
		return nil, err
	}

	sniffer := imgfit.Sniffer{WindowSize: s.WindowSize}
	return &app{
		stdin:      stdin,
		stdout:     stdout,
		stderr:     stderr,
		settings:   s,
		loader:     imgfit.Loader{Transcoder: imgfit.Transcoder{Sniffer: sniffer, Compression: comp}},
		resampler:  imgfit.Resampler{Compression: comp},
		compressor: comp,
	}, nil
}

func (a *app) defaults() defaults {
	return defaults{
		width:   a.settings.Width,
		height:  a.settings.Height,
		edge:    a.settings.Edge,
		outDir:  a.settings.OutDir,
		workers: a.settings.Workers,
	}
}

func compressionLevel(name string) (png.CompressionLevel, error) {
	switch name {
	case "", "default":
		return png.DefaultCompression, nil
	case "none":
		return png.NoCompression, nil
	case "speed":
		return png.BestSpeed, nil
	case "best":
		return png.BestCompression, nil
	}
	return png.DefaultCompression, fmt.Errorf("unknown compression %q", name)
}
