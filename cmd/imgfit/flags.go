// ABOUTME: CLI flag parsing using stdlib flag package, one FlagSet per command
// ABOUTME: Global flags: -config, -v, -version; command flags override config values

package main

import (
	"flag"
	"fmt"
	"io"
)

type globalArgs struct {
	config  string
	verbose bool
	version bool
	rest    []string
}

func parseGlobal(args []string, stderr io.Writer) (globalArgs, error) {
	var g globalArgs
	fs := flag.NewFlagSet("imgfit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&g.config, "config", "", "Config file (default: ~/.imgfit/config.yaml merged with ./.imgfit/config.yaml)")
	fs.BoolVar(&g.verbose, "v", false, "Debug logging")
	fs.BoolVar(&g.version, "version", false, "Show version and exit")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: imgfit [-config FILE] [-v] <sniff|info|convert|fit|preview> [flags] FILE...")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return g, err
	}
	g.rest = fs.Args()
	return g, nil
}

// canvasFlags are shared by fit and preview.
type canvasFlags struct {
	width  int
	height int
	edge   string
}

func (c *canvasFlags) register(fs *flag.FlagSet, width, height int, edge string) {
	fs.IntVar(&c.width, "width", width, "Output canvas width in pixels")
	fs.IntVar(&c.height, "height", height, "Output canvas height in pixels")
	fs.StringVar(&c.edge, "edge", edge, "Margin policy: mirror or transparent")
}

type convertArgs struct {
	out   string
	files []string
}

func parseConvert(args []string, stderr io.Writer) (convertArgs, error) {
	var a convertArgs
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&a.out, "o", "", "Output PNG path (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return a, err
	}
	a.files = fs.Args()
	return a, nil
}

type fitArgs struct {
	canvasFlags
	outDir  string
	workers int
	files   []string
}

func parseFit(args []string, stderr io.Writer, d defaults) (fitArgs, error) {
	var a fitArgs
	fs := flag.NewFlagSet("fit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	a.register(fs, d.width, d.height, d.edge)
	fs.StringVar(&a.outDir, "out", d.outDir, "Output directory (default: next to each input)")
	fs.IntVar(&a.workers, "workers", d.workers, "Maximum concurrent files")
	if err := fs.Parse(args); err != nil {
		return a, err
	}
	a.files = fs.Args()
	return a, nil
}

type previewArgs struct {
	canvasFlags
	cols     int
	protocol string
	files    []string
}

func parsePreview(args []string, stderr io.Writer, d defaults) (previewArgs, error) {
	var a previewArgs
	fs := flag.NewFlagSet("preview", flag.ContinueOnError)
	fs.SetOutput(stderr)
	a.register(fs, d.width, d.height, d.edge)
	fs.IntVar(&a.cols, "cols", 0, "Terminal columns to use (default: terminal width)")
	fs.StringVar(&a.protocol, "protocol", "auto", "auto, kitty, iterm2, or halfblock")
	if err := fs.Parse(args); err != nil {
		return a, err
	}
	a.files = fs.Args()
	return a, nil
}

// plainArgs parses commands that take only files.
func plainArgs(name string, args []string, stderr io.Writer) ([]string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return fs.Args(), nil
}
