// ABOUTME: Input opening and output writing for CLI commands
// ABOUTME: Stdin is pre-buffered (sniffing needs seeks); binary output never goes to a TTY

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"github.com/mauromedda/imgfit/pkg/imgfit"
)

// errTerminal is returned when binary output would be written to a terminal.
var errTerminal = errors.New("refusing to write PNG data to a terminal; use -o or redirect stdout")

// openInput opens path, or buffers stdin for "-".
func (a *app) openInput(path string) (io.ReadSeeker, func() error, error) {
	if path == "-" {
		rs, err := imgfit.Buffer(a.stdin)
		if err != nil {
			return nil, nil, err
		}
		return rs, func() error { return nil }, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return f, f.Close, nil
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// terminalCols returns the width of w if it is a terminal, else fallback.
func terminalCols(w io.Writer, fallback int) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return fallback
	}
	cols, _, err := term.GetSize(int(f.Fd()))
	if err != nil || cols <= 0 {
		return fallback
	}
	return cols
}

// writeOutput copies r to path, or to stdout when path is "" or "-".
func (a *app) writeOutput(path string, r io.Reader) error {
	if path == "" || path == "-" {
		if isTerminal(a.stdout) {
			return errTerminal
		}
		_, err := io.Copy(a.stdout, r)
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return os.Rename(tmp.Name(), path)
}

// fitOutputPath returns <dir>/<name>.fit.png for input.
func fitOutputPath(input, outDir string) string {
	base := filepath.Base(input)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + ".fit.png"
	if outDir == "" {
		outDir = filepath.Dir(input)
	}
	return filepath.Join(outDir, name)
}
