// ABOUTME: Settings loading with global + project YAML deep merge
// ABOUTME: Defaults, ${VAR} expansion, and IMGFIT_* environment overrides

package config

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Settings holds the merged configuration.
type Settings struct {
	WindowSize  int    `yaml:"window_size,omitempty"`
	Width       int    `yaml:"width,omitempty"`
	Height      int    `yaml:"height,omitempty"`
	Edge        string `yaml:"edge,omitempty"`
	Workers     int    `yaml:"workers,omitempty"`
	Compression string `yaml:"compression,omitempty"`
	LogLevel    string `yaml:"log_level,omitempty"`
	OutDir      string `yaml:"out_dir,omitempty"`
}

// Defaults returns the built-in settings every file is merged onto.
func Defaults() *Settings {
	return &Settings{
		WindowSize:  1024,
		Width:       512,
		Height:      512,
		Edge:        "mirror",
		Workers:     runtime.NumCPU(),
		Compression: "default",
		LogLevel:    "info",
	}
}

// Load reads and merges defaults, global, and project-local settings.
// Project settings override global settings; environment overrides both.
func Load(projectRoot string) (*Settings, error) {
	global, err := loadFile(GlobalConfigFile())
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading global config: %w", err)
	}

	project, err := loadFile(ProjectConfigFile(projectRoot))
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	return finish(merge(merge(Defaults(), global), project))
}

// LoadFile reads a single explicit config file on top of the defaults.
func LoadFile(path string) (*Settings, error) {
	s, err := loadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}
	return finish(merge(Defaults(), s))
}

func finish(s *Settings) (*Settings, error) {
	ResolveEnvVars(s)
	if err := applyEnvOverrides(s); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// loadFile reads Settings from a YAML file. Returns zero Settings if the
// file does not exist.
func loadFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Settings{}, err
	}
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &s, nil
}

// merge overlays non-zero override values onto base.
func merge(base, override *Settings) *Settings {
	if base == nil {
		base = &Settings{}
	}
	if override == nil {
		return base
	}

	result := *base
	if override.WindowSize != 0 {
		result.WindowSize = override.WindowSize
	}
	if override.Width != 0 {
		result.Width = override.Width
	}
	if override.Height != 0 {
		result.Height = override.Height
	}
	if override.Edge != "" {
		result.Edge = override.Edge
	}
	if override.Workers != 0 {
		result.Workers = override.Workers
	}
	if override.Compression != "" {
		result.Compression = override.Compression
	}
	if override.LogLevel != "" {
		result.LogLevel = override.LogLevel
	}
	if override.OutDir != "" {
		result.OutDir = override.OutDir
	}
	return &result
}

// Validate rejects settings no command can run with.
func (s *Settings) Validate() error {
	switch {
	case s.WindowSize <= 0:
		return fmt.Errorf("window_size must be positive, got %d", s.WindowSize)
	case s.Width <= 0 || s.Height <= 0:
		return fmt.Errorf("canvas must be positive, got %dx%d", s.Width, s.Height)
	case s.Workers <= 0:
		return fmt.Errorf("workers must be positive, got %d", s.Workers)
	}
	switch s.Compression {
	case "default", "none", "speed", "best":
	default:
		return fmt.Errorf("unknown compression %q", s.Compression)
	}
	return nil
}
