// ABOUTME: Environment handling for config: ${VAR} expansion and IMGFIT_* overrides
// ABOUTME: Unset vars expand to empty; malformed numeric overrides are errors

package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
)

var envVarPattern = regexp.MustCompile(`\$\{(\w+)\}`)

// ResolveEnvVars expands ${VAR} patterns in string fields of Settings.
func ResolveEnvVars(s *Settings) {
	s.Edge = expandEnv(s.Edge)
	s.Compression = expandEnv(s.Compression)
	s.LogLevel = expandEnv(s.LogLevel)
	s.OutDir = expandEnv(s.OutDir)
}

// expandEnv replaces ${VAR} with os.Getenv(VAR). Unset vars become "".
func expandEnv(s string) string {
	if s == "" {
		return s
	}
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyEnvOverrides lets IMGFIT_* variables win over every config file.
func applyEnvOverrides(s *Settings) error {
	ints := []struct {
		name string
		dst  *int
	}{
		{"IMGFIT_WINDOW_SIZE", &s.WindowSize},
		{"IMGFIT_WIDTH", &s.Width},
		{"IMGFIT_HEIGHT", &s.Height},
		{"IMGFIT_WORKERS", &s.Workers},
	}
	for _, e := range ints {
		v := os.Getenv(e.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", e.name, err)
		}
		*e.dst = n
	}

	strs := []struct {
		name string
		dst  *string
	}{
		{"IMGFIT_EDGE", &s.Edge},
		{"IMGFIT_COMPRESSION", &s.Compression},
		{"IMGFIT_LOG_LEVEL", &s.LogLevel},
		{"IMGFIT_OUT_DIR", &s.OutDir},
	}
	for _, e := range strs {
		if v := os.Getenv(e.name); v != "" {
			*e.dst = v
		}
	}
	return nil
}
