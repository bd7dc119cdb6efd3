// ABOUTME: Tests for environment variable expansion in config
// ABOUTME: Validates ${VAR} replacement for set, unset, and mixed patterns

package config

import (
	"testing"
)

func TestExpandEnv_Set(t *testing.T) {
	t.Setenv("TEST_EDGE", "transparent")
	if got := expandEnv("${TEST_EDGE}"); got != "transparent" {
		t.Errorf("expandEnv = %q; want %q", got, "transparent")
	}
}

func TestExpandEnv_Unset(t *testing.T) {
	if got := expandEnv("${DEFINITELY_NOT_SET_12345}"); got != "" {
		t.Errorf("expandEnv = %q; want empty for unset var", got)
	}
}

func TestExpandEnv_Mixed(t *testing.T) {
	t.Setenv("MY_ROOT", "/data")
	if got := expandEnv("${MY_ROOT}/out"); got != "/data/out" {
		t.Errorf("expandEnv = %q; want %q", got, "/data/out")
	}
}

func TestExpandEnv_NoPattern(t *testing.T) {
	if got := expandEnv("plain string"); got != "plain string" {
		t.Errorf("expandEnv = %q; want %q", got, "plain string")
	}
}

func TestResolveEnvVars(t *testing.T) {
	t.Setenv("LVL", "debug")
	s := &Settings{LogLevel: "${LVL}", Edge: "mirror"}
	ResolveEnvVars(s)
	if s.LogLevel != "debug" || s.Edge != "mirror" {
		t.Errorf("got %+v", s)
	}
}
