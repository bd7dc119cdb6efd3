// ABOUTME: Terminal image protocol detection (Kitty, iTerm2, half-block fallback)
// ABOUTME: Detects Kitty/Ghostty/WezTerm as Kitty-compatible; caches result via sync.Once

package preview

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// Protocol identifies the terminal image rendering protocol.
type Protocol int

const (
	ProtoNone   Protocol = iota // No native image support; use half-block fallback
	ProtoKitty                  // Kitty graphics protocol (also Ghostty, WezTerm)
	ProtoITerm2                 // iTerm2 inline images protocol
)

// String returns the protocol name.
func (p Protocol) String() string {
	switch p {
	case ProtoKitty:
		return "kitty"
	case ProtoITerm2:
		return "iterm2"
	default:
		return "none"
	}
}

// ParseProtocol parses a protocol name; "auto" and "" return Detect().
func ParseProtocol(s string) (Protocol, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return Detect(), nil
	case "kitty":
		return ProtoKitty, nil
	case "iterm2":
		return ProtoITerm2, nil
	case "none", "halfblock":
		return ProtoNone, nil
	}
	return ProtoNone, fmt.Errorf("unknown preview protocol %q", s)
}

var (
	detectOnce sync.Once
	cached     Protocol
)

// Detect probes environment variables and returns the terminal's protocol.
// The result is cached after the first call.
func Detect() Protocol {
	detectOnce.Do(func() {
		cached = detect()
	})
	return cached
}

// resetDetectCache clears the cached result. Used only in tests.
func resetDetectCache() {
	detectOnce = sync.Once{}
	cached = ProtoNone
}

func detect() Protocol {
	term := strings.ToLower(os.Getenv("TERM_PROGRAM"))

	switch {
	case os.Getenv("KITTY_WINDOW_ID") != "" || term == "kitty":
		return ProtoKitty
	case os.Getenv("GHOSTTY_RESOURCES_DIR") != "" || term == "ghostty":
		return ProtoKitty
	case os.Getenv("WEZTERM_PANE") != "" || term == "wezterm":
		return ProtoKitty
	case os.Getenv("ITERM_SESSION_ID") != "" || term == "iterm.app":
		return ProtoITerm2
	}
	return ProtoNone
}
