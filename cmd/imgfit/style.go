// ABOUTME: Terminal styling for report output and did-you-mean command suggestions
// ABOUTME: Styles apply only when stdout is a terminal; pipes get plain text

package main

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/mauromedda/imgfit/pkg/imgfit"
)

var commands = []string{"sniff", "info", "convert", "fit", "preview"}

var (
	legacyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	nativeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	pathStyle   = lipgloss.NewStyle().Faint(true)
)

// formatLabel renders a container format, colored when styled is true.
func formatLabel(f imgfit.ContainerFormat, styled bool) string {
	if !styled {
		return f.String()
	}
	if f == imgfit.FormatLegacyFooterTagged {
		return legacyStyle.Render(f.String())
	}
	return nativeStyle.Render(f.String())
}

func pathLabel(p string, styled bool) string {
	if !styled {
		return p
	}
	return pathStyle.Render(p)
}

// suggestCommand returns the best fuzzy match for an unknown command name.
func suggestCommand(name string) (string, bool) {
	matches := fuzzy.Find(name, commands)
	if len(matches) == 0 {
		return "", false
	}
	return matches[0].Str, true
}
