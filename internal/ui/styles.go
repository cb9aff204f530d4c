package ui

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Palette
var (
	ColorAccent = lipgloss.AdaptiveColor{Light: "#0B6E99", Dark: "#5FB3D9"}
	ColorPass   = lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#81C784"}
	ColorWarn   = lipgloss.AdaptiveColor{Light: "#B26A00", Dark: "#FFB74D"}
	ColorFail   = lipgloss.AdaptiveColor{Light: "#C62828", Dark: "#E57373"}
	ColorMuted  = lipgloss.AdaptiveColor{Light: "#757575", Dark: "#9E9E9E"}
)

var (
	passStyle  = lipgloss.NewStyle().Foreground(ColorPass)
	warnStyle  = lipgloss.NewStyle().Foreground(ColorWarn)
	failStyle  = lipgloss.NewStyle().Foreground(ColorFail)
	mutedStyle = lipgloss.NewStyle().Foreground(ColorMuted)
)

// RenderPass renders s in the success color
func RenderPass(s string) string { return passStyle.Render(s) }

// RenderWarn renders s in the warning color
func RenderWarn(s string) string { return warnStyle.Render(s) }

// RenderFail renders s in the failure color
func RenderFail(s string) string { return failStyle.Render(s) }

// RenderMuted renders s in the muted color
func RenderMuted(s string) string { return mutedStyle.Render(s) }

// ConfigureColor sets the global color profile for output written to w.
// Color is disabled when noColor is set or ShouldUseColor says so.
func ConfigureColor(noColor bool, w io.Writer) {
	if noColor || !ShouldUseColor(w) {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}
