package cli

import "github.com/charmbracelet/lipgloss"

// Color palette for table output.
const (
	// ColorPrimary is used for table headers.
	ColorPrimary = lipgloss.Color("#7C3AED")

	// ColorMuted is used for table borders.
	ColorMuted = lipgloss.Color("#6B7280")
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().
			Padding(0, 1)

	borderStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// plainCellStyle is used with --no-color.
	plainCellStyle = lipgloss.NewStyle().
			Padding(0, 1)
)
