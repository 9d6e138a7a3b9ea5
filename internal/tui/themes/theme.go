// Package themes holds the lipgloss styles used by the dashboard viewer.
package themes

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the TUI.
type Theme struct {
	Title      lipgloss.Style
	Subtitle   lipgloss.Style
	Tab        lipgloss.Style
	ActiveTab  lipgloss.Style
	TabGap     lipgloss.Style
	Header     lipgloss.Style
	Selected   lipgloss.Style
	Cell       lipgloss.Style
	Alert      lipgloss.Style
	Empty      lipgloss.Style
	StatusBar  lipgloss.Style
	Content    lipgloss.Style
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Foreground lipgloss.Color
	Warning    lipgloss.Color
	Success    lipgloss.Color
	Error      lipgloss.Color
}

var (
	primary    = lipgloss.Color("#0f766e")
	secondary  = lipgloss.Color("#5eead4")
	muted      = lipgloss.Color("#737373")
	border     = lipgloss.Color("#404040")
	foreground = lipgloss.Color("#fafafa")
	warning    = lipgloss.Color("#f59e0b")
	success    = lipgloss.Color("#10b981")
	errorColor = lipgloss.Color("#ef4444")

	tabBorder = lipgloss.Border{
		Top:         "─",
		Bottom:      "─",
		Left:        "│",
		Right:       "│",
		TopLeft:     "╭",
		TopRight:    "╮",
		BottomLeft:  "┴",
		BottomRight: "┴",
	}
	activeTabBorder = lipgloss.Border{
		Top:         "─",
		Bottom:      " ",
		Left:        "│",
		Right:       "│",
		TopLeft:     "╭",
		TopRight:    "╮",
		BottomLeft:  "┘",
		BottomRight: "└",
	}
)

// Default is the default theme.
var Default = Theme{
	Primary:    primary,
	Secondary:  secondary,
	Muted:      muted,
	Border:     border,
	Foreground: foreground,
	Warning:    warning,
	Success:    success,
	Error:      errorColor,

	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(foreground).
		Background(primary).
		Padding(0, 1),
	Subtitle: lipgloss.NewStyle().
		Foreground(muted).
		Italic(true),
	Tab: lipgloss.NewStyle().
		Border(tabBorder, true).
		BorderForeground(border).
		Foreground(muted).
		Padding(0, 1),
	ActiveTab: lipgloss.NewStyle().
		Border(activeTabBorder, true).
		BorderForeground(secondary).
		Foreground(secondary).
		Bold(true).
		Padding(0, 1),
	TabGap: lipgloss.NewStyle().
		Border(tabBorder, false, false, true, false).
		BorderForeground(border),
	Header: lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(border).
		BorderBottom(true).
		Bold(true).
		Foreground(secondary).
		Padding(0, 1),
	Selected: lipgloss.NewStyle().
		Background(primary).
		Foreground(foreground).
		Bold(true),
	Cell: lipgloss.NewStyle().
		Padding(0, 1),
	Alert: lipgloss.NewStyle().
		Foreground(warning).
		Bold(true),
	Empty: lipgloss.NewStyle().
		Foreground(muted).
		Italic(true).
		Padding(1, 2),
	StatusBar: lipgloss.NewStyle().
		Foreground(muted),
	Content: lipgloss.NewStyle().
		Padding(1, 0),
}
