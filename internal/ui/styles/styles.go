package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Colors of the active theme
var (
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Muted      lipgloss.Color
	Background lipgloss.Color
	Foreground lipgloss.Color
	Border     lipgloss.Color
)

// Styles of the active theme. ApplyTheme rebuilds all of them.
var (
	TitleBar  lipgloss.Style
	StatusBar lipgloss.Style
	FooterBar lipgloss.Style

	// Reading session menu
	MenuBar   lipgloss.Style
	MenuTitle lipgloss.Style
	MenuPage  lipgloss.Style

	Help    lipgloss.Style
	HelpKey lipgloss.Style

	MutedText     lipgloss.Style
	SecondaryText lipgloss.Style
	ErrorStyle    lipgloss.Style
	SuccessStyle  lipgloss.Style
	WarningStyle  lipgloss.Style

	InputLabel        lipgloss.Style
	InputField        lipgloss.Style
	InputFieldFocused lipgloss.Style

	ListItem         lipgloss.Style
	ListItemSelected lipgloss.Style
	ListItemDimmed   lipgloss.Style

	Dialog      lipgloss.Style
	DialogTitle lipgloss.Style

	// Manga info
	MangaTitle   lipgloss.Style
	ChapterTitle lipgloss.Style

	BadgeSerial   lipgloss.Style
	BadgeExtra    lipgloss.Style
	BadgeLastRead lipgloss.Style

	// Stand-in drawn for a page whose image has not loaded
	PagePlaceholder lipgloss.Style

	Spinner lipgloss.Style
)

func build(theme Theme) {
	Primary = theme.Primary
	Secondary = theme.Secondary
	Success = theme.Success
	Warning = theme.Warning
	Error = theme.Error
	Muted = theme.Muted
	Background = theme.Background
	Foreground = theme.Foreground
	Border = theme.Border

	TitleBar = lipgloss.NewStyle().
		Foreground(theme.Foreground).
		Background(theme.Primary).
		Padding(0, 1).
		Bold(true)

	StatusBar = lipgloss.NewStyle().
		Foreground(theme.Muted).
		Background(theme.Background).
		Padding(0, 1)

	FooterBar = lipgloss.NewStyle().
		Foreground(theme.Muted).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)

	MenuBar = lipgloss.NewStyle().
		Foreground(theme.Foreground).
		Background(theme.Background).
		Padding(0, 1)

	MenuTitle = lipgloss.NewStyle().
		Foreground(theme.Primary).
		Background(theme.Background).
		Bold(true)

	MenuPage = lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Background(theme.Background)

	Help = lipgloss.NewStyle().
		Foreground(theme.Muted)

	HelpKey = lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true)

	MutedText = lipgloss.NewStyle().
		Foreground(theme.Muted)

	SecondaryText = lipgloss.NewStyle().
		Foreground(theme.Secondary)

	ErrorStyle = lipgloss.NewStyle().
		Foreground(theme.Error).
		Bold(true).
		Padding(0, 1)

	SuccessStyle = lipgloss.NewStyle().
		Foreground(theme.Success).
		Bold(true).
		Padding(0, 1)

	WarningStyle = lipgloss.NewStyle().
		Foreground(theme.Warning).
		Bold(true)

	InputLabel = lipgloss.NewStyle().
		Foreground(theme.Foreground).
		Bold(true)

	InputField = lipgloss.NewStyle().
		Foreground(theme.Foreground).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)

	InputFieldFocused = InputField.
		BorderForeground(theme.Primary)

	ListItem = lipgloss.NewStyle().
		Foreground(theme.Foreground).
		Padding(0, 2)

	ListItemSelected = lipgloss.NewStyle().
		Foreground(theme.SelectionText).
		Background(theme.Selection).
		Padding(0, 2).
		Bold(true)

	ListItemDimmed = lipgloss.NewStyle().
		Foreground(theme.Muted).
		Padding(0, 2)

	Dialog = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Primary).
		Padding(1, 2)

	DialogTitle = lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true).
		MarginBottom(1)

	MangaTitle = lipgloss.NewStyle().
		Foreground(theme.Foreground).
		Bold(true)

	ChapterTitle = lipgloss.NewStyle().
		Foreground(theme.Secondary)

	BadgeSerial = lipgloss.NewStyle().
		Foreground(theme.BadgeSerialText).
		Background(theme.BadgeSerial).
		Padding(0, 1).
		Bold(true)

	BadgeExtra = lipgloss.NewStyle().
		Foreground(theme.BadgeExtraText).
		Background(theme.BadgeExtra).
		Padding(0, 1).
		Bold(true)

	BadgeLastRead = lipgloss.NewStyle().
		Foreground(theme.Success).
		Bold(true)

	PagePlaceholder = lipgloss.NewStyle().
		Foreground(theme.Muted).
		Background(theme.Border)

	Spinner = lipgloss.NewStyle().
		Foreground(theme.Primary)
}

// TruncateText shortens s to at most width cells, ending in an ellipsis
// when anything was cut. Escape sequences are preserved.
func TruncateText(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if ansi.StringWidth(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, "…")
}

// Dimensions returns styled content with proper dimensions
func Dimensions(width, height int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		Height(height)
}
