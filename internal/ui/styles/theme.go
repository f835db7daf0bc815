package styles

import "github.com/charmbracelet/lipgloss"

// Theme represents a color scheme for the application
type Theme struct {
	Name        string
	Description string

	// Core colors
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Background lipgloss.Color
	Foreground lipgloss.Color

	// Semantic colors
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Muted   lipgloss.Color

	// UI element colors
	Border        lipgloss.Color
	Selection     lipgloss.Color
	SelectionText lipgloss.Color

	// Chapter group badges
	BadgeSerial     lipgloss.Color
	BadgeSerialText lipgloss.Color
	BadgeExtra      lipgloss.Color
	BadgeExtraText  lipgloss.Color
}

// Built-in themes
var (
	// DarkTheme is the default dark theme
	DarkTheme = Theme{
		Name:            "dark",
		Description:     "Dark theme (default)",
		Primary:         lipgloss.Color("#E11D48"),
		Secondary:       lipgloss.Color("#06B6D4"),
		Background:      lipgloss.Color("#111827"),
		Foreground:      lipgloss.Color("#F9FAFB"),
		Success:         lipgloss.Color("#10B981"),
		Warning:         lipgloss.Color("#F59E0B"),
		Error:           lipgloss.Color("#EF4444"),
		Muted:           lipgloss.Color("#6B7280"),
		Border:          lipgloss.Color("#374151"),
		Selection:       lipgloss.Color("#E11D48"),
		SelectionText:   lipgloss.Color("#F9FAFB"),
		BadgeSerial:     lipgloss.Color("#06B6D4"),
		BadgeSerialText: lipgloss.Color("#111827"),
		BadgeExtra:      lipgloss.Color("#F59E0B"),
		BadgeExtraText:  lipgloss.Color("#111827"),
	}

	// PaperTheme imitates black ink on white paper
	PaperTheme = Theme{
		Name:            "paper",
		Description:     "Light theme",
		Primary:         lipgloss.Color("#111111"),
		Secondary:       lipgloss.Color("#4B5563"),
		Background:      lipgloss.Color("#FFFFFF"),
		Foreground:      lipgloss.Color("#111111"),
		Success:         lipgloss.Color("#047857"),
		Warning:         lipgloss.Color("#B45309"),
		Error:           lipgloss.Color("#B91C1C"),
		Muted:           lipgloss.Color("#9CA3AF"),
		Border:          lipgloss.Color("#E5E7EB"),
		Selection:       lipgloss.Color("#111111"),
		SelectionText:   lipgloss.Color("#FFFFFF"),
		BadgeSerial:     lipgloss.Color("#111111"),
		BadgeSerialText: lipgloss.Color("#FFFFFF"),
		BadgeExtra:      lipgloss.Color("#9CA3AF"),
		BadgeExtraText:  lipgloss.Color("#111111"),
	}

	// NordTheme is based on the Nord color palette
	NordTheme = Theme{
		Name:            "nord",
		Description:     "Nord theme",
		Primary:         lipgloss.Color("#88C0D0"),
		Secondary:       lipgloss.Color("#81A1C1"),
		Background:      lipgloss.Color("#2E3440"),
		Foreground:      lipgloss.Color("#ECEFF4"),
		Success:         lipgloss.Color("#A3BE8C"),
		Warning:         lipgloss.Color("#EBCB8B"),
		Error:           lipgloss.Color("#BF616A"),
		Muted:           lipgloss.Color("#4C566A"),
		Border:          lipgloss.Color("#3B4252"),
		Selection:       lipgloss.Color("#88C0D0"),
		SelectionText:   lipgloss.Color("#2E3440"),
		BadgeSerial:     lipgloss.Color("#A3BE8C"),
		BadgeSerialText: lipgloss.Color("#2E3440"),
		BadgeExtra:      lipgloss.Color("#EBCB8B"),
		BadgeExtraText:  lipgloss.Color("#2E3440"),
	}

	// GruvboxTheme is based on the Gruvbox color scheme
	GruvboxTheme = Theme{
		Name:            "gruvbox",
		Description:     "Gruvbox dark theme",
		Primary:         lipgloss.Color("#D79921"),
		Secondary:       lipgloss.Color("#458588"),
		Background:      lipgloss.Color("#282828"),
		Foreground:      lipgloss.Color("#EBDBB2"),
		Success:         lipgloss.Color("#98971A"),
		Warning:         lipgloss.Color("#D79921"),
		Error:           lipgloss.Color("#CC241D"),
		Muted:           lipgloss.Color("#928374"),
		Border:          lipgloss.Color("#3C3836"),
		Selection:       lipgloss.Color("#D79921"),
		SelectionText:   lipgloss.Color("#282828"),
		BadgeSerial:     lipgloss.Color("#98971A"),
		BadgeSerialText: lipgloss.Color("#282828"),
		BadgeExtra:      lipgloss.Color("#B16286"),
		BadgeExtraText:  lipgloss.Color("#282828"),
	}

	// BuiltinThemes is a list of all available built-in themes
	BuiltinThemes = []Theme{
		DarkTheme,
		PaperTheme,
		NordTheme,
		GruvboxTheme,
	}

	currentTheme = DarkTheme
)

// GetTheme returns a theme by name, or the default theme if not found
func GetTheme(name string) Theme {
	for _, t := range BuiltinThemes {
		if t.Name == name {
			return t
		}
	}
	return DarkTheme
}

// CurrentTheme returns the currently active theme
func CurrentTheme() Theme {
	return currentTheme
}

// SetCurrentTheme sets the active theme by name
func SetCurrentTheme(name string) {
	currentTheme = GetTheme(name)
	ApplyTheme(currentTheme)
}

// NextTheme cycles to the next theme and returns its name
func NextTheme() string {
	for i, t := range BuiltinThemes {
		if t.Name == currentTheme.Name {
			next := BuiltinThemes[(i+1)%len(BuiltinThemes)]
			SetCurrentTheme(next.Name)
			return next.Name
		}
	}
	return currentTheme.Name
}

// ApplyTheme rebuilds every global style from the theme's colors
func ApplyTheme(theme Theme) {
	build(theme)
}

func init() {
	ApplyTheme(DarkTheme)
}
