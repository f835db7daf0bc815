package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/justyntemme/raito-t/internal/config"
	"github.com/justyntemme/raito-t/internal/ui/styles"
)

// HomeView lists recently read manga and takes a manga id to open
type HomeView struct {
	config *config.Config

	entries []config.RecentlyReadEntry
	list    listCursor

	inputMode bool
	input     textinput.Model

	width  int
	height int
}

// NewHomeView creates the start screen
func NewHomeView(cfg *config.Config) *HomeView {
	input := textinput.New()
	input.Placeholder = "Manga ID"
	input.CharLimit = 100
	input.Width = 40

	v := &HomeView{
		config: cfg,
		input:  input,
	}
	v.SetSize(80, 24)
	return v
}

// Init implements View
func (v *HomeView) Init() tea.Cmd {
	v.entries = v.config.RecentlyRead
	v.list.setLength(len(v.entries))
	return nil
}

// Update implements View
func (v *HomeView) Update(msg tea.Msg) (View, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if !v.inputMode {
			return v, nil
		}
		// cursor blink
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	if v.inputMode {
		switch keyMsg.String() {
		case "esc":
			v.inputMode = false
			v.input.Blur()
			return v, nil
		case "enter":
			id := strings.TrimSpace(v.input.Value())
			v.inputMode = false
			v.input.Blur()
			v.input.SetValue("")
			if id == "" {
				return v, nil
			}
			return v, openManga(id)
		default:
			var cmd tea.Cmd
			v.input, cmd = v.input.Update(keyMsg)
			return v, cmd
		}
	}

	switch keyMsg.String() {
	case "j", "down":
		v.list.move(1)
	case "k", "up":
		v.list.move(-1)
	case "g", "home":
		v.list.home()
	case "G", "end":
		v.list.end()
	case "o", "/":
		v.inputMode = true
		v.input.Focus()
		return v, textinput.Blink
	case "enter":
		if v.list.cursor < len(v.entries) {
			return v, openManga(v.entries[v.list.cursor].MangaID)
		}
	case "T":
		v.config.Theme = styles.NextTheme()
		if err := v.config.Save(); err != nil {
			return v, SendError(fmt.Errorf("save theme: %w", err))
		}
	case "q":
		return v, tea.Quit
	}
	return v, nil
}

// Typing reports whether the manga id prompt has focus
func (v *HomeView) Typing() bool { return v.inputMode }

func openManga(id string) tea.Cmd {
	return func() tea.Msg {
		return OpenMangaMsg{MangaID: id}
	}
}

// View implements View
func (v *HomeView) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleBar.Render(" raito-t ") + styles.Help.Render(" Recently Read") + "\n")
	if v.inputMode {
		b.WriteString(styles.InputFieldFocused.Render(v.input.View()) + "\n")
	}

	if len(v.entries) == 0 {
		b.WriteString(lipgloss.Place(
			v.width,
			v.list.visible,
			lipgloss.Center,
			lipgloss.Center,
			styles.MutedText.Render("Nothing read yet. Press o to open a manga by id."),
		))
	} else {
		from, to := v.list.window()
		for i := from; i < to; i++ {
			b.WriteString(v.renderEntry(v.entries[i], i == v.list.cursor) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(v.renderFooter())
	return b.String()
}

func (v *HomeView) renderEntry(e config.RecentlyReadEntry, selected bool) string {
	line := e.Title
	if line == "" {
		line = e.MangaID
	}
	when := e.OpenedAt.Format("2006-01-02")
	line = styles.TruncateText(line, max(10, v.width-len(when)-8))
	gap := max(1, v.width-lipgloss.Width(line)-len(when)-6)
	line += strings.Repeat(" ", gap) + when

	if selected {
		return styles.ListItemSelected.Width(v.width).Render("▸ " + line)
	}
	return styles.ListItem.Render("  " + line)
}

func (v *HomeView) renderFooter() string {
	help := []string{
		styles.HelpKey.Render("j/k") + styles.Help.Render(" nav"),
		styles.HelpKey.Render("enter") + styles.Help.Render(" open"),
		styles.HelpKey.Render("o") + styles.Help.Render(" open id"),
		styles.HelpKey.Render("T") + styles.Help.Render(" theme"),
		styles.HelpKey.Render("q") + styles.Help.Render(" quit"),
	}
	helpText := strings.Join(help, "  ")
	theme := styles.MutedText.Render(" [Theme: " + styles.CurrentTheme().Name + "] ")

	gap := max(0, v.width-lipgloss.Width(helpText)-lipgloss.Width(theme))
	return helpText + strings.Repeat(" ", gap) + theme
}

// SetSize implements View
func (v *HomeView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.input.Width = min(40, width-10)
	v.list.setVisible(height - 5)
}

// Type implements View
func (v *HomeView) Type() ViewType { return ViewHome }
