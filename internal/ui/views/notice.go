package views

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/justyntemme/raito-t/internal/ui/styles"
)

// NoticeView is a dismissible message drawn over the view below it. Any key
// or click pops it.
type NoticeView struct {
	text   string
	width  int
	height int
}

// NewNoticeView creates a notice showing text
func NewNoticeView(text string) *NoticeView {
	return &NoticeView{text: text, width: 80, height: 24}
}

// Text returns the notice message
func (v *NoticeView) Text() string { return v.text }

// Init implements View
func (v *NoticeView) Init() tea.Cmd { return nil }

// Update implements View
func (v *NoticeView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return v, Pop("")
	case tea.MouseMsg:
		if msg.Action == tea.MouseActionRelease {
			return v, Pop("")
		}
	}
	return v, nil
}

// View implements View
func (v *NoticeView) View() string {
	box := styles.Dialog.Render(
		styles.WarningStyle.Render(v.text) + "\n\n" +
			styles.Help.Render("press any key"),
	)
	return lipgloss.Place(v.width, v.height, lipgloss.Center, lipgloss.Center, box)
}

// SetSize implements View
func (v *NoticeView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// Type implements View
func (v *NoticeView) Type() ViewType { return ViewNotice }
