package views

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/justyntemme/raito-t/internal/ui/styles"
)

// LoaderView is the loading overlay. Shows nest: the overlay is drawn
// while Active.
type LoaderView struct {
	spinner spinner.Model
	depth   int
	width   int
	height  int
}

// NewLoaderView creates a hidden loading overlay
func NewLoaderView() *LoaderView {
	s := spinner.New(spinner.WithSpinner(spinner.Dot))
	s.Style = styles.Spinner
	return &LoaderView{spinner: s, width: 80, height: 24}
}

// Show raises the nesting depth. The returned command starts the spinner
// when the overlay becomes visible.
func (v *LoaderView) Show() tea.Cmd {
	v.depth++
	if v.depth == 1 {
		return v.spinner.Tick
	}
	return nil
}

// Hide lowers the nesting depth
func (v *LoaderView) Hide() {
	if v.depth > 0 {
		v.depth--
	}
}

// Active reports whether the overlay is shown
func (v *LoaderView) Active() bool { return v.depth > 0 }

// Update advances the spinner while the overlay is shown
func (v *LoaderView) Update(msg tea.Msg) tea.Cmd {
	if _, ok := msg.(spinner.TickMsg); !ok || !v.Active() {
		return nil
	}
	var cmd tea.Cmd
	v.spinner, cmd = v.spinner.Update(msg)
	return cmd
}

// View renders the overlay
func (v *LoaderView) View() string {
	return lipgloss.Place(v.width, v.height, lipgloss.Center, lipgloss.Center,
		v.spinner.View()+" "+styles.MutedText.Render("Loading..."))
}

// SetSize sets the overlay area
func (v *LoaderView) SetSize(width, height int) {
	v.width = width
	v.height = height
}
