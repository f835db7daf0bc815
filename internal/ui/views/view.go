package views

import (
	"image"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/justyntemme/raito-t/pkg/models"
)

// ViewType represents different screens in the application
type ViewType int

const (
	ViewHome ViewType = iota
	ViewChapters
	ViewSession
	ViewPage
	ViewNotice
)

// String returns the name of the view
func (v ViewType) String() string {
	switch v {
	case ViewHome:
		return "Home"
	case ViewChapters:
		return "Chapters"
	case ViewSession:
		return "Reading Session"
	case ViewPage:
		return "Page"
	case ViewNotice:
		return "Notice"
	default:
		return "Unknown"
	}
}

// View is the interface that all views must implement
type View interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (View, tea.Cmd)
	View() string
	SetSize(width, height int)
	Type() ViewType
}

// Identified is implemented by views that can be popped by id from
// anywhere in the stack
type Identified interface {
	ID() string
}

// Message types for inter-view communication

// OpenMangaMsg asks for the chapter list of a manga
type OpenMangaMsg struct {
	MangaID string
}

// OpenChapterMsg starts a reading session
type OpenChapterMsg struct {
	Manga     *models.Manga
	ChapterID string
	// Page is the page to start on, nil for the top of the chapter
	Page *int
}

// PushMsg puts a view on top of the stack
type PushMsg struct {
	View View
}

// PopMsg removes a view. An empty ID pops the top view.
type PopMsg struct {
	ID string
}

// LoaderMsg shows or hides the loading overlay. Shows and hides nest.
type LoaderMsg struct {
	Show bool
}

// InspectPageMsg opens a single page in the inspector
type InspectPageMsg struct {
	Title string
	Image image.Image
}

// ErrorMsg is sent when an error occurs
type ErrorMsg struct {
	Err error
}

// ClearErrorMsg clears the current error
type ClearErrorMsg struct{}

// Helper functions to create messages

// SendError creates an error message command
func SendError(err error) tea.Cmd {
	return func() tea.Msg {
		return ErrorMsg{Err: err}
	}
}

// ClearError creates a command to clear errors
func ClearError() tea.Cmd {
	return func() tea.Msg {
		return ClearErrorMsg{}
	}
}

// Push creates a command that pushes v
func Push(v View) tea.Cmd {
	return func() tea.Msg {
		return PushMsg{View: v}
	}
}

// Pop creates a command that pops the view with the given id, or the top
// view when id is empty
func Pop(id string) tea.Cmd {
	return func() tea.Msg {
		return PopMsg{ID: id}
	}
}

// ShowLoader creates a command that shows or hides the loading overlay
func ShowLoader(show bool) tea.Cmd {
	return func() tea.Msg {
		return LoaderMsg{Show: show}
	}
}
