package views

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/justyntemme/raito-t/internal/reader"
)

// SessionHost gives a reading session access to the view stack and the
// loading overlay through messages handled by the app.
type SessionHost struct {
	// SessionID names the view Pop removes. It is set once the session
	// exists.
	SessionID string
}

func (h *SessionHost) PushLoader() tea.Cmd { return ShowLoader(true) }

func (h *SessionHost) PopLoader() tea.Cmd { return ShowLoader(false) }

// PushNotice shows the boundary notice for dir
func (h *SessionHost) PushNotice(dir reader.Direction) tea.Cmd {
	return Push(NewNoticeView(EdgeNotice(dir)))
}

// Pop removes the session's view
func (h *SessionHost) Pop() tea.Cmd {
	if h.SessionID == "" {
		return nil
	}
	return Pop(h.SessionID)
}

// EdgeNotice returns the text shown when no chapter exists in dir
func EdgeNotice(dir reader.Direction) string {
	if dir == reader.Previous {
		return "No previous chapter"
	}
	return "No next chapter"
}
