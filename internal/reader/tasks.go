package reader

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Task names a scheduled, independently cancellable timer
type Task int

const (
	TaskMenuToggle Task = iota
	TaskScrollDebounce
	TaskSwipeSettle
	TaskClose
	TaskVisible
	TaskStartPage
	TaskProgress
	taskCount
)

// String returns the task name used in logs
func (t Task) String() string {
	switch t {
	case TaskMenuToggle:
		return "menu-toggle"
	case TaskScrollDebounce:
		return "scroll-debounce"
	case TaskSwipeSettle:
		return "swipe-settle"
	case TaskClose:
		return "close"
	case TaskVisible:
		return "visible"
	case TaskStartPage:
		return "start-page"
	case TaskProgress:
		return "progress"
	default:
		return "unknown"
	}
}

// Scheduler starts and cancels named tasks. Scheduling a task that is
// already pending replaces it.
type Scheduler interface {
	Schedule(t Task, d time.Duration)
	Cancel(t Task)
	Pending(t Task) bool
}

// taskFiredMsg is delivered when a scheduled task's timer elapses
type taskFiredMsg struct {
	session string
	task    Task
	gen     uint64
}

// tasks implements Scheduler with tea.Tick. Each schedule bumps the task's
// generation; a fire whose generation is stale was cancelled or replaced.
// Commands accumulate until the session's Update drains them.
type tasks struct {
	session string
	gen     [taskCount]uint64
	pending [taskCount]bool
	cmds    []tea.Cmd
	tick    func(time.Duration, func(time.Time) tea.Msg) tea.Cmd
}

func newTasks(session string) *tasks {
	return &tasks{session: session, tick: tea.Tick}
}

func (s *tasks) Schedule(t Task, d time.Duration) {
	s.gen[t]++
	s.pending[t] = true
	msg := taskFiredMsg{session: s.session, task: t, gen: s.gen[t]}
	if cmd := s.tick(d, func(time.Time) tea.Msg { return msg }); cmd != nil {
		s.cmds = append(s.cmds, cmd)
	}
}

func (s *tasks) Cancel(t Task) {
	s.gen[t]++
	s.pending[t] = false
}

func (s *tasks) Pending(t Task) bool {
	return s.pending[t]
}

// fire reports whether msg is the live timer of its task and marks it done
func (s *tasks) fire(msg taskFiredMsg) bool {
	if msg.gen != s.gen[msg.task] || !s.pending[msg.task] {
		return false
	}
	s.pending[msg.task] = false
	return true
}

// cancelAll invalidates every outstanding timer
func (s *tasks) cancelAll() {
	for t := Task(0); t < taskCount; t++ {
		s.Cancel(t)
	}
}

// drain returns the accumulated commands and resets the queue
func (s *tasks) drain() []tea.Cmd {
	cmds := s.cmds
	s.cmds = nil
	return cmds
}
