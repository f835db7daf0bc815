package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/justyntemme/raito-t/internal/config"
	"github.com/justyntemme/raito-t/internal/history"
	"github.com/justyntemme/raito-t/internal/logging"
	"github.com/justyntemme/raito-t/internal/reader"
	"github.com/justyntemme/raito-t/internal/ui/styles"
	"github.com/justyntemme/raito-t/internal/ui/terminal"
	"github.com/justyntemme/raito-t/internal/ui/views"
)

// detectTerminal probes the terminal's graphics protocol
var detectTerminal = terminal.DetectTerminalMode

// Catalog is the manga server as seen by the UI
type Catalog interface {
	views.MangaSource
	reader.ChapterSource
}

// Deps are the services the app hands to its views
type Deps struct {
	Catalog Catalog
	Images  reader.ImageSource
	History history.Store
}

// Start selects what the app opens first. With no manga the recently read
// list is shown.
type Start struct {
	MangaID   string
	ChapterID string
	Page      *int
}

// App is the main application model. Views form a stack: keys and mouse
// events go to the top view only, everything else reaches every view so
// timers of covered views keep running.
type App struct {
	ctx    context.Context
	config *config.Config
	deps   Deps
	start  Start
	keys   KeyMap

	stack    []views.View
	loader   *views.LoaderView
	termMode terminal.TermImageMode

	// Window dimensions
	width  int
	height int

	err      error
	showHelp bool
}

// NewApp creates a new application instance
func NewApp(ctx context.Context, cfg *config.Config, deps Deps, start Start) *App {
	styles.SetCurrentTheme(cfg.Theme)

	app := &App{
		ctx:      ctx,
		config:   cfg,
		deps:     deps,
		start:    start,
		keys:     DefaultKeyMap(),
		loader:   views.NewLoaderView(),
		termMode: detectTerminal(),
		width:    80,
		height:   24,
	}
	app.stack = []views.View{views.NewHomeView(cfg)}
	return app
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		a.top().Init(),
		tea.SetWindowTitle("raito-t"),
	}
	if a.start.MangaID == "" {
		return tea.Batch(cmds...)
	}
	open := func() tea.Msg { return views.OpenMangaMsg{MangaID: a.start.MangaID} }
	if a.start.ChapterID == "" {
		return tea.Batch(append(cmds, open)...)
	}
	return tea.Batch(append(cmds, tea.Sequence(open, a.openStartChapter()))...)
}

// openStartChapter fetches the start manga and opens its start chapter
func (a *App) openStartChapter() tea.Cmd {
	ctx, catalog, start := a.ctx, a.deps.Catalog, a.start
	return func() tea.Msg {
		manga, err := catalog.GetManga(ctx, start.MangaID)
		if err != nil {
			return views.ErrorMsg{Err: fmt.Errorf("load manga %s: %w", start.MangaID, err)}
		}
		return views.OpenChapterMsg{Manga: manga, ChapterID: start.ChapterID, Page: start.Page}
	}
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.loader.SetSize(msg.Width, msg.Height)
		for _, v := range a.stack {
			v.SetSize(msg.Width, msg.Height)
		}
		return a, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, a.keys.Quit):
			return a, tea.Quit
		case a.showHelp:
			a.showHelp = false
			return a, nil
		case key.Matches(msg, a.keys.Help) && !a.typing():
			a.showHelp = true
			return a, nil
		}
		if a.loader.Active() && !key.Matches(msg, a.keys.Escape) {
			return a, nil
		}
		return a, a.updateTop(msg)

	case tea.MouseMsg:
		if a.showHelp || a.loader.Active() {
			return a, nil
		}
		return a, a.updateTop(msg)

	case views.OpenMangaMsg:
		return a, a.push(views.NewChaptersView(a.ctx, a.deps.Catalog, a.deps.History, msg.MangaID))

	case views.OpenChapterMsg:
		return a, a.openSession(msg)

	case views.InspectPageMsg:
		return a, a.push(views.NewPageView(msg.Title, msg.Image, a.termMode))

	case views.PushMsg:
		return a, a.push(msg.View)

	case views.PopMsg:
		return a, a.pop(msg.ID)

	case views.LoaderMsg:
		if msg.Show {
			return a, a.loader.Show()
		}
		a.loader.Hide()
		return a, nil

	case spinner.TickMsg:
		return a, a.loader.Update(msg)

	case views.ErrorMsg:
		a.err = msg.Err
		logging.Logger().Warn("ui error", "err", msg.Err)
		return a, nil

	case views.ClearErrorMsg:
		a.err = nil
		return a, nil
	}

	return a, a.broadcast(msg)
}

// typing reports whether the top view is collecting text input
func (a *App) typing() bool {
	h, ok := a.top().(*views.HomeView)
	return ok && h.Typing()
}

func (a *App) openSession(msg views.OpenChapterMsg) tea.Cmd {
	if msg.Manga == nil {
		return nil
	}
	if err := a.config.AddRecentlyRead(msg.Manga.ID, msg.Manga.Title, msg.ChapterID); err != nil {
		logging.Logger().Warn("save recently read", "manga", msg.Manga.ID, "err", err)
	}
	v := views.NewSessionView(a.ctx, a.config, views.SessionDeps{
		Catalog: a.deps.Catalog,
		Images:  a.deps.Images,
		History: a.deps.History,
	}, msg)
	return a.push(v)
}

func (a *App) top() views.View {
	return a.stack[len(a.stack)-1]
}

func (a *App) updateTop(msg tea.Msg) tea.Cmd {
	i := len(a.stack) - 1
	v, cmd := a.stack[i].Update(msg)
	a.stack[i] = v
	return cmd
}

func (a *App) broadcast(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	for i, v := range a.stack {
		next, cmd := v.Update(msg)
		a.stack[i] = next
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (a *App) push(v views.View) tea.Cmd {
	v.SetSize(a.width, a.height)
	a.stack = append(a.stack, v)
	a.err = nil
	logging.Logger().Debug("push view", "view", v.Type().String(), "depth", len(a.stack))
	return v.Init()
}

// pop removes the view with id, or the top view when id is empty. The home
// view is never popped. Revealing a view re-initializes it.
func (a *App) pop(id string) tea.Cmd {
	i := len(a.stack) - 1
	if id != "" {
		i = a.indexOf(id)
	}
	if i <= 0 {
		return nil
	}
	removed := a.stack[i]
	a.stack = append(a.stack[:i], a.stack[i+1:]...)
	logging.Logger().Debug("pop view", "view", removed.Type().String(), "depth", len(a.stack))

	if i != len(a.stack) {
		return nil
	}
	if removed.Type() == views.ViewPage {
		terminal.ClearPage(a.termMode)
	}
	return a.top().Init()
}

func (a *App) indexOf(id string) int {
	for i := len(a.stack) - 1; i >= 0; i-- {
		if v, ok := a.stack[i].(views.Identified); ok && v.ID() == id {
			return i
		}
	}
	return -1
}

// View implements tea.Model
func (a *App) View() string {
	if a.showHelp {
		return a.renderHelp()
	}
	if a.loader.Active() {
		return a.loader.View()
	}

	content := a.top().View()
	if a.err != nil {
		errorBar := styles.ErrorStyle.Render("Error: " + a.err.Error())
		content = lipgloss.JoinVertical(lipgloss.Left, content, errorBar)
	}
	return content
}

// Stack returns the view types from bottom to top
func (a *App) Stack() []views.ViewType {
	types := make([]views.ViewType, len(a.stack))
	for i, v := range a.stack {
		types[i] = v.Type()
	}
	return types
}

// renderHelp renders the help overlay
func (a *App) renderHelp() string {
	help := styles.Dialog.Width(60).Render(
		styles.DialogTitle.Render("Keyboard Shortcuts") + "\n\n" +
			styles.HelpKey.Render("Reading") + "\n" +
			"  j/k ↑/↓   Scroll\n" +
			"  space/b   Page down/up\n" +
			"  m         Menu\n" +
			"  +/-       Zoom in/out\n" +
			"  o         Shift spread pairing\n" +
			"  v         Cycle display mode\n" +
			"  1-9       Jump within chapter\n" +
			"  i         Inspect page\n" +
			"  q/Esc     Close\n\n" +
			styles.HelpKey.Render("Mouse") + "\n" +
			"  click     Menu\n" +
			"  dbl-click Zoom\n" +
			"  drag      Pan\n" +
			"  drag from left edge  Close\n\n" +
			styles.HelpKey.Render("Lists") + "\n" +
			"  j/k       Move\n" +
			"  Enter     Open\n" +
			"  c         Continue reading\n" +
			"  o         Open manga by id\n" +
			"  T         Next theme\n\n" +
			styles.HelpKey.Render("General") + "\n" +
			"  ?         Toggle help\n" +
			"  Ctrl+c    Quit\n",
	)

	return lipgloss.Place(
		a.width,
		a.height,
		lipgloss.Center,
		lipgloss.Center,
		help,
	)
}
