package views

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/justyntemme/raito-t/internal/config"
	"github.com/justyntemme/raito-t/internal/logging"
	"github.com/justyntemme/raito-t/internal/reader"
	"github.com/justyntemme/raito-t/internal/ui/styles"
	"github.com/justyntemme/raito-t/internal/ui/terminal"
	"github.com/justyntemme/raito-t/pkg/models"
)

// maxCachedBlocks bounds the rendered page cache
const maxCachedBlocks = 256

// SessionDeps are the services a reading session talks to
type SessionDeps struct {
	Catalog reader.ChapterSource
	Images  reader.ImageSource
	History reader.ProgressStore
}

type sessionKeys struct {
	reader.KeyMap
	Inspect key.Binding
	Display key.Binding
}

func defaultSessionKeys() sessionKeys {
	return sessionKeys{
		KeyMap: reader.DefaultKeyMap(),
		Inspect: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "inspect page"),
		),
		Display: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "display mode"),
		),
	}
}

// ShortHelp implements help.KeyMap
func (k sessionKeys) ShortHelp() []key.Binding {
	return append(k.KeyMap.ShortHelp(), k.Inspect, k.Display)
}

// FullHelp implements help.KeyMap
func (k sessionKeys) FullHelp() [][]key.Binding {
	return append(k.KeyMap.FullHelp(), []key.Binding{k.Inspect, k.Display})
}

type blockKey struct {
	page       models.PageID
	cols, rows int
}

// SessionView draws a reading session as half-block pages in a scrolling
// stream with a status row below it.
type SessionView struct {
	session *reader.Session
	host    *SessionHost
	cfg     *config.Config
	keys    sessionKeys
	help    help.Model

	blocks map[blockKey][]string

	cellW, cellH int
	width        int
	height       int
}

// NewSessionView creates the view and its closed session. Init opens it.
func NewSessionView(ctx context.Context, cfg *config.Config, deps SessionDeps, open OpenChapterMsg) *SessionView {
	cw, ch := cfg.CellSize()
	host := &SessionHost{}
	s := reader.New(ctx, reader.Options{
		Manga:      open.Manga,
		ChapterID:  open.ChapterID,
		StartPage:  open.Page,
		Settings:   cfg.Settings(),
		Catalog:    deps.Catalog,
		Images:     deps.Images,
		History:    deps.History,
		Host:       host,
		CellWidth:  float64(cw),
		CellHeight: float64(ch),
	})
	host.SessionID = s.ID()

	v := &SessionView{
		session: s,
		host:    host,
		cfg:     cfg,
		keys:    defaultSessionKeys(),
		help:    help.New(),
		blocks:  make(map[blockKey][]string),
		cellW:   cw,
		cellH:   ch,
	}
	v.SetSize(80, 24)
	return v
}

// ID returns the session id, which is how the session pops itself
func (v *SessionView) ID() string { return v.session.ID() }

// Session returns the wrapped reading session
func (v *SessionView) Session() *reader.Session { return v.session }

// Init implements View
func (v *SessionView) Init() tea.Cmd {
	return v.session.Init()
}

// Update implements View
func (v *SessionView) Update(msg tea.Msg) (View, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && v.session.Visible() {
		switch {
		case key.Matches(msg, v.keys.Inspect):
			return v, v.inspect()
		case key.Matches(msg, v.keys.Display):
			return v, v.cycleDisplayMode()
		}
	}
	return v, v.session.Update(msg)
}

func (v *SessionView) inspect() tea.Cmd {
	cur, ok := v.session.Current()
	if !ok {
		return nil
	}
	img, ok := v.session.Image(cur)
	if !ok {
		return nil
	}
	title := fmt.Sprintf("%s · %s · p.%d", v.session.MangaTitle(), v.session.ChapterTitle(), cur.Page+1)
	return func() tea.Msg {
		return InspectPageMsg{Title: title, Image: img}
	}
}

func (v *SessionView) cycleDisplayMode() tea.Cmd {
	err := v.cfg.CycleDisplayMode()
	v.session.SetDisplayMode(v.cfg.Settings().DisplayMode)
	if err != nil {
		logging.Logger().Warn("save display mode", "err", err)
		return SendError(fmt.Errorf("save display mode: %w", err))
	}
	return nil
}

// SetSize implements View. The bottom row is the status bar; the rest is
// the session viewport.
func (v *SessionView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.help.Width = width
	v.session.Resize(float64(width*v.cellW), float64(v.contentRows()*v.cellH))
}

// Type implements View
func (v *SessionView) Type() ViewType { return ViewSession }

func (v *SessionView) contentRows() int {
	return max(0, v.height-1)
}

// View implements View
func (v *SessionView) View() string {
	rows := v.contentRows()
	var lines []string
	if v.session.Visible() {
		lines = composeRows(v.width, rows, v.segments())
	} else {
		lines = composeRows(v.width, rows, nil)
	}
	if v.session.MenuOpen() && rows > 0 {
		lines[0] = v.renderMenuBar()
	}
	return strings.Join(append(lines, v.renderStatus()), "\n")
}

// segment is a run of rendered cells starting at a screen column
type segment struct {
	row, col, width int
	text            string
}

// segments renders every visible page into screen-row segments
func (v *SessionView) segments() []segment {
	vp := v.session.Viewport()
	shift := v.session.Translation()
	var segs []segment
	for _, p := range v.session.Layout().Visible(vp) {
		col := int(math.Floor((p.Rect.X - vp.ScrollLeft + shift) / float64(v.cellW)))
		row := int(math.Floor((p.Rect.Y - vp.ScrollTop) / float64(v.cellH)))
		cols := max(1, int(math.Round(p.Rect.W/float64(v.cellW))))
		rows := max(1, int(math.Round(p.Rect.H/float64(v.cellH))))
		for i, line := range v.renderPage(p.ID, cols, rows) {
			segs = append(segs, segment{row: row + i, col: col, width: cols, text: line})
		}
	}
	return segs
}

// renderPage returns the page as rows lines of cols cells
func (v *SessionView) renderPage(id models.PageID, cols, rows int) []string {
	img, ok := v.session.Image(id)
	if !ok {
		return placeholder(id, v.session.Failed(id), cols, rows)
	}
	k := blockKey{page: id, cols: cols, rows: rows}
	if lines, ok := v.blocks[k]; ok {
		return lines
	}
	lines, err := terminal.RenderBlocks(img, cols, rows)
	if err != nil {
		logging.Logger().Warn("render page", "page", id.String(), "err", err)
		return placeholder(id, true, cols, rows)
	}
	if len(v.blocks) >= maxCachedBlocks {
		clear(v.blocks)
	}
	v.blocks[k] = lines
	return lines
}

func placeholder(id models.PageID, failed bool, cols, rows int) []string {
	label := fmt.Sprintf("%d", id.Page+1)
	if failed {
		label = "✕ " + label
	}
	box := styles.PagePlaceholder.
		Width(cols).
		Height(rows).
		Align(lipgloss.Center, lipgloss.Center).
		Render(styles.TruncateText(label, cols))
	return strings.Split(box, "\n")
}

// composeRows lays segments out on a width x rows grid. Segments are
// clipped to the screen; earlier columns win where segments overlap.
func composeRows(width, rows int, segs []segment) []string {
	byRow := make([][]segment, rows)
	for _, s := range segs {
		if s.row < 0 || s.row >= rows {
			continue
		}
		byRow[s.row] = append(byRow[s.row], s)
	}

	out := make([]string, rows)
	blank := strings.Repeat(" ", max(0, width))
	for r, row := range byRow {
		if len(row) == 0 {
			out[r] = blank
			continue
		}
		sort.Slice(row, func(i, j int) bool { return row[i].col < row[j].col })

		var b strings.Builder
		cursor := 0
		for _, s := range row {
			left := max(0, cursor-s.col)
			right := min(s.width, width-s.col)
			if right <= left {
				continue
			}
			b.WriteString(strings.Repeat(" ", s.col+left-cursor))
			b.WriteString(ansi.Cut(s.text, left, right))
			cursor = s.col + right
		}
		if cursor < width {
			b.WriteString(strings.Repeat(" ", width-cursor))
		}
		out[r] = b.String()
	}
	return out
}

func (v *SessionView) renderMenuBar() string {
	title := styles.MenuTitle.Render(styles.TruncateText(v.session.MangaTitle(), max(10, v.width/3)))
	if ch := v.session.ChapterTitle(); ch != "" {
		title += styles.MutedText.Render(" · ") + styles.ChapterTitle.Render(ch)
	}

	var info []string
	if page := v.session.Page(); page >= 0 {
		info = append(info, fmt.Sprintf("%d/%d", page+1, v.session.MaxPage()+1))
	}
	if v.session.ZoomEnabled() {
		info = append(info, fmt.Sprintf("%d%%", int(v.session.Scale()*100)))
	}
	mode := v.cfg.Settings().DisplayMode.String()
	if v.session.PageOffset() && !v.session.OnePage() {
		mode += " +1"
	}
	info = append(info, mode)
	right := styles.MenuPage.Render(strings.Join(info, "  "))

	gap := max(0, v.width-lipgloss.Width(title)-lipgloss.Width(right)-2)
	return styles.MenuBar.Width(v.width).Render(title + strings.Repeat(" ", gap) + right)
}

func (v *SessionView) renderStatus() string {
	if err := v.session.Err(); err != nil {
		return styles.ErrorStyle.Render(styles.TruncateText("Error: "+err.Error(), max(0, v.width-2)))
	}
	if v.session.MenuOpen() {
		return v.help.View(v.keys)
	}
	if page := v.session.Page(); page >= 0 {
		status := fmt.Sprintf("%s  %d/%d", v.session.ChapterTitle(), page+1, v.session.MaxPage()+1)
		return styles.StatusBar.Render(styles.TruncateText(status, max(0, v.width-2)))
	}
	return ""
}
