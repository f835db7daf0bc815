package views

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/justyntemme/raito-t/internal/history"
	"github.com/justyntemme/raito-t/internal/logging"
	"github.com/justyntemme/raito-t/internal/ui/styles"
	"github.com/justyntemme/raito-t/pkg/models"
)

// MangaSource fetches manga metadata with its chapter lists
type MangaSource interface {
	GetManga(ctx context.Context, id string) (*models.Manga, error)
}

// PositionSource reads the last saved reading position of a manga
type PositionSource interface {
	Last(ctx context.Context, mangaID string) (*models.ReadingPosition, error)
}

type chapterRow struct {
	chapter models.Chapter
	extra   bool
}

// ChaptersView lists the serial and extra chapters of one manga
type ChaptersView struct {
	ctx     context.Context
	source  MangaSource
	history PositionSource
	mangaID string

	manga *models.Manga
	last  *models.ReadingPosition
	rows  []chapterRow
	list  listCursor

	loading bool
	err     error

	width  int
	height int
}

// NewChaptersView creates the chapter list of mangaID. Init fetches it.
func NewChaptersView(ctx context.Context, source MangaSource, positions PositionSource, mangaID string) *ChaptersView {
	v := &ChaptersView{
		ctx:     ctx,
		source:  source,
		history: positions,
		mangaID: mangaID,
	}
	v.SetSize(80, 24)
	return v
}

// mangaLoadedMsg is sent when the manga and its last position arrive
type mangaLoadedMsg struct {
	mangaID string
	manga   *models.Manga
	last    *models.ReadingPosition
	err     error
}

// Init implements View
func (v *ChaptersView) Init() tea.Cmd {
	v.loading = true
	return v.load()
}

func (v *ChaptersView) load() tea.Cmd {
	ctx, source, positions, id := v.ctx, v.source, v.history, v.mangaID
	return func() tea.Msg {
		manga, err := source.GetManga(ctx, id)
		if err != nil {
			return mangaLoadedMsg{mangaID: id, err: fmt.Errorf("load manga %s: %w", id, err)}
		}
		last, err := positions.Last(ctx, id)
		if err != nil && !errors.Is(err, history.ErrNoPosition) {
			// the list is still usable without the marker
			logging.Logger().Warn("read last position", "manga", id, "err", err)
		}
		return mangaLoadedMsg{mangaID: id, manga: manga, last: last}
	}
}

// Update implements View
func (v *ChaptersView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case mangaLoadedMsg:
		if msg.mangaID != v.mangaID {
			return v, nil
		}
		v.loading = false
		v.err = msg.err
		if msg.err == nil {
			v.setManga(msg.manga, msg.last)
		}
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			v.list.move(1)
		case "k", "up":
			v.list.move(-1)
		case "g", "home":
			v.list.home()
		case "G", "end":
			v.list.end()
		case "ctrl+d", "pgdown":
			v.list.move(v.list.visible / 2)
		case "ctrl+u", "pgup":
			v.list.move(-v.list.visible / 2)
		case "enter":
			return v, v.open()
		case "c":
			// continue from the saved position
			if v.last != nil {
				v.selectChapter(v.last.ChapterID)
				return v, v.open()
			}
		case "r":
			return v, v.Init()
		case "q", "esc":
			return v, Pop("")
		}
	}
	return v, nil
}

func (v *ChaptersView) setManga(m *models.Manga, last *models.ReadingPosition) {
	v.manga = m
	v.last = last
	v.rows = v.rows[:0]
	for _, ch := range m.Chapters.Serial {
		v.rows = append(v.rows, chapterRow{chapter: ch})
	}
	for _, ch := range m.Chapters.Extra {
		v.rows = append(v.rows, chapterRow{chapter: ch, extra: true})
	}
	v.list.setLength(len(v.rows))
	if last != nil {
		v.selectChapter(last.ChapterID)
	}
}

func (v *ChaptersView) selectChapter(id string) {
	for i, row := range v.rows {
		if row.chapter.ID == id {
			v.list.cursor = i
			v.list.updateOffset()
			return
		}
	}
}

// open starts a session on the selected chapter, at the saved page when it
// is the last read chapter
func (v *ChaptersView) open() tea.Cmd {
	if v.manga == nil || v.list.cursor >= len(v.rows) {
		return nil
	}
	msg := OpenChapterMsg{Manga: v.manga, ChapterID: v.rows[v.list.cursor].chapter.ID}
	if v.last != nil && v.last.ChapterID == msg.ChapterID {
		page := v.last.Page
		msg.Page = &page
	}
	return func() tea.Msg { return msg }
}

// View implements View
func (v *ChaptersView) View() string {
	var b strings.Builder
	b.WriteString(v.renderHeader() + "\n")

	contentHeight := v.height - 4
	switch {
	case v.loading:
		b.WriteString(lipgloss.Place(v.width, contentHeight, lipgloss.Center, lipgloss.Center,
			styles.MutedText.Render("Loading chapters...")))
	case v.err != nil:
		b.WriteString(lipgloss.Place(v.width, contentHeight, lipgloss.Center, lipgloss.Center,
			styles.ErrorStyle.Render("Error: "+v.err.Error())))
	case len(v.rows) == 0:
		b.WriteString(lipgloss.Place(v.width, contentHeight, lipgloss.Center, lipgloss.Center,
			styles.MutedText.Render("No chapters")))
	default:
		from, to := v.list.window()
		for i := from; i < to; i++ {
			b.WriteString(v.renderRow(v.rows[i], i == v.list.cursor) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(v.renderFooter())
	return b.String()
}

func (v *ChaptersView) renderHeader() string {
	title := v.mangaID
	if v.manga != nil {
		title = v.manga.Title
	}
	left := styles.TitleBar.Render(" " + styles.TruncateText(title, max(10, v.width/2)) + " ")

	right := ""
	if v.manga != nil {
		right = styles.Help.Render(fmt.Sprintf(" %d chapters, %d extra ",
			len(v.manga.Chapters.Serial), len(v.manga.Chapters.Extra)))
	}
	gap := max(0, v.width-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", gap) + right
}

func (v *ChaptersView) renderRow(row chapterRow, selected bool) string {
	badge := styles.BadgeSerial.Render("S")
	if row.extra {
		badge = styles.BadgeExtra.Render("X")
	}

	marker := ""
	if v.last != nil && v.last.ChapterID == row.chapter.ID {
		marker = " " + styles.BadgeLastRead.Render(fmt.Sprintf("● p.%d", v.last.Page+1))
	}

	title := row.chapter.Title
	if title == "" {
		title = row.chapter.ID
	}
	title = styles.TruncateText(title, max(10, v.width-lipgloss.Width(marker)-12))

	if selected {
		return styles.ListItemSelected.Width(v.width).Render("▸ " + badge + " " + title + marker)
	}
	return styles.ListItem.Render("  "+badge+" "+title) + marker
}

func (v *ChaptersView) renderFooter() string {
	help := []string{
		styles.HelpKey.Render("j/k") + styles.Help.Render(" nav"),
		styles.HelpKey.Render("enter") + styles.Help.Render(" read"),
	}
	if v.last != nil {
		help = append(help, styles.HelpKey.Render("c")+styles.Help.Render(" continue"))
	}
	help = append(help,
		styles.HelpKey.Render("r")+styles.Help.Render(" refresh"),
		styles.HelpKey.Render("q")+styles.Help.Render(" back"),
	)
	return styles.FooterBar.Width(v.width).Render(strings.Join(help, "  "))
}

// SetSize implements View
func (v *ChaptersView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.list.setVisible(height - 6)
}

// Type implements View
func (v *ChaptersView) Type() ViewType { return ViewChapters }
