package reader

import (
	"context"
	"image"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"
	"github.com/justyntemme/raito-t/pkg/models"
)

type fakeHost struct {
	loaders int
	notices []Direction
	pops    int
}

func (h *fakeHost) PushLoader() tea.Cmd { h.loaders++; return nil }
func (h *fakeHost) PopLoader() tea.Cmd  { h.loaders--; return nil }
func (h *fakeHost) Pop() tea.Cmd        { h.pops++; return nil }
func (h *fakeHost) PushNotice(dir Direction) tea.Cmd {
	h.notices = append(h.notices, dir)
	return nil
}

type fakeHistory struct {
	saved []models.ReadingPosition
}

func (h *fakeHistory) Save(_ context.Context, ref models.ChapterRef, page int) error {
	h.saved = append(h.saved, models.ReadingPosition{MangaID: ref.MangaID, ChapterID: ref.ChapterID, Page: page})
	return nil
}

type sessionFixture struct {
	cat     *fakeCatalog
	host    *fakeHost
	history *fakeHistory
	clock   *fakeClock
	s       *Session
}

func newSessionFixture(t *testing.T, opening string, mutate func(*Options)) *sessionFixture {
	t.Helper()
	f := &sessionFixture{
		cat:     &fakeCatalog{pages: map[string]int{}},
		host:    &fakeHost{},
		history: &fakeHistory{},
		clock:   newFakeClock(),
	}
	opts := Options{
		Manga:     testManga(),
		ChapterID: opening,
		Settings:  Settings{DisplayMode: DisplayOnePage, ZoomEnabled: true, OverscrollToLoadPrevious: true},
		Catalog:   f.cat,
		History:   f.history,
		Host:      f.host,
		Now:       f.clock.now,
	}
	if mutate != nil {
		mutate(&opts)
	}
	f.s = New(context.Background(), opts)
	// timers are fired by hand
	f.s.tasks.tick = func(time.Duration, func(time.Time) tea.Msg) tea.Cmd { return nil }
	f.s.Resize(400, 600)
	return f
}

// run executes cmd and feeds every resulting message back into the session
func (f *sessionFixture) run(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			f.run(c)
		}
		return
	}
	f.run(f.s.Update(msg))
}

// fire delivers the live timer of task t
func (f *sessionFixture) fire(t Task) {
	f.run(f.s.Update(taskFiredMsg{session: f.s.id, task: t, gen: f.s.tasks.gen[t]}))
}

func (f *sessionFixture) open() {
	f.run(f.s.Init())
}

func TestSessionOpens(t *testing.T) {
	f := newSessionFixture(t, "c3", nil)

	if f.s.State() != StateClosed {
		t.Fatalf("new session state = %v", f.s.State())
	}
	f.open()

	if f.s.State() != StateShowing {
		t.Errorf("state = %v, expected showing", f.s.State())
	}
	if f.host.loaders != 0 {
		t.Errorf("loader left on the stack: %d", f.host.loaders)
	}
	if got := len(f.s.Layout().Pages); got != 10 {
		t.Errorf("laid out %d pages, expected 10", got)
	}
	if !f.s.tasks.Pending(TaskProgress) {
		t.Errorf("progress poll not running")
	}
}

func TestSessionChapterNotFoundCloses(t *testing.T) {
	f := newSessionFixture(t, "missing", nil)
	f.open()

	if f.s.State() != StateClosed {
		t.Errorf("state = %v, expected closed", f.s.State())
	}
	if f.host.pops != 1 || f.host.loaders != 0 {
		t.Errorf("host pops = %d loaders = %d, expected 1 and 0", f.host.pops, f.host.loaders)
	}
}

func TestSessionPersistsProgress(t *testing.T) {
	f := newSessionFixture(t, "c3", nil)
	f.open()

	f.fire(TaskProgress)
	f.fire(TaskProgress)
	f.s.vp.SetScroll(0, 600)
	f.fire(TaskProgress)

	want := []models.ReadingPosition{
		{MangaID: "m1", ChapterID: "c3", Page: 0},
		{MangaID: "m1", ChapterID: "c3", Page: 1},
	}
	if diff := cmp.Diff(want, f.history.saved); diff != "" {
		t.Errorf("saved mismatch (-want +got):\n%s", diff)
	}
	if f.s.Page() != 1 || f.s.MaxPage() != 9 || f.s.ChapterTitle() != "Chapter 3" {
		t.Errorf("menu shows page %d/%d of %q", f.s.Page(), f.s.MaxPage(), f.s.ChapterTitle())
	}
}

func TestSessionEdgeNotice(t *testing.T) {
	f := newSessionFixture(t, "c5", nil)
	f.open()

	f.s.vp.SetScroll(0, f.s.vp.MaxScrollTop())
	f.run(f.s.Update(tea.KeyMsg{Type: tea.KeyDown}))
	f.fire(TaskScrollDebounce)

	if diff := cmp.Diff([]Direction{Next}, f.host.notices); diff != "" {
		t.Errorf("notices mismatch (-want +got):\n%s", diff)
	}
	if f.s.State() != StateShowing {
		t.Errorf("edge closed the session")
	}
}

func TestSessionPreviousLoadKeepsPosition(t *testing.T) {
	f := newSessionFixture(t, "c3", nil)
	f.cat.pages["c2"] = 4
	f.open()

	// one page per row, 400 wide: every page is 600 tall
	f.s.vp.SetScroll(0, 0)
	f.run(f.s.Update(tea.KeyMsg{Type: tea.KeyUp}))
	f.fire(TaskScrollDebounce)

	if diff := cmp.Diff([]string{"c3", "c2"}, f.cat.fetched); diff != "" {
		t.Fatalf("fetched mismatch (-want +got):\n%s", diff)
	}
	if f.s.vp.ScrollTop != 2400 {
		t.Errorf("ScrollTop = %v, expected 2400 after prepending four pages", f.s.vp.ScrollTop)
	}
	r, _ := f.s.Layout().Rect(models.PageID{ChapterID: "c3", Page: 0})
	if r.Y != 2400 {
		t.Errorf("opening chapter starts at %v, expected 2400", r.Y)
	}
}

func TestSessionImageAboveViewportKeepsPosition(t *testing.T) {
	f := newSessionFixture(t, "c3", nil)
	f.open()
	f.s.vp.SetScroll(0, 1200)

	f.run(f.s.Update(imageLoadedMsg{
		session: f.s.id,
		page:    models.PageID{ChapterID: "c3", Page: 0},
		img:     image.NewRGBA(image.Rect(0, 0, 100, 200)),
	}))

	// page 0 grows from 600 to 800
	if f.s.vp.ScrollTop != 1400 {
		t.Errorf("ScrollTop = %v, expected 1400", f.s.vp.ScrollTop)
	}

	f.run(f.s.Update(imageLoadedMsg{
		session: f.s.id,
		page:    models.PageID{ChapterID: "c3", Page: 5},
		img:     image.NewRGBA(image.Rect(0, 0, 300, 100)),
	}))
	if f.s.vp.ScrollTop != 1400 {
		t.Errorf("page below the viewport moved it to %v", f.s.vp.ScrollTop)
	}
	if !f.s.wide[models.PageID{ChapterID: "c3", Page: 5}] {
		t.Errorf("landscape page not marked wide")
	}
}

func TestSessionStartPage(t *testing.T) {
	page := 3
	f := newSessionFixture(t, "c3", func(o *Options) {
		o.StartPage = &page
		o.Settings.StartPageTimeout = time.Second
	})
	f.open()

	f.fire(TaskStartPage)
	if f.s.vp.ScrollTop != 0 {
		t.Fatalf("scrolled before earlier pages loaded")
	}
	for i := 0; i < page; i++ {
		f.run(f.s.Update(imageLoadedMsg{
			session: f.s.id,
			page:    models.PageID{ChapterID: "c3", Page: i},
			img:     image.NewRGBA(image.Rect(0, 0, 200, 300)),
		}))
	}
	f.fire(TaskStartPage)

	// page 3 spans 1800..2400 in a 600 tall viewport
	if f.s.vp.ScrollTop != 1800 {
		t.Errorf("ScrollTop = %v, expected 1800", f.s.vp.ScrollTop)
	}
	if f.s.tasks.Pending(TaskStartPage) {
		t.Errorf("start page wait still running")
	}
}

func TestSessionStartPageTimeout(t *testing.T) {
	page := 2
	f := newSessionFixture(t, "c3", func(o *Options) {
		o.StartPage = &page
		o.Settings.StartPageTimeout = time.Second
	})
	f.open()

	f.clock.advance(500 * time.Millisecond)
	f.fire(TaskStartPage)
	if !f.s.tasks.Pending(TaskStartPage) {
		t.Fatalf("gave up before the timeout")
	}

	f.clock.advance(time.Second)
	f.fire(TaskStartPage)
	if f.s.vp.ScrollTop != 1200 {
		t.Errorf("ScrollTop = %v, expected 1200 after timeout", f.s.vp.ScrollTop)
	}
}

func TestSessionSwipeCloses(t *testing.T) {
	f := newSessionFixture(t, "c3", nil)
	f.open()

	f.run(f.s.Update(tea.MouseMsg{X: 1, Y: 10, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}))
	f.run(f.s.Update(tea.MouseMsg{X: 13, Y: 10, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft}))
	if got := f.s.Translation(); got != 104 {
		t.Errorf("Translation = %v, expected 104", got)
	}
	f.run(f.s.Update(tea.MouseMsg{X: 13, Y: 10, Action: tea.MouseActionRelease}))

	if f.s.State() != StateClosing {
		t.Fatalf("state = %v, expected closing", f.s.State())
	}
	if f.s.Visible() {
		t.Errorf("content still visible while closing")
	}
	if f.host.pops != 0 {
		t.Errorf("popped before the exit transition")
	}
	if f.s.tasks.Pending(TaskProgress) {
		t.Errorf("progress poll still running while closing")
	}

	f.fire(TaskClose)
	if f.s.State() != StateClosed || f.host.pops != 1 {
		t.Errorf("state = %v pops = %d, expected closed and 1", f.s.State(), f.host.pops)
	}
}

func TestSessionDropsStaleMessages(t *testing.T) {
	f := newSessionFixture(t, "c3", nil)
	f.open()
	other := chapterLoadedMsg{session: "other", dir: Next, chapter: models.Chapter{ID: "c4"}, urls: []string{"a"}, stamp: true}
	f.run(f.s.Update(other))
	if f.s.pages.Has("c4") {
		t.Fatalf("merged a chapter from another session")
	}

	f.s.Close()
	f.fire(TaskClose)
	late := other
	late.session = f.s.id
	f.run(f.s.Update(late))
	if f.s.pages.Has("c4") {
		t.Errorf("merged a chapter after teardown")
	}
	f.fire(TaskProgress)
	if len(f.history.saved) != 0 {
		t.Errorf("progress poll fired after teardown")
	}
}

func TestSessionZoomAndOffset(t *testing.T) {
	f := newSessionFixture(t, "c3", func(o *Options) {
		o.Settings.DisplayMode = DisplaySpread
	})
	f.open()

	f.s.ZoomIn()
	f.s.ZoomIn()
	f.s.ZoomIn()
	if f.s.Scale() != MaxScale {
		t.Errorf("Scale = %v, expected %v", f.s.Scale(), MaxScale)
	}
	if f.s.vp.ScrollWidth != 800 {
		t.Errorf("ScrollWidth = %v, expected 800", f.s.vp.ScrollWidth)
	}

	f.s.ToggleOffset()
	r, _ := f.s.Layout().Rect(models.PageID{ChapterID: "c3", Page: 0})
	if !f.s.PageOffset() || r.X != 400 {
		t.Errorf("offset = %v, page 0 at x %v; expected true and 400", f.s.PageOffset(), r.X)
	}
}

func TestSessionVisibility(t *testing.T) {
	f := newSessionFixture(t, "c3", nil)
	f.open()

	f.s.anchor.Record()
	f.run(f.s.Update(tea.BlurMsg{}))
	if f.s.anchor.Pending() || !f.s.hidden {
		t.Fatalf("blur: anchor pending = %v, hidden = %v", f.s.anchor.Pending(), f.s.hidden)
	}

	f.run(f.s.Update(tea.FocusMsg{}))
	if !f.s.hidden || !f.s.tasks.Pending(TaskVisible) {
		t.Fatalf("focus re-enabled restores before the grace period")
	}
	f.fire(TaskVisible)
	if f.s.hidden {
		t.Errorf("still hidden after the grace period")
	}

	// a blur inside the grace period cancels it
	f.run(f.s.Update(tea.FocusMsg{}))
	f.run(f.s.Update(tea.BlurMsg{}))
	if f.s.tasks.Pending(TaskVisible) || !f.s.hidden {
		t.Errorf("blur did not cancel the pending visible task")
	}
}

func TestSessionKeys(t *testing.T) {
	f := newSessionFixture(t, "c3", nil)
	f.open()
	press := func(k string) {
		msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		if k == "esc" {
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		}
		f.run(f.s.Update(msg))
	}

	press(" ")
	if got := f.s.vp.ScrollTop; got != 540 {
		t.Errorf("ScrollTop after page down = %v, expected 540", got)
	}
	if !f.s.tasks.Pending(TaskScrollDebounce) {
		t.Errorf("keyboard scroll did not count as a scroll event")
	}

	press("+")
	if f.s.Scale() != 1.5 {
		t.Errorf("Scale after + = %v", f.s.Scale())
	}
	press("-")
	if f.s.Scale() != 1 {
		t.Errorf("Scale after - = %v", f.s.Scale())
	}

	press("m")
	if !f.s.MenuOpen() {
		t.Fatalf("m did not open the menu")
	}
	press("esc")
	if f.s.MenuOpen() || f.s.State() != StateShowing {
		t.Fatalf("esc with the menu open: menu = %v, state = %v", f.s.MenuOpen(), f.s.State())
	}
	press("q")
	if f.s.State() != StateClosing {
		t.Errorf("state after q = %v, expected closing", f.s.State())
	}
}

func TestSessionSavesProgressInOrder(t *testing.T) {
	f := newSessionFixture(t, "c3", nil)
	f.open()
	poll := func() tea.Cmd {
		return f.s.Update(taskFiredMsg{session: f.s.id, task: TaskProgress, gen: f.s.tasks.gen[TaskProgress]})
	}

	// the first save stays in flight while the reader moves on
	first := poll()
	f.s.vp.SetScroll(0, 600)
	poll()
	f.s.vp.SetScroll(0, 1200)
	poll()
	if len(f.history.saved) != 0 {
		t.Fatalf("saved %v before the first save finished", f.history.saved)
	}

	f.run(first)
	want := []models.ReadingPosition{
		{MangaID: "m1", ChapterID: "c3", Page: 0},
		{MangaID: "m1", ChapterID: "c3", Page: 2},
	}
	if diff := cmp.Diff(want, f.history.saved); diff != "" {
		t.Errorf("saved mismatch (-want +got):\n%s", diff)
	}
}

func TestJumpTarget(t *testing.T) {
	tests := []struct {
		n, maxPage int
		want       int
	}{
		{n: 1, maxPage: 17, want: 0},
		{n: 9, maxPage: 17, want: 17},
		{n: 5, maxPage: 16, want: 8},
		{n: 9, maxPage: 0, want: 0},
	}
	for _, tt := range tests {
		if got := jumpTarget(tt.n, tt.maxPage); got != tt.want {
			t.Errorf("jumpTarget(%d, %d) = %d, expected %d", tt.n, tt.maxPage, got, tt.want)
		}
	}
}
