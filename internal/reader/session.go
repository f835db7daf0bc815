package reader

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/justyntemme/raito-t/internal/logging"
	"github.com/justyntemme/raito-t/pkg/models"
)

// ErrStartPageTimeout is logged when the requested start page did not
// finish loading in time and the session scrolled to it anyway.
var ErrStartPageTimeout = errors.New("start page did not load in time")

// State is the lifecycle stage of a reading session
type State int

const (
	StateClosed State = iota
	StateOpening
	StateShowing
	StateClosing
)

// String returns the state name used in logs
func (s State) String() string {
	switch s {
	case StateOpening:
		return "opening"
	case StateShowing:
		return "showing"
	case StateClosing:
		return "closing"
	default:
		return "closed"
	}
}

// Host is the navigation capability a session is embedded in. Every call
// returns the command that performs it.
type Host interface {
	PushLoader() tea.Cmd
	PopLoader() tea.Cmd
	PushNotice(dir Direction) tea.Cmd
	Pop() tea.Cmd
}

// ProgressStore persists the last read page of a chapter
type ProgressStore interface {
	Save(ctx context.Context, ref models.ChapterRef, page int) error
}

// ImageSource fetches and decodes a page image
type ImageSource interface {
	Image(ctx context.Context, url string) (image.Image, error)
}

// Options configures a new session
type Options struct {
	Manga     *models.Manga
	ChapterID string
	// StartPage scrolls to this page of the opening chapter once every page
	// before it has loaded
	StartPage *int
	Settings  Settings

	Catalog ChapterSource
	Images  ImageSource
	History ProgressStore
	Host    Host

	// CellWidth and CellHeight are the pixel size of one terminal cell
	CellWidth  float64
	CellHeight float64

	// Now defaults to time.Now
	Now func() time.Time
}

type imageLoadedMsg struct {
	session string
	page    models.PageID
	img     image.Image
	err     error
}

type progressSavedMsg struct {
	session string
	pos     models.PageID
	err     error
}

// Session is a continuous reading session over one manga. All methods must
// be called from the bubbletea Update loop.
type Session struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc
	log    *slog.Logger
	opts   Options
	keys   KeyMap

	state      State
	menuOpen   bool
	pageOffset bool
	hidden     bool
	err        error

	vp      *Viewport
	pages   *PageCache
	anchor  *Anchor
	zoom    *Zoom
	tracker *Tracker
	loader  *Loader
	gesture *Gesture
	tasks   *tasks
	layout  *Layout

	sizes     map[models.PageID]Size
	wide      map[models.PageID]bool
	images    map[models.PageID]image.Image
	failed    map[models.PageID]error
	touching  bool
	waitUntil time.Time

	// one save in flight; newer positions wait and replace each other
	saving      bool
	pendingSave models.PageID
	hasPending  bool

	cmds []tea.Cmd
}

// New creates a closed session. Init opens it.
func New(ctx context.Context, opts Options) *Session {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.CellWidth <= 0 {
		opts.CellWidth = 8
	}
	if opts.CellHeight <= 0 {
		opts.CellHeight = 16
	}
	if opts.Settings.StartPageTimeout <= 0 {
		opts.Settings.StartPageTimeout = 10 * time.Second
	}

	id := uuid.NewString()
	ctx, cancel := context.WithCancel(ctx)
	s := &Session{
		id:     id,
		ctx:    ctx,
		cancel: cancel,
		log:    logging.Logger().With("session", id, "manga", opts.Manga.ID),
		opts:   opts,
		keys:   DefaultKeyMap(),
		vp:     &Viewport{},
		pages:  NewPageCache(),
		sizes:  make(map[models.PageID]Size),
		wide:   make(map[models.PageID]bool),
		images: make(map[models.PageID]image.Image),
		failed: make(map[models.PageID]error),
	}
	s.anchor = NewAnchor(s.vp)
	s.zoom = NewZoom(s.vp, opts.Settings.ZoomEnabled)
	s.tracker = NewTracker()
	s.tasks = newTasks(id)
	s.loader = NewLoader(ctx, id, opts.Catalog, opts.Manga, opts.ChapterID,
		s.pages, s.anchor, opts.Settings.StepPolicy, opts.Now)
	s.gesture = NewGesture(s.vp, s.anchor, s, s.tasks, opts.Settings, opts.Now)
	s.relayout()
	return s
}

// ID returns the session id stamped on every message it produces
func (s *Session) ID() string { return s.id }

// Init opens the session: it shows the loader and fetches the opening chapter
func (s *Session) Init() tea.Cmd {
	if s.state != StateClosed {
		return nil
	}
	s.state = StateOpening
	s.log.Info("opening session", "chapter", s.opts.ChapterID)
	s.emit(s.opts.Host.PushLoader())
	s.request(Next, false)
	return s.flush()
}

// Update handles a message addressed to the session and returns the
// commands it produced. Messages from another or a finished session are
// dropped.
func (s *Session) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case chapterLoadedMsg:
		if !s.live(msg.session) {
			s.log.Debug("dropping stale chapter", "chapter", msg.chapter.ID)
			return nil
		}
		s.chapterLoaded(msg)

	case imageLoadedMsg:
		if !s.live(msg.session) {
			return nil
		}
		s.imageLoaded(msg)

	case progressSavedMsg:
		if msg.session != s.id {
			return nil
		}
		if msg.err != nil {
			s.log.Warn("save progress failed", "chapter", msg.pos.ChapterID, "page", msg.pos.Page, "err", msg.err)
		}
		s.saving = false
		if next, ok := s.pendingSave, s.hasPending; ok {
			s.hasPending = false
			s.save(next)
		}

	case taskFiredMsg:
		if msg.session != s.id || s.state == StateClosed || !s.tasks.fire(msg) {
			return nil
		}
		s.fire(msg.task)

	case tea.FocusMsg:
		s.setVisible(true)

	case tea.BlurMsg:
		s.setVisible(false)

	case tea.MouseMsg:
		if s.state == StateShowing {
			s.mouse(msg)
		}

	case tea.KeyMsg:
		if s.state == StateShowing {
			s.keypress(msg)
		}
	}
	return s.flush()
}

func (s *Session) live(session string) bool {
	return session == s.id && (s.state == StateOpening || s.state == StateShowing)
}

func (s *Session) emit(cmd tea.Cmd) {
	if cmd != nil {
		s.cmds = append(s.cmds, cmd)
	}
}

func (s *Session) flush() tea.Cmd {
	cmds := append(s.cmds, s.tasks.drain()...)
	s.cmds = nil
	switch len(cmds) {
	case 0:
		return nil
	case 1:
		return cmds[0]
	}
	return tea.Batch(cmds...)
}

// request asks the loader for another chapter and acts on the outcome
func (s *Session) request(dir Direction, stamp bool) {
	res, cmd, err := s.loader.Request(dir, stamp)
	if err != nil {
		s.log.Error("cannot open chapter", "err", err)
		if s.state == StateOpening {
			s.emit(s.opts.Host.PopLoader())
		}
		s.teardown()
		s.emit(s.opts.Host.Pop())
		return
	}
	switch res {
	case LoadStarted:
		s.log.Debug("loading chapter", "direction", dir)
		s.emit(cmd)
	case LoadEdge:
		s.log.Info("no more chapters", "direction", dir)
		s.emit(s.opts.Host.PushNotice(dir))
	}
}

func (s *Session) chapterLoaded(msg chapterLoadedMsg) {
	auto, err := s.loader.Complete(msg)
	if s.state == StateOpening {
		s.emit(s.opts.Host.PopLoader())
		s.show()
	}
	if err != nil {
		s.err = err
		s.log.Warn("chapter load failed", "err", err)
		return
	}
	s.err = nil
	s.log.Info("chapter loaded", "chapter", msg.chapter.ID, "pages", len(msg.urls), "direction", msg.dir)

	s.relayout()
	if s.anchor.Pending() {
		s.anchor.Restore()
		s.clampScroll()
	}
	s.fetchImages(msg.chapter.ID, msg.urls)

	if auto {
		s.request(msg.dir, true)
	}
}

// show enters the showing state and starts the progress poll
func (s *Session) show() {
	s.state = StateShowing
	s.tasks.Schedule(TaskProgress, PollInterval)
	if s.opts.StartPage != nil {
		s.waitUntil = s.opts.Now().Add(s.opts.Settings.StartPageTimeout)
		s.tasks.Schedule(TaskStartPage, PollInterval)
	}
}

// fetchImages loads a chapter's pages one after another in page order
func (s *Session) fetchImages(chapterID string, urls []string) {
	if s.opts.Images == nil {
		return
	}
	cmds := make([]tea.Cmd, 0, len(urls))
	for i, url := range urls {
		page := models.PageID{ChapterID: chapterID, Page: i}
		ctx, src, session := s.ctx, s.opts.Images, s.id
		cmds = append(cmds, func() tea.Msg {
			img, err := src.Image(ctx, url)
			return imageLoadedMsg{session: session, page: page, img: img, err: err}
		})
	}
	s.emit(tea.Sequence(cmds...))
}

func (s *Session) imageLoaded(msg imageLoadedMsg) {
	if msg.err != nil {
		s.failed[msg.page] = msg.err
		s.log.Debug("page image failed", "page", msg.page.String(), "err", msg.err)
		return
	}
	b := msg.img.Bounds()
	size := Size{Width: b.Dx(), Height: b.Dy()}
	s.images[msg.page] = msg.img
	s.sizes[msg.page] = size
	if size.Wide() {
		s.wide[msg.page] = true
	}

	r, ok := s.layout.Rect(msg.page)
	above := ok && r.Y < s.vp.ScrollTop
	if above {
		s.anchor.Record()
	}
	s.relayout()
	if above {
		s.anchor.Restore()
		s.clampScroll()
	}
}

// relayout rebuilds page placement and the scrollable extent
func (s *Session) relayout() {
	s.layout = BuildLayout(LayoutInput{
		Chapters:    s.pages.Sorted(s.chapterOrder()),
		Pages:       s.pages,
		Sizes:       s.sizes,
		Wide:        s.wide,
		ClientWidth: s.vp.ClientWidth,
		Scale:       s.zoom.Scale(),
		OnePage:     s.onePage(),
		PageOffset:  s.pageOffset,
	})
	s.vp.ScrollWidth = s.layout.Width
	s.vp.ScrollHeight = s.layout.Height
}

func (s *Session) chapterOrder() []models.Chapter {
	group, _ := s.opts.Manga.Chapters.Group(s.opts.ChapterID)
	return group
}

func (s *Session) clampScroll() {
	s.vp.SetScroll(s.vp.ScrollLeft, s.vp.ScrollTop)
}

// onePage resolves the display mode against the viewport orientation
func (s *Session) onePage() bool {
	switch s.opts.Settings.DisplayMode {
	case DisplayOnePage:
		return true
	case DisplaySpread:
		return false
	default:
		return s.vp.ClientHeight > s.vp.ClientWidth
	}
}

func (s *Session) fire(t Task) {
	switch t {
	case TaskProgress:
		s.poll()
		s.tasks.Schedule(TaskProgress, PollInterval)
	case TaskStartPage:
		s.waitForStartPage()
	case TaskVisible:
		s.hidden = false
	case TaskClose:
		s.teardown()
		s.emit(s.opts.Host.Pop())
	default:
		s.gesture.Fire(t)
	}
}

// poll hit-tests the viewport centre and persists a changed position
func (s *Session) poll() {
	c := s.vp.Center()
	id, ok := s.layout.HitTest(c.X+s.vp.ScrollLeft, c.Y+s.vp.ScrollTop)
	if !ok || !s.tracker.Observe(id) {
		return
	}
	s.save(id)
}

// save persists id once the previous save has finished, so writes reach
// the store in the order positions were observed
func (s *Session) save(id models.PageID) {
	if s.opts.History == nil {
		return
	}
	if s.saving {
		s.pendingSave, s.hasPending = id, true
		return
	}
	s.saving = true
	ctx, store, session := s.ctx, s.opts.History, s.id
	ref := models.ChapterRef{MangaID: s.opts.Manga.ID, ChapterID: id.ChapterID}
	s.emit(func() tea.Msg {
		return progressSavedMsg{session: session, pos: id, err: store.Save(ctx, ref, id.Page)}
	})
}

func (s *Session) waitForStartPage() {
	target := models.PageID{ChapterID: s.opts.ChapterID, Page: *s.opts.StartPage}
	if !s.pagesSettled(target) {
		if s.opts.Now().Before(s.waitUntil) {
			s.tasks.Schedule(TaskStartPage, PollInterval)
			return
		}
		s.log.Warn("scrolling to start page anyway", "page", target.Page, "err", ErrStartPageTimeout)
	}
	if !s.layout.ScrollToPage(s.vp, target) {
		s.log.Warn("start page not in chapter", "page", target.Page)
	}
}

// pagesSettled reports whether every page before target has loaded or failed
func (s *Session) pagesSettled(target models.PageID) bool {
	if !s.pages.Has(target.ChapterID) {
		return false
	}
	for i := 0; i < target.Page; i++ {
		id := models.PageID{ChapterID: target.ChapterID, Page: i}
		_, loaded := s.images[id]
		_, failed := s.failed[id]
		if !loaded && !failed {
			return false
		}
	}
	return true
}

func (s *Session) setVisible(visible bool) {
	s.anchor.Clear()
	if !visible {
		s.tasks.Cancel(TaskVisible)
		s.hidden = true
		return
	}
	s.tasks.Schedule(TaskVisible, VisibleGrace)
}

// Resize sets the viewport to width x height pixels and restores the
// current page, which is the session's layout-changed notification.
func (s *Session) Resize(width, height float64) {
	s.vp.ClientWidth = width
	s.vp.ClientHeight = height
	s.LayoutChanged()
}

// LayoutChanged rebuilds the layout after a settings or geometry change and
// scrolls back to the most recently observed page.
func (s *Session) LayoutChanged() {
	s.relayout()
	s.clampScroll()
	if s.hidden {
		return
	}
	if id, ok := s.tracker.Latest(); ok {
		s.layout.ScrollToPage(s.vp, id)
	}
}

// SetDisplayMode switches the display mode of a running session
func (s *Session) SetDisplayMode(mode DisplayMode) {
	s.opts.Settings.DisplayMode = mode
	s.LayoutChanged()
}

func (s *Session) mouse(msg tea.MouseMsg) {
	p := Point{X: float64(msg.X) * s.opts.CellWidth, Y: float64(msg.Y) * s.opts.CellHeight}
	if p.Y >= s.vp.ClientHeight && msg.Action == tea.MouseActionPress && !tea.MouseEvent(msg).IsWheel() {
		return
	}

	switch {
	case msg.Button == tea.MouseButtonWheelDown:
		s.scrollBy(3 * s.opts.CellHeight)
	case msg.Button == tea.MouseButtonWheelUp:
		s.scrollBy(-3 * s.opts.CellHeight)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		// Terminals have no touch input; a press in the edge zone swipes.
		if p.X < EdgeSwipeZone {
			s.touching = true
			s.gesture.TouchStart(p)
			return
		}
		s.gesture.PointerDown(p)
	case msg.Action == tea.MouseActionMotion:
		if s.touching {
			s.gesture.TouchMove(p)
			return
		}
		s.gesture.PointerMove(p)
	case msg.Action == tea.MouseActionRelease:
		if s.touching {
			s.touching = false
			s.gesture.TouchEnd(p)
			return
		}
		s.gesture.PointerUp(p)
	}
}

func (s *Session) keypress(msg tea.KeyMsg) {
	switch {
	case key.Matches(msg, s.keys.Down):
		s.scrollBy(3 * s.opts.CellHeight)
	case key.Matches(msg, s.keys.Up):
		s.scrollBy(-3 * s.opts.CellHeight)
	case key.Matches(msg, s.keys.PageDown):
		s.scrollBy(s.vp.ClientHeight * 0.9)
	case key.Matches(msg, s.keys.PageUp):
		s.scrollBy(-s.vp.ClientHeight * 0.9)
	case key.Matches(msg, s.keys.Menu):
		s.toggleMenu()
	case key.Matches(msg, s.keys.ZoomIn):
		s.ZoomIn()
	case key.Matches(msg, s.keys.ZoomOut):
		s.ZoomOut()
	case key.Matches(msg, s.keys.Offset):
		s.ToggleOffset()
	case key.Matches(msg, s.keys.Jump):
		n := int(msg.String()[0] - '0')
		s.ScrollToPage(jumpTarget(n, s.MaxPage()))
	case key.Matches(msg, s.keys.Close):
		if s.menuOpen {
			s.menuOpen = false
			return
		}
		s.Close()
	}
}

// jumpTarget spreads keys 1-9 over the chapter: 1 is the first page and 9
// the last
func jumpTarget(n, maxPage int) int {
	return (n - 1) * maxPage / 8
}

// scrollBy moves the viewport and reports it as a scroll event
func (s *Session) scrollBy(dy float64) {
	s.vp.ScrollBy(dy)
	s.gesture.Scroll(dy)
}

// gesture handler

func (s *Session) toggleMenu() {
	s.menuOpen = !s.menuOpen
}

func (s *Session) loadMore(dir Direction) {
	if s.state != StateShowing {
		return
	}
	s.request(dir, true)
}

func (s *Session) scale() float64 {
	return s.zoom.Scale()
}

func (s *Session) zoomTo(scale float64, anchor *Point) {
	res, ok := s.zoom.ZoomTo(scale, anchor)
	if !ok {
		return
	}
	s.relayout()
	s.vp.SetScroll(res.Left, res.Top)
}

func (s *Session) close() {
	s.Close()
}

// Close hides the content and pops the session after the exit transition
func (s *Session) Close() {
	if s.state != StateShowing && s.state != StateOpening {
		return
	}
	s.log.Info("closing session")
	if s.state == StateOpening {
		s.emit(s.opts.Host.PopLoader())
	}
	s.state = StateClosing
	s.menuOpen = false
	s.tasks.cancelAll()
	s.gesture.Reset()
	s.tasks.Schedule(TaskClose, TransitionDuration)
}

// teardown stops every timer and abandons in-flight work
func (s *Session) teardown() {
	s.state = StateClosed
	s.tasks.cancelAll()
	s.cancel()
	s.log.Info("session closed")
}

// Menu surface

// ZoomIn raises the scale by one step about the viewport centre
func (s *Session) ZoomIn() { s.zoomTo(s.zoom.Scale()+ScaleStep, nil) }

// ZoomOut lowers the scale by one step about the viewport centre
func (s *Session) ZoomOut() { s.zoomTo(s.zoom.Scale()-ScaleStep, nil) }

// ToggleOffset shifts spread pairing by one page. It has no effect in
// one-page mode.
func (s *Session) ToggleOffset() {
	if s.onePage() {
		return
	}
	s.anchor.Clear()
	s.pageOffset = !s.pageOffset
	s.LayoutChanged()
}

// ScrollToPage centres page of the current chapter
func (s *Session) ScrollToPage(page int) {
	cur, ok := s.tracker.Current()
	if !ok {
		return
	}
	s.layout.ScrollToPage(s.vp, models.PageID{ChapterID: cur.ChapterID, Page: page})
}

// Scale returns the current zoom scale
func (s *Session) Scale() float64 { return s.zoom.Scale() }

// ZoomEnabled reports whether zooming is available
func (s *Session) ZoomEnabled() bool { return s.opts.Settings.ZoomEnabled }

// Page returns the current page index, or -1 before the first poll
func (s *Session) Page() int {
	cur, ok := s.tracker.Current()
	if !ok {
		return -1
	}
	return cur.Page
}

// MaxPage returns the last page index of the current chapter
func (s *Session) MaxPage() int {
	cur, ok := s.tracker.Current()
	if !ok {
		return 0
	}
	return max(0, len(s.pages.Pages(cur.ChapterID))-1)
}

// ChapterTitle returns the title of the current chapter
func (s *Session) ChapterTitle() string {
	cur, ok := s.tracker.Current()
	if !ok {
		return ""
	}
	ch, _ := s.opts.Manga.ChapterByID(cur.ChapterID)
	return ch.Title
}

// Current returns the current page as read off the last poll
func (s *Session) Current() (models.PageID, bool) { return s.tracker.Current() }

// MangaTitle returns the title of the manga being read
func (s *Session) MangaTitle() string { return s.opts.Manga.Title }

// State returns the lifecycle state
func (s *Session) State() State { return s.state }

// Visible reports whether the page stream should be drawn
func (s *Session) Visible() bool { return s.state == StateShowing }

// MenuOpen reports whether the menu is shown
func (s *Session) MenuOpen() bool { return s.menuOpen }

// PageOffset reports whether spreads are shifted by one page
func (s *Session) PageOffset() bool { return s.pageOffset }

// OnePage reports whether the stream is laid out one page per row
func (s *Session) OnePage() bool { return s.onePage() }

// Err returns the last chapter load error, cleared by the next success
func (s *Session) Err() error { return s.err }

// Viewport returns the session's viewport
func (s *Session) Viewport() *Viewport { return s.vp }

// Layout returns the current page placement
func (s *Session) Layout() *Layout { return s.layout }

// Image returns the decoded image of a page if it has loaded
func (s *Session) Image(id models.PageID) (image.Image, bool) {
	img, ok := s.images[id]
	return img, ok
}

// Failed reports whether a page image failed to load
func (s *Session) Failed(id models.PageID) bool {
	_, ok := s.failed[id]
	return ok
}

// Translation returns the horizontal swipe offset in pixels
func (s *Session) Translation() float64 { return s.gesture.Translation() }
