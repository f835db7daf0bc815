package reader

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/justyntemme/raito-t/pkg/models"
)

// ErrChapterNotFound is returned when the opening chapter belongs to neither
// of the manga's chapter orderings.
var ErrChapterNotFound = errors.New("chapter not found in manga")

// inFlight keeps the cooldown closed while a fetch is outstanding
var inFlight = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)

// ChapterSource fetches the ordered page URLs of a chapter
type ChapterSource interface {
	GetChapter(ctx context.Context, chapterID string) ([]string, error)
}

// LoadResult is what a load request turned into
type LoadResult int

const (
	// LoadIgnored means the cooldown swallowed the request
	LoadIgnored LoadResult = iota
	LoadStarted
	// LoadEdge means no chapter exists further in that direction
	LoadEdge
)

// chapterLoadedMsg carries a finished page list fetch
type chapterLoadedMsg struct {
	session string
	dir     Direction
	offset  int
	chapter models.Chapter
	urls    []string
	stamp   bool
	err     error
}

// Loader extends the page cache one chapter at a time in either direction.
// A single cooldown timestamp serialises loads across both directions.
type Loader struct {
	ctx     context.Context
	session string
	src     ChapterSource
	manga   *models.Manga
	opening string
	pages   *PageCache
	anchor  *Anchor
	policy  StepPolicy
	now     func() time.Time

	group    []models.Chapter
	origin   int
	resolved bool
	reach    [2]int
	lastLoad time.Time
}

// NewLoader creates a loader for a session opened on chapterID
func NewLoader(ctx context.Context, session string, src ChapterSource, manga *models.Manga, chapterID string,
	pages *PageCache, anchor *Anchor, policy StepPolicy, now func() time.Time) *Loader {
	return &Loader{
		ctx:     ctx,
		session: session,
		src:     src,
		manga:   manga,
		opening: chapterID,
		pages:   pages,
		anchor:  anchor,
		policy:  policy,
		now:     now,
	}
}

// resolve locates the opening chapter's ordering once per session
func (l *Loader) resolve() error {
	if l.resolved {
		return nil
	}
	group, _ := l.manga.Chapters.Group(l.opening)
	origin := models.IndexOf(group, l.opening)
	if origin < 0 {
		return fmt.Errorf("%w: %s", ErrChapterNotFound, l.opening)
	}
	l.group, l.origin, l.resolved = group, origin, true
	return nil
}

// offset returns the signed catalog distance from the opening chapter of
// the next chapter to load in dir. Catalog orderings list newest first so
// moving forward decreases the index.
func (l *Loader) offset(dir Direction) int {
	sign := 1
	if dir == Next {
		sign = -1
	}
	if l.policy == SharedCount {
		return sign * l.pages.Len()
	}
	if !l.pages.Has(l.opening) {
		return 0
	}
	return sign * (l.reach[dir] + 1)
}

// Request starts loading the next chapter in dir. stamp controls whether
// the completion arms the cooldown; the session's initial load does not.
func (l *Loader) Request(dir Direction, stamp bool) (LoadResult, tea.Cmd, error) {
	if l.now().Sub(l.lastLoad) < LoadCooldown {
		return LoadIgnored, nil, nil
	}
	l.lastLoad = inFlight
	l.anchor.Clear()

	if err := l.resolve(); err != nil {
		l.finish(stamp)
		return LoadIgnored, nil, err
	}

	off := l.offset(dir)
	idx := l.origin + off
	if idx < 0 || idx >= len(l.group) {
		l.finish(stamp)
		return LoadEdge, nil, nil
	}
	return LoadStarted, l.fetch(l.group[idx], dir, off, stamp), nil
}

func (l *Loader) fetch(ch models.Chapter, dir Direction, off int, stamp bool) tea.Cmd {
	ctx, src, session := l.ctx, l.src, l.session
	return func() tea.Msg {
		urls, err := src.GetChapter(ctx, ch.ID)
		return chapterLoadedMsg{
			session: session,
			dir:     dir,
			offset:  off,
			chapter: ch,
			urls:    urls,
			stamp:   stamp,
			err:     err,
		}
	}
}

// finish reopens the cooldown: armed from now, or immediately
func (l *Loader) finish(stamp bool) {
	if stamp {
		l.lastLoad = l.now()
		return
	}
	l.lastLoad = time.Time{}
}

// Complete merges a finished fetch into the page cache. A previous-direction
// merge records the scroll anchor first so the caller can restore it after
// relayout. auto reports that the chapter was short and the only one loaded,
// in which case the cooldown is already open for an immediate follow-up in
// the same direction.
func (l *Loader) Complete(msg chapterLoadedMsg) (auto bool, err error) {
	if msg.err != nil {
		l.finish(true)
		return false, fmt.Errorf("load chapter %s: %w", msg.chapter.ID, msg.err)
	}

	if msg.dir == Previous {
		l.anchor.Record()
	}
	l.pages.Add(msg.chapter.ID, msg.urls)
	if msg.offset != 0 {
		l.reach[msg.dir] = max(l.reach[msg.dir], abs(msg.offset))
	}
	l.finish(msg.stamp)

	if len(msg.urls) <= ShortChapterPages && l.pages.Len() == 1 {
		l.lastLoad = time.Time{}
		return true, nil
	}
	return false, nil
}

// Busy reports whether a fetch is outstanding
func (l *Loader) Busy() bool {
	return l.lastLoad.Equal(inFlight)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
