package ui

import (
	"context"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"
	"github.com/justyntemme/raito-t/internal/config"
	"github.com/justyntemme/raito-t/internal/history"
	"github.com/justyntemme/raito-t/internal/ui/terminal"
	"github.com/justyntemme/raito-t/internal/ui/views"
	"github.com/justyntemme/raito-t/pkg/models"
)

type fakeView struct {
	id    string
	typ   views.ViewType
	got   []tea.Msg
	inits int
}

func (f *fakeView) Init() tea.Cmd { f.inits++; return nil }
func (f *fakeView) Update(msg tea.Msg) (views.View, tea.Cmd) {
	f.got = append(f.got, msg)
	return f, nil
}
func (f *fakeView) View() string { return f.id }
func (f *fakeView) SetSize(int, int) {}
func (f *fakeView) Type() views.ViewType { return f.typ }
func (f *fakeView) ID() string { return f.id }

type fakeCatalog struct{}

func (fakeCatalog) GetManga(_ context.Context, id string) (*models.Manga, error) {
	return &models.Manga{ID: id, Title: "Test Manga"}, nil
}

func (fakeCatalog) GetChapter(context.Context, string) ([]string, error) { return nil, nil }

type fakeHistory struct{}

func (fakeHistory) Save(context.Context, models.ChapterRef, int) error { return nil }
func (fakeHistory) Last(context.Context, string) (*models.ReadingPosition, error) {
	return nil, history.ErrNoPosition
}

func newTestApp(t *testing.T) (*App, *config.Config) {
	t.Helper()
	detectTerminal = func() terminal.TermImageMode { return terminal.TermModeNone }

	cfg, err := config.LoadFrom(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	a := NewApp(context.Background(), cfg, Deps{Catalog: fakeCatalog{}, History: fakeHistory{}}, Start{})
	a.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return a, cfg
}

func TestAppRoutesInputToTopView(t *testing.T) {
	a, _ := newTestApp(t)
	below := &fakeView{id: "below", typ: views.ViewSession}
	above := &fakeView{id: "above", typ: views.ViewNotice}
	a.Update(views.PushMsg{View: below})
	a.Update(views.PushMsg{View: above})

	key := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")}
	a.Update(key)
	a.Update(tea.BlurMsg{})

	if diff := cmp.Diff([]tea.Msg{tea.BlurMsg{}}, below.got); diff != "" {
		t.Errorf("covered view messages (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]tea.Msg{key, tea.BlurMsg{}}, above.got); diff != "" {
		t.Errorf("top view messages (-want +got):\n%s", diff)
	}
}

func TestAppPopByID(t *testing.T) {
	a, _ := newTestApp(t)
	session := &fakeView{id: "s1", typ: views.ViewSession}
	page := &fakeView{id: "p1", typ: views.ViewPage}
	a.Update(views.PushMsg{View: session})
	a.Update(views.PushMsg{View: page})

	// removing a covered view does not re-initialize anything
	a.Update(views.PopMsg{ID: "s1"})
	want := []views.ViewType{views.ViewHome, views.ViewPage}
	if diff := cmp.Diff(want, a.Stack()); diff != "" {
		t.Errorf("stack mismatch (-want +got):\n%s", diff)
	}
	if session.inits != 1 || page.inits != 1 {
		t.Errorf("inits session=%d page=%d, expected 1 and 1", session.inits, page.inits)
	}

	a.Update(views.PopMsg{ID: "unknown"})
	a.Update(views.PopMsg{})
	a.Update(views.PopMsg{})
	if diff := cmp.Diff([]views.ViewType{views.ViewHome}, a.Stack()); diff != "" {
		t.Errorf("home view popped (-want +got):\n%s", diff)
	}
}

func TestAppRevealReinitializes(t *testing.T) {
	a, _ := newTestApp(t)
	below := &fakeView{id: "below", typ: views.ViewChapters}
	a.Update(views.PushMsg{View: below})
	a.Update(views.PushMsg{View: &fakeView{id: "top", typ: views.ViewSession}})

	a.Update(views.PopMsg{ID: "top"})
	if below.inits != 2 {
		t.Errorf("revealed view initialized %d times, expected 2", below.inits)
	}
}

func TestAppLoaderOverlay(t *testing.T) {
	a, _ := newTestApp(t)
	top := &fakeView{id: "top", typ: views.ViewSession}
	a.Update(views.PushMsg{View: top})

	a.Update(views.LoaderMsg{Show: true})
	a.Update(views.LoaderMsg{Show: true})
	a.Update(views.LoaderMsg{Show: false})

	a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	esc := tea.KeyMsg{Type: tea.KeyEsc}
	a.Update(esc)
	if diff := cmp.Diff([]tea.Msg{esc}, top.got); diff != "" {
		t.Errorf("keys under the loader (-want +got):\n%s", diff)
	}

	a.Update(views.LoaderMsg{Show: false})
	if got := a.View(); got != "top" {
		t.Errorf("View = %q after the loader closed", got)
	}
}

func TestAppOpenChapterRecordsRecentlyRead(t *testing.T) {
	a, cfg := newTestApp(t)

	a.Update(views.OpenMangaMsg{MangaID: "m1"})
	manga := &models.Manga{ID: "m1", Title: "Test Manga"}
	a.Update(views.OpenChapterMsg{Manga: manga, ChapterID: "c2"})

	want := []views.ViewType{views.ViewHome, views.ViewChapters, views.ViewSession}
	if diff := cmp.Diff(want, a.Stack()); diff != "" {
		t.Errorf("stack mismatch (-want +got):\n%s", diff)
	}
	if len(cfg.RecentlyRead) != 1 || cfg.RecentlyRead[0].MangaID != "m1" || cfg.RecentlyRead[0].ChapterID != "c2" {
		t.Errorf("recently read = %+v", cfg.RecentlyRead)
	}
}

func TestAppHelpOverlay(t *testing.T) {
	a, _ := newTestApp(t)
	top := &fakeView{id: "top", typ: views.ViewSession}
	a.Update(views.PushMsg{View: top})

	a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	if !a.showHelp {
		t.Fatalf("? did not open help")
	}
	a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	if a.showHelp || len(top.got) != 0 {
		t.Errorf("key closing help reached the view: showHelp=%v got=%v", a.showHelp, top.got)
	}
}
