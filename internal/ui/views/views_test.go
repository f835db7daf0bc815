package views

import (
	"context"
	"errors"
	"image"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"
	"github.com/justyntemme/raito-t/internal/history"
	"github.com/justyntemme/raito-t/internal/reader"
	"github.com/justyntemme/raito-t/pkg/models"
)

func TestSessionHost(t *testing.T) {
	h := &SessionHost{}
	if cmd := h.Pop(); cmd != nil {
		t.Errorf("Pop before the session exists returned a command")
	}

	h.SessionID = "s1"
	if diff := cmp.Diff(PopMsg{ID: "s1"}, h.Pop()()); diff != "" {
		t.Errorf("Pop mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(LoaderMsg{Show: true}, h.PushLoader()()); diff != "" {
		t.Errorf("PushLoader mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(LoaderMsg{Show: false}, h.PopLoader()()); diff != "" {
		t.Errorf("PopLoader mismatch (-want +got):\n%s", diff)
	}

	tests := []struct {
		dir  reader.Direction
		want string
	}{
		{dir: reader.Next, want: "No next chapter"},
		{dir: reader.Previous, want: "No previous chapter"},
	}
	for _, tt := range tests {
		push, ok := h.PushNotice(tt.dir)().(PushMsg)
		if !ok {
			t.Fatalf("PushNotice(%v) did not push a view", tt.dir)
		}
		notice, ok := push.View.(*NoticeView)
		if !ok || notice.Text() != tt.want {
			t.Errorf("PushNotice(%v) pushed %#v, expected notice %q", tt.dir, push.View, tt.want)
		}
	}
}

func TestNoticeDismissedByAnyKey(t *testing.T) {
	v := NewNoticeView("No next chapter")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if cmd == nil {
		t.Fatalf("key did not dismiss the notice")
	}
	if diff := cmp.Diff(PopMsg{}, cmd()); diff != "" {
		t.Errorf("dismiss mismatch (-want +got):\n%s", diff)
	}

	if _, cmd := v.Update(tea.FocusMsg{}); cmd != nil {
		t.Errorf("focus change dismissed the notice")
	}
}

func TestLoaderViewNests(t *testing.T) {
	v := NewLoaderView()
	if cmd := v.Show(); cmd == nil {
		t.Errorf("first Show did not start the spinner")
	}
	if cmd := v.Show(); cmd != nil {
		t.Errorf("nested Show restarted the spinner")
	}
	v.Hide()
	if !v.Active() {
		t.Errorf("overlay hidden with one show outstanding")
	}
	v.Hide()
	v.Hide()
	if v.Active() {
		t.Errorf("overlay still shown after every hide")
	}
	if cmd := v.Show(); cmd == nil {
		t.Errorf("Show after an extra Hide did not start the spinner")
	}
}

func TestListCursor(t *testing.T) {
	var l listCursor
	l.setVisible(3)
	l.setLength(10)

	l.move(4)
	if l.cursor != 4 || l.offset != 2 {
		t.Errorf("after move(4) cursor=%d offset=%d, expected 4 and 2", l.cursor, l.offset)
	}
	l.move(100)
	if from, to := l.window(); l.cursor != 9 || from != 7 || to != 10 {
		t.Errorf("after move(100) cursor=%d window=[%d,%d)", l.cursor, from, to)
	}
	l.move(-100)
	if l.cursor != 0 || l.offset != 0 {
		t.Errorf("after move(-100) cursor=%d offset=%d", l.cursor, l.offset)
	}

	var empty listCursor
	empty.setLength(0)
	empty.move(1)
	if from, to := empty.window(); empty.cursor != 0 || from != to {
		t.Errorf("empty list cursor=%d window=[%d,%d)", empty.cursor, from, to)
	}
}

func TestCropImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 200))

	if got := cropImage(img, 1, 0.5, 0.5).Bounds(); got != img.Bounds() {
		t.Errorf("unzoomed crop = %v", got)
	}
	tests := []struct {
		panX, panY float64
		want       image.Rectangle
	}{
		{panX: 0.5, panY: 0.5, want: image.Rect(25, 50, 75, 150)},
		{panX: 0, panY: 0, want: image.Rect(0, 0, 50, 100)},
		{panX: 1, panY: 1, want: image.Rect(50, 100, 100, 200)},
	}
	for _, tt := range tests {
		if got := cropImage(img, 2, tt.panX, tt.panY).Bounds(); got != tt.want {
			t.Errorf("cropImage(2, %v, %v) = %v, expected %v", tt.panX, tt.panY, got, tt.want)
		}
	}
}

type fakeMangaSource struct {
	manga *models.Manga
	err   error
}

func (f *fakeMangaSource) GetManga(context.Context, string) (*models.Manga, error) {
	return f.manga, f.err
}

type fakePositions struct {
	pos *models.ReadingPosition
}

func (f *fakePositions) Last(context.Context, string) (*models.ReadingPosition, error) {
	if f.pos == nil {
		return nil, history.ErrNoPosition
	}
	return f.pos, nil
}

func testChaptersManga() *models.Manga {
	return &models.Manga{
		ID:    "m1",
		Title: "Test Manga",
		Chapters: models.Chapters{
			Serial: []models.Chapter{{ID: "c3"}, {ID: "c2"}, {ID: "c1"}},
			Extra:  []models.Chapter{{ID: "x1"}},
		},
	}
}

func TestChaptersViewOpensAtSavedPage(t *testing.T) {
	positions := &fakePositions{pos: &models.ReadingPosition{MangaID: "m1", ChapterID: "c2", Page: 7}}
	v := NewChaptersView(context.Background(), &fakeMangaSource{manga: testChaptersManga()}, positions, "m1")

	v.Update(v.Init()())
	if v.loading || v.err != nil {
		t.Fatalf("loading=%v err=%v after load", v.loading, v.err)
	}
	if len(v.rows) != 4 || !v.rows[3].extra {
		t.Fatalf("rows = %+v, expected three serial and one extra", v.rows)
	}
	if v.list.cursor != 1 {
		t.Errorf("cursor = %d, expected the last read chapter", v.list.cursor)
	}

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	open, ok := cmd().(OpenChapterMsg)
	if !ok {
		t.Fatalf("enter did not open a chapter")
	}
	if open.ChapterID != "c2" || open.Page == nil || *open.Page != 7 {
		t.Errorf("opened %s at %v, expected c2 at page 7", open.ChapterID, open.Page)
	}

	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyUp})
	if cmd != nil {
		t.Errorf("moving the cursor returned a command")
	}
	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	open = cmd().(OpenChapterMsg)
	if open.ChapterID != "c3" || open.Page != nil {
		t.Errorf("opened %s at %v, expected c3 from the top", open.ChapterID, open.Page)
	}
}

func TestChaptersViewLoadError(t *testing.T) {
	boom := errors.New("server down")
	v := NewChaptersView(context.Background(), &fakeMangaSource{err: boom}, &fakePositions{}, "m1")

	v.Update(v.Init()())
	if !errors.Is(v.err, boom) {
		t.Errorf("err = %v, expected %v", v.err, boom)
	}
	if _, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Errorf("enter with nothing loaded returned a command")
	}
}
