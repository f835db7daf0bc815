package reader

import "github.com/justyntemme/raito-t/pkg/models"

// placeholderAspect is the height/width ratio assumed until a page image
// reports its natural size.
const placeholderAspect = 1.5

// Size is the natural pixel size of a page image
type Size struct {
	Width, Height int
}

// Wide reports whether the image is at least as wide as it is tall
func (s Size) Wide() bool {
	return s.Width > 0 && s.Width >= s.Height
}

func (s Size) aspect() float64 {
	if s.Width <= 0 || s.Height <= 0 {
		return placeholderAspect
	}
	return float64(s.Height) / float64(s.Width)
}

// Placement is a page and the rectangle it occupies in content pixels
type Placement struct {
	ID   models.PageID
	Rect Rect
}

// LayoutInput is everything page placement depends on
type LayoutInput struct {
	Chapters    []string // display order
	Pages       *PageCache
	Sizes       map[models.PageID]Size
	Wide        map[models.PageID]bool
	ClientWidth float64
	Scale       float64
	OnePage     bool
	PageOffset  bool
}

// Layout holds the page rectangles of the rendered stream
type Layout struct {
	Pages  []Placement
	Width  float64
	Height float64
	index  map[models.PageID]int
}

// BuildLayout places every loaded page. Each chapter starts a new row; in
// spread mode narrow pages pair up in rows of two and wide pages take a row
// of their own. With PageOffset an empty half-width spacer precedes page 0.
func BuildLayout(in LayoutInput) *Layout {
	scale := in.Scale
	if scale <= 0 {
		scale = MinScale
	}
	l := &Layout{
		Width: in.ClientWidth * scale,
		index: make(map[models.PageID]int),
	}

	y := 0.0
	for _, chapterID := range in.Chapters {
		slot, rowH := 0, 0.0
		if !in.OnePage && in.PageOffset {
			slot = 1
		}
		for i := range in.Pages.Pages(chapterID) {
			id := models.PageID{ChapterID: chapterID, Page: i}
			aspect := in.Sizes[id].aspect()

			if in.OnePage || in.Wide[id] {
				if slot != 0 {
					y += rowH
					slot, rowH = 0, 0
				}
				r := Rect{X: 0, Y: y, W: l.Width, H: l.Width * aspect}
				l.add(id, r)
				y = r.Bottom()
				continue
			}

			w := l.Width / 2
			r := Rect{X: float64(slot) * w, Y: y, W: w, H: w * aspect}
			l.add(id, r)
			rowH = max(rowH, r.H)
			slot++
			if slot == 2 {
				y += rowH
				slot, rowH = 0, 0
			}
		}
		y += rowH
	}
	l.Height = y
	return l
}

func (l *Layout) add(id models.PageID, r Rect) {
	l.index[id] = len(l.Pages)
	l.Pages = append(l.Pages, Placement{ID: id, Rect: r})
}

// Rect returns the rectangle of a page
func (l *Layout) Rect(id models.PageID) (Rect, bool) {
	i, ok := l.index[id]
	if !ok {
		return Rect{}, false
	}
	return l.Pages[i].Rect, true
}

// HitTest returns the first page whose rectangle contains the content point
func (l *Layout) HitTest(x, y float64) (models.PageID, bool) {
	for _, p := range l.Pages {
		if p.Rect.Contains(x, y) {
			return p.ID, true
		}
	}
	return models.PageID{}, false
}

// Visible returns the placements intersecting the viewport
func (l *Layout) Visible(vp *Viewport) []Placement {
	var out []Placement
	top, bottom := vp.ScrollTop, vp.ScrollTop+vp.ClientHeight
	left, right := vp.ScrollLeft, vp.ScrollLeft+vp.ClientWidth
	for _, p := range l.Pages {
		r := p.Rect
		if r.Bottom() <= top || r.Y >= bottom || r.X+r.W <= left || r.X >= right {
			continue
		}
		out = append(out, p)
	}
	return out
}

// ScrollToPage centres a page in the viewport, clamped to the scroll range.
// It returns false if the page is not laid out.
func (l *Layout) ScrollToPage(vp *Viewport, id models.PageID) bool {
	r, ok := l.Rect(id)
	if !ok {
		return false
	}
	vp.SetScroll(r.X+r.W/2-vp.ClientWidth/2, r.Y+r.H/2-vp.ClientHeight/2)
	return true
}
