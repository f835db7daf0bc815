package reader

import "github.com/justyntemme/raito-t/pkg/models"

// positionRing keeps the most recent distinct page samples, oldest first
type positionRing struct {
	items []models.PageID
	size  int
}

func newPositionRing(size int) *positionRing {
	return &positionRing{items: make([]models.PageID, 0, size), size: size}
}

func (r *positionRing) push(p models.PageID) {
	if len(r.items) == r.size {
		copy(r.items, r.items[1:])
		r.items = r.items[:len(r.items)-1]
	}
	r.items = append(r.items, p)
}

func (r *positionRing) latest() (models.PageID, bool) {
	if len(r.items) == 0 {
		return models.PageID{}, false
	}
	return r.items[len(r.items)-1], true
}

// Tracker derives the current page from viewport hit-tests. It is the only
// writer of the session's current chapter and page.
type Tracker struct {
	recent  *positionRing
	current *models.PageID
}

// NewTracker creates a tracker with an empty history
func NewTracker() *Tracker {
	return &Tracker{recent: newPositionRing(RecentPositions)}
}

// Observe records one poll sample and reports whether the current position
// changed (and therefore needs persisting).
func (t *Tracker) Observe(p models.PageID) bool {
	if last, ok := t.recent.latest(); !ok || last != p {
		t.recent.push(p)
	}
	if t.current != nil && *t.current == p {
		return false
	}
	cur := p
	t.current = &cur
	return true
}

// Current returns the position read off the last poll
func (t *Tracker) Current() (models.PageID, bool) {
	if t.current == nil {
		return models.PageID{}, false
	}
	return *t.current, true
}

// Latest returns the most recent distinct sample
func (t *Tracker) Latest() (models.PageID, bool) {
	return t.recent.latest()
}

// Recent returns a copy of the retained samples, oldest first
func (t *Tracker) Recent() []models.PageID {
	return append([]models.PageID(nil), t.recent.items...)
}
