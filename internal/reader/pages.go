package reader

import (
	"sort"

	"github.com/justyntemme/raito-t/pkg/models"
)

// PageCache maps chapter ids to their ordered page URLs. Entries are never
// replaced or removed for the lifetime of a session.
type PageCache struct {
	urls map[string][]string
}

// NewPageCache creates an empty cache
func NewPageCache() *PageCache {
	return &PageCache{urls: make(map[string][]string)}
}

// Add stores the pages of a chapter. It returns false and keeps the
// existing entry if the chapter is already present.
func (c *PageCache) Add(chapterID string, urls []string) bool {
	if _, ok := c.urls[chapterID]; ok {
		return false
	}
	c.urls[chapterID] = append([]string(nil), urls...)
	return true
}

// Has reports whether the chapter is loaded
func (c *PageCache) Has(chapterID string) bool {
	_, ok := c.urls[chapterID]
	return ok
}

// Pages returns the page URLs of a loaded chapter
func (c *PageCache) Pages(chapterID string) []string {
	return c.urls[chapterID]
}

// Len returns the number of loaded chapters
func (c *PageCache) Len() int {
	return len(c.urls)
}

// Sorted returns the loaded chapter ids in display order: descending
// position in the canonical ordering, so older chapters come first.
func (c *PageCache) Sorted(order []models.Chapter) []string {
	pos := make(map[string]int, len(order))
	for i, ch := range order {
		pos[ch.ID] = i
	}
	ids := make([]string, 0, len(c.urls))
	for id := range c.urls {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		pi, oki := pos[ids[i]]
		pj, okj := pos[ids[j]]
		if !oki {
			pi = -1
		}
		if !okj {
			pj = -1
		}
		if pi != pj {
			return pi > pj
		}
		return ids[i] < ids[j]
	})
	return ids
}
