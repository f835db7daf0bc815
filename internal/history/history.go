// Package history persists the last read position of each manga.
package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/justyntemme/raito-t/internal/api"
	"github.com/justyntemme/raito-t/pkg/models"
)

// ErrNoPosition is returned by Last when nothing was saved for a manga
var ErrNoPosition = errors.New("no saved position")

// Store saves and reads reading positions
type Store interface {
	Save(ctx context.Context, ref models.ChapterRef, page int) error
	Last(ctx context.Context, mangaID string) (*models.ReadingPosition, error)
}

// Remote stores positions on the catalog server
type Remote struct {
	Client *api.Client
}

func (r *Remote) Save(ctx context.Context, ref models.ChapterRef, page int) error {
	if err := r.Client.SavePosition(ctx, ref.MangaID, ref.ChapterID, page); err != nil {
		return fmt.Errorf("remote save position: %w", err)
	}
	return nil
}

func (r *Remote) Last(ctx context.Context, mangaID string) (*models.ReadingPosition, error) {
	pos, err := r.Client.GetPosition(ctx, mangaID)
	if errors.Is(err, api.ErrNotFound) || (err == nil && pos == nil) {
		return nil, ErrNoPosition
	}
	if err != nil {
		return nil, fmt.Errorf("remote get position: %w", err)
	}
	return pos, nil
}

// Multi writes to every store and reads from the first one that has data.
type Multi []Store

// Save attempts all stores and returns the first error
func (m Multi) Save(ctx context.Context, ref models.ChapterRef, page int) error {
	var first error
	for _, s := range m {
		if err := s.Save(ctx, ref, page); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m Multi) Last(ctx context.Context, mangaID string) (*models.ReadingPosition, error) {
	for _, s := range m {
		pos, err := s.Last(ctx, mangaID)
		if err == nil {
			return pos, nil
		}
		if !errors.Is(err, ErrNoPosition) {
			return nil, err
		}
	}
	return nil, ErrNoPosition
}
