package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/justyntemme/raito-t/pkg/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS reading_history (
	manga_id   TEXT NOT NULL PRIMARY KEY,
	chapter_id TEXT NOT NULL,
	page       INTEGER NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
`

// SQLite keeps one row per manga with its last read chapter and page
type SQLite struct {
	DB  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (creating if needed) the history database at path
func OpenSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure data dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Saves come from command goroutines; one connection serialises them.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragma journal_mode: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate history: %w", err)
	}

	return &SQLite{DB: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

// Close closes the underlying database
func (s *SQLite) Close() error {
	return s.DB.Close()
}

func (s *SQLite) Save(ctx context.Context, ref models.ChapterRef, page int) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO reading_history (manga_id, chapter_id, page, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(manga_id) DO UPDATE SET
			chapter_id = excluded.chapter_id,
			page = excluded.page,
			updated_at = excluded.updated_at
	`, ref.MangaID, ref.ChapterID, page, s.now())
	if err != nil {
		return fmt.Errorf("save reading history: %w", err)
	}
	return nil
}

func (s *SQLite) Last(ctx context.Context, mangaID string) (*models.ReadingPosition, error) {
	pos := &models.ReadingPosition{MangaID: mangaID}
	err := s.DB.QueryRowContext(ctx, `
		SELECT chapter_id, page, updated_at
		FROM reading_history
		WHERE manga_id = ?
	`, mangaID).Scan(&pos.ChapterID, &pos.Page, &pos.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoPosition
	}
	if err != nil {
		return nil, fmt.Errorf("read reading history: %w", err)
	}
	return pos, nil
}
