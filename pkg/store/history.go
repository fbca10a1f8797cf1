package store

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// SearchRun is one completed pipeline run.
type SearchRun struct {
	ID         string    `db:"id"         json:"id"`
	Query      string    `db:"query"      json:"query"`
	Filename   string    `db:"filename"   json:"filename"`
	TweetCount int       `db:"tweet_count" json:"tweet_count"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// History records completed search runs in SQLite.
type History struct {
	db *sqlx.DB
}

func NewHistory(dbPath string) (*History, error) {
	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to SQLite")
	}

	// WAL keeps concurrent readers off the writer's back.
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, errors.Wrap(err, "failed to enable WAL mode")
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS searches (
			id TEXT PRIMARY KEY,
			query TEXT NOT NULL,
			filename TEXT NOT NULL,
			tweet_count INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_searches_created_at ON searches(created_at);
	`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create searches table")
	}

	return &History{db: db}, nil
}

func (h *History) Record(ctx context.Context, run SearchRun) error {
	_, err := h.db.ExecContext(ctx,
		`INSERT INTO searches (id, query, filename, tweet_count, created_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Query, run.Filename, run.TweetCount, run.CreatedAt.UTC(),
	)
	return errors.Wrap(err, "recording search run")
}

// Recent returns up to limit runs, newest first.
func (h *History) Recent(ctx context.Context, limit int) ([]SearchRun, error) {
	if limit <= 0 {
		limit = 20
	}
	runs := []SearchRun{}
	err := h.db.SelectContext(ctx, &runs,
		`SELECT id, query, filename, tweet_count, created_at FROM searches ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "listing search runs")
	}
	return runs, nil
}

func (h *History) Close() error {
	return h.db.Close()
}
