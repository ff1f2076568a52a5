package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"waextract/pkg/models"

	_ "modernc.org/sqlite"
)

// Catalog keeps one row per extraction run in a SQLite database.
type Catalog struct {
	db     *sql.DB
	dbPath string
}

func Open(dbPath string) (*Catalog, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create catalog directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}

	_, err = db.Exec(`
		PRAGMA busy_timeout = 5000;

		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp TEXT NOT NULL,
			started_at INTEGER NOT NULL,
			destination TEXT NOT NULL,
			backup_dir TEXT NOT NULL,
			outcome TEXT NOT NULL,
			images INTEGER NOT NULL DEFAULT 0,
			videos INTEGER NOT NULL DEFAULT 0,
			audio INTEGER NOT NULL DEFAULT 0,
			documents INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to setup catalog: %w", err)
	}

	return &Catalog{db: db, dbPath: dbPath}, nil
}

func (c *Catalog) Path() string {
	return c.dbPath
}

func (c *Catalog) Close() error {
	return c.db.Close()
}

func (c *Catalog) Record(ctx context.Context, rec models.RunRecord) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO runs (timestamp, started_at, destination, backup_dir, outcome, images, videos, audio, documents)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Timestamp, rec.StartedAt.Unix(), rec.Destination, rec.BackupDir, rec.Outcome,
		rec.Stats.Images, rec.Stats.Videos, rec.Stats.Audio, rec.Stats.Documents,
	)
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", rec.Timestamp, err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (c *Catalog) Recent(ctx context.Context, limit int) ([]models.RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := c.db.QueryContext(ctx, `
		SELECT timestamp, started_at, destination, backup_dir, outcome, images, videos, audio, documents
		FROM runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var records []models.RunRecord
	for rows.Next() {
		var rec models.RunRecord
		var started int64
		if err := rows.Scan(&rec.Timestamp, &started, &rec.Destination, &rec.BackupDir, &rec.Outcome,
			&rec.Stats.Images, &rec.Stats.Videos, &rec.Stats.Audio, &rec.Stats.Documents); err != nil {
			return nil, err
		}
		rec.StartedAt = time.Unix(started, 0)
		records = append(records, rec)
	}
	return records, rows.Err()
}
