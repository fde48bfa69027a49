package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lysyi3m/news-browser/app/archive"
)

var _ ArchiveRepository = (*archiveRepository)(nil)

type archiveRepository struct {
	db *DB
}

func NewArchiveRepository(db *DB) ArchiveRepository {
	return &archiveRepository{db: db}
}

// ReplaceDates stores a fresh archive listing. Dates no longer listed are
// removed.
func (r *archiveRepository) ReplaceDates(entries []archive.DateEntry, listedAt time.Time) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM archive_dates`); err != nil {
		return fmt.Errorf("failed to clear archive dates: %w", err)
	}

	for _, entry := range entries {
		_, err := tx.Exec(`
			INSERT INTO archive_dates (date, filename, url, listed_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (date) DO UPDATE SET
				filename = excluded.filename,
				url = excluded.url,
				listed_at = excluded.listed_at
		`, entry.Date, entry.Filename, entry.URL, listedAt.UTC().Unix())
		if err != nil {
			return fmt.Errorf("failed to insert archive date %s: %w", entry.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit archive dates: %w", err)
	}

	return nil
}

// GetDates returns the stored listing newest first.
func (r *archiveRepository) GetDates() ([]archive.DateEntry, error) {
	rows, err := r.db.Query(`
		SELECT date, filename, url
		FROM archive_dates
		ORDER BY date DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query archive dates: %w", err)
	}
	defer rows.Close()

	entries := []archive.DateEntry{}
	for rows.Next() {
		var entry archive.DateEntry
		if err := rows.Scan(&entry.Date, &entry.Filename, &entry.URL); err != nil {
			return nil, fmt.Errorf("failed to scan archive date: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate archive dates: %w", err)
	}

	return entries, nil
}

// GetListedAt is when the listing was last refreshed, or nil if never.
func (r *archiveRepository) GetListedAt() (*time.Time, error) {
	var listedAt sql.NullInt64
	if err := r.db.QueryRow(`SELECT MAX(listed_at) FROM archive_dates`).Scan(&listedAt); err != nil {
		return nil, fmt.Errorf("failed to query archive listing time: %w", err)
	}
	return timeOrNil(listedAt), nil
}
