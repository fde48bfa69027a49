package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ SourceRepository = (*sourceRepository)(nil)

type sourceRepository struct {
	db *DB
}

func NewSourceRepository(db *DB) SourceRepository {
	return &sourceRepository{db: db}
}

func (r *sourceRepository) GetSource(name string) (*Source, error) {
	var source Source
	var publishedAt, lastFetchedAt, nextFetchAt sql.NullInt64
	var createdAt, updatedAt int64

	err := r.db.QueryRow(`
		SELECT name, url, title, link, description, image_url, language,
			published_at, last_fetched_at, next_fetch_at, created_at, updated_at
		FROM sources
		WHERE name = ?
	`, name).Scan(
		&source.Name, &source.URL, &source.Title, &source.Link, &source.Description,
		&source.ImageURL, &source.Language, &publishedAt, &lastFetchedAt, &nextFetchAt,
		&createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get source: %w", err)
	}

	source.PublishedAt = timeOrNil(publishedAt)
	source.LastFetchedAt = timeOrNil(lastFetchedAt)
	source.NextFetchAt = timeOrNil(nextFetchAt)
	source.CreatedAt = time.Unix(createdAt, 0).UTC()
	source.UpdatedAt = time.Unix(updatedAt, 0).UTC()

	return &source, nil
}

func (r *sourceRepository) GetSourceCount() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM sources`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count sources: %w", err)
	}
	return count, nil
}

// UpsertSource registers a configured source. A changed URL makes the
// source due immediately.
func (r *sourceRepository) UpsertSource(name, url string) error {
	now := time.Now().UTC().Unix()
	_, err := r.db.Exec(`
		INSERT INTO sources (name, url, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			next_fetch_at = CASE WHEN sources.url != excluded.url THEN NULL ELSE sources.next_fetch_at END,
			url = excluded.url,
			updated_at = excluded.updated_at
	`, name, url, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert source: %w", err)
	}
	return nil
}

func (r *sourceRepository) UpdateSourceMetadata(name string, title string, link string, description string, imageURL string, language string, publishedAt *time.Time, nextFetch time.Time) error {
	now := time.Now().UTC().Unix()
	result, err := r.db.Exec(`
		UPDATE sources
		SET title = ?, link = ?, description = ?, image_url = ?, language = ?,
			published_at = ?, last_fetched_at = ?, next_fetch_at = ?, updated_at = ?
		WHERE name = ?
	`, title, link, description, imageURL, language, unixOrNil(publishedAt), now, nextFetch.UTC().Unix(), now, name)
	if err != nil {
		return fmt.Errorf("failed to update source metadata: %w", err)
	}

	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("source '%s' not found", name)
	}

	return nil
}
