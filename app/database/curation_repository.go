package database

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lysyi3m/news-browser/app/curation"
)

var _ CurationRepository = (*curationRepository)(nil)

type curationRepository struct {
	db *DB
}

func NewCurationRepository(db *DB) CurationRepository {
	return &curationRepository{db: db}
}

// SaveItems replaces the saved selection under key.
func (r *curationRepository) SaveItems(key string, items []curation.CuratedItem, savedAt time.Time) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM curated_items WHERE storage_key = ?`, key); err != nil {
		return fmt.Errorf("failed to clear curated items: %w", err)
	}

	for i, item := range items {
		_, err := tx.Exec(`
			INSERT INTO curated_items (storage_key, position, category, item, saved_at)
			VALUES (?, ?, ?, ?, ?)
		`, key, i, item.Category, string(item.Item), savedAt.UTC().Unix())
		if err != nil {
			return fmt.Errorf("failed to insert curated item %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit curated items: %w", err)
	}

	return nil
}

func (r *curationRepository) LoadItems(key string) ([]curation.CuratedItem, error) {
	rows, err := r.db.Query(`
		SELECT category, item
		FROM curated_items
		WHERE storage_key = ?
		ORDER BY position ASC
	`, key)
	if err != nil {
		return nil, fmt.Errorf("failed to query curated items: %w", err)
	}
	defer rows.Close()

	items := []curation.CuratedItem{}
	for rows.Next() {
		var category, item string
		if err := rows.Scan(&category, &item); err != nil {
			return nil, fmt.Errorf("failed to scan curated item: %w", err)
		}
		items = append(items, curation.CuratedItem{
			Category: category,
			Item:     json.RawMessage(item),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate curated items: %w", err)
	}

	return items, nil
}

func (r *curationRepository) ClearItems(key string) error {
	if _, err := r.db.Exec(`DELETE FROM curated_items WHERE storage_key = ?`, key); err != nil {
		return fmt.Errorf("failed to clear curated items: %w", err)
	}
	return nil
}
