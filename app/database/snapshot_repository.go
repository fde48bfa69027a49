package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ SnapshotRepository = (*snapshotRepository)(nil)

type snapshotRepository struct {
	db *DB
}

func NewSnapshotRepository(db *DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

func (r *snapshotRepository) UpsertSnapshot(snapshot Snapshot) error {
	_, err := r.db.Exec(`
		INSERT INTO feed_snapshots (key, url, body, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			url = excluded.url,
			body = excluded.body,
			fetched_at = excluded.fetched_at
	`, snapshot.Key, snapshot.URL, string(snapshot.Body), snapshot.FetchedAt.UTC().Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert snapshot %s: %w", snapshot.Key, err)
	}
	return nil
}

// GetSnapshot returns nil when nothing is stored under key.
func (r *snapshotRepository) GetSnapshot(key string) (*Snapshot, error) {
	var (
		snapshot  Snapshot
		body      string
		fetchedAt int64
	)

	err := r.db.QueryRow(`
		SELECT key, url, body, fetched_at
		FROM feed_snapshots
		WHERE key = ?
	`, key).Scan(&snapshot.Key, &snapshot.URL, &body, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot %s: %w", key, err)
	}

	snapshot.Body = []byte(body)
	snapshot.FetchedAt = time.Unix(fetchedAt, 0).UTC()

	return &snapshot, nil
}
