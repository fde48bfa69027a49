package database

import (
	"time"
)

type Snapshot struct {
	Key       string // "today", an archive date, or "source:<name>"
	URL       string
	Body      []byte
	FetchedAt time.Time
}

type Source struct {
	Name          string // Configuration source identifier derived from filename
	URL           string
	Title         string
	Link          string
	Description   string
	ImageURL      string
	Language      string
	PublishedAt   *time.Time
	LastFetchedAt *time.Time
	NextFetchAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SourceSnapshotKey is the snapshot key of an RSS source document.
func SourceSnapshotKey(name string) string {
	return "source:" + name
}
