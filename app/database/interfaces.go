package database

import (
	"time"

	"github.com/lysyi3m/news-browser/app/archive"
	"github.com/lysyi3m/news-browser/app/curation"
)

type CurationRepository interface {
	SaveItems(key string, items []curation.CuratedItem, savedAt time.Time) error
	LoadItems(key string) ([]curation.CuratedItem, error)
	ClearItems(key string) error
}

type ArchiveRepository interface {
	ReplaceDates(entries []archive.DateEntry, listedAt time.Time) error
	GetDates() ([]archive.DateEntry, error)
	GetListedAt() (*time.Time, error)
}

type SnapshotRepository interface {
	UpsertSnapshot(snapshot Snapshot) error
	GetSnapshot(key string) (*Snapshot, error)
}

type SourceRepository interface {
	GetSource(name string) (*Source, error)
	GetSourceCount() (int, error)

	UpsertSource(name, url string) error
	UpdateSourceMetadata(name string, title string, link string, description string, imageURL string, language string, publishedAt *time.Time, nextFetch time.Time) error
}
