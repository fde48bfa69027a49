package database

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lysyi3m/news-browser/app/archive"
	"github.com/lysyi3m/news-browser/app/curation"
)

func setupDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewConnection(filepath.Join(t.TempDir(), "data", "news.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	schema, err := RunMigrations(db)
	require.NoError(t, err)
	assert.Equal(t, Schema{Version: 2}, schema)

	return db
}

func TestRunMigrations_Idempotent(t *testing.T) {
	db := setupDB(t)

	schema, err := RunMigrations(db)
	require.NoError(t, err)
	assert.Equal(t, Schema{Version: 2}, schema)
}

func TestRunMigrations_RefusesDirtySchema(t *testing.T) {
	db := setupDB(t)

	_, err := db.Exec("UPDATE schema_migrations SET dirty = 1")
	require.NoError(t, err)

	schema, err := RunMigrations(db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dirty")
	assert.Equal(t, Schema{Version: 2, Dirty: true}, schema)
}

func TestCurationRepository(t *testing.T) {
	repo := NewCurationRepository(setupDB(t))

	items, err := repo.LoadItems(curation.StorageKey)
	require.NoError(t, err)
	assert.Empty(t, items)

	saved := []curation.CuratedItem{
		{Category: "Facts", Item: json.RawMessage(`{"claim":"A"}`)},
		{Category: "Github Updates", Item: json.RawMessage(`{"title":"PR 1"}`)},
	}
	require.NoError(t, repo.SaveItems(curation.StorageKey, saved, time.Now()))

	items, err = repo.LoadItems(curation.StorageKey)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Facts", items[0].Category)
	assert.JSONEq(t, `{"title":"PR 1"}`, string(items[1].Item))

	// saving again replaces rather than appends
	require.NoError(t, repo.SaveItems(curation.StorageKey, saved[:1], time.Now()))
	items, err = repo.LoadItems(curation.StorageKey)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	other, err := repo.LoadItems("other_key")
	require.NoError(t, err)
	assert.Empty(t, other)

	require.NoError(t, repo.ClearItems(curation.StorageKey))
	items, err = repo.LoadItems(curation.StorageKey)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestArchiveRepository(t *testing.T) {
	repo := NewArchiveRepository(setupDB(t))

	listedAt, err := repo.GetListedAt()
	require.NoError(t, err)
	assert.Nil(t, listedAt)

	now := time.Date(2024, 1, 4, 6, 0, 0, 0, time.UTC)
	entries := []archive.DateEntry{
		{Date: "2024-01-01", Filename: "2024-01-01.json", URL: "https://example.com/2024-01-01.json"},
		{Date: "2024-01-03", Filename: "2024-01-03.json", URL: "https://example.com/2024-01-03.json"},
		{Date: "2024-01-02", Filename: "2024-01-02.json", URL: "https://example.com/2024-01-02.json"},
	}
	require.NoError(t, repo.ReplaceDates(entries, now))

	dates, err := repo.GetDates()
	require.NoError(t, err)
	require.Len(t, dates, 3)
	assert.Equal(t, "2024-01-03", dates[0].Date)
	assert.Equal(t, "2024-01-01", dates[2].Date)

	listedAt, err = repo.GetListedAt()
	require.NoError(t, err)
	require.NotNil(t, listedAt)
	assert.True(t, now.Equal(*listedAt))

	require.NoError(t, repo.ReplaceDates(entries[:1], now.Add(time.Hour)))
	dates, err = repo.GetDates()
	require.NoError(t, err)
	assert.Len(t, dates, 1)
}

func TestSnapshotRepository(t *testing.T) {
	repo := NewSnapshotRepository(setupDB(t))

	snapshot, err := repo.GetSnapshot("today")
	require.NoError(t, err)
	assert.Nil(t, snapshot)

	fetchedAt := time.Date(2024, 1, 4, 6, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpsertSnapshot(Snapshot{
		Key:       "today",
		URL:       "https://example.com/daily.json",
		Body:      []byte(`{"title":"v1"}`),
		FetchedAt: fetchedAt,
	}))
	require.NoError(t, repo.UpsertSnapshot(Snapshot{
		Key:       "today",
		URL:       "https://example.com/daily.json",
		Body:      []byte(`{"title":"v2"}`),
		FetchedAt: fetchedAt.Add(time.Minute),
	}))

	snapshot, err = repo.GetSnapshot("today")
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.Equal(t, `{"title":"v2"}`, string(snapshot.Body))
	assert.True(t, fetchedAt.Add(time.Minute).Equal(snapshot.FetchedAt))
}

func TestSourceRepository(t *testing.T) {
	repo := NewSourceRepository(setupDB(t))

	source, err := repo.GetSource("blog")
	require.NoError(t, err)
	assert.Nil(t, source)

	require.NoError(t, repo.UpsertSource("blog", "https://example.com/feed.xml"))
	require.NoError(t, repo.UpsertSource("blog", "https://example.com/feed.xml"))

	count, err := repo.GetSourceCount()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	published := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	nextFetch := time.Now().Add(time.Hour)
	require.NoError(t, repo.UpdateSourceMetadata("blog", "Blog", "https://example.com", "desc", "", "en", &published, nextFetch))

	source, err = repo.GetSource("blog")
	require.NoError(t, err)
	require.NotNil(t, source)
	assert.Equal(t, "Blog", source.Title)
	require.NotNil(t, source.PublishedAt)
	assert.True(t, published.Equal(*source.PublishedAt))
	require.NotNil(t, source.NextFetchAt)
	assert.NotNil(t, source.LastFetchedAt)

	// a new URL makes the source due again
	require.NoError(t, repo.UpsertSource("blog", "https://example.com/other.xml"))
	source, err = repo.GetSource("blog")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/other.xml", source.URL)
	assert.Nil(t, source.NextFetchAt)

	assert.Error(t, repo.UpdateSourceMetadata("missing", "", "", "", "", "", nil, nextFetch))
}
