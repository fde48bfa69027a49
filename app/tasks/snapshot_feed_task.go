package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/news-browser/app/database"
	"github.com/lysyi3m/news-browser/app/digest"
	"github.com/lysyi3m/news-browser/app/feed"
)

// SnapshotFeedTask stores the document published at URL under Key so the
// browser can serve it when the upstream is unreachable.
type SnapshotFeedTask struct {
	Task
	URL          string
	fetcher      *feed.Fetcher
	snapshotRepo database.SnapshotRepository
}

func NewSnapshotFeedTask(key, url string, fetcher *feed.Fetcher, snapshotRepo database.SnapshotRepository) *SnapshotFeedTask {
	return &SnapshotFeedTask{
		Task:         NewTask(TaskTypeSnapshotFeed, key),
		URL:          url,
		fetcher:      fetcher,
		snapshotRepo: snapshotRepo,
	}
}

func (t *SnapshotFeedTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	data, err := t.fetcher.Fetch(ctx, t.URL)
	if err != nil {
		return err
	}

	doc, err := digest.ParseDocument(data)
	if err != nil {
		return fmt.Errorf("refusing to store snapshot: %w", err)
	}

	err = t.snapshotRepo.UpsertSnapshot(database.Snapshot{
		Key:       t.Target,
		URL:       t.URL,
		Body:      data,
		FetchedAt: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}

	slog.Info("Task completed",
		"type", "SnapshotFeed",
		"key", t.Target,
		"duration", t.Elapsed(),
		"bytes", len(data),
		"categories", len(digest.Normalize(doc).Categories()))

	return nil
}
