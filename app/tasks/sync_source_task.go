package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/news-browser/app/database"
	"github.com/lysyi3m/news-browser/app/feed"
)

// SyncSourceTask fetches an RSS/Atom source, filters it and stores the
// resulting canonical document.
type SyncSourceTask struct {
	Task
	SourceConfig *feed.Config
	fetcher      *feed.Fetcher
	parser       *feed.Parser
	filterer     *feed.Filterer
	sourceRepo   database.SourceRepository
	snapshotRepo database.SnapshotRepository
}

func NewSyncSourceTask(sourceConfig *feed.Config, fetcher *feed.Fetcher, parser *feed.Parser, filterer *feed.Filterer, sourceRepo database.SourceRepository, snapshotRepo database.SnapshotRepository) *SyncSourceTask {
	return &SyncSourceTask{
		Task:         NewTask(TaskTypeSyncSource, sourceConfig.Name),
		SourceConfig: sourceConfig,
		fetcher:      fetcher,
		parser:       parser,
		filterer:     filterer,
		sourceRepo:   sourceRepo,
		snapshotRepo: snapshotRepo,
	}
}

func (t *SyncSourceTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.SourceConfig.Settings.Enabled {
		slog.Debug("Source disabled, skipping", "source", t.Target)
		return nil
	}

	if t.SourceConfig.Settings.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(t.SourceConfig.Settings.Timeout)*time.Second)
		defer cancel()
	}

	data, err := t.fetcher.Fetch(ctx, t.SourceConfig.URL)
	if err != nil {
		return fmt.Errorf("failed to fetch source: %w", err)
	}

	metadata, items, err := t.parser.Run(data)
	if err != nil {
		return fmt.Errorf("failed to parse source: %w", err)
	}

	filtered := t.filterer.Run(items, t.SourceConfig)
	filteredCount := 0
	for _, item := range filtered {
		if item.IsFiltered {
			filteredCount++
		}
	}

	doc, err := t.parser.ToDocument(t.SourceConfig, metadata, filtered)
	if err != nil {
		return fmt.Errorf("failed to build source document: %w", err)
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode source document: %w", err)
	}

	now := time.Now()
	err = t.snapshotRepo.UpsertSnapshot(database.Snapshot{
		Key:       database.SourceSnapshotKey(t.Target),
		URL:       t.SourceConfig.URL,
		Body:      body,
		FetchedAt: now,
	})
	if err != nil {
		return fmt.Errorf("failed to store source document: %w", err)
	}

	nextFetch := now.Add(time.Duration(t.SourceConfig.Settings.RefreshInterval) * time.Second)
	err = t.sourceRepo.UpdateSourceMetadata(t.Target, metadata.Title, metadata.Link, metadata.Description, metadata.ImageURL, metadata.Language, metadata.PublishedAt, nextFetch)
	if err != nil {
		return fmt.Errorf("failed to update source metadata and next fetch time: %w", err)
	}

	slog.Info("Task completed",
		"type", "SyncSource",
		"source", t.Target,
		"duration", t.Elapsed(),
		"total", len(items),
		"filtered", filteredCount)

	return nil
}
