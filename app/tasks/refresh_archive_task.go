package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/news-browser/app/archive"
	"github.com/lysyi3m/news-browser/app/database"
)

const archiveTarget = "archive"

type RefreshArchiveTask struct {
	Task
	lister      *archive.Lister
	archiveRepo database.ArchiveRepository
}

func NewRefreshArchiveTask(lister *archive.Lister, archiveRepo database.ArchiveRepository) *RefreshArchiveTask {
	return &RefreshArchiveTask{
		Task:        NewTask(TaskTypeRefreshArchive, archiveTarget),
		lister:      lister,
		archiveRepo: archiveRepo,
	}
}

func (t *RefreshArchiveTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	entries, err := t.lister.List(ctx)
	if err != nil {
		return err
	}

	// an empty listing is more likely an upstream hiccup than a wiped archive
	if len(entries) == 0 {
		slog.Warn("Archive listing is empty, keeping stored dates")
		return nil
	}

	if err := t.archiveRepo.ReplaceDates(entries, time.Now()); err != nil {
		return fmt.Errorf("failed to store archive dates: %w", err)
	}

	slog.Info("Task completed",
		"type", "RefreshArchive",
		"duration", t.Elapsed(),
		"dates", len(entries),
		"newest", entries[0].Date)

	return nil
}
