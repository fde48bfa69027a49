package tasks

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type TaskType string

const (
	TaskTypeRefreshArchive   TaskType = "refresh_archive"
	TaskTypeSnapshotFeed     TaskType = "snapshot_feed"
	TaskTypeSyncSource       TaskType = "sync_source"
	TaskTypeSyncSourceConfig TaskType = "sync_source_config"
)

const (
	DefaultMaxRetries = 3

	maxBackoff = 30 * time.Second
)

// TaskInterface is a unit of background work. Meta exposes the
// bookkeeping the scheduler keeps across attempts.
type TaskInterface interface {
	Execute(ctx context.Context) error
	Meta() *Task
}

// Task is embedded by every task. Target names what the task works on: a
// source name, a snapshot key or the archive.
type Task struct {
	ID         string
	Type       TaskType
	Target     string
	Retries    int
	MaxRetries int
	StartedAt  time.Time
}

func NewTask(taskType TaskType, target string) Task {
	return Task{
		ID:         uuid.NewString(),
		Type:       taskType,
		Target:     target,
		MaxRetries: DefaultMaxRetries,
	}
}

func (t *Task) Meta() *Task {
	return t
}

// Elapsed is the time since the current attempt started.
func (t *Task) Elapsed() time.Duration {
	if t.StartedAt.IsZero() {
		return 0
	}
	return time.Since(t.StartedAt)
}

func (t *Task) begin() {
	t.StartedAt = time.Now()
}

// retry uses up one retry and returns the wait before it. It reports false
// once MaxRetries have been spent.
func (t *Task) retry() (time.Duration, bool) {
	if t.Retries >= t.MaxRetries {
		return 0, false
	}
	t.Retries++
	return retryDelay(t.Retries), true
}

func (t *Task) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", t.ID),
		slog.String("type", string(t.Type)),
		slog.String("target", t.Target),
		slog.Int("retries", t.Retries),
	)
}

// retryDelay doubles from one second per retry, up to maxBackoff.
func retryDelay(retries int) time.Duration {
	if retries < 1 {
		retries = 1
	}
	if retries > 6 {
		return maxBackoff
	}
	return min(time.Duration(1<<(retries-1))*time.Second, maxBackoff)
}
