package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/news-browser/app/archive"
	"github.com/lysyi3m/news-browser/app/database"
	"github.com/lysyi3m/news-browser/app/feed"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// TodaySnapshotKey is the snapshot key the current day's document is stored under.
const TodaySnapshotKey = archive.TodayMarker

const (
	queueSize   = 300
	taskTimeout = 5 * time.Minute
)

type Options struct {
	Interval    time.Duration
	WorkerCount int
	SnapshotTTL time.Duration
	TodayURL    string
}

type Dependencies struct {
	ConfigCache  *feed.ConfigCache
	Fetcher      *feed.Fetcher
	Parser       *feed.Parser
	Filterer     *feed.Filterer
	Lister       *archive.Lister
	ArchiveRepo  database.ArchiveRepository
	SnapshotRepo database.SnapshotRepository
	SourceRepo   database.SourceRepository
}

type Scheduler struct {
	deps      Dependencies
	opts      Options
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	taskQueue chan TaskInterface
}

func NewScheduler(deps Dependencies, opts Options) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	if opts.WorkerCount < 1 {
		opts.WorkerCount = 1
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Minute
	}

	return &Scheduler{
		deps:      deps,
		opts:      opts,
		ctx:       ctx,
		cancel:    cancel,
		taskQueue: make(chan TaskInterface, queueSize),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.opts.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.opts.Interval)
		defer ticker.Stop()

		s.enqueueStartupTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()
}

// Stop cancels running tasks and waits for the workers to exit. The queue
// is left open because pending retries may still try to enqueue.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
	}

	select {
	case s.taskQueue <- task:
		return nil
	default:
		return fmt.Errorf("task queue is full")
	}
}

// SyncSource enqueues a config sync followed by a fetch of one source and
// returns the enqueued tasks.
func (s *Scheduler) SyncSource(sourceConfig *feed.Config) ([]TaskInterface, error) {
	configTask := NewSyncSourceConfigTask(sourceConfig, s.deps.SourceRepo)
	if err := s.EnqueueTask(configTask); err != nil {
		return nil, fmt.Errorf("failed to enqueue sync config task: %w", err)
	}

	syncTask := NewSyncSourceTask(sourceConfig, s.deps.Fetcher, s.deps.Parser, s.deps.Filterer, s.deps.SourceRepo, s.deps.SnapshotRepo)
	if err := s.EnqueueTask(syncTask); err != nil {
		return []TaskInterface{configTask}, fmt.Errorf("failed to enqueue sync task: %w", err)
	}

	return []TaskInterface{configTask, syncTask}, nil
}

func (s *Scheduler) enqueueStartupTasks() {
	s.enqueueArchiveTasks(true)

	sourceConfigs := s.sourceConfigs(false)
	if len(sourceConfigs) == 0 {
		slog.Debug("No source configurations found")
		return
	}

	slog.Debug("Processing source configurations", "count", len(sourceConfigs))

	for _, sourceConfig := range sourceConfigs {
		syncTask := NewSyncSourceConfigTask(sourceConfig, s.deps.SourceRepo)
		if err := s.EnqueueTask(syncTask); err != nil {
			slog.Warn("Failed to enqueue SyncSourceConfigTask", "source", sourceConfig.Name, "error", err)
			continue
		}

		if !sourceConfig.Settings.Enabled {
			slog.Debug("Source disabled, skipping SyncSourceTask", "source", sourceConfig.Name)
			continue
		}

		s.enqueueSourceSync(sourceConfig)
	}
}

func (s *Scheduler) enqueueTasks() {
	s.enqueueArchiveTasks(false)

	sourceConfigs := s.sourceConfigs(true)
	if len(sourceConfigs) == 0 {
		slog.Debug("No enabled source configurations found")
		return
	}

	now := time.Now().UTC()
	for _, sourceConfig := range sourceConfigs {
		source, err := s.deps.SourceRepo.GetSource(sourceConfig.Name)
		if err != nil {
			slog.Warn("Failed to get source from database, skipping", "source", sourceConfig.Name, "error", err)
			continue
		}
		if source == nil {
			slog.Warn("Source not found in database, skipping", "source", sourceConfig.Name)
			continue
		}

		if source.NextFetchAt != nil && source.NextFetchAt.After(now) {
			slog.Debug("Source not due for refresh yet", "source", sourceConfig.Name, "next_fetch_at", source.NextFetchAt)
			continue
		}

		s.enqueueSourceSync(sourceConfig)
	}
}

func (s *Scheduler) enqueueSourceSync(sourceConfig *feed.Config) {
	task := NewSyncSourceTask(sourceConfig, s.deps.Fetcher, s.deps.Parser, s.deps.Filterer, s.deps.SourceRepo, s.deps.SnapshotRepo)
	if err := s.EnqueueTask(task); err != nil {
		slog.Warn("Failed to enqueue SyncSourceTask", "source", sourceConfig.Name, "error", err)
	}
}

// enqueueArchiveTasks refreshes the date listing and the today snapshot once
// they are older than the snapshot TTL. force skips the age check.
func (s *Scheduler) enqueueArchiveTasks(force bool) {
	if s.deps.Lister != nil && s.deps.ArchiveRepo != nil {
		due := force
		if !due {
			listedAt, err := s.deps.ArchiveRepo.GetListedAt()
			if err != nil {
				slog.Warn("Failed to read archive listing age", "error", err)
			}
			due = err == nil && s.isStale(listedAt)
		}
		if due {
			if err := s.EnqueueTask(NewRefreshArchiveTask(s.deps.Lister, s.deps.ArchiveRepo)); err != nil {
				slog.Warn("Failed to enqueue RefreshArchiveTask", "error", err)
			}
		}
	}

	if s.opts.TodayURL != "" && s.deps.SnapshotRepo != nil {
		due := force
		if !due {
			snapshot, err := s.deps.SnapshotRepo.GetSnapshot(TodaySnapshotKey)
			if err != nil {
				slog.Warn("Failed to read today snapshot", "error", err)
			}
			if err == nil {
				due = snapshot == nil || s.isStale(&snapshot.FetchedAt)
			}
		}
		if due {
			task := NewSnapshotFeedTask(TodaySnapshotKey, s.opts.TodayURL, s.deps.Fetcher, s.deps.SnapshotRepo)
			if err := s.EnqueueTask(task); err != nil {
				slog.Warn("Failed to enqueue SnapshotFeedTask", "error", err)
			}
		}
	}
}

func (s *Scheduler) isStale(at *time.Time) bool {
	return at == nil || time.Since(*at) >= s.opts.SnapshotTTL
}

func (s *Scheduler) sourceConfigs(enabledOnly bool) []*feed.Config {
	if s.deps.ConfigCache == nil || s.deps.SourceRepo == nil {
		return nil
	}

	configs := s.deps.ConfigCache.GetConfigs()
	if enabledOnly {
		configs = s.deps.ConfigCache.GetEnabledConfigs()
	}

	result := make([]*feed.Config, 0, len(configs))
	for _, name := range s.deps.ConfigCache.Names() {
		if sourceConfig, ok := configs[name]; ok {
			result = append(result, sourceConfig)
		}
	}
	return result
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	meta := task.Meta()
	meta.begin()

	taskCtx, cancel := context.WithTimeout(s.ctx, taskTimeout)
	defer cancel()

	err := task.Execute(taskCtx)
	if err == nil {
		return
	}

	delay, ok := meta.retry()
	if !ok {
		slog.Error("Task failed after maximum retries", "worker_id", workerID, "task", meta, "max_retries", meta.MaxRetries, "error", err)
		return
	}

	slog.Warn("Task failed, retry scheduled", "worker_id", workerID, "task", meta, "delay", delay.String(), "error", err)

	go func() {
		select {
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry", "task", meta)
			return
		case <-time.After(delay):
		}
		if retryErr := s.EnqueueTask(task); retryErr != nil {
			slog.Error("Failed to re-enqueue task for retry", "task", meta, "error", retryErr)
		}
	}()
}
