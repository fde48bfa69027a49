package tasks

import "github.com/lysyi3m/news-browser/app/feed"

// TaskSchedulerInterface is what the application needs from the background
// worker pool.
//
//	scheduler := NewScheduler(deps, opts)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewSnapshotFeedTask(...))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	SyncSource(sourceConfig *feed.Config) ([]TaskInterface, error)
}
