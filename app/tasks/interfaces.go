package tasks

import "context"

// FeedSource yields the feed URLs to poll. It is consulted freshly on
// every cycle so the list can change between cycles without a restart.
type FeedSource interface {
	Load() []string
}

// FeedProcessor runs one poll cycle for one feed.
type FeedProcessor interface {
	Run(ctx context.Context, feedURL string) error
}

// TaskSchedulerInterface drives the poll loop. Example usage:
//
//	scheduler := NewScheduler(feeds, processor, 120*time.Second)
//	scheduler.Start()
//	defer scheduler.Stop()
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
