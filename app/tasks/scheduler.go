package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

const taskTimeout = 5 * time.Minute

// Scheduler drives the poll loop: on startup and then on a fixed interval
// it re-reads the feed list and enqueues one poll task per feed.
//
// There is exactly one worker. The engine's document stores are whole-file
// read-modify-write with no locking, so correctness depends on a single
// writer; feeds are therefore processed sequentially, in feed-list order.
// A failed task is not retried: the next cycle polls the feed again and
// the fixed interval is the only throttle.
type Scheduler struct {
	feeds     FeedSource
	processor FeedProcessor
	interval  time.Duration
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	taskQueue chan TaskInterface
}

func NewScheduler(feeds FeedSource, processor FeedProcessor, interval time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		feeds:     feeds,
		processor: processor,
		interval:  interval,
		ctx:       ctx,
		cancel:    cancel,
		taskQueue: make(chan TaskInterface, 64),
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.worker()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueTasks()

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

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

// enqueueTasks reads the feed list fresh and enqueues one poll task per
// feed, preserving feed-list order.
func (s *Scheduler) enqueueTasks() {
	feedURLs := s.feeds.Load()
	if len(feedURLs) == 0 {
		slog.Debug("No feeds configured for this cycle")
		return
	}

	slog.Debug("Scheduling poll tasks", "count", len(feedURLs))

	for _, feedURL := range feedURLs {
		task := NewPollFeedTask(feedURL, s.processor)
		if err := s.EnqueueTask(task); err != nil {
			slog.Warn("Failed to enqueue PollFeedTask", "feed", feedURL, "error", err)
		}
	}
}

func (s *Scheduler) worker() {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, taskTimeout)
	defer cancel()

	if err := task.Execute(taskCtx); err != nil {
		slog.Error("Feed skipped until next cycle", "type", string(task.GetType()), "feed", task.GetFeedURL(), "error", err)
	}
}
