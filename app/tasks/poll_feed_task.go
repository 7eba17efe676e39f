package tasks

import (
	"context"
	"fmt"
	"log/slog"
)

type PollFeedTask struct {
	Task
	processor FeedProcessor
}

func NewPollFeedTask(feedURL string, processor FeedProcessor) *PollFeedTask {
	return &PollFeedTask{
		Task:      NewTask(TaskTypePollFeed, feedURL),
		processor: processor,
	}
}

func (t *PollFeedTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := t.processor.Run(ctx, t.FeedURL); err != nil {
		return fmt.Errorf("failed to process feed: %w", err)
	}

	slog.Debug("Task completed", "type", string(t.Type), "feed", t.FeedURL, "duration", t.GetDuration())

	return nil
}
