package feed

import (
	"context"

	"github.com/feedherald/feedherald/app/notify"
)

// Collaborator contracts consumed by the Processor. The concrete
// implementations live in this package (Fetcher, Enricher), app/state and
// app/notify; tests substitute fakes.

type FetcherInterface interface {
	Fetch(ctx context.Context, feedURL string) ([]Item, error)
}

type EnricherInterface interface {
	Enrich(ctx context.Context, link string) (Enrichment, error)
}

// HistoryStore is the per-feed sliding dedup window. Read degrades to an
// empty list on failure; Write truncates to the store's bounded size.
type HistoryStore interface {
	Read(feedURL string) []string
	Write(feedURL string, ids []string) error
}

// GroupStateStore holds the monotonic one-shot dispatch flag per
// (feed, normalized group title). There is deliberately no unset operation.
type GroupStateStore interface {
	IsDispatched(feedURL, groupTitle string) bool
	MarkDispatched(feedURL, groupTitle string) error
}

type Notifier interface {
	Dispatch(ctx context.Context, payload notify.Payload) error
}

// Archive records observed items and sent notifications for the status
// API. It is observational only: the engine never consults it for dedup
// decisions, and archive failures never block a cycle.
type Archive interface {
	RecordItem(feedURL, itemID, title, link string) error
	RecordNotification(feedURL, groupTitle string, itemCount int) error
}
