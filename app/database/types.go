package database

import (
	"time"
)

// SeenItem is an archived feed item, recorded the first time the engine
// observes it.
type SeenItem struct {
	ID          int64
	FeedURL     string
	ItemID      string
	Title       string
	Link        string
	FirstSeenAt time.Time
}

// Notification is a record of one dispatched group notification.
type Notification struct {
	ID         int64
	FeedURL    string
	GroupTitle string
	ItemCount  int
	SentAt     time.Time
}
