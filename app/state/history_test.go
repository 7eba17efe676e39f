package state

import (
	"reflect"
	"testing"
)

func TestHistoryReadEmptyByDefault(t *testing.T) {
	store := NewHistoryStore(t.TempDir())

	ids := store.Read("https://example.com/feed.rss")

	if len(ids) != 0 {
		t.Errorf("Expected empty history for unknown feed, got: %v", ids)
	}
}

func TestHistoryWriteThenRead(t *testing.T) {
	store := NewHistoryStore(t.TempDir())
	feedURL := "https://example.com/feed.rss"

	if err := store.Write(feedURL, []string{"a", "b", "c"}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	ids := store.Read(feedURL)
	if !reflect.DeepEqual(ids, []string{"a", "b", "c"}) {
		t.Errorf("Expected [a b c], got: %v", ids)
	}
}

func TestHistoryWriteTruncatesToLimit(t *testing.T) {
	store := NewHistoryStore(t.TempDir())
	feedURL := "https://example.com/feed.rss"

	if err := store.Write(feedURL, []string{"a", "b", "c", "d", "e", "f"}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	ids := store.Read(feedURL)
	if len(ids) != HistoryLimit {
		t.Fatalf("Expected history capped at %d entries, got: %d", HistoryLimit, len(ids))
	}
	if !reflect.DeepEqual(ids, []string{"c", "d", "e", "f"}) {
		t.Errorf("Expected last %d ids in order, got: %v", HistoryLimit, ids)
	}
}

func TestHistoryWriteOverwrites(t *testing.T) {
	store := NewHistoryStore(t.TempDir())
	feedURL := "https://example.com/feed.rss"

	if err := store.Write(feedURL, []string{"a", "b"}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if err := store.Write(feedURL, []string{"c"}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	ids := store.Read(feedURL)
	if !reflect.DeepEqual(ids, []string{"c"}) {
		t.Errorf("Expected write to replace prior content, got: %v", ids)
	}
}

func TestHistoryFilesAreIsolatedPerFeed(t *testing.T) {
	store := NewHistoryStore(t.TempDir())

	if err := store.Write("https://example.com/a.rss", []string{"a1"}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if err := store.Write("https://example.com/b.rss", []string{"b1"}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if ids := store.Read("https://example.com/a.rss"); !reflect.DeepEqual(ids, []string{"a1"}) {
		t.Errorf("Expected [a1], got: %v", ids)
	}
	if ids := store.Read("https://example.com/b.rss"); !reflect.DeepEqual(ids, []string{"b1"}) {
		t.Errorf("Expected [b1], got: %v", ids)
	}
}
