package feed

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/feedherald/feedherald/app/notify"
)

// fetchWindow bounds per-cycle work to the same size as the history cap:
// older items cannot produce ids the history would still remember.
const fetchWindow = 4

var (
	fileSize       = regexp.MustCompile(`(\d+(\.\d+)?\s*(MiB|GiB))`)
	sizeAnnotation = regexp.MustCompile(`\s*\(\d+(\.\d+)?\s*(MiB|GiB)\)`)
)

// Processor is the grouping and dedup engine. Per feed and per cycle it
// partitions the newest items into release groups by normalized title,
// detects items not present in the feed's history window, and dispatches
// at most one notification per group ever.
//
// The stores are read-modify-write whole documents, so a Processor must
// only ever run from a single goroutine (the scheduler's sole worker).
type Processor struct {
	fetcher  FetcherInterface
	enricher EnricherInterface
	history  HistoryStore
	groups   GroupStateStore
	notifier Notifier
	archive  Archive
}

func NewProcessor(fetcher FetcherInterface, enricher EnricherInterface,
	history HistoryStore, groups GroupStateStore, notifier Notifier, archive Archive) *Processor {
	return &Processor{
		fetcher:  fetcher,
		enricher: enricher,
		history:  history,
		groups:   groups,
		notifier: notifier,
		archive:  archive,
	}
}

// Run executes one poll cycle for a single feed. A fetch failure is
// returned without touching any state; every later failure degrades and
// the cycle continues.
func (p *Processor) Run(ctx context.Context, feedURL string) error {
	items, err := p.fetcher.Fetch(ctx, feedURL)
	if err != nil {
		return fmt.Errorf("failed to fetch feed: %w", err)
	}

	if len(items) > fetchWindow {
		items = items[:fetchWindow]
	}

	history := p.history.Read(feedURL)
	seen := make(map[string]bool, len(history)+len(items))
	for _, id := range history {
		seen[id] = true
	}

	groups := make(map[string][]Item)
	for _, item := range items {
		key := Normalize(item.Title)
		groups[key] = append(groups[key], item)
	}

	var newIDs []string
	for title, group := range groups {
		if p.groups.IsDispatched(feedURL, title) {
			slog.Debug("Group already dispatched, skipping", "feed", feedURL, "group", title)
			continue
		}
		newIDs = append(newIDs, p.processGroup(ctx, feedURL, title, group, seen)...)
	}

	if len(newIDs) > 0 {
		if err := p.history.Write(feedURL, append(history, newIDs...)); err != nil {
			slog.Error("Failed to persist feed history", "feed", feedURL, "error", err)
		}
	}

	slog.Info("Feed processed", "feed", feedURL, "items", len(items), "groups", len(groups), "new", len(newIDs))

	return nil
}

// processGroup handles one release group and returns the ids newly seen in
// it. Ids are added to the seen set immediately so duplicates within the
// same cycle collapse. If the group produced at least one new item, a
// single notification is dispatched and, on success, the group is marked
// dispatched forever.
func (p *Processor) processGroup(ctx context.Context, feedURL, title string, group []Item, seen map[string]bool) []string {
	var (
		newIDs         []string
		links          []notify.Link
		episodeTitle   string
		audioLanguages string
		sizeNote       string
	)

	for _, item := range group {
		if seen[item.ID] {
			continue
		}
		seen[item.ID] = true
		newIDs = append(newIDs, item.ID)

		if err := p.archive.RecordItem(feedURL, item.ID, item.Title, item.Link); err != nil {
			slog.Warn("Failed to archive item", "feed", feedURL, "item", item.ID, "error", err)
		}

		enr, err := p.enricher.Enrich(ctx, item.Link)
		if err != nil {
			// Still a new item: it contributes a link-only line.
			slog.Warn("Failed to enrich item", "feed", feedURL, "item", item.ID, "error", err)
			links = append(links, notify.Link{Label: item.Title, URL: item.Link})
			continue
		}

		if enr.EpisodeTitle != "" {
			episodeTitle = enr.EpisodeTitle
		}
		if enr.AudioLanguages != "" {
			audioLanguages = enr.AudioLanguages
		}

		label := item.Title
		if enr.FileLabel != "" {
			if match := fileSize.FindString(enr.FileLabel); match != "" {
				sizeNote = match
			}
			label = strings.TrimSpace(sizeAnnotation.ReplaceAllString(enr.FileLabel, ""))
		}
		links = append(links, notify.Link{Label: label, URL: item.Link})
	}

	if len(newIDs) == 0 {
		return nil
	}

	payload := notify.Payload{
		GroupTitle:     title,
		ThumbnailURL:   notify.ThumbnailFor(group[0].Title),
		EpisodeTitle:   cmp.Or(episodeTitle, title),
		AudioLanguages: cmp.Or(audioLanguages, "Unknown"),
		Links:          links,
	}
	if sizeNote != "" {
		payload.FooterText = "Today at " + time.Now().Format("3:04 PM")
	}

	if err := p.notifier.Dispatch(ctx, payload); err != nil {
		// The group stays undispatched; its ids still enter the history.
		slog.Error("Failed to dispatch notification", "feed", feedURL, "group", title, "error", err)
		return newIDs
	}

	if err := p.groups.MarkDispatched(feedURL, title); err != nil {
		slog.Error("Failed to persist dispatch state", "feed", feedURL, "group", title, "error", err)
	}
	if err := p.archive.RecordNotification(feedURL, title, len(newIDs)); err != nil {
		slog.Warn("Failed to archive notification", "feed", feedURL, "group", title, "error", err)
	}

	return newIDs
}
