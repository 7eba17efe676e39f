package feed

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/feedherald/feedherald/app/notify"
	"github.com/feedherald/feedherald/app/state"
)

type fakeFetcher struct {
	items []Item
	err   error
}

func (f *fakeFetcher) Fetch(ctx context.Context, feedURL string) ([]Item, error) {
	return f.items, f.err
}

type fakeEnricher struct {
	byLink map[string]Enrichment
	err    error
	calls  int
}

func (f *fakeEnricher) Enrich(ctx context.Context, link string) (Enrichment, error) {
	f.calls++
	if f.err != nil {
		return Enrichment{}, f.err
	}
	return f.byLink[link], nil
}

type fakeNotifier struct {
	payloads []notify.Payload
	err      error
}

func (f *fakeNotifier) Dispatch(ctx context.Context, p notify.Payload) error {
	if f.err != nil {
		return f.err
	}
	f.payloads = append(f.payloads, p)
	return nil
}

type fakeArchive struct {
	items         int
	notifications int
}

func (f *fakeArchive) RecordItem(feedURL, itemID, title, link string) error { f.items++; return nil }
func (f *fakeArchive) RecordNotification(feedURL, groupTitle string, itemCount int) error {
	f.notifications++
	return nil
}

type fixture struct {
	fetcher  *fakeFetcher
	enricher *fakeEnricher
	notifier *fakeNotifier
	archive  *fakeArchive
	history  *state.HistoryStore
	groups   *state.GroupStateStore
	proc     *Processor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	f := &fixture{
		fetcher:  &fakeFetcher{},
		enricher: &fakeEnricher{byLink: map[string]Enrichment{}},
		notifier: &fakeNotifier{},
		archive:  &fakeArchive{},
		history:  state.NewHistoryStore(dir),
		groups:   state.NewGroupStateStore(dir),
	}
	f.proc = NewProcessor(f.fetcher, f.enricher, f.history, f.groups, f.notifier, f.archive)
	return f
}

const testFeed = "https://example.com/feed.rss"

func item(id, title string) Item {
	return Item{ID: id, Title: title, Link: "https://example.com/view/" + id}
}

func TestRunDispatchesOncePerGroup(t *testing.T) {
	f := newFixture(t)
	f.fetcher.items = []Item{
		item("A", "Show S01E01 720p"),
		item("B", "Show S01E01 1080p"),
		item("C", "Show S01E02 720p"),
		item("D", "Show S01E02 1080p"),
	}

	if err := f.proc.Run(context.Background(), testFeed); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(f.notifier.payloads) != 2 {
		t.Fatalf("Expected 2 dispatches (one per group), got: %d", len(f.notifier.payloads))
	}
	if !f.groups.IsDispatched(testFeed, "Show S01E01") {
		t.Error("Expected group 'Show S01E01' to be marked dispatched")
	}
	if !f.groups.IsDispatched(testFeed, "Show S01E02") {
		t.Error("Expected group 'Show S01E02' to be marked dispatched")
	}

	ids := f.history.Read(testFeed)
	sort.Strings(ids)
	if !reflect.DeepEqual(ids, []string{"A", "B", "C", "D"}) {
		t.Errorf("Expected history to hold all 4 new ids, got: %v", ids)
	}

	for _, p := range f.notifier.payloads {
		if len(p.Links) != 2 {
			t.Errorf("Expected 2 link lines per group payload, got: %d", len(p.Links))
		}
	}

	if f.archive.items != 4 || f.archive.notifications != 2 {
		t.Errorf("Expected 4 archived items and 2 archived notifications, got: %d/%d",
			f.archive.items, f.archive.notifications)
	}
}

func TestRunSkipsDispatchedGroupEntirely(t *testing.T) {
	f := newFixture(t)

	// A previous cycle dispatched group "Show S01E01" after seeing A and B.
	if err := f.groups.MarkDispatched(testFeed, "Show S01E01"); err != nil {
		t.Fatalf("Failed to seed dispatch state: %v", err)
	}
	if err := f.history.Write(testFeed, []string{"A", "B"}); err != nil {
		t.Fatalf("Failed to seed history: %v", err)
	}

	// The feed republishes B plus a never-seen variant E under the same
	// normalized title. Known limitation, preserved on purpose: the group
	// is settled forever, so even the unseen E never notifies.
	f.fetcher.items = []Item{
		item("B", "Show S01E01 1080p"),
		item("E", "Show S01E01 4k"),
	}

	if err := f.proc.Run(context.Background(), testFeed); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(f.notifier.payloads) != 0 {
		t.Fatalf("Expected no dispatch for a settled group, got: %d", len(f.notifier.payloads))
	}
	if ids := f.history.Read(testFeed); !reflect.DeepEqual(ids, []string{"A", "B"}) {
		t.Errorf("Expected history unchanged, got: %v", ids)
	}
	if f.enricher.calls != 0 {
		t.Errorf("Expected no enrichment for a settled group, got %d calls", f.enricher.calls)
	}
}

func TestRunNewGroupEvictsOldestHistory(t *testing.T) {
	f := newFixture(t)

	if err := f.history.Write(testFeed, []string{"A", "B", "C", "D"}); err != nil {
		t.Fatalf("Failed to seed history: %v", err)
	}
	if err := f.groups.MarkDispatched(testFeed, "Show S01E01"); err != nil {
		t.Fatalf("Failed to seed dispatch state: %v", err)
	}
	if err := f.groups.MarkDispatched(testFeed, "Show S01E02"); err != nil {
		t.Fatalf("Failed to seed dispatch state: %v", err)
	}

	f.fetcher.items = []Item{
		item("F", "Show S01E03 720p"),
		item("G", "Show S01E03 1080p"),
	}

	if err := f.proc.Run(context.Background(), testFeed); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(f.notifier.payloads) != 1 {
		t.Fatalf("Expected 1 dispatch for the new group, got: %d", len(f.notifier.payloads))
	}
	if ids := f.history.Read(testFeed); !reflect.DeepEqual(ids, []string{"C", "D", "F", "G"}) {
		t.Errorf("Expected oldest ids evicted, got: %v", ids)
	}
}

func TestRunCollapsesDuplicateIDsWithinCycle(t *testing.T) {
	f := newFixture(t)
	f.fetcher.items = []Item{
		item("A", "Show S01E01 720p"),
		item("A", "Show S01E01 720p"),
	}

	if err := f.proc.Run(context.Background(), testFeed); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(f.notifier.payloads) != 1 {
		t.Fatalf("Expected 1 dispatch, got: %d", len(f.notifier.payloads))
	}
	if links := f.notifier.payloads[0].Links; len(links) != 1 {
		t.Errorf("Expected duplicate id to contribute a single link line, got: %d", len(links))
	}
	if ids := f.history.Read(testFeed); !reflect.DeepEqual(ids, []string{"A"}) {
		t.Errorf("Expected history [A], got: %v", ids)
	}
}

func TestRunTakesOnlyNewestFourItems(t *testing.T) {
	f := newFixture(t)
	f.fetcher.items = []Item{
		item("A", "Show S01E05 720p"),
		item("B", "Show S01E04 720p"),
		item("C", "Show S01E03 720p"),
		item("D", "Show S01E02 720p"),
		item("E", "Show S01E01 720p"),
	}

	if err := f.proc.Run(context.Background(), testFeed); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(f.notifier.payloads) != 4 {
		t.Errorf("Expected 4 dispatches (item E beyond the window), got: %d", len(f.notifier.payloads))
	}
	if f.groups.IsDispatched(testFeed, "Show S01E01") {
		t.Error("Expected the item beyond the window to stay untouched")
	}
}

func TestRunFetchFailureMutatesNothing(t *testing.T) {
	f := newFixture(t)
	f.fetcher.err = errors.New("connection refused")

	if err := f.proc.Run(context.Background(), testFeed); err == nil {
		t.Fatal("Expected fetch error to be returned")
	}

	if len(f.notifier.payloads) != 0 {
		t.Errorf("Expected no dispatches, got: %d", len(f.notifier.payloads))
	}
	if ids := f.history.Read(testFeed); len(ids) != 0 {
		t.Errorf("Expected history untouched, got: %v", ids)
	}
}

func TestRunEnrichmentFailureStillDispatches(t *testing.T) {
	f := newFixture(t)
	f.enricher.err = errors.New("detail page unavailable")
	f.fetcher.items = []Item{
		item("A", "Show S01E01 720p"),
	}

	if err := f.proc.Run(context.Background(), testFeed); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(f.notifier.payloads) != 1 {
		t.Fatalf("Expected 1 dispatch despite enrichment failure, got: %d", len(f.notifier.payloads))
	}

	p := f.notifier.payloads[0]
	if p.EpisodeTitle != "Show S01E01" {
		t.Errorf("Expected episode title to fall back to group title, got: %q", p.EpisodeTitle)
	}
	if p.AudioLanguages != "Unknown" {
		t.Errorf("Expected audio languages 'Unknown', got: %q", p.AudioLanguages)
	}
	if len(p.Links) != 1 || p.Links[0].Label != "Show S01E01 720p" {
		t.Errorf("Expected a link-only line labelled with the raw title, got: %+v", p.Links)
	}
	if p.FooterText != "" {
		t.Errorf("Expected no footer without a size annotation, got: %q", p.FooterText)
	}
}

func TestRunEnrichmentFillsPayload(t *testing.T) {
	f := newFixture(t)
	f.fetcher.items = []Item{
		item("A", "Show S01E01 1080p"),
	}
	f.enricher.byLink["https://example.com/view/A"] = Enrichment{
		FileLabel:      "Show S01E01 1080p.mkv (1.4 GiB)",
		EpisodeTitle:   "The Long Road",
		AudioLanguages: "French, Japanese",
	}

	if err := f.proc.Run(context.Background(), testFeed); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(f.notifier.payloads) != 1 {
		t.Fatalf("Expected 1 dispatch, got: %d", len(f.notifier.payloads))
	}

	p := f.notifier.payloads[0]
	if p.GroupTitle != "Show S01E01" {
		t.Errorf("Expected group title 'Show S01E01', got: %q", p.GroupTitle)
	}
	if p.EpisodeTitle != "The Long Road" {
		t.Errorf("Expected scraped episode title, got: %q", p.EpisodeTitle)
	}
	if p.AudioLanguages != "French, Japanese" {
		t.Errorf("Expected scraped audio languages, got: %q", p.AudioLanguages)
	}
	if len(p.Links) != 1 || p.Links[0].Label != "Show S01E01 1080p.mkv" {
		t.Errorf("Expected size annotation stripped from the label, got: %+v", p.Links)
	}
	if !strings.HasPrefix(p.FooterText, "Today at ") {
		t.Errorf("Expected a footer timestamp when a size was extracted, got: %q", p.FooterText)
	}
}

func TestRunDispatchFailureKeepsGroupEligible(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("webhook unavailable")
	f.fetcher.items = []Item{
		item("A", "Show S01E01 720p"),
	}

	if err := f.proc.Run(context.Background(), testFeed); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if f.groups.IsDispatched(testFeed, "Show S01E01") {
		t.Error("Expected group to stay undispatched after a failed dispatch")
	}
	// The ids still enter the history: only a further unseen id can fire
	// the group again. Observed semantics, preserved.
	if ids := f.history.Read(testFeed); !reflect.DeepEqual(ids, []string{"A"}) {
		t.Errorf("Expected history [A], got: %v", ids)
	}
}

func TestRunAtMostOnceAcrossCycles(t *testing.T) {
	f := newFixture(t)
	f.fetcher.items = []Item{
		item("A", "Show S01E01 720p"),
	}

	for cycle := 0; cycle < 3; cycle++ {
		if err := f.proc.Run(context.Background(), testFeed); err != nil {
			t.Fatalf("Cycle %d: expected no error, got: %v", cycle, err)
		}
	}

	if len(f.notifier.payloads) != 1 {
		t.Errorf("Expected exactly 1 dispatch across cycles, got: %d", len(f.notifier.payloads))
	}
}
