package feed

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

const fetchTimeout = 30 * time.Second

// Fetcher retrieves a feed over HTTP and reduces it to the ordered item
// sequence the engine works with. Items keep the upstream order, which is
// newest-first for the watched sources.
type Fetcher struct {
	httpClient   *http.Client
	gofeedParser *gofeed.Parser
	userAgent    string
}

func NewFetcher(httpClient *http.Client, userAgent string) *Fetcher {
	return &Fetcher{
		httpClient:   httpClient,
		gofeedParser: gofeed.NewParser(),
		userAgent:    userAgent,
	}
}

func (f *Fetcher) Fetch(ctx context.Context, feedURL string) ([]Item, error) {
	data, err := f.download(ctx, feedURL)
	if err != nil {
		return nil, err
	}

	parsed, err := f.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	items := make([]Item, 0, len(parsed.Items))
	for _, raw := range parsed.Items {
		if raw == nil {
			continue
		}
		items = append(items, Item{
			ID:    itemID(raw),
			Title: raw.Title,
			Link:  raw.Link,
		})
	}

	return items, nil
}

func (f *Fetcher) download(ctx context.Context, feedURL string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

// itemID derives the stable item identifier from the trailing path
// segment of the item's canonical URL (GUID, falling back to the link).
func itemID(raw *gofeed.Item) string {
	canonical := strings.TrimSpace(cmp.Or(raw.GUID, raw.Link))
	parts := strings.Split(canonical, "/")
	return parts[len(parts)-1]
}
