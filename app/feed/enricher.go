package feed

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const enrichTimeout = 30 * time.Second

var (
	// Release title is embedded in the description as a Markdown link
	// label: [**SxxEyy Episode Title**](...).
	descriptionTitle = regexp.MustCompile(`\[\*\*(.*?)\*\*\]`)
	episodeTitle     = regexp.MustCompile(`S\d{2}E\d{2}\s+(.*)`)
	audioLine        = regexp.MustCompile(`\*\*Audio\*\*:\s*([^\n]*)`)
)

// Enricher fetches an item's detail page and scrapes optional display
// metadata from it. The page's structure is not under our control, so
// every scraped field is optional: missing markup yields empty fields,
// only transport failures yield an error.
type Enricher struct {
	httpClient *http.Client
	userAgent  string
}

func NewEnricher(httpClient *http.Client, userAgent string) *Enricher {
	return &Enricher{httpClient: httpClient, userAgent: userAgent}
}

func (e *Enricher) Enrich(ctx context.Context, link string) (Enrichment, error) {
	doc, err := e.fetchDetailPage(ctx, detailPageURL(link))
	if err != nil {
		return Enrichment{}, err
	}
	return parseDetailPage(doc), nil
}

func (e *Enricher) fetchDetailPage(ctx context.Context, pageURL string) (*goquery.Document, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, enrichTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch detail page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse detail page: %w", err)
	}

	return doc, nil
}

// detailPageURL rewrites a torrent download link to the release's view
// page, which carries the description and file list.
func detailPageURL(link string) string {
	if strings.HasSuffix(link, ".torrent") {
		link = strings.Replace(link, "/download/", "/view/", 1)
		link = strings.TrimSuffix(link, ".torrent")
	}
	return link
}

func parseDetailPage(doc *goquery.Document) Enrichment {
	var enr Enrichment

	description := doc.Find("div#torrent-description.panel-body").First()
	if description.Length() > 0 {
		text := description.Text()

		if m := descriptionTitle.FindStringSubmatch(text); m != nil {
			if em := episodeTitle.FindStringSubmatch(m[1]); em != nil {
				enr.EpisodeTitle = strings.TrimSpace(em[1])
			}
		}

		if m := audioLine.FindStringSubmatch(text); m != nil {
			enr.AudioLanguages = languageNames(m[1])
		}
	} else {
		slog.Debug("Detail page has no description section")
	}

	fileList := doc.Find("div.torrent-file-list.panel-body").First()
	if fileList.Length() > 0 {
		enr.FileLabel = strings.TrimSpace(fileList.Find("li").First().Text())
	} else {
		slog.Debug("Detail page has no file list section")
	}

	return enr
}

// languageNames reduces "French (France), Japanese (Japan)" to
// "French, Japanese".
func languageNames(raw string) string {
	entries := strings.Split(raw, ",")
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		names = append(names, strings.Fields(entry)[0])
	}
	return strings.Join(names, ", ")
}
