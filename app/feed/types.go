package feed

// Item is one entry fetched from a feed, reduced to what the engine
// needs. ID is the trailing path segment of the item's canonical URL and
// is stable across re-fetches of the same feed.
type Item struct {
	ID    string
	Title string
	Link  string
}

// Enrichment is the optional metadata scraped from an item's detail page.
// Any field may be empty when the page lacks the expected structure.
type Enrichment struct {
	FileLabel      string
	EpisodeTitle   string
	AudioLanguages string
}
