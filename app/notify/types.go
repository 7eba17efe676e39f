package notify

// Link is one downloadable release variant inside a notification.
type Link struct {
	Label string
	URL   string
}

// Payload is the assembled notification for one release group. It carries
// final display values; fallbacks (group title for a missing episode
// title, "Unknown" for missing audio languages) are applied by the engine
// before dispatch.
type Payload struct {
	GroupTitle     string
	ThumbnailURL   string
	EpisodeTitle   string
	AudioLanguages string
	Links          []Link
	FooterText     string
}
