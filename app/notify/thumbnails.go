package notify

import "strings"

// Thumbnail selection is a fixed keyword lookup against the group's
// representative raw title. First matching rule wins; titles matching no
// rule fall back to the default artwork.
var thumbnailRules = []struct {
	keyword string
	url     string
}{
	{"VOSTFR", "https://i.imgur.com/8Q0ZtUj.png"},
	{"VF", "https://i.imgur.com/pB1kYq3.png"},
	{"MULTI", "https://i.imgur.com/Fn2XhVa.png"},
	{"BATCH", "https://i.imgur.com/c9t7JzL.png"},
}

const defaultThumbnailURL = "https://i.imgur.com/VxkQw2d.png"

// ThumbnailFor returns the thumbnail URL for a raw release title.
func ThumbnailFor(rawTitle string) string {
	upper := strings.ToUpper(rawTitle)
	for _, rule := range thumbnailRules {
		if strings.Contains(upper, rule.keyword) {
			return rule.url
		}
	}
	return defaultThumbnailURL
}
