package feed

import (
	"regexp"
	"strings"
)

// Quality markers are a 3-4 digit resolution suffix ("720p", "1080p") or
// the literal "4k", case-insensitive, removed together with a single
// surrounding whitespace on each side.
var qualityMarker = regexp.MustCompile(`(?i)\s?(\d{3,4}p|4k)\s?`)

// Normalize strips resolution/quality markers from a raw item title and
// trims the result. The normalized title is the grouping key for items
// that represent the same underlying release. Idempotent.
func Normalize(rawTitle string) string {
	return strings.TrimSpace(qualityMarker.ReplaceAllString(rawTitle, ""))
}
