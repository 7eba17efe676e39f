package config

// FeedList is the on-disk document holding the watched feed URLs.
type FeedList struct {
	URLs []string `yaml:"urls"`
}
