package cfg

type Cfg struct {
	// Notification configuration
	WebhookURL string

	// Application configuration
	FeedsFile    string
	DataDir      string
	DBPath       string
	Port         string
	PollInterval int

	// Application metadata
	UserAgent string
	Debug     bool
	Version   string
}
