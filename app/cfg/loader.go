package cfg

import (
	"cmp"
	"fmt"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Notification configuration
	WebhookURL string `long:"webhook-url" env:"DISCORD_WEBHOOK_URL" description:"Discord webhook URL notifications are posted to (required)" required:"true"`

	// Application configuration
	FeedsFile    string `long:"feeds-file" env:"FEEDS_FILE" default:"./feeds.yml" description:"File containing the watched feed URLs"`
	DataDir      string `long:"data-dir" env:"DATA_DIR" default:"./data" description:"Directory holding persisted dispatch and history state"`
	DBPath       string `long:"db-path" env:"DB_PATH" default:"./data/feedherald.db" description:"Path to the sqlite item archive"`
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP status server port"`
	PollInterval int    `long:"poll-interval" env:"POLL_INTERVAL" default:"120" description:"Feed poll interval in seconds"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Feed Herald/1.0" description:"User agent string for HTTP requests"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		WebhookURL:   raw.WebhookURL,
		FeedsFile:    raw.FeedsFile,
		DataDir:      raw.DataDir,
		DBPath:       raw.DBPath,
		Port:         raw.Port,
		PollInterval: raw.PollInterval,
		UserAgent:    raw.UserAgent,
		Debug:        raw.Debug,
		Version:      GetVersion(),
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}
