package cfg

import "time"

type Cfg struct {
	// Input
	ConfigPath string
	Date       *time.Time // nil means today in the configured timezone

	// Pipeline behaviour
	MaxPerFeed       int
	PerCategoryLimit int
	IncludeHistory   bool
	DryRun           bool
	NoTelegram       bool

	// Output
	Verbose     bool
	PrintConfig bool
	Summary     bool
	ShowVersion bool

	// Transport
	FetchTimeout time.Duration
	UserAgent    string

	// Telegram credentials, never read from the YAML file
	TelegramToken  string
	TelegramChatID string
	TelegramAPIURL string

	Version string
}
