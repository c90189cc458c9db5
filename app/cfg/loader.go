package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

var ErrInvalidFlags = errors.New("invalid flags")

const DateLayout = "2006-01-02"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	ConfigPath string `long:"config" env:"BRIEF_CONFIG" default:"config.yaml" description:"Path to the YAML configuration file"`
	Date       string `long:"date" env:"BRIEF_DATE" description:"Target date YYYY-MM-DD (defaults to today in the configured timezone)"`

	MaxPerFeed       int  `long:"max-per-feed" env:"BRIEF_MAX_PER_FEED" default:"50" description:"Maximum entries examined per feed"`
	PerCategoryLimit int  `long:"per-category-limit" env:"BRIEF_PER_CATEGORY_LIMIT" default:"30" description:"Maximum items listed per category"`
	IncludeHistory   bool `long:"include-history" env:"BRIEF_INCLUDE_HISTORY" description:"Report every stored item instead of the target day"`
	NoTelegram       bool `long:"no-telegram" env:"BRIEF_NO_TELEGRAM" description:"Skip the Telegram notification"`
	DryRun           bool `long:"dry-run" env:"BRIEF_DRY_RUN" description:"Print the report without touching the store"`

	Verbose     bool `long:"verbose" short:"v" env:"BRIEF_VERBOSE" description:"Enable debug logging"`
	PrintConfig bool `long:"print-config" description:"Print the validated configuration and exit"`
	Summary     bool `long:"summary" env:"BRIEF_SUMMARY" description:"Print a per-feed summary table to stderr"`
	ShowVersion bool `long:"version" description:"Print the version and exit"`

	FetchTimeout time.Duration `long:"fetch-timeout" env:"BRIEF_FETCH_TIMEOUT" default:"30s" description:"HTTP timeout per feed"`
	UserAgent    string        `long:"user-agent" env:"USER_AGENT" default:"RSS Brief/1.0" description:"User agent string for HTTP requests"`

	TelegramToken  string `long:"telegram-token" env:"TELEGRAM_BOT_TOKEN" description:"Telegram bot token"`
	TelegramChatID string `long:"telegram-chat-id" env:"TELEGRAM_CHAT_ID" description:"Telegram chat id"`
	TelegramAPIURL string `long:"telegram-api-url" env:"TELEGRAM_API_URL" default:"https://api.telegram.org" description:"Telegram Bot API base URL"`
}

// Load parses command line arguments (without the program name) and the
// bound environment variables. It returns nil, nil when help was requested.
func Load(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidFlags, err)
	}

	cfg := &Cfg{
		ConfigPath:       raw.ConfigPath,
		MaxPerFeed:       raw.MaxPerFeed,
		PerCategoryLimit: raw.PerCategoryLimit,
		IncludeHistory:   raw.IncludeHistory,
		NoTelegram:       raw.NoTelegram,
		DryRun:           raw.DryRun,
		Verbose:          raw.Verbose,
		PrintConfig:      raw.PrintConfig,
		Summary:          raw.Summary,
		ShowVersion:      raw.ShowVersion,
		FetchTimeout:     raw.FetchTimeout,
		UserAgent:        raw.UserAgent,
		TelegramToken:    strings.TrimSpace(raw.TelegramToken),
		TelegramChatID:   strings.TrimSpace(raw.TelegramChatID),
		TelegramAPIURL:   strings.TrimRight(raw.TelegramAPIURL, "/"),
		Version:          GetVersion(),
	}

	if raw.Date != "" {
		date, err := ParseDate(raw.Date)
		if err != nil {
			return nil, err
		}
		cfg.Date = &date
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ParseDate parses a YYYY-MM-DD value into midnight UTC of that day.
func ParseDate(value string) (time.Time, error) {
	date, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be in YYYY-MM-DD format: %q", ErrInvalidFlags, value)
	}
	return date, nil
}

func validate(cfg *Cfg) error {
	if cfg.MaxPerFeed < 0 {
		return fmt.Errorf("%w: --max-per-feed must be non-negative", ErrInvalidFlags)
	}
	if cfg.PerCategoryLimit < 0 {
		return fmt.Errorf("%w: --per-category-limit must be non-negative", ErrInvalidFlags)
	}
	if cfg.FetchTimeout <= 0 {
		return fmt.Errorf("%w: --fetch-timeout must be positive", ErrInvalidFlags)
	}
	if strings.TrimSpace(cfg.ConfigPath) == "" {
		return fmt.Errorf("%w: --config must not be empty", ErrInvalidFlags)
	}
	return nil
}
