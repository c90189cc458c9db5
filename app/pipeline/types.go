package pipeline

import (
	"time"
)

type Options struct {
	Date             *time.Time // nil means today in the configured timezone
	MaxPerFeed       int
	PerCategoryLimit int
	IncludeHistory   bool
	DryRun           bool
	SkipNotify       bool
}

// FeedOutcome summarizes one feed of a run. Err is set when the feed
// contributed nothing because it could not be fetched or parsed.
type FeedOutcome struct {
	Name      string
	Category  string
	Total     int
	Examined  int
	Dropped   int
	Filtered  int
	Items     int
	Recovered bool
	Duration  time.Duration
	Err       error
}

type Result struct {
	Date       time.Time
	FetchedAt  time.Time
	Extracted  int // items collected from all feeds
	Inserted   int // items new to the store
	Reported   int // items selected for the report before truncation
	Stored     int // items in the store after the run
	Report     string
	ReportPath string
	HTMLPath   string
	Feeds      []FeedOutcome

	Notified  bool
	NotifyErr error
}

// FailedFeeds counts feeds that contributed nothing due to an error.
func (r *Result) FailedFeeds() int {
	failed := 0
	for _, outcome := range r.Feeds {
		if outcome.Err != nil {
			failed++
		}
	}
	return failed
}
