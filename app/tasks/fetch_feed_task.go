package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/lysyi3m/rss-brief/app/config"
	"github.com/lysyi3m/rss-brief/app/feed"
)

// ErrFeedFetch marks a feed that contributed nothing to the run because it
// could not be downloaded or parsed. It never aborts the run.
var ErrFeedFetch = errors.New("feed fetch failed")

// FetchFeedTask downloads one feed and turns it into items ready for storage.
// Results are available on the task after Execute returns.
type FetchFeedTask struct {
	Task
	FeedConfig config.FeedConfig
	maxEntries int
	httpClient *http.Client
	parser     *feed.Parser
	extractor  *feed.Extractor
	filterer   *feed.Filterer
	userAgent  string
	logger     *slog.Logger

	Items     []feed.Item
	Total     int
	Examined  int
	Dropped   int
	Filtered  int
	Recovered bool
}

var _ TaskInterface = (*FetchFeedTask)(nil)

func NewFetchFeedTask(feedConfig config.FeedConfig, maxEntries int, httpClient *http.Client, parser *feed.Parser, extractor *feed.Extractor, filterer *feed.Filterer, userAgent string, logger *slog.Logger) *FetchFeedTask {
	task := NewTask(TaskTypeFetchFeed, feedConfig.Name)

	return &FetchFeedTask{
		Task:       task,
		FeedConfig: feedConfig,
		maxEntries: maxEntries,
		httpClient: httpClient,
		parser:     parser,
		extractor:  extractor,
		filterer:   filterer,
		userAgent:  userAgent,
		logger:     logger.With("feed", feedConfig.Name, "task_id", task.ID),
	}
}

func (t *FetchFeedTask) Execute(ctx context.Context) error {
	t.Start()

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	data, err := t.fetchFeed(ctx, t.FeedConfig.URL)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrFeedFetch, t.FeedName, err)
	}

	result, err := t.parser.Run(data)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrFeedFetch, t.FeedName, err)
	}

	if result.Recovered {
		t.Recovered = true
		t.logger.Warn("Feed parsed after recovery", "url", t.FeedConfig.URL, "cause", result.RecoveryCause)
	}

	result.ResolveLinks(t.FeedConfig.URL)

	extraction := t.extractor.Run(result.Entries, t.FeedConfig, t.maxEntries)
	t.Total = extraction.Total
	t.Examined = extraction.Examined
	t.Dropped = extraction.Dropped

	for _, item := range t.filterer.Run(extraction.Items, t.FeedConfig.Filters) {
		if item.IsFiltered {
			t.Filtered++
			t.logger.Debug("Item filtered", "link", item.Link, "reason", item.FilterReason)
			continue
		}
		t.Items = append(t.Items, item)
	}

	t.logger.Info("Task completed",
		"type", t.Type,
		"duration", t.GetDuration(),
		"total", t.Total,
		"examined", t.Examined,
		"dropped", t.Dropped,
		"filtered", t.Filtered,
		"items", len(t.Items))

	return nil
}

func (t *FetchFeedTask) fetchFeed(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
