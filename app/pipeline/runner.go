package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/lysyi3m/rss-brief/app/config"
	"github.com/lysyi3m/rss-brief/app/database"
	"github.com/lysyi3m/rss-brief/app/feed"
	"github.com/lysyi3m/rss-brief/app/notify"
	"github.com/lysyi3m/rss-brief/app/report"
	"github.com/lysyi3m/rss-brief/app/tasks"
)

// Runner performs one fetch, store and report cycle.
type Runner struct {
	config     *config.Config
	httpClient *http.Client
	userAgent  string
	notifier   notify.Notifier
	out        io.Writer
	logger     *slog.Logger

	parser    *feed.Parser
	extractor *feed.Extractor
	filterer  *feed.Filterer
	generator *report.Generator

	now func() time.Time
}

func NewRunner(cfg *config.Config, httpClient *http.Client, userAgent string, notifier notify.Notifier, out io.Writer, logger *slog.Logger) *Runner {
	return &Runner{
		config:     cfg,
		httpClient: httpClient,
		userAgent:  userAgent,
		notifier:   notifier,
		out:        out,
		logger:     logger,
		parser:     feed.NewParser(),
		extractor:  feed.NewExtractor(logger),
		filterer:   feed.NewFilterer(),
		generator:  report.NewGenerator(),
		now:        time.Now,
	}
}

// Run executes the pipeline. Feed and notification failures are recorded on
// the result; store and report file failures are returned.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	result := &Result{
		Date:      r.targetDate(opts.Date),
		FetchedAt: r.now().UTC().Truncate(time.Microsecond),
	}

	items, err := r.collect(ctx, opts.MaxPerFeed, result)
	if err != nil {
		return result, err
	}
	result.Extracted = len(items)

	if opts.DryRun {
		r.logger.Info("Dry run enabled: skipping database writes")
		reportItems := dedupe(items)
		result.Reported = len(reportItems)
		result.Report = r.generator.Run(reportItems, result.Date, opts.PerCategoryLimit)
		if _, err := io.WriteString(r.out, result.Report); err != nil {
			return result, fmt.Errorf("failed to write report: %w", err)
		}
		return result, nil
	}

	reportItems, err := r.persist(ctx, items, result.Date, opts.IncludeHistory, result)
	if err != nil {
		return result, err
	}
	result.Reported = len(reportItems)
	result.Report = r.generator.Run(reportItems, result.Date, opts.PerCategoryLimit)

	if err := r.writeReport(result); err != nil {
		return result, err
	}

	if opts.SkipNotify || !r.config.Delivery.Telegram.Enabled {
		r.logger.Debug("Notification skipped")
		return result, nil
	}

	message := notify.ReadyMessage(result.Date, result.Inserted, result.ReportPath)
	if err := r.notifier.Notify(ctx, message); err != nil {
		result.NotifyErr = err
		if errors.Is(err, notify.ErrMissingCredentials) {
			r.logger.Warn("Telegram is enabled but credentials are missing", "error", err)
		} else {
			r.logger.Error("Failed to send notification", "error", err)
		}
		return result, nil
	}
	result.Notified = true
	r.logger.Info("Notification sent")

	return result, nil
}

// targetDate returns the report day as midnight UTC carrying the day's
// calendar date.
func (r *Runner) targetDate(override *time.Time) time.Time {
	day := r.now().In(r.config.Location())
	if override != nil {
		day = *override
	}
	year, month, date := day.Date()
	return time.Date(year, month, date, 0, 0, 0, 0, time.UTC)
}

// collect fetches every configured feed in order and stamps the resulting
// items with the run's batch timestamp. Only cancellation is an error.
func (r *Runner) collect(ctx context.Context, maxPerFeed int, result *Result) ([]database.Item, error) {
	var items []database.Item

	for _, feedConfig := range r.config.Feeds {
		task := tasks.NewFetchFeedTask(
			feedConfig,
			feedConfig.EntryCap(maxPerFeed),
			r.httpClient,
			r.parser,
			r.extractor,
			r.filterer,
			r.userAgent,
			r.logger,
		)

		err := task.Execute(ctx)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("run cancelled: %w", ctxErr)
		}

		outcome := FeedOutcome{
			Name:      feedConfig.Name,
			Category:  feedConfig.Category,
			Total:     task.Total,
			Examined:  task.Examined,
			Dropped:   task.Dropped,
			Filtered:  task.Filtered,
			Items:     len(task.Items),
			Recovered: task.Recovered,
			Duration:  task.GetDuration(),
			Err:       err,
		}
		result.Feeds = append(result.Feeds, outcome)

		if err != nil {
			r.logger.Error("Failed to fetch feed", "feed", feedConfig.Name, "url", feedConfig.URL, "error", err)
			continue
		}

		for _, item := range task.Items {
			items = append(items, database.Item{
				ID:           feed.HashLink(item.Link),
				FetchedAt:    result.FetchedAt,
				PublishedRaw: item.PublishedRaw,
				Category:     item.Category,
				Source:       item.Source,
				Title:        item.Title,
				Link:         item.Link,
				SummaryRaw:   item.SummaryRaw,
			})
		}
	}

	return items, nil
}

func (r *Runner) persist(ctx context.Context, items []database.Item, date time.Time, includeHistory bool, result *Result) ([]database.Item, error) {
	store, err := database.Open(ctx, r.config.Storage.DBPath, r.logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := store.Close(); err != nil {
			r.logger.Error("Failed to close store", "error", err)
		}
	}()

	if err := store.Initialize(ctx); err != nil {
		return nil, err
	}

	result.Inserted, err = store.InsertNew(ctx, items)
	if err != nil {
		return nil, fmt.Errorf("failed to store items: %w", err)
	}
	r.logger.Info("Inserted new items", "inserted", result.Inserted, "offered", len(items))

	reportItems, err := store.QueryByDate(ctx, date, includeHistory)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}

	result.Stored, err = store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count items: %w", err)
	}

	return reportItems, nil
}

func (r *Runner) writeReport(result *Result) error {
	dir := r.config.Storage.ReportsDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create reports directory: %w", err)
	}

	name := result.Date.Format(report.DateLayout)
	path, err := filepath.Abs(filepath.Join(dir, name+".md"))
	if err != nil {
		return fmt.Errorf("failed to resolve report path: %w", err)
	}

	if err := os.WriteFile(path, []byte(result.Report), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	result.ReportPath = path
	r.logger.Info("Report written", "path", path, "items", result.Reported)

	if !r.config.Storage.HTMLReports {
		return nil
	}

	page, err := report.RenderHTML(result.Report, result.Date)
	if err != nil {
		return err
	}

	htmlPath := filepath.Join(filepath.Dir(path), name+".html")
	if err := os.WriteFile(htmlPath, []byte(page), 0o644); err != nil {
		return fmt.Errorf("failed to write html report: %w", err)
	}
	result.HTMLPath = htmlPath
	r.logger.Info("HTML report written", "path", htmlPath)

	return nil
}

// dedupe keeps the first item of every id, in order.
func dedupe(items []database.Item) []database.Item {
	seen := make(map[string]struct{}, len(items))
	unique := make([]database.Item, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ID]; ok {
			continue
		}
		seen[item.ID] = struct{}{}
		unique = append(unique, item)
	}
	return unique
}
