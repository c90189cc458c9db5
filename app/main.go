package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"

	"github.com/lysyi3m/rss-brief/app/cfg"
	"github.com/lysyi3m/rss-brief/app/config"
	"github.com/lysyi3m/rss-brief/app/database"
	"github.com/lysyi3m/rss-brief/app/notify"
	"github.com/lysyi3m/rss-brief/app/pipeline"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	// A missing .env file is not an error
	_ = godotenv.Load()

	appCfg, err := cfg.Load(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if appCfg == nil {
		// Help was shown
		return 0
	}

	if appCfg.ShowVersion {
		fmt.Fprintln(stdout, appCfg.Version)
		return 0
	}

	logger := newLogger(stderr, appCfg.Verbose).With("run_id", uuid.NewString())

	appConfig, err := config.NewLoader(appCfg.ConfigPath).Load()
	if err != nil {
		logger.Error("Failed to load configuration", "path", appCfg.ConfigPath, "error", err)
		return 1
	}
	logger.Debug("Configuration loaded", "path", appCfg.ConfigPath, "feeds", len(appConfig.Feeds), "version", appCfg.Version)

	if appCfg.PrintConfig {
		data, err := appConfig.Dump()
		if err != nil {
			logger.Error("Failed to print configuration", "error", err)
			return 1
		}
		if _, err := stdout.Write(data); err != nil {
			logger.Error("Failed to print configuration", "error", err)
			return 1
		}
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	notifier := notify.New(notify.Settings{
		Enabled:  appConfig.Delivery.Telegram.Enabled && !appCfg.NoTelegram,
		BotToken: appCfg.TelegramToken,
		ChatID:   appCfg.TelegramChatID,
		APIURL:   appCfg.TelegramAPIURL,
	})

	runner := pipeline.NewRunner(
		appConfig,
		&http.Client{Timeout: appCfg.FetchTimeout},
		appCfg.UserAgent,
		notifier,
		stdout,
		logger,
	)

	result, err := runner.Run(ctx, pipeline.Options{
		Date:             appCfg.Date,
		MaxPerFeed:       appCfg.MaxPerFeed,
		PerCategoryLimit: appCfg.PerCategoryLimit,
		IncludeHistory:   appCfg.IncludeHistory,
		DryRun:           appCfg.DryRun,
		SkipNotify:       appCfg.NoTelegram,
	})

	if appCfg.Summary && result != nil {
		fmt.Fprintln(stderr, renderSummary(result))
	}

	if err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			logger.Warn("Run interrupted")
		case errors.Is(err, database.ErrStoreUnavailable):
			logger.Error("Store unavailable", "path", appConfig.Storage.DBPath, "error", err)
		default:
			logger.Error("Run failed", "error", err)
		}
		return 1
	}

	logger.Info("Run completed",
		"date", result.Date.Format(cfg.DateLayout),
		"extracted", result.Extracted,
		"inserted", result.Inserted,
		"reported", result.Reported,
		"failed_feeds", result.FailedFeeds(),
		"dry_run", appCfg.DryRun)

	return 0
}

// newLogger writes text to terminals and JSON everywhere else.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	if isTerminal(w) {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
