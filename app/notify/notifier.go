package notify

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var ErrMissingCredentials = errors.New("telegram credentials missing: set TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID")

const (
	DefaultAPIURL  = "https://api.telegram.org"
	defaultTimeout = 10 * time.Second
)

// Notifier delivers a one-line completion notice.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

type Settings struct {
	Enabled  bool
	BotToken string
	ChatID   string
	APIURL   string
	Timeout  time.Duration
}

// New returns a Telegram notifier, or a noop one when delivery is disabled.
// Missing credentials surface as ErrMissingCredentials from Notify, never
// from New.
func New(settings Settings) Notifier {
	if !settings.Enabled {
		return noopNotifier{}
	}

	timeout := settings.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	apiURL := strings.TrimRight(strings.TrimSpace(settings.APIURL), "/")
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}

	return &telegramNotifier{
		token:  strings.TrimSpace(settings.BotToken),
		chatID: strings.TrimSpace(settings.ChatID),
		apiURL: apiURL,
		client: &http.Client{Timeout: timeout},
	}
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, string) error { return nil }

var printer = message.NewPrinter(language.English)

// ReadyMessage is the notice sent once a brief has been written.
func ReadyMessage(date time.Time, inserted int, reportPath string) string {
	return printer.Sprintf("Daily Brief ready: %s — %d new items. Report: %s",
		date.Format("2006-01-02"), inserted, reportPath)
}
