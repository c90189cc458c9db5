package feed

import (
	"log/slog"
	"strings"

	"github.com/lysyi3m/rss-brief/app/config"
)

const UntitledPlaceholder = "(untitled)"

type Extractor struct {
	logger *slog.Logger
}

func NewExtractor(logger *slog.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Run turns the first maxEntries entries of one feed into items, in feed
// order. Entries without a resolvable link are dropped.
func (e *Extractor) Run(entries []Entry, feedConfig config.FeedConfig, maxEntries int) Extraction {
	extraction := Extraction{Total: len(entries)}

	limit := min(max(maxEntries, 0), len(entries))
	extraction.Examined = limit
	extraction.Items = make([]Item, 0, limit)

	for i, entry := range entries[:limit] {
		link := CanonicalLink(entry)
		if link == "" {
			extraction.Dropped++
			e.logger.Debug("Entry without link dropped", "feed", feedConfig.Name, "index", i, "title", entry.Title)
			continue
		}

		extraction.Items = append(extraction.Items, Item{
			Link:         link,
			Title:        normalizeTitle(entry.Title),
			Source:       feedConfig.Name,
			Category:     feedConfig.Category,
			PublishedRaw: firstNonEmpty(entry.Published, entry.Updated),
			SummaryRaw:   firstNonEmpty(entry.Summary, entry.Description),
		})
	}

	return extraction
}

// CanonicalLink picks the direct link, else the first non-empty alternate
// link, else returns "".
func CanonicalLink(entry Entry) string {
	if link := strings.TrimSpace(entry.Link); link != "" {
		return link
	}
	return firstAlternate(entry.Links)
}

func normalizeTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return UntitledPlaceholder
	}
	return title
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
