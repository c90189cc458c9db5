package report

import (
	"bytes"
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/lysyi3m/rss-brief/app/database"
)

const DateLayout = "2006-01-02"

// Generator renders the Markdown daily brief. Output depends only on its
// arguments, so equal inputs always give byte-identical reports.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Run groups items by category, orders each group by source then title,
// keeps the first limit entries of every group and renders the document.
func (g *Generator) Run(items []database.Item, date time.Time, limit int) string {
	var buf bytes.Buffer

	buf.WriteString(Heading(date))
	buf.WriteString("\n\n")

	groups := make(map[string][]database.Item)
	for _, item := range items {
		groups[item.Category] = append(groups[item.Category], item)
	}

	categories := make([]string, 0, len(groups))
	for category := range groups {
		categories = append(categories, category)
	}
	slices.Sort(categories)

	for _, category := range categories {
		entries := groups[category]
		slices.SortStableFunc(entries, func(a, b database.Item) int {
			return cmp.Or(strings.Compare(a.Source, b.Source), strings.Compare(a.Title, b.Title))
		})

		fmt.Fprintf(&buf, "## %s\n", category)
		for _, item := range entries[:min(max(limit, 0), len(entries))] {
			g.writeItem(&buf, item)
		}
		buf.WriteString("\n")
	}

	return strings.TrimRight(buf.String(), " \t\r\n") + "\n"
}

func (g *Generator) writeItem(buf *bytes.Buffer, item database.Item) {
	attribution := item.Source
	if item.PublishedRaw != "" {
		attribution += " — " + item.PublishedRaw
	}
	fmt.Fprintf(buf, "- **%s** (%s)\n", item.Title, attribution)
	fmt.Fprintf(buf, "  - %s\n", item.Link)
}

// Heading is the first line of a brief for date.
func Heading(date time.Time) string {
	return "# Daily Brief — " + date.Format(DateLayout)
}
