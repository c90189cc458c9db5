package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/lysyi3m/rss-brief/app/pipeline"
)

var summaryHeaders = table.Row{"Feed", "Category", "Entries", "Examined", "Dropped", "Filtered", "Items", "Status", "Duration"}

var summaryColumns = []table.ColumnConfig{
	{Number: 3, Align: text.AlignRight},
	{Number: 4, Align: text.AlignRight},
	{Number: 5, Align: text.AlignRight},
	{Number: 6, Align: text.AlignRight},
	{Number: 7, Align: text.AlignRight},
	{Number: 9, Align: text.AlignRight},
}

// renderSummary prints one row per feed followed by the run totals.
func renderSummary(result *pipeline.Result) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(summaryHeaders)
	tw.SetColumnConfigs(summaryColumns)

	for _, outcome := range result.Feeds {
		tw.AppendRow(table.Row{
			outcome.Name,
			outcome.Category,
			strconv.Itoa(outcome.Total),
			strconv.Itoa(outcome.Examined),
			strconv.Itoa(outcome.Dropped),
			strconv.Itoa(outcome.Filtered),
			strconv.Itoa(outcome.Items),
			feedStatus(outcome),
			outcome.Duration.Round(time.Millisecond).String(),
		})
	}

	var b strings.Builder
	b.WriteString(tw.Render())
	b.WriteString("\n")
	fmt.Fprintf(&b, "Date: %s  Extracted: %d  Inserted: %d  Reported: %d",
		result.Date.Format("2006-01-02"), result.Extracted, result.Inserted, result.Reported)
	if result.ReportPath != "" {
		fmt.Fprintf(&b, "  Report: %s", result.ReportPath)
	}
	return b.String()
}

func feedStatus(outcome pipeline.FeedOutcome) string {
	switch {
	case outcome.Err != nil:
		return "failed"
	case outcome.Recovered:
		return "recovered"
	default:
		return "ok"
	}
}
