package report

import (
	"bytes"
	"fmt"
	"html"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

var (
	markdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	)
	policy = bluemonday.UGCPolicy()
)

func init() {
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	policy.RequireNoReferrerOnLinks(true)
}

// RenderHTML converts a rendered brief into a standalone HTML page. Feed
// titles and links are untrusted, so the converted body is sanitized.
func RenderHTML(source string, date time.Time) (string, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(source), &body); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	buf.WriteString(`<meta charset="utf-8">`)
	buf.WriteString("\n")
	fmt.Fprintf(&buf, "<title>%s</title>\n", html.EscapeString("Daily Brief "+date.Format(DateLayout)))
	buf.WriteString("</head>\n<body>\n")
	buf.Write(policy.SanitizeBytes(body.Bytes()))
	buf.WriteString("</body>\n</html>\n")

	return buf.String(), nil
}
