package report

import (
	"strings"
	"testing"

	"github.com/lysyi3m/rss-brief/app/database"
)

func TestRenderHTML(t *testing.T) {
	items := []database.Item{
		item("Tech", "Source", "Hello <script>alert(1)</script>", "https://example.com/1", ""),
	}
	markdown := NewGenerator().Run(items, reportDate, 30)

	got, err := RenderHTML(markdown, reportDate)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if !strings.HasPrefix(got, "<!DOCTYPE html>") {
		t.Errorf("Expected a standalone page, got:\n%s", got)
	}
	if !strings.Contains(got, "<title>Daily Brief 2024-01-01</title>") {
		t.Errorf("Expected page title, got:\n%s", got)
	}
	if !strings.Contains(got, "<h2") || !strings.Contains(got, "Tech") {
		t.Errorf("Expected category heading, got:\n%s", got)
	}
	if strings.Contains(got, "<script>") {
		t.Errorf("Expected script tags to be removed, got:\n%s", got)
	}
	if !strings.Contains(got, `href="https://example.com/1"`) {
		t.Errorf("Expected links to be rendered as anchors, got:\n%s", got)
	}
}
