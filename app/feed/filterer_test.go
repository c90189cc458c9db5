package feed

import (
	"testing"

	"github.com/lysyi3m/rss-brief/app/config"
)

func TestFilterer_NoFilters(t *testing.T) {
	filterer := NewFilterer()

	items := []Item{
		{Title: "Test Item 1", SummaryRaw: "Test summary"},
		{Title: "Test Item 2", SummaryRaw: "Another summary"},
	}

	result := filterer.Run(items, nil)

	if len(result) != 2 {
		t.Errorf("Expected 2 items, got %d", len(result))
	}
	for i, item := range result {
		if item.IsFiltered {
			t.Errorf("Item %d should not be filtered when no filters are configured", i)
		}
	}
}

func TestFilterer_TitleInclude(t *testing.T) {
	filterer := NewFilterer()

	items := []Item{
		{Title: "Breaking News: Important Update"},
		{Title: "Sports Update"},
		{Title: "Weather Report"},
	}

	filters := []config.Filter{
		{Field: "title", Includes: []string{"news", "update"}},
	}

	result := filterer.Run(items, filters)

	if len(result) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(result))
	}
	if result[0].IsFiltered {
		t.Error("First item should not be filtered, contains included terms")
	}
	if result[1].IsFiltered {
		t.Error("Second item should not be filtered, contains 'update'")
	}
	if !result[2].IsFiltered {
		t.Error("Third item should be filtered, doesn't contain included terms")
	}
	if result[2].FilterReason == "" {
		t.Error("Third item should have filter reason")
	}
}

func TestFilterer_ExcludeWins(t *testing.T) {
	filterer := NewFilterer()

	items := []Item{
		{Title: "Tech news", SummaryRaw: "Sponsored content"},
		{Title: "Tech news", SummaryRaw: "Plain article"},
	}

	filters := []config.Filter{
		{Field: "title", Includes: []string{"tech"}},
		{Field: "summary", Excludes: []string{"SPONSORED"}},
	}

	result := filterer.Run(items, filters)

	if !result[0].IsFiltered {
		t.Error("Expected sponsored item to be filtered (case-insensitive)")
	}
	if result[0].FilterReason != "Excluded by summary filter: contains 'SPONSORED'" {
		t.Errorf("Unexpected filter reason: %s", result[0].FilterReason)
	}
	if result[1].IsFiltered {
		t.Error("Expected plain item to pass")
	}
}

func TestFilterer_LinkField(t *testing.T) {
	filterer := NewFilterer()

	items := []Item{
		{Title: "A", Link: "https://example.com/podcast/1"},
		{Title: "B", Link: "https://example.com/blog/1"},
	}

	result := filterer.Run(items, []config.Filter{{Field: "link", Excludes: []string{"/podcast/"}}})

	if !result[0].IsFiltered || result[1].IsFiltered {
		t.Errorf("Expected only podcast link filtered, got %v / %v", result[0].IsFiltered, result[1].IsFiltered)
	}
}
