package feed

import (
	"bytes"
	"testing"
)

func TestParseRSS2(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <link>https://example.com</link>
    <description>Test Description</description>
    <language>en-us</language>
    <item>
      <title>Test Item 1</title>
      <link>https://example.com/item1</link>
      <description>Test Item 1 Description</description>
      <pubDate>Mon, 03 Jul 2023 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Test Item 2</title>
      <link>https://example.com/item2</link>
      <description>Test Item 2 Description</description>
    </item>
  </channel>
</rss>`

	parser := NewParser()
	result, err := parser.Run([]byte(rssData))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if result.Recovered {
		t.Error("Expected well-formed feed to parse without recovery")
	}
	if result.Metadata.Title != "Test Feed" {
		t.Errorf("Expected title 'Test Feed', got: %s", result.Metadata.Title)
	}
	if result.Metadata.Language != "en-us" {
		t.Errorf("Expected language 'en-us', got: %s", result.Metadata.Language)
	}

	if len(result.Entries) != 2 {
		t.Fatalf("Expected 2 entries, got: %d", len(result.Entries))
	}

	entry := result.Entries[0]
	if entry.Title != "Test Item 1" {
		t.Errorf("Expected title 'Test Item 1', got: %s", entry.Title)
	}
	if entry.Link != "https://example.com/item1" {
		t.Errorf("Expected link 'https://example.com/item1', got: %s", entry.Link)
	}
	if entry.Published != "Mon, 03 Jul 2023 10:00:00 GMT" {
		t.Errorf("Expected raw pubDate to be kept verbatim, got: %s", entry.Published)
	}
	if entry.Description != "Test Item 1 Description" {
		t.Errorf("Expected description 'Test Item 1 Description', got: %s", entry.Description)
	}

	if result.Entries[1].Published != "" {
		t.Errorf("Expected empty published for second entry, got: %s", result.Entries[1].Published)
	}
}

func TestParseRSSAtomLinkExtension(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">
  <channel>
    <title>Ext Feed</title>
    <item>
      <title>Linked through atom</title>
      <atom:link rel="alternate" href="https://example.com/ext"/>
    </item>
  </channel>
</rss>`

	parser := NewParser()
	result, err := parser.Run([]byte(rssData))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(result.Entries) != 1 {
		t.Fatalf("Expected 1 entry, got: %d", len(result.Entries))
	}

	if got := CanonicalLink(result.Entries[0]); got != "https://example.com/ext" {
		t.Errorf("Expected canonical link from atom:link, got: %q", got)
	}
}

func TestParseRSSGuidPermalink(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Guid Feed</title>
    <item><title>Explicit</title><guid isPermaLink="true">https://example.com/guid-only</guid></item>
    <item><title>Default</title><guid>https://example.com/bare-guid</guid></item>
    <item><title>Opaque</title><guid isPermaLink="false">tag:example.com,2024:1</guid></item>
    <item><title>Both</title><link>https://example.com/link</link><guid>https://example.com/guid</guid></item>
  </channel>
</rss>`

	parser := NewParser()
	result, err := parser.Run([]byte(rssData))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(result.Entries) != 4 {
		t.Fatalf("Expected 4 entries, got: %d", len(result.Entries))
	}

	expected := []string{
		"https://example.com/guid-only",
		"https://example.com/bare-guid",
		"",
		"https://example.com/link",
	}
	for i, want := range expected {
		if got := CanonicalLink(result.Entries[i]); got != want {
			t.Errorf("Entry %d: expected canonical link %q, got %q", i, want, got)
		}
	}
}

func TestParseResultResolveLinks(t *testing.T) {
	result := &ParseResult{Entries: []Entry{
		{Link: "relative/path"},
		{Link: "/rooted"},
		{Link: "https://other.example.com/x"},
		{Links: []Link{{Rel: "alternate", Href: "../up"}}},
		{},
	}}

	result.ResolveLinks("https://example.com/blog/feed.xml")

	if got := result.Entries[0].Link; got != "https://example.com/blog/relative/path" {
		t.Errorf("Expected relative link resolved, got: %s", got)
	}
	if got := result.Entries[1].Link; got != "https://example.com/rooted" {
		t.Errorf("Expected rooted link resolved, got: %s", got)
	}
	if got := result.Entries[2].Link; got != "https://other.example.com/x" {
		t.Errorf("Expected absolute link untouched, got: %s", got)
	}
	if got := result.Entries[3].Links[0].Href; got != "https://example.com/up" {
		t.Errorf("Expected alternate href resolved, got: %s", got)
	}
	if got := result.Entries[4].Link; got != "" {
		t.Errorf("Expected empty link to stay empty, got: %s", got)
	}

	unchanged := &ParseResult{Entries: []Entry{{Link: "relative"}}}
	unchanged.ResolveLinks("not a url")
	if unchanged.Entries[0].Link != "relative" {
		t.Errorf("Expected relative base to leave links alone, got: %s", unchanged.Entries[0].Link)
	}
}

func TestParseAtom(t *testing.T) {
	atomData := `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Test Atom Feed</title>
  <link href="https://example.com"/>
  <id>https://example.com/feed</id>
  <updated>2023-07-03T12:00:00Z</updated>
  <subtitle>Test Atom Description</subtitle>

  <entry>
    <title>Atom Entry 1</title>
    <link rel="self" href="https://example.com/atom1.xml"/>
    <link rel="alternate" href="https://example.com/atom1"/>
    <id>atom-1</id>
    <updated>2023-07-03T10:00:00Z</updated>
    <published>2023-07-03T09:00:00Z</published>
    <summary>Atom Entry 1 Summary</summary>
  </entry>

  <entry>
    <title>Atom Entry 2</title>
    <link href="https://example.com/atom2"/>
    <id>atom-2</id>
    <updated>2023-07-03T11:00:00Z</updated>
    <content type="html">Atom Entry 2 Content</content>
  </entry>

  <entry>
    <title>Atom Entry 3</title>
    <link rel="enclosure" href="https://example.com/atom3.mp3"/>
    <id>atom-3</id>
  </entry>
</feed>`

	parser := NewParser()
	result, err := parser.Run([]byte(atomData))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if result.Metadata.Title != "Test Atom Feed" {
		t.Errorf("Expected title 'Test Atom Feed', got: %s", result.Metadata.Title)
	}
	if result.Metadata.Link != "https://example.com" {
		t.Errorf("Expected link 'https://example.com', got: %s", result.Metadata.Link)
	}
	if len(result.Entries) != 3 {
		t.Fatalf("Expected 3 entries, got: %d", len(result.Entries))
	}

	first := result.Entries[0]
	if first.Link != "" {
		t.Errorf("Expected no direct link for atom entry, got: %s", first.Link)
	}
	if got := CanonicalLink(first); got != "https://example.com/atom1" {
		t.Errorf("Expected alternate link to win over self link, got: %s", got)
	}
	if first.Published != "2023-07-03T09:00:00Z" {
		t.Errorf("Expected raw published text, got: %s", first.Published)
	}
	if first.Summary != "Atom Entry 1 Summary" {
		t.Errorf("Expected summary 'Atom Entry 1 Summary', got: %s", first.Summary)
	}

	second := result.Entries[1]
	if got := CanonicalLink(second); got != "https://example.com/atom2" {
		t.Errorf("Expected link without rel to count as alternate, got: %s", got)
	}
	if second.Description != "Atom Entry 2 Content" {
		t.Errorf("Expected content as description, got: %s", second.Description)
	}

	if got := CanonicalLink(result.Entries[2]); got != "" {
		t.Errorf("Expected no canonical link for enclosure-only entry, got: %s", got)
	}
}

func TestParseInvalidFeed(t *testing.T) {
	invalidData := `<html><body>This is not a feed</body></html>`

	parser := NewParser()
	_, err := parser.Run([]byte(invalidData))
	if err == nil {
		t.Error("Expected error for invalid feed data")
	}
}

func TestParseFeedWithIllegalCharacters(t *testing.T) {
	rssData := "<?xml version=\"1.0\"?>\n<rss version=\"2.0\"><channel><title>Noisy</title>" +
		"<item><title>Bad \x0b char</title><link>https://example.com/noisy</link></item>" +
		"</channel></rss>"

	parser := NewParser()
	result, err := parser.Run([]byte(rssData))
	if err != nil {
		t.Fatalf("Expected recoverable feed to parse, got: %v", err)
	}
	if len(result.Entries) != 1 {
		t.Fatalf("Expected 1 entry, got: %d", len(result.Entries))
	}
	if result.Entries[0].Link != "https://example.com/noisy" {
		t.Errorf("Expected link to survive recovery, got: %s", result.Entries[0].Link)
	}
}

func TestSanitizeXML(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected []byte
	}{
		{"clean input untouched", []byte("<a>ok\ttext\n</a>"), []byte("<a>ok\ttext\n</a>")},
		{"control characters removed", []byte("<a>x\x00y\x0bz</a>"), []byte("<a>xyz</a>")},
		{"invalid utf8 removed", []byte("<a>\xffok</a>"), []byte("<a>ok</a>")},
		{"multibyte kept", []byte("<a>Grüße — ok</a>"), []byte("<a>Grüße — ok</a>")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizeXML(tt.input)
			if !bytes.Equal(got, tt.expected) {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}
