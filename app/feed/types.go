package feed

// Feed processing types

type Metadata struct {
	Title       string
	Link        string
	Description string
	Language    string
}

// Link is one <link> of an entry with its relation.
type Link struct {
	Rel  string
	Href string
}

// Entry is a parsed feed entry before canonical link selection.
type Entry struct {
	Link        string // direct link field, empty for Atom entries
	Links       []Link
	Title       string
	Published   string // raw text, never parsed
	Updated     string // raw text, never parsed
	Summary     string
	Description string
}

type ParseResult struct {
	Metadata Metadata
	Entries  []Entry

	// Recovered is set when the body only parsed after lenient cleanup.
	Recovered     bool
	RecoveryCause error
}

// Item is a normalized entry ready to be stamped and stored.
type Item struct {
	Link         string
	Title        string
	Source       string
	Category     string
	PublishedRaw string
	SummaryRaw   string

	IsFiltered   bool
	FilterReason string
}

type Extraction struct {
	Items    []Item
	Total    int // entries in the feed
	Examined int // entries within the cap
	Dropped  int // entries without a resolvable link
}
