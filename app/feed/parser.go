package feed

import (
	"bytes"
	"cmp"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/atom"
	"github.com/mmcdole/gofeed/rss"
	ext "github.com/mmcdole/gofeed/extensions"
)

const relAlternate = "alternate"

type Parser struct {
	gofeedParser *gofeed.Parser
	atomParser   *atom.Parser
	rssParser    *rss.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
		atomParser:   &atom.Parser{},
		rssParser:    &rss.Parser{},
	}
}

// Run parses a feed body. A body that fails to parse is stripped of bytes
// that are illegal in XML and parsed once more; success on that second pass
// is reported through ParseResult.Recovered.
func (p *Parser) Run(data []byte) (*ParseResult, error) {
	result, err := p.parse(data)
	if err == nil {
		return result, nil
	}

	cleaned := sanitizeXML(data)
	if bytes.Equal(cleaned, data) {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	result, retryErr := p.parse(cleaned)
	if retryErr != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	result.Recovered = true
	result.RecoveryCause = err
	return result, nil
}

func (p *Parser) parse(data []byte) (*ParseResult, error) {
	// Atom and RSS are read with the format parsers so link relations and
	// guid permalinks survive.
	switch gofeed.DetectFeedType(bytes.NewReader(data)) {
	case gofeed.FeedTypeAtom:
		return p.parseAtom(data)
	case gofeed.FeedTypeRSS:
		return p.parseRSS(data)
	}

	feed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	result := &ParseResult{
		Metadata: Metadata{
			Title:       feed.Title,
			Link:        feed.Link,
			Description: feed.Description,
			Language:    feed.Language,
		},
		Entries: make([]Entry, 0, len(feed.Items)),
	}

	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		result.Entries = append(result.Entries, Entry{
			Link:        item.Link,
			Links:       extensionLinks(item.Extensions),
			Title:       item.Title,
			Published:   item.Published,
			Updated:     item.Updated,
			Description: item.Description,
		})
	}

	return result, nil
}

func (p *Parser) parseRSS(data []byte) (*ParseResult, error) {
	feed, err := p.rssParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	result := &ParseResult{
		Metadata: Metadata{
			Title:       feed.Title,
			Link:        feed.Link,
			Description: feed.Description,
			Language:    feed.Language,
		},
		Entries: make([]Entry, 0, len(feed.Items)),
	}

	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		var dcDate string
		if item.DublinCoreExt != nil && len(item.DublinCoreExt.Date) > 0 {
			dcDate = item.DublinCoreExt.Date[0]
		}
		result.Entries = append(result.Entries, Entry{
			Link:        cmp.Or(strings.TrimSpace(item.Link), guidPermalink(item.GUID)),
			Links:       extensionLinks(item.Extensions),
			Title:       item.Title,
			Published:   cmp.Or(item.PubDate, dcDate),
			Updated:     dcDate,
			Description: item.Description,
		})
	}

	return result, nil
}

// guidPermalink returns the guid value unless isPermaLink is "false"; the
// attribute defaults to true in RSS 2.0.
func guidPermalink(guid *rss.GUID) string {
	if guid == nil || strings.EqualFold(strings.TrimSpace(guid.IsPermalink), "false") {
		return ""
	}
	return strings.TrimSpace(guid.Value)
}

func (p *Parser) parseAtom(data []byte) (*ParseResult, error) {
	feed, err := p.atomParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	result := &ParseResult{
		Metadata: Metadata{
			Title:       feed.Title,
			Link:        firstAlternate(atomLinks(feed.Links)),
			Description: feed.Subtitle,
			Language:    feed.Language,
		},
		Entries: make([]Entry, 0, len(feed.Entries)),
	}

	for _, entry := range feed.Entries {
		if entry == nil {
			continue
		}
		normalized := Entry{
			Links:     atomLinks(entry.Links),
			Title:     entry.Title,
			Published: entry.Published,
			Updated:   entry.Updated,
			Summary:   entry.Summary,
		}
		if entry.Content != nil {
			normalized.Description = entry.Content.Value
		}
		result.Entries = append(result.Entries, normalized)
	}

	return result, nil
}

// atomLinks maps Atom links, treating a missing rel as "alternate" (RFC 4287).
func atomLinks(links []*atom.Link) []Link {
	if len(links) == 0 {
		return nil
	}
	normalized := make([]Link, 0, len(links))
	for _, link := range links {
		if link == nil {
			continue
		}
		normalized = append(normalized, Link{
			Rel:  cmp.Or(strings.TrimSpace(link.Rel), relAlternate),
			Href: link.Href,
		})
	}
	return normalized
}

// extensionLinks exposes <atom:link> elements embedded in RSS items.
func extensionLinks(extensions ext.Extensions) []Link {
	atomExt, ok := extensions["atom"]
	if !ok {
		return nil
	}

	var links []Link
	for _, element := range atomExt["link"] {
		links = append(links, Link{
			Rel:  cmp.Or(strings.TrimSpace(element.Attrs["rel"]), relAlternate),
			Href: element.Attrs["href"],
		})
	}
	return links
}

// ResolveLinks resolves relative entry links against base. Absolute links
// and an unparseable base leave the entries untouched.
func (r *ParseResult) ResolveLinks(base string) {
	baseURL, err := url.Parse(strings.TrimSpace(base))
	if err != nil || !baseURL.IsAbs() {
		return
	}
	for i := range r.Entries {
		entry := &r.Entries[i]
		entry.Link = resolveLink(baseURL, entry.Link)
		for j := range entry.Links {
			entry.Links[j].Href = resolveLink(baseURL, entry.Links[j].Href)
		}
	}
}

func resolveLink(base *url.URL, link string) string {
	trimmed := strings.TrimSpace(link)
	if trimmed == "" {
		return link
	}
	ref, err := url.Parse(trimmed)
	if err != nil || ref.IsAbs() {
		return link
	}
	return base.ResolveReference(ref).String()
}

func firstAlternate(links []Link) string {
	for _, link := range links {
		if link.Rel == relAlternate && strings.TrimSpace(link.Href) != "" {
			return strings.TrimSpace(link.Href)
		}
	}
	return ""
}

// sanitizeXML drops invalid UTF-8 and every rune outside the XML 1.0 Char
// production.
func sanitizeXML(data []byte) []byte {
	valid := data
	if !utf8.Valid(data) {
		valid = bytes.ToValidUTF8(data, nil)
	}
	return bytes.Map(func(r rune) rune {
		if isXMLChar(r) {
			return r
		}
		return -1
	}, valid)
}

func isXMLChar(r rune) bool {
	switch {
	case r == 0x09 || r == 0x0A || r == 0x0D:
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	}
	return false
}
