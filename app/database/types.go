package database

import (
	"time"
)

// Item is one stored feed entry. ID is the hex SHA-256 of Link.
type Item struct {
	ID           string
	FetchedAt    time.Time // batch timestamp of the run that first stored the item
	PublishedRaw string    // empty when the feed gave none
	Category     string
	Source       string
	Title        string
	Link         string
	SummaryRaw   string // empty when the feed gave none
}
