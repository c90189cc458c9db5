package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// TimestampLayout is fixed-width so that lexical order of stored values
// equals chronological order.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

var itemColumns = []string{
	"id", "fetched_at_utc", "published_raw", "category", "source", "title", "link", "summary_raw",
}

const insertItemSQL = `
	INSERT OR IGNORE INTO items (
		id, fetched_at_utc, published_raw, category, source, title, link, summary_raw
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

// InsertNew stores items whose id is not yet present, in one transaction,
// and returns how many rows were actually inserted. Existing rows are never
// updated.
func (s *Store) InsertNew(ctx context.Context, items []Item) (int, error) {
	for i, item := range items {
		if item.ID == "" || strings.TrimSpace(item.Link) == "" {
			return 0, fmt.Errorf("%w: item %d has no id or link", ErrInvalidItem, i)
		}
		if item.FetchedAt.IsZero() {
			return 0, fmt.Errorf("%w: item %d has no fetch timestamp", ErrInvalidItem, i)
		}
	}

	if len(items) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertItemSQL)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, item := range items {
		result, err := stmt.ExecContext(ctx,
			item.ID,
			FormatTimestamp(item.FetchedAt),
			nullableString(item.PublishedRaw),
			item.Category,
			item.Source,
			item.Title,
			item.Link,
			nullableString(item.SummaryRaw),
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert item %s: %w", item.ID, err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to read affected rows: %w", err)
		}
		inserted += int(affected)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Debug("Items inserted", "offered", len(items), "inserted", inserted)

	return inserted, nil
}

// QueryByDate returns the items fetched during the UTC calendar day of date,
// or every item when includeHistory is set. Rows come back oldest batch first,
// then in insertion order.
func (s *Store) QueryByDate(ctx context.Context, date time.Time, includeHistory bool) ([]Item, error) {
	query := sq.Select(itemColumns...).
		From("items").
		OrderBy("fetched_at_utc ASC", "rowid ASC")

	if !includeHistory {
		start, end := DayWindow(date)
		query = query.Where(sq.Expr("fetched_at_utc BETWEEN ? AND ?", start, end))
	}

	statement, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, statement, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	return items, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	statement, args, err := sq.Select("COUNT(*)").From("items").ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %w", err)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, statement, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return count, nil
}

func scanItem(rows *sql.Rows) (Item, error) {
	var (
		item         Item
		fetchedAt    string
		publishedRaw sql.NullString
		summaryRaw   sql.NullString
	)

	err := rows.Scan(
		&item.ID, &fetchedAt, &publishedRaw, &item.Category,
		&item.Source, &item.Title, &item.Link, &summaryRaw,
	)
	if err != nil {
		return Item{}, fmt.Errorf("failed to scan item: %w", err)
	}

	item.FetchedAt, err = ParseTimestamp(fetchedAt)
	if err != nil {
		return Item{}, fmt.Errorf("item %s: %w", item.ID, err)
	}
	item.PublishedRaw = publishedRaw.String
	item.SummaryRaw = summaryRaw.String

	return item, nil
}

// DayWindow returns the inclusive bounds of date's calendar day as stored
// timestamps. The year, month and day of date are used as is.
func DayWindow(date time.Time) (string, string) {
	year, month, day := date.Date()
	start := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	end := start.Add(24*time.Hour - time.Microsecond)
	return FormatTimestamp(start), FormatTimestamp(end)
}

func FormatTimestamp(t time.Time) string {
	return t.UTC().Truncate(time.Microsecond).Format(TimestampLayout)
}

// ParseTimestamp reads a stored timestamp. Values written by other tooling
// in any RFC 3339 form are accepted as well.
func ParseTimestamp(value string) (time.Time, error) {
	if t, err := time.Parse(TimestampLayout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", value, err)
	}
	return t.UTC(), nil
}

func nullableString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}
