package database

import (
	"context"
	"time"
)

type ItemRepository interface {
	InsertNew(ctx context.Context, items []Item) (int, error)
	QueryByDate(ctx context.Context, date time.Time, includeHistory bool) ([]Item, error)
	Count(ctx context.Context) (int, error)
}

var _ ItemRepository = (*Store)(nil)
