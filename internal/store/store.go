package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by GetItem when no live row exists at the key
var ErrNotFound = errors.New("item not found")

// Item is a single row. Values are strings or int64 (TTL epochs).
type Item map[string]any

// String returns the string attribute or "" when absent
func (i Item) String(name string) string {
	if v, ok := i[name].(string); ok {
		return v
	}
	return ""
}

// Int64 returns the numeric attribute or 0 when absent
func (i Item) Int64(name string) int64 {
	switch v := i[name].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

// Cursor is the opaque position of the last evaluated row. A nil cursor means
// there are no further pages.
type Cursor map[string]string

// PutOutcome is the result of a conditional insert
type PutOutcome int

const (
	// PutOK means the row was written
	PutOK PutOutcome = iota
	// PutConflict means a live row already existed at the key
	PutConflict
)

// Query selects rows sharing a partition value in the primary key or a secondary index
type Query struct {
	// Index is the secondary index name; empty queries the primary key
	Index      string
	KeyName    string
	KeyValue   string
	Projection []string
	CountOnly  bool
	Limit      int32
	Descending bool
	Cursor     Cursor
}

// Scan reads the whole table page by page
type Scan struct {
	Projection []string
	Limit      int32
	Cursor     Cursor
}

// Page is one page of query or scan results. Count is set for both regular
// and count-only requests.
type Page struct {
	Items  []Item
	Count  int
	Cursor Cursor
}

// Table is the durable key-value table abstraction
type Table interface {
	// PutIfAbsent writes the item only if no live row exists at its key.
	// Rows whose TTL attribute lies in the past count as absent.
	PutIfAbsent(ctx context.Context, item Item) (PutOutcome, error)

	// PutItem writes the item unconditionally
	PutItem(ctx context.Context, item Item) error

	// GetItem reads the row at key or returns ErrNotFound
	GetItem(ctx context.Context, key Item) (Item, error)

	// Query returns one page of rows matching the partition value
	Query(ctx context.Context, q Query) (*Page, error)

	// Scan returns one page of the full table
	Scan(ctx context.Context, s Scan) (*Page, error)
}

// Paginate calls fetch until the store reports no further pages, handing each
// page to visit. Callers must not act on partial results before it returns.
func Paginate(ctx context.Context, fetch func(ctx context.Context, cursor Cursor) (*Page, error), visit func(page *Page) error) error {
	var cursor Cursor
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		page, err := fetch(ctx, cursor)
		if err != nil {
			return err
		}

		if err := visit(page); err != nil {
			return fmt.Errorf("failed to visit page: %w", err)
		}

		if len(page.Cursor) == 0 {
			return nil
		}
		cursor = page.Cursor
	}
}

// QueryAll runs q across all pages
func QueryAll(ctx context.Context, table Table, q Query, visit func(page *Page) error) error {
	return Paginate(ctx, func(ctx context.Context, cursor Cursor) (*Page, error) {
		q.Cursor = cursor
		return table.Query(ctx, q)
	}, visit)
}

// ScanAll runs s across all pages
func ScanAll(ctx context.Context, table Table, s Scan, visit func(page *Page) error) error {
	return Paginate(ctx, func(ctx context.Context, cursor Cursor) (*Page, error) {
		s.Cursor = cursor
		return table.Scan(ctx, s)
	}, visit)
}
