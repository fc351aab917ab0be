package memory

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/BarkinBalci/click-vote-service/internal/store"
)

// Option configures a Table
type Option func(*Table)

// WithPageSize caps every query and scan page at n rows
func WithPageSize(n int) Option {
	return func(t *Table) {
		t.pageSize = n
	}
}

// WithClock sets the time source used to evaluate row expiry
func WithClock(now func() time.Time) Option {
	return func(t *Table) {
		t.now = now
	}
}

// Table is an in-process store.Table with conditional inserts, TTL expiry and
// cursor pagination. It is safe for concurrent use.
type Table struct {
	schema   store.Schema
	pageSize int
	now      func() time.Time

	mu   sync.Mutex
	rows map[string]store.Item
}

// NewTable creates an empty table for schema
func NewTable(schema store.Schema, opts ...Option) *Table {
	t := &Table{
		schema: schema,
		now:    time.Now,
		rows:   make(map[string]store.Item),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// PutIfAbsent writes item unless a live row exists at its key
func (t *Table) PutIfAbsent(ctx context.Context, item store.Item) (store.PutOutcome, error) {
	if err := ctx.Err(); err != nil {
		return store.PutOK, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	k := t.rowKey(item)
	if existing, ok := t.rows[k]; ok && t.live(existing) {
		return store.PutConflict, nil
	}
	t.rows[k] = maps.Clone(item)
	return store.PutOK, nil
}

// PutItem writes item unconditionally
func (t *Table) PutItem(ctx context.Context, item store.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.rows[t.rowKey(item)] = maps.Clone(item)
	return nil
}

// GetItem returns the live row at key
func (t *Table) GetItem(ctx context.Context, key store.Item) (store.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	row, ok := t.rows[t.rowKey(key)]
	if !ok || !t.live(row) {
		return nil, store.ErrNotFound
	}
	return maps.Clone(row), nil
}

// Query returns one page of rows whose partition (or index) attribute equals q.KeyValue
func (t *Table) Query(ctx context.Context, q store.Query) (*store.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	attr := t.schema.PartitionKey
	if q.Index != "" {
		indexAttr, ok := t.schema.Indexes[q.Index]
		if !ok {
			return nil, &UnknownIndexError{Table: t.schema.Name, Index: q.Index}
		}
		attr = indexAttr
	}
	if q.KeyName != "" && q.KeyName != attr {
		return nil, &UnknownIndexError{Table: t.schema.Name, Index: q.Index, Key: q.KeyName}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	rows := t.ordered(func(row store.Item) bool {
		return row.String(attr) == q.KeyValue
	}, q.Descending)

	return t.page(rows, q.Cursor, q.Limit, q.Projection, q.CountOnly, q.Descending), nil
}

// Scan returns one page of the whole table in key order
func (t *Table) Scan(ctx context.Context, s store.Scan) (*store.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	rows := t.ordered(func(store.Item) bool { return true }, false)
	return t.page(rows, s.Cursor, s.Limit, s.Projection, false, false), nil
}

// Len reports the number of live rows
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for _, row := range t.rows {
		if t.live(row) {
			n++
		}
	}
	return n
}

type orderedRow struct {
	key string
	row store.Item
}

func (t *Table) ordered(match func(store.Item) bool, descending bool) []orderedRow {
	rows := make([]orderedRow, 0, len(t.rows))
	for k, row := range t.rows {
		if t.live(row) && match(row) {
			rows = append(rows, orderedRow{key: k, row: row})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if descending {
			return rows[i].key > rows[j].key
		}
		return rows[i].key < rows[j].key
	})
	return rows
}

func (t *Table) page(rows []orderedRow, cursor store.Cursor, limit int32, projection []string, countOnly, descending bool) *store.Page {
	start := 0
	if len(cursor) > 0 {
		after := t.cursorKey(cursor)
		start = sort.Search(len(rows), func(i int) bool {
			if descending {
				return rows[i].key < after
			}
			return rows[i].key > after
		})
	}

	size := len(rows) - start
	if t.pageSize > 0 && size > t.pageSize {
		size = t.pageSize
	}
	if limit > 0 && size > int(limit) {
		size = int(limit)
	}

	selected := rows[start : start+size]
	page := &store.Page{Count: len(selected)}

	if start+size < len(rows) && size > 0 {
		page.Cursor = t.cursorOf(selected[len(selected)-1].row)
	}

	if countOnly {
		return page
	}

	page.Items = make([]store.Item, 0, len(selected))
	for _, r := range selected {
		page.Items = append(page.Items, project(r.row, projection))
	}
	return page
}

func project(row store.Item, projection []string) store.Item {
	if len(projection) == 0 {
		return maps.Clone(row)
	}
	out := make(store.Item, len(projection))
	for _, name := range projection {
		if v, ok := row[name]; ok {
			out[name] = v
		}
	}
	return out
}

func (t *Table) live(row store.Item) bool {
	if t.schema.TTLAttribute == "" {
		return true
	}
	expiry := row.Int64(t.schema.TTLAttribute)
	return expiry == 0 || expiry > t.now().Unix()
}

func (t *Table) rowKey(item store.Item) string {
	return item.String(t.schema.PartitionKey) + "\x00" + item.String(t.schema.SortKey)
}

func (t *Table) cursorOf(row store.Item) store.Cursor {
	c := store.Cursor{t.schema.PartitionKey: row.String(t.schema.PartitionKey)}
	if t.schema.SortKey != "" {
		c[t.schema.SortKey] = row.String(t.schema.SortKey)
	}
	return c
}

func (t *Table) cursorKey(c store.Cursor) string {
	return c[t.schema.PartitionKey] + "\x00" + c[t.schema.SortKey]
}

// NewTables creates an in-memory table per schema sharing opts
func NewTables(schemas store.Schemas, opts ...Option) store.Tables {
	return store.Tables{
		Clicks:         NewTable(schemas.Clicks, opts...),
		Guards:         NewTable(schemas.Guards, opts...),
		WindowedGuards: NewTable(schemas.WindowedGuards, opts...),
		Campaigns:      NewTable(schemas.Campaigns, opts...),
	}
}
