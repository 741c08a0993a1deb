package database

import (
	"context"

	"github.com/bisegni/ossql/pkg/cursor"
	"github.com/bisegni/ossql/pkg/protocol"
	"github.com/bisegni/ossql/pkg/types"
)

// RemoteRow is one result row keyed by column label.
type RemoteRow struct {
	data OrderedMap
}

func (r *RemoteRow) Get(field string) (interface{}, error) {
	return r.data.Lookup(field)
}

func (r *RemoteRow) Primitive() interface{} {
	return r.data
}

// NewRemoteRow creates a Row from labelled values.
func NewRemoteRow(data OrderedMap) Row {
	return &RemoteRow{data: data}
}

// RemoteTable adapts a query on the service to the Table interface. Every
// Iterate call runs the query again.
type RemoteTable struct {
	fetcher   *protocol.Fetcher
	query     string
	fetchSize int
	opts      []cursor.Option
}

func NewRemoteTable(f *protocol.Fetcher, query string, fetchSize int, opts ...cursor.Option) *RemoteTable {
	return &RemoteTable{fetcher: f, query: query, fetchSize: fetchSize, opts: opts}
}

func (t *RemoteTable) Iterate(ctx context.Context) (RowIterator, error) {
	c, err := cursor.Open(ctx, t.fetcher, t.query, t.fetchSize, t.opts...)
	if err != nil {
		return nil, err
	}
	return NewCursorIterator(ctx, c), nil
}

// CursorIterator reads rows from a cursor, converting every cell to the
// default representation of its column type.
type CursorIterator struct {
	ctx     context.Context
	cur     *cursor.Cursor
	labels  []string
	current Row
	err     error
}

func NewCursorIterator(ctx context.Context, c *cursor.Cursor) *CursorIterator {
	cols := c.Columns()
	labels := make([]string, len(cols))
	for i, col := range cols {
		labels[i] = col.Label
	}
	return &CursorIterator{ctx: ctx, cur: c, labels: labels}
}

func (it *CursorIterator) Next() bool {
	if it.err != nil {
		return false
	}
	ok, err := it.cur.Next(it.ctx)
	if err != nil {
		it.err = err
		return false
	}
	if !ok {
		return false
	}

	row := make(OrderedMap, len(it.labels))
	for i, label := range it.labels {
		raw, err := it.cur.Value(i)
		if err != nil {
			it.err = err
			return false
		}
		// keep SQL nulls visible instead of their zero values
		if raw.IsNull() {
			row[i] = KeyVal{Key: label}
			continue
		}
		v, err := it.cur.Get(i, types.AsDefault)
		if err != nil {
			it.err = err
			return false
		}
		row[i] = KeyVal{Key: label, Val: v}
	}
	it.current = &RemoteRow{data: row}
	return true
}

func (it *CursorIterator) Row() Row {
	return it.current
}

func (it *CursorIterator) Error() error {
	return it.err
}

func (it *CursorIterator) Close() error {
	return it.cur.Close()
}

// Cursor exposes the underlying cursor, e.g. for row and page counters.
func (it *CursorIterator) Cursor() *cursor.Cursor {
	return it.cur
}
