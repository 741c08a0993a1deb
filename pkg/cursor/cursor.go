// Package cursor turns the pages of one query into a single forward-only
// row stream.
package cursor

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/bisegni/ossql/pkg/logger"
	"github.com/bisegni/ossql/pkg/protocol"
	"github.com/bisegni/ossql/pkg/sqlerr"
	"github.com/bisegni/ossql/pkg/types"
)

// PageSource fetches the page following a continuation token.
type PageSource interface {
	FetchNext(ctx context.Context, token string) (*protocol.Page, error)
}

// tokenCloser is implemented by sources that can release a server cursor.
type tokenCloser interface {
	Close(ctx context.Context, token string) error
}

// State is the position of a cursor relative to its rows.
type State int

const (
	BeforeStart State = iota
	Active
	AfterEnd
	Closed
)

func (s State) String() string {
	switch s {
	case BeforeStart:
		return "before start"
	case Active:
		return "active"
	case AfterEnd:
		return "after end"
	case Closed:
		return "closed"
	}
	return "unknown"
}

const defaultCloseTimeout = 10 * time.Second

type fetchResult struct {
	page *protocol.Page
	err  error
}

// Cursor is a forward-only iterator over every row of a query. Pages are
// fetched lazily when the current one is exhausted.
//
// A Cursor is not safe for concurrent use.
type Cursor struct {
	src    PageSource
	conv   *types.Converter
	params *types.Params
	log    *slog.Logger

	columns []protocol.Column
	rows    [][]types.Value
	pos     int
	token   string
	state   State

	rowsConsumed int64
	pagesFetched int

	prefetch     bool
	closeTimeout time.Duration
	bgCtx        context.Context
	bgCancel     context.CancelFunc
	ahead        chan fetchResult
}

// Option configures a Cursor.
type Option func(*Cursor)

// WithPrefetch fetches the next page in the background while the current
// one is consumed. At most one page is held ahead.
func WithPrefetch() Option {
	return func(c *Cursor) {
		c.prefetch = true
	}
}

// WithParams sets the conversion parameters used by Get.
func WithParams(p *types.Params) Option {
	return func(c *Cursor) {
		c.params = p
	}
}

func WithConverter(conv *types.Converter) Option {
	return func(c *Cursor) {
		if conv != nil {
			c.conv = conv
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Cursor) {
		if l != nil {
			c.log = l
		}
	}
}

// WithCloseTimeout bounds the server cursor release done by Close.
func WithCloseTimeout(d time.Duration) Option {
	return func(c *Cursor) {
		if d > 0 {
			c.closeTimeout = d
		}
	}
}

// New wraps the first page of a query. Later pages are requested from src.
func New(src PageSource, first *protocol.Page, opts ...Option) *Cursor {
	c := &Cursor{
		src:          src,
		log:          logger.Get(),
		pos:          -1,
		state:        BeforeStart,
		closeTimeout: defaultCloseTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.conv == nil {
		c.conv = types.NewConverter(types.NewRegistry())
	}
	c.bgCtx, c.bgCancel = context.WithCancel(context.Background())
	if first != nil {
		c.columns = first.Columns
		c.install(first)
	}
	return c
}

// Open runs query through f and wraps the first page in a Cursor.
func Open(ctx context.Context, f *protocol.Fetcher, query string, fetchSize int, opts ...Option) (*Cursor, error) {
	first, err := f.FetchFirst(ctx, query, fetchSize)
	if err != nil {
		return nil, err
	}
	opts = append([]Option{WithConverter(types.NewConverter(f.Registry()))}, opts...)
	return New(f, first, opts...), nil
}

// install makes page the current one and, when prefetching, starts the
// fetch of its successor.
func (c *Cursor) install(page *protocol.Page) {
	c.rows = page.Rows
	c.pos = -1
	c.token = page.Cursor
	c.pagesFetched++
	c.log.Debug("page installed", "page", c.pagesFetched, "rows", len(page.Rows), "more", page.HasMore())

	if c.prefetch && c.token != "" {
		ch := make(chan fetchResult, 1)
		c.ahead = ch
		go func(ctx context.Context, token string) {
			if ctx.Err() != nil {
				ch <- fetchResult{err: ctx.Err()}
				return
			}
			page, err := c.src.FetchNext(ctx, token)
			ch <- fetchResult{page: page, err: err}
		}(c.bgCtx, c.token)
	}
}

// fetch returns the page following the current token, from the prefetch
// slot when one is pending.
func (c *Cursor) fetch(ctx context.Context) (*protocol.Page, error) {
	if c.ahead == nil {
		return c.src.FetchNext(ctx, c.token)
	}
	ch := c.ahead
	select {
	case res := <-ch:
		c.ahead = nil
		return res.page, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Next advances to the following row and reports whether one exists. Page
// fetches happen here and nowhere else.
func (c *Cursor) Next(ctx context.Context) (bool, error) {
	switch c.state {
	case Closed:
		return false, sqlerr.Closed("next", "cursor")
	case AfterEnd:
		return false, nil
	}

	if c.pos+1 < len(c.rows) {
		c.pos++
		c.state = Active
		c.rowsConsumed++
		return true, nil
	}

	for c.token != "" {
		page, err := c.fetch(ctx)
		if err != nil {
			c.pos = -1
			return false, err
		}
		c.install(page)
		if len(c.rows) > 0 {
			c.pos = 0
			c.state = Active
			c.rowsConsumed++
			return true, nil
		}
	}

	c.state = AfterEnd
	c.rows = nil
	c.pos = -1
	c.log.Debug("cursor exhausted", "rows", c.rowsConsumed, "pages", c.pagesFetched)
	return false, nil
}

// Value returns the decoded cell of the current row at the zero-based
// column index col.
func (c *Cursor) Value(col int) (types.Value, error) {
	const op = "read value"
	switch c.state {
	case Closed:
		return types.Value{}, sqlerr.Closed(op, "cursor")
	case BeforeStart, AfterEnd:
		return types.Value{}, sqlerr.IllegalState(op, c.state.String())
	}
	if col < 0 || col >= len(c.columns) {
		return types.Value{}, sqlerr.InvalidArgument(op,
			"column index "+strconv.Itoa(col)+" out of range [0, "+strconv.Itoa(len(c.columns))+")")
	}
	if c.pos < 0 || c.pos >= len(c.rows) {
		// a failed fetch left no current row
		return types.Value{}, sqlerr.New(sqlerr.ErrIllegalCursorState, op, "no current row", nil)
	}
	return c.rows[c.pos][col], nil
}

// Get reads the current cell of col converted to rep.
func (c *Cursor) Get(col int, rep types.Representation) (any, error) {
	v, err := c.Value(col)
	if err != nil {
		return nil, err
	}
	return c.conv.Convert(v, c.columns[col].Type, rep, c.params)
}

// FindColumn returns the index of the first column whose label matches.
func (c *Cursor) FindColumn(label string) (int, error) {
	if c.state == Closed {
		return -1, sqlerr.Closed("find column", "cursor")
	}
	for i, col := range c.columns {
		if col.Label == label {
			return i, nil
		}
	}
	return -1, sqlerr.InvalidArgument("find column", "no column labelled "+strconv.Quote(label))
}

// Columns returns the column metadata of the query.
func (c *Cursor) Columns() []protocol.Column {
	out := make([]protocol.Column, len(c.columns))
	copy(out, c.columns)
	return out
}

func (c *Cursor) State() State        { return c.state }
func (c *Cursor) RowsConsumed() int64 { return c.rowsConsumed }
func (c *Cursor) PagesFetched() int   { return c.pagesFetched }

// Close releases the current rows and the server cursor, if one is still
// open. It never fetches and is safe to call more than once.
func (c *Cursor) Close() error {
	if c.state == Closed {
		return nil
	}
	c.state = Closed
	c.rows = nil
	c.pos = -1
	c.bgCancel()

	token := c.token
	if c.ahead != nil {
		// the prefetch already advanced the server cursor
		res := <-c.ahead
		c.ahead = nil
		if res.err == nil && res.page != nil {
			token = res.page.Cursor
		}
	}
	c.token = ""
	c.log.Debug("cursor closed", "rows", c.rowsConsumed, "pages", c.pagesFetched)

	closer, ok := c.src.(tokenCloser)
	if !ok || token == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.closeTimeout)
	defer cancel()
	return closer.Close(ctx, token)
}
