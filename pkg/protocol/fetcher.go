// Package protocol implements the paginated query protocol of the SQL
// endpoint: request and response documents, transports and the page
// fetcher that decodes response pages into typed rows.
package protocol

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/bisegni/ossql/pkg/logger"
	"github.com/bisegni/ossql/pkg/metrics"
	"github.com/bisegni/ossql/pkg/sqlerr"
	"github.com/bisegni/ossql/pkg/types"
)

// Column describes one result column.
type Column struct {
	Name       string
	Label      string
	Type       types.Type
	Descriptor types.Descriptor
}

// Page is one decoded response page. Cursor is empty on the last page.
type Page struct {
	Columns []Column
	Rows    [][]types.Value
	Cursor  string
}

// HasMore reports whether a continuation token was returned.
func (p *Page) HasMore() bool {
	return p.Cursor != ""
}

// Fetcher runs queries and continuation round trips over a Transport.
// Continuation pages carry no schema, so the fetcher remembers the columns
// of every open token. It is safe for concurrent use.
type Fetcher struct {
	transport Transport
	reg       *types.Registry
	strict    bool
	log       *slog.Logger
	metrics   *metrics.Metrics

	mu      sync.Mutex
	columns map[string][]Column
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithStrictTypes makes unknown column type names fail instead of
// degrading to the unsupported type.
func WithStrictTypes(strict bool) Option {
	return func(f *Fetcher) {
		f.strict = strict
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.log = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Fetcher) {
		f.metrics = m
	}
}

// NewFetcher creates a fetcher. A nil registry uses a fresh one.
func NewFetcher(t Transport, reg *types.Registry, opts ...Option) *Fetcher {
	if reg == nil {
		reg = types.NewRegistry()
	}
	f := &Fetcher{
		transport: t,
		reg:       reg,
		log:       logger.Get(),
		columns:   make(map[string][]Column),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Registry returns the type registry used to describe columns.
func (f *Fetcher) Registry() *types.Registry {
	return f.reg
}

// FetchFirst submits query and returns the first page. A fetchSize of zero
// lets the service pick the page size.
func (f *Fetcher) FetchFirst(ctx context.Context, query string, fetchSize int) (page *Page, err error) {
	const op = "fetch first page"
	if query == "" {
		return nil, sqlerr.InvalidArgument(op, "query is empty")
	}
	if fetchSize < 0 {
		return nil, sqlerr.InvalidArgument(op, "fetch size must not be negative")
	}

	start := time.Now()
	defer func() { f.observe(metrics.KindFirst, start, page, err) }()

	resp, err := f.roundTrip(ctx, op, Request{Query: query, FetchSize: fetchSize})
	if err != nil {
		return nil, err
	}
	if len(resp.Schema) == 0 {
		return nil, sqlerr.New(sqlerr.ErrTransport, op, "response carries no schema", nil)
	}

	cols := make([]Column, len(resp.Schema))
	for i, s := range resp.Schema {
		d, err := f.reg.Describe(s.Type, f.strict)
		if err != nil {
			return nil, err
		}
		label := s.Alias
		if label == "" {
			label = s.Name
		}
		cols[i] = Column{Name: s.Name, Label: label, Type: d.Type, Descriptor: d}
	}

	page, err = f.buildPage(op, cols, resp)
	if err != nil {
		return nil, err
	}
	f.remember("", page)
	return page, nil
}

// FetchNext requests the page following token. The returned page reuses the
// columns of the first page; any schema the service repeats is ignored.
func (f *Fetcher) FetchNext(ctx context.Context, token string) (page *Page, err error) {
	const op = "fetch next page"
	if token == "" {
		return nil, sqlerr.InvalidArgument(op, "cursor token is empty")
	}
	f.mu.Lock()
	cols, ok := f.columns[token]
	f.mu.Unlock()
	if !ok {
		return nil, sqlerr.InvalidArgument(op, "unknown cursor token")
	}

	start := time.Now()
	defer func() { f.observe(metrics.KindNext, start, page, err) }()

	resp, err := f.roundTrip(ctx, op, Request{Cursor: token})
	if err != nil {
		return nil, err
	}
	if resp.Cursor == token {
		return nil, sqlerr.New(sqlerr.ErrTransport, op, "service returned the cursor token it was sent", nil)
	}

	page, err = f.buildPage(op, cols, resp)
	if err != nil {
		return nil, err
	}
	f.remember(token, page)
	return page, nil
}

// Close releases the server-side cursor behind token. Transports that
// cannot close cursors make it a no-op.
func (f *Fetcher) Close(ctx context.Context, token string) (err error) {
	if token == "" {
		return nil
	}
	f.mu.Lock()
	delete(f.columns, token)
	f.mu.Unlock()

	c, ok := f.transport.(Closer)
	if !ok {
		return nil
	}
	start := time.Now()
	defer func() { f.observe(metrics.KindClose, start, nil, err) }()

	body, err := json.Marshal(closeRequest{Cursor: token})
	if err != nil {
		return err
	}
	if err := c.CloseCursor(ctx, body); err != nil {
		return sqlerr.Transport("close cursor", err)
	}
	f.log.Debug("cursor closed")
	return nil
}

func (f *Fetcher) roundTrip(ctx context.Context, op string, req Request) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	payload, err := f.transport.Send(ctx, body)
	if err != nil {
		return nil, sqlerr.Transport(op, err)
	}
	resp, err := ParseResponse(payload)
	if err != nil {
		return nil, sqlerr.Transport(op, err)
	}
	if resp.Error != nil {
		return nil, sqlerr.Transport(op, resp.Error)
	}
	return resp, nil
}

func (f *Fetcher) buildPage(op string, cols []Column, resp *Response) (*Page, error) {
	descs := make([]types.Descriptor, len(cols))
	for i, c := range cols {
		descs[i] = c.Descriptor
	}

	page := &Page{Columns: cols, Cursor: resp.Cursor, Rows: make([][]types.Value, 0, len(resp.DataRows))}
	for _, raw := range resp.DataRows {
		row, err := DecodeRow(raw, descs)
		if err != nil {
			var se *sqlerr.Error
			if errors.As(err, &se) {
				return nil, err
			}
			return nil, sqlerr.Transport(op, err)
		}
		page.Rows = append(page.Rows, row)
	}
	return page, nil
}

func (f *Fetcher) remember(prev string, page *Page) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if prev != "" {
		delete(f.columns, prev)
	}
	if page.Cursor != "" {
		f.columns[page.Cursor] = page.Columns
	}
}

func (f *Fetcher) observe(kind string, start time.Time, page *Page, err error) {
	rows := 0
	if page != nil {
		rows = len(page.Rows)
	}
	f.metrics.ObserveFetch(kind, start, rows, err)
	if errors.Is(err, context.Canceled) {
		f.log.Debug("round trip canceled", "kind", kind)
		return
	}
	if err != nil {
		f.log.Warn("round trip failed", "kind", kind, "error", err)
		return
	}
	if page != nil {
		f.log.Debug("page fetched", "kind", kind, "rows", rows, "more", page.HasMore(),
			"duration", time.Since(start))
	}
}
