package protocol

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/bisegni/ossql/pkg/parser"
)

// ReplayTransport answers every round trip with the next recorded response
// document, ignoring the request body. Cursor close requests are accepted
// and dropped.
type ReplayTransport struct {
	mu   sync.Mutex
	docs []parser.Document
	next int
}

// NewReplayTransport loads recorded documents from a JSON or JSONL file, or
// from stdin when path is "-".
func NewReplayTransport(path string) (*ReplayTransport, error) {
	p, err := parser.NewParser(path)
	if err != nil {
		return nil, err
	}
	defer p.Close()

	docs, err := p.ReadAll()
	if err != nil {
		return nil, err
	}
	return NewReplayDocuments(docs...), nil
}

// NewReplayDocuments serves the given documents in order.
func NewReplayDocuments(docs ...parser.Document) *ReplayTransport {
	return &ReplayTransport{docs: docs}
}

func (r *ReplayTransport) Send(ctx context.Context, _ []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.next >= len(r.docs) {
		return nil, errors.New("replay exhausted: no more recorded responses")
	}
	doc := r.docs[r.next]
	r.next++
	return doc, nil
}

func (r *ReplayTransport) CloseCursor(context.Context, []byte) error {
	return nil
}

// Remaining reports how many recorded documents have not been served.
func (r *ReplayTransport) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.docs) - r.next
}

// RecordingTransport copies every successful response of the wrapped
// transport to w, one JSONL document per line. The output can be served
// back with NewReplayTransport.
type RecordingTransport struct {
	inner Transport
	mu    sync.Mutex
	w     io.Writer
}

// Record wraps t so its responses are written to w.
func Record(t Transport, w io.Writer) *RecordingTransport {
	return &RecordingTransport{inner: t, w: w}
}

func (r *RecordingTransport) Send(ctx context.Context, body []byte) ([]byte, error) {
	resp, err := r.inner.Send(ctx, body)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := parser.WriteJSONL(r.w, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (r *RecordingTransport) CloseCursor(ctx context.Context, body []byte) error {
	if c, ok := r.inner.(Closer); ok {
		return c.CloseCursor(ctx, body)
	}
	return nil
}
