package protocol

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/bisegni/ossql/pkg/logger"
)

// Transport performs one request/response round trip with the service.
type Transport interface {
	Send(ctx context.Context, body []byte) ([]byte, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, body []byte) ([]byte, error)

func (f TransportFunc) Send(ctx context.Context, body []byte) ([]byte, error) {
	return f(ctx, body)
}

// Closer is implemented by transports able to release a server-side cursor.
type Closer interface {
	CloseCursor(ctx context.Context, body []byte) error
}

// HTTPTransport talks to the SQL endpoint over HTTP.
type HTTPTransport struct {
	baseURL  string
	client   *http.Client
	user     string
	password string
	limiter  *rate.Limiter
	log      *slog.Logger
}

// HTTPOption configures an HTTPTransport.
type HTTPOption func(*HTTPTransport)

// WithBasicAuth sends credentials on every request.
func WithBasicAuth(user, password string) HTTPOption {
	return func(t *HTTPTransport) {
		t.user = user
		t.password = password
	}
}

// WithTimeout bounds each round trip.
func WithTimeout(d time.Duration) HTTPOption {
	return func(t *HTTPTransport) {
		if d > 0 {
			t.client.Timeout = d
		}
	}
}

// WithRequestsPerSecond throttles round trips. Zero or less disables it.
func WithRequestsPerSecond(rps float64) HTTPOption {
	return func(t *HTTPTransport) {
		if rps > 0 {
			t.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithHTTPClient replaces the underlying client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(t *HTTPTransport) {
		if c != nil {
			t.client = c
		}
	}
}

// WithTransportLogger sets the logger used for request tracing.
func WithTransportLogger(l *slog.Logger) HTTPOption {
	return func(t *HTTPTransport) {
		if l != nil {
			t.log = l
		}
	}
}

// NewHTTPTransport creates a transport for the service at baseURL, for
// example "https://localhost:9200".
func NewHTTPTransport(baseURL string, opts ...HTTPOption) *HTTPTransport {
	t := &HTTPTransport{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     logger.Get(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Send posts body to the query endpoint.
func (t *HTTPTransport) Send(ctx context.Context, body []byte) ([]byte, error) {
	return t.post(ctx, QueryEndpoint, body)
}

// CloseCursor posts body to the cursor close endpoint.
func (t *HTTPTransport) CloseCursor(ctx context.Context, body []byte) error {
	_, err := t.post(ctx, CloseEndpoint, body)
	return err
}

func (t *HTTPTransport) post(ctx context.Context, endpoint string, body []byte) ([]byte, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Opaque-Id", requestID)
	if t.user != "" {
		req.SetBasicAuth(t.user, t.password)
	}

	t.log.Debug("sending request", "endpoint", endpoint, "request_id", requestID, "bytes", len(body))
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp.StatusCode, payload)
	}
	return payload, nil
}

// statusError extracts the service reason from an error document when the
// body carries one.
func statusError(status int, payload []byte) error {
	var doc struct {
		Error *ServiceError `json:"error"`
	}
	if err := json.Unmarshal(payload, &doc); err == nil && doc.Error != nil {
		return fmt.Errorf("HTTP %d: %w", status, doc.Error)
	}
	text := strings.TrimSpace(string(payload))
	if len(text) > 200 {
		text = text[:200] + "..."
	}
	if text == "" {
		text = http.StatusText(status)
	}
	return fmt.Errorf("HTTP %d: %s", status, text)
}
