package protocol

import (
	"encoding/json"
	"fmt"
)

// Service endpoints relative to the base URL.
const (
	QueryEndpoint = "/_plugins/_sql?format=jdbc"
	CloseEndpoint = "/_plugins/_sql/close"
)

// Request is the body of a query or continuation round trip. Exactly one of
// Query and Cursor is set.
type Request struct {
	Query     string `json:"query,omitempty"`
	Cursor    string `json:"cursor,omitempty"`
	FetchSize int    `json:"fetch_size,omitempty"`
}

type closeRequest struct {
	Cursor string `json:"cursor"`
}

// SchemaEntry describes one result column as sent by the service.
type SchemaEntry struct {
	Name  string `json:"name"`
	Alias string `json:"alias,omitempty"`
	Type  string `json:"type"`
}

// ServiceError is the error document of a failed query.
type ServiceError struct {
	Reason  string `json:"reason"`
	Details string `json:"details"`
	Type    string `json:"type"`
}

func (e *ServiceError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Reason, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Reason)
}

// Response is one page document. Rows stay raw until their column types are
// known.
type Response struct {
	Schema   []SchemaEntry     `json:"schema,omitempty"`
	DataRows []json.RawMessage `json:"datarows"`
	Cursor   string            `json:"cursor,omitempty"`
	Total    int64             `json:"total,omitempty"`
	Size     int64             `json:"size,omitempty"`
	Status   int               `json:"status,omitempty"`
	Error    *ServiceError     `json:"error,omitempty"`
}

// ParseResponse decodes a response document.
func ParseResponse(body []byte) (*Response, error) {
	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("malformed response: %w", err)
	}
	return &resp, nil
}
