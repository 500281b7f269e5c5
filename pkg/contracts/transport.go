package contracts

import (
	"context"
	"net/http"
)

// Param is one query parameter. A []Param preserves insertion order all the
// way onto the wire so request signatures stay reproducible.
type Param struct {
	Key   string
	Value string
}

// Response is the raw result of one transport round trip.
type Response struct {
	StatusCode int
	Body       []byte
	Header     http.Header
}

// Transport sends a single HTTP request and returns the raw response.
// Implementations own connection reuse, TLS, and socket-level concerns.
// They must not retry and must not interpret the payload; classification
// of non-2xx responses happens above this boundary.
type Transport interface {
	Send(ctx context.Context, method, path string, query []Param, header http.Header) (*Response, error)
}
