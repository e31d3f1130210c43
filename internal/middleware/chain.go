package middleware

import (
	"net/http"
)

// DefaultMaxBytes bounds request bodies when no limit is configured.
const DefaultMaxBytes = 64 * 1024

// Chain wraps the handler with the full middleware stack.
// Order: CORS → RequestID → Logging → Metrics → APIKey → MaxBytes → mux
//
// There is no per-request timeout handler: http.TimeoutHandler buffers the
// whole response, which would hold back a streamed completion until it ends.
func Chain(handler http.Handler, apiKey string, maxBytes int64) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	h := handler
	h = MaxBytes(maxBytes)(h)
	h = APIKey(apiKey)(h)
	h = Metrics(h)
	h = Logging(h)
	h = RequestID(h)
	h = CORS(h)
	return h
}
