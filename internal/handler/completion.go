package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mlorentedev/productai/internal/adapter"
	"github.com/mlorentedev/productai/internal/completion"
	"github.com/mlorentedev/productai/internal/metrics"
)

const (
	// StreamStatusTrailer is sent as a trailer once a stream ended cleanly.
	StreamStatusTrailer = "X-Stream-Status"
	// StreamComplete is the trailer value of a well-formed stream.
	StreamComplete = "complete"

	// DefaultMaxDescriptionLength bounds the description when none is configured.
	DefaultMaxDescriptionLength = 10000
)

// ProductDescriptions streams a rewritten product description as chunked
// plain text. Validation and provider failures that happen before the first
// chunk are reported as JSON errors; once the body has started, a provider
// failure aborts the connection so the client sees a truncated response.
func ProductDescriptions(c adapter.Completer, maxDescription int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		var req completion.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				writeError(w, r, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			writeError(w, r, http.StatusBadRequest, "invalid JSON body")
			return
		}

		msgs, err := req.Build(maxDescription)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, badRequestReason(err))
			return
		}
		metrics.DescriptionChars.Observe(float64(len(req.Description)))

		model := c.Name()
		log := slog.With("adapter", model, "type", req.Type)
		start := time.Now()

		stream, err := c.Complete(r.Context(), msgs)
		if err != nil {
			log.Warn("completion failed", "error", err)
			metrics.ErrorsTotal.WithLabelValues(model, "start").Inc()
			writeError(w, r, http.StatusBadGateway, fmt.Sprintf("completion failed: %v", err))
			return
		}
		defer stream.Close()

		// Pull the first chunk before committing to a 200 so an early
		// provider failure can still be reported as an error response.
		more := stream.Next()
		if !more {
			if err := stream.Err(); err != nil {
				log.Warn("completion failed", "error", err)
				metrics.ErrorsTotal.WithLabelValues(model, "start").Inc()
				writeError(w, r, http.StatusBadGateway, fmt.Sprintf("completion failed: %v", err))
				return
			}
		}

		h := w.Header()
		h.Set("Content-Type", "text/plain; charset=utf-8")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Cache-Control", "no-cache")
		h.Set("Trailer", StreamStatusTrailer)
		w.WriteHeader(http.StatusOK)

		rc := http.NewResponseController(w)
		chunks := 0
		for ; more; more = stream.Next() {
			if chunks == 0 {
				metrics.FirstChunk.WithLabelValues(model).Observe(time.Since(start).Seconds())
			}
			if _, err := io.WriteString(w, stream.Chunk()); err != nil {
				log.Debug("client went away", "error", err, "chunks", chunks)
				return
			}
			rc.Flush()
			chunks++
			metrics.ChunksTotal.WithLabelValues(model).Inc()
		}

		if err := stream.Err(); err != nil {
			log.Error("completion stream failed", "error", err, "chunks", chunks)
			metrics.ErrorsTotal.WithLabelValues(model, "stream").Inc()
			panic(http.ErrAbortHandler)
		}

		metrics.CompletionDuration.WithLabelValues(model, req.Type).Observe(time.Since(start).Seconds())
		h.Set(StreamStatusTrailer, StreamComplete)
	}
}

func badRequestReason(err error) string {
	return strings.TrimPrefix(err.Error(), completion.ErrBadRequest.Error()+": ")
}
