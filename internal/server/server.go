package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mlorentedev/productai/internal/adapter"
	"github.com/mlorentedev/productai/internal/handler"
	"github.com/mlorentedev/productai/internal/middleware"
)

const (
	// CompletionPath is where the product description endpoint is served.
	CompletionPath = "/completion/product-descriptions"
	// AdminCompletionPath mounts the same endpoint under the admin prefix.
	AdminCompletionPath = "/admin" + CompletionPath
)

// Options carries the knobs SetupMux needs beyond the adapters.
type Options struct {
	APIKey               string
	MaxDescriptionLength int
	MaxBodyBytes         int64
	Version              string
}

// SetupMux wires handlers with the full middleware chain. active serves the
// completion endpoint; adapters are reported by /health.
func SetupMux(active adapter.Completer, adapters map[string]adapter.Completer, models []adapter.ModelInfo, opts Options) http.Handler {
	maxDescription := opts.MaxDescriptionLength
	if maxDescription <= 0 {
		maxDescription = handler.DefaultMaxDescriptionLength
	}
	completions := handler.ProductDescriptions(active, maxDescription)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", handler.Health(adapters, opts.Version))
	mux.HandleFunc("/models", handler.Models(models))
	mux.HandleFunc("/prompts", handler.Prompts())
	mux.HandleFunc(CompletionPath, completions)
	mux.HandleFunc(AdminCompletionPath, completions)
	mux.Handle("/metrics", promhttp.Handler())

	return middleware.Chain(mux, opts.APIKey, opts.MaxBodyBytes)
}
