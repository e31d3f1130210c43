package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mlorentedev/productai/internal/adapter"
	"github.com/mlorentedev/productai/internal/prompt"
)

// Models lists the configured providers; the one serving completions is
// flagged Active.
func Models(models []adapter.ModelInfo) http.HandlerFunc {
	if models == nil {
		models = []adapter.ModelInfo{}
	}
	return getJSON(models)
}

type promptInfo struct {
	Type    string `json:"type"`
	Label   string `json:"label"`
	Keyword bool   `json:"keyword"`
}

// Prompts lists the rewrite actions a client can offer, in display order.
func Prompts() http.HandlerFunc {
	var out []promptInfo
	for _, t := range prompt.Types() {
		out = append(out, promptInfo{Type: string(t), Label: t.Label(), Keyword: t == prompt.ImproveSEO})
	}
	return getJSON(out)
}

// getJSON serves a fixed value to GET requests.
func getJSON(v any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(v)
	}
}
