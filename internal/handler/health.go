package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mlorentedev/productai/internal/adapter"
	"github.com/mlorentedev/productai/internal/metrics"
)

type adapterStatus struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

type healthResponse struct {
	Status   string                   `json:"status"`
	Version  string                   `json:"version,omitempty"`
	Adapters map[string]adapterStatus `json:"adapters"`
}

// Health reports per-adapter availability and refreshes the
// productai_adapter_available gauge.
func Health(adapters map[string]adapter.Completer, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		statuses := make(map[string]adapterStatus, len(adapters))
		for id, a := range adapters {
			s := adapterStatus{Available: a.Available()}
			gauge := 1.0
			if !s.Available {
				s.Reason = unavailableReason(a)
				gauge = 0
			}
			metrics.AdapterAvailable.WithLabelValues(id).Set(gauge)
			statuses[id] = s
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(healthResponse{
			Status:   "ok",
			Version:  version,
			Adapters: statuses,
		})
	}
}

func unavailableReason(a adapter.Completer) string {
	switch a.(type) {
	case *adapter.ClaudeAdapter, *adapter.OpenAIAdapter, *adapter.GeminiAdapter:
		return "no API key"
	case *adapter.OllamaAdapter:
		return "ollama unreachable"
	case *adapter.LlamaCppAdapter:
		return "llama-server unreachable"
	default:
		return "unavailable"
	}
}
