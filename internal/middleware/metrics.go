package middleware

import (
	"net/http"
	"strconv"

	"github.com/mlorentedev/productai/internal/metrics"
)

// otherRoute labels every path outside knownRoutes so scanners cannot grow
// the request counter without bound.
const otherRoute = "other"

var knownRoutes = map[string]bool{
	"/health":                                true,
	"/models":                                true,
	"/prompts":                               true,
	"/metrics":                               true,
	"/completion/product-descriptions":       true,
	"/admin/completion/product-descriptions": true,
}

// Metrics counts requests by method, route and status. Aborted streams are
// counted too, with the status that was already sent.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		defer func() {
			metrics.RequestsTotal.WithLabelValues(r.Method, routeLabel(r.URL.Path), strconv.Itoa(sw.status)).Inc()
		}()
		next.ServeHTTP(sw, r)
	})
}

func routeLabel(path string) string {
	if knownRoutes[path] {
		return path
	}
	return otherRoute
}
