package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Ghani-Agu/review-app/pkg/health"
	"github.com/Ghani-Agu/review-app/pkg/httputil"
	"github.com/Ghani-Agu/review-app/pkg/middleware"
)

const (
	serviceName    = "review-app"
	requestTimeout = 30 * time.Second
)

// RouterConfig carries everything the router needs.
type RouterConfig struct {
	ProxyPrefix       string
	CacheMaxAge       int
	PprofAllowedCIDRs []string
}

// NewRouter builds the service router: operational endpoints at the root and
// the storefront review endpoints under the app-proxy prefix.
func NewRouter(cfg RouterConfig, reviews *ReviewHandler, healthHandler *health.Handler, log *slog.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(log))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(requestTimeout))
	r.Use(middleware.RequestLogging(log))
	r.Use(middleware.PrometheusMetrics(serviceName))
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.RequestLogger(log))

	r.MethodNotAllowed(methodNotAllowed)
	r.NotFound(notFound)

	// Operational endpoints.
	r.Get("/healthz", healthHandler.LivenessHandler())
	r.Get("/readyz", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())
	middleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, log)

	// Storefront endpoints, mounted under the app-proxy prefix.
	prefix := strings.TrimSuffix(cfg.ProxyPrefix, "/")
	r.Route(prefix, func(r chi.Router) {
		r.Use(middleware.CORS(middleware.DefaultCORSConfig()))

		// The proxy also forwards the bare prefix; shim it onto /reviews.
		// 307 keeps the method and body intact.
		redirect := redirectToReviews(prefix)
		r.HandleFunc("/", redirect)

		r.With(middleware.CacheControl(cfg.CacheMaxAge)).Get("/reviews", reviews.List)
		r.Post("/reviews", reviews.Create)
	})

	return r
}

// redirectToReviews issues a temporary redirect from the bare prefix to the
// reviews path, preserving the query string.
func redirectToReviews(prefix string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target := prefix + "/reviews"
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}
		http.Redirect(w, r, target, http.StatusTemporaryRedirect)
	}
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusMethodNotAllowed, httputil.Response{
		OK:    false,
		Error: "method not allowed",
	})
}

func notFound(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusNotFound, httputil.Response{
		OK:    false,
		Error: "not found",
	})
}
