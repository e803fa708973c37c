package middleware

import (
	"log/slog"
	"net/http"

	"github.com/Ghani-Agu/review-app/pkg/logger"
)

// ShopDomainHeader is the header storefront proxies use to pass the tenant domain.
const ShopDomainHeader = "X-Shopify-Shop-Domain"

// RequestLogger returns middleware that builds a request-scoped logger enriched
// with correlation_id, shop_domain, trace_id, and span_id, then stores it in
// context via logger.NewContext. Downstream handlers retrieve it with
// logger.FromContext(ctx).
//
// Only the explicit tenant header and `shop` query parameter are consulted
// here; authoritative tenant resolution (including the host-based sources)
// happens in the handlers. This is purely log enrichment.
//
// This middleware should be mounted AFTER RequestLogging (which sets
// correlation_id) and Tracing (which sets the OpenTelemetry span context).
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			shopDomain := r.Header.Get(ShopDomainHeader)
			if shopDomain == "" {
				shopDomain = r.URL.Query().Get("shop")
			}
			if shopDomain != "" {
				ctx = logger.WithShopDomain(ctx, shopDomain)
			}

			// Build enriched logger with all available context fields
			// (correlation_id, shop_domain, trace_id, span_id).
			enriched := logger.WithContext(ctx, base)

			// Store the enriched logger in context for downstream handlers.
			ctx = logger.NewContext(ctx, enriched)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
