package tenant

import (
	"net/http"
	"strings"

	apperrors "github.com/Ghani-Agu/review-app/pkg/errors"
	"github.com/Ghani-Agu/review-app/pkg/middleware"
)

// myshopifySuffix gates the host-based fallbacks: an arbitrary Host header
// must not be trusted as a tenant identifier unless it is a real
// *.myshopify.com domain.
const myshopifySuffix = ".myshopify.com"

// ErrNoTenant is returned when no shop domain can be resolved from a request.
var ErrNoTenant = apperrors.Unauthorized("shop could not be identified")

// Resolve extracts the shop domain owning this request. Sources are tried in
// order of trustworthiness:
//
//  1. the X-Shopify-Shop-Domain header, set by the app proxy
//  2. the "shop" query parameter
//  3. the X-Forwarded-Host header, only if it is a *.myshopify.com domain
//  4. the Host header, only if it is a *.myshopify.com domain
//
// The returned domain is lowercased and trimmed. ErrNoTenant is returned when
// none of the sources yields a usable domain.
func Resolve(r *http.Request) (string, error) {
	if shop := normalize(r.Header.Get(middleware.ShopDomainHeader)); shop != "" {
		return shop, nil
	}

	if shop := normalize(r.URL.Query().Get("shop")); shop != "" {
		return shop, nil
	}

	if shop := stripPort(normalize(r.Header.Get("X-Forwarded-Host"))); isMyshopifyDomain(shop) {
		return shop, nil
	}

	if shop := stripPort(normalize(r.Host)); isMyshopifyDomain(shop) {
		return shop, nil
	}

	return "", ErrNoTenant
}

func normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func stripPort(host string) string {
	if i := strings.LastIndex(host, ":"); i != -1 && !strings.Contains(host[i:], "]") {
		return host[:i]
	}
	return host
}

func isMyshopifyDomain(host string) bool {
	return len(host) > len(myshopifySuffix) && strings.HasSuffix(host, myshopifySuffix)
}
