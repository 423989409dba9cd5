package handler

import (
	"net/http"

	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/services"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/metrics"
)

// tenantPrefix is where ResolverMiddleware sends tenant paths.
const tenantPrefix = "/u/"

// ResolverMiddleware classifies single-segment GET paths before routing.
// Reserved segments and multi-segment paths pass through untouched; any other
// single segment is rewritten to /u/{username} so /alice and /u/alice serve
// the same page.
func ResolverMiddleware(resolver *services.Resolver, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			next.ServeHTTP(w, r)
			return
		}

		res := resolver.Resolve(r.URL.Path)
		metrics.ResolverDecisions.WithLabelValues(res.Decision.String()).Inc()
		if res.Decision != services.Tenant {
			next.ServeHTTP(w, r)
			return
		}

		rewritten := r.Clone(r.Context())
		rewritten.URL.Path = tenantPrefix + res.Key
		rewritten.URL.RawPath = ""
		next.ServeHTTP(w, rewritten)
	})
}
