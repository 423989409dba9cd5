package services

import (
	"sort"
	"strings"
)

// DefaultReserved are the path segments owned by the application itself.
var DefaultReserved = []string{
	// application routes
	"auth", "dashboard", "api", "u", "demo", "healthz", "metrics",
	"login", "logout", "signup", "register", "settings", "admin",
	// static and well-known files
	"static", "assets", "public", "favicon.ico", "robots.txt", "sitemap.xml", ".well-known",
	// namespace protection
	"www", "root", "support", "help", "about", "terms", "privacy", "null", "undefined",
}

// Registry is the read-only set of reserved path segments. Lookups are
// case-insensitive.
type Registry struct {
	names map[string]struct{}
}

// NewRegistry builds a registry from DefaultReserved plus extra names.
func NewRegistry(extra ...string) *Registry {
	r := &Registry{names: make(map[string]struct{}, len(DefaultReserved)+len(extra))}
	for _, list := range [][]string{DefaultReserved, extra} {
		for _, name := range list {
			name = strings.ToLower(strings.TrimSpace(name))
			if name != "" {
				r.names[name] = struct{}{}
			}
		}
	}
	return r
}

func (r *Registry) IsReserved(segment string) bool {
	_, ok := r.names[strings.ToLower(segment)]
	return ok
}

// Names returns the reserved set, sorted.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.names))
	for name := range r.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
