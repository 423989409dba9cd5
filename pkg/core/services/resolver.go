package services

import "strings"

// Decision is the resolver's verdict for one inbound path.
type Decision int

const (
	// Passthrough: not a single-segment path; normal routing applies.
	Passthrough Decision = iota
	// Reserved: a single segment owned by the application.
	Reserved
	// Tenant: a single segment to look up as a username.
	Tenant
)

func (d Decision) String() string {
	switch d {
	case Reserved:
		return "reserved"
	case Tenant:
		return "tenant"
	default:
		return "passthrough"
	}
}

// Resolution is the outcome of Resolve. Key is set only for Tenant.
type Resolution struct {
	Decision Decision
	Key      string
}

// Resolver classifies paths against the reserved registry. It never touches
// storage.
type Resolver struct {
	registry *Registry
}

func NewResolver(registry *Registry) *Resolver {
	return &Resolver{registry: registry}
}

func (r *Resolver) Resolve(path string) Resolution {
	segments := splitSegments(path)
	if len(segments) != 1 {
		return Resolution{Decision: Passthrough}
	}
	segment := segments[0]
	if r.registry.IsReserved(segment) {
		return Resolution{Decision: Reserved}
	}
	return Resolution{Decision: Tenant, Key: strings.ToLower(segment)}
}

func splitSegments(path string) []string {
	var out []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
