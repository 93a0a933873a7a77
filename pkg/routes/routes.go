// Package routes provides route registration primitives for building an
// http.ServeMux from grouped route definitions.
package routes

import "net/http"

// Route binds a single "METHOD /pattern" to a handler.
type Route struct {
	Pattern string
	Handler http.HandlerFunc
}

// Group is a set of routes sharing a path prefix.
type Group struct {
	Prefix string
	Routes []Route
}

// System registers route groups onto a ServeMux.
type System struct {
	groups []Group
}

// New creates an empty route registration system.
func New() *System {
	return &System{}
}

// Register adds route groups to the system.
func (s *System) Register(groups ...Group) {
	s.groups = append(s.groups, groups...)
}

// Build constructs an http.ServeMux with all registered routes. Patterns are
// composed as "METHOD <prefix><path>" using Go 1.22 routing semantics.
func (s *System) Build() *http.ServeMux {
	mux := http.NewServeMux()

	for _, group := range s.groups {
		for _, route := range group.Routes {
			mux.HandleFunc(compose(group.Prefix, route.Pattern), route.Handler)
		}
	}

	return mux
}

// compose splits "METHOD /path" patterns and inserts the group prefix
// between the method and path segments. A bare "/" path collapses onto the
// prefix itself so collection roots register without a trailing slash.
func compose(prefix, pattern string) string {
	if prefix == "" {
		return pattern
	}

	for i := 0; i < len(pattern); i++ {
		if pattern[i] == ' ' {
			path := pattern[i+1:]
			if path == "/" {
				return pattern[:i+1] + prefix
			}
			return pattern[:i+1] + prefix + path
		}
	}

	return prefix + pattern
}
