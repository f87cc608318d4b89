package server

import (
	"net/http"
	"strings"
)

// corsPolicy describes the preflight answer for one resource: its allowed
// methods and whether the auth header is accepted. The storefront is served
// from a separate origin, so the allowed origin is always the wildcard.
type corsPolicy struct {
	methods    []string
	authHeader bool
}

func (p corsPolicy) allowMethods() string {
	methods := append([]string{}, p.methods...)
	methods = append(methods, http.MethodOptions)
	return strings.Join(methods, ", ")
}

func (p corsPolicy) allowHeaders() string {
	if p.authHeader {
		return "Content-Type, X-Authorization"
	}
	return "Content-Type"
}

// withCORS wraps a handler so that OPTIONS preflight is answered before any
// business logic and Access-Control-Allow-Origin is present on every
// response path.
func withCORS(policy corsPolicy, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", policy.allowMethods())
			w.Header().Set("Access-Control-Allow-Headers", policy.allowHeaders())
			w.Header().Set("Access-Control-Max-Age", "86400")
			w.WriteHeader(http.StatusOK)
			return
		}
		next(w, r)
	}
}
