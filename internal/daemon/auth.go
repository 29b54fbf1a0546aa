package daemon

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// authMiddleware guards the local HTTP API with the configured
// daemon.api_token bearer token. An empty token leaves the API open, the
// default for the localhost-only bind.
func authMiddleware(token string, next http.HandlerFunc) http.HandlerFunc {
	if token == "" {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		presented, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
			http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}
