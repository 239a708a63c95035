package middleware

import (
	"net/http"
)

// RequirePrincipal rejects requests whose context carries no authenticated
// user. It runs after Auth and guards routes that must not be reachable
// anonymously even if the middleware chain is reordered.
func RequirePrincipal() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := UserIDFromContext(r.Context()); !ok {
				http.Error(w, `{"title":"Forbidden","status":403,"detail":"no authenticated user"}`, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
