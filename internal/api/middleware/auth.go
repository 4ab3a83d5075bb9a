package middleware

import (
	"context"
	"net/http"

	"github.com/teamfolio/teamfolio/internal/auth"
)

const adminSessionKey contextKey = "adminSession"

// AdminSession is middleware that records whether the request carries a valid
// admin session cookie. It never rejects a request; handlers combine the flag
// with any password in the body via auth.Service.Authorize.
func AdminSession(sessions *auth.SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok := sessions != nil && sessions.IsAdmin(r)
			ctx := context.WithValue(r.Context(), adminSessionKey, ok)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// HasAdminSession reports whether AdminSession found a valid session.
func HasAdminSession(ctx context.Context) bool {
	ok, _ := ctx.Value(adminSessionKey).(bool)
	return ok
}
