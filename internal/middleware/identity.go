package middleware

import (
	"net/http"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/logging"
)

// TokenVerifier resolves a bearer token to a user id.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Authenticate attaches the caller's identity when a bearer token is present.
// Requests without a token continue anonymously; a token that fails
// verification is rejected.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.BearerToken(r.Header.Get("Authorization"))
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			userID, err := verifier.Verify(token)
			if err != nil {
				logging.FromContext(r.Context()).Warn("rejected bearer token", "error", err)
				writeError(w, http.StatusUnauthorized, "Unauthorized", "invalid or expired access token")
				return
			}
			ctx := auth.WithIdentity(r.Context(), userID)
			ctx = logging.WithAttrs(ctx, "user_id", userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireIdentity rejects anonymous requests.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := auth.RequireIdentity(r.Context()); err != nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized", err.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}
