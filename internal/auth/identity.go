package auth

import (
	"context"

	"github.com/vidtube/backend/internal/apperr"
)

type ctxKey string

const identityKey ctxKey = "identity"

// WithIdentity stores the verified acting user id on the context.
func WithIdentity(ctx context.Context, userID string) context.Context {
	if ctx == nil || userID == "" {
		return ctx
	}
	return context.WithValue(ctx, identityKey, userID)
}

// IdentityFromContext returns the acting user id, or "" for anonymous requests.
func IdentityFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if userID, ok := ctx.Value(identityKey).(string); ok {
		return userID
	}
	return ""
}

// RequireIdentity returns the acting user id or Unauthorized when the request is anonymous.
func RequireIdentity(ctx context.Context) (string, error) {
	userID := IdentityFromContext(ctx)
	if userID == "" {
		return "", apperr.New(apperr.KindUnauthorized, "authentication required")
	}
	return userID, nil
}

// Authorize allows a mutation only when the acting identity owns the resource.
func Authorize(ownerID, actorID string) error {
	if ownerID == "" || actorID == "" || ownerID != actorID {
		return apperr.New(apperr.KindUnauthorized, "you are not allowed to modify this resource")
	}
	return nil
}
