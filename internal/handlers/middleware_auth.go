package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
)

type principalKey struct{}

// withPrincipal attaches the authenticated user to the request context.
func withPrincipal(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, principalKey{}, user)
}

// principalFrom returns the authenticated user attached by RequireAuth.
func principalFrom(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(principalKey{}).(models.User)
	return user, ok
}

// bearerToken extracts the access credential from the accessToken cookie or
// the Authorization header.
func bearerToken(r *http.Request) string {
	if cookie, err := r.Cookie(accessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// RequireAuth gates a handler behind access-token verification. Requests with
// a missing, malformed or expired token, or whose user no longer exists, are
// rejected with 401; otherwise the resolved principal is attached to the
// request context.
func RequireAuth(users UserStore, tokens TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token := bearerToken(r)
			if token == "" {
				respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
				return
			}

			claims, err := tokens.VerifyAccess(token)
			if err != nil {
				respondError(ctx, w, http.StatusUnauthorized, "invalid access token")
				return
			}

			user, err := users.FindByID(ctx, claims.Subject)
			if err != nil {
				logging.FromContext(ctx).Warn("access token for unknown user", "userId", claims.Subject)
				respondError(ctx, w, http.StatusUnauthorized, "invalid access token")
				return
			}

			next.ServeHTTP(w, r.WithContext(withPrincipal(ctx, user)))
		})
	}
}
