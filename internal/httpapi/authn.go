package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"teampulse.org/internal/auth"
	"teampulse.org/internal/directory"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

var publicPaths = []string{
	"/api/auth/register",
	"/api/auth/login",
	"/health",
	"/healthz",
	"/readyz",
	"/metrics",
	"/",
}

// withAuth validates the bearer token, re-checks the account against the
// directory (deactivation revokes otherwise valid tokens) and stores the
// identity in the request context.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		if isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token, err := extractBearerToken(r.Header.Get(authHeader))
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, err.Error())
			return
		}

		claims, err := auth.ParseAndValidate(token)
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, "invalid token")
			return
		}

		u, err := a.directory.Get(r.Context(), claims.Subject)
		if err != nil || !u.Active {
			writeError(w, r, http.StatusUnauthorized, "account unavailable")
			return
		}

		ctx := auth.ContextWithUser(r.Context(), u.ID, string(u.Role))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// actor extracts the authenticated identity. Handlers behind withAuth can
// rely on it; a missing identity means the middleware was bypassed.
func actor(r *http.Request) (directory.Actor, bool) {
	id, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return directory.Actor{}, false
	}
	return directory.Actor{ID: id, Role: directory.Role(auth.RoleFromContext(r.Context()))}, true
}

func mustActor(w http.ResponseWriter, r *http.Request) (directory.Actor, bool) {
	act, ok := actor(r)
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
	}
	return act, ok
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	return false
}
