package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/avolkov/scanonce/internal/common"
	"github.com/avolkov/scanonce/internal/server/models"
)

type ctxKey string

const identityKey ctxKey = "identity"

// requireAuth extracts the bearer token, validates it against the user
// service, and stashes the resolved user in the request context. Validation
// always goes through the service; token shape is never trusted.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthorizationHeaderName)
		if !strings.HasPrefix(header, common.BearerPrefix) {
			writeError(w, http.StatusUnauthorized, "missing token")
			return
		}
		token := strings.TrimPrefix(header, common.BearerPrefix)

		user, err := s.users.ValidateToken(r.Context(), token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func identityFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(identityKey).(*models.User)
	return user, ok
}

// logRequest logs method, path, and duration for every request.
func (s *Server) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info(r.Context(), "request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start).String())
	})
}
