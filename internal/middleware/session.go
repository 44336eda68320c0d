package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/hongminglow/marketplace-auth/internal/http/respond"
	"github.com/hongminglow/marketplace-auth/internal/service"
)

// SessionValidator resolves a bearer token to the current account.
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (service.SessionResult, error)
}

type sessionKey struct{}

// RequireSession rejects requests without a valid bearer token and stores the
// resolved session in the request context.
func RequireSession(validator SessionValidator, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			respond.Error(w, http.StatusUnauthorized, service.ErrInvalidToken.Message)
			return
		}
		session, err := validator.ValidateSession(r.Context(), token)
		if err != nil {
			respond.Error(w, service.StatusCode(err), service.PublicMessage(err))
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, session)))
	})
}

// SessionFrom returns the session stored by RequireSession.
func SessionFrom(ctx context.Context) (service.SessionResult, bool) {
	session, ok := ctx.Value(sessionKey{}).(service.SessionResult)
	return session, ok
}

func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
