// Package mwauth gates requests on the session cookie. The cookie value is a
// signed JWT; no session state lives server side.
package mwauth

import (
	"context"
	"errors"
	"net/http"

	"taskboard-backend/internal/api"
	"taskboard-backend/pkg/idwrap"
	"taskboard-backend/pkg/stoken"
)

type ContextKey string

const UserIDKeyCtx ContextKey = "UserID"

const SessionCookieName = "session"

// NewAuthMiddleware rejects requests without a valid session cookie and puts
// the authenticated user id on the request context.
func NewAuthMiddleware(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil {
				api.WriteError(w, http.StatusUnauthorized, "no session")
				return
			}

			claims, err := stoken.ValidateJWT(cookie.Value, stoken.SessionToken, secret)
			if err != nil {
				api.WriteError(w, http.StatusUnauthorized, "invalid session")
				return
			}

			userID, err := claims.UserID()
			if err != nil {
				api.WriteError(w, http.StatusUnauthorized, "invalid session")
				return
			}

			next.ServeHTTP(w, r.WithContext(CreateAuthedContext(r.Context(), userID)))
		})
	}
}

// CreateAuthedContext is exposed for tests that need a logged-in context.
func CreateAuthedContext(ctx context.Context, userID idwrap.IDWrap) context.Context {
	return context.WithValue(ctx, UserIDKeyCtx, userID)
}

func GetContextUserID(ctx context.Context) (idwrap.IDWrap, error) {
	id, ok := ctx.Value(UserIDKeyCtx).(idwrap.IDWrap)
	if !ok {
		return idwrap.IDWrap{}, errors.New("user id not found in context")
	}
	return id, nil
}
