package middleware

import (
	"casebox_backend/pkg/resp"
	"casebox_backend/pkg/token"
	"context"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
)

type ctxKey int

const (
	userIDKey ctxKey = iota
	sessionIDKey
)

// Auth проверяет Bearer access token и кладёт userID и sessionID в контекст.
// Движок доверяет этим значениям
func Auth(secretKey []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || raw == "" {
				resp.WriteError(w, http.StatusUnauthorized, "missing access token")
				return
			}

			claims, err := token.VerifyToken(raw, secretKey)
			if err != nil {
				log.WithError(err).Debug("access token rejected")
				resp.WriteError(w, http.StatusUnauthorized, "invalid access token")
				return
			}
			userID, err := token.UserID(claims)
			if err != nil {
				resp.WriteError(w, http.StatusUnauthorized, "invalid access token")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			if claims.SessionID != "" {
				ctx = context.WithValue(ctx, sessionIDKey, claims.SessionID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

// SessionIDFromContext - nil, если токен выпущен без сессии
func SessionIDFromContext(ctx context.Context) *string {
	if sid, ok := ctx.Value(sessionIDKey).(string); ok {
		return &sid
	}
	return nil
}

// WithUser - контекст аутентифицированного пользователя без токена (для тестов хендлеров)
func WithUser(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}
