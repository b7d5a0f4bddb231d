package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/pribylovaa/commentsy/internal/auth"
	"github.com/pribylovaa/commentsy/internal/pkg/log"
)

// SessionCookie — cookie с токеном сессии, выставляемая identity provider.
const SessionCookie = "session_token"

// TokenVerifier проверяет токен сессии и возвращает личность пользователя.
type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

type identityKey struct{}

// Session извлекает токен из Authorization: Bearer или cookie session_token,
// проверяет его и кладёт auth.Identity в контекст.
// Отсутствующий или невалидный токен не обрывает запрос: решение «нужна ли сессия»
// принимает сервисный слой (ErrUnauthenticated), публичные ручки работают без неё.
func Session(v TokenVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearer(r)
			if token == "" {
				if c, err := r.Cookie(SessionCookie); err == nil {
					token = strings.TrimSpace(c.Value)
				}
			}

			if token != "" && v != nil {
				id, err := v.Verify(token)
				if err != nil {
					log.From(r.Context()).Warn("session_rejected", "err", err)
				} else {
					r = r.WithContext(context.WithValue(r.Context(), identityKey{}, id))
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// IdentityFrom возвращает пользователя сессии; ok=false, если сессии нет.
func IdentityFrom(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(auth.Identity)
	return id, ok
}

func bearer(r *http.Request) string {
	const prefix = "Bearer "

	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, prefix) || len(h) <= len(prefix) {
		return ""
	}

	return strings.TrimSpace(h[len(prefix):])
}
