package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	apierrors "github.com/pribylovaa/commentsy/internal/errors"
	"github.com/pribylovaa/commentsy/internal/pkg/log"
)

// Recover превращает panic обработчика в 500/internal в общем конверте; стек уходит только в лог.
// Если ответ уже начат, конверт не пишется: статус поменять нельзя.
// http.ErrAbortHandler пробрасывается, им net/http обрывает соединение.
func Recover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := newStatusWriter(w)

			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				log.From(r.Context()).LogAttrs(r.Context(), slog.LevelError, "panic",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Any("reason", rec),
					slog.String("stack", string(debug.Stack())),
					slog.Bool("response_started", sw.wrote()),
				)

				if !sw.wrote() {
					apierrors.WriteError(sw, r, fmt.Errorf("recovered panic: %v", rec))
				}
			}()

			next.ServeHTTP(sw, r)
		})
	}
}
