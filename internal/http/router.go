package http

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/cors"

	"github.com/pribylovaa/commentsy/internal/http/handlers"
	"github.com/pribylovaa/commentsy/internal/http/middleware"
	"github.com/pribylovaa/commentsy/internal/service"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger   *slog.Logger
	Timeout  time.Duration
	BasePath string // например, "/api"; если пустой — роуты регистрируются на корне.

	// Verifier проверяет токены сессии; nil — все запросы анонимные.
	Verifier middleware.TokenVerifier
	// AllowedOrigins — браузерный CORS; ["*"] разрешает любой сайт,
	// доступ конкретного тенанта всё равно проверяется сервисом.
	AllowedOrigins []string
	// Registerer — куда регистрировать HTTP-метрики; nil — метрики не собираются.
	Registerer prometheus.Registerer
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(svc *service.Service, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),            // безопасно ловим паники
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
		corsHandler(opts.AllowedOrigins),
		middleware.Session(opts.Verifier),
	)
	if opts.Registerer != nil {
		root.Use(middleware.NewMetrics(opts.Registerer).Middleware())
	}
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	h := handlers.New(svc)

	if opts.BasePath != "" {
		sub := chi.NewRouter()
		registerRoutes(sub, h)
		root.Mount(opts.BasePath, sub)
		return root
	}

	registerRoutes(root, h)
	return root
}

// registerRoutes — единая точка регистрации всех REST-эндпойнтов.
func registerRoutes(r chi.Router, h *handlers.Handlers) {
	// widget (public)
	r.Get("/public/comments", h.ThreadView)

	// comments
	r.Get("/comments", h.GroupComments)
	r.Get("/comments/{id}/replies", h.ListReplies)
	r.Post("/comments", h.CreateComment)
	r.Delete("/comments", h.RemoveComment)
	r.Delete("/comments/{id}", h.RemoveComment)
	r.Patch("/comments/{id}/status", h.ModerateComment)

	// apps
	r.Post("/apps", h.RegisterApp)
	r.Get("/apps", h.ListApps)
	r.Put("/apps/{code}/origins", h.UpdateOrigins)
}

// corsHandler — браузерный CORS для виджета на сторонних сайтах.
//
// Запросы виджета идут с cookie сессии, а credentialed-ответ с ACAO "*" браузер отвергает,
// поэтому "*" реализуется отражением Origin запроса.
func corsHandler(origins []string) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", middleware.HeaderRequestID},
		ExposedHeaders:   []string{middleware.HeaderRequestID},
		AllowCredentials: true,
	}

	if len(origins) == 0 || slices.Contains(origins, "*") {
		opts.AllowOriginFunc = func(string) bool { return true }
	} else {
		opts.AllowedOrigins = origins
	}

	return cors.New(opts).Handler
}
