package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/pribylovaa/commentsy/internal/auth"
	"github.com/pribylovaa/commentsy/internal/http/middleware"
	"github.com/pribylovaa/commentsy/internal/service"
)

// Handlers агрегирует зависимости HTTP-ручек.
type Handlers struct {
	svc *service.Service
}

func New(svc *service.Service) *Handlers {
	return &Handlers{svc: svc}
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}

// invalidArgument — локальная ошибка разбора запроса в терминах сервиса.
func invalidArgument(err error) error {
	return fmt.Errorf("decode request: %v: %w", err, service.ErrInvalidArgument)
}

// identity возвращает пользователя сессии; без сессии — пустая личность,
// и сервис ответит ErrUnauthenticated.
func identity(r *http.Request) auth.Identity {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		return auth.Identity{UserID: uuid.Nil}
	}
	return id
}
