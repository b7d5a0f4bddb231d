// errors стандартизирует ответы HTTP-слоя commentsy.
// На вход он принимает ошибку сервисного слоя (service.Err*),
// а на выход даёт:
//   - корректный HTTP-статус;
//   - конверт {status: "fail", code, message, request_id} без утечки деталей.
//
// Успешные ответы оборачиваются в {status: "success", data}.
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/pribylovaa/commentsy/internal/service"
)

// Нестандартный код часто используемый для "клиент закрыл соединение".
const StatusClientClosedRequest = 499

// Значения дискриминатора конверта.
const (
	StatusSuccess = "success"
	StatusFail    = "fail"
)

// Envelope — конверт ошибки {status: "fail", code, message, request_id}; успешный ответ пишет WriteSuccess.
// Code — короткий стабильный код для машиночитаемой обработки.
// Message — безопасное человекочитаемое описание.
// RequestID — прокидывается из X-Request-Id, если есть (для трассировки).
type Envelope struct {
	Status    string `json:"status"`
	Code      string `json:"code,omitempty"`
	Message   string `json:"message,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// mapping — строка таблицы service error -> HTTP.
type mapping struct {
	target  error
	status  int
	code    string
	message string
}

// table — порядок важен: первая совпавшая ошибка выигрывает.
var table = []mapping{
	{service.ErrInvalidArgument, http.StatusBadRequest, "invalid_argument", "Invalid or missing parameters."},
	{service.ErrOriginMismatch, http.StatusForbidden, "origin_mismatch", "Authorization error, URI mismatch"},
	{service.ErrUnauthenticated, http.StatusForbidden, "unauthenticated", "You need to be logged in to post a comment"},
	{service.ErrForbidden, http.StatusForbidden, "forbidden", "You are not allowed to modify this resource"},
	{service.ErrGroupNotFound, http.StatusNotFound, "group_not_found", "Comments group with that id was not found"},
	{service.ErrParentNotFound, http.StatusNotFound, "parent_not_found", "Parent comment was not found"},
	{service.ErrNotFound, http.StatusNotFound, "not_found", "not found"},
	{service.ErrInvalidParent, http.StatusBadRequest, "invalid_parent", "Replies are allowed to top-level comments of the same group only"},
	{service.ErrInvalidTransition, http.StatusConflict, "invalid_transition", "Status transition is not allowed"},
	{service.ErrConflict, http.StatusConflict, "conflict", "Resource was modified concurrently, retry"},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, "deadline_exceeded", "deadline exceeded"},
	{context.Canceled, StatusClientClosedRequest, "canceled", "canceled"},
}

// ToHTTP конвертирует ошибку сервиса в HTTP-статус и конверт ответа.
//
// Поведение:
//   - err == nil - это программная ошибка вызова: возвращаем 500/internal,
//     чтобы не послать "200 OK" с телом ошибки и не маскировать баг.
//   - err не распознана (в т.ч. service.ErrInternal) - 500/internal без деталей.
func ToHTTP(err error) (int, Envelope) {
	if err != nil {
		for _, m := range table {
			if stderrors.Is(err, m.target) {
				return m.status, Envelope{Status: StatusFail, Code: m.code, Message: m.message}
			}
		}
	}

	return http.StatusInternalServerError, Envelope{
		Status:  StatusFail,
		Code:    "internal",
		Message: "internal error",
	}
}

// WriteError — хелпер для HTTP-хендлеров.
// Пишет корректный статус/тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.RequestID = rid
	}

	writeJSON(w, status, resp)
}

// success — успешный конверт: ключ data присутствует всегда, в том числе как null.
type success struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
}

// WriteSuccess пишет {status: "success", data}.
func WriteSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, success{Status: StatusSuccess, Data: data})
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}
