// service содержит бизнес-логику commentsy: тенанты, группы, комментарии, модерация.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pribylovaa/commentsy/internal/config"
	"github.com/pribylovaa/commentsy/internal/query"
	"github.com/pribylovaa/commentsy/internal/storage"
)

var (
	// ErrInvalidArgument — неверные или отсутствующие входные параметры.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound — сущность отсутствует.
	ErrNotFound = errors.New("not found")
	// ErrGroupNotFound — группа по identifier не найдена (путь без автосоздания).
	ErrGroupNotFound = errors.New("group not found")
	// ErrParentNotFound — родитель ответа отсутствует или удалён.
	ErrParentNotFound = errors.New("parent not found")
	// ErrInvalidParent — родитель является ответом либо принадлежит другой группе.
	ErrInvalidParent = errors.New("invalid parent")
	// ErrOriginMismatch — origin запроса не входит в allow-list тенанта.
	ErrOriginMismatch = errors.New("origin mismatch")
	// ErrUnauthenticated — нет сессии.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden — вызывающий не владеет ресурсом.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidTransition — недопустимый переход статуса модерации.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrConflict — конфликт уникальности или параллельное изменение.
	ErrConflict = errors.New("conflict")
	// ErrInternal — внутренняя ошибка (стораж/БД/контекст/и т.д.).
	ErrInternal = errors.New("internal")
)

// Service — бизнес-логика commentsy.
type Service struct {
	storage storage.Storage
	cfg     config.Config
}

// New создает новый экземпляр Service.
func New(storage storage.Storage, cfg config.Config) *Service {
	return &Service{
		storage: storage,
		cfg:     cfg,
	}
}

// pageOptions — правила query factory для списков комментариев.
func (s *Service) pageOptions(defaultSort ...query.SortField) query.Options {
	return query.Options{
		DefaultLimit: s.cfg.Limits.Default,
		MaxLimit:     s.cfg.Limits.Max,
		Sortable:     []string{storage.FieldCreatedAt, storage.FieldRepliesCount},
		DefaultSort:  defaultSort,
	}
}

// internal логирует ошибку стораджа и возвращает обезличенный ErrInternal.
// Отмена и дедлайн контекста пробрасываются как есть, чтобы граница отдала 499/504.
func internal(lg *slog.Logger, op, msg string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		lg.Warn(msg, "err", err)
		return fmt.Errorf("%s: %w", op, err)
	}

	lg.Error(msg, "err", err)
	return fmt.Errorf("%s: %w", op, ErrInternal)
}
