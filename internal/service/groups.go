package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pribylovaa/commentsy/internal/models"
	"github.com/pribylovaa/commentsy/internal/pkg/log"
	"github.com/pribylovaa/commentsy/internal/storage"
)

// ResolveOrCreateGroup находит группу тенанта по identifier или создаёт её с нулевыми счётчиками
// и владельцем тенанта. Гонка первого обращения решается уникальностью (app, identifier):
// проигравшая вставка перечитывает существующую группу.
func (s *Service) ResolveOrCreateGroup(ctx context.Context, app *models.App, identifier string) (*models.Group, error) {
	const op = "service/groups/ResolveOrCreateGroup"

	identifier = strings.TrimSpace(identifier)
	lg := log.From(ctx).With("op", op, "identifier", identifier)

	if app == nil || app.ID == "" || identifier == "" {
		lg.Warn("invalid argument: empty app or identifier")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	group, err := s.storage.GroupByApp(ctx, app.ID, identifier)
	if err == nil {
		return group, nil
	}

	if !errors.Is(err, storage.ErrNotFound) {
		return nil, internal(lg, op, "storage error on GroupByApp", err)
	}

	group, err = s.storage.InsertGroup(ctx, models.Group{
		AppID:      app.ID,
		Identifier: identifier,
		OwnerID:    app.OwnerID,
	})
	if err == nil {
		lg.Info("group_created", "group_id", group.ID)
		return group, nil
	}

	if !errors.Is(err, storage.ErrAlreadyExists) {
		return nil, internal(lg, op, "storage error on InsertGroup", err)
	}

	// Параллельный запрос успел создать группу — берём её.
	group, err = s.storage.GroupByApp(ctx, app.ID, identifier)
	if err != nil {
		return nil, internal(lg, op, "storage error on GroupByApp after conflict", err)
	}

	return group, nil
}

// ResolveGroupByIdentifier — поиск группы без учёта тенанта и без автосоздания.
// Ошибки: ErrInvalidArgument, ErrGroupNotFound, ErrInternal.
func (s *Service) ResolveGroupByIdentifier(ctx context.Context, identifier string) (*models.Group, error) {
	const op = "service/groups/ResolveGroupByIdentifier"

	identifier = strings.TrimSpace(identifier)
	lg := log.From(ctx).With("op", op, "identifier", identifier)

	if identifier == "" {
		lg.Warn("invalid argument: empty identifier")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	group, err := s.storage.GroupByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("group not found")
			return nil, fmt.Errorf("%s: %w", op, ErrGroupNotFound)
		}

		return nil, internal(lg, op, "storage error on GroupByIdentifier", err)
	}

	return group, nil
}
