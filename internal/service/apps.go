package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/pribylovaa/commentsy/internal/models"
	"github.com/pribylovaa/commentsy/internal/pkg/log"
	"github.com/pribylovaa/commentsy/internal/pkg/redact"
	"github.com/pribylovaa/commentsy/internal/query"
	"github.com/pribylovaa/commentsy/internal/storage"
)

// maxCodeAttempts — число попыток сгенерировать неиспользованный код тенанта.
const maxCodeAttempts = 3

// RegisterAppInput — регистрация тенанта владельцем.
type RegisterAppInput struct {
	OwnerID uuid.UUID
	Name    string
	Origins []string
}

// NormalizeOrigin приводит URL к виду scheme://host[:port]:
// схема и хост в нижнем регистре, порт по умолчанию (80 для http, 443 для https) отбрасывается.
// Путь, query и fragment игнорируются. Без схемы или хоста — ошибка.
func NormalizeOrigin(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty origin")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	if scheme == "" || host == "" {
		return "", fmt.Errorf("origin %q: scheme and host are required", raw)
	}

	port := u.Port()
	if (scheme == "http" && port == "80") || (scheme == "https" && port == "443") {
		port = ""
	}

	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}

	if port != "" {
		host += ":" + port
	}

	return scheme + "://" + host, nil
}

// AuthorizeOrigin проверяет, что scheme+host referer входит в allow-list тенанта.
// Пустой или битый referer — отказ.
func AuthorizeOrigin(app *models.App, referer string) bool {
	if app == nil {
		return false
	}

	origin, err := NormalizeOrigin(referer)
	if err != nil {
		return false
	}

	for _, allowed := range app.AuthorizedOrigins {
		norm, err := NormalizeOrigin(allowed)
		if err != nil {
			continue
		}

		if norm == origin {
			return true
		}
	}

	return false
}

// normalizeOrigins нормализует список и убирает дубликаты с сохранением порядка.
func normalizeOrigins(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))

	for _, raw := range in {
		o, err := NormalizeOrigin(raw)
		if err != nil {
			return nil, err
		}

		if _, dup := seen[o]; dup {
			continue
		}
		seen[o] = struct{}{}
		out = append(out, o)
	}

	return out, nil
}

// ResolveApp — чистый поиск тенанта по коду.
// Ошибки: ErrInvalidArgument (пустой код), ErrNotFound, ErrInternal.
func (s *Service) ResolveApp(ctx context.Context, code string) (*models.App, error) {
	const op = "service/apps/ResolveApp"

	code = strings.TrimSpace(code)
	lg := log.From(ctx).With("op", op, "app_code", code)

	if code == "" {
		lg.Warn("invalid argument: empty app code")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	app, err := s.storage.AppByCode(ctx, code)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Debug("app not found")
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, internal(lg, op, "storage error on AppByCode", err)
	}

	return app, nil
}

// RegisterApp регистрирует тенанта с непрозрачным кодом (uuid).
// Ошибки: ErrUnauthenticated, ErrInvalidArgument (пустое имя, битый origin), ErrConflict, ErrInternal.
func (s *Service) RegisterApp(ctx context.Context, in RegisterAppInput) (*models.App, error) {
	const op = "service/apps/RegisterApp"

	lg := log.From(ctx).With("op", op, "owner_id", in.OwnerID.String())

	if in.OwnerID == uuid.Nil {
		lg.Warn("unauthenticated")
		return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		lg.Warn("invalid argument: empty name")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	origins, err := normalizeOrigins(in.Origins)
	if err != nil {
		lg.Warn("invalid argument: bad origin", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		app, err := s.storage.CreateApp(ctx, models.App{
			Code:              uuid.NewString(),
			Name:              in.Name,
			OwnerID:           in.OwnerID,
			AuthorizedOrigins: origins,
		})
		if err == nil {
			lg.Info("app_registered", "app_code", redact.Code(app.Code))
			return app, nil
		}

		if errors.Is(err, storage.ErrAlreadyExists) {
			// Редкая коллизия кода — пробуем заново.
			continue
		}

		return nil, internal(lg, op, "storage error on CreateApp", err)
	}

	lg.Error("app_code_collision_exceeded")
	return nil, fmt.Errorf("%s: %w", op, ErrConflict)
}

// UpdateOrigins заменяет allow-list тенанта; доступно только владельцу.
// Ошибки: ErrUnauthenticated, ErrInvalidArgument, ErrNotFound, ErrForbidden, ErrInternal.
func (s *Service) UpdateOrigins(ctx context.Context, code string, ownerID uuid.UUID, origins []string) (*models.App, error) {
	const op = "service/apps/UpdateOrigins"

	lg := log.From(ctx).With("op", op, "owner_id", ownerID.String(), "app_code", redact.Code(code))

	if ownerID == uuid.Nil {
		lg.Warn("unauthenticated")
		return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	norm, err := normalizeOrigins(origins)
	if err != nil {
		lg.Warn("invalid argument: bad origin", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	app, err := s.ResolveApp(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if app.OwnerID != ownerID {
		lg.Warn("forbidden: not an owner")
		return nil, fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	updated, err := s.storage.UpdateAppOrigins(ctx, app.Code, norm)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, internal(lg, op, "storage error on UpdateAppOrigins", err)
	}

	lg.Info("app_origins_updated", "origins", len(norm))
	return updated, nil
}

// ListApps — постраничный список тенантов владельца (сортировка: createdAt, name).
func (s *Service) ListApps(ctx context.Context, ownerID uuid.UUID, values url.Values) (*query.Result[models.App], error) {
	const op = "service/apps/ListApps"

	lg := log.From(ctx).With("op", op, "owner_id", ownerID.String())

	if ownerID == uuid.Nil {
		lg.Warn("unauthenticated")
		return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	p, err := query.FromValues(values, query.Options{
		DefaultLimit: s.cfg.Limits.Default,
		MaxLimit:     s.cfg.Limits.Max,
		Sortable:     []string{storage.FieldCreatedAt, storage.FieldName},
		DefaultSort:  []query.SortField{{Field: storage.FieldCreatedAt, Desc: true}},
	})
	if err != nil {
		lg.Warn("invalid argument: bad page params", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	res, err := s.storage.FindApps(ctx, query.Filter{storage.FieldOwner: ownerID}, p)
	if err != nil {
		return nil, internal(lg, op, "storage error on FindApps", err)
	}

	return res, nil
}
