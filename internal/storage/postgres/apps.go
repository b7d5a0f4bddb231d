package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pribylovaa/commentsy/internal/models"
	"github.com/pribylovaa/commentsy/internal/query"
	"github.com/pribylovaa/commentsy/internal/storage"
)

// appColumns — единый порядок колонок apps для SELECT/RETURNING.
const appColumns = `id, code, name, owner_id, authorized_origins, created_at, updated_at`

func scanApp(row pgx.Row) (*models.App, error) {
	var (
		app models.App
		id  uuid.UUID
	)

	if err := row.Scan(
		&id,
		&app.Code,
		&app.Name,
		&app.OwnerID,
		&app.AuthorizedOrigins,
		&app.CreatedAt,
		&app.UpdatedAt,
	); err != nil {
		return nil, err
	}

	app.ID = id.String()
	if app.AuthorizedOrigins == nil {
		app.AuthorizedOrigins = []string{}
	}

	return &app, nil
}

// CreateApp вставляет тенанта; конфликт по code — storage.ErrAlreadyExists.
func (s *Storage) CreateApp(ctx context.Context, app models.App) (*models.App, error) {
	const op = "storage/postgres/apps/CreateApp"

	origins := app.AuthorizedOrigins
	if origins == nil {
		origins = []string{}
	}

	q := `
	INSERT INTO apps (code, name, owner_id, authorized_origins)
	VALUES ($1, $2, $3, $4)
	RETURNING ` + appColumns

	result, err := scanApp(s.db.QueryRow(ctx, q, app.Code, app.Name, app.OwnerID, origins))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// AppByCode возвращает тенанта по коду.
func (s *Storage) AppByCode(ctx context.Context, code string) (*models.App, error) {
	const op = "storage/postgres/apps/AppByCode"

	q := `SELECT ` + appColumns + ` FROM apps WHERE code = $1`

	result, err := scanApp(s.db.QueryRow(ctx, q, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// UpdateAppOrigins заменяет список разрешённых origin.
func (s *Storage) UpdateAppOrigins(ctx context.Context, code string, origins []string) (*models.App, error) {
	const op = "storage/postgres/apps/UpdateAppOrigins"

	if origins == nil {
		origins = []string{}
	}

	q := `
	UPDATE apps SET authorized_origins = $2, updated_at = now()
	WHERE code = $1
	RETURNING ` + appColumns

	result, err := scanApp(s.db.QueryRow(ctx, q, code, origins))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// FindApps — выборка тенантов через query factory.
func (s *Storage) FindApps(ctx context.Context, filter query.Filter, p query.Params) (*query.Result[models.App], error) {
	const op = "storage/postgres/apps/FindApps"

	cond, args, err := where(filter, appFields)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	order, err := orderBy(p.Sort, appFields, "id")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var total int64
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM apps`+cond, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("%s: count: %w", op, err)
	}

	q := `SELECT ` + appColumns + ` FROM apps` + cond + order +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)

	rows, err := s.db.Query(ctx, q, append(args, p.Limit, p.Offset())...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	items := make([]models.App, 0, p.Limit)
	for rows.Next() {
		app, err := scanApp(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		items = append(items, *app)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &query.Result[models.App]{Items: items, Total: total, Size: p.Limit}, nil
}
