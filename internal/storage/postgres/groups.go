package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pribylovaa/commentsy/internal/models"
	"github.com/pribylovaa/commentsy/internal/storage"
)

const groupColumns = `id, app_id, identifier, owner_id, likes_count, comments_count, created_at`

func scanGroup(row pgx.Row) (*models.Group, error) {
	var (
		g         models.Group
		id, appID uuid.UUID
	)

	if err := row.Scan(&id, &appID, &g.Identifier, &g.OwnerID, &g.LikesCount, &g.CommentsCount, &g.CreatedAt); err != nil {
		return nil, err
	}

	g.ID = id.String()
	g.AppID = appID.String()

	return &g, nil
}

// InsertGroup вставляет группу; UNIQUE (app_id, identifier) отсекает гонку создания.
func (s *Storage) InsertGroup(ctx context.Context, group models.Group) (*models.Group, error) {
	const op = "storage/postgres/groups/InsertGroup"

	appID, err := uuid.Parse(group.AppID)
	if err != nil {
		return nil, fmt.Errorf("%s: app: %w", op, storage.ErrNotFound)
	}

	q := `
	INSERT INTO comment_groups (app_id, identifier, owner_id)
	VALUES ($1, $2, $3)
	RETURNING ` + groupColumns

	result, err := scanGroup(s.db.QueryRow(ctx, q, appID, group.Identifier, group.OwnerID))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// GroupByApp ищет группу по паре (app, identifier).
func (s *Storage) GroupByApp(ctx context.Context, appID, identifier string) (*models.Group, error) {
	const op = "storage/postgres/groups/GroupByApp"

	id, err := uuid.Parse(appID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	q := `SELECT ` + groupColumns + ` FROM comment_groups WHERE app_id = $1 AND identifier = $2`

	return s.groupRow(ctx, op, q, id, identifier)
}

// GroupByIdentifier ищет самую раннюю группу с данным identifier.
func (s *Storage) GroupByIdentifier(ctx context.Context, identifier string) (*models.Group, error) {
	const op = "storage/postgres/groups/GroupByIdentifier"

	q := `SELECT ` + groupColumns + ` FROM comment_groups WHERE identifier = $1 ORDER BY created_at, id LIMIT 1`

	return s.groupRow(ctx, op, q, identifier)
}

// GroupByID возвращает группу по идентификатору.
func (s *Storage) GroupByID(ctx context.Context, id string) (*models.Group, error) {
	const op = "storage/postgres/groups/GroupByID"

	gid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	q := `SELECT ` + groupColumns + ` FROM comment_groups WHERE id = $1`

	return s.groupRow(ctx, op, q, gid)
}

func (s *Storage) groupRow(ctx context.Context, op, q string, args ...any) (*models.Group, error) {
	result, err := scanGroup(s.db.QueryRow(ctx, q, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}
