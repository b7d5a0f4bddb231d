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

// commentColumns — единый порядок колонок comments для SELECT/RETURNING.
const commentColumns = `id, group_id, parent_id, author_id, text, status, replies_count, is_removed, created_at, updated_at`

func scanComment(row pgx.Row) (*models.Comment, error) {
	var (
		c           models.Comment
		id, groupID uuid.UUID
		parentID    *uuid.UUID
		status      string
	)

	if err := row.Scan(
		&id,
		&groupID,
		&parentID,
		&c.AuthorID,
		&c.Text,
		&status,
		&c.RepliesCount,
		&c.IsRemoved,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}

	c.ID = id.String()
	c.GroupID = groupID.String()
	c.Status = models.Status(status)
	if parentID != nil {
		c.ParentID = parentID.String()
	}

	return &c, nil
}

// CreateComment создаёт корень или ответ и в той же транзакции увеличивает счётчик.
// Строка родителя блокируется (FOR UPDATE), чтобы удаление не прошло между проверкой и инкрементом.
func (s *Storage) CreateComment(ctx context.Context, comm models.Comment) (*models.Comment, error) {
	const op = "storage/postgres/comments/CreateComment"

	groupID, err := uuid.Parse(comm.GroupID)
	if err != nil {
		return nil, fmt.Errorf("%s: group: %w", op, storage.ErrNotFound)
	}

	var parentID *uuid.UUID
	if comm.ParentID != "" {
		pid, err := uuid.Parse(comm.ParentID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrParentNotFound)
		}
		parentID = &pid
	}

	var result *models.Comment
	err = pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		if parentID != nil {
			var (
				pGroup   uuid.UUID
				pParent  *uuid.UUID
				pRemoved bool
			)

			err := tx.QueryRow(ctx,
				`SELECT group_id, parent_id, is_removed FROM comments WHERE id = $1 FOR UPDATE`,
				*parentID,
			).Scan(&pGroup, &pParent, &pRemoved)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return storage.ErrParentNotFound
				}
				return fmt.Errorf("lock parent: %w", err)
			}

			if pRemoved {
				return storage.ErrParentNotFound
			}

			if pParent != nil || pGroup != groupID {
				return storage.ErrNotTopLevel
			}

			if _, err := tx.Exec(ctx,
				`UPDATE comments SET replies_count = replies_count + 1, updated_at = now() WHERE id = $1`,
				*parentID,
			); err != nil {
				return fmt.Errorf("inc replies: %w", err)
			}
		} else {
			tag, err := tx.Exec(ctx,
				`UPDATE comment_groups SET comments_count = comments_count + 1 WHERE id = $1`,
				groupID,
			)
			if err != nil {
				return fmt.Errorf("inc comments: %w", err)
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("group: %w", storage.ErrNotFound)
			}
		}

		q := `
		INSERT INTO comments (group_id, parent_id, author_id, text, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + commentColumns

		c, err := scanComment(tx.QueryRow(ctx, q, groupID, parentID, comm.AuthorID, comm.Text, string(models.StatusPending)))
		if err != nil {
			return fmt.Errorf("insert: %w", err)
		}

		result = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// CommentByID возвращает комментарий (в том числе мягко удалённый).
func (s *Storage) CommentByID(ctx context.Context, id string) (*models.Comment, error) {
	const op = "storage/postgres/comments/CommentByID"

	cid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	result, err := scanComment(s.db.QueryRow(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, cid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// RemoveComment мягко удаляет комментарий и уменьшает счётчик в одной транзакции.
func (s *Storage) RemoveComment(ctx context.Context, id string) (*models.Comment, error) {
	const op = "storage/postgres/comments/RemoveComment"

	cid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	var result *models.Comment
	err = pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		c, err := removeInTx(ctx, tx, cid)
		result = c
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// UpdateCommentStatus — условное обновление статуса; переход в deleted также мягко удаляет.
func (s *Storage) UpdateCommentStatus(ctx context.Context, id string, from, to models.Status) (*models.Comment, error) {
	const op = "storage/postgres/comments/UpdateCommentStatus"

	cid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	var result *models.Comment
	err = pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		q := `
		UPDATE comments SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2
		RETURNING ` + commentColumns

		c, err := scanComment(tx.QueryRow(ctx, q, cid, string(from), string(to)))
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("update status: %w", err)
			}

			if exists, err := commentExists(ctx, tx, cid); err != nil {
				return err
			} else if !exists {
				return storage.ErrNotFound
			}
			return storage.ErrStatusConflict
		}

		if to == models.StatusDeleted && !c.IsRemoved {
			c, err = removeInTx(ctx, tx, cid)
			if err != nil {
				return err
			}
		}

		result = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// removeInTx выставляет is_removed только у неудалённой строки и уменьшает счётчик
// группы (для корня) или родителя (для ответа).
func removeInTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Comment, error) {
	q := `
	UPDATE comments SET is_removed = TRUE, updated_at = now()
	WHERE id = $1 AND NOT is_removed
	RETURNING ` + commentColumns

	c, err := scanComment(tx.QueryRow(ctx, q, id))
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("mark removed: %w", err)
		}

		exists, err := commentExists(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, storage.ErrNotFound
		}
		return nil, storage.ErrAlreadyRemoved
	}

	if c.IsTopLevel() {
		_, err = tx.Exec(ctx, `UPDATE comment_groups SET comments_count = comments_count - 1 WHERE id = $1`, uuid.MustParse(c.GroupID))
	} else {
		_, err = tx.Exec(ctx, `UPDATE comments SET replies_count = replies_count - 1 WHERE id = $1`, uuid.MustParse(c.ParentID))
	}
	if err != nil {
		return nil, fmt.Errorf("dec counter: %w", err)
	}

	return c, nil
}

func commentExists(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error) {
	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM comments WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists: %w", err)
	}

	return exists, nil
}

// FindComments — выборка через query factory; имя автора подтягивается LEFT JOIN.
func (s *Storage) FindComments(ctx context.Context, filter query.Filter, p query.Params) (*query.Result[models.CommentView], error) {
	const op = "storage/postgres/comments/FindComments"

	cond, args, err := where(filter, commentFields)
	if err != nil {
		if errors.Is(err, errBadID) {
			return &query.Result[models.CommentView]{Items: []models.CommentView{}, Size: p.Limit}, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	order, err := orderBy(p.Sort, commentFields, "c.id")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var total int64
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM comments c`+cond, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("%s: count: %w", op, err)
	}

	q := `
	SELECT c.id, c.replies_count, c.text, c.created_at, COALESCE(a.name, '')
	FROM comments c
	LEFT JOIN authors a ON a.id = c.author_id` + cond + order +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)

	rows, err := s.db.Query(ctx, q, append(args, p.Limit, p.Offset())...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	items := make([]models.CommentView, 0, p.Limit)
	for rows.Next() {
		var (
			v  models.CommentView
			id uuid.UUID
		)
		if err := rows.Scan(&id, &v.RepliesCount, &v.Text, &v.CreatedAt, &v.Author.Name); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		v.ID = id.String()
		items = append(items, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &query.Result[models.CommentView]{Items: items, Total: total, Size: p.Limit}, nil
}
