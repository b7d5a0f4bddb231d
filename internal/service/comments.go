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
	"github.com/pribylovaa/commentsy/internal/query"
	"github.com/pribylovaa/commentsy/internal/storage"
)

// ModerateInput — смена статуса модерации оператором (владельцем группы).
type ModerateInput struct {
	CommentID  string
	OperatorID uuid.UUID
	Status     string
}

// ListTopLevel — корни группы: базовый фильтр {group, parent: nil, isRemoved: false},
// по умолчанию новые сверху. Клиентские параметры — только limit/page/sort.
func (s *Service) ListTopLevel(ctx context.Context, groupID string, values url.Values) (*query.Result[models.CommentView], error) {
	const op = "service/comments/ListTopLevel"

	lg := log.From(ctx).With("op", op, "group_id", groupID)

	if strings.TrimSpace(groupID) == "" {
		lg.Warn("invalid argument: empty group_id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	p, err := query.FromValues(values, s.pageOptions(query.SortField{Field: storage.FieldCreatedAt, Desc: true}))
	if err != nil {
		lg.Warn("invalid argument: bad page params", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	res, err := s.storage.FindComments(ctx, query.Filter{
		storage.FieldGroup:     groupID,
		storage.FieldParent:    nil,
		storage.FieldIsRemoved: false,
	}, p)
	if err != nil {
		return nil, internal(lg, op, "storage error on FindComments", err)
	}

	return res, nil
}

// ListReplies — ответы на корень: базовый фильтр {parent, isRemoved: false}, по умолчанию старые сверху.
func (s *Service) ListReplies(ctx context.Context, parentID string, values url.Values) (*query.Result[models.CommentView], error) {
	const op = "service/comments/ListReplies"

	parentID = strings.TrimSpace(parentID)
	lg := log.From(ctx).With("op", op, "parent_id", parentID)

	if parentID == "" {
		lg.Warn("invalid argument: empty parent_id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	p, err := query.FromValues(values, s.pageOptions(query.SortField{Field: storage.FieldCreatedAt}))
	if err != nil {
		lg.Warn("invalid argument: bad page params", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	res, err := s.storage.FindComments(ctx, query.Filter{
		storage.FieldParent:    parentID,
		storage.FieldIsRemoved: false,
	}, p)
	if err != nil {
		return nil, internal(lg, op, "storage error on FindComments", err)
	}

	return res, nil
}

// CommentByID возвращает комментарий, включая мягко удалённые.
func (s *Service) CommentByID(ctx context.Context, id string) (*models.Comment, error) {
	const op = "service/comments/CommentByID"

	id = strings.TrimSpace(id)
	lg := log.From(ctx).With("op", op, "comment_id", id)

	if id == "" {
		lg.Warn("invalid argument: empty comment_id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	c, err := s.storage.CommentByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("comment not found")
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, internal(lg, op, "storage error on CommentByID", err)
	}

	return c, nil
}

// ModerateComment применяет переход статуса. Оператор должен владеть группой комментария.
// Запись условная (status == текущий), поэтому параллельная модерация даёт ErrConflict, а не потерю обновления.
// Ошибки: ErrUnauthenticated, ErrInvalidArgument, ErrNotFound, ErrForbidden, ErrInvalidTransition, ErrConflict, ErrInternal.
func (s *Service) ModerateComment(ctx context.Context, in ModerateInput) (*models.Comment, error) {
	const op = "service/comments/ModerateComment"

	lg := log.From(ctx).With("op", op, "comment_id", in.CommentID, "operator_id", in.OperatorID.String(), "status", in.Status)

	if in.OperatorID == uuid.Nil {
		lg.Warn("unauthenticated")
		return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	to, ok := models.ParseStatus(strings.TrimSpace(in.Status))
	if !ok {
		lg.Warn("invalid argument: unknown status")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	c, err := s.CommentByID(ctx, in.CommentID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	group, err := s.storage.GroupByID(ctx, c.GroupID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, internal(lg, op, "storage error on GroupByID", err)
	}

	if group.OwnerID != in.OperatorID {
		lg.Warn("forbidden: not a group owner")
		return nil, fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	changed, err := models.Transition(c.Status, to)
	if err != nil {
		lg.Warn("invalid transition", "from", string(c.Status))
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidTransition)
	}

	if !changed {
		return c, nil
	}

	updated, err := s.storage.UpdateCommentStatus(ctx, c.ID, c.Status, to)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrStatusConflict):
			lg.Warn("status changed concurrently")
			return nil, fmt.Errorf("%s: %w", op, ErrConflict)
		case errors.Is(err, storage.ErrNotFound):
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		default:
			return nil, internal(lg, op, "storage error on UpdateCommentStatus", err)
		}
	}

	lg.Info("comment_moderated", "from", string(c.Status))
	return updated, nil
}
