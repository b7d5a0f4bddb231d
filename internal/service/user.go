package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/pribylovaa/commentsy/internal/models"
	"github.com/pribylovaa/commentsy/internal/pkg/log"
	"github.com/pribylovaa/commentsy/internal/storage"
)

// maxTextLen — предел длины текста комментария в рунах.
const maxTextLen = 10000

// CreateCommentInput — создание корня или ответа от имени пользователя сессии.
// Author берётся только из сессии, клиентский идентификатор автора не принимается.
type CreateCommentInput struct {
	// AppCode необязателен: с ним группа ищется (или создаётся) в тенанте,
	// без него — по identifier среди существующих групп.
	AppCode    string
	Identifier string
	ParentID   string
	Text       string
	Author     models.Author
}

// CreateComment — запись комментария (status=pending) с атомарным инкрементом счётчика.
//
// Ошибки:
//   - ErrUnauthenticated — нет пользователя сессии;
//   - ErrInvalidArgument — пустой текст/identifier, слишком длинный текст, неизвестный тенант;
//   - ErrGroupNotFound — без AppCode и группа не существует;
//   - ErrParentNotFound — родитель отсутствует или удалён;
//   - ErrInvalidParent — родитель является ответом или из другой группы;
//   - ErrInternal — сбой стораджа.
func (s *Service) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	const op = "service/user/CreateComment"

	in.Identifier = strings.TrimSpace(in.Identifier)
	in.ParentID = strings.TrimSpace(in.ParentID)
	in.Text = strings.TrimSpace(in.Text)

	lg := log.From(ctx).With(
		"op", op,
		"user_id", in.Author.ID.String(),
		"identifier", in.Identifier,
		"parent_id", in.ParentID,
	)

	if in.Author.ID == uuid.Nil {
		lg.Warn("unauthenticated")
		return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	if in.Identifier == "" {
		lg.Warn("invalid argument: empty identifier")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if in.Text == "" || utf8.RuneCountInString(in.Text) > maxTextLen {
		lg.Warn("invalid argument: empty or too long text")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	group, err := s.writeGroup(ctx, strings.TrimSpace(in.AppCode), in.Identifier)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if name := strings.TrimSpace(in.Author.Name); name != "" {
		if err := s.storage.UpsertAuthor(ctx, models.Author{ID: in.Author.ID, Name: name}); err != nil {
			return nil, internal(lg, op, "storage error on UpsertAuthor", err)
		}
	}

	result, err := s.storage.CreateComment(ctx, models.Comment{
		GroupID:  group.ID,
		ParentID: in.ParentID,
		AuthorID: in.Author.ID,
		Text:     in.Text,
	})
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrParentNotFound):
			lg.Warn("parent not found")
			return nil, fmt.Errorf("%s: %w", op, ErrParentNotFound)
		case errors.Is(err, storage.ErrNotTopLevel):
			lg.Warn("parent is not a top-level comment of the group")
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidParent)
		case errors.Is(err, storage.ErrNotFound):
			lg.Warn("group disappeared")
			return nil, fmt.Errorf("%s: %w", op, ErrGroupNotFound)
		default:
			return nil, internal(lg, op, "storage error on CreateComment", err)
		}
	}

	lg.Info("comment_created", "comment_id", result.ID, "group_id", group.ID)
	return result, nil
}

// writeGroup — разрешение группы на пути записи. Origin здесь не проверяется:
// путь доверяет сессии, а не странице.
func (s *Service) writeGroup(ctx context.Context, appCode, identifier string) (*models.Group, error) {
	if appCode == "" {
		return s.ResolveGroupByIdentifier(ctx, identifier)
	}

	app, err := s.ResolveApp(ctx, appCode)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown app", ErrInvalidArgument)
		}

		return nil, err
	}

	return s.ResolveOrCreateGroup(ctx, app, identifier)
}

// RemoveComment мягко удаляет собственный комментарий пользователя.
// Повторное удаление — no-op: счётчики уменьшаются ровно один раз.
// Ошибки: ErrUnauthenticated, ErrInvalidArgument, ErrNotFound, ErrForbidden, ErrInternal.
func (s *Service) RemoveComment(ctx context.Context, commentID string, callerID uuid.UUID) error {
	const op = "service/user/RemoveComment"

	lg := log.From(ctx).With("op", op, "comment_id", commentID, "user_id", callerID.String())

	if callerID == uuid.Nil {
		lg.Warn("unauthenticated")
		return fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	c, err := s.CommentByID(ctx, commentID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if c.AuthorID != callerID {
		lg.Warn("forbidden: not an author")
		return fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	if c.IsRemoved {
		return nil
	}

	if _, err := s.storage.RemoveComment(ctx, c.ID); err != nil {
		switch {
		case errors.Is(err, storage.ErrAlreadyRemoved):
			return nil
		case errors.Is(err, storage.ErrNotFound):
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		default:
			return internal(lg, op, "storage error on RemoveComment", err)
		}
	}

	lg.Info("comment_removed")
	return nil
}
