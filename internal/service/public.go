package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/pribylovaa/commentsy/internal/models"
	"github.com/pribylovaa/commentsy/internal/pkg/log"
	"github.com/pribylovaa/commentsy/internal/pkg/redact"
	"github.com/pribylovaa/commentsy/internal/query"
)

// ThreadViewInput — публичное чтение треда виджетом.
type ThreadViewInput struct {
	AppCode    string
	Identifier string
	// Referer — URL страницы, встроившей виджет (заголовок Referer).
	Referer string
	// Params — сырые клиентские параметры; используются только limit/page/sort.
	Params url.Values
}

// ThreadView — чтение треда для виджета: тенант, проверка origin, группа (с автосозданием), корни.
//
// Порядок намеренный: origin проверяется до автосоздания группы, поэтому чужой origin не может
// плодить группы. Для разрешённого origin результат от порядка не зависит.
// Ошибки:
//   - ErrInvalidArgument — нет кода/identifier или тенант не найден (ошибка ввода, а не сбой);
//   - ErrOriginMismatch — referer отсутствует, битый или не входит в allow-list;
//   - ErrInternal — сбой стораджа.
func (s *Service) ThreadView(ctx context.Context, in ThreadViewInput) (*models.ThreadView, error) {
	const op = "service/public/ThreadView"

	in.AppCode = strings.TrimSpace(in.AppCode)
	in.Identifier = strings.TrimSpace(in.Identifier)

	lg := log.From(ctx).With(
		"op", op,
		"app_code", redact.Code(in.AppCode),
		"identifier", in.Identifier,
		"referer", redact.URL(in.Referer),
	)

	if in.AppCode == "" || in.Identifier == "" {
		lg.Warn("invalid argument: missing app code or identifier")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	app, err := s.ResolveApp(ctx, in.AppCode)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			lg.Warn("invalid argument: unknown app")
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !AuthorizeOrigin(app, in.Referer) {
		lg.Warn("origin mismatch")
		return nil, fmt.Errorf("%s: %w", op, ErrOriginMismatch)
	}

	group, err := s.ResolveOrCreateGroup(ctx, app, in.Identifier)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	page, err := s.ListTopLevel(ctx, group.ID, in.Params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.ThreadView{
		Identifier:    group.Identifier,
		LikesCount:    group.LikesCount,
		CommentsCount: group.CommentsCount,
		Comments:      page.Items,
		Total:         page.Total,
		Size:          page.Size,
	}, nil
}

// GroupComments — корни группы по identifier без проверки origin и без автосоздания.
// Ошибки: ErrInvalidArgument, ErrGroupNotFound, ErrInternal.
func (s *Service) GroupComments(ctx context.Context, identifier string, values url.Values) (*query.Result[models.CommentView], error) {
	const op = "service/public/GroupComments"

	group, err := s.ResolveGroupByIdentifier(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	page, err := s.ListTopLevel(ctx, group.ID, values)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return page, nil
}
