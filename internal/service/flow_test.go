package service

// Сценарные тесты сервиса поверх memory-хранилища: счётчики, гонка автосоздания групп,
// публичный поток виджета и модерация.

import (
	"context"
	"net/url"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/commentsy/internal/config"
	"github.com/pribylovaa/commentsy/internal/models"
	"github.com/pribylovaa/commentsy/internal/storage/memory"
)

type fixture struct {
	svc   *Service
	owner uuid.UUID
	app   *models.App
}

// newFixture — сервис на memory-хранилище с одним тенантом (https://x.com).
func newFixture(t *testing.T) *fixture {
	t.Helper()

	svc := New(memory.New(), config.Config{Limits: config.LimitsConfig{Default: 20, Max: 100}})
	owner := uuid.New()

	app, err := svc.RegisterApp(context.Background(), RegisterAppInput{
		OwnerID: owner,
		Name:    "blog",
		Origins: []string{"https://x.com"},
	})
	require.NoError(t, err)

	return &fixture{svc: svc, owner: owner, app: app}
}

func (f *fixture) comment(t *testing.T, author models.Author, identifier, parentID, text string) *models.Comment {
	t.Helper()

	c, err := f.svc.CreateComment(context.Background(), CreateCommentInput{
		AppCode:    f.app.Code,
		Identifier: identifier,
		ParentID:   parentID,
		Text:       text,
		Author:     author,
	})
	require.NoError(t, err)
	return c
}

func (f *fixture) group(t *testing.T, identifier string) *models.Group {
	t.Helper()

	g, err := f.svc.ResolveOrCreateGroup(context.Background(), f.app, identifier)
	require.NoError(t, err)
	return g
}

func TestFlow_WidgetThread(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ann := models.Author{ID: uuid.New(), Name: "Ann"}

	// Первое открытие страницы создаёт пустую группу.
	tv, err := f.svc.ThreadView(ctx, ThreadViewInput{
		AppCode:    f.app.Code,
		Identifier: "post-1",
		Referer:    "https://x.com/blog/post-1",
	})
	require.NoError(t, err)
	require.Equal(t, "post-1", tv.Identifier)
	require.Zero(t, tv.CommentsCount)
	require.Empty(t, tv.Comments)
	require.EqualValues(t, 20, tv.Size)

	root := f.comment(t, ann, "post-1", "", "hello")
	require.Equal(t, models.StatusPending, root.Status)

	tv, err = f.svc.ThreadView(ctx, ThreadViewInput{
		AppCode:    f.app.Code,
		Identifier: "post-1",
		Referer:    "https://x.com/blog/post-1",
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, tv.CommentsCount)
	require.EqualValues(t, 1, tv.Total)
	require.Len(t, tv.Comments, 1)
	require.Equal(t, "hello", tv.Comments[0].Text)
	require.Equal(t, "Ann", tv.Comments[0].Author.Name)

	_, err = f.svc.ThreadView(ctx, ThreadViewInput{
		AppCode:    f.app.Code,
		Identifier: "post-1",
		Referer:    "https://evil.com/blog/post-1",
	})
	require.ErrorIs(t, err, ErrOriginMismatch)

	// Запрос с чужого origin не создаёт группу.
	_, err = f.svc.ThreadView(ctx, ThreadViewInput{
		AppCode:    f.app.Code,
		Identifier: "post-evil",
		Referer:    "https://evil.com/",
	})
	require.ErrorIs(t, err, ErrOriginMismatch)
	_, err = f.svc.ResolveGroupByIdentifier(ctx, "post-evil")
	require.ErrorIs(t, err, ErrGroupNotFound)
}

func TestFlow_Counters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ann := models.Author{ID: uuid.New(), Name: "Ann"}
	bob := models.Author{ID: uuid.New(), Name: "Bob"}

	r1 := f.comment(t, ann, "post-1", "", "root 1")
	r2 := f.comment(t, bob, "post-1", "", "root 2")
	a := f.comment(t, bob, "post-1", r1.ID, "reply a")
	b := f.comment(t, ann, "post-1", r1.ID, "reply b")

	require.EqualValues(t, 2, f.group(t, "post-1").CommentsCount)

	parent, err := f.svc.CommentByID(ctx, r1.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, parent.RepliesCount)

	// Ответы не увеличивают счётчик группы.
	require.NoError(t, f.svc.RemoveComment(ctx, a.ID, bob.ID))
	parent, err = f.svc.CommentByID(ctx, r1.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, parent.RepliesCount)
	require.EqualValues(t, 2, f.group(t, "post-1").CommentsCount)

	// Повторное удаление ничего не меняет.
	require.NoError(t, f.svc.RemoveComment(ctx, a.ID, bob.ID))
	parent, err = f.svc.CommentByID(ctx, r1.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, parent.RepliesCount)

	require.NoError(t, f.svc.RemoveComment(ctx, r2.ID, bob.ID))
	require.EqualValues(t, 1, f.group(t, "post-1").CommentsCount)

	replies, err := f.svc.ListReplies(ctx, r1.ID, nil)
	require.NoError(t, err)
	require.EqualValues(t, 1, replies.Total)
	require.Equal(t, b.ID, replies.Items[0].ID)

	roots, err := f.svc.GroupComments(ctx, "post-1", url.Values{"sort": {"-repliesCount"}})
	require.NoError(t, err)
	require.EqualValues(t, 1, roots.Total)
	require.Equal(t, r1.ID, roots.Items[0].ID)
	require.EqualValues(t, 1, roots.Items[0].RepliesCount)
}

func TestFlow_ReplyRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ann := models.Author{ID: uuid.New(), Name: "Ann"}

	root := f.comment(t, ann, "post-1", "", "root")
	reply := f.comment(t, ann, "post-1", root.ID, "reply")
	other := f.comment(t, ann, "post-2", "", "other root")

	_, err := f.svc.CreateComment(ctx, CreateCommentInput{
		AppCode: f.app.Code, Identifier: "post-1", ParentID: reply.ID, Text: "deep", Author: ann,
	})
	require.ErrorIs(t, err, ErrInvalidParent)

	_, err = f.svc.CreateComment(ctx, CreateCommentInput{
		AppCode: f.app.Code, Identifier: "post-1", ParentID: other.ID, Text: "cross", Author: ann,
	})
	require.ErrorIs(t, err, ErrInvalidParent)

	_, err = f.svc.CreateComment(ctx, CreateCommentInput{
		AppCode: f.app.Code, Identifier: "post-1", ParentID: uuid.NewString(), Text: "orphan", Author: ann,
	})
	require.ErrorIs(t, err, ErrParentNotFound)

	require.NoError(t, f.svc.RemoveComment(ctx, root.ID, ann.ID))
	_, err = f.svc.CreateComment(ctx, CreateCommentInput{
		AppCode: f.app.Code, Identifier: "post-1", ParentID: root.ID, Text: "late", Author: ann,
	})
	require.ErrorIs(t, err, ErrParentNotFound)

	// Без кода тенанта группа должна существовать.
	_, err = f.svc.CreateComment(ctx, CreateCommentInput{Identifier: "post-404", Text: "x", Author: ann})
	require.ErrorIs(t, err, ErrGroupNotFound)

	c, err := f.svc.CreateComment(ctx, CreateCommentInput{Identifier: "post-2", Text: "by identifier", Author: ann})
	require.NoError(t, err)
	require.NotEmpty(t, c.ID)
}

// Страница, при которой смещение переполняет int64, — ошибка ввода, а не паника хранилища.
func TestFlow_HugePage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ann := models.Author{ID: uuid.New(), Name: "Ann"}

	root := f.comment(t, ann, "post-1", "", "first")
	g := f.group(t, "post-1")

	huge := url.Values{"page": {"9223372036854775807"}}

	_, err := f.svc.ThreadView(ctx, ThreadViewInput{
		AppCode:    f.app.Code,
		Identifier: "post-1",
		Referer:    "https://x.com/blog/post-1",
		Params:     huge,
	})
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = f.svc.ListTopLevel(ctx, g.ID, huge)
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = f.svc.ListReplies(ctx, root.ID, huge)
	require.ErrorIs(t, err, ErrInvalidArgument)

	// Большая, но представимая страница просто пуста.
	page, err := f.svc.ListTopLevel(ctx, g.ID, url.Values{"page": {"1000000"}})
	require.NoError(t, err)
	require.Empty(t, page.Items)
	require.EqualValues(t, 1, page.Total)
}

func TestFlow_ConcurrentGroupCreation(t *testing.T) {
	f := newFixture(t)

	const workers = 16

	var wg sync.WaitGroup
	ids := make(chan string, workers)
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g, err := f.svc.ResolveOrCreateGroup(context.Background(), f.app, "hot-post")
			if err != nil {
				errs <- err
				return
			}
			ids <- g.ID
		}()
	}
	wg.Wait()
	close(ids)
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	seen := make(map[string]struct{})
	for id := range ids {
		seen[id] = struct{}{}
	}
	require.Len(t, seen, 1)
}

func TestFlow_ConcurrentComments(t *testing.T) {
	f := newFixture(t)
	root := f.comment(t, models.Author{ID: uuid.New()}, "post-1", "", "root")

	const workers = 20

	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.CreateComment(context.Background(), CreateCommentInput{
				AppCode:    f.app.Code,
				Identifier: "post-1",
				ParentID:   root.ID,
				Text:       "reply",
				Author:     models.Author{ID: uuid.New()},
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	got, err := f.svc.CommentByID(context.Background(), root.ID)
	require.NoError(t, err)
	require.EqualValues(t, workers, got.RepliesCount)
	require.EqualValues(t, 1, f.group(t, "post-1").CommentsCount)
}

func TestFlow_Moderation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ann := models.Author{ID: uuid.New(), Name: "Ann"}

	c := f.comment(t, ann, "post-1", "", "maybe spam")

	// Модерирует только владелец группы (владелец тенанта), не автор.
	_, err := f.svc.ModerateComment(ctx, ModerateInput{CommentID: c.ID, OperatorID: ann.ID, Status: "spam"})
	require.ErrorIs(t, err, ErrForbidden)

	for _, st := range []string{"spam", "approved"} {
		got, err := f.svc.ModerateComment(ctx, ModerateInput{CommentID: c.ID, OperatorID: f.owner, Status: st})
		require.NoError(t, err)
		require.Equal(t, models.Status(st), got.Status)
	}

	got, err := f.svc.ModerateComment(ctx, ModerateInput{CommentID: c.ID, OperatorID: f.owner, Status: "deleted"})
	require.NoError(t, err)
	require.True(t, got.IsRemoved)
	require.Zero(t, f.group(t, "post-1").CommentsCount)

	_, err = f.svc.ModerateComment(ctx, ModerateInput{CommentID: c.ID, OperatorID: f.owner, Status: "approved"})
	require.ErrorIs(t, err, ErrInvalidTransition)

	// Автор удаляет уже удалённый модератором комментарий: no-op, счётчик не уходит в минус.
	require.NoError(t, f.svc.RemoveComment(ctx, c.ID, ann.ID))
	require.Zero(t, f.group(t, "post-1").CommentsCount)
}

func TestFlow_Ownership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ann := models.Author{ID: uuid.New(), Name: "Ann"}
	c := f.comment(t, ann, "post-1", "", "mine")

	require.ErrorIs(t, f.svc.RemoveComment(ctx, c.ID, uuid.New()), ErrForbidden)
	require.ErrorIs(t, f.svc.RemoveComment(ctx, uuid.NewString(), ann.ID), ErrNotFound)

	_, err := f.svc.UpdateOrigins(ctx, f.app.Code, ann.ID, []string{"https://y.com"})
	require.ErrorIs(t, err, ErrForbidden)

	app, err := f.svc.UpdateOrigins(ctx, f.app.Code, f.owner, []string{"https://y.com"})
	require.NoError(t, err)
	require.Equal(t, []string{"https://y.com"}, app.AuthorizedOrigins)

	// Старый origin больше не допускается.
	_, err = f.svc.ThreadView(ctx, ThreadViewInput{AppCode: f.app.Code, Identifier: "post-1", Referer: "https://x.com/"})
	require.ErrorIs(t, err, ErrOriginMismatch)

	apps, err := f.svc.ListApps(ctx, f.owner, nil)
	require.NoError(t, err)
	require.EqualValues(t, 1, apps.Total)

	apps, err = f.svc.ListApps(ctx, ann.ID, nil)
	require.NoError(t, err)
	require.Zero(t, apps.Total)
}
