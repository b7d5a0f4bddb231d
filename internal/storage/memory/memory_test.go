package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/commentsy/internal/models"
	"github.com/pribylovaa/commentsy/internal/query"
	"github.com/pribylovaa/commentsy/internal/storage"
)

// newClocked — хранилище с детерминированными часами: каждый вызов now() сдвигает время на секунду.
func newClocked() *Storage {
	s := New()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		base = base.Add(time.Second)
		return base
	}
	return s
}

func seedGroup(t *testing.T, s *Storage) *models.Group {
	t.Helper()

	g, err := s.InsertGroup(context.Background(), models.Group{AppID: "app-1", Identifier: "post-1", OwnerID: uuid.New()})
	require.NoError(t, err)
	return g
}

func TestApps(t *testing.T) {
	s := newClocked()
	ctx := context.Background()
	owner := uuid.New()

	a, err := s.CreateApp(ctx, models.App{Code: "c1", Name: "b", OwnerID: owner, AuthorizedOrigins: []string{"https://a.com"}})
	require.NoError(t, err)
	require.NotEmpty(t, a.ID)

	_, err = s.CreateApp(ctx, models.App{Code: "c1"})
	require.ErrorIs(t, err, storage.ErrAlreadyExists)

	_, err = s.CreateApp(ctx, models.App{Code: "c2", Name: "a", OwnerID: owner})
	require.NoError(t, err)
	_, err = s.CreateApp(ctx, models.App{Code: "c3", Name: "z", OwnerID: uuid.New()})
	require.NoError(t, err)

	// Возвращённая копия не разделяет срез с хранилищем.
	a.AuthorizedOrigins[0] = "mutated"
	got, err := s.AppByCode(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, []string{"https://a.com"}, got.AuthorizedOrigins)

	_, err = s.AppByCode(ctx, "nope")
	require.ErrorIs(t, err, storage.ErrNotFound)

	upd, err := s.UpdateAppOrigins(ctx, "c1", []string{"https://b.com"})
	require.NoError(t, err)
	require.Equal(t, []string{"https://b.com"}, upd.AuthorizedOrigins)

	_, err = s.UpdateAppOrigins(ctx, "nope", nil)
	require.ErrorIs(t, err, storage.ErrNotFound)

	res, err := s.FindApps(ctx, query.Filter{storage.FieldOwner: owner}, query.Params{
		Limit: 10, Page: 1, Sort: []query.SortField{{Field: storage.FieldName}},
	})
	require.NoError(t, err)
	require.EqualValues(t, 2, res.Total)
	require.Equal(t, "a", res.Items[0].Name)
	require.Equal(t, "b", res.Items[1].Name)

	_, err = s.FindApps(ctx, query.Filter{"secret": 1}, query.Params{Limit: 1, Page: 1})
	require.ErrorIs(t, err, query.ErrUnknownField)
}

func TestGroups(t *testing.T) {
	s := newClocked()
	ctx := context.Background()

	g1 := seedGroup(t, s)

	_, err := s.InsertGroup(ctx, models.Group{AppID: "app-1", Identifier: "post-1"})
	require.ErrorIs(t, err, storage.ErrAlreadyExists)

	// Тот же identifier у другого тенанта допустим.
	g2, err := s.InsertGroup(ctx, models.Group{AppID: "app-2", Identifier: "post-1"})
	require.NoError(t, err)
	require.NotEqual(t, g1.ID, g2.ID)

	got, err := s.GroupByApp(ctx, "app-2", "post-1")
	require.NoError(t, err)
	require.Equal(t, g2.ID, got.ID)

	// Без тенанта выбирается самая ранняя группа.
	got, err = s.GroupByIdentifier(ctx, "post-1")
	require.NoError(t, err)
	require.Equal(t, g1.ID, got.ID)

	_, err = s.GroupByIdentifier(ctx, "nope")
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, err = s.GroupByID(ctx, "nope")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestComments_CountersAndRemoval(t *testing.T) {
	s := newClocked()
	ctx := context.Background()
	g := seedGroup(t, s)
	author := uuid.New()

	_, err := s.CreateComment(ctx, models.Comment{GroupID: "nope", AuthorID: author, Text: "x"})
	require.ErrorIs(t, err, storage.ErrNotFound)

	root, err := s.CreateComment(ctx, models.Comment{GroupID: g.ID, AuthorID: author, Text: "root"})
	require.NoError(t, err)
	require.Equal(t, models.StatusPending, root.Status)

	reply, err := s.CreateComment(ctx, models.Comment{GroupID: g.ID, ParentID: root.ID, AuthorID: author, Text: "reply"})
	require.NoError(t, err)

	_, err = s.CreateComment(ctx, models.Comment{GroupID: g.ID, ParentID: reply.ID, AuthorID: author, Text: "deep"})
	require.ErrorIs(t, err, storage.ErrNotTopLevel)

	_, err = s.CreateComment(ctx, models.Comment{GroupID: g.ID, ParentID: "nope", AuthorID: author, Text: "orphan"})
	require.ErrorIs(t, err, storage.ErrParentNotFound)

	grp, err := s.GroupByID(ctx, g.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, grp.CommentsCount)

	got, err := s.CommentByID(ctx, root.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, got.RepliesCount)

	_, err = s.RemoveComment(ctx, reply.ID)
	require.NoError(t, err)
	_, err = s.RemoveComment(ctx, reply.ID)
	require.ErrorIs(t, err, storage.ErrAlreadyRemoved)

	got, err = s.CommentByID(ctx, root.ID)
	require.NoError(t, err)
	require.Zero(t, got.RepliesCount)

	_, err = s.RemoveComment(ctx, "nope")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestComments_StatusUpdate(t *testing.T) {
	s := newClocked()
	ctx := context.Background()
	g := seedGroup(t, s)

	c, err := s.CreateComment(ctx, models.Comment{GroupID: g.ID, AuthorID: uuid.New(), Text: "x"})
	require.NoError(t, err)

	_, err = s.UpdateCommentStatus(ctx, c.ID, models.StatusApproved, models.StatusSpam)
	require.ErrorIs(t, err, storage.ErrStatusConflict)

	got, err := s.UpdateCommentStatus(ctx, c.ID, models.StatusPending, models.StatusSpam)
	require.NoError(t, err)
	require.Equal(t, models.StatusSpam, got.Status)
	require.False(t, got.IsRemoved)

	got, err = s.UpdateCommentStatus(ctx, c.ID, models.StatusSpam, models.StatusDeleted)
	require.NoError(t, err)
	require.True(t, got.IsRemoved)

	grp, err := s.GroupByID(ctx, g.ID)
	require.NoError(t, err)
	require.Zero(t, grp.CommentsCount)

	_, err = s.UpdateCommentStatus(ctx, "nope", models.StatusPending, models.StatusSpam)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestFindComments(t *testing.T) {
	s := newClocked()
	ctx := context.Background()
	g := seedGroup(t, s)
	ann := models.Author{ID: uuid.New(), Name: "Ann"}
	require.NoError(t, s.UpsertAuthor(ctx, ann))

	var roots []*models.Comment
	for _, text := range []string{"first", "second", "third"} {
		c, err := s.CreateComment(ctx, models.Comment{GroupID: g.ID, AuthorID: ann.ID, Text: text})
		require.NoError(t, err)
		roots = append(roots, c)
	}

	_, err := s.CreateComment(ctx, models.Comment{GroupID: g.ID, ParentID: roots[0].ID, AuthorID: ann.ID, Text: "reply"})
	require.NoError(t, err)
	_, err = s.RemoveComment(ctx, roots[2].ID)
	require.NoError(t, err)

	filter := query.Filter{
		storage.FieldGroup:     g.ID,
		storage.FieldParent:    nil,
		storage.FieldIsRemoved: false,
	}

	res, err := s.FindComments(ctx, filter, query.Params{
		Limit: 1, Page: 1, Sort: []query.SortField{{Field: storage.FieldCreatedAt, Desc: true}},
	})
	require.NoError(t, err)
	require.EqualValues(t, 2, res.Total)
	require.EqualValues(t, 1, res.Size)
	require.Len(t, res.Items, 1)
	require.Equal(t, "second", res.Items[0].Text)
	require.Equal(t, "Ann", res.Items[0].Author.Name)

	res, err = s.FindComments(ctx, filter, query.Params{
		Limit: 1, Page: 2, Sort: []query.SortField{{Field: storage.FieldCreatedAt, Desc: true}},
	})
	require.NoError(t, err)
	require.Equal(t, "first", res.Items[0].Text)
	require.EqualValues(t, 1, res.Items[0].RepliesCount)

	// Страница за пределами выборки — пустая, total сохраняется.
	res, err = s.FindComments(ctx, filter, query.Params{Limit: 10, Page: 5})
	require.NoError(t, err)
	require.Empty(t, res.Items)
	require.EqualValues(t, 2, res.Total)

	res, err = s.FindComments(ctx, query.Filter{storage.FieldParent: roots[0].ID}, query.Params{Limit: 10, Page: 1})
	require.NoError(t, err)
	require.EqualValues(t, 1, res.Total)
	require.Equal(t, "reply", res.Items[0].Text)

	_, err = s.FindComments(ctx, filter, query.Params{Limit: 1, Page: 1, Sort: []query.SortField{{Field: "status"}}})
	require.ErrorIs(t, err, query.ErrUnknownField)
}
