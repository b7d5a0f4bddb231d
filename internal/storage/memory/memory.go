// Package memory — хранилище в памяти процесса. Используется для локального
// запуска (db.driver=memory) и в тестах сервисного слоя.
// Все операции выполняются под одной блокировкой, поэтому атомарны.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/commentsy/internal/models"
	"github.com/pribylovaa/commentsy/internal/query"
	"github.com/pribylovaa/commentsy/internal/storage"
)

// Storage — хранилище в памяти.
type Storage struct {
	mu       sync.RWMutex
	apps     map[string]*models.App // by code
	groups   map[string]*models.Group
	comments map[string]*models.Comment
	authors  map[uuid.UUID]models.Author
	now      func() time.Time
}

// New создаёт пустое хранилище.
func New() *Storage {
	return &Storage{
		apps:     make(map[string]*models.App),
		groups:   make(map[string]*models.Group),
		comments: make(map[string]*models.Comment),
		authors:  make(map[uuid.UUID]models.Author),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Storage) Close(context.Context) error { return nil }

// CreateApp сохраняет тенанта.
func (s *Storage) CreateApp(_ context.Context, app models.App) (*models.App, error) {
	const op = "storage/memory/CreateApp"

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.apps[app.Code]; ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
	}

	now := s.now()
	app.ID = uuid.NewString()
	app.AuthorizedOrigins = slices.Clone(app.AuthorizedOrigins)
	app.CreatedAt = now
	app.UpdatedAt = now
	s.apps[app.Code] = &app

	return cloneApp(&app), nil
}

// AppByCode возвращает тенанта по коду.
func (s *Storage) AppByCode(_ context.Context, code string) (*models.App, error) {
	const op = "storage/memory/AppByCode"

	s.mu.RLock()
	defer s.mu.RUnlock()

	app, ok := s.apps[code]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return cloneApp(app), nil
}

// UpdateAppOrigins заменяет список разрешённых origin.
func (s *Storage) UpdateAppOrigins(_ context.Context, code string, origins []string) (*models.App, error) {
	const op = "storage/memory/UpdateAppOrigins"

	s.mu.Lock()
	defer s.mu.Unlock()

	app, ok := s.apps[code]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	app.AuthorizedOrigins = slices.Clone(origins)
	app.UpdatedAt = s.now()

	return cloneApp(app), nil
}

// FindApps — выборка тенантов.
func (s *Storage) FindApps(_ context.Context, filter query.Filter, p query.Params) (*query.Result[models.App], error) {
	const op = "storage/memory/FindApps"

	s.mu.RLock()
	defer s.mu.RUnlock()

	match, err := matcher(filter, appFields)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var all []*models.App
	for _, a := range s.apps {
		if match(func(field string) any { return appField(a, field) }) {
			all = append(all, a)
		}
	}

	if err := sortBy(all, p.Sort, appFields, appField, func(a *models.App) string { return a.ID }); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	window := paginate(all, p)
	items := make([]models.App, 0, len(window))
	for _, a := range window {
		items = append(items, *cloneApp(a))
	}

	return &query.Result[models.App]{Items: items, Total: int64(len(all)), Size: p.Limit}, nil
}

// InsertGroup вставляет группу; пара (app, identifier) уникальна.
func (s *Storage) InsertGroup(_ context.Context, group models.Group) (*models.Group, error) {
	const op = "storage/memory/InsertGroup"

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, g := range s.groups {
		if g.AppID == group.AppID && g.Identifier == group.Identifier {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}
	}

	group.ID = uuid.NewString()
	group.LikesCount = 0
	group.CommentsCount = 0
	group.CreatedAt = s.now()
	s.groups[group.ID] = &group

	out := group
	return &out, nil
}

// GroupByApp ищет группу по паре (app, identifier).
func (s *Storage) GroupByApp(_ context.Context, appID, identifier string) (*models.Group, error) {
	const op = "storage/memory/GroupByApp"

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, g := range s.groups {
		if g.AppID == appID && g.Identifier == identifier {
			out := *g
			return &out, nil
		}
	}

	return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
}

// GroupByIdentifier ищет самую раннюю группу с данным identifier.
func (s *Storage) GroupByIdentifier(_ context.Context, identifier string) (*models.Group, error) {
	const op = "storage/memory/GroupByIdentifier"

	s.mu.RLock()
	defer s.mu.RUnlock()

	var found *models.Group
	for _, g := range s.groups {
		if g.Identifier != identifier {
			continue
		}

		if found == nil || g.CreatedAt.Before(found.CreatedAt) ||
			(g.CreatedAt.Equal(found.CreatedAt) && g.ID < found.ID) {
			found = g
		}
	}

	if found == nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	out := *found
	return &out, nil
}

// GroupByID возвращает группу по идентификатору.
func (s *Storage) GroupByID(_ context.Context, id string) (*models.Group, error) {
	const op = "storage/memory/GroupByID"

	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.groups[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	out := *g
	return &out, nil
}

// UpsertAuthor сохраняет имя автора.
func (s *Storage) UpsertAuthor(_ context.Context, author models.Author) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.authors[author.ID] = author
	return nil
}

// CreateComment создаёт комментарий и увеличивает нужный счётчик.
func (s *Storage) CreateComment(_ context.Context, comment models.Comment) (*models.Comment, error) {
	const op = "storage/memory/CreateComment"

	s.mu.Lock()
	defer s.mu.Unlock()

	group, ok := s.groups[comment.GroupID]
	if !ok {
		return nil, fmt.Errorf("%s: group: %w", op, storage.ErrNotFound)
	}

	var parent *models.Comment
	if comment.ParentID != "" {
		parent, ok = s.comments[comment.ParentID]
		if !ok || parent.IsRemoved {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrParentNotFound)
		}

		if !parent.IsTopLevel() || parent.GroupID != comment.GroupID {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotTopLevel)
		}
	}

	now := s.now()
	comment.ID = uuid.NewString()
	comment.Status = models.StatusPending
	comment.RepliesCount = 0
	comment.IsRemoved = false
	comment.CreatedAt = now
	comment.UpdatedAt = now
	s.comments[comment.ID] = &comment

	if parent != nil {
		parent.RepliesCount++
		parent.UpdatedAt = now
	} else {
		group.CommentsCount++
	}

	out := comment
	return &out, nil
}

// CommentByID возвращает комментарий по идентификатору.
func (s *Storage) CommentByID(_ context.Context, id string) (*models.Comment, error) {
	const op = "storage/memory/CommentByID"

	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.comments[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	out := *c
	return &out, nil
}

// RemoveComment мягко удаляет комментарий.
func (s *Storage) RemoveComment(_ context.Context, id string) (*models.Comment, error) {
	const op = "storage/memory/RemoveComment"

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	if c.IsRemoved {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrAlreadyRemoved)
	}

	s.removeLocked(c)

	out := *c
	return &out, nil
}

// UpdateCommentStatus — условное обновление статуса.
func (s *Storage) UpdateCommentStatus(_ context.Context, id string, from, to models.Status) (*models.Comment, error) {
	const op = "storage/memory/UpdateCommentStatus"

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	if c.Status != from {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrStatusConflict)
	}

	c.Status = to
	c.UpdatedAt = s.now()

	if to == models.StatusDeleted && !c.IsRemoved {
		s.removeLocked(c)
	}

	out := *c
	return &out, nil
}

// removeLocked помечает комментарий удалённым и уменьшает счётчик. Требует s.mu.
func (s *Storage) removeLocked(c *models.Comment) {
	c.IsRemoved = true
	c.UpdatedAt = s.now()

	if c.IsTopLevel() {
		if g, ok := s.groups[c.GroupID]; ok {
			g.CommentsCount--
		}
		return
	}

	if p, ok := s.comments[c.ParentID]; ok {
		p.RepliesCount--
	}
}

// FindComments — выборка комментариев с проекцией для списков.
func (s *Storage) FindComments(_ context.Context, filter query.Filter, p query.Params) (*query.Result[models.CommentView], error) {
	const op = "storage/memory/FindComments"

	s.mu.RLock()
	defer s.mu.RUnlock()

	match, err := matcher(filter, commentFields)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var all []*models.Comment
	for _, c := range s.comments {
		if match(func(field string) any { return commentField(c, field) }) {
			all = append(all, c)
		}
	}

	if err := sortBy(all, p.Sort, commentFields, commentField, func(c *models.Comment) string { return c.ID }); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	window := paginate(all, p)
	items := make([]models.CommentView, 0, len(window))
	for _, c := range window {
		items = append(items, models.CommentView{
			ID:           c.ID,
			RepliesCount: c.RepliesCount,
			Text:         c.Text,
			CreatedAt:    c.CreatedAt,
			Author:       models.AuthorView{Name: s.authors[c.AuthorID].Name},
		})
	}

	return &query.Result[models.CommentView]{Items: items, Total: int64(len(all)), Size: p.Limit}, nil
}

func cloneApp(a *models.App) *models.App {
	out := *a
	out.AuthorizedOrigins = slices.Clone(a.AuthorizedOrigins)
	return &out
}

var (
	commentFields = map[string]string{
		storage.FieldGroup:        "group",
		storage.FieldParent:       "parent",
		storage.FieldIsRemoved:    "isRemoved",
		storage.FieldCreatedAt:    "createdAt",
		storage.FieldRepliesCount: "repliesCount",
	}
	appFields = map[string]string{
		storage.FieldOwner:     "owner",
		storage.FieldCreatedAt: "createdAt",
		storage.FieldName:      "name",
	}
)

// commentField возвращает значение поля комментария в сравнимом виде.
// parent у корня — nil, как в базовом фильтре {parent: nil}.
func commentField(c *models.Comment, field string) any {
	switch field {
	case "group":
		return c.GroupID
	case "parent":
		if c.ParentID == "" {
			return nil
		}
		return c.ParentID
	case "isRemoved":
		return c.IsRemoved
	case "createdAt":
		return c.CreatedAt.UnixNano()
	case "repliesCount":
		return c.RepliesCount
	}
	return nil
}

func appField(a *models.App, field string) any {
	switch field {
	case "owner":
		return a.OwnerID.String()
	case "createdAt":
		return a.CreatedAt.UnixNano()
	case "name":
		return a.Name
	}
	return nil
}

// matcher строит предикат по базовому фильтру.
func matcher(filter query.Filter, fields map[string]string) (func(get func(string) any) bool, error) {
	type cond struct {
		field string
		value any
	}

	var conds []cond
	err := query.Resolve(filter, fields, func(col string, v any) {
		if u, ok := v.(uuid.UUID); ok {
			v = u.String()
		}
		conds = append(conds, cond{field: col, value: v})
	})
	if err != nil {
		return nil, err
	}

	return func(get func(string) any) bool {
		for _, c := range conds {
			if get(c.field) != c.value {
				return false
			}
		}
		return true
	}, nil
}

// sortBy сортирует срез по полям сортировки; id — последний ключ для стабильности.
func sortBy[T any](items []T, sortFields []query.SortField, fields map[string]string, get func(T, string) any, id func(T) string) error {
	resolved, err := query.ResolveSort(sortFields, fields)
	if err != nil {
		return err
	}

	slices.SortFunc(items, func(a, b T) int {
		for _, sf := range resolved {
			c := compare(get(a, sf.Field), get(b, sf.Field))
			if sf.Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return cmp.Compare(id(a), id(b))
	})

	return nil
}

func compare(a, b any) int {
	switch av := a.(type) {
	case int64:
		bv, _ := b.(int64)
		return cmp.Compare(av, bv)
	case string:
		bv, _ := b.(string)
		return cmp.Compare(av, bv)
	}
	return 0
}

func paginate[T any](items []T, p query.Params) []T {
	off := p.Offset()
	if off < 0 || off >= int64(len(items)) {
		return nil
	}

	end := off + p.Limit
	if end > int64(len(items)) {
		end = int64(len(items))
	}

	return items[off:end]
}

// Проверка выполнения контракта верхнего уровня.
var _ storage.Storage = (*Storage)(nil)
