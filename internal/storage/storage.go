// Package storage описывает контракт хранилища сервиса комментариев.
// Реализации: mongo (основная), postgres, memory.
package storage

import (
	"context"
	"errors"

	"github.com/pribylovaa/commentsy/internal/models"
	"github.com/pribylovaa/commentsy/internal/query"
)

var (
	// ErrNotFound — сущность отсутствует в хранилище.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — конфликт уникальности (apps.code, groups.app+identifier).
	ErrAlreadyExists = errors.New("already exists")
	// ErrParentNotFound — указан parent_id, но родитель не найден (или удалён).
	ErrParentNotFound = errors.New("parent not found")
	// ErrNotTopLevel — родитель сам является ответом либо принадлежит другой группе.
	ErrNotTopLevel = errors.New("parent is not a top-level comment of the group")
	// ErrAlreadyRemoved — комментарий уже мягко удалён.
	ErrAlreadyRemoved = errors.New("already removed")
	// ErrStatusConflict — статус изменился между чтением и условным обновлением.
	ErrStatusConflict = errors.New("status conflict")
)

// Логические поля, доступные query.Filter и сортировке.
const (
	FieldGroup        = "group"
	FieldParent       = "parent"
	FieldIsRemoved    = "isRemoved"
	FieldOwner        = "owner"
	FieldCreatedAt    = "createdAt"
	FieldRepliesCount = "repliesCount"
	FieldName         = "name"
)

// Storage описывает операции над тенантами, группами и комментариями.
//
// Все мутации, затрагивающие счётчики, атомарны на уровне хранилища:
// комментарий и счётчик группы/родителя меняются в одной транзакции.
type Storage interface {
	// CreateApp сохраняет тенанта. Конфликт по Code — ErrAlreadyExists.
	CreateApp(ctx context.Context, app models.App) (*models.App, error)

	// AppByCode возвращает тенанта по коду или ErrNotFound.
	AppByCode(ctx context.Context, code string) (*models.App, error)

	// UpdateAppOrigins заменяет список разрешённых origin. ErrNotFound, если тенанта нет.
	UpdateAppOrigins(ctx context.Context, code string, origins []string) (*models.App, error)

	// FindApps — выборка тенантов через query factory (поля: owner; сортировка: createdAt, name).
	FindApps(ctx context.Context, filter query.Filter, p query.Params) (*query.Result[models.App], error)

	// InsertGroup вставляет группу с нулевыми счётчиками.
	// Конфликт по (AppID, Identifier) — ErrAlreadyExists: вызывающий перечитывает существующую.
	InsertGroup(ctx context.Context, group models.Group) (*models.Group, error)

	// GroupByApp ищет группу по паре (app, identifier) или ErrNotFound.
	GroupByApp(ctx context.Context, appID, identifier string) (*models.Group, error)

	// GroupByIdentifier ищет группу по identifier без учёта тенанта
	// (при нескольких совпадениях — самую раннюю) или ErrNotFound.
	GroupByIdentifier(ctx context.Context, identifier string) (*models.Group, error)

	// GroupByID возвращает группу по идентификатору или ErrNotFound.
	GroupByID(ctx context.Context, id string) (*models.Group, error)

	// UpsertAuthor сохраняет/обновляет отображаемое имя автора.
	UpsertAuthor(ctx context.Context, author models.Author) error

	// CreateComment создаёт корень или ответ со статусом pending.
	// Для ответа родитель должен существовать, не быть удалённым и быть корнем той же группы
	// (ErrParentNotFound / ErrNotTopLevel). Счётчик родителя или группы увеличивается атомарно.
	CreateComment(ctx context.Context, comment models.Comment) (*models.Comment, error)

	// CommentByID возвращает комментарий (в том числе мягко удалённый) или ErrNotFound.
	CommentByID(ctx context.Context, id string) (*models.Comment, error)

	// RemoveComment выставляет is_removed=true и атомарно уменьшает счётчик.
	// ErrNotFound — нет записи; ErrAlreadyRemoved — уже удалён (счётчики не трогаются).
	RemoveComment(ctx context.Context, id string) (*models.Comment, error)

	// UpdateCommentStatus — условное обновление статуса (только если текущий равен from).
	// Иначе ErrStatusConflict. Переход в deleted также мягко удаляет комментарий
	// с уменьшением счётчика, если он ещё не был удалён.
	UpdateCommentStatus(ctx context.Context, id string, from, to models.Status) (*models.Comment, error)

	// FindComments — выборка через query factory с проекцией {id, repliesCount, text, createdAt, author.name}.
	// Поля фильтра: group, parent, isRemoved; сортировка: createdAt, repliesCount.
	FindComments(ctx context.Context, filter query.Filter, p query.Params) (*query.Result[models.CommentView], error)

	// Close закрывает соединения/ресурсы хранилища.
	Close(ctx context.Context) error
}
