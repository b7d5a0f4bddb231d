package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment — внутренняя доменная модель комментария.
// Важно:
//   - ParentID пуст у корневого комментария и указывает на корень у ответа
//     (допускается только один уровень вложенности);
//   - RepliesCount имеет смысл только у корня: число неудалённых ответов;
//   - IsRemoved — мягкое удаление (видимость и счётчики), Status — модерация.
type Comment struct {
	ID           string
	GroupID      string
	ParentID     string
	AuthorID     uuid.UUID
	Text         string
	Status       Status
	RepliesCount int64
	IsRemoved    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsTopLevel сообщает, является ли комментарий корневым.
func (c *Comment) IsTopLevel() bool {
	return c.ParentID == ""
}

// CommentView — публичная проекция комментария в списках.
// Других полей (статус, идентификатор автора, флаги) наружу не отдаём.
type CommentView struct {
	ID           string
	RepliesCount int64
	Text         string
	CreatedAt    time.Time
	Author       AuthorView
}

// AuthorView — единственное поле автора, доступное в списках.
type AuthorView struct {
	Name string
}

// ThreadView — данные для инициализации виджета на странице.
type ThreadView struct {
	Identifier    string
	LikesCount    int64
	CommentsCount int64
	Comments      []CommentView
	Total         int64
	Size          int64
}
