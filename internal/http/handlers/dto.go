package handlers

import (
	"time"

	"github.com/pribylovaa/commentsy/internal/models"
	"github.com/pribylovaa/commentsy/internal/query"
)

// CreateCommentRequest — тело POST /comments.
type CreateCommentRequest struct {
	AppCode         string `json:"appCode"`
	Identifier      string `json:"identifier"`
	Comment         string `json:"comment"`
	ParentCommentID string `json:"parentCommentId"`
}

// RemoveCommentRequest — тело DELETE /comments.
type RemoveCommentRequest struct {
	CommentID string `json:"commentId"`
}

// ModerateRequest — тело PATCH /comments/{id}/status.
type ModerateRequest struct {
	Status string `json:"status"`
}

// RegisterAppRequest — тело POST /apps.
type RegisterAppRequest struct {
	Name              string   `json:"name"`
	AuthorizedOrigins []string `json:"authorizedOrigins"`
}

// UpdateOriginsRequest — тело PUT /apps/{code}/origins.
type UpdateOriginsRequest struct {
	AuthorizedOrigins []string `json:"authorizedOrigins"`
}

type AuthorView struct {
	Name string `json:"name"`
}

// CommentView — элемент списков: только id, repliesCount, text, createdAt, author.name.
type CommentView struct {
	ID           string     `json:"id"`
	RepliesCount int64      `json:"repliesCount"`
	Text         string     `json:"text"`
	CreatedAt    time.Time  `json:"createdAt"`
	Author       AuthorView `json:"author"`
}

// CommentPage — страница комментариев: {comments, total, size}, как ждёт виджет.
type CommentPage struct {
	Comments []CommentView `json:"comments"`
	Total    int64         `json:"total"`
	Size     int64         `json:"size"`
}

// AppPage — страница тенантов владельца.
type AppPage struct {
	Apps  []App `json:"apps"`
	Total int64 `json:"total"`
	Size  int64 `json:"size"`
}

// ThreadView — инициализация виджета.
type ThreadView struct {
	Identifier    string        `json:"identifier"`
	LikesCount    int64         `json:"likesCount"`
	CommentsCount int64         `json:"commentsCount"`
	Comments      []CommentView `json:"comments"`
	Total         int64         `json:"total"`
	Size          int64         `json:"size"`
}

// Comment — созданный или промодерированный комментарий.
type Comment struct {
	ID           string    `json:"id"`
	GroupID      string    `json:"groupId"`
	ParentID     string    `json:"parentId,omitempty"`
	AuthorID     string    `json:"authorId"`
	Text         string    `json:"text"`
	Status       string    `json:"status"`
	RepliesCount int64     `json:"repliesCount"`
	IsRemoved    bool      `json:"isRemoved"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// App — тенант для его владельца.
type App struct {
	ID                string    `json:"id"`
	Code              string    `json:"code"`
	Name              string    `json:"name"`
	AuthorizedOrigins []string  `json:"authorizedOrigins"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func commentViewFromModel(c models.CommentView) CommentView {
	return CommentView{
		ID:           c.ID,
		RepliesCount: c.RepliesCount,
		Text:         c.Text,
		CreatedAt:    c.CreatedAt,
		Author:       AuthorView{Name: c.Author.Name},
	}
}

func commentViewsFromModel(in []models.CommentView) []CommentView {
	out := make([]CommentView, 0, len(in))
	for _, c := range in {
		out = append(out, commentViewFromModel(c))
	}
	return out
}

func commentPageFromModel(res *query.Result[models.CommentView]) CommentPage {
	return CommentPage{
		Comments: commentViewsFromModel(res.Items),
		Total:    res.Total,
		Size:     res.Size,
	}
}

func threadViewFromModel(tv *models.ThreadView) ThreadView {
	return ThreadView{
		Identifier:    tv.Identifier,
		LikesCount:    tv.LikesCount,
		CommentsCount: tv.CommentsCount,
		Comments:      commentViewsFromModel(tv.Comments),
		Total:         tv.Total,
		Size:          tv.Size,
	}
}

func commentFromModel(c *models.Comment) Comment {
	return Comment{
		ID:           c.ID,
		GroupID:      c.GroupID,
		ParentID:     c.ParentID,
		AuthorID:     c.AuthorID.String(),
		Text:         c.Text,
		Status:       string(c.Status),
		RepliesCount: c.RepliesCount,
		IsRemoved:    c.IsRemoved,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func appFromModel(a *models.App) App {
	origins := a.AuthorizedOrigins
	if origins == nil {
		origins = []string{}
	}

	return App{
		ID:                a.ID,
		Code:              a.Code,
		Name:              a.Name,
		AuthorizedOrigins: origins,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

func appPageFromModel(res *query.Result[models.App]) AppPage {
	apps := make([]App, 0, len(res.Items))
	for i := range res.Items {
		apps = append(apps, appFromModel(&res.Items[i]))
	}

	return AppPage{Apps: apps, Total: res.Total, Size: res.Size}
}
