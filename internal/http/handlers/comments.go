package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/pribylovaa/commentsy/internal/errors"
	"github.com/pribylovaa/commentsy/internal/models"
	"github.com/pribylovaa/commentsy/internal/service"
)

// ThreadView — GET /public/comments: чтение треда виджетом.
// Origin страницы берётся из Referer, при его отсутствии — из Origin.
func (h *Handlers) ThreadView(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	referer := r.Header.Get("Referer")
	if referer == "" {
		referer = r.Header.Get("Origin")
	}

	tv, err := h.svc.ThreadView(r.Context(), service.ThreadViewInput{
		AppCode:    q.Get("appCode"),
		Identifier: q.Get("identifier"),
		Referer:    referer,
		Params:     q,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	apierrors.WriteSuccess(w, http.StatusOK, threadViewFromModel(tv))
}

// GroupComments — GET /comments?identifier=...
func (h *Handlers) GroupComments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	res, err := h.svc.GroupComments(r.Context(), q.Get("identifier"), q)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	apierrors.WriteSuccess(w, http.StatusOK, commentPageFromModel(res))
}

// ListReplies — GET /comments/{id}/replies.
func (h *Handlers) ListReplies(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListReplies(r.Context(), chi.URLParam(r, "id"), r.URL.Query())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	apierrors.WriteSuccess(w, http.StatusOK, commentPageFromModel(res))
}

// CreateComment — POST /comments от пользователя сессии.
func (h *Handlers) CreateComment(w http.ResponseWriter, r *http.Request) {
	var in CreateCommentRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, invalidArgument(err))
		return
	}

	id := identity(r)

	c, err := h.svc.CreateComment(r.Context(), service.CreateCommentInput{
		AppCode:    in.AppCode,
		Identifier: in.Identifier,
		ParentID:   in.ParentCommentID,
		Text:       in.Comment,
		Author:     models.Author{ID: id.UserID, Name: id.Name},
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	apierrors.WriteSuccess(w, http.StatusCreated, commentFromModel(c))
}

// RemoveComment — DELETE /comments/{id} либо DELETE /comments с телом {commentId}.
func (h *Handlers) RemoveComment(w http.ResponseWriter, r *http.Request) {
	commentID := chi.URLParam(r, "id")
	if commentID == "" {
		var in RemoveCommentRequest
		if err := decodeStrict(r, &in); err != nil {
			apierrors.WriteError(w, r, invalidArgument(err))
			return
		}
		commentID = in.CommentID
	}

	if err := h.svc.RemoveComment(r.Context(), commentID, identity(r).UserID); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	apierrors.WriteSuccess(w, http.StatusOK, nil)
}

// ModerateComment — PATCH /comments/{id}/status владельцем группы.
func (h *Handlers) ModerateComment(w http.ResponseWriter, r *http.Request) {
	var in ModerateRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, invalidArgument(err))
		return
	}

	c, err := h.svc.ModerateComment(r.Context(), service.ModerateInput{
		CommentID:  chi.URLParam(r, "id"),
		OperatorID: identity(r).UserID,
		Status:     in.Status,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	apierrors.WriteSuccess(w, http.StatusOK, commentFromModel(c))
}
