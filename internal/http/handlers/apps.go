package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/pribylovaa/commentsy/internal/errors"
	"github.com/pribylovaa/commentsy/internal/service"
)

// RegisterApp — POST /apps.
func (h *Handlers) RegisterApp(w http.ResponseWriter, r *http.Request) {
	var in RegisterAppRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, invalidArgument(err))
		return
	}

	app, err := h.svc.RegisterApp(r.Context(), service.RegisterAppInput{
		OwnerID: identity(r).UserID,
		Name:    in.Name,
		Origins: in.AuthorizedOrigins,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	apierrors.WriteSuccess(w, http.StatusCreated, appFromModel(app))
}

// ListApps — GET /apps: тенанты владельца сессии.
func (h *Handlers) ListApps(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListApps(r.Context(), identity(r).UserID, r.URL.Query())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	apierrors.WriteSuccess(w, http.StatusOK, appPageFromModel(res))
}

// UpdateOrigins — PUT /apps/{code}/origins.
func (h *Handlers) UpdateOrigins(w http.ResponseWriter, r *http.Request) {
	var in UpdateOriginsRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, invalidArgument(err))
		return
	}

	app, err := h.svc.UpdateOrigins(r.Context(), chi.URLParam(r, "code"), identity(r).UserID, in.AuthorizedOrigins)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	apierrors.WriteSuccess(w, http.StatusOK, appFromModel(app))
}
