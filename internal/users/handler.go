package users

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hoaxify/hoaxify-api/internal/i18n"
	"github.com/hoaxify/hoaxify-api/internal/platform/httpx"
	"github.com/hoaxify/hoaxify-api/internal/shared"
)

// Handler wires the user profile endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	catalog *i18n.Catalog
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, catalog *i18n.Catalog) *Handler {
	return &Handler{logger: logger, service: service, catalog: catalog}
}

// MountRoutes registers user routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Put("/users/{id}", h.handleUpdate)
	r.Get("/users/{id}", h.handleGet)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	lang := r.Header.Get("Accept-Language")

	targetID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		// An unparseable id cannot belong to the caller.
		httpx.Error(w, r, http.StatusForbidden, h.catalog.Resolve(lang, i18n.KeyUnauthorizedUserUpdate))
		return
	}

	var req UpdateRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Error(w, r, http.StatusBadRequest, h.catalog.Resolve(lang, i18n.KeyValidationFailure))
			return
		}
	}

	creds := shared.CredentialsFromRequest(r)
	view, err := h.service.UpdateProfile(r.Context(), creds, targetID, req)
	if err != nil {
		h.respondError(w, r, lang, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	lang := r.Header.Get("Accept-Language")

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, r, http.StatusNotFound, h.catalog.Resolve(lang, i18n.KeyUserNotFound))
		return
	}
	view, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Error(w, r, http.StatusNotFound, h.catalog.Resolve(lang, i18n.KeyUserNotFound))
			return
		}
		h.respondError(w, r, lang, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, lang string, err error) {
	if ve, ok := shared.AsValidationError(err); ok {
		resolved := make(map[string]string, len(ve.Violations))
		for field, key := range ve.Violations {
			resolved[field] = h.catalog.Resolve(lang, key)
		}
		httpx.ValidationError(w, r, h.catalog.Resolve(lang, i18n.KeyValidationFailure), resolved)
		return
	}
	switch {
	case errors.Is(err, shared.ErrForbidden), errors.Is(err, shared.ErrNotFound):
		// Nonexistent targets answer exactly like forbidden ones.
		httpx.Error(w, r, http.StatusForbidden, h.catalog.Resolve(lang, i18n.KeyUnauthorizedUserUpdate))
	default:
		h.logger.Error("update profile", slog.Any("error", err))
		httpx.Error(w, r, http.StatusInternalServerError, h.catalog.Resolve(lang, i18n.KeyInternalError))
	}
}
