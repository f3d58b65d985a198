package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/hoaxify/hoaxify-api/internal/i18n"
	"github.com/hoaxify/hoaxify-api/internal/platform/httpx"
	"github.com/hoaxify/hoaxify-api/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	tokens    TokenStore
	catalog   *i18n.Catalog
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, tokens TokenStore, catalog *i18n.Catalog) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		tokens:    tokens,
		catalog:   catalog,
		validator: validator.New(),
	}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/auth", h.handleLogin)
	r.Post("/logout", h.handleLogout)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Token    string `json:"token"`
	Image    string `json:"image"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	lang := r.Header.Get("Accept-Language")

	var body loginRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.Error(w, r, http.StatusUnauthorized, h.catalog.Resolve(lang, i18n.KeyAuthenticationFailure))
		return
	}
	// A malformed login body is treated as bad credentials, not as a field
	// validation failure, so the response stays uniform.
	if err := h.validator.Struct(body); err != nil {
		httpx.Error(w, r, http.StatusUnauthorized, h.catalog.Resolve(lang, i18n.KeyAuthenticationFailure))
		return
	}

	user, err := h.service.Verify(r.Context(), body.Email, body.Password)
	if err != nil {
		httpx.Error(w, r, http.StatusUnauthorized, h.catalog.Resolve(lang, i18n.KeyAuthenticationFailure))
		return
	}
	if user.Inactive {
		httpx.Error(w, r, http.StatusForbidden, h.catalog.Resolve(lang, i18n.KeyInactiveAuthenticationFailure))
		return
	}

	token, err := h.tokens.Issue(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("issue token", slog.Any("error", err))
		httpx.Error(w, r, http.StatusInternalServerError, h.catalog.Resolve(lang, i18n.KeyInternalError))
		return
	}

	httpx.JSON(w, http.StatusOK, loginResponse{
		ID:       user.ID,
		Username: user.Username,
		Token:    token,
		Image:    user.Image,
	})
}

// handleLogout revokes the bearer token when one is present and always
// answers 200, whatever the token's state.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	creds := shared.CredentialsFromRequest(r)
	if creds.HasToken() {
		if err := h.tokens.Revoke(r.Context(), creds.Token); err != nil {
			h.logger.Warn("revoke token", slog.Any("error", err))
		}
	}
	httpx.JSON(w, http.StatusOK, struct{}{})
}
