package users

import (
	"context"
	"errors"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/hoaxify/hoaxify-api/internal/i18n"
	"github.com/hoaxify/hoaxify-api/internal/images"
	"github.com/hoaxify/hoaxify-api/internal/shared"
)

// Authorizer decides whether the supplied credentials may act on targetID.
type Authorizer interface {
	Authorize(ctx context.Context, creds shared.Credentials, targetID int64) (*User, error)
}

// UpdateRequest is the inbound profile update payload. Nil fields are left
// untouched; Image carries base64-encoded bytes when present.
type UpdateRequest struct {
	Username *string `json:"username" validate:"omitempty,min=4,max=32"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Image    *string `json:"image"`
}

// Service orchestrates profile updates end to end.
type Service struct {
	logger    *slog.Logger
	repo      Repository
	guard     Authorizer
	imageMgr  *images.Manager
	validator *validator.Validate
}

// NewService builds a Service instance.
func NewService(logger *slog.Logger, repo Repository, guard Authorizer, imageMgr *images.Manager) *Service {
	return &Service{
		logger:    logger,
		repo:      repo,
		guard:     guard,
		imageMgr:  imageMgr,
		validator: validator.New(),
	}
}

// UpdateProfile authorizes, validates and persists a profile update, then
// discards the replaced image file strictly after the new reference was
// committed. A failing image payload aborts the whole update.
func (s *Service) UpdateProfile(ctx context.Context, creds shared.Credentials, targetID int64, req UpdateRequest) (View, error) {
	if _, err := s.guard.Authorize(ctx, creds, targetID); err != nil {
		return View{}, err
	}

	violations := shared.NewValidationError()
	if err := s.validator.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fieldErr := range fieldErrs {
				switch fieldErr.Field() {
				case "Username":
					violations.Add("username", i18n.KeyUsernameSize)
				case "Email":
					violations.Add("email", i18n.KeyEmailInvalid)
				}
			}
		} else {
			return View{}, err
		}
	}

	// The image is checked even when field validation already failed so the
	// response carries every violation at once; it is only persisted when the
	// update can still go through.
	var newRef string
	if req.Image != nil {
		var imgErr error
		if violations.HasViolations() {
			imgErr = s.imageMgr.Validate(*req.Image)
		} else {
			newRef, imgErr = s.imageMgr.Process(ctx, *req.Image)
		}
		switch {
		case errors.Is(imgErr, images.ErrPayloadTooLarge):
			violations.Add("image", i18n.KeyProfileImageSize)
		case errors.Is(imgErr, images.ErrUnsupportedImageType):
			violations.Add("image", i18n.KeyUnsupportedImageFile)
		case imgErr != nil:
			return View{}, imgErr
		}
	}
	if violations.HasViolations() {
		return View{}, violations
	}

	params := UpdateParams{ID: targetID, Username: req.Username, Email: req.Email}
	if newRef != "" {
		params.Image = &newRef
	}

	updated, prevRef, err := s.repo.Update(ctx, params)
	if err != nil {
		// The update did not commit; remove the file stored for it so no
		// orphan survives the failed request.
		if newRef != "" {
			if derr := s.imageMgr.Discard(ctx, newRef); derr != nil {
				s.logger.Warn("discard uncommitted image", slog.String("ref", newRef), slog.Any("error", derr))
			}
		}
		return View{}, err
	}

	// Discard the replaced file only now that the new reference is durable.
	if newRef != "" && prevRef != "" && prevRef != newRef {
		if err := s.imageMgr.Discard(ctx, prevRef); err != nil {
			s.logger.Warn("discard replaced image", slog.String("ref", prevRef), slog.Any("error", err))
		}
	}

	return NewView(updated), nil
}

// GetUser returns the public view of an active user.
func (s *Service) GetUser(ctx context.Context, id int64) (View, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return View{}, err
	}
	if user.Inactive {
		return View{}, shared.ErrNotFound
	}
	return NewView(user), nil
}
