// Package images owns the profile image lifecycle: validation, storage under
// fresh random references, and removal of replaced files.
package images

import (
	"context"
	"encoding/base64"
	"errors"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// MaxImageBytes is the decoded size ceiling, boundary inclusive.
const MaxImageBytes = 2 * 1024 * 1024

var (
	// ErrPayloadTooLarge indicates the decoded payload exceeds MaxImageBytes.
	ErrPayloadTooLarge = errors.New("image payload too large")
	// ErrUnsupportedImageType indicates the payload is not a JPEG or PNG.
	ErrUnsupportedImageType = errors.New("unsupported image type")
)

// Manager validates and stores profile images.
type Manager struct {
	store Store
}

// NewManager constructs a Manager on top of a Store.
func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

func (m *Manager) inspect(rawBase64 string) ([]byte, string, error) {
	data, err := base64.StdEncoding.DecodeString(rawBase64)
	if err != nil {
		return nil, "", ErrUnsupportedImageType
	}
	if len(data) > MaxImageBytes {
		return nil, "", ErrPayloadTooLarge
	}

	// Trust the magic bytes, never client-supplied metadata.
	detected := mimetype.Detect(data)
	switch {
	case detected.Is("image/jpeg"):
		return data, ".jpg", nil
	case detected.Is("image/png"):
		return data, ".png", nil
	}
	return nil, "", ErrUnsupportedImageType
}

// Validate runs the size and type checks on rawBase64 without persisting
// anything.
func (m *Manager) Validate(rawBase64 string) error {
	_, _, err := m.inspect(rawBase64)
	return err
}

// Process decodes rawBase64, enforces the size ceiling on the decoded bytes,
// sniffs the content type from the byte signature, and persists the payload
// under a freshly generated reference. The reference is returned only after
// the write succeeded; replacing any previous file is the caller's job and
// must happen after the new reference is committed.
func (m *Manager) Process(ctx context.Context, rawBase64 string) (string, error) {
	data, ext, err := m.inspect(rawBase64)
	if err != nil {
		return "", err
	}
	ref := uuid.NewString() + ext
	if err := m.store.Put(ctx, ref, data); err != nil {
		return "", err
	}
	return ref, nil
}

// Discard removes a stored reference. Unknown references are a no-op.
func (m *Manager) Discard(ctx context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	return m.store.Delete(ctx, ref)
}
