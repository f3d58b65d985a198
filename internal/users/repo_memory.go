package users

import (
	"context"
	"sync"
	"time"

	"github.com/hoaxify/hoaxify-api/internal/i18n"
	"github.com/hoaxify/hoaxify-api/internal/shared"
)

// MemoryRepository is a mutex-guarded in-memory Repository. Each test run
// instantiates its own store, so suites never share state.
type MemoryRepository struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*User
}

// NewMemoryRepository constructs an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{nextID: 1, byID: make(map[int64]*User)}
}

// Create inserts a user, enforcing the same uniqueness rules as the schema.
func (r *MemoryRepository) Create(ctx context.Context, user *User) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Email == user.Email {
			ve := shared.NewValidationError()
			ve.Add("email", i18n.KeyEmailInUse)
			return nil, ve
		}
		if existing.Username == user.Username {
			ve := shared.NewValidationError()
			ve.Add("username", i18n.KeyUsernameInUse)
			return nil, ve
		}
	}
	stored := *user
	stored.ID = r.nextID
	now := time.Now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.nextID++
	r.byID[stored.ID] = &stored
	copied := stored
	return &copied, nil
}

// FindByID fetches a user by id.
func (r *MemoryRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

// FindByEmail fetches a user by email.
func (r *MemoryRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.byID {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

// Update applies params under the lock and returns the replaced image ref,
// mirroring the row-lock semantics of the PostgreSQL implementation.
func (r *MemoryRepository) Update(ctx context.Context, params UpdateParams) (*User, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[params.ID]
	if !ok {
		return nil, "", shared.ErrNotFound
	}
	if params.Username != nil {
		for _, other := range r.byID {
			if other.ID != user.ID && other.Username == *params.Username {
				ve := shared.NewValidationError()
				ve.Add("username", i18n.KeyUsernameInUse)
				return nil, "", ve
			}
		}
	}
	if params.Email != nil {
		for _, other := range r.byID {
			if other.ID != user.ID && other.Email == *params.Email {
				ve := shared.NewValidationError()
				ve.Add("email", i18n.KeyEmailInUse)
				return nil, "", ve
			}
		}
	}
	prev := user.Image
	if params.Username != nil {
		user.Username = *params.Username
	}
	if params.Email != nil {
		user.Email = *params.Email
	}
	if params.Image != nil {
		user.Image = *params.Image
	}
	user.UpdatedAt = time.Now().UTC()
	copied := *user
	return &copied, prev, nil
}

// ListImageRefs returns all live image references.
func (r *MemoryRepository) ListImageRefs(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var refs []string
	for _, user := range r.byID {
		if user.Image != "" {
			refs = append(refs, user.Image)
		}
	}
	return refs, nil
}

var _ Repository = (*MemoryRepository)(nil)
