package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hoaxify/hoaxify-api/internal/i18n"
	"github.com/hoaxify/hoaxify-api/internal/shared"
)

// UpdateParams carries the fields of a profile update. Nil pointers leave the
// stored value untouched.
type UpdateParams struct {
	ID       int64
	Username *string
	Email    *string
	Image    *string
}

// Repository defines persistence operations for users.
type Repository interface {
	FindByID(ctx context.Context, id int64) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	// Update applies params atomically and returns the updated user together
	// with the image reference the row held before the update ("" when none).
	// Atomicity of the previous-reference read is what keeps concurrent
	// updates from discarding a file the live record still points to.
	Update(ctx context.Context, params UpdateParams) (*User, string, error)
	// ListImageRefs returns every image reference currently held by a user row.
	ListImageRefs(ctx context.Context) ([]string, error)
	Create(ctx context.Context, user *User) (*User, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository constructs a PostgreSQL repository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const userColumns = `id, username, email, password_hash, inactive, image, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	var image *string
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Inactive, &image, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if image != nil {
		u.Image = *image
	}
	return &u, nil
}

// FindByID fetches a user by primary key.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// FindByEmail fetches a user by email.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// Update applies the profile changes and returns the previous image reference
// read under the same row lock as the write.
func (r *PGRepository) Update(ctx context.Context, params UpdateParams) (*User, string, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users u
		SET username = COALESCE($2, u.username),
		    email = COALESCE($3, u.email),
		    image = COALESCE($4, u.image),
		    updated_at = now()
		FROM (SELECT id, image FROM users WHERE id = $1 FOR UPDATE) prev
		WHERE u.id = prev.id
		RETURNING u.id, u.username, u.email, u.password_hash, u.inactive, u.image, u.created_at, u.updated_at, prev.image`,
		params.ID, params.Username, params.Email, params.Image)

	var u User
	var image, prevImage *string
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Inactive, &image, &u.CreatedAt, &u.UpdatedAt, &prevImage); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", shared.ErrNotFound
		}
		return nil, "", mapConstraintError(err)
	}
	if image != nil {
		u.Image = *image
	}
	prev := ""
	if prevImage != nil {
		prev = *prevImage
	}
	return &u, prev, nil
}

// ListImageRefs returns all live image references.
func (r *PGRepository) ListImageRefs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT image FROM users WHERE image IS NOT NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var refs []string
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// Create inserts a user. Used by the seed script and integration setup.
func (r *PGRepository) Create(ctx context.Context, user *User) (*User, error) {
	var image *string
	if user.Image != "" {
		image = &user.Image
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, inactive, image)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		user.Username, user.Email, user.PasswordHash, user.Inactive, image)
	created, err := scanUser(row)
	if err != nil {
		return nil, mapConstraintError(err)
	}
	return created, nil
}

// mapConstraintError translates unique violations into field validation
// failures so callers surface them as 400s rather than 500s.
func mapConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		ve := shared.NewValidationError()
		switch pgErr.ConstraintName {
		case "users_email_key":
			ve.Add("email", i18n.KeyEmailInUse)
		case "users_username_key":
			ve.Add("username", i18n.KeyUsernameInUse)
		default:
			ve.Add("general", i18n.KeyValidationFailure)
		}
		return ve
	}
	return err
}

var _ Repository = (*PGRepository)(nil)
