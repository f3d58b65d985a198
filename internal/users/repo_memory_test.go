package users_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hoaxify/hoaxify-api/internal/i18n"
	"github.com/hoaxify/hoaxify-api/internal/shared"
	"github.com/hoaxify/hoaxify-api/internal/users"
	_ "github.com/hoaxify/hoaxify-api/testing"
)

func TestMemoryUpdateReturnsPreviousImageRef(t *testing.T) {
	repo := users.NewMemoryRepository()
	user, err := repo.Create(context.Background(), &users.User{
		Username: "user1", Email: "user1@mail.com", PasswordHash: "x",
	})
	require.NoError(t, err)

	first := "first.jpg"
	_, prev, err := repo.Update(context.Background(), users.UpdateParams{ID: user.ID, Image: &first})
	require.NoError(t, err)
	require.Empty(t, prev)

	second := "second.jpg"
	updated, prev, err := repo.Update(context.Background(), users.UpdateParams{ID: user.ID, Image: &second})
	require.NoError(t, err)
	require.Equal(t, "first.jpg", prev)
	require.Equal(t, "second.jpg", updated.Image)
}

func TestMemoryUpdateNilFieldsLeaveValues(t *testing.T) {
	repo := users.NewMemoryRepository()
	user, err := repo.Create(context.Background(), &users.User{
		Username: "user1", Email: "user1@mail.com", PasswordHash: "x", Image: "pic.jpg",
	})
	require.NoError(t, err)

	name := "user1-updated"
	updated, prev, err := repo.Update(context.Background(), users.UpdateParams{ID: user.ID, Username: &name})
	require.NoError(t, err)
	require.Equal(t, "pic.jpg", prev)
	require.Equal(t, "pic.jpg", updated.Image)
	require.Equal(t, "user1@mail.com", updated.Email)
}

func TestMemoryUpdateUnknownUser(t *testing.T) {
	repo := users.NewMemoryRepository()
	_, _, err := repo.Update(context.Background(), users.UpdateParams{ID: 42})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestMemoryUniqueConstraints(t *testing.T) {
	repo := users.NewMemoryRepository()
	_, err := repo.Create(context.Background(), &users.User{
		Username: "user1", Email: "user1@mail.com", PasswordHash: "x",
	})
	require.NoError(t, err)
	second, err := repo.Create(context.Background(), &users.User{
		Username: "user2", Email: "user2@mail.com", PasswordHash: "x",
	})
	require.NoError(t, err)

	taken := "user1@mail.com"
	_, _, err = repo.Update(context.Background(), users.UpdateParams{ID: second.ID, Email: &taken})
	ve, ok := shared.AsValidationError(err)
	require.True(t, ok)
	require.Equal(t, i18n.KeyEmailInUse, ve.Violations["email"])
}

func TestMemoryListImageRefs(t *testing.T) {
	repo := users.NewMemoryRepository()
	_, err := repo.Create(context.Background(), &users.User{
		Username: "user1", Email: "user1@mail.com", PasswordHash: "x", Image: "a.jpg",
	})
	require.NoError(t, err)
	_, err = repo.Create(context.Background(), &users.User{
		Username: "user2", Email: "user2@mail.com", PasswordHash: "x",
	})
	require.NoError(t, err)

	refs, err := repo.ListImageRefs(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"a.jpg"}, refs)
}
