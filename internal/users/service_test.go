package users_test

import (
	"context"
	"encoding/base64"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hoaxify/hoaxify-api/internal/auth"
	"github.com/hoaxify/hoaxify-api/internal/i18n"
	"github.com/hoaxify/hoaxify-api/internal/images"
	"github.com/hoaxify/hoaxify-api/internal/shared"
	"github.com/hoaxify/hoaxify-api/internal/users"
	_ "github.com/hoaxify/hoaxify-api/testing"
)

var jpegPayload = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}

type fixture struct {
	repo    *users.MemoryRepository
	tokens  auth.TokenStore
	store   *images.LocalStore
	service *users.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := users.NewMemoryRepository()
	tokens := auth.NewMemoryTokenStore()
	store, err := images.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	guard := auth.NewGuard(tokens, auth.NewService(repo), repo)
	service := users.NewService(slog.Default(), repo, guard, images.NewManager(store))
	return &fixture{repo: repo, tokens: tokens, store: store, service: service}
}

func (f *fixture) addUser(t *testing.T, username, email string, inactive bool) *users.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("P4ssword"), bcrypt.MinCost)
	require.NoError(t, err)
	user, err := f.repo.Create(context.Background(), &users.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Inactive:     inactive,
	})
	require.NoError(t, err)
	return user
}

func (f *fixture) tokenFor(t *testing.T, userID int64) shared.Credentials {
	t.Helper()
	token, err := f.tokens.Issue(context.Background(), userID)
	require.NoError(t, err)
	return shared.Credentials{Token: token}
}

func strptr(s string) *string { return &s }

func imageBase64(size int) *string {
	buf := make([]byte, size)
	copy(buf, jpegPayload)
	encoded := base64.StdEncoding.EncodeToString(buf)
	return &encoded
}

func TestUpdateProfileUsername(t *testing.T) {
	f := newFixture(t)
	user := f.addUser(t, "user1", "user1@mail.com", false)

	view, err := f.service.UpdateProfile(context.Background(), f.tokenFor(t, user.ID), user.ID,
		users.UpdateRequest{Username: strptr("user1-updated")})
	require.NoError(t, err)
	require.Equal(t, "user1-updated", view.Username)

	stored, err := f.repo.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, "user1-updated", stored.Username)
	require.Equal(t, "user1@mail.com", stored.Email)
}

func TestUpdateProfileForbiddenLeavesRecordUntouched(t *testing.T) {
	f := newFixture(t)
	owner := f.addUser(t, "user1", "user1@mail.com", false)
	other := f.addUser(t, "user2", "user2@mail.com", false)

	_, err := f.service.UpdateProfile(context.Background(), f.tokenFor(t, other.ID), owner.ID,
		users.UpdateRequest{Username: strptr("hijacked")})
	require.ErrorIs(t, err, shared.ErrForbidden)

	stored, err := f.repo.FindByID(context.Background(), owner.ID)
	require.NoError(t, err)
	require.Equal(t, "user1", stored.Username)
}

func TestUpdateProfileAccumulatesViolations(t *testing.T) {
	f := newFixture(t)
	user := f.addUser(t, "user1", "user1@mail.com", false)

	_, err := f.service.UpdateProfile(context.Background(), f.tokenFor(t, user.ID), user.ID,
		users.UpdateRequest{Username: strptr("abc"), Email: strptr("not-an-email")})

	ve, ok := shared.AsValidationError(err)
	require.True(t, ok)
	require.Equal(t, map[string]string{
		"username": i18n.KeyUsernameSize,
		"email":    i18n.KeyEmailInvalid,
	}, ve.Violations)
}

func TestUpdateProfileStoresImage(t *testing.T) {
	f := newFixture(t)
	user := f.addUser(t, "user1", "user1@mail.com", false)

	view, err := f.service.UpdateProfile(context.Background(), f.tokenFor(t, user.ID), user.ID,
		users.UpdateRequest{Username: strptr("user1-updated"), Image: imageBase64(len(jpegPayload))})
	require.NoError(t, err)
	require.NotEmpty(t, view.Image)
	require.FileExists(t, f.store.Path(view.Image))

	stored, err := f.repo.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, view.Image, stored.Image)
}

func TestUpdateProfileReplacesOldImage(t *testing.T) {
	f := newFixture(t)
	user := f.addUser(t, "user1", "user1@mail.com", false)
	creds := f.tokenFor(t, user.ID)

	first, err := f.service.UpdateProfile(context.Background(), creds, user.ID,
		users.UpdateRequest{Image: imageBase64(len(jpegPayload))})
	require.NoError(t, err)

	second, err := f.service.UpdateProfile(context.Background(), creds, user.ID,
		users.UpdateRequest{Image: imageBase64(len(jpegPayload))})
	require.NoError(t, err)

	require.NoFileExists(t, f.store.Path(first.Image))
	require.FileExists(t, f.store.Path(second.Image))
}

func TestUpdateProfileWithoutImageKeepsFile(t *testing.T) {
	f := newFixture(t)
	user := f.addUser(t, "user1", "user1@mail.com", false)
	creds := f.tokenFor(t, user.ID)

	withImage, err := f.service.UpdateProfile(context.Background(), creds, user.ID,
		users.UpdateRequest{Image: imageBase64(len(jpegPayload))})
	require.NoError(t, err)

	renamed, err := f.service.UpdateProfile(context.Background(), creds, user.ID,
		users.UpdateRequest{Username: strptr("user1-updated-twice")})
	require.NoError(t, err)

	require.Equal(t, withImage.Image, renamed.Image)
	require.FileExists(t, f.store.Path(withImage.Image))
}

func TestUpdateProfileImageFailureAbortsUpdate(t *testing.T) {
	f := newFixture(t)
	user := f.addUser(t, "user1", "user1@mail.com", false)

	gif := base64.StdEncoding.EncodeToString([]byte("GIF89a\x01\x00"))
	_, err := f.service.UpdateProfile(context.Background(), f.tokenFor(t, user.ID), user.ID,
		users.UpdateRequest{Username: strptr("user1-updated"), Image: &gif})

	ve, ok := shared.AsValidationError(err)
	require.True(t, ok)
	require.Equal(t, i18n.KeyUnsupportedImageFile, ve.Violations["image"])

	// All-or-nothing: the username change did not land either.
	stored, err := f.repo.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, "user1", stored.Username)
}

func TestUpdateProfileReportsFieldAndImageViolationsTogether(t *testing.T) {
	f := newFixture(t)
	user := f.addUser(t, "user1", "user1@mail.com", false)

	_, err := f.service.UpdateProfile(context.Background(), f.tokenFor(t, user.ID), user.ID,
		users.UpdateRequest{Username: strptr("abc"), Image: imageBase64(images.MaxImageBytes + 1)})

	ve, ok := shared.AsValidationError(err)
	require.True(t, ok)
	require.Equal(t, map[string]string{
		"username": i18n.KeyUsernameSize,
		"image":    i18n.KeyProfileImageSize,
	}, ve.Violations)

	// The failed request must not leave a file behind.
	objects, err := f.store.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, objects)
}

func TestUpdateProfileImageSizeViolation(t *testing.T) {
	f := newFixture(t)
	user := f.addUser(t, "user1", "user1@mail.com", false)
	creds := f.tokenFor(t, user.ID)

	// Boundary inclusive at 2 MiB.
	_, err := f.service.UpdateProfile(context.Background(), creds, user.ID,
		users.UpdateRequest{Image: imageBase64(images.MaxImageBytes)})
	require.NoError(t, err)

	_, err = f.service.UpdateProfile(context.Background(), creds, user.ID,
		users.UpdateRequest{Image: imageBase64(images.MaxImageBytes + 1)})
	ve, ok := shared.AsValidationError(err)
	require.True(t, ok)
	require.Equal(t, i18n.KeyProfileImageSize, ve.Violations["image"])
}

func TestUpdateProfileConcurrentImageUpdates(t *testing.T) {
	f := newFixture(t)
	user := f.addUser(t, "user1", "user1@mail.com", false)
	creds := f.tokenFor(t, user.ID)

	const workers = 8
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.UpdateProfile(context.Background(), creds, user.ID,
				users.UpdateRequest{Image: imageBase64(len(jpegPayload))})
			if err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	// Last writer wins: the live reference and the sole surviving file agree.
	stored, err := f.repo.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.FileExists(t, f.store.Path(stored.Image))

	objects, err := f.store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, objects, 1)
	require.Equal(t, stored.Image, objects[0].Ref)
}

func TestGetUser(t *testing.T) {
	f := newFixture(t)
	active := f.addUser(t, "user1", "user1@mail.com", false)
	dormant := f.addUser(t, "dormant", "dormant@mail.com", true)

	view, err := f.service.GetUser(context.Background(), active.ID)
	require.NoError(t, err)
	require.Equal(t, "user1", view.Username)

	_, err = f.service.GetUser(context.Background(), dormant.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)

	_, err = f.service.GetUser(context.Background(), 999)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
