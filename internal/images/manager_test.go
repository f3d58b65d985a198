package images_test

import (
	"context"
	"encoding/base64"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hoaxify/hoaxify-api/internal/images"
	_ "github.com/hoaxify/hoaxify-api/testing"
)

var (
	jpegMagic = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}
	pngMagic  = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D, 'I', 'H', 'D', 'R'}
)

func newManager(t *testing.T) (*images.Manager, *images.LocalStore) {
	t.Helper()
	store, err := images.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	return images.NewManager(store), store
}

// payload builds a byte slice of the given total size starting with prefix.
func payload(prefix []byte, size int) []byte {
	buf := make([]byte, size)
	copy(buf, prefix)
	return buf
}

func encode(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

func TestProcessStoresJPEG(t *testing.T) {
	manager, store := newManager(t)

	ref, err := manager.Process(context.Background(), encode(jpegMagic))
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(ref, ".jpg"))

	stored, err := os.ReadFile(store.Path(ref))
	require.NoError(t, err)
	require.Equal(t, jpegMagic, stored)
}

func TestProcessStoresPNG(t *testing.T) {
	manager, store := newManager(t)

	ref, err := manager.Process(context.Background(), encode(pngMagic))
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(ref, ".png"))
	require.FileExists(t, store.Path(ref))
}

func TestProcessGeneratesFreshReferences(t *testing.T) {
	manager, _ := newManager(t)

	first, err := manager.Process(context.Background(), encode(jpegMagic))
	require.NoError(t, err)
	second, err := manager.Process(context.Background(), encode(jpegMagic))
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestProcessSizeBoundary(t *testing.T) {
	manager, _ := newManager(t)

	// Exactly 2 MiB decoded is accepted.
	atLimit := payload(jpegMagic, images.MaxImageBytes)
	_, err := manager.Process(context.Background(), encode(atLimit))
	require.NoError(t, err)

	// One byte over is rejected before any type check.
	overLimit := payload(jpegMagic, images.MaxImageBytes+1)
	_, err = manager.Process(context.Background(), encode(overLimit))
	require.ErrorIs(t, err, images.ErrPayloadTooLarge)
}

func TestProcessRejectsDisallowedTypes(t *testing.T) {
	manager, store := newManager(t)

	cases := map[string][]byte{
		"gif":   []byte("GIF89a\x01\x00\x01\x00"),
		"pdf":   []byte("%PDF-1.4\n%fake"),
		"text":  []byte("just some plain text pretending to be an image"),
		"empty": {},
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := manager.Process(context.Background(), encode(data))
			require.ErrorIs(t, err, images.ErrUnsupportedImageType)
		})
	}

	// Nothing may be persisted for rejected payloads.
	refs, err := store.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, refs)
}

func TestProcessRejectsInvalidBase64(t *testing.T) {
	manager, _ := newManager(t)

	_, err := manager.Process(context.Background(), "not/base64!!")
	require.ErrorIs(t, err, images.ErrUnsupportedImageType)
}

func TestDiscardIsIdempotent(t *testing.T) {
	manager, store := newManager(t)

	ref, err := manager.Process(context.Background(), encode(jpegMagic))
	require.NoError(t, err)

	require.NoError(t, manager.Discard(context.Background(), ref))
	require.NoFileExists(t, store.Path(ref))

	// Discarding again, or discarding an unknown ref, is a no-op.
	require.NoError(t, manager.Discard(context.Background(), ref))
	require.NoError(t, manager.Discard(context.Background(), "never-stored.png"))
	require.NoError(t, manager.Discard(context.Background(), ""))
}

func TestLocalStoreList(t *testing.T) {
	store, err := images.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put(context.Background(), "a.jpg", []byte{1}))
	require.NoError(t, store.Put(context.Background(), "b.png", []byte{2}))

	objects, err := store.List(context.Background())
	require.NoError(t, err)

	refs := make([]string, 0, len(objects))
	for _, obj := range objects {
		refs = append(refs, obj.Ref)
		require.WithinDuration(t, time.Now(), obj.ModTime, time.Minute)
	}
	require.ElementsMatch(t, []string{"a.jpg", "b.png"}, refs)
}

func TestValidateChecksWithoutStoring(t *testing.T) {
	manager, store := newManager(t)

	require.NoError(t, manager.Validate(encode(jpegMagic)))
	require.NoError(t, manager.Validate(encode(pngMagic)))

	tooLarge := payload(jpegMagic, images.MaxImageBytes+1)
	require.ErrorIs(t, manager.Validate(encode(tooLarge)), images.ErrPayloadTooLarge)
	require.ErrorIs(t, manager.Validate(encode([]byte("GIF89a\x01\x00"))), images.ErrUnsupportedImageType)
	require.ErrorIs(t, manager.Validate("not/base64!!"), images.ErrUnsupportedImageType)

	objects, err := store.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, objects)
}
