package media

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndOpen(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	name := Filename(time.UnixMilli(1700000000000), "3EB0ABC123", "image/jpeg")
	assert.Equal(t, "1700000000000-3EB0ABC123.jpg", name)

	saved, err := store.Save(name, []byte("jpegdata"))
	require.NoError(t, err)
	assert.Equal(t, name, saved)

	data, contentType, err := store.Open(name)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpegdata"), data)
	assert.Equal(t, "image/jpeg", contentType)
}

func TestFilenameSanitizesMessageID(t *testing.T) {
	name := Filename(time.UnixMilli(1), "true_1234@c.us_ABC", "application/pdf")
	assert.True(t, SafeName(name), "generated name %q must be safe", name)
	assert.Equal(t, "1-true_1234_c_us_ABC.pdf", name)
}

func TestSafeNameRejectsTraversal(t *testing.T) {
	for _, name := range []string{
		"",
		"../etc/passwd",
		"..",
		".hidden",
		"a/b.jpg",
		"a\\b.jpg",
		"name with space.jpg",
		"semi;colon.jpg",
	} {
		assert.False(t, SafeName(name), "name %q must be rejected", name)
	}
}

func TestOpenRefusesUnsafeName(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, _, err = store.Open("../../secret")
	assert.ErrorIs(t, err, ErrUnsafeFilename)
}

func TestUnknownMimeFallsBackToBin(t *testing.T) {
	name := Filename(time.UnixMilli(2), "id", "application/x-never-heard-of-it")
	assert.Equal(t, "2-id.bin", name)
}
