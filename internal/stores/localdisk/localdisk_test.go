package localdisk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetGetRoundTrip(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("cart", []byte(`[{"_id":"1"}]`)))

	data, err := store.Get("cart")
	require.NoError(t, err)
	assert.Equal(t, `[{"_id":"1"}]`, string(data))
}

func TestGetMissingKey(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get("absent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetOverwrites(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("k", []byte("one")))
	require.NoError(t, store.Set("k", []byte("two")))

	data, err := store.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
}

func TestDelete(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("k", []byte("v")))
	require.NoError(t, store.Delete("k"))

	_, err = store.Get("k")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting a missing key is not an error.
	require.NoError(t, store.Delete("k"))
}

func TestEmptyDirRejected(t *testing.T) {
	_, err := NewStore("")
	require.Error(t, err)
}
