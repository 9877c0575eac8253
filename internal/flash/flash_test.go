package flash

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPopIsReadOnce(t *testing.T) {
	store := NewStore()
	key := store.Put([]string{"customer name already exists"}, DefaultTTL)

	messages, ok := store.Pop(key)
	require.True(t, ok)
	assert.Equal(t, []string{"customer name already exists"}, messages)

	_, ok = store.Pop(key)
	assert.False(t, ok)
}

func TestPopUnknownKey(t *testing.T) {
	store := NewStore()
	_, ok := store.Pop("no-such-key")
	assert.False(t, ok)
}

func TestEntriesExpire(t *testing.T) {
	store := NewStore()
	key := store.Put([]string{"stale"}, 10*time.Millisecond)

	time.Sleep(30 * time.Millisecond)

	_, ok := store.Pop(key)
	assert.False(t, ok)
}

func TestSetReplacesExistingEntry(t *testing.T) {
	store := NewStore()
	store.Set("k", []string{"first"}, DefaultTTL)
	store.Set("k", []string{"second"}, DefaultTTL)

	messages, ok := store.Pop("k")
	require.True(t, ok)
	assert.Equal(t, []string{"second"}, messages)
}

func TestPutKeysAreUnique(t *testing.T) {
	store := NewStore()
	k1 := store.Put([]string{"a"}, DefaultTTL)
	k2 := store.Put([]string{"b"}, DefaultTTL)
	assert.NotEqual(t, k1, k2)
}
