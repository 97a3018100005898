package mem

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	b, err := s.Get(ctx, "/runs/", "missing")
	assert.Nil(t, err)
	assert.Empty(t, b)

	require.Nil(t, s.Set(ctx, "/runs/", "r1", []byte("one")))
	require.Nil(t, s.Set(ctx, "/runs/", "r2", []byte("two")))
	require.Nil(t, s.Set(ctx, "/other/", "r3", []byte("three")))

	b, err = s.Get(ctx, "/runs/", "r1")
	require.Nil(t, err)
	assert.Equal(t, []byte("one"), b)

	keys := make([]string, 0)
	require.Nil(t, s.List(ctx, "/runs/", func(key string) bool {
		keys = append(keys, key)
		return true
	}))
	assert.ElementsMatch(t, []string{"r1", "r2"}, keys)

	// iterator can stop early
	count := 0
	require.Nil(t, s.List(ctx, "/runs/", func(key string) bool {
		count++
		return false
	}))
	assert.Equal(t, 1, count)

	require.Nil(t, s.Remove(ctx, "/runs/", "r1"))
	require.Nil(t, s.Remove(ctx, "/runs/", "r1"))
	b, _ = s.Get(ctx, "/runs/", "r1")
	assert.Empty(t, b)
}
