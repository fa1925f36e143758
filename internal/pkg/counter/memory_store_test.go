package counter

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreCounters(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	n, err := store.Incr(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = store.IncrBy(ctx, "k", 4)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	n, err = store.GetDel(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	// GetDel 之后归零
	n, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMemoryStoreSets(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.SAdd(ctx, "s", "a", "b", "a"))
	members, err := store.SMembers(ctx, "s")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, members)

	require.NoError(t, store.SRem(ctx, "s", "a"))
	members, _ = store.SMembers(ctx, "s")
	assert.Equal(t, []string{"b"}, members)
}

func TestMemoryStoreHashes(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.HSet(ctx, "h", map[string]string{"a": "1"}))
	require.NoError(t, store.HSet(ctx, "h", map[string]string{"b": "2"}))

	fields, err := store.HGetAll(ctx, "h")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, fields)
}

func TestMemoryStoreConcurrentIncr(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = store.Incr(ctx, "hot")
			}
		}()
	}
	wg.Wait()

	n, err := store.Get(ctx, "hot")
	require.NoError(t, err)
	assert.Equal(t, int64(1600), n)
}
