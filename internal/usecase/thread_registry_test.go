package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"campusmarket/internal/adapter/repository"
	"campusmarket/pkg/errors"
)

func newTestRegistry() *ThreadRegistry {
	return NewThreadRegistry(repository.NewMemoryThreadRepository(), newThreadLocks())
}

func TestFindOrCreateDedup(t *testing.T) {
	registry := newTestRegistry()
	ctx := context.Background()

	first, created, err := registry.FindOrCreate(ctx, "u1", "u2", "item-42")
	assert.NoError(t, err)
	assert.True(t, created)

	// Same pair in reverse order resolves to the same thread.
	second, created, err := registry.FindOrCreate(ctx, "u2", "u1", "item-42")
	assert.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
}

func TestFindOrCreatePerListing(t *testing.T) {
	registry := newTestRegistry()
	ctx := context.Background()

	general, created, err := registry.FindOrCreate(ctx, "u1", "u2", "")
	assert.NoError(t, err)
	assert.True(t, created)

	scoped, created, err := registry.FindOrCreate(ctx, "u1", "u2", "item-42")
	assert.NoError(t, err)
	assert.True(t, created, "per-listing conversation is distinct from the general one")
	assert.NotEqual(t, general.ID, scoped.ID)
}

func TestFindOrCreateRejectsSelf(t *testing.T) {
	registry := newTestRegistry()

	_, _, err := registry.FindOrCreate(context.Background(), "u1", "u1", "")
	assert.True(t, errors.Is(err, "INVALID_PARTICIPANTS"))
}

func TestFindOrCreateConcurrent(t *testing.T) {
	registry := newTestRegistry()
	ctx := context.Background()

	const callers = 16
	ids := make([]string, callers)
	createdCount := 0

	var wg sync.WaitGroup
	var mu sync.Mutex
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, b := "u1", "u2"
			if i%2 == 0 {
				a, b = b, a
			}
			thread, created, err := registry.FindOrCreate(ctx, a, b, "item-42")
			assert.NoError(t, err)
			mu.Lock()
			ids[i] = thread.ID
			if created {
				createdCount++
			}
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, createdCount, "exactly one caller creates the thread")
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

func TestSetArchived(t *testing.T) {
	registry := newTestRegistry()
	ctx := context.Background()

	thread, _, err := registry.FindOrCreate(ctx, "u1", "u2", "")
	assert.NoError(t, err)

	assert.NoError(t, registry.SetArchived(ctx, thread.ID, "u1", true))

	got, err := registry.Get(ctx, thread.ID)
	assert.NoError(t, err)
	assert.True(t, got.ArchivedFor("u1"))
	assert.False(t, got.ArchivedFor("u2"))
}
