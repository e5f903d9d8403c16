package session

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prohmpiriya/ecom-storefront/internal/credential"
)

func TestRegistry_BootstrapsOncePerSession(t *testing.T) {
	var built int32
	backends := map[string]*credential.MemoryBackend{}
	var mu sync.Mutex

	factory := func(sid string) *Manager {
		atomic.AddInt32(&built, 1)
		mu.Lock()
		b := credential.NewMemoryBackend()
		backends[sid] = b
		mu.Unlock()
		return NewManager(Config{Store: credential.NewStore(b), API: new(MockAuthAPI)})
	}
	reg := NewRegistry(factory, time.Hour, nil)

	var wg sync.WaitGroup
	managers := make([]*Manager, 20)
	for i := range managers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m, err := reg.Get(context.Background(), "sid-1")
			assert.NoError(t, err)
			managers[i] = m
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&built))
	for _, m := range managers {
		assert.Same(t, managers[0], m)
	}

	other, err := reg.Get(context.Background(), "sid-2")
	require.NoError(t, err)
	assert.NotSame(t, managers[0], other)
	assert.Equal(t, 2, reg.Len())
}

func TestRegistry_EmptyID(t *testing.T) {
	reg := NewRegistry(func(string) *Manager { return nil }, 0, nil)
	_, err := reg.Get(context.Background(), "")
	assert.Error(t, err)
}

func TestRegistry_SweepEvictsIdle(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	factory := func(string) *Manager {
		return NewManager(Config{Store: credential.NewStore(credential.NewMemoryBackend()), API: new(MockAuthAPI)})
	}
	reg := NewRegistry(factory, 30*time.Minute, nil)
	reg.now = func() time.Time { return now }

	ctx := context.Background()
	_, err := reg.Get(ctx, "old")
	require.NoError(t, err)

	now = now.Add(20 * time.Minute)
	_, err = reg.Get(ctx, "fresh")
	require.NoError(t, err)

	now = now.Add(15 * time.Minute)
	assert.Equal(t, 1, reg.Sweep())
	assert.Equal(t, 1, reg.Len())

	reg.Forget("fresh")
	assert.Equal(t, 0, reg.Len())
}
