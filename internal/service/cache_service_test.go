package service

import (
	"context"
	"encoding/json"
	"errors"
	"path"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-ledger-api/internal/models"
	appErrors "github.com/noah-isme/campus-ledger-api/pkg/errors"
)

type memoryCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	deleted []string
	failGet bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}}
}

func (m *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet {
		return errors.New("redis down")
	}
	raw, ok := m.data[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	return nil
}

func (m *memoryCache) DeleteByPattern(_ context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.data {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.data, key)
			m.deleted = append(m.deleted, key)
		}
	}
	return nil
}

func TestRememberLoadsOnceThenHits(t *testing.T) {
	cache := NewCacheService(newMemoryCache(), NewMetricsService(), time.Minute, nil, true)
	calls := 0
	load := func() (map[string]int, error) {
		calls++
		return map[string]int{"students": 3}, nil
	}

	v, hit, err := remember(context.Background(), cache, "dashboard:ADMIN:a-1", load)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 3, v["students"])

	v, hit, err = remember(context.Background(), cache, "dashboard:ADMIN:a-1", load)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 3, v["students"])
	assert.Equal(t, 1, calls)
}

func TestRememberDisabledAlwaysLoads(t *testing.T) {
	cache := NewCacheService(newMemoryCache(), nil, time.Minute, nil, false)
	calls := 0
	for i := 0; i < 2; i++ {
		_, hit, err := remember(context.Background(), cache, "k", func() (int, error) { calls++; return 1, nil })
		require.NoError(t, err)
		assert.False(t, hit)
	}
	assert.Equal(t, 2, calls)
}

func TestCacheFailureFallsBackToLoad(t *testing.T) {
	mem := newMemoryCache()
	mem.failGet = true
	cache := NewCacheService(mem, nil, time.Minute, nil, true)

	v, hit, err := remember(context.Background(), cache, "k", func() (string, error) { return "fresh", nil })
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "fresh", v)
}

func TestInvalidateDashboards(t *testing.T) {
	mem := newMemoryCache()
	cache := NewCacheService(mem, nil, time.Minute, nil, true)
	ctx := context.Background()
	cache.Set(ctx, DashboardKey(models.RoleStudent, "s-1"), 1, 0)
	cache.Set(ctx, DashboardKey(models.RoleStudent, "s-2"), 1, 0)
	cache.Set(ctx, DashboardKey(models.RoleTeacher, "t-1"), 1, 0)
	cache.Set(ctx, DashboardKey(models.RoleAdmin, "a-1"), 1, 0)

	cache.InvalidateDashboards(ctx, "s-1", "t-1")

	assert.ElementsMatch(t, []string{"dashboard:STUDENT:s-1", "dashboard:TEACHER:t-1", "dashboard:ADMIN:a-1"}, mem.deleted)
	assert.Contains(t, mem.data, "dashboard:STUDENT:s-2")
}
