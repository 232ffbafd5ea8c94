package services

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"greendrake/propdesk/internal/models"
	"greendrake/propdesk/internal/storage"
)

// --- Mocks ---

// MockPropertyStore implements store.IPropertyStore
type MockPropertyStore struct {
	mock.Mock
}

func (m *MockPropertyStore) Insert(ctx context.Context, p *models.Property) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPropertyStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyStore) FindMany(ctx context.Context, userID string, page, limit int) (*models.PropertyPage, error) {
	args := m.Called(ctx, userID, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PropertyPage), args.Error(1)
}

func (m *MockPropertyStore) AppendNote(ctx context.Context, id primitive.ObjectID, noteType models.NoteType, note models.Note) (*models.Property, error) {
	args := m.Called(ctx, id, noteType, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyStore) SetImageCaption(ctx context.Context, id primitive.ObjectID, imageKey, caption string) (*models.Property, error) {
	args := m.Called(ctx, id, imageKey, caption)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyStore) EnsureIndexes(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockObjectStore implements storage.IObjectStore
type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) Put(ctx context.Context, ownerID, propertyID string, index int, filename string, content io.Reader, size int64, contentType string) (*storage.StoredObject, error) {
	args := m.Called(ctx, ownerID, propertyID, index, filename, content, size, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.StoredObject), args.Error(1)
}

// MockPropertyCache implements cache.IPropertyCache
type MockPropertyCache struct {
	mock.Mock
}

func (m *MockPropertyCache) Get(ctx context.Context, id string) (*models.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyCache) Set(ctx context.Context, p *models.Property) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPropertyCache) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// memRedis is an in-memory cache.RedisClient. Eval applies the cache's
// version-guarded write: the entry is replaced only by a strictly newer version.
type memRedis struct {
	mu      sync.Mutex
	entries map[string]map[string]string
}

func newMemRedis() *memRedis {
	return &memRedis{entries: make(map[string]map[string]string)}
}

func (r *memRedis) HGetAll(_ context.Context, key string) *redis.MapStringStringCmd {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]string, len(r.entries[key]))
	for k, v := range r.entries[key] {
		out[k] = v
	}
	return redis.NewMapStringStringResult(out, nil)
}

func (r *memRedis) Eval(_ context.Context, _ string, keys []string, args ...interface{}) *redis.Cmd {
	r.mu.Lock()
	defer r.mu.Unlock()
	version := args[0].(int64)
	if cur, ok := r.entries[keys[0]]; ok {
		var stored int64
		if _, err := fmt.Sscan(cur["v"], &stored); err == nil && stored >= version {
			return redis.NewCmdResult(int64(0), nil)
		}
	}
	r.entries[keys[0]] = map[string]string{"v": fmt.Sprint(version), "doc": args[1].(string)}
	return redis.NewCmdResult(int64(1), nil)
}

func (r *memRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := r.entries[k]; ok {
			delete(r.entries, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}
