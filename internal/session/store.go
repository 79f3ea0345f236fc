package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cartkeeper/internal/cache"
)

// Store 会话存储
type Store interface {
	// Load 未找到或已过期时返回 nil, nil
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session, ttl time.Duration) error
	// Touch 只刷新有效期，用于未变更的会话
	Touch(ctx context.Context, id string, ttl time.Duration) error
	Destroy(ctx context.Context, id string) error
}

// NewStore 启用 Redis 时使用 Redis 存储，否则回退为进程内存储
func NewStore() Store {
	if cache.Enabled() {
		return &RedisStore{}
	}
	return NewMemoryStore()
}

func storeKey(id string) string {
	return "session:" + strings.TrimSpace(id)
}

type storedSession struct {
	Values map[string]string `json:"values"`
}

// RedisStore 基于 Redis 的会话存储
type RedisStore struct{}

// Load 读取会话
func (r *RedisStore) Load(ctx context.Context, id string) (*Session, error) {
	if strings.TrimSpace(id) == "" {
		return nil, nil
	}
	var payload storedSession
	hit, err := cache.GetJSON(ctx, storeKey(id), &payload)
	if err != nil {
		return nil, err
	}
	if !hit {
		return nil, nil
	}
	return Restore(id, payload.Values), nil
}

// Save 写入会话并重置有效期
func (r *RedisStore) Save(ctx context.Context, s *Session, ttl time.Duration) error {
	if s == nil {
		return nil
	}
	return cache.SetJSON(ctx, storeKey(s.ID()), storedSession{Values: s.Values()}, ttl)
}

// Touch 刷新有效期
func (r *RedisStore) Touch(ctx context.Context, id string, ttl time.Duration) error {
	if strings.TrimSpace(id) == "" {
		return nil
	}
	return cache.Expire(ctx, storeKey(id), ttl)
}

// Destroy 删除会话
func (r *RedisStore) Destroy(ctx context.Context, id string) error {
	return cache.Del(ctx, storeKey(id))
}

// sweepEvery 每写入多少次清扫一次过期会话
const sweepEvery = 256

type memoryEntry struct {
	values    map[string]string
	expiresAt time.Time
}

// MemoryStore 进程内会话存储（单实例部署与测试使用）
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	saves   int
	now     func() time.Time
}

// NewMemoryStore 创建进程内存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

// Load 读取会话
func (m *MemoryStore) Load(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[storeKey(id)]
	if !ok {
		return nil, nil
	}
	if entry.expired(m.now()) {
		delete(m.entries, storeKey(id))
		return nil, nil
	}
	values := make(map[string]string, len(entry.values))
	for k, v := range entry.values {
		values[k] = v
	}
	return Restore(id, values), nil
}

// Save 写入会话
func (m *MemoryStore) Save(_ context.Context, s *Session, ttl time.Duration) error {
	if s == nil {
		return nil
	}
	entry := memoryEntry{values: s.Values()}
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[storeKey(s.ID())] = entry
	m.saves++
	if m.saves%sweepEvery == 0 {
		m.sweepLocked()
	}
	return nil
}

// Touch 刷新有效期，已过期的会话不会被续期
func (m *MemoryStore) Touch(_ context.Context, id string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := storeKey(id)
	entry, ok := m.entries[key]
	if !ok || entry.expired(m.now()) {
		return nil
	}
	entry.expiresAt = m.now().Add(ttl)
	m.entries[key] = entry
	return nil
}

// Sweep 清除全部过期会话
func (m *MemoryStore) Sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepLocked()
}

func (m *MemoryStore) sweepLocked() {
	now := m.now()
	for key, entry := range m.entries {
		if entry.expired(now) {
			delete(m.entries, key)
		}
	}
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Destroy 删除会话
func (m *MemoryStore) Destroy(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, storeKey(id))
	return nil
}
