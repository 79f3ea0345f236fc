package cache

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/cartkeeper/internal/config"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "ck"

// backend 当前进程共享的 Redis 连接，nil 表示缓存关闭，所有操作退化为空操作
var backend *redisBackend

type redisBackend struct {
	client *redis.Client
	prefix string
}

func (b *redisBackend) key(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return b.prefix
	}
	return b.prefix + ":" + raw
}

// InitRedis 按配置创建客户端，未启用时关闭缓存
// 创建时不做连通性检查，需要时调用 Ping
func InitRedis(cfg *config.RedisConfig) error {
	if backend != nil {
		_ = backend.client.Close()
		backend = nil
	}
	if cfg == nil || !cfg.Enabled {
		return nil
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	prefix := strings.TrimSpace(cfg.Prefix)
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	backend = &redisBackend{
		client: redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(host, strconv.Itoa(port)),
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		prefix: prefix,
	}
	return nil
}

// Enabled 缓存是否启用
func Enabled() bool {
	return backend != nil
}

// Client 原始客户端，供限流脚本等直接使用，缓存关闭时为 nil
func Client() *redis.Client {
	if backend == nil {
		return nil
	}
	return backend.client
}

// Close 关闭客户端并关闭缓存
func Close() error {
	if backend == nil {
		return nil
	}
	err := backend.client.Close()
	backend = nil
	return err
}

// Ping 检查连通性，缓存关闭时返回 nil
func Ping(ctx context.Context) error {
	if backend == nil {
		return nil
	}
	return backend.client.Ping(ctx).Err()
}

// GetJSON 读取并反序列化，未命中返回 false
func GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	if backend == nil {
		return false, nil
	}
	raw, err := backend.client.Get(ctx, backend.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON 序列化写入，ttl <= 0 表示不过期
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if backend == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if ttl < 0 {
		ttl = 0
	}
	return backend.client.Set(ctx, backend.key(key), payload, ttl).Err()
}

// Del 删除缓存键
func Del(ctx context.Context, key string) error {
	if backend == nil {
		return nil
	}
	return backend.client.Del(ctx, backend.key(key)).Err()
}

// Expire 刷新键的有效期，键不存在时忽略
func Expire(ctx context.Context, key string, ttl time.Duration) error {
	if backend == nil || ttl <= 0 {
		return nil
	}
	return backend.client.Expire(ctx, backend.key(key), ttl).Err()
}
