package cache

import (
	"context"
	"fmt"
	"time"
)

// idSlot 以数值 ID 区分的一类 JSON 缓存，ID 为 0 时所有操作为空操作
type idSlot[T any] struct {
	namespace string
	ttl       time.Duration
}

func (s idSlot[T]) key(id uint) string {
	return fmt.Sprintf("%s:%d", s.namespace, id)
}

func (s idSlot[T]) get(ctx context.Context, id uint) (*T, bool, error) {
	if id == 0 {
		return nil, false, nil
	}
	var value T
	hit, err := GetJSON(ctx, s.key(id), &value)
	if err != nil || !hit {
		return nil, false, err
	}
	return &value, true, nil
}

func (s idSlot[T]) set(ctx context.Context, id uint, value *T, ttl time.Duration) error {
	if id == 0 || value == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = s.ttl
	}
	return SetJSON(ctx, s.key(id), value, ttl)
}

func (s idSlot[T]) del(ctx context.Context, id uint) error {
	if id == 0 {
		return nil
	}
	return Del(ctx, s.key(id))
}
