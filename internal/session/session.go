// Package session 提供服务端会话键值袋，购物车通过它记住匿名购物车 ID。
package session

import (
	"crypto/subtle"
	"strings"
	"sync"

	"github.com/cartkeeper/internal/constants"

	"github.com/google/uuid"
)

// Session 服务端会话
type Session struct {
	id     string
	isNew  bool
	mu     sync.RWMutex
	values map[string]string
	dirty  bool
}

// New 创建新会话
func New() *Session {
	return &Session{
		id:     uuid.NewString(),
		isNew:  true,
		values: make(map[string]string),
	}
}

// Restore 由存储层恢复会话
func Restore(id string, values map[string]string) *Session {
	if values == nil {
		values = make(map[string]string)
	}
	return &Session{id: id, values: values}
}

// ID 会话 ID
func (s *Session) ID() string {
	return s.id
}

// IsNew 本次请求新建的会话
func (s *Session) IsNew() bool {
	return s.isNew
}

// Dirty 会话内容是否被修改
func (s *Session) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// Get 读取值
func (s *Session) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Set 写入值
func (s *Session) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.values[key]; ok && old == value {
		return
	}
	s.values[key] = value
	s.dirty = true
}

// Delete 删除值
func (s *Session) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; !ok {
		return
	}
	delete(s.values, key)
	s.dirty = true
}

// Values 值的副本
func (s *Session) Values() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// EnsureCSRFToken 返回会话的 CSRF 令牌，不存在时生成
func (s *Session) EnsureCSRFToken() string {
	if token, ok := s.Get(constants.SessionCSRFKey); ok && token != "" {
		return token
	}
	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	s.Set(constants.SessionCSRFKey, token)
	return token
}

// ValidCSRFToken 校验请求携带的 CSRF 令牌
func (s *Session) ValidCSRFToken(token string) bool {
	expected, ok := s.Get(constants.SessionCSRFKey)
	token = strings.TrimSpace(token)
	if !ok || expected == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(token)) == 1
}
