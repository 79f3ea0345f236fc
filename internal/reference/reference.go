// Package reference 实现购物车项指向任意实体的多态引用（类型标签 + ID）。
package reference

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"gorm.io/gorm"
)

// ErrUnresolved 引用无法解析为实体（类型未注册或记录不存在）
var ErrUnresolved = errors.New("reference unresolved")

// ErrInvalid 引用格式非法
var ErrInvalid = errors.New("reference invalid")

// Ref 多态引用
type Ref struct {
	Type string `json:"type"`
	ID   uint   `json:"id"`
}

// Entity 可被引用的实体
type Entity interface {
	RefType() string
	RefID() uint
}

// Of 生成实体的引用
func Of(entity Entity) Ref {
	if entity == nil {
		return Ref{}
	}
	return Ref{Type: NormalizeType(entity.RefType()), ID: entity.RefID()}
}

// New 构造引用
func New(refType string, id uint) Ref {
	return Ref{Type: NormalizeType(refType), ID: id}
}

// Equal 比较类型与 ID
func (r Ref) Equal(other Ref) bool {
	return NormalizeType(r.Type) == NormalizeType(other.Type) && r.ID == other.ID
}

// IsZero 是否为空引用
func (r Ref) IsZero() bool {
	return strings.TrimSpace(r.Type) == "" || r.ID == 0
}

// Validate 校验引用
func (r Ref) Validate() error {
	if r.IsZero() {
		return fmt.Errorf("%w: %q", ErrInvalid, r.String())
	}
	return nil
}

func (r Ref) String() string {
	return fmt.Sprintf("%s#%d", NormalizeType(r.Type), r.ID)
}

// Parse 解析 "type#id" 格式
func Parse(raw string) (Ref, error) {
	parts := strings.SplitN(strings.TrimSpace(raw), "#", 2)
	if len(parts) != 2 {
		return Ref{}, fmt.Errorf("%w: %q", ErrInvalid, raw)
	}
	id, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return Ref{}, fmt.Errorf("%w: %q", ErrInvalid, raw)
	}
	ref := New(parts[0], uint(id))
	if err := ref.Validate(); err != nil {
		return Ref{}, err
	}
	return ref, nil
}

// NormalizeType 统一类型标签
func NormalizeType(refType string) string {
	return strings.ToLower(strings.TrimSpace(refType))
}

// Loader 按 ID 加载实体，未找到时返回 nil, nil
type Loader func(db *gorm.DB, id uint) (Entity, error)

// Registry 类型标签到加载器的注册表
type Registry struct {
	db      *gorm.DB
	mu      sync.RWMutex
	loaders map[string]Loader
}

// NewRegistry 创建注册表
func NewRegistry(db *gorm.DB) *Registry {
	return &Registry{db: db, loaders: make(map[string]Loader)}
}

// RegisterLoader 注册自定义加载器
func (r *Registry) RegisterLoader(refType string, loader Loader) {
	if r == nil || loader == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaders[NormalizeType(refType)] = loader
}

// Register 以 GORM 模型注册类型，T 的指针需实现 Entity
func Register[T any, PT interface {
	*T
	Entity
}](r *Registry, refType string) {
	r.RegisterLoader(refType, func(db *gorm.DB, id uint) (Entity, error) {
		var record T
		if err := db.First(&record, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil
			}
			return nil, err
		}
		return PT(&record), nil
	})
}

// Known 类型是否已注册
func (r *Registry) Known(refType string) bool {
	if r == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.loaders[NormalizeType(refType)]
	return ok
}

// Types 已注册类型（排序）
func (r *Registry) Types() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.loaders))
	for t := range r.loaders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Resolve 解析引用为实体
// 类型未注册或记录不存在时返回包装的 ErrUnresolved，数据库错误原样返回
func (r *Registry) Resolve(ref Ref) (Entity, error) {
	if err := ref.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnresolved, err)
	}
	if r == nil {
		return nil, fmt.Errorf("%w: registry unavailable", ErrUnresolved)
	}
	r.mu.RLock()
	loader, ok := r.loaders[NormalizeType(ref.Type)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: unknown type %q", ErrUnresolved, ref.Type)
	}
	entity, err := loader(r.db, ref.ID)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnresolved, ref.String())
	}
	return entity, nil
}
