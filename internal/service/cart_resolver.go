package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cartkeeper/internal/constants"
	"github.com/cartkeeper/internal/logger"
	"github.com/cartkeeper/internal/models"
	"github.com/cartkeeper/internal/queue"
	"github.com/cartkeeper/internal/reference"
	"github.com/cartkeeper/internal/repository"
)

// SessionBag 请求会话键值袋
type SessionBag interface {
	Get(key string) (string, bool)
	Set(key, value string)
}

// CartRequest 解析当前购物车所需的请求信息
type CartRequest struct {
	UserID  uint       // 已登录用户 ID，0 表示匿名
	Session SessionBag // 匿名流程读写购物车 ID
}

// CartEventPublisher 购物车事件发布
type CartEventPublisher interface {
	EnqueueCartCheckedOut(payload queue.CartCheckedOutPayload) error
}

// CartResolver 按请求查找或创建当前购物车
type CartResolver struct {
	cartRepo repository.CartRepository
	itemRepo repository.CartItemRepository
	registry *reference.Registry
	events   CartEventPublisher
	now      func() time.Time
}

// NewCartResolver 创建购物车解析器
func NewCartResolver(cartRepo repository.CartRepository, itemRepo repository.CartItemRepository, registry *reference.Registry, events CartEventPublisher) *CartResolver {
	return &CartResolver{
		cartRepo: cartRepo,
		itemRepo: itemRepo,
		registry: registry,
		events:   events,
		now:      time.Now,
	}
}

// Resolve 解析当前购物车
// 登录用户使用其最新未结账购物车，匿名请求使用会话中记录的购物车，均不存在时新建
func (r *CartResolver) Resolve(req CartRequest) (*CartProxy, error) {
	var (
		cart *models.Cart
		err  error
	)
	if req.UserID != 0 {
		cart, err = r.resolveUserCart(req.UserID)
	} else {
		cart, err = r.resolveAnonymousCart(req.Session)
	}
	if err != nil {
		return nil, err
	}
	return r.Bind(cart), nil
}

// Bind 将已有购物车包装为代理
func (r *CartResolver) Bind(cart *models.Cart) *CartProxy {
	return &CartProxy{cart: cart, resolver: r}
}

func (r *CartResolver) resolveUserCart(userID uint) (*models.Cart, error) {
	cart, err := r.cartRepo.GetLastOpenByUser(userID)
	if err != nil {
		return nil, err
	}
	if cart != nil {
		return cart, nil
	}

	owner := userID
	cart = &models.Cart{UserID: &owner, CreationDate: r.now()}
	createErr := r.cartRepo.Create(cart)
	if createErr == nil {
		logger.Debugw("cart_created", "cart_id", cart.ID, "user_id", userID)
		return cart, nil
	}

	// 并发请求已创建了未结账购物车时唯一索引拒绝写入，重新读取即可
	existing, err := r.cartRepo.GetLastOpenByUser(userID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, createErr
	}
	logger.Debugw("cart_create_conflict_reused", "cart_id", existing.ID, "user_id", userID, "error", createErr)
	return existing, nil
}

func (r *CartResolver) resolveAnonymousCart(bag SessionBag) (*models.Cart, error) {
	if bag != nil {
		if raw, ok := bag.Get(constants.SessionCartKey); ok {
			if id, parseErr := strconv.ParseUint(strings.TrimSpace(raw), 10, 64); parseErr == nil && id > 0 {
				cart, err := r.cartRepo.GetOpenByID(uint(id))
				if err != nil {
					return nil, err
				}
				if cart != nil {
					return cart, nil
				}
			}
		}
	}

	cart := &models.Cart{CreationDate: r.now()}
	if err := r.cartRepo.Create(cart); err != nil {
		return nil, err
	}
	if bag != nil {
		bag.Set(constants.SessionCartKey, strconv.FormatUint(uint64(cart.ID), 10))
	}
	logger.Debugw("cart_created", "cart_id", cart.ID, "anonymous", true)
	return cart, nil
}

// DeleteUserLastCart 删除用户未结账购物车，不存在时忽略
func (r *CartResolver) DeleteUserLastCart(userID uint) error {
	cart, err := r.cartRepo.GetLastOpenByUser(userID)
	if err != nil {
		return err
	}
	if cart == nil {
		return nil
	}
	return r.cartRepo.Delete(cart.ID)
}

// CountCarts 统计用户全部购物车
func (r *CartResolver) CountCarts(userID uint) (int64, error) {
	return r.cartRepo.CountByUser(userID)
}

// GetUserLastCart 获取用户最新的未结账购物车，不会创建
func (r *CartResolver) GetUserLastCart(userID uint) (*models.Cart, error) {
	cart, err := r.cartRepo.GetLastOpenByUser(userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, ErrCartNotFound
	}
	return cart, nil
}

// ResolveReference 解析商品引用
func (r *CartResolver) ResolveReference(ref reference.Ref) (reference.Entity, error) {
	entity, err := r.registry.Resolve(ref)
	if err != nil {
		if errors.Is(err, reference.ErrUnresolved) {
			return nil, wrapUnresolved(ref)
		}
		return nil, err
	}
	return entity, nil
}

func wrapUnresolved(ref reference.Ref) error {
	return fmt.Errorf("%w: %s", ErrReferenceUnresolved, ref.String())
}
