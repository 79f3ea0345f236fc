package service

import (
	"context"
	"time"

	"github.com/cartkeeper/internal/cache"
	"github.com/cartkeeper/internal/config"
	"github.com/cartkeeper/internal/logger"
	"github.com/cartkeeper/internal/models"
	"github.com/cartkeeper/internal/queue"
	"github.com/cartkeeper/internal/reference"
	"github.com/cartkeeper/internal/repository"
)

// CartPurgeScheduler 清理任务投递
type CartPurgeScheduler interface {
	Enabled() bool
	EnqueueCartPurgeStale(payload queue.CartPurgeStalePayload) error
}

// CartAdminService 后台购物车巡检与维护
type CartAdminService struct {
	cfg       config.CartConfig
	cartRepo  repository.CartRepository
	itemRepo  repository.CartItemRepository
	resolver  *CartResolver
	scheduler CartPurgeScheduler
}

// NewCartAdminService 创建后台购物车服务
func NewCartAdminService(cfg config.CartConfig, cartRepo repository.CartRepository, itemRepo repository.CartItemRepository, resolver *CartResolver, scheduler CartPurgeScheduler) *CartAdminService {
	return &CartAdminService{
		cfg:       cfg,
		cartRepo:  cartRepo,
		itemRepo:  itemRepo,
		resolver:  resolver,
		scheduler: scheduler,
	}
}

// ListCarts 购物车列表
func (s *CartAdminService) ListCarts(filter repository.CartListFilter) ([]models.Cart, int64, error) {
	return s.cartRepo.List(filter)
}

// GetCart 购物车详情
func (s *CartAdminService) GetCart(id uint) (*models.Cart, error) {
	cart, err := s.cartRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, ErrCartNotFound
	}
	return cart, nil
}

// DeleteCart 删除购物车及其购物车项
func (s *CartAdminService) DeleteCart(id uint) error {
	if _, err := s.GetCart(id); err != nil {
		return err
	}
	return s.cartRepo.Delete(id)
}

// CountUserCarts 统计用户全部购物车
func (s *CartAdminService) CountUserCarts(userID uint) (int64, error) {
	return s.resolver.CountCarts(userID)
}

// ResolveItemProduct 解析购物车项引用的实体
func (s *CartAdminService) ResolveItemProduct(itemID uint) (*models.CartItem, reference.Entity, error) {
	item, err := s.itemRepo.GetByID(itemID)
	if err != nil {
		return nil, nil, err
	}
	if item == nil {
		return nil, nil, ErrItemNotFound
	}
	entity, err := s.resolver.ResolveReference(item.Ref())
	if err != nil {
		return item, nil, err
	}
	return item, entity, nil
}

// StaleBefore 闲置匿名购物车的判定时间点
func (s *CartAdminService) StaleBefore(now time.Time) time.Time {
	hours := s.cfg.AnonymousTTLHours
	if hours <= 0 {
		hours = 720
	}
	return now.Add(-time.Duration(hours) * time.Hour)
}

func (s *CartAdminService) batchSize() int {
	if s.cfg.PurgeBatchSize <= 0 {
		return 200
	}
	return s.cfg.PurgeBatchSize
}

// PurgeStale 分批清理闲置匿名购物车
func (s *CartAdminService) PurgeStale(before time.Time, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = s.batchSize()
	}
	var total int64
	for {
		affected, err := s.cartRepo.DeleteStaleAnonymous(before, batchSize)
		if err != nil {
			return total, err
		}
		total += affected
		if affected < int64(batchSize) {
			break
		}
	}
	if total > 0 {
		logger.Infow("cart_purge_stale_done", "purged", total, "before", before)
	}
	return total, nil
}

// RequestPurge 队列可用时异步清理，否则同步执行
func (s *CartAdminService) RequestPurge(now time.Time) (bool, int64, error) {
	before := s.StaleBefore(now)
	if s.scheduler != nil && s.scheduler.Enabled() {
		payload := queue.CartPurgeStalePayload{Before: before, BatchSize: s.batchSize()}
		if err := s.scheduler.EnqueueCartPurgeStale(payload); err != nil {
			logger.Warnw("cart_purge_enqueue_failed", "error", err)
		} else {
			return true, 0, nil
		}
	}
	purged, err := s.PurgeStale(before, s.batchSize())
	return false, purged, err
}

// SnapshotCheckedOut 缓存已结账购物车的汇总快照
func (s *CartAdminService) SnapshotCheckedOut(ctx context.Context, cartID uint) (*cache.CartSnapshot, error) {
	cart, err := s.GetCart(cartID)
	if err != nil {
		return nil, err
	}
	if !cart.CheckedOut {
		return nil, ErrCartNotCheckedOut
	}
	summary := SummarizeCart(cart)
	snapshot := &cache.CartSnapshot{
		CartID:        cart.ID,
		UserID:        cart.UserID,
		ItemCount:     summary.ItemCount,
		TotalQuantity: summary.TotalQuantity.String(),
		TotalPrice:    summary.TotalPrice.String(),
	}
	if cart.CheckedOutAt != nil {
		snapshot.CheckedOutAt = *cart.CheckedOutAt
	}
	ttl := time.Duration(s.cfg.SnapshotTTLHours) * time.Hour
	if err := cache.SetCartSnapshot(ctx, snapshot, ttl); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// GetCheckoutSnapshot 读取结账快照，缓存未命中时实时计算
func (s *CartAdminService) GetCheckoutSnapshot(ctx context.Context, cartID uint) (*cache.CartSnapshot, error) {
	snapshot, hit, err := cache.GetCartSnapshot(ctx, cartID)
	if err == nil && hit && snapshot != nil {
		return snapshot, nil
	}
	return s.SnapshotCheckedOut(ctx, cartID)
}
