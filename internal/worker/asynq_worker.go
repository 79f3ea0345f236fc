package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/cartkeeper/internal/logger"
	"github.com/cartkeeper/internal/provider"
	"github.com/cartkeeper/internal/queue"
	"github.com/cartkeeper/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
	now func() time.Time
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
		now:       time.Now,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskCartCheckedOut, c.handleCartCheckedOut)
	mux.HandleFunc(queue.TaskCartPurgeStale, c.handleCartPurgeStale)
}

// handleCartCheckedOut 为已结账购物车生成汇总快照
func (c *Consumer) handleCartCheckedOut(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_cart_checked_out_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.CartCheckedOutPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_cart_checked_out_unmarshal_failed", "error", err)
		return err
	}
	if payload.CartID == 0 {
		logger.Debugw("worker_cart_checked_out_skip_invalid_payload", "cart_id", payload.CartID)
		return nil
	}
	if c.CartAdminService == nil {
		logger.Warnw("worker_cart_checked_out_skip_service_nil", "cart_id", payload.CartID)
		return nil
	}
	snapshot, err := c.CartAdminService.SnapshotCheckedOut(ctx, payload.CartID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCartNotFound):
			logger.Debugw("worker_cart_checked_out_skip_cart_not_found", "cart_id", payload.CartID)
			return nil
		case errors.Is(err, service.ErrCartNotCheckedOut):
			logger.Debugw("worker_cart_checked_out_skip_not_checked_out", "cart_id", payload.CartID)
			return nil
		default:
			logger.Warnw("worker_cart_checked_out_snapshot_failed", "cart_id", payload.CartID, "error", err)
			return err
		}
	}
	logger.Infow("worker_cart_checked_out_snapshot_saved",
		"cart_id", snapshot.CartID,
		"item_count", snapshot.ItemCount,
		"total_price", snapshot.TotalPrice,
	)
	return nil
}

// handleCartPurgeStale 清理闲置匿名购物车
func (c *Consumer) handleCartPurgeStale(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_cart_purge_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.CartPurgeStalePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_cart_purge_unmarshal_failed", "error", err)
		return err
	}
	if c.CartAdminService == nil {
		logger.Warnw("worker_cart_purge_skip_service_nil")
		return nil
	}
	before := payload.Before
	if before.IsZero() {
		before = c.CartAdminService.StaleBefore(c.now())
	}
	purged, err := c.CartAdminService.PurgeStale(before, payload.BatchSize)
	if err != nil {
		logger.Warnw("worker_cart_purge_failed", "before", before, "purged", purged, "error", err)
		return err
	}
	logger.Debugw("worker_cart_purge_done", "before", before, "purged", purged)
	return nil
}
