package cache

import (
	"context"
	"time"
)

// CartSnapshot 结账时的购物车汇总快照
type CartSnapshot struct {
	CartID        uint      `json:"cart_id"`
	UserID        *uint     `json:"user_id"`
	ItemCount     int       `json:"item_count"`
	TotalQuantity string    `json:"total_quantity"`
	TotalPrice    string    `json:"total_price"`
	CheckedOutAt  time.Time `json:"checked_out_at"`
}

var cartSnapshots = idSlot[CartSnapshot]{namespace: "cart:snapshot", ttl: 72 * time.Hour}

// SetCartSnapshot 写入结账快照，ttl <= 0 时保留 72 小时
func SetCartSnapshot(ctx context.Context, snapshot *CartSnapshot, ttl time.Duration) error {
	if snapshot == nil {
		return nil
	}
	return cartSnapshots.set(ctx, snapshot.CartID, snapshot, ttl)
}

// GetCartSnapshot 读取结账快照
func GetCartSnapshot(ctx context.Context, cartID uint) (*CartSnapshot, bool, error) {
	return cartSnapshots.get(ctx, cartID)
}
