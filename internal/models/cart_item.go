package models

import (
	"fmt"
	"time"

	"github.com/cartkeeper/internal/reference"

	"github.com/shopspring/decimal"
)

// CartItem 购物车项
type CartItem struct {
	ID          uint      `gorm:"primarykey" json:"id"`                                                              // 主键
	CartID      uint      `gorm:"not null;index;index:idx_cart_items_ref,priority:1" json:"cart_id"`                 // 所属购物车
	Quantity    Quantity  `gorm:"type:decimal(18,3);not null" json:"quantity"`                                       // 数量
	UnitPrice   Money     `gorm:"type:decimal(18,2);not null" json:"unit_price"`                                     // 单价
	ProductType string    `gorm:"type:varchar(64);not null;index:idx_cart_items_ref,priority:2" json:"product_type"` // 引用实体类型
	ProductID   uint      `gorm:"not null;index:idx_cart_items_ref,priority:3" json:"product_id"`                    // 引用实体 ID
	CreatedAt   time.Time `json:"created_at"`                                                                        // 创建时间
	UpdatedAt   time.Time `json:"updated_at"`                                                                        // 更新时间
}

// TableName 指定表名
func (CartItem) TableName() string {
	return "cart_items"
}

// TotalPrice 小计 = 数量 × 单价，不额外舍入
func (i *CartItem) TotalPrice() decimal.Decimal {
	return i.Quantity.Decimal.Mul(i.UnitPrice.Decimal)
}

// Ref 商品引用
func (i *CartItem) Ref() reference.Ref {
	return reference.New(i.ProductType, i.ProductID)
}

// SetRef 改写商品引用（不落库）
func (i *CartItem) SetRef(ref reference.Ref) {
	i.ProductType = reference.NormalizeType(ref.Type)
	i.ProductID = ref.ID
}

// Describe 可读描述，例如 "2 units of product#7"
func (i *CartItem) Describe() string {
	return fmt.Sprintf("%s units of %s", i.Quantity.String(), i.Ref().String())
}
