package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartModel 购物车能力集合，响应与汇总逻辑只依赖该接口
type CartModel interface {
	GetID() uint
	Owner() *uint
	CreatedOn() time.Time
	IsCheckedOut() bool
	LineItems() []CartItem
	IsEmpty() bool
	TotalPrice() decimal.Decimal
	TotalQuantity() decimal.Decimal
}

// Cart 购物车
// 登录用户同一时刻最多一个未结账购物车（部分唯一索引保证），匿名购物车通过会话关联
type Cart struct {
	ID           uint       `gorm:"primarykey" json:"id"`                                                             // 主键
	UserID       *uint      `gorm:"index;index:idx_carts_open_owner,unique,where:checked_out = false" json:"user_id"` // 所属用户，匿名为空
	CreationDate time.Time  `gorm:"not null;index" json:"creation_date"`                                              // 创建时间（不可变）
	CheckedOut   bool       `gorm:"not null;default:false;index" json:"checked_out"`                                  // 是否已结账
	CheckedOutAt *time.Time `json:"checked_out_at"`                                                                   // 首次结账时间
	UpdatedAt    time.Time  `json:"updated_at"`                                                                       // 更新时间

	Items []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"` // 购物车项
}

// TableName 指定表名
func (Cart) TableName() string {
	return "carts"
}

// GetID 购物车 ID
func (c *Cart) GetID() uint {
	return c.ID
}

// Owner 所属用户
func (c *Cart) Owner() *uint {
	return c.UserID
}

// CreatedOn 创建时间
func (c *Cart) CreatedOn() time.Time {
	return c.CreationDate
}

// IsCheckedOut 是否已结账
func (c *Cart) IsCheckedOut() bool {
	return c.CheckedOut
}

// IsAnonymous 是否为匿名购物车
func (c *Cart) IsAnonymous() bool {
	return c.UserID == nil
}

// LineItems 已加载的购物车项
func (c *Cart) LineItems() []CartItem {
	return c.Items
}

// IsEmpty 是否没有任何购物车项
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// TotalPrice 所有项小计之和
func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for i := range c.Items {
		total = total.Add(c.Items[i].TotalPrice())
	}
	return total
}

// TotalQuantity 所有项数量之和
func (c *Cart) TotalQuantity() decimal.Decimal {
	total := decimal.Zero
	for i := range c.Items {
		total = total.Add(c.Items[i].Quantity.Decimal)
	}
	return total
}
