package models

import (
	"time"

	"gorm.io/gorm"
)

// Product 商品表（可被购物车项引用的实体之一）
type Product struct {
	ID          uint           `gorm:"primarykey" json:"id"`                                      // 主键
	Slug        string         `gorm:"uniqueIndex;not null" json:"slug"`                          // 唯一标识
	Title       string         `gorm:"not null" json:"title"`                                     // 标题
	PriceAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price_amount"` // 价格金额
	IsActive    bool           `gorm:"default:true;index" json:"is_active"`                       // 是否上架
	SortOrder   int            `gorm:"default:0;index" json:"sort_order"`                         // 排序权重
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt   time.Time      `json:"updated_at"`                                                // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                            // 软删除时间
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

// RefType 多态引用类型
func (p *Product) RefType() string {
	return "product"
}

// RefID 多态引用 ID
func (p *Product) RefID() uint {
	return p.ID
}

// UnitPrice 实现 Priced，购物车加购时以目录价为准
func (p *Product) UnitPrice() Money {
	return p.PriceAmount
}

// Priced 带目录价的实体
type Priced interface {
	UnitPrice() Money
}
