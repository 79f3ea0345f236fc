package repository

import (
	"time"

	"github.com/cartkeeper/internal/models"
	"github.com/cartkeeper/internal/reference"

	"gorm.io/gorm"
)

// CartItemRepository 购物车项数据访问接口
type CartItemRepository interface {
	ListByCart(cartID uint) ([]models.CartItem, error)
	CountByCart(cartID uint) (int64, error)
	GetByID(id uint) (*models.CartItem, error)
	GetByCartAndID(cartID, itemID uint) (*models.CartItem, error)
	GetByCartAndRef(cartID uint, ref reference.Ref) (*models.CartItem, error)
	Create(item *models.CartItem) error
	UpdateQuantity(item *models.CartItem, quantity models.Quantity) error
	UpdatePrice(item *models.CartItem, price models.Money) error
	UpdateReference(item *models.CartItem, ref reference.Ref) error
	DeleteByCartAndID(cartID, itemID uint) (int64, error)
	ClearByCart(cartID uint) error
}

// GormCartItemRepository GORM 实现
type GormCartItemRepository struct {
	db *gorm.DB
}

// NewCartItemRepository 创建购物车项仓库
func NewCartItemRepository(db *gorm.DB) *GormCartItemRepository {
	return &GormCartItemRepository{db: db}
}

// ListByCart 获取购物车项（按加入顺序）
func (r *GormCartItemRepository) ListByCart(cartID uint) ([]models.CartItem, error) {
	items := make([]models.CartItem, 0)
	if err := r.db.Where("cart_id = ?", cartID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// CountByCart 统计购物车项数量
func (r *GormCartItemRepository) CountByCart(cartID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.CartItem{}).Where("cart_id = ?", cartID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GetByID 根据 ID 获取购物车项
func (r *GormCartItemRepository) GetByID(id uint) (*models.CartItem, error) {
	if id == 0 {
		return nil, nil
	}
	return firstOrNil[models.CartItem](r.db, id)
}

// GetByCartAndID 获取指定购物车内的购物车项
func (r *GormCartItemRepository) GetByCartAndID(cartID, itemID uint) (*models.CartItem, error) {
	if itemID == 0 {
		return nil, nil
	}
	return firstOrNil[models.CartItem](r.db.Where("cart_id = ? AND id = ?", cartID, itemID))
}

// GetByCartAndRef 按商品引用查找购物车项
func (r *GormCartItemRepository) GetByCartAndRef(cartID uint, ref reference.Ref) (*models.CartItem, error) {
	query := r.db.
		Where("cart_id = ? AND product_type = ? AND product_id = ?", cartID, reference.NormalizeType(ref.Type), ref.ID).
		Order("id ASC")
	return firstOrNil[models.CartItem](query)
}

// Create 创建购物车项
func (r *GormCartItemRepository) Create(item *models.CartItem) error {
	return r.db.Create(item).Error
}

// UpdateQuantity 覆盖数量并立即落库
func (r *GormCartItemRepository) UpdateQuantity(item *models.CartItem, quantity models.Quantity) error {
	return r.updateColumns(item, map[string]interface{}{"quantity": quantity}, func() {
		item.Quantity = quantity
	})
}

// UpdatePrice 覆盖单价并立即落库
func (r *GormCartItemRepository) UpdatePrice(item *models.CartItem, price models.Money) error {
	return r.updateColumns(item, map[string]interface{}{"unit_price": price}, func() {
		item.UnitPrice = price
	})
}

// UpdateReference 覆盖商品引用并立即落库
func (r *GormCartItemRepository) UpdateReference(item *models.CartItem, ref reference.Ref) error {
	updates := map[string]interface{}{
		"product_type": reference.NormalizeType(ref.Type),
		"product_id":   ref.ID,
	}
	return r.updateColumns(item, updates, func() {
		item.SetRef(ref)
	})
}

func (r *GormCartItemRepository) updateColumns(item *models.CartItem, updates map[string]interface{}, apply func()) error {
	if item == nil || item.ID == 0 {
		return gorm.ErrMissingWhereClause
	}
	now := time.Now()
	updates["updated_at"] = now
	if err := r.db.Model(&models.CartItem{}).Where("id = ?", item.ID).Updates(updates).Error; err != nil {
		return err
	}
	apply()
	item.UpdatedAt = now
	return nil
}

// DeleteByCartAndID 删除指定购物车内的购物车项
func (r *GormCartItemRepository) DeleteByCartAndID(cartID, itemID uint) (int64, error) {
	result := r.db.Where("cart_id = ? AND id = ?", cartID, itemID).Delete(&models.CartItem{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ClearByCart 清空购物车
func (r *GormCartItemRepository) ClearByCart(cartID uint) error {
	return r.db.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}
