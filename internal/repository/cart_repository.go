package repository

import (
	"time"

	"github.com/cartkeeper/internal/models"

	"gorm.io/gorm"
)

// CartRepository 购物车数据访问接口
type CartRepository interface {
	Create(cart *models.Cart) error
	GetByID(id uint) (*models.Cart, error)
	GetOpenByID(id uint) (*models.Cart, error)
	GetLastOpenByUser(userID uint) (*models.Cart, error)
	CountByUser(userID uint) (int64, error)
	MarkCheckedOut(id uint, checkedOutAt time.Time) (bool, error)
	Delete(id uint) error
	List(filter CartListFilter) ([]models.Cart, int64, error)
	DeleteStaleAnonymous(before time.Time, limit int) (int64, error)
}

// GormCartRepository GORM 实现
type GormCartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓库
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

func preloadCartItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("id ASC")
	})
}

// Create 创建购物车
func (r *GormCartRepository) Create(cart *models.Cart) error {
	if cart.CreationDate.IsZero() {
		cart.CreationDate = time.Now()
	}
	return r.db.Create(cart).Error
}

// GetByID 根据 ID 获取购物车（含购物车项）
func (r *GormCartRepository) GetByID(id uint) (*models.Cart, error) {
	if id == 0 {
		return nil, nil
	}
	return firstOrNil[models.Cart](preloadCartItems(r.db), id)
}

// GetOpenByID 获取未结账的购物车
func (r *GormCartRepository) GetOpenByID(id uint) (*models.Cart, error) {
	if id == 0 {
		return nil, nil
	}
	return firstOrNil[models.Cart](preloadCartItems(r.db).Where("id = ? AND checked_out = ?", id, false))
}

// GetLastOpenByUser 获取用户最新的未结账购物车
func (r *GormCartRepository) GetLastOpenByUser(userID uint) (*models.Cart, error) {
	if userID == 0 {
		return nil, nil
	}
	query := preloadCartItems(r.db).
		Where("user_id = ? AND checked_out = ?", userID, false).
		Order("creation_date DESC").
		Order("id DESC")
	return firstOrNil[models.Cart](query)
}

// CountByUser 统计用户全部购物车（含已结账）
func (r *GormCartRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Cart{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// MarkCheckedOut 只更新结账相关列，购物车已被删除时返回 false 且不会重新插入
func (r *GormCartRepository) MarkCheckedOut(id uint, checkedOutAt time.Time) (bool, error) {
	result := r.db.Model(&models.Cart{}).Where("id = ?", id).Updates(map[string]interface{}{
		"checked_out":    true,
		"checked_out_at": checkedOutAt,
		"updated_at":     time.Now(),
	})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Delete 删除购物车及其购物车项
func (r *GormCartRepository) Delete(id uint) error {
	if id == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Cart{}, id).Error
	})
}

// List 购物车列表（最新优先）
func (r *GormCartRepository) List(filter CartListFilter) ([]models.Cart, int64, error) {
	query := r.db.Model(&models.Cart{})

	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.OnlyAnonymous {
		query = query.Where("user_id IS NULL")
	}
	if filter.CheckedOut != nil {
		query = query.Where("checked_out = ?", *filter.CheckedOut)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("creation_date >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("creation_date <= ?", *filter.CreatedTo)
	}

	query, total, err := countAndPage(query, filter.Page, filter.PageSize)
	if err != nil {
		return nil, 0, err
	}

	var carts []models.Cart
	if err := preloadCartItems(query).Order("creation_date DESC").Order("id DESC").Find(&carts).Error; err != nil {
		return nil, 0, err
	}
	return carts, total, nil
}

// DeleteStaleAnonymous 清理闲置的匿名购物车
// 购物车与其项在 before 之后均无更新才视为闲置
func (r *GormCartRepository) DeleteStaleAnonymous(before time.Time, limit int) (int64, error) {
	if limit <= 0 {
		limit = 200
	}
	var ids []uint
	err := r.db.Model(&models.Cart{}).
		Where("user_id IS NULL AND updated_at < ?", before).
		Where("NOT EXISTS (SELECT 1 FROM cart_items WHERE cart_items.cart_id = carts.id AND cart_items.updated_at >= ?)", before).
		Order("id ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	var affected int64
	err = r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id IN ?", ids).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		result := tx.Where("id IN ?", ids).Delete(&models.Cart{})
		if result.Error != nil {
			return result.Error
		}
		affected = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}
