package shared

import (
	"time"

	"github.com/cartkeeper/internal/models"
	"github.com/cartkeeper/internal/service"
)

// CartItemView 购物车项响应
type CartItemView struct {
	ID          uint            `json:"id"`
	ProductType string          `json:"product_type"`
	ProductID   uint            `json:"product_id"`
	Quantity    models.Quantity `json:"quantity"`
	UnitPrice   models.Money    `json:"unit_price"`
	TotalPrice  string          `json:"total_price"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CartView 购物车响应
type CartView struct {
	ID            uint           `json:"id"`
	UserID        *uint          `json:"user_id"`
	CreationDate  time.Time      `json:"creation_date"`
	CheckedOut    bool           `json:"checked_out"`
	CheckedOutAt  *time.Time     `json:"checked_out_at"`
	Items         []CartItemView `json:"items"`
	ItemCount     int            `json:"item_count"`
	TotalQuantity string         `json:"total_quantity"`
	TotalPrice    string         `json:"total_price"`
}

// BuildCartItemView 构建购物车项响应，小计不做舍入
func BuildCartItemView(item *models.CartItem) CartItemView {
	if item == nil {
		return CartItemView{}
	}
	return CartItemView{
		ID:          item.ID,
		ProductType: item.ProductType,
		ProductID:   item.ProductID,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		TotalPrice:  item.TotalPrice().String(),
		Description: item.Describe(),
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

// BuildCartView 构建购物车响应
func BuildCartView(cart *models.Cart) CartView {
	if cart == nil {
		return CartView{Items: []CartItemView{}}
	}
	summary := service.SummarizeCart(cart)
	items := make([]CartItemView, 0, len(cart.Items))
	for i := range cart.Items {
		items = append(items, BuildCartItemView(&cart.Items[i]))
	}
	return CartView{
		ID:            cart.ID,
		UserID:        cart.UserID,
		CreationDate:  cart.CreationDate,
		CheckedOut:    cart.CheckedOut,
		CheckedOutAt:  cart.CheckedOutAt,
		Items:         items,
		ItemCount:     summary.ItemCount,
		TotalQuantity: summary.TotalQuantity.String(),
		TotalPrice:    summary.TotalPrice.String(),
	}
}
