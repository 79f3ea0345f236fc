package service

import (
	"github.com/cartkeeper/internal/logger"
	"github.com/cartkeeper/internal/models"
	"github.com/cartkeeper/internal/queue"
	"github.com/cartkeeper/internal/reference"

	"github.com/shopspring/decimal"
)

// CartSummary 购物车汇总
type CartSummary struct {
	CartID        uint            `json:"cart_id"`
	ItemCount     int             `json:"item_count"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	CheckedOut    bool            `json:"checked_out"`
}

// SummarizeCart 计算任意购物车实现的汇总
func SummarizeCart(cart models.CartModel) CartSummary {
	if cart == nil {
		return CartSummary{TotalQuantity: decimal.Zero, TotalPrice: decimal.Zero}
	}
	return CartSummary{
		CartID:        cart.GetID(),
		ItemCount:     len(cart.LineItems()),
		TotalQuantity: cart.TotalQuantity(),
		TotalPrice:    cart.TotalPrice(),
		CheckedOut:    cart.IsCheckedOut(),
	}
}

// CartProxy 绑定到当前请求购物车的操作集合
type CartProxy struct {
	cart     *models.Cart
	resolver *CartResolver
}

// Cart 当前购物车
func (p *CartProxy) Cart() *models.Cart {
	return p.cart
}

// Model 以能力接口暴露当前购物车
func (p *CartProxy) Model() models.CartModel {
	return p.cart
}

// Items 当前购物车项
func (p *CartProxy) Items() []models.CartItem {
	return p.cart.LineItems()
}

// IsEmpty 购物车是否为空
func (p *CartProxy) IsEmpty() bool {
	return p.cart.IsEmpty()
}

// Summary 购物车汇总
func (p *CartProxy) Summary() CartSummary {
	return SummarizeCart(p.cart)
}

// AddItem 加入购物车
// 同一引用已存在时只累加数量，单价保持首次加入时的值
func (p *CartProxy) AddItem(ref reference.Ref, unitPrice models.Money, quantity models.Quantity) (*models.CartItem, error) {
	if err := ref.Validate(); err != nil {
		return nil, wrapUnresolved(ref)
	}
	if quantity.IsNegative() || unitPrice.IsNegative() {
		return nil, ErrInvalidCartInput
	}
	if p.resolver.registry != nil {
		if _, err := p.resolver.ResolveReference(ref); err != nil {
			return nil, err
		}
	}

	items := p.resolver.itemRepo
	item, err := items.GetByCartAndRef(p.cart.ID, ref)
	if err != nil {
		return nil, err
	}
	if item != nil {
		total := models.NewQuantity(item.Quantity.Add(quantity.Decimal))
		if err := items.UpdateQuantity(item, total); err != nil {
			return nil, err
		}
	} else {
		item = &models.CartItem{
			CartID:    p.cart.ID,
			Quantity:  quantity,
			UnitPrice: unitPrice,
		}
		item.SetRef(ref)
		if err := items.Create(item); err != nil {
			return nil, err
		}
	}
	if err := p.refresh(); err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItemQuantity 按引用设置绝对数量，不存在时不会创建
func (p *CartProxy) UpdateItemQuantity(ref reference.Ref, quantity models.Quantity) (*models.CartItem, error) {
	if quantity.IsNegative() {
		return nil, ErrInvalidCartInput
	}
	items := p.resolver.itemRepo
	item, err := items.GetByCartAndRef(p.cart.ID, ref)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrItemNotFound
	}
	if err := items.UpdateQuantity(item, quantity); err != nil {
		return nil, err
	}
	if err := p.refresh(); err != nil {
		return nil, err
	}
	return item, nil
}

// RemoveItem 按购物车项 ID 删除
func (p *CartProxy) RemoveItem(itemID uint) error {
	affected, err := p.resolver.itemRepo.DeleteByCartAndID(p.cart.ID, itemID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrItemNotFound
	}
	return p.refresh()
}

// GetItem 按购物车项 ID 获取
func (p *CartProxy) GetItem(itemID uint) (*models.CartItem, error) {
	item, err := p.resolver.itemRepo.GetByCartAndID(p.cart.ID, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrItemNotFound
	}
	return item, nil
}

// ClearItems 清空购物车，空购物车上重复调用不报错
func (p *CartProxy) ClearItems() error {
	if err := p.resolver.itemRepo.ClearByCart(p.cart.ID); err != nil {
		return err
	}
	p.cart.Items = []models.CartItem{}
	return nil
}

// UpdateItemPrice 覆盖购物车项单价
func (p *CartProxy) UpdateItemPrice(itemID uint, price models.Money) (*models.CartItem, error) {
	if price.IsNegative() {
		return nil, ErrInvalidCartInput
	}
	item, err := p.GetItem(itemID)
	if err != nil {
		return nil, err
	}
	if err := p.resolver.itemRepo.UpdatePrice(item, price); err != nil {
		return nil, err
	}
	if err := p.refresh(); err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItemReference 改写购物车项引用的商品
func (p *CartProxy) UpdateItemReference(itemID uint, ref reference.Ref) (*models.CartItem, error) {
	if err := ref.Validate(); err != nil {
		return nil, wrapUnresolved(ref)
	}
	if p.resolver.registry != nil {
		if _, err := p.resolver.ResolveReference(ref); err != nil {
			return nil, err
		}
	}
	item, err := p.GetItem(itemID)
	if err != nil {
		return nil, err
	}
	if err := p.resolver.itemRepo.UpdateReference(item, ref); err != nil {
		return nil, err
	}
	if err := p.refresh(); err != nil {
		return nil, err
	}
	return item, nil
}

// ResolveProduct 解析购物车项引用的实体
func (p *CartProxy) ResolveProduct(item *models.CartItem) (reference.Entity, error) {
	if item == nil {
		return nil, ErrItemNotFound
	}
	return p.resolver.ResolveReference(item.Ref())
}

// Checkout 标记为已结账
// 重复调用只会重新写入终态，首次结账时发布事件
// 购物车已被其他请求删除时返回 ErrCartNotFound
func (p *CartProxy) Checkout() (*models.Cart, error) {
	firstCheckout := !p.cart.CheckedOut
	stamp := p.resolver.now()
	if p.cart.CheckedOutAt != nil {
		stamp = *p.cart.CheckedOutAt
	}
	found, err := p.resolver.cartRepo.MarkCheckedOut(p.cart.ID, stamp)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrCartNotFound
	}
	p.cart.CheckedOut = true
	p.cart.CheckedOutAt = &stamp
	if firstCheckout {
		p.publishCheckedOut()
	}
	return p.cart, nil
}

func (p *CartProxy) publishCheckedOut() {
	if p.resolver.events == nil {
		return
	}
	payload := queue.CartCheckedOutPayload{CartID: p.cart.ID, UserID: p.cart.UserID}
	if p.cart.CheckedOutAt != nil {
		payload.CheckedOutAt = *p.cart.CheckedOutAt
	}
	if err := p.resolver.events.EnqueueCartCheckedOut(payload); err != nil {
		logger.Warnw("cart_checked_out_enqueue_failed", "cart_id", p.cart.ID, "error", err)
	}
}

// DeleteUserLastCart 删除用户未结账购物车
func (p *CartProxy) DeleteUserLastCart(userID uint) error {
	return p.resolver.DeleteUserLastCart(userID)
}

// CountCarts 统计用户全部购物车
func (p *CartProxy) CountCarts(userID uint) (int64, error) {
	return p.resolver.CountCarts(userID)
}

// GetUserLastCart 获取用户最新的未结账购物车
func (p *CartProxy) GetUserLastCart(userID uint) (*models.Cart, error) {
	return p.resolver.GetUserLastCart(userID)
}

func (p *CartProxy) refresh() error {
	items, err := p.resolver.itemRepo.ListByCart(p.cart.ID)
	if err != nil {
		return err
	}
	p.cart.Items = items
	return nil
}
