package public

import (
	"errors"
	"strings"

	"github.com/cartkeeper/internal/constants"
	handlershared "github.com/cartkeeper/internal/http/handlers/shared"
	"github.com/cartkeeper/internal/http/response"
	"github.com/cartkeeper/internal/models"
	"github.com/cartkeeper/internal/reference"
	"github.com/cartkeeper/internal/service"

	"github.com/gin-gonic/gin"
)

// CartRefRequest 商品引用，ref 形如 "product#7"，也可分别传 product_type/product_id
type CartRefRequest struct {
	Ref         string `json:"ref"`
	ProductType string `json:"product_type"`
	ProductID   uint   `json:"product_id"`
}

// AddCartItemRequest 加购请求
type AddCartItemRequest struct {
	CartRefRequest
	Quantity  *models.Quantity `json:"quantity"`
	UnitPrice *models.Money    `json:"unit_price"`
}

// UpdateCartItemRequest 设置数量请求
type UpdateCartItemRequest struct {
	CartRefRequest
	Quantity *models.Quantity `json:"quantity" binding:"required"`
}

// toRef 解析请求中的商品引用，未指定类型时视为商品
func (r CartRefRequest) toRef() (reference.Ref, error) {
	if raw := strings.TrimSpace(r.Ref); raw != "" {
		return reference.Parse(raw)
	}
	refType := strings.TrimSpace(r.ProductType)
	if refType == "" {
		refType = constants.RefTypeProduct
	}
	ref := reference.New(refType, r.ProductID)
	if err := ref.Validate(); err != nil {
		return reference.Ref{}, err
	}
	return ref, nil
}

// GetCart 获取当前购物车
func (h *Handler) GetCart(c *gin.Context) {
	cart, err := handlershared.CartFrom(c)
	if err != nil {
		handlershared.RespondCartError(c, err)
		return
	}
	response.Success(c, handlershared.BuildCartView(cart.Cart()))
}

// AddCartItem 加入购物车
// 引用实体带目录价时以目录价为准，否则使用请求中的单价
func (h *Handler) AddCartItem(c *gin.Context) {
	cart, err := handlershared.CartFrom(c)
	if err != nil {
		handlershared.RespondCartError(c, err)
		return
	}
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	ref, err := req.toRef()
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.cart_input_invalid", nil)
		return
	}
	quantity := models.NewQuantityFromInt(1)
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	entity, err := h.CartResolver.ResolveReference(ref)
	if err != nil {
		handlershared.RespondCartError(c, err)
		return
	}
	var price models.Money
	if priced, ok := entity.(models.Priced); ok {
		price = priced.UnitPrice()
	} else if req.UnitPrice != nil {
		price = *req.UnitPrice
	} else {
		handlershared.RespondCartError(c, service.ErrInvalidCartInput)
		return
	}

	item, err := cart.AddItem(ref, price, quantity)
	if err != nil {
		handlershared.RespondCartError(c, err)
		return
	}
	response.Success(c, gin.H{
		"item": handlershared.BuildCartItemView(item),
		"cart": handlershared.BuildCartView(cart.Cart()),
	})
}

// UpdateCartItem 按引用设置购物车项数量
func (h *Handler) UpdateCartItem(c *gin.Context) {
	cart, err := handlershared.CartFrom(c)
	if err != nil {
		handlershared.RespondCartError(c, err)
		return
	}
	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	ref, err := req.toRef()
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.cart_input_invalid", nil)
		return
	}
	item, err := cart.UpdateItemQuantity(ref, *req.Quantity)
	if err != nil {
		handlershared.RespondCartError(c, err)
		return
	}
	response.Success(c, gin.H{
		"item": handlershared.BuildCartItemView(item),
		"cart": handlershared.BuildCartView(cart.Cart()),
	})
}

// GetCartItem 获取购物车项及其引用的实体
// 引用已失效时 product 为 null，购物车项本身仍可读取
func (h *Handler) GetCartItem(c *gin.Context) {
	cart, err := handlershared.CartFrom(c)
	if err != nil {
		handlershared.RespondCartError(c, err)
		return
	}
	itemID, ok := handlershared.ParseUintParam(c, "id", "error.cart_item_id_invalid")
	if !ok {
		return
	}
	item, err := cart.GetItem(itemID)
	if err != nil {
		handlershared.RespondCartError(c, err)
		return
	}

	var product interface{}
	entity, err := cart.ResolveProduct(item)
	switch {
	case err == nil:
		product = entity
	case errors.Is(err, service.ErrReferenceUnresolved):
		handlershared.RequestLog(c).Infow("cart_item_product_unresolved",
			"cart_id", item.CartID,
			"item_id", item.ID,
			"ref", item.Ref().String(),
		)
	default:
		handlershared.RespondCartError(c, err)
		return
	}
	response.Success(c, gin.H{
		"item":    handlershared.BuildCartItemView(item),
		"product": product,
	})
}

// DeleteCartItem 删除购物车项
func (h *Handler) DeleteCartItem(c *gin.Context) {
	cart, err := handlershared.CartFrom(c)
	if err != nil {
		handlershared.RespondCartError(c, err)
		return
	}
	itemID, ok := handlershared.ParseUintParam(c, "id", "error.cart_item_id_invalid")
	if !ok {
		return
	}
	if err := cart.RemoveItem(itemID); err != nil {
		handlershared.RespondCartError(c, err)
		return
	}
	response.Success(c, handlershared.BuildCartView(cart.Cart()))
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	cart, err := handlershared.CartFrom(c)
	if err != nil {
		handlershared.RespondCartError(c, err)
		return
	}
	if err := cart.ClearItems(); err != nil {
		handlershared.RespondCartError(c, err)
		return
	}
	response.Success(c, handlershared.BuildCartView(cart.Cart()))
}

// CheckoutCart 结账
// 已结账的购物车不再被解析为当前购物车，下一次请求会得到新的空购物车
func (h *Handler) CheckoutCart(c *gin.Context) {
	cart, err := handlershared.CartFrom(c)
	if err != nil {
		handlershared.RespondCartError(c, err)
		return
	}
	checkedOut, err := cart.Checkout()
	if err != nil {
		handlershared.RespondCartError(c, err)
		return
	}
	handlershared.RequestLog(c).Infow("cart_checked_out",
		"cart_id", checkedOut.ID,
		"user_id", handlershared.OptionalUserID(c),
		"total_price", checkedOut.TotalPrice().StringFixed(2),
	)
	response.Success(c, handlershared.BuildCartView(checkedOut))
}
