package admin

import (
	"strconv"
	"strings"
	"time"

	handlershared "github.com/cartkeeper/internal/http/handlers/shared"
	"github.com/cartkeeper/internal/http/response"
	"github.com/cartkeeper/internal/models"
	"github.com/cartkeeper/internal/reference"
	"github.com/cartkeeper/internal/repository"
	"github.com/cartkeeper/internal/service"

	"github.com/gin-gonic/gin"
)

type cartItemPricePayload struct {
	UnitPrice *models.Money `json:"unit_price" binding:"required"`
}

type cartItemProductPayload struct {
	Ref         string `json:"ref"`
	ProductType string `json:"product_type"`
	ProductID   uint   `json:"product_id"`
}

// ListCarts 购物车列表
func (h *Handler) ListCarts(c *gin.Context) {
	page, pageSize := handlershared.PaginationFromQuery(c)

	filter := repository.CartListFilter{Page: page, PageSize: pageSize}
	userID, ok := handlershared.ParseOptionalUintQuery(c, "user_id")
	if !ok {
		return
	}
	if userID != nil {
		filter.UserID = *userID
	}
	filter.OnlyAnonymous = strings.EqualFold(strings.TrimSpace(c.Query("anonymous")), "true")
	if raw := strings.TrimSpace(c.Query("checked_out")); raw != "" {
		checkedOut, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
		filter.CheckedOut = &checkedOut
	}
	createdFrom, err := parseTimeNullable(strings.TrimSpace(c.Query("created_from")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	createdTo, err := parseTimeNullable(strings.TrimSpace(c.Query("created_to")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	filter.CreatedFrom = createdFrom
	filter.CreatedTo = createdTo

	carts, total, err := h.CartAdminService.ListCarts(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.cart_fetch_failed", err)
		return
	}
	items := make([]handlershared.CartView, 0, len(carts))
	for i := range carts {
		items = append(items, handlershared.BuildCartView(&carts[i]))
	}
	response.SuccessWithPage(c, items, handlershared.PageOf(page, pageSize, total))
}

// GetCart 购物车详情
func (h *Handler) GetCart(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id", "error.cart_id_invalid")
	if !ok {
		return
	}
	cart, err := h.CartAdminService.GetCart(id)
	if err != nil {
		handlershared.RespondCartError(c, err)
		return
	}
	response.Success(c, handlershared.BuildCartView(cart))
}

// DeleteCart 删除购物车
func (h *Handler) DeleteCart(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id", "error.cart_id_invalid")
	if !ok {
		return
	}
	if err := h.CartAdminService.DeleteCart(id); err != nil {
		handlershared.RespondCartError(c, err)
		return
	}
	h.recordAudit(c, service.AuditActionCartDelete, "cart", &id, nil)
	response.Success(c, gin.H{"deleted": true})
}

// GetCartSnapshot 获取已结账购物车的汇总快照
func (h *Handler) GetCartSnapshot(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id", "error.cart_id_invalid")
	if !ok {
		return
	}
	snapshot, err := h.CartAdminService.GetCheckoutSnapshot(c.Request.Context(), id)
	if err != nil {
		handlershared.RespondCartError(c, err)
		return
	}
	response.Success(c, snapshot)
}

// PurgeCarts 清理闲置匿名购物车
// 队列可用时仅投递任务，返回 queued=true
func (h *Handler) PurgeCarts(c *gin.Context) {
	queued, purged, err := h.CartAdminService.RequestPurge(time.Now())
	if err != nil {
		respondError(c, response.CodeInternal, "error.cart_purge_failed", err)
		return
	}
	h.recordAudit(c, service.AuditActionCartPurge, "cart", nil, models.JSON{
		"queued": queued,
		"purged": purged,
	})
	response.Success(c, gin.H{
		"queued": queued,
		"purged": purged,
	})
}

// UpdateCartItemPrice 覆盖购物车项单价
func (h *Handler) UpdateCartItemPrice(c *gin.Context) {
	proxy, itemID, ok := h.bindCartItem(c)
	if !ok {
		return
	}
	var req cartItemPricePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	item, err := proxy.UpdateItemPrice(itemID, *req.UnitPrice)
	if err != nil {
		handlershared.RespondCartError(c, err)
		return
	}
	h.recordAudit(c, service.AuditActionCartItemPrice, "cart_item", &item.ID, models.JSON{
		"cart_id":    item.CartID,
		"unit_price": item.UnitPrice.String(),
	})
	response.Success(c, gin.H{
		"item": handlershared.BuildCartItemView(item),
		"cart": handlershared.BuildCartView(proxy.Cart()),
	})
}

// UpdateCartItemProduct 改写购物车项引用的商品
func (h *Handler) UpdateCartItemProduct(c *gin.Context) {
	proxy, itemID, ok := h.bindCartItem(c)
	if !ok {
		return
	}
	var req cartItemProductPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	var (
		ref reference.Ref
		err error
	)
	if raw := strings.TrimSpace(req.Ref); raw != "" {
		ref, err = reference.Parse(raw)
	} else {
		ref = reference.New(req.ProductType, req.ProductID)
		err = ref.Validate()
	}
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.cart_input_invalid", nil)
		return
	}

	item, err := proxy.UpdateItemReference(itemID, ref)
	if err != nil {
		handlershared.RespondCartError(c, err)
		return
	}
	h.recordAudit(c, service.AuditActionCartItemProduct, "cart_item", &item.ID, models.JSON{
		"cart_id": item.CartID,
		"ref":     ref.String(),
	})
	response.Success(c, gin.H{
		"item": handlershared.BuildCartItemView(item),
		"cart": handlershared.BuildCartView(proxy.Cart()),
	})
}

// CountUserCarts 统计用户全部购物车
func (h *Handler) CountUserCarts(c *gin.Context) {
	userID, ok := handlershared.ParseUintParam(c, "id", "error.user_id_invalid")
	if !ok {
		return
	}
	count, err := h.CartAdminService.CountUserCarts(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.cart_fetch_failed", err)
		return
	}
	response.Success(c, gin.H{"user_id": userID, "count": count})
}

// GetItemProduct 解析购物车项引用的实体
func (h *Handler) GetItemProduct(c *gin.Context) {
	itemID, ok := handlershared.ParseUintParam(c, "id", "error.cart_item_id_invalid")
	if !ok {
		return
	}
	item, entity, err := h.CartAdminService.ResolveItemProduct(itemID)
	if err != nil {
		handlershared.RespondCartError(c, err)
		return
	}
	response.Success(c, gin.H{
		"item":    handlershared.BuildCartItemView(item),
		"ref":     reference.Of(entity),
		"product": entity,
	})
}

// bindCartItem 读取路径中的购物车与购物车项，并把购物车包装为代理
func (h *Handler) bindCartItem(c *gin.Context) (*service.CartProxy, uint, bool) {
	cartID, ok := handlershared.ParseUintParam(c, "id", "error.cart_id_invalid")
	if !ok {
		return nil, 0, false
	}
	itemID, ok := handlershared.ParseUintParam(c, "item_id", "error.cart_item_id_invalid")
	if !ok {
		return nil, 0, false
	}
	cart, err := h.CartAdminService.GetCart(cartID)
	if err != nil {
		handlershared.RespondCartError(c, err)
		return nil, 0, false
	}
	return h.CartResolver.Bind(cart), itemID, true
}
