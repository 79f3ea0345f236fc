package public

import (
	handlershared "github.com/cartkeeper/internal/http/handlers/shared"
	"github.com/cartkeeper/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetMyLastCart 获取当前用户最新的未结账购物车，不会新建
func (h *Handler) GetMyLastCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	cart, err := h.CartResolver.GetUserLastCart(uid)
	if err != nil {
		handlershared.RespondCartError(c, err)
		return
	}
	response.Success(c, handlershared.BuildCartView(cart))
}

// CountMyCarts 统计当前用户的全部购物车（含已结账）
func (h *Handler) CountMyCarts(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	count, err := h.CartResolver.CountCarts(uid)
	if err != nil {
		handlershared.RespondCartError(c, err)
		return
	}
	response.Success(c, gin.H{"count": count})
}

// DeleteMyLastCart 删除当前用户的未结账购物车，不存在时视为成功
func (h *Handler) DeleteMyLastCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	if err := h.CartResolver.DeleteUserLastCart(uid); err != nil {
		handlershared.RespondCartError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
