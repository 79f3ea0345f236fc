package public

import (
	handlershared "github.com/cartkeeper/internal/http/handlers/shared"
	"github.com/cartkeeper/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetCSRFToken 下发当前会话的 CSRF 令牌
// 匿名会话对购物车的写操作需在 X-CSRF-Token 请求头中回传该令牌
func (h *Handler) GetCSRFToken(c *gin.Context) {
	sess := handlershared.SessionFrom(c)
	if sess == nil {
		respondError(c, response.CodeInternal, "error.session_unavailable", nil)
		return
	}
	response.Success(c, gin.H{
		"csrf_token": sess.EnsureCSRFToken(),
	})
}
