package admin

import (
	"github.com/cartkeeper/internal/constants"
	handlershared "github.com/cartkeeper/internal/http/handlers/shared"
	"github.com/cartkeeper/internal/provider"

	"github.com/gin-gonic/gin"
)

// Handler 管理端接口，所有路由均经过管理员鉴权与 RBAC 校验
type Handler struct {
	*provider.Container
}

// New 创建后台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

func getAdminID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUintWithKeys(c, constants.ContextKeyAdminID, "error.admin_id_invalid", "error.context_type_invalid")
}
