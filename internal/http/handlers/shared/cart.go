package shared

import (
	"github.com/cartkeeper/internal/constants"
	"github.com/cartkeeper/internal/service"
	"github.com/cartkeeper/internal/session"

	"github.com/gin-gonic/gin"
)

// SessionFrom 读取会话中间件写入的会话。
func SessionFrom(c *gin.Context) *session.Session {
	value, ok := c.Get(constants.ContextKeySession)
	if !ok {
		return nil
	}
	sess, _ := value.(*session.Session)
	return sess
}

// CartFrom 读取购物车中间件绑定的购物车代理，未绑定时返回解析失败原因。
func CartFrom(c *gin.Context) (*service.CartProxy, error) {
	if value, ok := c.Get(constants.ContextKeyCart); ok {
		if proxy, ok := value.(*service.CartProxy); ok && proxy != nil {
			return proxy, nil
		}
	}
	if value, ok := c.Get(constants.ContextKeyCartError); ok {
		if err, ok := value.(error); ok && err != nil {
			return nil, err
		}
	}
	return nil, service.ErrCartUnavailable
}

// OptionalUserID 读取可选鉴权写入的用户 ID，匿名返回 0。
func OptionalUserID(c *gin.Context) uint {
	value, ok := c.Get(constants.ContextKeyUserID)
	if !ok {
		return 0
	}
	id, _ := value.(uint)
	return id
}
