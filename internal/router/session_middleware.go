package router

import (
	"net/http"
	"strings"

	"github.com/cartkeeper/internal/config"
	"github.com/cartkeeper/internal/constants"
	"github.com/cartkeeper/internal/logger"
	"github.com/cartkeeper/internal/service"
	"github.com/cartkeeper/internal/session"

	"github.com/gin-gonic/gin"
)

// SessionMiddleware 会话中间件
// 读取 Cookie 恢复会话，缺失或过期时新建；请求结束后有变更则回写，否则只续期
func SessionMiddleware(store session.Store, cfg config.SessionConfig) gin.HandlerFunc {
	cookieName := strings.TrimSpace(cfg.CookieName)
	if cookieName == "" {
		cookieName = "ck_session"
	}
	cookiePath := strings.TrimSpace(cfg.CookiePath)
	if cookiePath == "" {
		cookiePath = "/"
	}
	ttl := cfg.TTL()

	return func(c *gin.Context) {
		if store == nil {
			c.Next()
			return
		}
		ctx := c.Request.Context()

		var sess *session.Session
		if raw, err := c.Cookie(cookieName); err == nil && strings.TrimSpace(raw) != "" {
			loaded, loadErr := store.Load(ctx, raw)
			if loadErr != nil {
				logger.Warnw("session_load_failed", "request_id", getRequestID(c), "error", loadErr)
			}
			sess = loaded
		}
		if sess == nil {
			sess = session.New()
			// 响应体写出后无法再设置 Cookie，新会话在进入处理器前下发
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cookieName, sess.ID(), int(ttl.Seconds()), cookiePath, cfg.Domain, cfg.Secure, true)
		}
		c.Set(constants.ContextKeySession, sess)

		c.Next()

		if !sess.IsNew() && !sess.Dirty() {
			// 活跃会话滑动续期
			if err := store.Touch(ctx, sess.ID(), ttl); err != nil {
				logger.Warnw("session_touch_failed", "request_id", getRequestID(c), "error", err)
			}
			return
		}
		if err := store.Save(ctx, sess, ttl); err != nil {
			logger.Warnw("session_save_failed",
				"request_id", getRequestID(c),
				"session_new", sess.IsNew(),
				"error", err,
			)
		}
	}
}

// CartMiddleware 为请求绑定当前购物车
// 解析失败不会中断请求，原因写入上下文由处理器统一响应
func CartMiddleware(resolver *service.CartResolver, csrfProtect bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if resolver == nil {
			c.Set(constants.ContextKeyCartError, service.ErrCartUnavailable)
			c.Next()
			return
		}

		userID := contextUserID(c)
		sess := contextSession(c)

		// Bearer 令牌不会被浏览器自动携带，只有依赖会话 Cookie 的写请求需要 CSRF 校验
		if csrfProtect && userID == 0 && isUnsafeMethod(c.Request.Method) {
			if sess == nil || !sess.ValidCSRFToken(c.GetHeader(constants.HeaderCSRFToken)) {
				logger.Warnw("cart_csrf_rejected",
					"request_id", getRequestID(c),
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
				)
				c.Set(constants.ContextKeyCartError, service.ErrCSRFInvalid)
				c.Next()
				return
			}
		}

		var bag service.SessionBag
		if sess != nil {
			bag = sess
		}
		proxy, err := resolver.Resolve(service.CartRequest{UserID: userID, Session: bag})
		if err != nil {
			logger.Errorw("cart_resolve_failed",
				"request_id", getRequestID(c),
				"user_id", userID,
				"error", err,
			)
			c.Set(constants.ContextKeyCartError, err)
			c.Next()
			return
		}
		c.Set(constants.ContextKeyCart, proxy)
		c.Next()
	}
}

func contextUserID(c *gin.Context) uint {
	value, ok := c.Get(constants.ContextKeyUserID)
	if !ok {
		return 0
	}
	id, _ := value.(uint)
	return id
}

func contextSession(c *gin.Context) *session.Session {
	value, ok := c.Get(constants.ContextKeySession)
	if !ok {
		return nil
	}
	sess, _ := value.(*session.Session)
	return sess
}

func isUnsafeMethod(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	default:
		return true
	}
}
