package router

import (
	"net/http"
	"strings"

	"github.com/cartkeeper/internal/cache"
	"github.com/cartkeeper/internal/config"
	adminhandlers "github.com/cartkeeper/internal/http/handlers/admin"
	publichandlers "github.com/cartkeeper/internal/http/handlers/public"
	"github.com/cartkeeper/internal/http/response"
	"github.com/cartkeeper/internal/logger"
	"github.com/cartkeeper/internal/provider"

	"github.com/gin-gonic/gin"
)

// rateRules 各接口组的限流规则，key 前缀带上 Redis 命名空间
type rateRules struct {
	login      RateLimitRule
	adminLogin RateLimitRule
	cart       RateLimitRule
}

func newRateRules(cfg *config.Config) rateRules {
	prefix := strings.TrimSpace(cfg.Redis.Prefix)
	if prefix == "" {
		prefix = "ck"
	}
	rule := func(name string, rl config.RateLimitConfig, msgKey string) RateLimitRule {
		return RateLimitRule{
			Prefix:        prefix + ":rate:" + name,
			WindowSeconds: rl.WindowSeconds,
			MaxRequests:   rl.MaxAttempts,
			BlockSeconds:  rl.BlockSeconds,
			MessageKey:    msgKey,
		}
	}
	return rateRules{
		login:      rule("login", cfg.Security.LoginRateLimit, "error.login_too_many"),
		adminLogin: rule("admin_login", cfg.Security.LoginRateLimit, "error.login_too_many"),
		cart:       rule("cart", cfg.Security.CartRateLimit, "error.rate_limited"),
	}
}

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestIDMiddleware(), LoggerMiddleware(log), CORSMiddleware(cfg.CORS))
	r.GET("/health", healthHandler)

	rules := newRateRules(cfg)
	apiV1 := r.Group("/api/v1")
	registerPublicRoutes(apiV1, cfg, c, rules)
	registerCartRoutes(apiV1, cfg, c, rules)
	registerAdminRoutes(r, apiV1, cfg, c, rules)
	return r
}

func registerPublicRoutes(api *gin.RouterGroup, cfg *config.Config, c *provider.Container, rules rateRules) {
	h := publichandlers.New(c)
	redisClient := cache.Client()

	public := api.Group("/public")
	public.GET("/products", h.GetProducts)
	public.GET("/products/:id", h.GetProduct)

	auth := api.Group("/auth")
	auth.POST("/register", RateLimitMiddleware(redisClient, rules.login, KeyByIP), h.UserRegister)
	auth.POST("/login", RateLimitMiddleware(redisClient, rules.login, KeyByIPAndJSONField("email")), h.UserLogin)

	me := api.Group("/me", UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
	me.GET("", h.GetCurrentUser)
	me.GET("/carts/last", h.GetMyLastCart)
	me.GET("/carts/count", h.CountMyCarts)
	me.DELETE("/carts/last", h.DeleteMyLastCart)
}

// registerCartRoutes 购物车路由：会话 -> 可选用户令牌 -> 限流 -> 解析购物车
// 限流放在用户鉴权之后，登录用户按用户 ID 计数
func registerCartRoutes(api *gin.RouterGroup, cfg *config.Config, c *provider.Container, rules rateRules) {
	h := publichandlers.New(c)
	sessionMW := SessionMiddleware(c.SessionStore, cfg.Session)

	api.GET("/session/csrf", sessionMW, h.GetCSRFToken)

	cart := api.Group("/cart",
		sessionMW,
		OptionalUserJWTMiddleware(cfg.UserJWT.SecretKey, c.UserRepo),
		RateLimitMiddleware(cache.Client(), rules.cart, KeyByUserOrIP),
		CartMiddleware(c.CartResolver, cfg.Session.CSRFProtect),
	)
	cart.GET("", h.GetCart)
	cart.POST("/items", h.AddCartItem)
	cart.PUT("/items", h.UpdateCartItem)
	cart.DELETE("/items", h.ClearCart)
	cart.GET("/items/:id", h.GetCartItem)
	cart.DELETE("/items/:id", h.DeleteCartItem)
	cart.POST("/checkout", h.CheckoutCart)
}

func registerAdminRoutes(engine *gin.Engine, api *gin.RouterGroup, cfg *config.Config, c *provider.Container, rules rateRules) {
	h := adminhandlers.New(c)

	admin := api.Group("/admin")
	admin.POST("/login", RateLimitMiddleware(cache.Client(), rules.adminLogin, KeyByIP), h.AdminLogin)

	authed := admin.Group("", JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo), AdminRBACMiddleware(c.AuthzService))

	carts := authed.Group("/carts")
	carts.GET("", h.ListCarts)
	carts.POST("/purge", h.PurgeCarts)
	carts.GET("/:id", h.GetCart)
	carts.DELETE("/:id", h.DeleteCart)
	carts.GET("/:id/snapshot", h.GetCartSnapshot)
	carts.PUT("/:id/items/:item_id/price", h.UpdateCartItemPrice)
	carts.PUT("/:id/items/:item_id/product", h.UpdateCartItemProduct)
	authed.GET("/items/:id/product", h.GetItemProduct)

	authed.GET("/products", h.GetAdminProducts)
	authed.POST("/products", h.CreateProduct)
	authed.PUT("/password", h.UpdateAdminPassword)

	authzGroup := authed.Group("/authz")
	authzGroup.GET("/me", h.GetAuthzMe)
	authzGroup.GET("/roles", h.ListAuthzRoles)
	authzGroup.POST("/roles", h.CreateAuthzRole)
	authzGroup.DELETE("/roles/:role", h.DeleteAuthzRole)
	authzGroup.GET("/roles/:role/policies", h.GetAuthzRolePolicies)
	authzGroup.POST("/policies", h.GrantAuthzPolicy)
	authzGroup.DELETE("/policies", h.RevokeAuthzPolicy)
	authzGroup.GET("/admins", h.ListAuthzAdmins)
	authzGroup.GET("/admins/:id/roles", h.GetAuthzAdminRoles)
	authzGroup.PUT("/admins/:id/roles", h.SetAuthzAdminRoles)
	authzGroup.GET("/permissions/catalog", func(ctx *gin.Context) {
		response.Success(ctx, buildAdminPermissionCatalog(engine))
	})

	authed.GET("/audit-logs", h.ListAuditLogs)

	users := authed.Group("/users")
	users.GET("", h.GetAdminUsers)
	users.PUT("/batch-status", h.BatchUpdateUserStatus)
	users.GET("/:id", h.GetAdminUser)
	users.GET("/:id/carts/count", h.CountUserCarts)
}

// healthHandler 存活检查，Redis 启用时附带连通性
func healthHandler(c *gin.Context) {
	body := gin.H{"status": "ok"}
	if cache.Enabled() {
		if err := cache.Ping(c.Request.Context()); err != nil {
			body["redis"] = "down"
		} else {
			body["redis"] = "ok"
		}
	}
	c.JSON(http.StatusOK, body)
}
