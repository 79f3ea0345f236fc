package router

import (
	"context"
	"strings"

	"github.com/cartkeeper/internal/authz"
	"github.com/cartkeeper/internal/cache"
	"github.com/cartkeeper/internal/constants"
	"github.com/cartkeeper/internal/http/response"
	"github.com/cartkeeper/internal/i18n"
	"github.com/cartkeeper/internal/logger"
	"github.com/cartkeeper/internal/repository"
	"github.com/cartkeeper/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var hs256Only = jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})

// parseHS256 校验签名与有效期，成功时 claims 已填充
func parseHS256(secret, raw string, claims jwt.Claims) bool {
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, hs256Only)
	return err == nil && token.Valid
}

// JWTAuthMiddleware 管理员令牌鉴权
// 令牌版本与缓存或数据库不一致时视为已吊销
func JWTAuthMiddleware(secretKey string, adminRepo repository.AdminRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secretKey == "" {
			abortUnauthorized(c, "error.jwt_secret_missing")
			return
		}
		raw, msgKey := bearerToken(c)
		if msgKey != "" {
			abortUnauthorized(c, msgKey)
			return
		}
		claims := &service.JWTClaims{}
		if !parseHS256(secretKey, raw, claims) || claims.AdminID == 0 || adminRepo == nil {
			abortUnauthorized(c, "error.token_invalid")
			return
		}
		state, msgKey := adminAuthState(c.Request.Context(), claims.AdminID, adminRepo)
		if msgKey == "" && state.TokenVersion != claims.TokenVersion {
			msgKey = "error.token_revoked"
		}
		if msgKey != "" {
			abortUnauthorized(c, msgKey)
			return
		}

		c.Set(constants.ContextKeyAdminID, claims.AdminID)
		c.Set(constants.ContextKeyAdminUsername, claims.Username)
		c.Set(constants.ContextKeyAdminIsSuper, state.IsSuper)
		c.Next()
	}
}

func adminAuthState(ctx context.Context, adminID uint, repo repository.AdminRepository) (*cache.AdminAuthState, string) {
	if cached, hit, err := cache.GetAdminAuthState(ctx, adminID); err == nil && hit {
		return cached, ""
	}
	admin, err := repo.GetByID(adminID)
	if err != nil || admin == nil {
		return nil, "error.token_invalid"
	}
	state := cache.BuildAdminAuthState(admin)
	_ = cache.SetAdminAuthState(ctx, state)
	return state, ""
}

// AdminRBACMiddleware 按路由模板与方法校验管理员权限，超级管理员跳过
func AdminRBACMiddleware(authzService *authz.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetBool(constants.ContextKeyAdminIsSuper) {
			c.Next()
			return
		}
		adminID := c.GetUint(constants.ContextKeyAdminID)
		if adminID == 0 || authzService == nil {
			if authzService == nil {
				logger.Errorw("admin_rbac_service_unavailable")
			}
			abortUnauthorized(c, "error.unauthorized")
			return
		}

		resource := strings.TrimSpace(c.FullPath())
		if resource == "" {
			resource = c.Request.URL.Path
		}
		allowed, err := authzService.EnforceAdmin(adminID, resource, c.Request.Method)
		if err != nil {
			logger.Errorw("admin_rbac_enforce_failed",
				"admin_id", adminID,
				"method", c.Request.Method,
				"resource", resource,
				"error", err,
			)
			abortUnauthorized(c, "error.unauthorized")
			return
		}
		if !allowed {
			logger.Warnw("admin_rbac_permission_denied",
				"admin_id", adminID,
				"method", c.Request.Method,
				"resource", authz.NormalizeObject(resource),
			)
			response.Forbidden(c, i18n.T(i18n.ResolveLocale(c), "error.forbidden"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// UserJWTAuthMiddleware 强制用户登录
func UserJWTAuthMiddleware(secretKey string, userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, msgKey := authenticateUser(c, secretKey, userRepo)
		if msgKey != "" {
			abortUnauthorized(c, msgKey)
			return
		}
		setUserContext(c, claims)
		c.Next()
	}
}

// OptionalUserJWTMiddleware 可选用户鉴权
// 未携带 Authorization 时按匿名请求放行，携带但无效时拒绝
func OptionalUserJWTMiddleware(secretKey string, userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.TrimSpace(c.GetHeader("Authorization")) == "" {
			c.Next()
			return
		}
		claims, msgKey := authenticateUser(c, secretKey, userRepo)
		if msgKey != "" {
			abortUnauthorized(c, msgKey)
			return
		}
		setUserContext(c, claims)
		c.Next()
	}
}

func setUserContext(c *gin.Context, claims *service.UserJWTClaims) {
	c.Set(constants.ContextKeyUserID, claims.UserID)
	c.Set(constants.ContextKeyUserEmail, claims.Email)
}

// authenticateUser 校验用户令牌，失败时返回错误消息键
func authenticateUser(c *gin.Context, secretKey string, userRepo repository.UserRepository) (*service.UserJWTClaims, string) {
	if secretKey == "" {
		return nil, "error.jwt_secret_missing"
	}
	raw, msgKey := bearerToken(c)
	if msgKey != "" {
		return nil, msgKey
	}
	claims := &service.UserJWTClaims{}
	if !parseHS256(secretKey, raw, claims) || claims.UserID == 0 || userRepo == nil {
		return nil, "error.token_invalid"
	}

	ctx := c.Request.Context()
	state, hit, err := cache.GetUserAuthState(ctx, claims.UserID)
	if err != nil || !hit {
		user, err := userRepo.GetByID(claims.UserID)
		if err != nil || user == nil {
			return nil, "error.token_invalid"
		}
		state = cache.BuildUserAuthState(user)
		_ = cache.SetUserAuthState(ctx, state)
	}
	if !isActiveUserStatus(state.Status) {
		return nil, "error.user_disabled"
	}
	if claims.TokenVersion != state.TokenVersion {
		return nil, "error.token_revoked"
	}
	return claims, ""
}

// bearerToken 解析 Authorization: Bearer <token>
func bearerToken(c *gin.Context) (string, string) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", "error.auth_header_missing"
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	token = strings.TrimSpace(token)
	if !ok || token == "" {
		return "", "error.auth_header_invalid"
	}
	return token, ""
}

func abortUnauthorized(c *gin.Context, msgKey string) {
	response.Unauthorized(c, i18n.T(i18n.ResolveLocale(c), msgKey))
	c.Abort()
}

func isActiveUserStatus(status string) bool {
	return strings.EqualFold(strings.TrimSpace(status), constants.UserStatusActive)
}
