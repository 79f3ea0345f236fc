package admin

import (
	"errors"
	"net/url"
	"strings"

	"github.com/cartkeeper/internal/authz"
	"github.com/cartkeeper/internal/constants"
	handlershared "github.com/cartkeeper/internal/http/handlers/shared"
	"github.com/cartkeeper/internal/http/response"
	"github.com/cartkeeper/internal/models"
	"github.com/cartkeeper/internal/service"

	"github.com/gin-gonic/gin"
)

type rolePayload struct {
	Role string `json:"role" binding:"required"`
}

type policyPayload struct {
	Role   string `json:"role" binding:"required"`
	Object string `json:"object" binding:"required"`
	Action string `json:"action" binding:"required"`
}

type adminRolesPayload struct {
	Roles []string `json:"roles"`
}

// respondAuthzError 写操作的错误映射，读操作统一走 authz_fetch_failed
func respondAuthzError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, authz.ErrImmutableRole):
		respondError(c, response.CodeBadRequest, "error.role_immutable", nil)
	case errors.Is(err, authz.ErrUnavailable):
		respondError(c, response.CodeInternal, "error.internal", err)
	default:
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
	}
}

// auditAuthz 权限变更同时写审计与请求日志
func (h *Handler) auditAuthz(c *gin.Context, action, targetType string, targetID *uint, detail models.JSON) {
	h.recordAudit(c, action, targetType, targetID, detail)
	requestLog(c).Infow("admin_authz_changed",
		"action", action,
		"operator_admin_id", currentAdminID(c),
		"detail", detail,
	)
}

// GetAuthzMe 当前管理员的角色与生效策略
func (h *Handler) GetAuthzMe(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	roles, err := h.AuthzService.GetAdminRoles(adminID)
	if err == nil {
		var policies []authz.Policy
		if policies, err = h.AuthzService.GetAdminPolicies(adminID); err == nil {
			response.Success(c, gin.H{
				"admin_id": adminID,
				"is_super": c.GetBool(constants.ContextKeyAdminIsSuper),
				"roles":    roles,
				"policies": policies,
			})
			return
		}
	}
	respondError(c, response.CodeInternal, "error.authz_fetch_failed", err)
}

// ListAuthzRoles 角色列表
func (h *Handler) ListAuthzRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_fetch_failed", err)
		return
	}
	response.Success(c, roles)
}

// ListAuthzAdmins 管理员及其角色
func (h *Handler) ListAuthzAdmins(c *gin.Context) {
	admins, err := h.AdminRepo.List()
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_fetch_failed", err)
		return
	}
	rows := make([]gin.H, 0, len(admins))
	for _, admin := range admins {
		roles, err := h.AuthzService.GetAdminRoles(admin.ID)
		if err != nil {
			respondError(c, response.CodeInternal, "error.authz_fetch_failed", err)
			return
		}
		rows = append(rows, gin.H{
			"id":            admin.ID,
			"username":      admin.Username,
			"is_super":      admin.IsSuper,
			"last_login_at": admin.LastLoginAt,
			"roles":         roles,
		})
	}
	response.Success(c, rows)
}

// CreateAuthzRole 创建角色
func (h *Handler) CreateAuthzRole(c *gin.Context) {
	var req rolePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	role, err := h.AuthzService.EnsureRole(req.Role)
	if err != nil {
		respondAuthzError(c, err)
		return
	}
	h.auditAuthz(c, service.AuditActionRoleCreate, "role", nil, models.JSON{"role": role})
	response.Success(c, gin.H{"role": role})
}

// DeleteAuthzRole 删除角色，预置角色拒绝删除
func (h *Handler) DeleteAuthzRole(c *gin.Context) {
	role, ok := roleParam(c)
	if !ok {
		return
	}
	if err := h.AuthzService.DeleteRole(role); err != nil {
		respondAuthzError(c, err)
		return
	}
	h.auditAuthz(c, service.AuditActionRoleDelete, "role", nil, models.JSON{"role": role})
	response.Success(c, nil)
}

// GetAuthzRolePolicies 角色直接持有的策略
func (h *Handler) GetAuthzRolePolicies(c *gin.Context) {
	role, ok := roleParam(c)
	if !ok {
		return
	}
	policies, err := h.AuthzService.GetRolePolicies(role)
	if err != nil {
		respondAuthzError(c, err)
		return
	}
	response.Success(c, policies)
}

// GrantAuthzPolicy 授予策略
func (h *Handler) GrantAuthzPolicy(c *gin.Context) {
	h.changePolicy(c, service.AuditActionPolicyGrant, h.AuthzService.GrantRolePolicy)
}

// RevokeAuthzPolicy 撤销策略
func (h *Handler) RevokeAuthzPolicy(c *gin.Context) {
	h.changePolicy(c, service.AuditActionPolicyRevoke, h.AuthzService.RevokeRolePolicy)
}

func (h *Handler) changePolicy(c *gin.Context, action string, apply func(role, object, act string) error) {
	var req policyPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := apply(req.Role, req.Object, req.Action); err != nil {
		respondAuthzError(c, err)
		return
	}
	h.auditAuthz(c, action, "policy", nil, models.JSON{
		"role":   req.Role,
		"object": req.Object,
		"method": strings.ToUpper(strings.TrimSpace(req.Action)),
	})
	response.Success(c, nil)
}

// GetAuthzAdminRoles 指定管理员的角色
func (h *Handler) GetAuthzAdminRoles(c *gin.Context) {
	admin, ok := h.loadTargetAdmin(c)
	if !ok {
		return
	}
	roles, err := h.AuthzService.GetAdminRoles(admin.ID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_fetch_failed", err)
		return
	}
	response.Success(c, roles)
}

// SetAuthzAdminRoles 覆盖指定管理员的角色
func (h *Handler) SetAuthzAdminRoles(c *gin.Context) {
	admin, ok := h.loadTargetAdmin(c)
	if !ok {
		return
	}
	var req adminRolesPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.AuthzService.SetAdminRoles(admin.ID, req.Roles); err != nil {
		respondAuthzError(c, err)
		return
	}
	h.auditAuthz(c, service.AuditActionAdminRolesUpdate, "admin", &admin.ID, models.JSON{
		"target_username": admin.Username,
		"roles":           req.Roles,
	})
	response.Success(c, nil)
}

func (h *Handler) loadTargetAdmin(c *gin.Context) (*models.Admin, bool) {
	adminID, ok := handlershared.ParseUintParam(c, "id", "error.admin_id_invalid")
	if !ok {
		return nil, false
	}
	admin, err := h.AdminRepo.GetByID(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_fetch_failed", err)
		return nil, false
	}
	if admin == nil {
		respondError(c, response.CodeNotFound, "error.admin_not_found", nil)
		return nil, false
	}
	return admin, true
}

// roleParam 路由中的角色名可能被 URL 编码
func roleParam(c *gin.Context) (string, bool) {
	raw := c.Param("role")
	if decoded, err := url.QueryUnescape(raw); err == nil {
		raw = decoded
	}
	role := strings.TrimSpace(raw)
	if role == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return "", false
	}
	return role, true
}
