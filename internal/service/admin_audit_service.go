package service

import (
	"strings"
	"time"

	"github.com/cartkeeper/internal/models"
	"github.com/cartkeeper/internal/repository"
)

// 审计动作
const (
	AuditActionCartDelete       = "cart.delete"
	AuditActionCartPurge        = "cart.purge"
	AuditActionCartItemPrice    = "cart_item.price"
	AuditActionCartItemProduct  = "cart_item.product"
	AuditActionProductCreate    = "product.create"
	AuditActionAdminRolesUpdate = "admin.roles_update"
	AuditActionPasswordChange   = "admin.password_change"
	AuditActionRoleCreate       = "authz.role_create"
	AuditActionRoleDelete       = "authz.role_delete"
	AuditActionPolicyGrant      = "authz.policy_grant"
	AuditActionPolicyRevoke     = "authz.policy_revoke"
	AuditActionUserStatus       = "user.status_update"
)

// AdminAuditRecordInput 审计记录输入
type AdminAuditRecordInput struct {
	OperatorAdminID  uint
	OperatorUsername string
	Action           string
	TargetType       string
	TargetID         *uint
	Method           string
	Path             string
	RequestID        string
	Detail           models.JSON
}

// AdminAuditService 后台审计服务
type AdminAuditService struct {
	repo repository.AdminAuditLogRepository
	now  func() time.Time
}

// NewAdminAuditService 创建后台审计服务
func NewAdminAuditService(repo repository.AdminAuditLogRepository) *AdminAuditService {
	return &AdminAuditService{repo: repo, now: time.Now}
}

// Record 写入审计日志，缺少操作人或动作时忽略
func (s *AdminAuditService) Record(input AdminAuditRecordInput) error {
	if s == nil || s.repo == nil {
		return nil
	}
	if input.OperatorAdminID == 0 || strings.TrimSpace(input.Action) == "" {
		return nil
	}

	item := &models.AdminAuditLog{
		OperatorAdminID:  input.OperatorAdminID,
		OperatorUsername: strings.TrimSpace(input.OperatorUsername),
		Action:           strings.TrimSpace(input.Action),
		TargetType:       strings.TrimSpace(input.TargetType),
		TargetID:         input.TargetID,
		Method:           strings.ToUpper(strings.TrimSpace(input.Method)),
		Path:             strings.TrimSpace(input.Path),
		RequestID:        strings.TrimSpace(input.RequestID),
		DetailJSON:       input.Detail,
		CreatedAt:        s.now(),
	}
	return s.repo.Create(item)
}

// ListForAdmin 管理端查询审计日志
func (s *AdminAuditService) ListForAdmin(filter repository.AdminAuditLogListFilter) ([]models.AdminAuditLog, int64, error) {
	if s == nil || s.repo == nil {
		return []models.AdminAuditLog{}, 0, nil
	}
	return s.repo.ListAdmin(filter)
}
