package admin

import (
	"strconv"
	"strings"

	"github.com/cartkeeper/internal/constants"
	handlershared "github.com/cartkeeper/internal/http/handlers/shared"
	"github.com/cartkeeper/internal/http/response"
	"github.com/cartkeeper/internal/logger"
	"github.com/cartkeeper/internal/models"
	"github.com/cartkeeper/internal/repository"
	"github.com/cartkeeper/internal/service"

	"github.com/gin-gonic/gin"
)

// ListAuditLogs 获取后台审计日志列表
func (h *Handler) ListAuditLogs(c *gin.Context) {
	page, pageSize := handlershared.PaginationFromQuery(c)

	operatorAdminIDRaw := strings.TrimSpace(c.Query("operator_admin_id"))
	targetIDRaw := strings.TrimSpace(c.Query("target_id"))
	action := strings.TrimSpace(c.Query("action"))
	targetType := strings.TrimSpace(c.Query("target_type"))
	createdFromRaw := strings.TrimSpace(c.Query("created_from"))
	createdToRaw := strings.TrimSpace(c.Query("created_to"))

	var operatorAdminID uint
	if operatorAdminIDRaw != "" {
		raw, err := strconv.ParseUint(operatorAdminIDRaw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
		operatorAdminID = uint(raw)
	}

	var targetID uint
	if targetIDRaw != "" {
		raw, err := strconv.ParseUint(targetIDRaw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
		targetID = uint(raw)
	}

	createdFrom, err := parseTimeNullable(createdFromRaw)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	createdTo, err := parseTimeNullable(createdToRaw)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	items, total, err := h.AdminAuditService.ListForAdmin(repository.AdminAuditLogListFilter{
		Page:            page,
		PageSize:        pageSize,
		OperatorAdminID: operatorAdminID,
		Action:          action,
		TargetType:      targetType,
		TargetID:        targetID,
		CreatedFrom:     createdFrom,
		CreatedTo:       createdTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.audit_fetch_failed", err)
		return
	}

	response.SuccessWithPage(c, items, handlershared.PageOf(page, pageSize, total))
}

// recordAudit 记录后台操作，写入失败只告警不影响主流程
func (h *Handler) recordAudit(c *gin.Context, action, targetType string, targetID *uint, detail models.JSON) {
	if h == nil || h.AdminAuditService == nil {
		return
	}
	input := service.AdminAuditRecordInput{
		OperatorAdminID:  currentAdminID(c),
		OperatorUsername: currentUsername(c),
		Action:           action,
		TargetType:       targetType,
		TargetID:         targetID,
		Method:           c.Request.Method,
		Path:             c.Request.URL.Path,
		RequestID:        currentRequestID(c),
		Detail:           detail,
	}
	if err := h.AdminAuditService.Record(input); err != nil {
		logger.Warnw("admin_audit_record_failed",
			"error", err,
			"action", action,
			"operator_admin_id", input.OperatorAdminID,
		)
	}
}

func currentAdminID(c *gin.Context) uint {
	return c.GetUint(constants.ContextKeyAdminID)
}

func currentUsername(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(constants.ContextKeyAdminUsername))
}

func currentRequestID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(constants.ContextKeyRequestID))
}
