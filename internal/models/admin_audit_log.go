package models

import "time"

// AdminAuditLog 后台操作审计日志
// 记录删除购物车、清理、改价、角色变更等写操作，支持按管理员、动作与时间范围检索
type AdminAuditLog struct {
	ID               uint      `gorm:"primarykey" json:"id"`
	OperatorAdminID  uint      `gorm:"index;not null" json:"operator_admin_id"`
	OperatorUsername string    `gorm:"type:varchar(100);index;not null;default:''" json:"operator_username"`
	Action           string    `gorm:"type:varchar(100);index;not null" json:"action"`
	TargetType       string    `gorm:"type:varchar(64);index;not null;default:''" json:"target_type"`
	TargetID         *uint     `gorm:"index" json:"target_id,omitempty"`
	Method           string    `gorm:"type:varchar(20);not null;default:''" json:"method"`
	Path             string    `gorm:"type:varchar(255);not null;default:''" json:"path"`
	RequestID        string    `gorm:"type:varchar(64);index;not null;default:''" json:"request_id"`
	DetailJSON       JSON      `gorm:"type:json" json:"detail"`
	CreatedAt        time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (AdminAuditLog) TableName() string {
	return "admin_audit_logs"
}
