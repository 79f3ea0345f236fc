package cache

import (
	"context"
	"time"

	"github.com/cartkeeper/internal/models"
)

// 鉴权快照只用于减少每个请求的账号查询，令牌版本变化时由服务层覆盖写入
var (
	userAuthStates  = idSlot[UserAuthState]{namespace: "auth:user", ttl: 10 * time.Minute}
	adminAuthStates = idSlot[AdminAuthState]{namespace: "auth:admin", ttl: 10 * time.Minute}
)

// UserAuthState 用户鉴权快照
type UserAuthState struct {
	UserID       uint   `json:"user_id"`
	Status       string `json:"status"`
	TokenVersion uint64 `json:"token_version"`
	UpdatedAt    int64  `json:"updated_at"`
}

// AdminAuthState 管理员鉴权快照
type AdminAuthState struct {
	AdminID      uint   `json:"admin_id"`
	Username     string `json:"username"`
	TokenVersion uint64 `json:"token_version"`
	IsSuper      bool   `json:"is_super"`
	UpdatedAt    int64  `json:"updated_at"`
}

// BuildUserAuthState 从用户构建快照
func BuildUserAuthState(user *models.User) *UserAuthState {
	if user == nil {
		return nil
	}
	return &UserAuthState{
		UserID:       user.ID,
		Status:       user.Status,
		TokenVersion: user.TokenVersion,
		UpdatedAt:    time.Now().Unix(),
	}
}

// BuildAdminAuthState 从管理员构建快照
func BuildAdminAuthState(admin *models.Admin) *AdminAuthState {
	if admin == nil {
		return nil
	}
	return &AdminAuthState{
		AdminID:      admin.ID,
		Username:     admin.Username,
		TokenVersion: admin.TokenVersion,
		IsSuper:      admin.IsSuper,
		UpdatedAt:    time.Now().Unix(),
	}
}

// GetUserAuthState 读取用户快照
func GetUserAuthState(ctx context.Context, userID uint) (*UserAuthState, bool, error) {
	return userAuthStates.get(ctx, userID)
}

// SetUserAuthState 写入用户快照
func SetUserAuthState(ctx context.Context, state *UserAuthState) error {
	if state == nil {
		return nil
	}
	return userAuthStates.set(ctx, state.UserID, state, 0)
}

// DelUserAuthState 删除用户快照，禁用用户后调用
func DelUserAuthState(ctx context.Context, userID uint) error {
	return userAuthStates.del(ctx, userID)
}

// GetAdminAuthState 读取管理员快照
func GetAdminAuthState(ctx context.Context, adminID uint) (*AdminAuthState, bool, error) {
	return adminAuthStates.get(ctx, adminID)
}

// SetAdminAuthState 写入管理员快照
func SetAdminAuthState(ctx context.Context, state *AdminAuthState) error {
	if state == nil {
		return nil
	}
	return adminAuthStates.set(ctx, state.AdminID, state, 0)
}
