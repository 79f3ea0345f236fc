package models

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultAdminPassword 未配置密码时使用，启动日志会提示修改
const DefaultAdminPassword = "admin123"

// EnsureDefaultAdmin 管理员表为空时创建超级管理员，已有账号时返回 nil
func EnsureDefaultAdmin(db *gorm.DB, username, password string) (*Admin, error) {
	var count int64
	if err := db.Model(&Admin{}).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, nil
	}
	if username == "" {
		username = "admin"
	}
	if password == "" {
		password = DefaultAdminPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	// 其余管理员通过角色授权
	admin := &Admin{Username: username, PasswordHash: string(hash), IsSuper: true}
	if err := db.Create(admin).Error; err != nil {
		return nil, err
	}
	return admin, nil
}
