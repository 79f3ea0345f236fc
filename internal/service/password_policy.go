package service

import (
	"unicode"

	"github.com/cartkeeper/internal/config"
)

// passwordPolicyError 密码不满足策略，Key/Args 供接口层翻译
type passwordPolicyError struct {
	key  string
	args []interface{}
}

func (e passwordPolicyError) Error() string        { return e.key }
func (e passwordPolicyError) Is(target error) bool { return target == ErrWeakPassword }
func (e passwordPolicyError) Key() string          { return e.key }
func (e passwordPolicyError) Args() []interface{}  { return e.args }

type charClasses struct {
	upper, lower, number, special bool
}

func classify(password string) charClasses {
	var cc charClasses
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			cc.upper = true
		case unicode.IsLower(r):
			cc.lower = true
		case unicode.IsDigit(r):
			cc.number = true
		default:
			cc.special = true
		}
	}
	return cc
}

// validatePassword 按配置校验密码，按长度、大写、小写、数字、特殊字符的顺序返回第一个未满足项
func validatePassword(policy config.PasswordPolicyConfig, password string) error {
	if policy.MinLength > 0 && len([]rune(password)) < policy.MinLength {
		return passwordPolicyError{key: "error.password_min_length", args: []interface{}{policy.MinLength}}
	}
	cc := classify(password)
	checks := []struct {
		required bool
		present  bool
		key      string
	}{
		{policy.RequireUpper, cc.upper, "error.password_require_upper"},
		{policy.RequireLower, cc.lower, "error.password_require_lower"},
		{policy.RequireNumber, cc.number, "error.password_require_number"},
		{policy.RequireSpecial, cc.special, "error.password_require_special"},
	}
	for _, check := range checks {
		if check.required && !check.present {
			return passwordPolicyError{key: check.key}
		}
	}
	return nil
}
