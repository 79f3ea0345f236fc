package service

import (
	"errors"
	"fmt"

	"github.com/cartkeeper/internal/reference"
)

var (
	// ErrItemNotFound 当前购物车内不存在该购物车项
	ErrItemNotFound = errors.New("cart item not found")
	// ErrCartNotFound 没有符合条件的购物车（只读查询不会自动创建）
	ErrCartNotFound = errors.New("cart not found")
	// ErrReferenceUnresolved 商品引用无法解析
	ErrReferenceUnresolved = fmt.Errorf("cart item product: %w", reference.ErrUnresolved)
	// ErrInvalidCartInput 购物车参数非法
	ErrInvalidCartInput = errors.New("invalid cart input")
	// ErrCartUnavailable 请求未绑定购物车
	ErrCartUnavailable = errors.New("cart unavailable")
	// ErrCartNotCheckedOut 购物车尚未结账
	ErrCartNotCheckedOut = errors.New("cart not checked out")
	// ErrCSRFInvalid 匿名会话的写请求未携带有效 CSRF 令牌
	ErrCSRFInvalid = errors.New("csrf token invalid")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrWeakPassword       = errors.New("weak password")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrUserExists         = errors.New("user already exists")
	ErrUserDisabled       = errors.New("user disabled")
	ErrNotFound           = errors.New("not found")
)
