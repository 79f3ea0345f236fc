package constants

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 会话键常量
const (
	// SessionCartKey 匿名购物车 ID 在会话中的键
	SessionCartKey = "CART-ID"
	// SessionCSRFKey 会话内的 CSRF 令牌
	SessionCSRFKey = "CSRF-TOKEN"
)

// HTTP 头常量
const (
	HeaderCSRFToken = "X-CSRF-Token"
	HeaderRequestID = "X-Request-ID"
)

// 可被购物车项引用的实体类型
const (
	RefTypeProduct = "product"
	RefTypeUser    = "user"
)

// 队列常量
const (
	QueueDefault     = "default"
	QueueMaintenance = "maintenance"
)

// 异步任务类型
const (
	TaskCartCheckedOut = "cart:checked_out"
	TaskCartPurgeStale = "cart:purge_stale"
)

// gin 上下文键
const (
	ContextKeyRequestID     = "request_id"
	ContextKeyUserID        = "user_id"
	ContextKeyUserEmail     = "user_email"
	ContextKeyAdminID       = "admin_id"
	ContextKeyAdminUsername = "admin_username"
	ContextKeyAdminIsSuper  = "admin_is_super"
	ContextKeySession       = "session"
	ContextKeyCart          = "cart"
	ContextKeyCartError     = "cart_error"
)
