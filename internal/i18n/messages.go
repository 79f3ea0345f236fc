package i18n

var messages = map[string]map[string]string{
	LocaleZH: {
		"error.bad_request":              "请求参数错误",
		"error.internal":                 "服务器内部错误",
		"error.not_found":                "资源不存在",
		"error.unauthorized":             "未登录或登录已失效",
		"error.forbidden":                "没有权限执行该操作",
		"error.jwt_secret_missing":       "服务端未配置 JWT 密钥",
		"error.token_invalid":            "登录凭证无效",
		"error.token_revoked":            "登录凭证已失效，请重新登录",
		"error.auth_header_missing":      "缺少 Authorization 请求头",
		"error.auth_header_invalid":      "Authorization 请求头格式错误",
		"error.user_disabled":            "账号已被禁用",
		"error.context_type_invalid":     "上下文数据类型错误",
		"error.rate_limit_unavailable":   "限流服务暂不可用",
		"error.rate_limited":             "请求过于频繁，请 %d 秒后重试",
		"error.login_too_many":           "登录尝试次数过多，请 %d 秒后重试",
		"error.login_failed":             "账号或密码错误",
		"error.email_invalid":            "邮箱格式不正确",
		"error.password_weak":            "密码强度不足",
		"error.password_old_invalid":     "原密码错误",
		"error.user_exists":              "该邮箱已注册",
		"error.user_id_invalid":          "用户 ID 无效",
		"error.admin_id_invalid":         "管理员 ID 无效",
		"error.role_invalid":             "角色参数无效",
		"error.role_immutable":           "预置角色不可删除",
		"error.csrf_invalid":             "CSRF 令牌无效",
		"error.session_unavailable":      "会话服务不可用",
		"error.cart_unavailable":         "购物车不可用",
		"error.cart_not_found":           "购物车不存在",
		"error.cart_id_invalid":          "购物车 ID 无效",
		"error.cart_item_not_found":      "购物车项不存在",
		"error.cart_item_id_invalid":     "购物车项 ID 无效",
		"error.cart_product_unresolved":  "购物车项引用的商品不存在",
		"error.cart_input_invalid":       "购物车参数无效",
		"error.cart_not_checked_out":     "购物车尚未结账",
		"error.snapshot_not_found":       "结账快照不存在",
		"error.product_not_found":        "商品不存在",
		"error.product_slug_exists":      "商品标识已存在",
		"error.product_input_invalid":    "商品参数无效",
		"error.password_min_length":      "密码长度至少为 %d 位",
		"error.password_require_upper":   "密码需包含大写字母",
		"error.password_require_lower":   "密码需包含小写字母",
		"error.password_require_number":  "密码需包含数字",
		"error.password_require_special": "密码需包含特殊字符",
		"error.register_failed":          "注册失败",
		"error.user_not_found":           "用户不存在",
		"error.user_fetch_failed":        "获取用户失败",
		"error.user_update_failed":       "更新用户失败",
		"error.admin_not_found":          "管理员不存在",
		"error.save_failed":              "保存失败",
		"error.product_fetch_failed":     "获取商品失败",
		"error.product_create_failed":    "创建商品失败",
		"error.cart_fetch_failed":        "获取购物车失败",
		"error.cart_purge_failed":        "清理购物车失败",
		"error.audit_fetch_failed":       "获取审计日志失败",
		"error.authz_fetch_failed":       "获取权限数据失败",
	},
	LocaleTW: {
		"error.bad_request":             "請求參數錯誤",
		"error.internal":                "伺服器內部錯誤",
		"error.not_found":               "資源不存在",
		"error.unauthorized":            "未登入或登入已失效",
		"error.forbidden":               "沒有權限執行該操作",
		"error.token_invalid":           "登入憑證無效",
		"error.token_revoked":           "登入憑證已失效，請重新登入",
		"error.user_disabled":           "帳號已被停用",
		"error.rate_limited":            "請求過於頻繁，請 %d 秒後重試",
		"error.login_too_many":          "登入嘗試次數過多，請 %d 秒後重試",
		"error.login_failed":            "帳號或密碼錯誤",
		"error.csrf_invalid":            "CSRF 權杖無效",
		"error.cart_not_found":          "購物車不存在",
		"error.cart_item_not_found":     "購物車項目不存在",
		"error.cart_product_unresolved": "購物車項目引用的商品不存在",
		"error.cart_input_invalid":      "購物車參數無效",
		"error.product_not_found":       "商品不存在",
	},
	LocaleEN: {
		"error.bad_request":              "Invalid request parameters",
		"error.internal":                 "Internal server error",
		"error.not_found":                "Resource not found",
		"error.unauthorized":             "Not signed in or session expired",
		"error.forbidden":                "Permission denied",
		"error.jwt_secret_missing":       "JWT secret is not configured",
		"error.token_invalid":            "Invalid token",
		"error.token_revoked":            "Token revoked, please sign in again",
		"error.auth_header_missing":      "Authorization header is missing",
		"error.auth_header_invalid":      "Authorization header is malformed",
		"error.user_disabled":            "Account disabled",
		"error.context_type_invalid":     "Invalid context value type",
		"error.rate_limit_unavailable":   "Rate limiter unavailable",
		"error.rate_limited":             "Too many requests, retry in %d seconds",
		"error.login_too_many":           "Too many login attempts, retry in %d seconds",
		"error.login_failed":             "Invalid account or password",
		"error.email_invalid":            "Invalid email address",
		"error.password_weak":            "Password is too weak",
		"error.password_old_invalid":     "Current password is incorrect",
		"error.user_exists":              "Email already registered",
		"error.user_id_invalid":          "Invalid user id",
		"error.admin_id_invalid":         "Invalid admin id",
		"error.role_invalid":             "Invalid role",
		"error.role_immutable":           "Builtin roles cannot be deleted",
		"error.csrf_invalid":             "Invalid CSRF token",
		"error.session_unavailable":      "Session service unavailable",
		"error.cart_unavailable":         "Cart unavailable",
		"error.cart_not_found":           "Cart not found",
		"error.cart_id_invalid":          "Invalid cart id",
		"error.cart_item_not_found":      "Cart item not found",
		"error.cart_item_id_invalid":     "Invalid cart item id",
		"error.cart_product_unresolved":  "The product referenced by the cart item does not exist",
		"error.cart_input_invalid":       "Invalid cart parameters",
		"error.cart_not_checked_out":     "Cart has not been checked out",
		"error.snapshot_not_found":       "Checkout snapshot not found",
		"error.product_not_found":        "Product not found",
		"error.product_slug_exists":      "Product slug already exists",
		"error.product_input_invalid":    "Invalid product parameters",
		"error.password_min_length":      "Password must be at least %d characters",
		"error.password_require_upper":   "Password must contain an uppercase letter",
		"error.password_require_lower":   "Password must contain a lowercase letter",
		"error.password_require_number":  "Password must contain a digit",
		"error.password_require_special": "Password must contain a special character",
		"error.register_failed":          "Registration failed",
		"error.user_not_found":           "User not found",
		"error.user_fetch_failed":        "Failed to load user",
		"error.user_update_failed":       "Failed to update user",
		"error.admin_not_found":          "Admin not found",
		"error.save_failed":              "Save failed",
		"error.product_fetch_failed":     "Failed to load products",
		"error.product_create_failed":    "Failed to create product",
		"error.cart_fetch_failed":        "Failed to load carts",
		"error.cart_purge_failed":        "Failed to purge carts",
		"error.audit_fetch_failed":       "Failed to load audit logs",
		"error.authz_fetch_failed":       "Failed to load authorization data",
	},
}
