package shared

import (
	"errors"

	"github.com/cartkeeper/internal/http/response"
	"github.com/cartkeeper/internal/service"

	"github.com/gin-gonic/gin"
)

// MappedError 业务错误到接口错误响应的映射
type MappedError struct {
	Target error
	Code   int
	Key    string
}

// RespondMapped 按规则映射错误，未命中时使用兜底错误并记录原始错误。
func RespondMapped(c *gin.Context, err error, rules []MappedError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.Target) {
			RespondError(c, rule.Code, rule.Key, nil)
			return
		}
	}
	RespondError(c, fallbackCode, fallbackKey, err)
}

// CartErrorRules 购物车相关业务错误
var CartErrorRules = []MappedError{
	{Target: service.ErrCSRFInvalid, Code: response.CodeForbidden, Key: "error.csrf_invalid"},
	{Target: service.ErrCartUnavailable, Code: response.CodeInternal, Key: "error.cart_unavailable"},
	{Target: service.ErrCartNotFound, Code: response.CodeNotFound, Key: "error.cart_not_found"},
	{Target: service.ErrItemNotFound, Code: response.CodeNotFound, Key: "error.cart_item_not_found"},
	{Target: service.ErrReferenceUnresolved, Code: response.CodeBadRequest, Key: "error.cart_product_unresolved"},
	{Target: service.ErrInvalidCartInput, Code: response.CodeBadRequest, Key: "error.cart_input_invalid"},
	{Target: service.ErrCartNotCheckedOut, Code: response.CodeBadRequest, Key: "error.cart_not_checked_out"},
}

// RespondCartError 返回购物车错误响应
func RespondCartError(c *gin.Context, err error) {
	RespondMapped(c, err, CartErrorRules, response.CodeInternal, "error.internal")
}

// PageOf 构建分页信息
func PageOf(page, pageSize int, total int64) response.Pagination {
	return response.NewPagination(page, pageSize, total)
}
