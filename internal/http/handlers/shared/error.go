package shared

import (
	"github.com/cartkeeper/internal/constants"
	"github.com/cartkeeper/internal/http/response"
	"github.com/cartkeeper/internal/i18n"
	"github.com/cartkeeper/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 携带 request_id 的日志
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if id := c.GetString(constants.ContextKeyRequestID); id != "" {
		return logger.SW("request_id", id)
	}
	return logger.S()
}

// RespondError 按 i18n 键返回错误，err 非空时记录原始错误
func RespondError(c *gin.Context, code int, key string, err error) {
	msg := i18n.T(i18n.ResolveLocale(c), key)
	respond(c, response.NewAppError(code, key, msg, err))
}

// RespondErrorWithMsg 返回已翻译好的错误消息
func RespondErrorWithMsg(c *gin.Context, code int, msg string, err error) {
	respond(c, response.NewAppError(code, "", msg, err))
}

func respond(c *gin.Context, appErr *response.AppError) {
	if appErr.Err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"key", appErr.Key,
			"path", c.FullPath(),
			"error", appErr.Err,
		)
	}
	response.Fail(c, appErr)
}
