package response

import (
	"Atheneum/internal/api/dto"
	"Atheneum/internal/service"
	"errors"
	log "log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

const (
	Ok                  = 200
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	Conflict            = 409
	TooManyRequests     = 429
	InternalServerError = 500
	BadGateway          = 502
)

// Success 成功返回封装
func Success(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusOK, dto.Response{
		Code:    Ok,
		Message: "success",
		Data:    data,
	})
}

// Fail 失败返回封装，业务码同时作为 HTTP 状态码
func Fail(c *gin.Context, businessCode int, message string) {
	c.JSON(businessCode, dto.Response{
		Code:    businessCode,
		Message: message,
		Data:    nil,
	})
}

// Error 处理错误
func Error(c *gin.Context, err error) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		Fail(c, BadRequest, "invalid request parameters")
		return
	}

	var unmarshalTypeError *json.UnmarshalTypeError
	if errors.As(err, &unmarshalTypeError) {
		Fail(c, BadRequest, "malformed json body")
		return
	}

	code, ok := service.ErrorMap[err]
	if !ok {
		// 服务层会把上下文包进 sentinel，按 errors.Is 再匹配一轮
		for sentinel, c := range service.ErrorMap {
			if errors.Is(err, sentinel) {
				code, ok = c, true
				break
			}
		}
	}
	if !ok {
		code = InternalServerError
		log.ErrorContext(c.Request.Context(), "unexpected error", "err", err)
		// 5xx 不向客户端透出内部细节
		Fail(c, code, "internal error")
		return
	}
	Fail(c, code, err.Error())
}
