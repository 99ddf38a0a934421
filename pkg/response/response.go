package response

import (
	"net/http"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/posts-api/pkg/logger"
)

// ErrorBody 服务端错误 {"error": "..."}
type ErrorBody struct {
	Error string `json:"error" example:"The posts information could not be retrieved."`
}

// MessageBody 资源不存在 {"message": "..."}
type MessageBody struct {
	Message string `json:"message" example:"The post with the specified ID does not exist."`
}

// ValidationBody 请求体校验失败 {"errorMessage": "..."}
type ValidationBody struct {
	ErrorMessage string `json:"errorMessage" example:"Please provide title and contents for the post"`
}

// Success 200，直接输出数据本身（无外层包裹）
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// BadRequest 400
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ValidationBody{ErrorMessage: msg})
}

// PayloadTooLarge 413
func PayloadTooLarge(c *gin.Context, msg string) {
	c.JSON(http.StatusRequestEntityTooLarge, ErrorBody{Error: msg})
}

// NotFound 404
func NotFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, MessageBody{Message: msg})
}

// InternalError 500。err 只记录日志并上报，不返回给客户端
func InternalError(c *gin.Context, err error, msg string) {
	if err != nil {
		_ = c.Error(err)
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString("request_id")),
			zap.Error(err))
		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
	}
	c.JSON(http.StatusInternalServerError, ErrorBody{Error: msg})
}
