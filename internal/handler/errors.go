package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/user/hanime/internal/service"
	"github.com/user/hanime/internal/utils"
)

// fail 将业务错误转换为统一错误响应，内部错误只记录日志
func fail(c *gin.Context, err error) {
	var se *service.Error
	if !errors.As(err, &se) {
		log.Printf("[Handler] %s %s 未知错误: %v", c.Request.Method, c.Request.URL.Path, err)
		utils.InternalServerError(c, "")
		return
	}

	switch se.Kind {
	case service.KindValidation:
		utils.BadRequest(c, se.Message)
	case service.KindUnauthorized:
		utils.Unauthorized(c, se.Message)
	case service.KindForbidden:
		utils.Forbidden(c, se.Message)
	case service.KindNotFound:
		utils.NotFound(c, se.Message)
	case service.KindConflict:
		utils.Conflict(c, se.Message)
	case service.KindUpstream:
		status := se.Status
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		log.Printf("[Handler] %s 上游返回 %d: %v", c.Request.URL.Path, se.Status, se.Err)
		utils.Error(c, status, se.Message)
	default:
		log.Printf("[Handler] %s %s 内部错误: %v", c.Request.Method, c.Request.URL.Path, err)
		utils.InternalServerError(c, se.Message)
	}
}

// bindJSON 解析请求体，失败时返回400
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		utils.BadRequest(c, "请求体格式错误")
		return false
	}
	return true
}
