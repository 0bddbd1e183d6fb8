package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HashToken 令牌哈希，库中只保存哈希值
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Response 统一错误响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	Success bool        `json:"success"`
}

// Error 返回错误响应
func Error(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, Response{
		Code:    code,
		Message: message,
		Data:    nil,
		Success: false,
	})
}

func orDefault(message, def string) string {
	if message == "" {
		return def
	}
	return message
}

// BadRequest 返回400错误
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, orDefault(message, "请求参数错误"))
}

// Unauthorized 返回401错误
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, orDefault(message, "未登录"))
}

// Forbidden 返回403错误
func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, orDefault(message, "无权访问"))
}

// NotFound 返回404错误
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, orDefault(message, "资源不存在"))
}

// Conflict 返回409错误
func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, orDefault(message, "资源已存在"))
}

// TooManyRequests 返回429错误
func TooManyRequests(c *gin.Context, message string) {
	Error(c, http.StatusTooManyRequests, orDefault(message, "请求过于频繁"))
}

// InternalServerError 返回500错误
func InternalServerError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, orDefault(message, "服务器内部错误"))
}
