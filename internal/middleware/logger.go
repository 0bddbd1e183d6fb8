package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger 请求日志中间件，视频流只在结束时记录一次
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		userID := GetUserID(c)
		if userID == "" {
			userID = "-"
		}
		log.Printf("[%s] %s %s %s %d %d %v",
			c.Request.Method,
			path,
			c.ClientIP(),
			userID,
			c.Writer.Status(),
			c.Writer.Size(),
			time.Since(start),
		)
	}
}
