package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/hanime/internal/handler"
	"github.com/user/hanime/internal/middleware"
)

// RegisterRoutes 注册所有路由，limiter 用于公开计数接口，为 nil 时不限流
func RegisterRoutes(r *gin.Engine, h *handler.Handler, limiter *middleware.RateLimiter) {
	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	secret := h.Config.AppSecret
	requireAuth := middleware.RequireAuth(secret)
	optionalAuth := middleware.OptionalAuth(secret)

	api := r.Group("/api")

	// ==================== 账号 ====================
	auth := api.Group("/auth")
	{
		auth.POST("/signup", h.Signup)
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
		auth.GET("/session", optionalAuth, h.Session)
		auth.POST("/reset-password", h.RequestPasswordReset)
		auth.POST("/update-password", optionalAuth, h.UpdatePassword)
	}

	// ==================== 观看进度 ====================
	progress := api.Group("/progress", requireAuth)
	{
		progress.GET("", h.GetProgress)
		progress.POST("", h.SaveProgress)
		progress.DELETE("", h.DeleteProgress)
		progress.GET("/list", h.ListProgress)
	}

	// ==================== 用户 ====================
	user := api.Group("/user")
	{
		user.GET("/watchlist", optionalAuth, h.GetWatchlist)
		user.POST("/watchlist", requireAuth, h.SaveWatchlist)
		user.DELETE("/watchlist", requireAuth, h.DeleteWatchlist)
		user.PUT("/profile", requireAuth, h.UpdateProfile)
	}

	// ==================== 评论 ====================
	comments := api.Group("/content/comments")
	{
		comments.GET("", h.GetComments)
		comments.GET("/thread", h.GetThread)
		comments.POST("", requireAuth, h.PostComment)
		comments.PATCH("", requireAuth, h.ReactComment)
		comments.POST("/reply", requireAuth, h.PostReply)
		comments.POST("/like", requireAuth, h.LikeComment)
	}

	// ==================== 通知 ====================
	notifications := api.Group("/notifications", requireAuth)
	{
		notifications.GET("", h.GetNotifications)
		notifications.PATCH("/read-all", h.MarkAllNotificationsRead)
		notifications.PATCH("/:id", h.MarkNotificationRead)
	}

	// ==================== 计数 ====================
	// 播放量累加不限流，保证每次请求都被计入
	api.POST("/views", h.IncrementView)
	counters := api.Group("", limiter.Middleware())
	{
		counters.GET("/views", h.GetViews)
		counters.GET("/share", h.GetShares)
		counters.POST("/share", h.IncrementShare)
	}

	// ==================== 创作者 ====================
	api.GET("/creator", requireAuth, h.GetCreator)
	api.POST("/creator", requireAuth, h.SaveCreator)
	api.GET("/creator/resolve", h.ResolveCreator)
	api.GET("/stats", requireAuth, h.GetStats)

	// ==================== 上游代理 ====================
	api.GET("/search", h.SearchContent)
	api.GET("/home", h.Home)
	api.GET("/video", h.StreamVideo)
}
