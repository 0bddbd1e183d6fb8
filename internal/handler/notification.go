package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/user/hanime/internal/middleware"
)

// GetNotifications 通知列表
func (h *Handler) GetNotifications(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	res, err := h.Notifications.List(c.Request.Context(), middleware.GetUserID(c), page)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// MarkNotificationRead 标记单条已读
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	n, err := h.Notifications.MarkRead(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

// MarkAllNotificationsRead 全部已读
func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	count, err := h.Notifications.MarkAllRead(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": count})
}
