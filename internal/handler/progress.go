package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/hanime/internal/middleware"
	"github.com/user/hanime/internal/service"
)

// GetProgress 获取单个内容的观看进度
func (h *Handler) GetProgress(c *gin.Context) {
	view, err := h.Progress.Get(c.Request.Context(), middleware.GetUserID(c), c.Query("contentKey"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ListProgress 获取全部观看进度（继续观看列表）
func (h *Handler) ListProgress(c *gin.Context) {
	list, err := h.Progress.List(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// SaveProgress 播放心跳上报
func (h *Handler) SaveProgress(c *gin.Context) {
	var payload service.ProgressPayload
	if !bindJSON(c, &payload) {
		return
	}
	p, err := h.Progress.Set(c.Request.Context(), middleware.GetUserID(c), payload)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// DeleteProgress 删除观看进度
func (h *Handler) DeleteProgress(c *gin.Context) {
	if err := h.Progress.Clear(c.Request.Context(), middleware.GetUserID(c), c.Query("contentKey")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
