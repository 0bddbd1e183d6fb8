package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type viewRequest struct {
	ContentKey string `json:"contentKey"`
}

type shareRequest struct {
	PageID   string `json:"pageId"`
	Platform string `json:"platform"`
}

// GetViews 获取播放量
func (h *Handler) GetViews(c *gin.Context) {
	key := c.Query("contentKey")
	views, err := h.Counters.Views(c.Request.Context(), key)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contentKey": key, "views": views})
}

// IncrementView 播放量加一
func (h *Handler) IncrementView(c *gin.Context) {
	var req viewRequest
	if !bindJSON(c, &req) {
		return
	}
	views, err := h.Counters.IncrementView(c.Request.Context(), req.ContentKey)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contentKey": req.ContentKey, "views": views})
}

// GetShares 获取分享计数
func (h *Handler) GetShares(c *gin.Context) {
	v, err := h.Counters.Shares(c.Request.Context(), c.Query("pageId"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// IncrementShare 分享计数加一
func (h *Handler) IncrementShare(c *gin.Context) {
	var req shareRequest
	if !bindJSON(c, &req) {
		return
	}
	v, err := h.Counters.IncrementShare(c.Request.Context(), req.PageID, req.Platform)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}
