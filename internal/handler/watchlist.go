package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/user/hanime/internal/middleware"
	"github.com/user/hanime/internal/service"
)

// GetWatchlist 片单列表；带 contentId 时返回单个状态。未登录返回空数组
func (h *Handler) GetWatchlist(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusOK, []interface{}{})
		return
	}

	if contentID := c.Query("contentId"); contentID != "" {
		status, err := h.Watchlist.Status(c.Request.Context(), userID, contentID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": status})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", strconv.Itoa(service.WatchlistPageSize)))
	res, err := h.Watchlist.List(c.Request.Context(), userID, c.Query("status"), page, pageSize)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// SaveWatchlist 设置片单状态，status 为 null 时移除
func (h *Handler) SaveWatchlist(c *gin.Context) {
	var req service.WatchlistRequest
	if !bindJSON(c, &req) {
		return
	}
	e, err := h.Watchlist.Upsert(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	if e == nil {
		c.JSON(http.StatusOK, gin.H{"status": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": e.Status, "entry": e})
}

// DeleteWatchlist 移除片单条目
func (h *Handler) DeleteWatchlist(c *gin.Context) {
	if err := h.Watchlist.Remove(c.Request.Context(), middleware.GetUserID(c), c.Query("contentId")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": nil})
}
