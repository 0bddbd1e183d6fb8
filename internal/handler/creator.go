package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/hanime/internal/middleware"
	"github.com/user/hanime/internal/service"
	"github.com/user/hanime/internal/utils"
)

// GetCreator 获取本人变现配置，未配置返回 null
func (h *Handler) GetCreator(c *gin.Context) {
	setup, err := h.Creators.Get(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, setup)
}

// SaveCreator 保存本人变现配置
func (h *Handler) SaveCreator(c *gin.Context) {
	su, ok := middleware.GetSessionUser(c)
	if !ok {
		utils.Unauthorized(c, "")
		return
	}
	var req service.CreatorRequest
	if !bindJSON(c, &req) {
		return
	}
	setup, err := h.Creators.Upsert(c.Request.Context(), su.ID, su.Username, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, setup)
}

// ResolveCreator 公开解析创作者链接，不暴露统计凭证
func (h *Handler) ResolveCreator(c *gin.Context) {
	link, err := h.Creators.Resolve(c.Request.Context(), c.Query("creator"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"adsterraSmartlink": link.AdsterraSmartlink,
		"instagramId":       link.InstagramID,
		"fallback":          link.Fallback,
	})
}
