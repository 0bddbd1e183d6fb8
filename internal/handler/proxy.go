package handler

import (
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/user/hanime/internal/middleware"
	"github.com/user/hanime/internal/service"
	"github.com/user/hanime/internal/utils"
)

// 透传给客户端的视频响应头
var videoHeaders = []string{"Content-Range", "Accept-Ranges", "Cache-Control", "Last-Modified", "ETag"}

// GetStats 创作者广告统计
func (h *Handler) GetStats(c *gin.Context) {
	su, ok := middleware.GetSessionUser(c)
	if !ok {
		utils.Unauthorized(c, "")
		return
	}
	creds, err := h.Creators.Credentials(c.Request.Context(), su.ID, su.Username)
	if err != nil {
		fail(c, err)
		return
	}

	body, err := h.Stats.Fetch(c.Request.Context(), creds, service.StatsQuery{
		StartDate:  c.Query("start_date"),
		FinishDate: c.Query("finish_date"),
		GroupBy:    c.Query("group_by"),
		Placement:  c.Query("placement"),
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// SearchContent 站内搜索
func (h *Handler) SearchContent(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	body, err := h.Search.Search(c.Request.Context(), c.Query("q"), page)
	if err != nil {
		fail(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// Home 首页目录
func (h *Handler) Home(c *gin.Context) {
	body, err := h.Catalog.Home(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// StreamVideo 视频流代理，透传上游状态码与 Range 相关响应头
func (h *Handler) StreamVideo(c *gin.Context) {
	resp, err := h.Video.Open(c.Request.Context(), c.Query("url"), c.GetHeader("Range"))
	if err != nil {
		fail(c, err)
		return
	}
	defer resp.Body.Close()

	extra := make(map[string]string)
	for _, k := range videoHeaders {
		if v := resp.Header.Get(k); v != "" {
			extra[k] = v
		}
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(resp.StatusCode, resp.ContentLength, contentType, readerOnly{resp.Body}, extra)
}

// readerOnly 记录上游中途断开
type readerOnly struct {
	r io.Reader
}

func (r readerOnly) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if err != nil && err != io.EOF {
		log.Printf("[Video] 读取上游失败: %v", err)
	}
	return n, err
}
