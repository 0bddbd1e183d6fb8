package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/user/hanime/internal/middleware"
	"github.com/user/hanime/internal/model"
	"github.com/user/hanime/internal/utils"
)

type postCommentRequest struct {
	ContentID string `json:"contentId"`
	Text      string `json:"text"`
}

type replyRequest struct {
	ParentCommentID string `json:"parentCommentId"`
	Text            string `json:"text"`
}

type reactRequest struct {
	CommentID string `json:"commentId"`
	Action    string `json:"action"`
}

// GetComments 分页获取评论及回复
func (h *Handler) GetComments(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	res, err := h.Comments.List(c.Request.Context(), c.Query("contentId"), page)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetThread 获取单个评论串
func (h *Handler) GetThread(c *gin.Context) {
	res, err := h.Comments.Thread(c.Request.Context(), c.Query("rootId"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// PostComment 发表评论
func (h *Handler) PostComment(c *gin.Context) {
	su, ok := middleware.GetSessionUser(c)
	if !ok {
		utils.Unauthorized(c, "")
		return
	}
	var req postCommentRequest
	if !bindJSON(c, &req) {
		return
	}
	comment, err := h.Comments.PostComment(c.Request.Context(), sessionAuthor(su), req.ContentID, req.Text)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// PostReply 回复评论
func (h *Handler) PostReply(c *gin.Context) {
	su, ok := middleware.GetSessionUser(c)
	if !ok {
		utils.Unauthorized(c, "")
		return
	}
	var req replyRequest
	if !bindJSON(c, &req) {
		return
	}
	reply, err := h.Comments.PostReply(c.Request.Context(), sessionAuthor(su), req.ParentCommentID, req.Text)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, reply)
}

// ReactComment 点赞/点踩切换
func (h *Handler) ReactComment(c *gin.Context) {
	var req reactRequest
	if !bindJSON(c, &req) {
		return
	}
	h.react(c, req.CommentID, req.Action)
}

// LikeComment 点赞切换
func (h *Handler) LikeComment(c *gin.Context) {
	var req reactRequest
	if !bindJSON(c, &req) {
		return
	}
	h.react(c, req.CommentID, model.ReactionLike)
}

func (h *Handler) react(c *gin.Context, commentID, action string) {
	comment, err := h.Comments.React(c.Request.Context(), commentID, middleware.GetUserID(c), action)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}
