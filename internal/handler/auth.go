package handler

import (
	"log"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/user/hanime/internal/middleware"
	"github.com/user/hanime/internal/model"
	"github.com/user/hanime/internal/service"
	"github.com/user/hanime/internal/utils"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resetRequest struct {
	Email string `json:"email"`
}

type updatePasswordRequest struct {
	Token           string `json:"token"`
	CurrentPassword string `json:"currentPassword"`
	Password        string `json:"password"`
}

// Signup 注册并直接登录
func (h *Handler) Signup(c *gin.Context) {
	var req service.SignupRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.Auth.Signup(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	token, err := h.startSession(c, user)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user, "token": token})
}

// Login 登录
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.Auth.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	token, err := h.startSession(c, user)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

// startSession 写入 Session 与 JWT Cookie
func (h *Handler) startSession(c *gin.Context, user *model.User) (string, error) {
	su := user.ToSession()
	token, err := middleware.GenerateToken(su, h.Config.AppSecret, h.Config.JWTExpiry)
	if err != nil {
		return "", service.Internal("生成令牌失败", err)
	}
	c.SetCookie(middleware.TokenCookie, token, int(h.Config.JWTExpiry.Seconds()), "/", "", false, true)

	session := sessions.Default(c)
	session.Set(middleware.SessionKey, su)
	if err := session.Save(); err != nil {
		log.Printf("[Auth] 保存 Session 失败: %v", err)
	}
	return token, nil
}

// Logout 登出
func (h *Handler) Logout(c *gin.Context) {
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", false, true)

	session := sessions.Default(c)
	session.Clear()
	session.Save()

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Session 当前登录用户，未登录返回 null
func (h *Handler) Session(c *gin.Context) {
	su, ok := middleware.GetSessionUser(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"user": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": su})
}

// RequestPasswordReset 申请重置密码，无论账号是否存在都返回成功
func (h *Handler) RequestPasswordReset(c *gin.Context) {
	var req resetRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Auth.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "如果该邮箱已注册，重置链接将发送到邮箱"})
}

// UpdatePassword 通过重置令牌或当前密码设置新密码
func (h *Handler) UpdatePassword(c *gin.Context) {
	var req updatePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	var err error
	if req.Token != "" {
		err = h.Auth.ResetPassword(c.Request.Context(), req.Token, req.Password)
	} else {
		su, ok := middleware.GetSessionUser(c)
		if !ok {
			utils.Unauthorized(c, "")
			return
		}
		err = h.Auth.ChangePassword(c.Request.Context(), su.Email, req.CurrentPassword, req.Password)
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// UpdateProfile 更新资料并刷新 Session
func (h *Handler) UpdateProfile(c *gin.Context) {
	su, ok := middleware.GetSessionUser(c)
	if !ok {
		utils.Unauthorized(c, "")
		return
	}
	var req service.ProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.Auth.UpdateProfile(c.Request.Context(), su.Email, req)
	if err != nil {
		fail(c, err)
		return
	}
	if user == nil {
		utils.NotFound(c, "用户不存在")
		return
	}
	if _, err := h.startSession(c, user); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
