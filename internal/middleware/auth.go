package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/user/hanime/internal/model"
	"github.com/user/hanime/internal/utils"
)

const (
	// SessionKey Session 中保存登录用户的键
	SessionKey = "userinfo"
	// TokenCookie JWT Cookie 名称
	TokenCookie = "token"

	ctxUserKey = "session_user"
)

// Claims JWT 声明
type Claims struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
	jwt.RegisteredClaims
}

// RequireAuth 必须登录中间件
func RequireAuth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c, jwtSecret) {
			utils.Unauthorized(c, "")
			return
		}
		c.Next()
	}
}

// OptionalAuth 可选登录中间件（不强制要求登录）
func OptionalAuth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authenticate(c, jwtSecret)
		c.Next()
	}
}

// authenticate 先查 Session，再查 JWT；成功时写入上下文
func authenticate(c *gin.Context, jwtSecret string) bool {
	if su, ok := sessionUser(c); ok {
		SetUser(c, su)
		return true
	}

	claims, err := extractClaims(c, jwtSecret)
	if err != nil {
		return false
	}
	SetUser(c, model.SessionUser{
		ID:       claims.UserID,
		Email:    claims.Email,
		Username: claims.Username,
		Avatar:   claims.Avatar,
	})

	// 滑动续期：有效期消耗超过一半则刷新
	if shouldRefresh(claims) {
		expiry := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
		su, _ := GetSessionUser(c)
		if newToken, err := GenerateToken(*su, jwtSecret, expiry); err == nil {
			c.SetCookie(TokenCookie, newToken, int(expiry.Seconds()), "/", "", false, true)
		}
	}
	return true
}

// sessionUser 读取 Session，未挂载 Session 中间件时跳过
func sessionUser(c *gin.Context) (model.SessionUser, bool) {
	if _, exists := c.Get(sessions.DefaultKey); !exists {
		return model.SessionUser{}, false
	}
	if v := sessions.Default(c).Get(SessionKey); v != nil {
		if su, ok := v.(model.SessionUser); ok && su.ID != "" {
			return su, true
		}
	}
	return model.SessionUser{}, false
}

// extractClaims 从 Cookie 或 Header 中提取 JWT Claims
func extractClaims(c *gin.Context, jwtSecret string) (*Claims, error) {
	var tokenString string

	if cookie, err := c.Cookie(TokenCookie); err == nil && cookie != "" {
		tokenString = cookie
	} else if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		tokenString = strings.TrimPrefix(authHeader, "Bearer ")
	}

	if tokenString == "" {
		return nil, jwt.ErrTokenMalformed
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(jwtSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// SetUser 将登录用户写入上下文
func SetUser(c *gin.Context, su model.SessionUser) {
	c.Set(ctxUserKey, su)
	c.Set("user_id", su.ID)
}

// GetUserID 从上下文获取用户 ID（未登录返回空串）
func GetUserID(c *gin.Context) string {
	if v, exists := c.Get("user_id"); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// GetSessionUser 从上下文获取登录用户
func GetSessionUser(c *gin.Context) (*model.SessionUser, bool) {
	if v, exists := c.Get(ctxUserKey); exists {
		if su, ok := v.(model.SessionUser); ok {
			return &su, true
		}
	}
	return nil, false
}

// GenerateToken 生成 JWT Token
func GenerateToken(su model.SessionUser, jwtSecret string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   su.ID,
		Email:    su.Email,
		Username: su.Username,
		Avatar:   su.Avatar,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}

// shouldRefresh 判断是否需要刷新 Token
func shouldRefresh(claims *Claims) bool {
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return false
	}
	total := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	return time.Since(claims.IssuedAt.Time) > total/2
}
