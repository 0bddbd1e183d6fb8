package service

import (
	"context"
	"log"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/user/hanime/internal/model"
	"github.com/user/hanime/internal/repository"
	"github.com/user/hanime/internal/utils"
)

const (
	minPasswordLength = 6
	maxBioLength      = 500
	resetTokenTTL     = time.Hour
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{3,32}$`)

// UserStore 凭证库
type UserStore interface {
	Create(ctx context.Context, email, username, password string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByResetToken(ctx context.Context, tokenHash string) (*model.User, error)
	CheckPassword(user *model.User, password string) bool
	UpdateProfile(ctx context.Context, email string, p repository.ProfileUpdate) error
	UpdatePassword(ctx context.Context, email, newPassword string) error
	SetResetToken(ctx context.Context, email, tokenHash string, expiry time.Time) error
}

// Mailer 邮件发送
type Mailer interface {
	SendPasswordReset(to, username, resetURL string) error
}

// SignupRequest 注册请求
type SignupRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// ProfileRequest 资料更新请求，nil 字段不修改
type ProfileRequest struct {
	Username *string `json:"username"`
	Avatar   *string `json:"avatar"`
	Bio      *string `json:"bio"`
}

// AuthService 账号服务
type AuthService struct {
	users   UserStore
	mailer  Mailer
	siteURL string
	now     func() time.Time
}

func NewAuthService(users UserStore, mailer Mailer, siteURL string) *AuthService {
	return &AuthService{
		users:   users,
		mailer:  mailer,
		siteURL: strings.TrimRight(siteURL, "/"),
		now:     time.Now,
	}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validate.Var(email, "required,email"); err != nil {
		return "", Validation("邮箱格式不正确")
	}
	return email, nil
}

func checkPassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return Validation("密码至少需要 6 个字符")
	}
	return nil
}

func checkUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return Validation("用户名需为 3-32 位字母、数字、下划线或连字符")
	}
	return nil
}

// Signup 注册
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*model.User, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	username := strings.TrimSpace(req.Username)
	if err := checkUsername(username); err != nil {
		return nil, err
	}
	if err := checkPassword(req.Password); err != nil {
		return nil, err
	}

	existing, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, Internal("注册失败", err)
	}
	if existing != nil {
		return nil, Conflict("用户名已被使用")
	}

	user, err := s.users.Create(ctx, email, username, req.Password)
	if errors.Is(err, repository.ErrUserExists) {
		return nil, Conflict("邮箱或用户名已被注册")
	}
	if err != nil {
		return nil, Internal("注册失败", err)
	}
	log.Printf("[AuthService] 新用户注册: %s", username)
	return user, nil
}

// Authenticate 邮箱密码登录
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, Validation("请输入邮箱和密码")
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, Internal("登录失败", err)
	}
	if user == nil || !s.users.CheckPassword(user, password) {
		return nil, Unauthorized("邮箱或密码错误")
	}
	return user, nil
}

// CurrentUser 获取当前用户，不存在返回 nil
func (s *AuthService) CurrentUser(ctx context.Context, email string) (*model.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, Internal("获取用户失败", err)
	}
	return user, nil
}

// RequestPasswordReset 生成重置令牌并发送邮件。账号不存在时同样返回成功
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return Internal("处理重置请求失败", err)
	}
	if user == nil {
		return nil
	}

	token := uuid.NewString()
	expiry := s.now().Add(resetTokenTTL)
	if err := s.users.SetResetToken(ctx, email, utils.HashToken(token), expiry); err != nil {
		return Internal("处理重置请求失败", err)
	}

	link := s.siteURL + "/reset-password?token=" + url.QueryEscape(token)
	if s.mailer != nil {
		if err := s.mailer.SendPasswordReset(email, user.Username, link); err != nil {
			log.Printf("[AuthService] 发送重置邮件失败 %s: %v", email, err)
		}
	}
	return nil
}

// ResetPassword 使用重置令牌设置新密码，成功后令牌作废
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return Validation("重置链接无效或已过期")
	}
	if err := checkPassword(password); err != nil {
		return err
	}

	user, err := s.users.FindByResetToken(ctx, utils.HashToken(token))
	if err != nil {
		return Internal("重置密码失败", err)
	}
	if user == nil || user.ResetTokenExpiry == nil || s.now().After(*user.ResetTokenExpiry) {
		return Validation("重置链接无效或已过期")
	}

	if err := s.users.UpdatePassword(ctx, user.Email, password); err != nil {
		return Internal("重置密码失败", err)
	}
	return nil
}

// ChangePassword 已登录用户修改密码
func (s *AuthService) ChangePassword(ctx context.Context, email, current, password string) error {
	if err := checkPassword(password); err != nil {
		return err
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return Internal("修改密码失败", err)
	}
	if user == nil {
		return NotFound("用户不存在")
	}
	if !s.users.CheckPassword(user, current) {
		return Validation("当前密码错误")
	}
	if err := s.users.UpdatePassword(ctx, email, password); err != nil {
		return Internal("修改密码失败", err)
	}
	return nil
}

// UpdateProfile 更新资料
func (s *AuthService) UpdateProfile(ctx context.Context, email string, req ProfileRequest) (*model.User, error) {
	var upd repository.ProfileUpdate
	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if err := checkUsername(username); err != nil {
			return nil, err
		}
		upd.Username = &username
	}
	if req.Avatar != nil {
		avatar := strings.TrimSpace(*req.Avatar)
		if avatar != "" && !isHTTPURL(avatar) {
			return nil, Validation("头像必须是 http(s) 链接")
		}
		upd.Avatar = &avatar
	}
	if req.Bio != nil {
		bio := strings.TrimSpace(*req.Bio)
		if utf8.RuneCountInString(bio) > maxBioLength {
			return nil, Validation("简介过长")
		}
		upd.Bio = &bio
	}

	err := s.users.UpdateProfile(ctx, email, upd)
	switch {
	case errors.Is(err, repository.ErrUserExists):
		return nil, Conflict("用户名已被使用")
	case errors.Is(err, repository.ErrNotFound):
		return nil, NotFound("用户不存在")
	case err != nil:
		return nil, Internal("更新资料失败", err)
	}
	return s.CurrentUser(ctx, email)
}
