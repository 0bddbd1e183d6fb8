package model

import (
	"time"
)

// User 用户模型（凭证库文档，文档 ID 即邮箱）。
// UserID 为对外的不透明 ID，评论、通知等互动数据只记录它，不记录邮箱。
type User struct {
	Email            string     `json:"email" bson:"_id"`
	UserID           string     `json:"id" bson:"userId"`
	Username         string     `json:"username" bson:"username"`
	PasswordHash     string     `json:"-" bson:"passwordHash"`
	Avatar           string     `json:"avatar" bson:"avatar"`
	Bio              string     `json:"bio" bson:"bio"`
	TimeOfJoining    time.Time  `json:"timeOfJoining" bson:"timeOfJoining"`
	ResetTokenHash   string     `json:"-" bson:"resetTokenHash,omitempty"`
	ResetTokenExpiry *time.Time `json:"-" bson:"resetTokenExpiry,omitempty"`
}

// ID 用户对外 ID
func (u *User) ID() string {
	return u.UserID
}

// SessionUser 专门用于 Session 存储的用户信息结构
type SessionUser struct {
	ID       string
	Email    string
	Username string
	Avatar   string
}

// ToSession 转换为 Session 用户
func (u *User) ToSession() SessionUser {
	return SessionUser{
		ID:       u.ID(),
		Email:    u.Email,
		Username: u.Username,
		Avatar:   u.Avatar,
	}
}
