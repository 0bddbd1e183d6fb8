package model

import "time"

// NotificationType 通知类型
type NotificationType string

const (
	NotificationLike    NotificationType = "LIKE"
	NotificationDislike NotificationType = "DISLIKE"
	NotificationReply   NotificationType = "REPLY"
)

// NotificationsPerPage 每页通知数
const NotificationsPerPage = 20

// Notification 用户通知，仅 read 字段可变
type Notification struct {
	ID          string           `json:"id" gorm:"primaryKey;type:varchar(36)"`
	RecipientID string           `json:"recipientId" gorm:"index:idx_notification_recipient_created,priority:1;not null"`
	SenderID    string           `json:"senderId" gorm:"not null"`
	Type        NotificationType `json:"type" gorm:"type:varchar(16);not null"`
	ContentID   string           `json:"contentId"`
	CommentID   string           `json:"commentId" gorm:"type:varchar(36)"`
	ReplyID     *string          `json:"replyId" gorm:"type:varchar(36)"`
	Read        bool             `json:"read" gorm:"default:false"`
	CreatedAt   time.Time        `json:"createdAt" gorm:"index:idx_notification_recipient_created,priority:2"`
}

func (Notification) TableName() string {
	return "user_notifications"
}

// NotificationSender 通知发送者（来自凭证库）
type NotificationSender struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// NotificationView 带发送者信息的通知
type NotificationView struct {
	*Notification
	Sender *NotificationSender `json:"sender"`
}

// NotificationPage 通知分页结果
type NotificationPage struct {
	Data       []*NotificationView `json:"data"`
	Page       int                 `json:"page"`
	TotalPages int                 `json:"totalPages"`
	Total      int64               `json:"total"`
	Unread     int64               `json:"unread"`
}
