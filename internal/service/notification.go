package service

import (
	"context"
	"log"

	"github.com/user/hanime/internal/model"
)

// NotificationStore 通知存储
type NotificationStore interface {
	ListByRecipient(ctx context.Context, recipientID string, limit, offset int) ([]*model.Notification, int64, error)
	CountUnread(ctx context.Context, recipientID string) (int64, error)
	FindByID(ctx context.Context, id string) (*model.Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
}

// UserLookup 批量查询用户资料
type UserLookup interface {
	FindByIDs(ctx context.Context, ids []string) (map[string]*model.User, error)
}

// NotificationService 通知服务
type NotificationService struct {
	store NotificationStore
	users UserLookup
}

func NewNotificationService(store NotificationStore, users UserLookup) *NotificationService {
	return &NotificationService{store: store, users: users}
}

// List 分页获取通知并关联发送者资料
func (s *NotificationService) List(ctx context.Context, userID string, page int) (*model.NotificationPage, error) {
	page, offset := pageOffset(page, model.NotificationsPerPage)

	list, total, err := s.store.ListByRecipient(ctx, userID, model.NotificationsPerPage, offset)
	if err != nil {
		return nil, Internal("获取通知失败", err)
	}
	unread, err := s.store.CountUnread(ctx, userID)
	if err != nil {
		return nil, Internal("获取未读数失败", err)
	}

	senders := s.senders(ctx, list)
	data := make([]*model.NotificationView, 0, len(list))
	for _, n := range list {
		data = append(data, &model.NotificationView{Notification: n, Sender: senders[n.SenderID]})
	}

	return &model.NotificationPage{
		Data:       data,
		Page:       page,
		TotalPages: totalPages(total, model.NotificationsPerPage),
		Total:      total,
		Unread:     unread,
	}, nil
}

// senders 查询发送者资料，凭证库不可用时降级为无发送者信息
func (s *NotificationService) senders(ctx context.Context, list []*model.Notification) map[string]*model.NotificationSender {
	out := make(map[string]*model.NotificationSender)
	if s.users == nil || len(list) == 0 {
		return out
	}

	seen := make(map[string]bool)
	var ids []string
	for _, n := range list {
		if !seen[n.SenderID] {
			seen[n.SenderID] = true
			ids = append(ids, n.SenderID)
		}
	}

	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		log.Printf("[NotificationService] 查询发送者失败: %v", err)
		return out
	}
	for id, u := range users {
		out[id] = &model.NotificationSender{ID: id, Username: u.Username, Avatar: u.Avatar}
	}
	return out
}

// MarkRead 标记通知已读，仅接收者本人可操作
func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) (*model.Notification, error) {
	n, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, Internal("获取通知失败", err)
	}
	if n == nil {
		return nil, NotFound("通知不存在")
	}
	if n.RecipientID != userID {
		return nil, Forbidden("无权操作该通知")
	}
	if n.Read {
		return n, nil
	}
	if err := s.store.MarkRead(ctx, id); err != nil {
		return nil, Internal("标记已读失败", err)
	}
	n.Read = true
	return n, nil
}

// MarkAllRead 全部标记已读，返回更新条数
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	count, err := s.store.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, Internal("标记已读失败", err)
	}
	return count, nil
}
