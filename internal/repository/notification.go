package repository

import (
	"context"

	"github.com/pkg/errors"
	"github.com/user/hanime/internal/model"
	"gorm.io/gorm"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// ListByRecipient 分页获取用户通知，最新在前
func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID string, limit, offset int) ([]*model.Notification, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Notification{}).Where("recipient_id = ?", recipientID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrapf(err, "error counting notifications of %s", recipientID)
	}

	var list []*model.Notification
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	if err != nil {
		return nil, 0, errors.Wrapf(err, "error listing notifications of %s", recipientID)
	}
	return list, total, nil
}

// CountUnread 未读通知数
func (r *NotificationRepository) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("recipient_id = ? AND read = ?", recipientID, false).
		Count(&count).Error
	return count, errors.Wrapf(err, "error counting unread notifications of %s", recipientID)
}

// FindByID 获取通知，不存在返回 nil
func (r *NotificationRepository) FindByID(ctx context.Context, id string) (*model.Notification, error) {
	var n model.Notification
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "error finding notification %s", id)
	}
	return &n, nil
}

// MarkRead 标记单条通知已读
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ?", id).
		UpdateColumn("read", true).Error
	return errors.Wrapf(err, "error marking notification %s read", id)
}

// MarkAllRead 标记用户全部通知已读
func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("recipient_id = ? AND read = ?", recipientID, false).
		UpdateColumn("read", true)
	if res.Error != nil {
		return 0, errors.Wrapf(res.Error, "error marking notifications of %s read", recipientID)
	}
	return res.RowsAffected, nil
}
