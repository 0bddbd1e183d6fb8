package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/user/hanime/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	db *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// Find 获取单条进度，不存在返回 nil
func (r *ProgressRepository) Find(ctx context.Context, userID, contentKey string) (*model.WatchProgress, error) {
	var p model.WatchProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND content_key = ?", userID, contentKey).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "error finding progress %s/%s", userID, contentKey)
	}
	return &p, nil
}

// ListByUser 获取用户全部进度，最近更新在前
func (r *ProgressRepository) ListByUser(ctx context.Context, userID string) ([]*model.WatchProgress, error) {
	var list []*model.WatchProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&list).Error
	return list, errors.Wrapf(err, "error listing progress of user %s", userID)
}

// Upsert 更新或插入观看进度
func (r *ProgressRepository) Upsert(ctx context.Context, p *model.WatchProgress) error {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "content_key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"playback_time", "total_duration", "title", "poster",
			"parent_content_id", "episode_no", "updated_at",
		}),
	}, clause.Returning{}).Create(p).Error
	return errors.Wrapf(err, "error upserting progress %s/%s", p.UserID, p.ContentKey)
}

// Delete 删除观看进度
func (r *ProgressRepository) Delete(ctx context.Context, userID, contentKey string) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND content_key = ?", userID, contentKey).
		Delete(&model.WatchProgress{}).Error
	return errors.Wrapf(err, "error deleting progress %s/%s", userID, contentKey)
}
