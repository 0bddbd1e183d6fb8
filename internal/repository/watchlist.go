package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/user/hanime/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WatchlistRepository struct {
	db *gorm.DB
}

func NewWatchlistRepository(db *gorm.DB) *WatchlistRepository {
	return &WatchlistRepository{db: db}
}

// List 分页获取片单，status 为空表示全部
func (r *WatchlistRepository) List(ctx context.Context, userID, status string, limit, offset int) ([]*model.WatchlistEntry, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.WatchlistEntry{}).Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrapf(err, "error counting watchlist of user %s", userID)
	}

	var entries []*model.WatchlistEntry
	err := q.Order("updated_at DESC").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	if err != nil {
		return nil, 0, errors.Wrapf(err, "error listing watchlist of user %s", userID)
	}
	return entries, total, nil
}

// Find 获取单条片单记录，不存在返回 nil
func (r *WatchlistRepository) Find(ctx context.Context, userID, contentID string) (*model.WatchlistEntry, error) {
	var e model.WatchlistEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND content_id = ?", userID, contentID).
		First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "error finding watchlist entry %s/%s", userID, contentID)
	}
	return &e, nil
}

// Upsert 更新或插入片单记录，created_at 仅在插入时写入，写回库中实际的行
func (r *WatchlistRepository) Upsert(ctx context.Context, e *model.WatchlistEntry) error {
	now := time.Now()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "content_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "title", "poster", "last_episode_key", "last_episode_no",
			"last_episode_title", "total_duration", "updated_at",
		}),
	}, clause.Returning{}).Create(e).Error
	return errors.Wrapf(err, "error upserting watchlist entry %s/%s", e.UserID, e.ContentID)
}

// Delete 删除片单记录
func (r *WatchlistRepository) Delete(ctx context.Context, userID, contentID string) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND content_id = ?", userID, contentID).
		Delete(&model.WatchlistEntry{}).Error
	return errors.Wrapf(err, "error deleting watchlist entry %s/%s", userID, contentID)
}
