package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/user/hanime/internal/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type HomepageRepository struct {
	db *gorm.DB
}

func NewHomepageRepository(db *gorm.DB) *HomepageRepository {
	return &HomepageRepository{db: db}
}

// Latest 获取最近一次快照，不存在返回 nil
func (r *HomepageRepository) Latest(ctx context.Context, key string) (*model.HomepageCache, error) {
	var c model.HomepageCache
	err := r.db.WithContext(ctx).
		Where("cache_key = ?", key).
		Order("fetched_at DESC").
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "error finding homepage snapshot %s", key)
	}
	return &c, nil
}

// Save 写入新快照
func (r *HomepageRepository) Save(ctx context.Context, key string, payload []byte) error {
	c := &model.HomepageCache{
		Key:       key,
		Payload:   datatypes.JSON(payload),
		FetchedAt: time.Now(),
	}
	err := r.db.WithContext(ctx).Create(c).Error
	return errors.Wrapf(err, "error saving homepage snapshot %s", key)
}

// DeleteStale 删除早于 maxAge 的快照，保留最新一份
func (r *HomepageRepository) DeleteStale(ctx context.Context, key string, maxAge time.Duration) (int64, error) {
	latest, err := r.Latest(ctx, key)
	if err != nil || latest == nil {
		return 0, err
	}
	res := r.db.WithContext(ctx).
		Where("cache_key = ? AND fetched_at < ? AND id <> ?", key, time.Now().Add(-maxAge), latest.ID).
		Delete(&model.HomepageCache{})
	if res.Error != nil {
		return 0, errors.Wrapf(res.Error, "error deleting stale homepage snapshots %s", key)
	}
	return res.RowsAffected, nil
}
