package repository

import (
	"context"

	"github.com/pkg/errors"
	"github.com/user/hanime/internal/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CounterRepository 播放量与分享计数，自增均依赖单条 upsert 语句保证原子性
type CounterRepository struct {
	db *gorm.DB
}

func NewCounterRepository(db *gorm.DB) *CounterRepository {
	return &CounterRepository{db: db}
}

// IncrementView 播放量加一并返回自增后的值
func (r *CounterRepository) IncrementView(ctx context.Context, contentKey string) (int64, error) {
	var v model.ViewCounter
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO hanime_views (content_key, views, updated_at)
		VALUES (?, 1, NOW())
		ON CONFLICT (content_key) DO UPDATE SET
			views = hanime_views.views + 1,
			updated_at = EXCLUDED.updated_at
		RETURNING content_key, views, updated_at
	`, contentKey).Scan(&v).Error
	if err != nil {
		return 0, errors.Wrapf(err, "error incrementing views of %s", contentKey)
	}
	return v.Views, nil
}

// GetViews 获取播放量，未计数时为 0
func (r *CounterRepository) GetViews(ctx context.Context, contentKey string) (int64, error) {
	var v model.ViewCounter
	err := r.db.WithContext(ctx).Where("content_key = ?", contentKey).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrapf(err, "error getting views of %s", contentKey)
	}
	return v.Views, nil
}

// IncrementShare 分享总数与对应平台计数各加一
func (r *CounterRepository) IncrementShare(ctx context.Context, pageID, platform string) (*model.ShareCounter, error) {
	var s model.ShareCounter
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO shares (page_id, shares, total_shares, updated_at)
		VALUES (?, jsonb_build_object(?::text, 1), 1, NOW())
		ON CONFLICT (page_id) DO UPDATE SET
			shares = jsonb_set(
				shares.shares,
				ARRAY[?::text],
				to_jsonb(COALESCE((shares.shares ->> ?::text)::bigint, 0) + 1)
			),
			total_shares = shares.total_shares + 1,
			updated_at = EXCLUDED.updated_at
		RETURNING page_id, shares, total_shares, updated_at
	`, pageID, platform, platform, platform).Scan(&s).Error
	if err != nil {
		return nil, errors.Wrapf(err, "error incrementing shares of %s", pageID)
	}
	return &s, nil
}

// GetShares 获取分享计数，未计数时返回零值
func (r *CounterRepository) GetShares(ctx context.Context, pageID string) (*model.ShareCounter, error) {
	var s model.ShareCounter
	err := r.db.WithContext(ctx).Where("page_id = ?", pageID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &model.ShareCounter{PageID: pageID, Shares: datatypes.JSONMap{}}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "error getting shares of %s", pageID)
	}
	return &s, nil
}
