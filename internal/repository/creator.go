package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/user/hanime/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreatorRepository struct {
	db *gorm.DB
}

func NewCreatorRepository(db *gorm.DB) *CreatorRepository {
	return &CreatorRepository{db: db}
}

// FindByUserID 获取用户的变现配置，不存在返回 nil
func (r *CreatorRepository) FindByUserID(ctx context.Context, userID string) (*model.CreatorSetup, error) {
	return r.findOne(ctx, "user_id = ?", userID)
}

// FindByUsername 按创作者标识（用户名，不区分大小写）查找
func (r *CreatorRepository) FindByUsername(ctx context.Context, username string) (*model.CreatorSetup, error) {
	return r.findOne(ctx, "LOWER(username) = LOWER(?)", username)
}

func (r *CreatorRepository) findOne(ctx context.Context, query string, arg string) (*model.CreatorSetup, error) {
	var s model.CreatorSetup
	err := r.db.WithContext(ctx).Where(query, arg).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "error finding creator setup %s", arg)
	}
	return &s, nil
}

// Upsert 创建或更新变现配置
func (r *CreatorRepository) Upsert(ctx context.Context, s *model.CreatorSetup) error {
	now := time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"username", "adsterra_smartlink", "creator_api_key", "instagram_id", "updated_at",
		}),
	}).Create(s).Error
	return errors.Wrapf(err, "error upserting creator setup of %s", s.UserID)
}
