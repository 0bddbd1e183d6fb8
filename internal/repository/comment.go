package repository

import (
	"context"

	"github.com/pkg/errors"
	"github.com/user/hanime/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create 创建根评论
func (r *CommentRepository) Create(ctx context.Context, c *model.Comment) error {
	c.Normalize()
	err := r.db.WithContext(ctx).Create(c).Error
	return errors.Wrapf(err, "error creating comment on %s", c.ContentID)
}

// FindByID 根据 ID 获取评论，不存在返回 nil
func (r *CommentRepository) FindByID(ctx context.Context, id string) (*model.Comment, error) {
	var c model.Comment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "error finding comment %s", id)
	}
	c.Normalize()
	return &c, nil
}

// ListRoots 分页获取内容下的根评论，最新在前
func (r *CommentRepository) ListRoots(ctx context.Context, contentID string, limit, offset int) ([]*model.Comment, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Comment{}).
		Where("content_id = ? AND parent_id IS NULL", contentID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrapf(err, "error counting comments on %s", contentID)
	}

	var list []*model.Comment
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	if err != nil {
		return nil, 0, errors.Wrapf(err, "error listing comments on %s", contentID)
	}
	for _, c := range list {
		c.Normalize()
	}
	return list, total, nil
}

// ListByRoots 一次查询取出多个评论串下的全部回复
func (r *CommentRepository) ListByRoots(ctx context.Context, rootIDs []string) ([]*model.Comment, error) {
	if len(rootIDs) == 0 {
		return nil, nil
	}
	var list []*model.Comment
	err := r.db.WithContext(ctx).
		Where("root_comment_id IN ?", rootIDs).
		Order("created_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, errors.Wrap(err, "error listing replies by roots")
	}
	for _, c := range list {
		c.Normalize()
	}
	return list, nil
}

// CreateReply 在同一事务中写入回复、更新父评论 replies 并写入通知（n 可为 nil）
func (r *CommentRepository) CreateReply(ctx context.Context, reply *model.Comment, n *model.Notification) error {
	if reply.ParentID == nil {
		return errors.New("reply without parent")
	}
	reply.Normalize()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(reply).Error; err != nil {
			return errors.Wrapf(err, "error creating reply to %s", *reply.ParentID)
		}

		res := tx.Model(&model.Comment{}).
			Where("id = ?", *reply.ParentID).
			UpdateColumn("replies", gorm.Expr("array_prepend(?::text, replies)", reply.ID))
		if res.Error != nil {
			return errors.Wrapf(res.Error, "error linking reply %s to parent", reply.ID)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		if n != nil {
			if err := tx.Create(n).Error; err != nil {
				return errors.Wrapf(err, "error creating reply notification for %s", n.RecipientID)
			}
		}
		return nil
	})
}

// UpdateReaction 锁定评论行后由 mutate 修改点赞/点踩，两个数组一次写回；
// mutate 返回的通知在同一事务中写入
func (r *CommentRepository) UpdateReaction(ctx context.Context, id string, mutate func(c *model.Comment) *model.Notification) (*model.Comment, error) {
	var c model.Comment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&c).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return errors.Wrapf(err, "error locking comment %s", id)
		}
		c.Normalize()

		n := mutate(&c)

		err = tx.Model(&model.Comment{}).
			Where("id = ?", id).
			UpdateColumns(map[string]interface{}{
				"likes":    c.Likes,
				"dislikes": c.Dislikes,
			}).Error
		if err != nil {
			return errors.Wrapf(err, "error updating reactions of comment %s", id)
		}

		if n != nil {
			if err := tx.Create(n).Error; err != nil {
				return errors.Wrapf(err, "error creating reaction notification for %s", n.RecipientID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}
