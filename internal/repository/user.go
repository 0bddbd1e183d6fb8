package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/user/hanime/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// ErrUserExists 邮箱或用户名已被占用
var ErrUserExists = errors.New("user already exists")

// UserRepository 凭证库用户仓库
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	if db == nil {
		return &UserRepository{}
	}
	return &UserRepository{coll: db.Collection(CollectionUsers)}
}

// ProfileUpdate 资料更新字段，nil 表示不修改
type ProfileUpdate struct {
	Username *string
	Avatar   *string
	Bio      *string
}

// Create 创建用户
func (r *UserRepository) Create(ctx context.Context, email, username, password string) (*model.User, error) {
	// 密码哈希
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:         email,
		UserID:        uuid.NewString(),
		Username:      username,
		PasswordHash:  string(hash),
		TimeOfJoining: time.Now(),
	}

	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrUserExists
		}
		return nil, errors.Wrapf(err, "error inserting User with email: %s", email)
	}
	return user, nil
}

// FindByEmail 根据邮箱查找用户，不存在返回 nil
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"_id": email})
}

// FindByUsername 根据用户名查找用户
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

// FindByResetToken 根据未过期的重置令牌哈希查找用户
func (r *UserRepository) FindByResetToken(ctx context.Context, tokenHash string) (*model.User, error) {
	return r.findOne(ctx, bson.M{
		"resetTokenHash":   tokenHash,
		"resetTokenExpiry": bson.M{"$gt": time.Now()},
	})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	var u model.User
	err := r.coll.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "error finding User with filter: %v", filter)
	}
	return &u, nil
}

// FindByIDs 按对外 ID 批量查找用户，返回 ID 到用户的映射
func (r *UserRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*model.User, error) {
	out := make(map[string]*model.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	cur, err := r.coll.Find(ctx, bson.M{"userId": bson.M{"$in": ids}})
	if err != nil {
		return nil, errors.Wrap(err, "error finding Users by IDs")
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var u model.User
		if err := cur.Decode(&u); err != nil {
			return nil, errors.Wrap(err, "error decoding User")
		}
		out[u.ID()] = &u
	}
	return out, errors.Wrap(cur.Err(), "error iterating Users")
}

// CheckPassword 验证密码
func (r *UserRepository) CheckPassword(user *model.User, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	return err == nil
}

// UpdateProfile 更新资料
func (r *UserRepository) UpdateProfile(ctx context.Context, email string, p ProfileUpdate) error {
	set := bson.M{}
	if p.Username != nil {
		set["username"] = *p.Username
	}
	if p.Avatar != nil {
		set["avatar"] = *p.Avatar
	}
	if p.Bio != nil {
		set["bio"] = *p.Bio
	}
	if len(set) == 0 {
		return nil
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": email}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrUserExists
		}
		return errors.Wrapf(err, "error updating profile of User with email: %s", email)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdatePassword 更新密码并作废重置令牌
func (r *UserRepository) UpdatePassword(ctx context.Context, email, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": email},
		bson.M{
			"$set":   bson.M{"passwordHash": string(hash)},
			"$unset": bson.M{"resetTokenHash": "", "resetTokenExpiry": ""},
		},
	)
	if err != nil {
		return errors.Wrapf(err, "error updating password of User with email: %s", email)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetResetToken 保存密码重置令牌哈希及过期时间
func (r *UserRepository) SetResetToken(ctx context.Context, email, tokenHash string, expiry time.Time) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": email},
		bson.M{"$set": bson.M{"resetTokenHash": tokenHash, "resetTokenExpiry": expiry}},
	)
	return errors.Wrapf(err, "error setting reset token of User with email: %s", email)
}

// ClearExpiredResetTokens 清理已过期的重置令牌
func (r *UserRepository) ClearExpiredResetTokens(ctx context.Context) (int64, error) {
	res, err := r.coll.UpdateMany(ctx,
		bson.M{"resetTokenExpiry": bson.M{"$lt": time.Now()}},
		bson.M{"$unset": bson.M{"resetTokenHash": "", "resetTokenExpiry": ""}},
	)
	if err != nil {
		return 0, errors.Wrap(err, "error clearing expired reset tokens")
	}
	return res.ModifiedCount, nil
}
