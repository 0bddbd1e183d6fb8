package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/user/hanime/internal/model"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("record not found")

// InitDB 初始化数据库连接并迁移表结构
func InitDB(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, errors.Wrap(err, "无法连接数据库")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "获取底层连接失败")
	}

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, errors.Wrap(err, "数据库 ping 失败")
	}

	// 设置连接池
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := db.AutoMigrate(
		&model.WatchProgress{},
		&model.WatchlistEntry{},
		&model.Comment{},
		&model.Notification{},
		&model.ViewCounter{},
		&model.ShareCounter{},
		&model.CreatorSetup{},
		&model.HomepageCache{},
	); err != nil {
		return nil, errors.Wrap(err, "数据库迁移失败")
	}

	return db, nil
}

// Repositories 仓库集合
type Repositories struct {
	DB           *gorm.DB
	Mongo        *mongo.Database
	User         *UserRepository
	Progress     *ProgressRepository
	Watchlist    *WatchlistRepository
	Comment      *CommentRepository
	Notification *NotificationRepository
	Counter      *CounterRepository
	Creator      *CreatorRepository
	Homepage     *HomepageRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB, mdb *mongo.Database) *Repositories {
	return &Repositories{
		DB:           db,
		Mongo:        mdb,
		User:         NewUserRepository(mdb),
		Progress:     NewProgressRepository(db),
		Watchlist:    NewWatchlistRepository(db),
		Comment:      NewCommentRepository(db),
		Notification: NewNotificationRepository(db),
		Counter:      NewCounterRepository(db),
		Creator:      NewCreatorRepository(db),
		Homepage:     NewHomepageRepository(db),
	}
}
