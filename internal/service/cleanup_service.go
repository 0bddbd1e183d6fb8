package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/user/hanime/internal/model"
)

const (
	cleanupInterval   = 24 * time.Hour
	homepageRetention = 7 * 24 * time.Hour
)

// ResetTokenCleaner 清理过期重置令牌
type ResetTokenCleaner interface {
	ClearExpiredResetTokens(ctx context.Context) (int64, error)
}

// SnapshotCleaner 清理过期首页快照
type SnapshotCleaner interface {
	DeleteStale(ctx context.Context, key string, maxAge time.Duration) (int64, error)
}

// CleanupService 数据清理服务
type CleanupService struct {
	users     ResetTokenCleaner
	snapshots SnapshotCleaner
	interval  time.Duration
	stopCh    chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// NewCleanupService 创建数据清理服务
func NewCleanupService(users ResetTokenCleaner, snapshots SnapshotCleaner) *CleanupService {
	return &CleanupService{
		users:     users,
		snapshots: snapshots,
		interval:  cleanupInterval,
		stopCh:    make(chan struct{}),
	}
}

// Start 启动定时清理任务，启动时先执行一次
func (s *CleanupService) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.RunOnce(context.Background())

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.RunOnce(context.Background())
			case <-s.stopCh:
				log.Println("[CleanupService] 清理服务已停止")
				return
			}
		}
	}()
	log.Printf("[CleanupService] 清理服务已启动，执行间隔: %v", s.interval)
}

// Stop 停止清理任务并等待当前任务结束
func (s *CleanupService) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()
}

// RunOnce 执行一次清理
func (s *CleanupService) RunOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	if s.users != nil {
		if n, err := s.users.ClearExpiredResetTokens(ctx); err != nil {
			log.Printf("[CleanupService] 清理过期重置令牌失败: %v", err)
		} else if n > 0 {
			log.Printf("[CleanupService] 已清理过期重置令牌 %d 个", n)
		}
	}

	if s.snapshots != nil {
		if n, err := s.snapshots.DeleteStale(ctx, model.HomepageKey, homepageRetention); err != nil {
			log.Printf("[CleanupService] 清理首页快照失败: %v", err)
		} else if n > 0 {
			log.Printf("[CleanupService] 已清理首页快照 %d 条", n)
		}
	}
}
