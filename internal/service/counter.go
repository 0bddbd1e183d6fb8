package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/user/hanime/internal/model"
)

const maxCounterKeyLength = 200

// CounterStore 计数存储
type CounterStore interface {
	IncrementView(ctx context.Context, contentKey string) (int64, error)
	GetViews(ctx context.Context, contentKey string) (int64, error)
	IncrementShare(ctx context.Context, pageID, platform string) (*model.ShareCounter, error)
	GetShares(ctx context.Context, pageID string) (*model.ShareCounter, error)
}

// CounterService 播放量与分享计数服务
type CounterService struct {
	store CounterStore
}

func NewCounterService(store CounterStore) *CounterService {
	return &CounterService{store: store}
}

func counterKey(key, name string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", Validation(name + " 不能为空")
	}
	if utf8.RuneCountInString(key) > maxCounterKeyLength {
		return "", Validation(name + " 过长")
	}
	return key, nil
}

// IncrementView 播放量加一，返回新值
func (s *CounterService) IncrementView(ctx context.Context, contentKey string) (int64, error) {
	key, err := counterKey(contentKey, "contentKey")
	if err != nil {
		return 0, err
	}
	views, err := s.store.IncrementView(ctx, key)
	if err != nil {
		return 0, Internal("更新播放量失败", err)
	}
	return views, nil
}

// Views 获取播放量
func (s *CounterService) Views(ctx context.Context, contentKey string) (int64, error) {
	key, err := counterKey(contentKey, "contentKey")
	if err != nil {
		return 0, err
	}
	views, err := s.store.GetViews(ctx, key)
	if err != nil {
		return 0, Internal("获取播放量失败", err)
	}
	return views, nil
}

// IncrementShare 分享计数加一
func (s *CounterService) IncrementShare(ctx context.Context, pageID, platform string) (model.ShareView, error) {
	key, err := counterKey(pageID, "pageId")
	if err != nil {
		return model.ShareView{}, err
	}
	c, err := s.store.IncrementShare(ctx, key, model.NormalizePlatform(platform))
	if err != nil {
		return model.ShareView{}, Internal("更新分享数失败", err)
	}
	return c.View(), nil
}

// Shares 获取分享计数
func (s *CounterService) Shares(ctx context.Context, pageID string) (model.ShareView, error) {
	key, err := counterKey(pageID, "pageId")
	if err != nil {
		return model.ShareView{}, err
	}
	c, err := s.store.GetShares(ctx, key)
	if err != nil {
		return model.ShareView{}, Internal("获取分享数失败", err)
	}
	return c.View(), nil
}
