package service

import (
	"context"
	"strings"

	"github.com/user/hanime/internal/model"
)

// ProgressStore 观看进度存储
type ProgressStore interface {
	Find(ctx context.Context, userID, contentKey string) (*model.WatchProgress, error)
	ListByUser(ctx context.Context, userID string) ([]*model.WatchProgress, error)
	Upsert(ctx context.Context, p *model.WatchProgress) error
	Delete(ctx context.Context, userID, contentKey string) error
}

// ProgressPayload 播放心跳上报内容，指针字段用于区分缺失与零值
type ProgressPayload struct {
	ContentKey      *string  `json:"contentKey" validate:"required,min=1,max=256"`
	CurrentTime     *float64 `json:"currentTime" validate:"required,gte=0"`
	TotalDuration   *float64 `json:"totalDuration" validate:"required,gte=0"`
	Title           *string  `json:"title" validate:"required"`
	Poster          *string  `json:"poster" validate:"required"`
	ParentContentID *string  `json:"parentContentId"`
	EpisodeNo       *int     `json:"episodeNo"`
}

// ProgressService 观看进度服务
type ProgressService struct {
	store ProgressStore
}

func NewProgressService(store ProgressStore) *ProgressService {
	return &ProgressService{store: store}
}

// Get 获取单条进度，不存在时返回零值
func (s *ProgressService) Get(ctx context.Context, userID, contentKey string) (model.ProgressView, error) {
	contentKey = strings.TrimSpace(contentKey)
	if contentKey == "" {
		return model.ProgressView{}, Validation("contentKey 不能为空")
	}
	p, err := s.store.Find(ctx, userID, contentKey)
	if err != nil {
		return model.ProgressView{}, Internal("获取观看进度失败", err)
	}
	return p.View(), nil
}

// List 获取用户全部进度，最近更新在前
func (s *ProgressService) List(ctx context.Context, userID string) ([]*model.WatchProgress, error) {
	list, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, Internal("获取观看进度列表失败", err)
	}
	if list == nil {
		list = []*model.WatchProgress{}
	}
	return list, nil
}

// Set 保存观看进度
func (s *ProgressService) Set(ctx context.Context, userID string, payload ProgressPayload) (*model.WatchProgress, error) {
	if payload.ContentKey != nil {
		key := strings.TrimSpace(*payload.ContentKey)
		payload.ContentKey = &key
	}
	if err := validate.Struct(payload); err != nil {
		fields := failedFields(err)
		if len(fields) == 0 {
			fields = []string{"contentKey", "currentTime", "totalDuration", "title", "poster"}
		}
		return nil, Validation("缺少必要的元数据: " + strings.Join(fields, ", "))
	}

	p := &model.WatchProgress{
		UserID:          userID,
		ContentKey:      *payload.ContentKey,
		CurrentTime:     *payload.CurrentTime,
		TotalDuration:   *payload.TotalDuration,
		Title:           *payload.Title,
		Poster:          *payload.Poster,
		ParentContentID: payload.ParentContentID,
		EpisodeNo:       payload.EpisodeNo,
	}
	if err := s.store.Upsert(ctx, p); err != nil {
		return nil, Internal("保存观看进度失败", err)
	}
	return p, nil
}

// Clear 删除观看进度，记录不存在不视为错误
func (s *ProgressService) Clear(ctx context.Context, userID, contentKey string) error {
	contentKey = strings.TrimSpace(contentKey)
	if contentKey == "" {
		return Validation("contentKey 不能为空")
	}
	if err := s.store.Delete(ctx, userID, contentKey); err != nil {
		return Internal("删除观看进度失败", err)
	}
	return nil
}
