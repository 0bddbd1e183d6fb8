package service

import (
	"context"
	"strings"

	"github.com/user/hanime/internal/model"
)

// WatchlistPageSize 片单默认每页条数
const WatchlistPageSize = 12

// WatchlistStore 片单存储
type WatchlistStore interface {
	List(ctx context.Context, userID, status string, limit, offset int) ([]*model.WatchlistEntry, int64, error)
	Find(ctx context.Context, userID, contentID string) (*model.WatchlistEntry, error)
	Upsert(ctx context.Context, e *model.WatchlistEntry) error
	Delete(ctx context.Context, userID, contentID string) error
}

// WatchlistRequest 片单状态设置请求，Status 为 nil 表示移除
type WatchlistRequest struct {
	ContentID        string  `json:"contentId"`
	Status           *string `json:"status"`
	Title            string  `json:"title"`
	Poster           string  `json:"poster"`
	LastEpisodeKey   string  `json:"lastEpisodeKey"`
	LastEpisodeNo    *int    `json:"lastEpisodeNo"`
	LastEpisodeTitle string  `json:"lastEpisodeTitle"`
	TotalDuration    float64 `json:"totalDuration"`
}

// WatchlistService 片单服务
type WatchlistService struct {
	store WatchlistStore
}

func NewWatchlistService(store WatchlistStore) *WatchlistService {
	return &WatchlistService{store: store}
}

// List 分页获取片单
func (s *WatchlistService) List(ctx context.Context, userID, status string, page, pageSize int) (*model.WatchlistPage, error) {
	if status != "" && !model.IsValidWatchlistStatus(status) {
		return nil, Validation("无效的片单状态")
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = WatchlistPageSize
	}
	page, offset := pageOffset(page, pageSize)

	entries, total, err := s.store.List(ctx, userID, status, pageSize, offset)
	if err != nil {
		return nil, Internal("获取片单失败", err)
	}
	if entries == nil {
		entries = []*model.WatchlistEntry{}
	}
	return &model.WatchlistPage{
		Data:       entries,
		Page:       page,
		TotalPages: totalPages(total, pageSize),
		Total:      total,
		PerPage:    pageSize,
	}, nil
}

// Status 获取单个内容的片单状态，未收藏返回 nil
func (s *WatchlistService) Status(ctx context.Context, userID, contentID string) (*string, error) {
	if strings.TrimSpace(contentID) == "" {
		return nil, Validation("contentId 不能为空")
	}
	e, err := s.store.Find(ctx, userID, contentID)
	if err != nil {
		return nil, Internal("获取片单状态失败", err)
	}
	if e == nil {
		return nil, nil
	}
	status := e.Status
	return &status, nil
}

// Upsert 设置片单状态，状态为 nil 时移除条目并返回 nil
func (s *WatchlistService) Upsert(ctx context.Context, userID string, req WatchlistRequest) (*model.WatchlistEntry, error) {
	contentID := strings.TrimSpace(req.ContentID)
	if contentID == "" {
		return nil, Validation("contentId 不能为空")
	}

	if req.Status == nil {
		if err := s.store.Delete(ctx, userID, contentID); err != nil {
			return nil, Internal("移除片单条目失败", err)
		}
		return nil, nil
	}
	if !model.IsValidWatchlistStatus(*req.Status) {
		return nil, Validation("无效的片单状态")
	}

	e := &model.WatchlistEntry{
		UserID:           userID,
		ContentID:        contentID,
		Status:           *req.Status,
		Title:            req.Title,
		Poster:           req.Poster,
		LastEpisodeKey:   req.LastEpisodeKey,
		LastEpisodeNo:    req.LastEpisodeNo,
		LastEpisodeTitle: req.LastEpisodeTitle,
		TotalDuration:    req.TotalDuration,
	}
	if err := s.store.Upsert(ctx, e); err != nil {
		return nil, Internal("保存片单失败", err)
	}
	return e, nil
}

// Remove 删除片单条目
func (s *WatchlistService) Remove(ctx context.Context, userID, contentID string) error {
	if strings.TrimSpace(contentID) == "" {
		return Validation("contentId 不能为空")
	}
	if err := s.store.Delete(ctx, userID, contentID); err != nil {
		return Internal("移除片单条目失败", err)
	}
	return nil
}
