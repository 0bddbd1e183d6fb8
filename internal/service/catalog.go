package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/user/hanime/internal/model"
	"github.com/user/hanime/internal/utils"
	"golang.org/x/sync/singleflight"
)

const (
	catalogCacheKey = "catalog:" + model.HomepageKey
	catalogCacheTTL = 10 * time.Minute
	// 上游失败时快照的短缓存，避免每个请求都打到上游
	catalogFallbackTTL = time.Minute
)

// HomepageStore 首页快照存储
type HomepageStore interface {
	Latest(ctx context.Context, key string) (*model.HomepageCache, error)
	Save(ctx context.Context, key string, payload []byte) error
}

// CatalogService 首页目录代理
type CatalogService struct {
	client  *utils.HTTPClient
	baseURL string
	store   HomepageStore
	cache   *cache.Cache
	sf      singleflight.Group
}

func NewCatalogService(client *utils.HTTPClient, baseURL string, store HomepageStore, c *cache.Cache) *CatalogService {
	if c == nil {
		c = cache.New(catalogCacheTTL, 20*time.Minute)
	}
	return &CatalogService{client: client, baseURL: baseURL, store: store, cache: c}
}

// Home 获取首页目录：内存缓存 → 上游 → 最近一次快照
func (s *CatalogService) Home(ctx context.Context) (json.RawMessage, error) {
	if v, ok := s.cache.Get(catalogCacheKey); ok {
		return v.(json.RawMessage), nil
	}

	v, err, _ := s.sf.Do(catalogCacheKey, func() (interface{}, error) {
		body, err := s.fetch(ctx)
		if err == nil {
			s.cache.Set(catalogCacheKey, body, catalogCacheTTL)
			if err := s.store.Save(ctx, model.HomepageKey, body); err != nil {
				log.Printf("[CatalogService] 保存首页快照失败: %v", err)
			}
			return body, nil
		}
		log.Printf("[CatalogService] 上游获取失败，回退到快照: %v", err)

		snap, serr := s.store.Latest(ctx, model.HomepageKey)
		if serr != nil {
			return nil, Internal("获取首页快照失败", serr)
		}
		if snap == nil || len(snap.Payload) == 0 {
			return nil, Internal("首页数据不可用", err)
		}
		raw := json.RawMessage(snap.Payload)
		s.cache.Set(catalogCacheKey, raw, catalogFallbackTTL)
		return raw, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(json.RawMessage), nil
}

func (s *CatalogService) fetch(ctx context.Context) (json.RawMessage, error) {
	if s.baseURL == "" {
		return nil, Internal("未配置目录接口", nil)
	}
	body, err := s.client.GetBytes(ctx, s.baseURL, nil)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, Internal("目录接口返回格式错误", nil)
	}
	return json.RawMessage(body), nil
}
