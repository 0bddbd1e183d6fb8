package service

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/user/hanime/internal/utils"
	"golang.org/x/sync/singleflight"
)

// SearchService 站内搜索代理，结果按 (关键词, 页码) 缓存
type SearchService struct {
	client  *utils.HTTPClient
	baseURL string
	cache   *utils.SearchCache[json.RawMessage]
	sf      singleflight.Group
}

func NewSearchService(client *utils.HTTPClient, baseURL string) *SearchService {
	return &SearchService{
		client:  client,
		baseURL: baseURL,
		cache:   utils.NewSearchCache[json.RawMessage](1000, 10*time.Minute),
	}
}

// Search 搜索，上游 JSON 原样返回
func (s *SearchService) Search(ctx context.Context, query string, page int) (json.RawMessage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, Validation("搜索关键词不能为空")
	}
	if page < 1 {
		page = 1
	}
	if s.baseURL == "" {
		return nil, Internal("未配置搜索接口", nil)
	}

	key := strings.ToLower(query) + "|" + strconv.Itoa(page)
	if v, ok := s.cache.Get(key); ok {
		return v, nil
	}

	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		params := url.Values{}
		params.Set("q", query)
		params.Set("page", strconv.Itoa(page))
		body, err := s.client.GetBytes(ctx, s.baseURL+"?"+params.Encode(), nil)
		if err != nil {
			return nil, err
		}
		if !json.Valid(body) {
			return nil, Internal("搜索接口返回格式错误", nil)
		}
		raw := json.RawMessage(body)
		s.cache.Set(key, raw)
		return raw, nil
	})
	if err != nil {
		if _, ok := err.(*Error); ok {
			return nil, err
		}
		return nil, upstreamErr("搜索接口请求失败", err)
	}
	return v.(json.RawMessage), nil
}
