package service

import (
	"context"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/user/hanime/internal/config"
	"github.com/user/hanime/internal/model"
)

const (
	creatorCachePrefix = "creator:"
	creatorCacheTTL    = 5 * time.Minute
)

// CreatorStore 创作者配置存储
type CreatorStore interface {
	FindByUserID(ctx context.Context, userID string) (*model.CreatorSetup, error)
	FindByUsername(ctx context.Context, username string) (*model.CreatorSetup, error)
	Upsert(ctx context.Context, s *model.CreatorSetup) error
}

// CreatorRequest 变现配置提交内容
type CreatorRequest struct {
	AdsterraSmartlink string `json:"adsterraSmartlink"`
	CreatorAPIKey     string `json:"creatorApiKey"`
	InstagramID       string `json:"instagramId"`
}

// CreatorCredentials 广告统计凭证
type CreatorCredentials struct {
	APIKey      string
	PlacementID string
}

// CreatorService 创作者变现服务
type CreatorService struct {
	store       CreatorStore
	overrides   config.CreatorOverrides
	defaultLink string
	cache       *cache.Cache
}

func NewCreatorService(store CreatorStore, overrides config.CreatorOverrides, defaultLink string, c *cache.Cache) *CreatorService {
	if c == nil {
		c = cache.New(creatorCacheTTL, 10*time.Minute)
	}
	if overrides == nil {
		overrides = config.CreatorOverrides{}
	}
	return &CreatorService{
		store:       store,
		overrides:   overrides,
		defaultLink: defaultLink,
		cache:       c,
	}
}

// Get 获取本人的变现配置，未配置返回 nil
func (s *CreatorService) Get(ctx context.Context, userID string) (*model.CreatorSetup, error) {
	setup, err := s.store.FindByUserID(ctx, userID)
	if err != nil {
		return nil, Internal("获取创作者配置失败", err)
	}
	return setup, nil
}

// Upsert 保存变现配置并使解析缓存失效
func (s *CreatorService) Upsert(ctx context.Context, userID, username string, req CreatorRequest) (*model.CreatorSetup, error) {
	if strings.TrimSpace(username) == "" {
		return nil, Validation("用户名不能为空")
	}
	link := strings.TrimSpace(req.AdsterraSmartlink)
	if link != "" && !isHTTPURL(link) {
		return nil, Validation("adsterraSmartlink 必须是 http(s) 链接")
	}

	prev, err := s.store.FindByUserID(ctx, userID)
	if err != nil {
		return nil, Internal("获取创作者配置失败", err)
	}

	setup := &model.CreatorSetup{
		UserID:            userID,
		Username:          strings.TrimSpace(username),
		AdsterraSmartlink: link,
		CreatorAPIKey:     strings.TrimSpace(req.CreatorAPIKey),
		InstagramID:       strings.TrimSpace(req.InstagramID),
	}
	if prev != nil {
		setup.CreatedAt = prev.CreatedAt
	}
	if err := s.store.Upsert(ctx, setup); err != nil {
		return nil, Internal("保存创作者配置失败", err)
	}

	s.invalidate(setup.Username)
	if prev != nil && !strings.EqualFold(prev.Username, setup.Username) {
		s.invalidate(prev.Username)
	}
	return setup, nil
}

// Resolve 按创作者标识解析广告链接，未知标识回退到默认链接
func (s *CreatorService) Resolve(ctx context.Context, handle string) (*model.CreatorLink, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return s.fallback(), nil
	}

	key := creatorCachePrefix + strings.ToLower(handle)
	if v, ok := s.cache.Get(key); ok {
		link := *v.(*model.CreatorLink)
		return &link, nil
	}

	setup, err := s.store.FindByUsername(ctx, handle)
	if err != nil {
		return nil, Internal("解析创作者失败", err)
	}

	link := s.fallback()
	if setup != nil {
		link.CreatorAPIKey = setup.CreatorAPIKey
		link.InstagramID = setup.InstagramID
		if setup.AdsterraSmartlink != "" {
			link.AdsterraSmartlink = setup.AdsterraSmartlink
			link.Fallback = false
		}
	}
	if o, ok := s.overrides.Lookup(handle); ok {
		log.Printf("[CreatorService] 使用覆盖凭证: %s (%s)", o.Username, o.Reason)
		link.CreatorAPIKey = o.APIKey
		link.PlacementID = o.PlacementID
		link.Overridden = true
	}

	s.cache.Set(key, link, creatorCacheTTL)
	out := *link
	return &out, nil
}

// Credentials 获取广告统计凭证：覆盖表优先，其次本人配置
func (s *CreatorService) Credentials(ctx context.Context, userID, username string) (*CreatorCredentials, error) {
	if o, ok := s.overrides.Lookup(username); ok {
		return &CreatorCredentials{APIKey: o.APIKey, PlacementID: o.PlacementID}, nil
	}

	setup, err := s.store.FindByUserID(ctx, userID)
	if err != nil {
		return nil, Internal("获取创作者配置失败", err)
	}
	if setup == nil || setup.CreatorAPIKey == "" {
		return nil, NotFound("未配置广告统计凭证")
	}
	return &CreatorCredentials{APIKey: setup.CreatorAPIKey}, nil
}

func (s *CreatorService) fallback() *model.CreatorLink {
	return &model.CreatorLink{AdsterraSmartlink: s.defaultLink, Fallback: true}
}

func (s *CreatorService) invalidate(username string) {
	s.cache.Delete(creatorCachePrefix + strings.ToLower(username))
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
