package handler

import (
	"net/http"
	"time"

	"github.com/user/hanime/internal/config"
	"github.com/user/hanime/internal/model"
	"github.com/user/hanime/internal/repository"
	"github.com/user/hanime/internal/service"
	"github.com/user/hanime/internal/utils"
)

// Handler HTTP 处理器
type Handler struct {
	Config        *config.Config
	Progress      *service.ProgressService
	Watchlist     *service.WatchlistService
	Comments      *service.CommentService
	Notifications *service.NotificationService
	Counters      *service.CounterService
	Creators      *service.CreatorService
	Stats         *service.StatsService
	Search        *service.SearchService
	Catalog       *service.CatalogService
	Video         *service.VideoProxy
	Auth          *service.AuthService
}

// NewHandler 创建处理器
func NewHandler(repos *repository.Repositories, cfg *config.Config, overrides config.CreatorOverrides, mailer service.Mailer) *Handler {
	client := utils.NewHTTPClient(15 * time.Second)

	return &Handler{
		Config:        cfg,
		Progress:      service.NewProgressService(repos.Progress),
		Watchlist:     service.NewWatchlistService(repos.Watchlist),
		Comments:      service.NewCommentService(repos.Comment),
		Notifications: service.NewNotificationService(repos.Notification, repos.User),
		Counters:      service.NewCounterService(repos.Counter),
		Creators:      service.NewCreatorService(repos.Creator, overrides, cfg.DefaultAdLink, utils.Cache),
		Stats:         service.NewStatsService(client, cfg.StatsAPIURL),
		Search:        service.NewSearchService(client, cfg.SearchAPIURL),
		Catalog:       service.NewCatalogService(client, cfg.CatalogAPIURL, repos.Homepage, utils.Cache),
		Video:         service.NewVideoProxy(&http.Client{}, cfg.VideoAllowedHosts),
		Auth:          service.NewAuthService(repos.User, mailer, cfg.SiteUrl),
	}
}

// sessionAuthor 当前登录用户作为评论作者
func sessionAuthor(su *model.SessionUser) service.Author {
	name := su.Username
	if name == "" {
		name = "匿名用户"
	}
	return service.Author{ID: su.ID, Name: name, Image: su.Avatar}
}
