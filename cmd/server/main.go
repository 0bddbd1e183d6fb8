package main

import (
	"context"
	"encoding/gob"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // 确保在精简镜像中也能识别时区

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/user/hanime/internal/config"
	"github.com/user/hanime/internal/email"
	"github.com/user/hanime/internal/handler"
	"github.com/user/hanime/internal/middleware"
	"github.com/user/hanime/internal/model"
	"github.com/user/hanime/internal/repository"
	"github.com/user/hanime/internal/router"
	"github.com/user/hanime/internal/service"
	"github.com/user/hanime/internal/utils"
)

func main() {
	// 注册 Session 模型
	gob.Register(model.SessionUser{})

	// 加载环境变量
	if err := godotenv.Load(); err != nil {
		log.Println("未找到 .env 文件，使用系统环境变量")
	}

	// 加载配置
	cfg := config.Load()
	overrides, err := config.LoadCreatorOverrides(cfg.CreatorOverridesFile)
	if err != nil {
		log.Fatalf("加载创作者覆盖表失败: %v", err)
	}
	if len(overrides) > 0 {
		log.Printf("已加载创作者覆盖项 %d 条", len(overrides))
	}

	// 初始化数据库
	db, err := repository.InitDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}
	sqlDB, _ := db.DB()
	defer sqlDB.Close()

	// 初始化凭证库
	mctx, mcancel := context.WithTimeout(context.Background(), 10*time.Second)
	mongoClient, mdb, err := repository.ConnectMongo(mctx, cfg.MongoURI, cfg.MongoDB)
	mcancel()
	if err != nil {
		log.Fatalf("MongoDB 连接失败: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(ctx); err != nil {
			log.Printf("MongoDB 断开失败: %v", err)
		}
	}()

	// 初始化仓库
	repos := repository.NewRepositories(db, mdb)

	// 初始化缓存
	utils.InitCache()

	mailer := &email.Mailer{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Pass:     cfg.SMTPPass,
		From:     cfg.SMTPFrom,
		SiteName: cfg.SiteName,
	}
	if !mailer.Enabled() {
		log.Println("未配置 SMTP，重置密码邮件只记录日志")
	}

	// 初始化 Gin
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	// 启用 gzip，视频流不压缩
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/api/video"})))

	// 设置 Session 中间件
	store := cookie.NewStore([]byte(cfg.AppSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 天
		HttpOnly: true,
		Secure:   cfg.Env == "production",
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("hanime_session", store))

	// 中间件
	r.Use(middleware.Logger())
	r.Use(middleware.Security())
	r.Use(middleware.CORS(cfg.CORSOrigins))

	// 初始化 Handler
	h := handler.NewHandler(repos, cfg, overrides, mailer)

	// 计数接口限流
	limiter := middleware.NewRateLimiter(cfg.CounterRateLimit, cfg.CounterRateBurst)
	defer limiter.Stop()

	// 启动定时清理任务
	cleanupSvc := service.NewCleanupService(repos.User, repos.Homepage)
	cleanupSvc.Start()
	defer cleanupSvc.Stop()

	// 注册路由
	router.RegisterRoutes(r, h, limiter)

	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     r,
		ReadTimeout: 10 * time.Second,
		// 视频流需要长连接，不设置写超时
		WriteTimeout:   0,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	// 在 goroutine 中启动服务器，这样我们就可以监听信号
	go func() {
		log.Printf("服务器启动于 http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("服务器启动失败: %v", err)
		}
	}()

	// 等待中断信号以优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("服务器强制关闭: %v", err)
	}

	log.Println("服务器已退出")
}
