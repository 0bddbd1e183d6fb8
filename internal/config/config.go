package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config 应用配置
type Config struct {
	Env         string
	AppSecret   string
	DatabaseURL string
	JWTExpiry   time.Duration
	Port        string
	SiteName    string
	SiteUrl     string

	MongoURI string
	MongoDB  string

	CatalogAPIURL string
	SearchAPIURL  string
	StatsAPIURL   string

	DefaultAdLink        string
	CreatorOverridesFile string

	CORSOrigins       []string
	VideoAllowedHosts []string

	CounterRateLimit float64
	CounterRateBurst int

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string
}

// Load 加载配置
func Load() *Config {
	expiryHours, _ := strconv.Atoi(getEnv("JWT_EXPIRY_HOURS", "72"))

	dbUser := getEnv("DB_USER", "postgres")
	dbPass := getEnv("DB_PASSWORD", "postgres")
	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	dbName := getEnv("DB_NAME", "hanime")
	dbSSL := getEnv("DB_SSLMODE", "disable")

	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		dbUser, dbPass, dbHost, dbPort, dbName, dbSSL)

	appSecret := getEnv("APP_SECRET", getEnv("JWT_SECRET", "your-secret-key-change-in-production"))

	if getEnv("APP_ENV", "development") == "production" && appSecret == "your-secret-key-change-in-production" {
		fmt.Println("【严重警告】生产环境正在使用默认密钥！请立即设置 APP_SECRET 环境变量。")
	}

	// 计数限流默认关闭，0 表示不限流
	rateLimit, err := strconv.ParseFloat(getEnv("COUNTER_RATE_LIMIT", "0"), 64)
	if err != nil || rateLimit < 0 {
		rateLimit = 0
	}
	rateBurst, err := strconv.Atoi(getEnv("COUNTER_RATE_BURST", "10"))
	if err != nil || rateBurst <= 0 {
		rateBurst = 10
	}
	smtpPort, _ := strconv.Atoi(getEnv("SMTP_PORT", "587"))

	return &Config{
		Env:         getEnv("APP_ENV", "development"),
		AppSecret:   appSecret,
		DatabaseURL: dbURL,
		JWTExpiry:   time.Duration(expiryHours) * time.Hour,
		Port:        getEnv("PORT", "5005"),
		SiteName:    getEnv("SITE_NAME", "Hanime"),
		SiteUrl:     getEnv("SITE_URL", "http://localhost:5005"),

		MongoURI: getEnv("MONGODB_URI", "mongodb://127.0.0.1:27017"),
		MongoDB:  getEnv("MONGODB_DB", "hanime"),

		CatalogAPIURL: getEnv("CATALOG_API_URL", ""),
		SearchAPIURL:  getEnv("SEARCH_API_URL", ""),
		StatsAPIURL:   getEnv("STATS_API_URL", "https://api3.adsterratools.com/publisher/stats.json"),

		DefaultAdLink:        getEnv("DEFAULT_AD_LINK", ""),
		CreatorOverridesFile: getEnv("CREATOR_OVERRIDES_FILE", ""),

		CORSOrigins:       splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		VideoAllowedHosts: splitList(getEnv("VIDEO_ALLOWED_HOSTS", "")),

		CounterRateLimit: rateLimit,
		CounterRateBurst: rateBurst,

		SMTPHost: getEnv("SMTP_HOST", ""),
		SMTPPort: smtpPort,
		SMTPUser: getEnv("SMTP_USER", ""),
		SMTPPass: getEnv("SMTP_PASS", ""),
		SMTPFrom: getEnv("SMTP_FROM", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// splitList 解析逗号分隔的列表，忽略空项
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
