package utils

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/patrickmn/go-cache"
)

// Cache 全局缓存实例，用于创作者解析和首页目录
var Cache *cache.Cache

// InitCache 初始化全局缓存，默认过期5分钟，清理间隔10分钟
func InitCache() *cache.Cache {
	Cache = cache.New(5*time.Minute, 10*time.Minute)
	return Cache
}

// entry LRU 条目，带各自的过期时间
type entry[T any] struct {
	value     T
	expiresAt time.Time
}

// SearchCache 带过期时间的 LRU 缓存，容量满时淘汰最久未使用的条目
type SearchCache[T any] struct {
	storage *lru.Cache[string, entry[T]]
	ttl     time.Duration
	now     func() time.Time
}

// NewSearchCache size 为最大条数，ttl 为单条有效期
func NewSearchCache[T any](size int, ttl time.Duration) *SearchCache[T] {
	if size <= 0 {
		size = 256
	}
	c, _ := lru.New[string, entry[T]](size)
	return &SearchCache[T]{storage: c, ttl: ttl, now: time.Now}
}

// Set 写入或覆盖
func (c *SearchCache[T]) Set(key string, value T) {
	c.storage.Add(key, entry[T]{value: value, expiresAt: c.now().Add(c.ttl)})
}

// Get 读取，过期条目会被移除
func (c *SearchCache[T]) Get(key string) (T, bool) {
	var zero T
	e, ok := c.storage.Get(key)
	if !ok {
		return zero, false
	}
	if c.now().After(e.expiresAt) {
		c.storage.Remove(key)
		return zero, false
	}
	return e.value, true
}

func (c *SearchCache[T]) Delete(key string) {
	c.storage.Remove(key)
}

func (c *SearchCache[T]) Len() int {
	return c.storage.Len()
}
