package model

import (
	"time"

	"gorm.io/datatypes"
)

// HomepageKey 首页缓存文档键
const HomepageKey = "hompro"

// HomepageCache 首页目录快照，上游失败时回退使用
type HomepageCache struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Key       string         `json:"key" gorm:"column:cache_key;index;not null"`
	Payload   datatypes.JSON `json:"payload" gorm:"type:jsonb"`
	FetchedAt time.Time      `json:"fetchedAt" gorm:"index"`
}

func (HomepageCache) TableName() string {
	return "homepage_caches"
}
