package model

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// ViewCounter 播放量计数
type ViewCounter struct {
	ContentKey string    `json:"contentKey" gorm:"primaryKey"`
	Views      int64     `json:"views" gorm:"not null;default:0"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (ViewCounter) TableName() string {
	return "hanime_views"
}

// 分享平台
const PlatformOther = "other"

// SharePlatforms 可识别的分享平台
var SharePlatforms = []string{"facebook", "twitter", "whatsapp", "telegram", "reddit", "copy", PlatformOther}

// NormalizePlatform 统一平台名称，未知平台归入 other
func NormalizePlatform(platform string) string {
	p := strings.ToLower(strings.TrimSpace(platform))
	for _, s := range SharePlatforms {
		if s == p {
			return p
		}
	}
	return PlatformOther
}

// ShareCounter 分享计数，shares 为平台到次数的映射
type ShareCounter struct {
	PageID      string            `json:"pageId" gorm:"primaryKey"`
	Shares      datatypes.JSONMap `json:"shares" gorm:"type:jsonb;not null;default:'{}'"`
	TotalShares int64             `json:"totalShares" gorm:"not null;default:0"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

func (ShareCounter) TableName() string {
	return "shares"
}

// Counts 将 jsonb 映射转换为整数计数
func (s *ShareCounter) Counts() map[string]int64 {
	out := make(map[string]int64, len(s.Shares))
	for k, v := range s.Shares {
		switch n := v.(type) {
		case float64:
			out[k] = int64(n)
		case int64:
			out[k] = n
		case int:
			out[k] = int64(n)
		}
	}
	return out
}

// ShareView 分享计数返回结构
type ShareView struct {
	PageID      string           `json:"pageId"`
	Shares      map[string]int64 `json:"shares"`
	TotalShares int64            `json:"totalShares"`
}

// View 转换为返回结构
func (s *ShareCounter) View() ShareView {
	return ShareView{
		PageID:      s.PageID,
		Shares:      s.Counts(),
		TotalShares: s.TotalShares,
	}
}
