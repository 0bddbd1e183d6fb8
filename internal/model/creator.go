package model

import "time"

// CreatorSetup 创作者变现配置
type CreatorSetup struct {
	UserID            string    `json:"userId" gorm:"primaryKey"`
	Username          string    `json:"username" gorm:"uniqueIndex;not null"`
	AdsterraSmartlink string    `json:"adsterraSmartlink"`
	CreatorAPIKey     string    `json:"creatorApiKey"`
	InstagramID       string    `json:"instagramId"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func (CreatorSetup) TableName() string {
	return "creators"
}

// CreatorLink 创作者标识解析结果
type CreatorLink struct {
	AdsterraSmartlink string `json:"adsterraSmartlink"`
	CreatorAPIKey     string `json:"creatorApiKey"`
	PlacementID       string `json:"placementId,omitempty"`
	InstagramID       string `json:"instagramId"`
	Fallback          bool   `json:"fallback"`
	Overridden        bool   `json:"overridden"`
}
