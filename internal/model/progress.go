package model

import "time"

// WatchProgress 观看进度，(user_id, content_key) 唯一
type WatchProgress struct {
	ID              uint      `json:"-" gorm:"primaryKey"`
	UserID          string    `json:"userId" gorm:"uniqueIndex:idx_progress_user_content;not null"`
	ContentKey      string    `json:"contentKey" gorm:"uniqueIndex:idx_progress_user_content;not null"`
	CurrentTime     float64   `json:"currentTime" gorm:"column:playback_time"`
	TotalDuration   float64   `json:"totalDuration"`
	Title           string    `json:"title"`
	Poster          string    `json:"poster"`
	ParentContentID *string   `json:"parentContentId"`
	EpisodeNo       *int      `json:"episodeNo"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt" gorm:"index"`
}

func (WatchProgress) TableName() string {
	return "watch_progress"
}

// ProgressView 单条进度查询结果，无记录时为零值
type ProgressView struct {
	CurrentTime     float64 `json:"currentTime"`
	TotalDuration   float64 `json:"totalDuration"`
	Title           *string `json:"title"`
	Poster          *string `json:"poster"`
	ParentContentID *string `json:"parentContentId"`
	EpisodeNo       *int    `json:"episodeNo"`
}

// View 转换为查询结果
func (p *WatchProgress) View() ProgressView {
	if p == nil {
		return ProgressView{}
	}
	title, poster := p.Title, p.Poster
	return ProgressView{
		CurrentTime:     p.CurrentTime,
		TotalDuration:   p.TotalDuration,
		Title:           &title,
		Poster:          &poster,
		ParentContentID: p.ParentContentID,
		EpisodeNo:       p.EpisodeNo,
	}
}
