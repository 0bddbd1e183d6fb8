package model

import "time"

// 片单状态
const (
	StatusWatching    = "Watching"
	StatusOnHold      = "On-Hold"
	StatusPlanToWatch = "Plan to Watch"
	StatusDropped     = "Dropped"
	StatusCompleted   = "Completed"
)

// WatchlistStatuses 全部合法状态
var WatchlistStatuses = []string{
	StatusWatching,
	StatusOnHold,
	StatusPlanToWatch,
	StatusDropped,
	StatusCompleted,
}

// IsValidWatchlistStatus 校验状态
func IsValidWatchlistStatus(status string) bool {
	for _, s := range WatchlistStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// WatchlistEntry 片单条目，(user_id, content_id) 唯一
type WatchlistEntry struct {
	ID               uint      `json:"-" gorm:"primaryKey"`
	UserID           string    `json:"userId" gorm:"uniqueIndex:idx_watchlist_user_content;not null"`
	ContentID        string    `json:"contentId" gorm:"uniqueIndex:idx_watchlist_user_content;not null"`
	Status           string    `json:"status" gorm:"index;not null"`
	Title            string    `json:"title"`
	Poster           string    `json:"poster"`
	LastEpisodeKey   string    `json:"lastEpisodeKey"`
	LastEpisodeNo    *int      `json:"lastEpisodeNo"`
	LastEpisodeTitle string    `json:"lastEpisodeTitle"`
	TotalDuration    float64   `json:"totalDuration"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt" gorm:"index"`
}

func (WatchlistEntry) TableName() string {
	return "hanimelists"
}

// WatchlistPage 片单分页结果
type WatchlistPage struct {
	Data       []*WatchlistEntry `json:"data"`
	Page       int               `json:"page"`
	TotalPages int               `json:"totalPages"`
	Total      int64             `json:"total"`
	PerPage    int               `json:"perPage"`
}
