package db

import "time"

// 事件类型取值。
const (
	EventKindView  = "view"
	EventKindClick = "click"
)

// AnalyticsEvent 是只追加的访问事件记录，view 事件只关联主页，
// click 事件额外关联被点击的链接。除随主页级联删除外从不更新或删除。
type AnalyticsEvent struct {
	ID        uint   `gorm:"primaryKey"`
	ProfileID uint   `gorm:"index;not null"`
	LinkID    *uint  `gorm:"index"`
	Kind      string `gorm:"size:10;index;not null"`
	ClientIP  string `gorm:"size:45"`
	UserAgent string `gorm:"size:255"`
	CreatedAt time.Time
}

// TableName 指定自定义表名。
func (AnalyticsEvent) TableName() string {
	return "analytics_events"
}
