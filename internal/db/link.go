package db

import "gorm.io/gorm"

// Link 是主页上的一条外链，归属于且仅归属于一个 Profile。
// Position 在同一主页内是从 0 开始的密集排名，增删与重排必须保持不重不漏。
// Category 用于匹配前端内置的平台图标。
type Link struct {
	gorm.Model
	ProfileID  uint   `gorm:"index;not null"`
	Category   string `gorm:"size:50;not null"`
	Name       string `gorm:"size:50;not null"`
	URL        string `gorm:"size:255;not null"`
	Position   int    `gorm:"default:0"`
	ClickCount uint64 `gorm:"default:0"`
}

// TableName 指定自定义表名。
func (Link) TableName() string {
	return "links"
}
