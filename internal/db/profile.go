package db

import "gorm.io/gorm"

// Profile 表示一个对外公开的个人主页，通过唯一 slug 访问。
// 颜色字段保存十六进制色值，PhotoPosX/PhotoPosY 保存头像焦点的百分比位置。
// Protected 为 true 时访客需要输入密码解锁后才能查看内容。
type Profile struct {
	gorm.Model
	Slug            string `gorm:"size:50;uniqueIndex;not null"`
	Name            string `gorm:"size:100"`
	Title           string `gorm:"size:100"`
	Biography       string `gorm:"type:text"`
	Email           string `gorm:"size:100"`
	Phone           string `gorm:"size:50"`
	PhotoURL        string `gorm:"size:255"`
	PhotoPosX       int    `gorm:"default:50"`
	PhotoPosY       int    `gorm:"default:50"`
	ColorPrimary    string `gorm:"size:7;default:'#001F3F'"`
	ColorBackground string `gorm:"size:7;default:'#E9ECEF'"`
	ColorHeading    string `gorm:"size:7;default:'#001F3F'"`
	ColorBio        string `gorm:"size:7;default:'#444444'"`
	Theme           string `gorm:"size:20;default:'classic'"`
	Layout          string `gorm:"size:20;default:'list'"`
	Template        string `gorm:"size:20;default:'standard'"`
	Protected       bool
	PasswordHash    string `gorm:"size:100"`
	WebhookURL      string `gorm:"size:255"`
	ViewCount       uint64 `gorm:"default:0"`

	Links []Link `gorm:"constraint:OnDelete:CASCADE"`
}

// TableName 指定自定义表名。
func (Profile) TableName() string {
	return "profiles"
}
