package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/linkfolio/internal/db"
	"gorm.io/gorm"
)

// 默认的每日直方图跨度，含当天在内共 8 个日历日。
const defaultHistogramDays = 8

// AnalyticsService 负责访问事件的记录与聚合。
// 事件日志只追加，聚合指标全部在查询时从原始日志计算，不做物化。
type AnalyticsService struct {
	db *gorm.DB
}

// NewAnalyticsService 创建 AnalyticsService。
func NewAnalyticsService(gdb *gorm.DB) *AnalyticsService {
	return &AnalyticsService{db: gdb}
}

// DailyCount 表示直方图中单个日历日的浏览量。
type DailyCount struct {
	Day   time.Time
	Count int64
}

// ProfileStats 汇总单个主页的统计数据。
type ProfileStats struct {
	TotalViews   int64
	RollingViews int64
	Histogram    []DailyCount
}

// RecordView 为主页追加一条 view 事件并在同一事务内递增浏览计数。
func (s *AnalyticsService) RecordView(profileID uint, clientIP, userAgent string, now time.Time) error {
	if profileID == 0 {
		return errors.New("invalid profile id")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var profile db.Profile
		if err := tx.First(&profile, profileID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProfileNotFound
			}
			return fmt.Errorf("find profile: %w", err)
		}

		event := db.AnalyticsEvent{
			ProfileID: profileID,
			Kind:      db.EventKindView,
			ClientIP:  clientIP,
			UserAgent: userAgent,
			CreatedAt: now,
		}
		if err := tx.Create(&event).Error; err != nil {
			return fmt.Errorf("record view event: %w", err)
		}

		if err := tx.Model(&db.Profile{}).Where("id = ?", profileID).
			Update("view_count", gorm.Expr("view_count + 1")).Error; err != nil {
			return fmt.Errorf("increment view count: %w", err)
		}
		return nil
	})
}

// RecordClick 为链接追加一条 click 事件并在同一事务内递增点击计数。
// 返回被点击的链接，便于调用方完成跳转。
func (s *AnalyticsService) RecordClick(linkID uint, clientIP, userAgent string, now time.Time) (*db.Link, error) {
	if linkID == 0 {
		return nil, errors.New("invalid link id")
	}

	var link db.Link
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&link, linkID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLinkNotFound
			}
			return fmt.Errorf("find link: %w", err)
		}

		event := db.AnalyticsEvent{
			ProfileID: link.ProfileID,
			LinkID:    &link.ID,
			Kind:      db.EventKindClick,
			ClientIP:  clientIP,
			UserAgent: userAgent,
			CreatedAt: now,
		}
		if err := tx.Create(&event).Error; err != nil {
			return fmt.Errorf("record click event: %w", err)
		}

		if err := tx.Model(&db.Link{}).Where("id = ?", link.ID).
			Update("click_count", gorm.Expr("click_count + 1")).Error; err != nil {
			return fmt.Errorf("increment click count: %w", err)
		}
		link.ClickCount++
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// TotalViews 统计主页的累计 view 事件数。
func (s *AnalyticsService) TotalViews(profileID uint) (int64, error) {
	var count int64
	if err := s.db.Model(&db.AnalyticsEvent{}).
		Where("profile_id = ? AND kind = ?", profileID, db.EventKindView).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count views: %w", err)
	}
	return count, nil
}

// LinkClicks 统计指向该链接的 click 事件数。
func (s *AnalyticsService) LinkClicks(linkID uint) (int64, error) {
	var count int64
	if err := s.db.Model(&db.AnalyticsEvent{}).
		Where("link_id = ? AND kind = ?", linkID, db.EventKindClick).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count clicks: %w", err)
	}
	return count, nil
}

// ViewsSince 统计 [now-days, now) 窗口内的 view 事件数。
func (s *AnalyticsService) ViewsSince(profileID uint, days int, now time.Time) (int64, error) {
	if days <= 0 {
		return 0, nil
	}

	start := now.AddDate(0, 0, -days)
	var count int64
	if err := s.db.Model(&db.AnalyticsEvent{}).
		Where("profile_id = ? AND kind = ? AND created_at >= ? AND created_at < ?",
			profileID, db.EventKindView, start, now).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count rolling views: %w", err)
	}
	return count, nil
}

// DailyHistogram 返回按日历日分桶的 view 事件数，从最旧到最新、缺失日补零。
// days <= 0 时使用默认的 8 天跨度，桶在查询时由原始日志现算。
func (s *AnalyticsService) DailyHistogram(profileID uint, days int, now time.Time) ([]DailyCount, error) {
	if days <= 0 {
		days = defaultHistogramDays
	}

	today := truncateToDay(now)
	start := today.AddDate(0, 0, -(days - 1))

	var events []db.AnalyticsEvent
	if err := s.db.Where("profile_id = ? AND kind = ? AND created_at >= ? AND created_at < ?",
		profileID, db.EventKindView, start, today.AddDate(0, 0, 1)).
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("load view events: %w", err)
	}

	perDay := make(map[string]int64, days)
	for _, event := range events {
		perDay[event.CreatedAt.In(now.Location()).Format("2006-01-02")]++
	}

	histogram := make([]DailyCount, 0, days)
	for offset := 0; offset < days; offset++ {
		day := start.AddDate(0, 0, offset)
		histogram = append(histogram, DailyCount{Day: day, Count: perDay[day.Format("2006-01-02")]})
	}
	return histogram, nil
}

// ProfileStats 打包累计浏览、近 rollingDays 天浏览与默认直方图。
func (s *AnalyticsService) ProfileStats(profileID uint, rollingDays int, now time.Time) (*ProfileStats, error) {
	total, err := s.TotalViews(profileID)
	if err != nil {
		return nil, err
	}

	rolling, err := s.ViewsSince(profileID, rollingDays, now)
	if err != nil {
		return nil, err
	}

	histogram, err := s.DailyHistogram(profileID, defaultHistogramDays, now)
	if err != nil {
		return nil, err
	}

	return &ProfileStats{TotalViews: total, RollingViews: rolling, Histogram: histogram}, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
