package service

import (
	"testing"

	"github.com/linkfolio/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupServiceTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if err := gdb.AutoMigrate(&db.Profile{}, &db.Link{}, &db.AnalyticsEvent{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	cleanup := func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
	return gdb, cleanup
}

func seedProfile(t *testing.T, gdb *gorm.DB, slug string) *db.Profile {
	t.Helper()

	profile := db.Profile{Slug: slug, Name: slug}
	if err := gdb.Create(&profile).Error; err != nil {
		t.Fatalf("failed to seed profile: %v", err)
	}
	return &profile
}

func seedLink(t *testing.T, gdb *gorm.DB, profileID uint, name string, position int) *db.Link {
	t.Helper()

	link := db.Link{ProfileID: profileID, Category: "other", Name: name, URL: "https://example.com/" + name, Position: position}
	if err := gdb.Create(&link).Error; err != nil {
		t.Fatalf("failed to seed link: %v", err)
	}
	return &link
}
