package db

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// DB 是一个全局的数据库连接实例
var DB *gorm.DB

// Init 初始化数据库连接并执行自动迁移。
// databaseURL 非空时使用 Postgres；否则打开 databasePath 指向的 SQLite 文件，
// 为空时回退到默认值 linkfolio.db。
func Init(databaseURL, databasePath string) error {
	var dialector gorm.Dialector

	if url := strings.TrimSpace(databaseURL); url != "" {
		dialector = postgres.Open(url)
	} else {
		path := strings.TrimSpace(databasePath)
		if path == "" {
			path = "linkfolio.db"
		}
		if err := ensureParentDir(path); err != nil {
			return err
		}
		dialector = sqlite.Open(path)
	}

	var err error
	DB, err = gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return err
	}

	// 自动迁移模式，为核心模型创建表
	return DB.AutoMigrate(
		&User{},
		&Profile{},
		&Link{},
		&AnalyticsEvent{},
	)
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
