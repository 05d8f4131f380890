package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr    string
	Port          string
	DatabaseURL   string
	DatabasePath  string
	SessionSecret string
	GinMode       string
	UploadDir     string
	UploadURLPath string
	BackupDir     string
	TemplateGlob  string
	AdminUserName string
	AdminPassword string
	SiteBaseURL   string
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
// 启动时先尝试加载工作目录下的 .env 文件，文件不存在时直接忽略。
func Load() AppConfig {
	_ = godotenv.Load()

	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	// DATABASE_URL 非空时连接 Postgres，否则回退到本地 SQLite 文件
	databaseURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))

	databasePath := strings.TrimSpace(os.Getenv("DATABASE_PATH"))
	if databasePath == "" {
		databasePath = "linkfolio.db"
	}

	sessionSecret := strings.TrimSpace(os.Getenv("SESSION_SECRET"))
	if sessionSecret == "" {
		sessionSecret = "linkfolio-dev-secret"
	}

	ginMode := strings.TrimSpace(os.Getenv("GIN_MODE"))
	if ginMode == "" {
		ginMode = "release"
	}

	uploadDir := strings.TrimSpace(os.Getenv("UPLOAD_DIR"))
	if uploadDir == "" {
		uploadDir = "data/uploads"
	}

	// 上传目录单独挂一个路由，不能落在 /static 通配符下面
	uploadURLPath := strings.TrimSpace(os.Getenv("UPLOAD_URL_PATH"))
	if uploadURLPath == "" {
		uploadURLPath = "/uploads"
	}

	backupDir := strings.TrimSpace(os.Getenv("BACKUP_DIR"))
	if backupDir == "" {
		backupDir = "backups"
	}

	templateGlob := strings.TrimSpace(os.Getenv("TEMPLATE_GLOB"))
	if templateGlob == "" {
		templateGlob = "web/template/*.html"
	}

	siteBaseURL := strings.TrimSpace(os.Getenv("SITE_BASE_URL"))
	if siteBaseURL == "" {
		siteBaseURL = fmt.Sprintf("http://localhost:%s", port)
	}

	adminUserName := strings.TrimSpace(os.Getenv("ADMIN_USER_NAME"))
	adminPassword := strings.TrimSpace(os.Getenv("ADMIN_PASSWORD"))

	return AppConfig{
		ListenAddr:    listenAddr,
		Port:          port,
		DatabaseURL:   databaseURL,
		DatabasePath:  databasePath,
		SessionSecret: sessionSecret,
		GinMode:       ginMode,
		UploadDir:     uploadDir,
		UploadURLPath: uploadURLPath,
		BackupDir:     backupDir,
		TemplateGlob:  templateGlob,
		AdminUserName: adminUserName,
		AdminPassword: adminPassword,
		SiteBaseURL:   siteBaseURL,
	}
}
