package handler

import (
	"github.com/linkfolio/internal/config"
	"github.com/linkfolio/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db        *gorm.DB
	profiles  *service.ProfileService
	links     *service.LinkService
	analytics *service.AnalyticsService
	exports   *service.ExportService
	backups   *service.BackupService
	webhooks  *service.WebhookNotifier
	uploadDir string
	uploadURL string
	baseURL   string
}

// NewAPI constructs a handler set with shared services.
func NewAPI(db *gorm.DB, cfg config.AppConfig) *API {
	return &API{
		db:        db,
		profiles:  service.NewProfileService(db),
		links:     service.NewLinkService(db),
		analytics: service.NewAnalyticsService(db),
		exports:   service.NewExportService(cfg.SiteBaseURL),
		backups:   service.NewBackupService(cfg.BackupDir),
		webhooks:  service.NewWebhookNotifier(),
		uploadDir: cfg.UploadDir,
		uploadURL: cfg.UploadURLPath,
		baseURL:   cfg.SiteBaseURL,
	}
}
