package handler

import (
	"html/template"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/linkfolio/internal/config"
	"github.com/linkfolio/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) (*API, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if err := gdb.AutoMigrate(&db.User{}, &db.Profile{}, &db.Link{}, &db.AnalyticsEvent{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	db.DB = gdb

	api := NewAPI(gdb, config.AppConfig{
		SiteBaseURL:   "http://localhost:8080",
		UploadDir:     t.TempDir(),
		UploadURLPath: "/static/uploads",
		BackupDir:     t.TempDir(),
	})

	cleanup := func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
	return api, cleanup
}

// newPublicTestEngine 挂载公开路由，带会话中间件与桩模板，
// 用于覆盖需要完整请求链路的场景（解锁、浏览计数）。
func newPublicTestEngine(api *API) *gin.Engine {
	r := gin.New()
	store := cookie.NewStore([]byte("test-secret"))
	r.Use(sessions.Sessions("test_session", store))

	tmpl := template.New("root")
	for _, name := range []string{"profile.html", "profile_locked.html", "unlock.html", "not_found.html"} {
		template.Must(tmpl.New(name).Parse(`{{ .title }}`))
	}
	r.SetHTMLTemplate(tmpl)

	r.GET("/p/:slug", api.ShowProfile)
	r.GET("/p/:slug/unlock", api.ShowUnlock)
	r.POST("/p/:slug/unlock", api.Unlock)
	r.GET("/click/:id", api.ClickLink)
	r.GET("/vcard/:slug", api.VCardDownload)
	return r
}

func seedTestProfile(t *testing.T, slug string) *db.Profile {
	t.Helper()

	profile := db.Profile{Slug: slug, Name: slug}
	if err := db.DB.Create(&profile).Error; err != nil {
		t.Fatalf("failed to seed profile: %v", err)
	}
	return &profile
}

func seedTestLink(t *testing.T, profileID uint, name string, position int) *db.Link {
	t.Helper()

	link := db.Link{ProfileID: profileID, Category: "other", Name: name, URL: "https://example.com/" + name, Position: position}
	if err := db.DB.Create(&link).Error; err != nil {
		t.Fatalf("failed to seed link: %v", err)
	}
	return &link
}
