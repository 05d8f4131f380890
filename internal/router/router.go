package router

import (
	"html/template"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/linkfolio/internal/config"
	"github.com/linkfolio/internal/db"
	"github.com/linkfolio/internal/handler"
	"github.com/linkfolio/internal/view"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(cfg config.AppConfig) *gin.Engine {
	r := gin.Default()

	// 配置会话中间件，后台登录态与访客的主页解锁态都存在这里
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("linkfolio_session", store))

	// 加载模板并添加自定义函数
	r.SetFuncMap(template.FuncMap{
		"icon": func(category string) template.HTML {
			return template.HTML(view.LinkIconSVG(category))
		},
		"add": func(a, b int) int {
			return a + b
		},
	})
	if cfg.TemplateGlob != "" {
		r.LoadHTMLGlob(cfg.TemplateGlob)
	}

	// 静态文件服务
	r.Static("/static", "./web/static")
	if cfg.UploadDir != "" && cfg.UploadURLPath != "" {
		r.Static(cfg.UploadURLPath, cfg.UploadDir)
	}

	api := handler.NewAPI(db.DB, cfg)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// 公开访问路由
	r.GET("/p/:slug", api.ShowProfile)
	r.GET("/p/:slug/unlock", api.ShowUnlock)
	r.POST("/p/:slug/unlock", api.Unlock)
	r.GET("/click/:id", api.ClickLink)
	r.GET("/qr/:slug", api.QRImage)
	r.GET("/qr/:slug/download", api.QRDownload)
	r.GET("/vcard/:slug", api.VCardDownload)
	r.GET("/pdf/:slug", api.PDFDownload)

	// 后台管理路由
	admin := r.Group("/admin")
	{
		admin.GET("/login", api.ShowLoginPage)
		admin.POST("/login", api.Login)
		admin.GET("/logout", api.Logout)

		// 需要认证的后台路由
		auth := admin.Group("")
		auth.Use(handler.AuthRequired())
		{
			auth.GET("/dashboard", api.ShowDashboard)
			auth.GET("/profiles", api.ShowProfileList)
			auth.GET("/profiles/:slug/edit", api.ShowProfileEdit)

			// API路由
			jsonAPI := auth.Group("/api")
			{
				jsonAPI.GET("/profiles", api.GetProfiles)
				jsonAPI.POST("/profiles", api.CreateProfile)
				jsonAPI.GET("/profiles/:id", api.GetProfile)
				jsonAPI.PUT("/profiles/:id", api.UpdateProfile)
				jsonAPI.DELETE("/profiles/:id", api.DeleteProfile)
				jsonAPI.PUT("/profiles/:id/password", api.SetProfilePassword)
				jsonAPI.DELETE("/profiles/:id/password", api.RemoveProfilePassword)
				jsonAPI.GET("/profiles/:id/stats", api.GetProfileStats)

				jsonAPI.GET("/profiles/:id/links", api.GetLinks)
				jsonAPI.POST("/profiles/:id/links", api.CreateLink)
				jsonAPI.POST("/profiles/:id/links/reorder", api.ReorderLinks)
				jsonAPI.PUT("/links/:id", api.UpdateLink)
				jsonAPI.DELETE("/links/:id", api.DeleteLink)

				jsonAPI.POST("/upload", api.UploadPhoto)
			}
		}
	}

	return r
}
