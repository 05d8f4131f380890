package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/linkfolio/internal/config"
	"github.com/linkfolio/internal/db"
	"github.com/linkfolio/internal/router"
)

func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	if err := db.Init(cfg.DatabaseURL, cfg.DatabasePath); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// 根据环境变量引导管理员账号
	if err := db.EnsureUser(cfg.AdminUserName, cfg.AdminPassword); err != nil {
		log.Fatalf("failed to ensure admin user: %v", err)
	}

	// 设置并运行 Gin 服务器
	r := router.SetupRouter(cfg)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
