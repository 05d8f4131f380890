package main

import (
	"fmt"
	"log"

	"github.com/linkfolio/internal/config"
	"github.com/linkfolio/internal/db"
	"github.com/linkfolio/internal/service"
)

// 测试数据生成器
func main() {
	cfg := config.Load()
	if err := db.Init(cfg.DatabaseURL, cfg.DatabasePath); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	fmt.Println("开始生成测试数据...")

	createAdminUser(cfg)
	createDemoProfiles()

	fmt.Println("测试数据生成完成！")
	fmt.Printf("后台用户: %s\n", cfg.AdminUserName)
	fmt.Println("演示主页: /p/jane-doe 与 /p/john-roe")
}

// 创建管理员用户
func createAdminUser(cfg config.AppConfig) {
	var count int64
	db.DB.Model(&db.User{}).Count(&count)
	if count > 0 {
		fmt.Println("用户已存在，跳过创建")
		return
	}

	if err := db.EnsureUser(cfg.AdminUserName, cfg.AdminPassword); err != nil {
		log.Printf("创建管理员失败: %v", err)
		return
	}

	fmt.Println("✅ 管理员用户创建完成")
}

// 创建演示主页及链接
func createDemoProfiles() {
	var count int64
	db.DB.Model(&db.Profile{}).Count(&count)
	if count > 0 {
		fmt.Println("主页已存在，跳过创建")
		return
	}

	profiles := service.NewProfileService(db.DB)
	links := service.NewLinkService(db.DB)

	demos := []struct {
		input service.ProfileInput
		links []service.LinkInput
	}{
		{
			input: service.ProfileInput{
				Name:      "Jane Doe",
				Title:     "Software Engineer",
				Biography: "## 你好\n\n我用 Go 构建后端服务，偶尔写点前端。",
				Email:     "jane@example.com",
				Phone:     "+8613800000000",
			},
			links: []service.LinkInput{
				{Category: "linkedin", Name: "LinkedIn", URL: "linkedin.com/in/jane-doe"},
				{Category: "youtube", Name: "YouTube 频道", URL: "youtube.com/@janedoe"},
				{Category: "email", Name: "写邮件给我", URL: "mailto:jane@example.com"},
			},
		},
		{
			input: service.ProfileInput{
				Name:      "John Roe",
				Title:     "Product Designer",
				Biography: "设计即沟通。",
				Email:     "john@example.com",
			},
			links: []service.LinkInput{
				{Category: "instagram", Name: "Instagram", URL: "instagram.com/johnroe"},
				{Category: "x", Name: "X", URL: "x.com/johnroe"},
			},
		},
	}

	for _, demo := range demos {
		profile, err := profiles.Create(demo.input)
		if err != nil {
			log.Printf("创建主页 %s 失败: %v", demo.input.Name, err)
			continue
		}
		for _, linkInput := range demo.links {
			if _, err := links.Add(profile.ID, linkInput); err != nil {
				log.Printf("创建链接 %s 失败: %v", linkInput.Name, err)
			}
		}
	}

	fmt.Println("✅ 演示主页创建完成")
}
