package handler

import (
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/linkfolio/internal/db"
	"golang.org/x/crypto/bcrypt"
)

// ShowLoginPage 渲染登录页面
func (a *API) ShowLoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{
		"title": "管理员登录",
	})
}

// Login 处理管理员登录请求
func (a *API) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	user, err := db.FindUserByUsername(username)
	if err != nil {
		c.HTML(http.StatusUnauthorized, "login.html", gin.H{"error": "用户名或密码错误"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		c.HTML(http.StatusUnauthorized, "login.html", gin.H{"error": "用户名或密码错误"})
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Set("username", user.Username)
	if err := session.Save(); err != nil {
		c.HTML(http.StatusInternalServerError, "login.html", gin.H{"error": "会话保存失败"})
		return
	}

	c.Redirect(http.StatusFound, "/admin/dashboard")
}

// Logout 处理管理员登出
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.Redirect(http.StatusFound, "/admin/login")
}

// ShowDashboard 渲染后台主面板，汇总主页与链接数量及近 7 天浏览走势
func (a *API) ShowDashboard(c *gin.Context) {
	session := sessions.Default(c)
	username := session.Get("username")

	var profileCount int64
	a.db.Model(&db.Profile{}).Count(&profileCount)

	var linkCount int64
	a.db.Model(&db.Link{}).Count(&linkCount)

	var viewCount int64
	a.db.Model(&db.AnalyticsEvent{}).Where("kind = ?", db.EventKindView).Count(&viewCount)

	var clickCount int64
	a.db.Model(&db.AnalyticsEvent{}).Where("kind = ?", db.EventKindClick).Count(&clickCount)

	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"title":        "管理面板",
		"username":     username,
		"profileCount": profileCount,
		"linkCount":    linkCount,
		"viewCount":    viewCount,
		"clickCount":   clickCount,
		"year":         time.Now().Year(),
	})
}

// AuthRequired 是一个简单的认证中间件
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID := session.Get("user_id")
		if userID == nil {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}
