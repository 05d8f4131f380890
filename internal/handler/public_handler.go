package handler

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/linkfolio/internal/service"
	"github.com/linkfolio/internal/view"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

// publicLink 是公开页上渲染一条外链所需的数据。
type publicLink struct {
	ID       uint
	Name     string
	URL      string
	Category string
	Icon     template.HTML
}

// ShowProfile 渲染公开主页。受保护且未解锁时只展示解锁入口，
// 不渲染任何资料内容，也不记录浏览。
func (a *API) ShowProfile(c *gin.Context) {
	slug := c.Param("slug")

	profile, err := a.profiles.GetBySlug(slug)
	if err != nil {
		c.HTML(http.StatusNotFound, "not_found.html", gin.H{"title": "页面不存在"})
		return
	}

	if profile.Protected && !a.isUnlocked(c, profile.Slug) {
		c.HTML(http.StatusOK, "profile_locked.html", gin.H{
			"title": "受保护的主页",
			"slug":  profile.Slug,
		})
		return
	}

	links, err := a.links.ListByProfile(profile.ID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "not_found.html", gin.H{"title": "加载失败"})
		return
	}

	clientIP, userAgent := clientIdentity(c)
	if err := a.analytics.RecordView(profile.ID, clientIP, userAgent, time.Now()); err != nil {
		c.Error(err)
	}

	rendered := make([]publicLink, 0, len(links))
	for _, link := range links {
		rendered = append(rendered, publicLink{
			ID:       link.ID,
			Name:     link.Name,
			URL:      link.URL,
			Category: link.Category,
			Icon:     template.HTML(view.LinkIconSVG(link.Category)),
		})
	}

	c.HTML(http.StatusOK, "profile.html", gin.H{
		"title":   profile.Name,
		"profile": profile,
		"bio":     renderMarkdown(profile.Biography),
		"links":   rendered,
	})
}

// ShowUnlock 渲染密码输入页
func (a *API) ShowUnlock(c *gin.Context) {
	slug := c.Param("slug")

	profile, err := a.profiles.GetBySlug(slug)
	if err != nil {
		c.HTML(http.StatusNotFound, "not_found.html", gin.H{"title": "页面不存在"})
		return
	}
	if !profile.Protected {
		c.Redirect(http.StatusFound, "/p/"+profile.Slug)
		return
	}

	c.HTML(http.StatusOK, "unlock.html", gin.H{
		"title": "输入密码",
		"slug":  profile.Slug,
	})
}

// Unlock 校验访客提交的密码。成功后把解锁标记写入访客会话并跳回主页，
// 浏览计数由跳转后的访问记录。
func (a *API) Unlock(c *gin.Context) {
	slug := c.Param("slug")

	profile, err := a.profiles.GetBySlug(slug)
	if err != nil {
		c.HTML(http.StatusNotFound, "not_found.html", gin.H{"title": "页面不存在"})
		return
	}

	if err := a.profiles.Unlock(profile, c.PostForm("password")); err != nil {
		if errors.Is(err, service.ErrPasswordMismatch) {
			c.HTML(http.StatusUnauthorized, "unlock.html", gin.H{
				"title": "输入密码",
				"slug":  profile.Slug,
				"error": "密码错误",
			})
			return
		}
		c.HTML(http.StatusInternalServerError, "unlock.html", gin.H{
			"title": "输入密码",
			"slug":  profile.Slug,
			"error": "解锁失败",
		})
		return
	}

	session := sessions.Default(c)
	session.Set(unlockSessionKey(profile.Slug), true)
	if err := session.Save(); err != nil {
		c.Error(err)
	}

	c.Redirect(http.StatusFound, "/p/"+profile.Slug)
}

// ClickLink 记录一次点击并跳转到目标地址
func (a *API) ClickLink(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	clientIP, userAgent := clientIdentity(c)
	link, err := a.analytics.RecordClick(id, clientIP, userAgent, time.Now())
	if err != nil {
		if errors.Is(err, service.ErrLinkNotFound) {
			respondError(c, http.StatusNotFound, "链接不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "记录点击失败")
		return
	}

	if profile, getErr := a.profiles.Get(link.ProfileID); getErr == nil {
		a.webhooks.Notify(profile, service.EventLinkClicked, gin.H{"link_id": link.ID, "name": link.Name})
	}

	c.Redirect(http.StatusFound, link.URL)
}

// isUnlocked 检查当前访客会话是否已解锁指定主页。
// 解锁状态按会话和主页两级隔离，不存在全局解锁。
func (a *API) isUnlocked(c *gin.Context, slug string) bool {
	session := sessions.Default(c)
	unlocked, ok := session.Get(unlockSessionKey(slug)).(bool)
	return ok && unlocked
}

func unlockSessionKey(slug string) string {
	return "unlocked:" + slug
}

func renderMarkdown(source string) template.HTML {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(source), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(source))
	}
	return template.HTML(sanitizer.SanitizeBytes(buf.Bytes()))
}
