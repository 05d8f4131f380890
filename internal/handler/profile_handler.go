package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/linkfolio/internal/service"
	"github.com/linkfolio/internal/view"
)

type profilePayload struct {
	Name            string `json:"name"`
	Title           string `json:"title"`
	Biography       string `json:"biography"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	PhotoURL        string `json:"photo_url"`
	PhotoPosX       *int   `json:"photo_pos_x"`
	PhotoPosY       *int   `json:"photo_pos_y"`
	ColorPrimary    string `json:"color_primary"`
	ColorBackground string `json:"color_background"`
	ColorHeading    string `json:"color_heading"`
	ColorBio        string `json:"color_bio"`
	Theme           string `json:"theme"`
	Layout          string `json:"layout"`
	Template        string `json:"template"`
	WebhookURL      string `json:"webhook_url"`
}

func (p profilePayload) toInput() service.ProfileInput {
	return service.ProfileInput{
		Name:            p.Name,
		Title:           p.Title,
		Biography:       p.Biography,
		Email:           p.Email,
		Phone:           p.Phone,
		PhotoURL:        p.PhotoURL,
		PhotoPosX:       p.PhotoPosX,
		PhotoPosY:       p.PhotoPosY,
		ColorPrimary:    p.ColorPrimary,
		ColorBackground: p.ColorBackground,
		ColorHeading:    p.ColorHeading,
		ColorBio:        p.ColorBio,
		Theme:           p.Theme,
		Layout:          p.Layout,
		Template:        p.Template,
		WebhookURL:      p.WebhookURL,
	}
}

// ShowProfileList 渲染后台的主页列表
func (a *API) ShowProfileList(c *gin.Context) {
	profiles, err := a.profiles.List()
	if err != nil {
		c.HTML(http.StatusInternalServerError, "profiles.html", gin.H{"error": "获取主页列表失败"})
		return
	}

	c.HTML(http.StatusOK, "profiles.html", gin.H{
		"title":    "主页管理",
		"profiles": profiles,
	})
}

// ShowProfileEdit 渲染主页编辑表单。
// 路径参数为 new 时先用随机 slug 建档再跳转到编辑页，沿用首次访问即建档的语义。
func (a *API) ShowProfileEdit(c *gin.Context) {
	slug := c.Param("slug")
	if slug == "new" {
		profile, err := a.profiles.GetOrCreate(service.RandomSlug("profile"))
		if err != nil {
			c.HTML(http.StatusInternalServerError, "profiles.html", gin.H{"error": "创建主页失败"})
			return
		}
		a.webhooks.Notify(profile, service.EventProfileCreated, nil)
		c.Redirect(http.StatusFound, "/admin/profiles/"+profile.Slug+"/edit")
		return
	}

	profile, err := a.profiles.GetBySlug(slug)
	if err != nil {
		c.HTML(http.StatusNotFound, "profiles.html", gin.H{"error": "主页不存在"})
		return
	}

	links, err := a.links.ListByProfile(profile.ID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "profiles.html", gin.H{"error": "获取链接失败"})
		return
	}

	c.HTML(http.StatusOK, "profile_edit.html", gin.H{
		"title":       "编辑主页",
		"profile":     profile,
		"links":       links,
		"iconOptions": view.LinkIconOptions(),
	})
}

// GetProfiles 返回全部主页
func (a *API) GetProfiles(c *gin.Context) {
	profiles, err := a.profiles.List()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取主页列表失败")
		return
	}
	c.JSON(http.StatusOK, profiles)
}

// GetProfile 返回单个主页及其链接
func (a *API) GetProfile(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	profile, err := a.profiles.Get(id)
	if err != nil {
		respondError(c, http.StatusNotFound, "主页不存在")
		return
	}

	links, err := a.links.ListByProfile(profile.ID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取链接失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile, "links": links})
}

// CreateProfile 新建主页，slug 由名称派生
func (a *API) CreateProfile(c *gin.Context) {
	var payload profilePayload
	if !bindJSON(c, &payload, "请求格式错误") {
		return
	}

	profile, err := a.profiles.Create(payload.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSlugConflict):
			respondError(c, http.StatusConflict, "该名称对应的地址已被占用")
		case errors.Is(err, service.ErrProfileInvalidInput):
			respondError(c, http.StatusBadRequest, err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "创建主页失败")
		}
		return
	}

	a.webhooks.Notify(profile, service.EventProfileCreated, gin.H{"name": profile.Name})
	c.JSON(http.StatusCreated, profile)
}

// UpdateProfile 更新主页资料；改名引发的 slug 冲突会以 409 上报而不是静默保留旧值
func (a *API) UpdateProfile(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var payload profilePayload
	if !bindJSON(c, &payload, "请求格式错误") {
		return
	}

	profile, err := a.profiles.Update(id, payload.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProfileNotFound):
			respondError(c, http.StatusNotFound, "主页不存在")
		case errors.Is(err, service.ErrSlugConflict):
			respondError(c, http.StatusConflict, "该名称对应的地址已被占用")
		case errors.Is(err, service.ErrProfileInvalidInput):
			respondError(c, http.StatusBadRequest, err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "更新主页失败")
		}
		return
	}

	// 保存成功后落盘快照并发送通知，两者失败都不回滚已提交的更新
	if links, linksErr := a.links.ListByProfile(profile.ID); linksErr == nil {
		if _, backupErr := a.backups.Snapshot(profile, links); backupErr != nil {
			c.Error(backupErr)
		}
	}
	a.webhooks.Notify(profile, service.EventProfileUpdated, gin.H{"name": profile.Name})

	c.JSON(http.StatusOK, profile)
}

// DeleteProfile 删除主页并级联清理链接与统计事件
func (a *API) DeleteProfile(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	profile, err := a.profiles.Get(id)
	if err != nil {
		respondError(c, http.StatusNotFound, "主页不存在")
		return
	}

	if err := a.profiles.Delete(id); err != nil {
		respondError(c, http.StatusInternalServerError, "删除主页失败")
		return
	}

	a.webhooks.Notify(profile, service.EventProfileDeleted, nil)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type passwordPayload struct {
	Password string `json:"password"`
}

// SetProfilePassword 设置访问密码并打开保护开关
func (a *API) SetProfilePassword(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var payload passwordPayload
	if !bindJSON(c, &payload, "请求格式错误") {
		return
	}

	if err := a.profiles.SetPassword(id, payload.Password); err != nil {
		switch {
		case errors.Is(err, service.ErrProfileNotFound):
			respondError(c, http.StatusNotFound, "主页不存在")
		case errors.Is(err, service.ErrProfileInvalidInput):
			respondError(c, http.StatusBadRequest, err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "设置密码失败")
		}
		return
	}

	if profile, getErr := a.profiles.Get(id); getErr == nil {
		a.webhooks.Notify(profile, service.EventSettingsUpdated, gin.H{"protected": true})
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RemoveProfilePassword 清除访问密码并关闭保护开关
func (a *API) RemoveProfilePassword(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.profiles.RemovePassword(id); err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			respondError(c, http.StatusNotFound, "主页不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "清除密码失败")
		return
	}

	if profile, getErr := a.profiles.Get(id); getErr == nil {
		a.webhooks.Notify(profile, service.EventSettingsUpdated, gin.H{"protected": false})
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetProfileStats 返回主页的累计浏览、近 7 天浏览与 8 天日直方图
func (a *API) GetProfileStats(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	profile, err := a.profiles.Get(id)
	if err != nil {
		respondError(c, http.StatusNotFound, "主页不存在")
		return
	}

	stats, err := a.analytics.ProfileStats(profile.ID, 7, time.Now())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取统计数据失败")
		return
	}

	histogram := make([]gin.H, 0, len(stats.Histogram))
	for _, bucket := range stats.Histogram {
		histogram = append(histogram, gin.H{
			"day":   bucket.Day.Format("2006-01-02"),
			"count": bucket.Count,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"total_views":   stats.TotalViews,
		"rolling_views": stats.RollingViews,
		"histogram":     histogram,
	})
}
