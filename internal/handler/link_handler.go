package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/linkfolio/internal/service"
)

type linkPayload struct {
	Category string `json:"category"`
	Name     string `json:"name"`
	URL      string `json:"url"`
}

type reorderPayload struct {
	LinkIDs []uint `json:"link_ids"`
}

// GetLinks 返回主页的链接列表，按排名升序
func (a *API) GetLinks(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := a.profiles.Get(id); err != nil {
		respondError(c, http.StatusNotFound, "主页不存在")
		return
	}

	links, err := a.links.ListByProfile(id)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取链接失败")
		return
	}
	c.JSON(http.StatusOK, links)
}

// CreateLink 在主页末尾追加一条链接
func (a *API) CreateLink(c *gin.Context) {
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

	var payload linkPayload
	if !bindJSON(c, &payload, "请求格式错误") {
		return
	}

	link, err := a.links.Add(profile.ID, service.LinkInput{
		Category: payload.Category,
		Name:     payload.Name,
		URL:      payload.URL,
	})
	if err != nil {
		if errors.Is(err, service.ErrLinkInvalidInput) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "创建链接失败")
		return
	}

	a.webhooks.Notify(profile, service.EventLinkAdded, gin.H{"link_id": link.ID, "name": link.Name})
	c.JSON(http.StatusCreated, link)
}

// UpdateLink 更新链接的分类、名称与地址
func (a *API) UpdateLink(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var payload linkPayload
	if !bindJSON(c, &payload, "请求格式错误") {
		return
	}

	link, err := a.links.Update(id, service.LinkInput{
		Category: payload.Category,
		Name:     payload.Name,
		URL:      payload.URL,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLinkNotFound):
			respondError(c, http.StatusNotFound, "链接不存在")
		case errors.Is(err, service.ErrLinkInvalidInput):
			respondError(c, http.StatusBadRequest, err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "更新链接失败")
		}
		return
	}

	if profile, getErr := a.profiles.Get(link.ProfileID); getErr == nil {
		a.webhooks.Notify(profile, service.EventLinkUpdated, gin.H{"link_id": link.ID, "name": link.Name})
	}
	c.JSON(http.StatusOK, link)
}

// DeleteLink 删除链接并重排幸存链接，保持排名密集
func (a *API) DeleteLink(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	link, err := a.links.Get(id)
	if err != nil {
		respondError(c, http.StatusNotFound, "链接不存在")
		return
	}

	if err := a.links.Delete(id); err != nil {
		respondError(c, http.StatusInternalServerError, "删除链接失败")
		return
	}

	if profile, getErr := a.profiles.Get(link.ProfileID); getErr == nil {
		a.webhooks.Notify(profile, service.EventLinkDeleted, gin.H{"link_id": link.ID, "name": link.Name})
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ReorderLinks 按提交顺序重排主页链接。
// 请求体为 {"link_ids": [...]}，必须是该主页链接集合的完整排列。
func (a *API) ReorderLinks(c *gin.Context) {
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

	var payload reorderPayload
	if !bindJSON(c, &payload, "请求格式错误") {
		return
	}

	if err := a.links.Reorder(profile.ID, payload.LinkIDs); err != nil {
		if errors.Is(err, service.ErrInvalidOrder) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "重排链接失败")
		return
	}

	a.webhooks.Notify(profile, service.EventLinksReordered, gin.H{"link_ids": payload.LinkIDs})
	c.JSON(http.StatusOK, gin.H{"success": true})
}
