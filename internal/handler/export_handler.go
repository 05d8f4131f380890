package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// QRImage 以内联 PNG 返回主页二维码。
// 二维码只编码公开地址，不包含资料内容，因此不受密码保护限制。
func (a *API) QRImage(c *gin.Context) {
	a.serveQR(c, false)
}

// QRDownload 以附件形式返回主页二维码
func (a *API) QRDownload(c *gin.Context) {
	a.serveQR(c, true)
}

func (a *API) serveQR(c *gin.Context, download bool) {
	profile, err := a.profiles.GetBySlug(c.Param("slug"))
	if err != nil {
		respondError(c, http.StatusNotFound, "主页不存在")
		return
	}

	size, _ := strconv.Atoi(c.DefaultQuery("size", "256"))
	png, err := a.exports.QRCode(profile, size)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "生成二维码失败")
		return
	}

	if download {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s-qr.png", profile.Slug))
	}
	c.Data(http.StatusOK, "image/png", png)
}

// VCardDownload 以 .vcf 附件返回联系人名片。
// 名片包含资料内容，受保护且未解锁的主页返回 404，不泄露存在的细节。
func (a *API) VCardDownload(c *gin.Context) {
	profile, err := a.profiles.GetBySlug(c.Param("slug"))
	if err != nil {
		respondError(c, http.StatusNotFound, "主页不存在")
		return
	}
	if profile.Protected && !a.isUnlocked(c, profile.Slug) {
		respondError(c, http.StatusNotFound, "主页不存在")
		return
	}

	card, err := a.exports.VCard(profile)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "生成名片失败")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.vcf", profile.Slug))
	c.Data(http.StatusOK, "text/vcard; charset=utf-8", card)
}

// PDFDownload 以 .pdf 附件返回一页式主页摘要，渲染失败时降级为错误提示
func (a *API) PDFDownload(c *gin.Context) {
	profile, err := a.profiles.GetBySlug(c.Param("slug"))
	if err != nil {
		respondError(c, http.StatusNotFound, "主页不存在")
		return
	}
	if profile.Protected && !a.isUnlocked(c, profile.Slug) {
		respondError(c, http.StatusNotFound, "主页不存在")
		return
	}

	links, err := a.links.ListByProfile(profile.ID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取链接失败")
		return
	}

	pdf, err := a.exports.PDF(profile, links)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "PDF 生成失败，请稍后重试")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", profile.Slug))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
