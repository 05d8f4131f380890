package handler

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// 上传头像的最长边，超过时保持纵横比缩小。
const maxPhotoDimension = 1024

// UploadPhoto 处理头像上传请求：校验类型、生成唯一文件名、
// 落盘后按需缩小到可接受的尺寸。
func (a *API) UploadPhoto(c *gin.Context) {
	file, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未找到上传的图片"})
		return
	}

	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "只允许上传图片文件"})
		return
	}

	if err := os.MkdirAll(a.uploadDir, 0755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "创建上传目录失败"})
		return
	}

	// 生成唯一文件名
	ext := filepath.Ext(file.Filename)
	newFilename := fmt.Sprintf("%s-%s%s", time.Now().Format("20060102"), uuid.New().String(), ext)
	filePath := filepath.Join(a.uploadDir, newFilename)

	if err := c.SaveUploadedFile(file, filePath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存文件失败"})
		return
	}

	// SVG 等矢量格式跳过缩放，位图超出尺寸时压到上限以内
	if ext != ".svg" {
		if err := shrinkPhoto(filePath); err != nil {
			c.Error(err)
		}
	}

	fileURL := fmt.Sprintf("%s/%s", strings.TrimRight(a.uploadURL, "/"), newFilename)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"url":     fileURL,
	})
}

func shrinkPhoto(path string) error {
	img, err := imaging.Open(path)
	if err != nil {
		return fmt.Errorf("open uploaded photo: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() <= maxPhotoDimension && bounds.Dy() <= maxPhotoDimension {
		return nil
	}

	resized := imaging.Fit(img, maxPhotoDimension, maxPhotoDimension, imaging.Lanczos)
	if err := imaging.Save(resized, path); err != nil {
		return fmt.Errorf("save resized photo: %w", err)
	}
	return nil
}
