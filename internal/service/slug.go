package service

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	slugStripPattern    = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugCollapsePattern = regexp.MustCompile(`\s+`)
)

// Slugify 把展示名称转换为 URL 安全的短标识：小写化、去掉非法字符、
// 空白折叠为连字符。输入为空或清洗后为空时生成 default-<随机8位> 兜底，
// 保证结果非空且只包含 [a-z0-9-]。
func Slugify(name string) string {
	lowered := strings.ToLower(strings.TrimSpace(name))
	if lowered == "" {
		return fallbackSlug()
	}

	cleaned := slugStripPattern.ReplaceAllString(lowered, "")
	cleaned = slugCollapsePattern.ReplaceAllString(strings.TrimSpace(cleaned), "-")
	cleaned = strings.Trim(cleaned, "-")
	if cleaned == "" {
		return fallbackSlug()
	}

	return cleaned
}

// RandomSlug 生成 prefix-<随机8位> 形式的唯一标识，用于新建主页的临时 slug。
func RandomSlug(prefix string) string {
	if strings.TrimSpace(prefix) == "" {
		prefix = "profile"
	}
	return prefix + "-" + randomSuffix()
}

func fallbackSlug() string {
	return "default-" + randomSuffix()
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}
