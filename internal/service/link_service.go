package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/linkfolio/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrLinkNotFound 在指定链接不存在时返回
	ErrLinkNotFound = errors.New("link not found")
	// ErrLinkInvalidInput 在输入数据不完整时返回
	ErrLinkInvalidInput = errors.New("invalid link input")
	// ErrInvalidOrder 在重排序列不是主页链接集合的完整排列时返回
	ErrInvalidOrder = errors.New("invalid link order")
)

// LinkService 维护主页外链的增删改查与排序
// Position 在同一主页内始终保持 0..n-1 的密集排名

type LinkService struct {
	db *gorm.DB
}

// NewLinkService 构造 LinkService
func NewLinkService(gdb *gorm.DB) *LinkService {
	return &LinkService{db: gdb}
}

// LinkInput 描述创建或更新链接时可设置的字段

type LinkInput struct {
	Category string
	Name     string
	URL      string
}

// ListByProfile 返回主页的全部链接，按排名升序
func (s *LinkService) ListByProfile(profileID uint) ([]db.Link, error) {
	var links []db.Link
	if err := s.db.Where("profile_id = ?", profileID).
		Order("position ASC, id ASC").
		Find(&links).Error; err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	return links, nil
}

// Get 根据主键获取链接
func (s *LinkService) Get(id uint) (*db.Link, error) {
	var link db.Link
	if err := s.db.First(&link, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("get link: %w", err)
	}
	return &link, nil
}

// Add 在主页末尾追加一条链接，排名取当前链接数，保证稳定追加语义
func (s *LinkService) Add(profileID uint, input LinkInput) (*db.Link, error) {
	if err := validateLinkInput(input); err != nil {
		return nil, err
	}

	var link db.Link
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&db.Link{}).Where("profile_id = ?", profileID).Count(&count).Error; err != nil {
			return fmt.Errorf("count links: %w", err)
		}

		link = db.Link{
			ProfileID: profileID,
			Category:  strings.TrimSpace(input.Category),
			Name:      strings.TrimSpace(input.Name),
			URL:       NormalizeURL(input.URL),
			Position:  int(count),
		}
		if err := tx.Create(&link).Error; err != nil {
			return fmt.Errorf("create link: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// Update 更新链接的分类、名称与地址，地址会被重新规范化
func (s *LinkService) Update(id uint, input LinkInput) (*db.Link, error) {
	if err := validateLinkInput(input); err != nil {
		return nil, err
	}

	var link db.Link
	if err := s.db.First(&link, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("find link: %w", err)
	}

	link.Category = strings.TrimSpace(input.Category)
	link.Name = strings.TrimSpace(input.Name)
	link.URL = NormalizeURL(input.URL)

	if err := s.db.Save(&link).Error; err != nil {
		return nil, fmt.Errorf("update link: %w", err)
	}
	return &link, nil
}

// Delete 删除链接并在同一事务内重排幸存链接，消除排名空洞
func (s *LinkService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var link db.Link
		if err := tx.First(&link, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLinkNotFound
			}
			return fmt.Errorf("find link: %w", err)
		}

		if err := tx.Delete(&link).Error; err != nil {
			return fmt.Errorf("delete link: %w", err)
		}

		var survivors []db.Link
		if err := tx.Where("profile_id = ?", link.ProfileID).
			Order("position ASC, id ASC").
			Find(&survivors).Error; err != nil {
			return fmt.Errorf("list surviving links: %w", err)
		}

		for index, survivor := range survivors {
			if survivor.Position == index {
				continue
			}
			if err := tx.Model(&db.Link{}).Where("id = ?", survivor.ID).
				Update("position", index).Error; err != nil {
				return fmt.Errorf("renumber links: %w", err)
			}
		}
		return nil
	})
}

// Reorder 按给定顺序重排主页链接，依次赋值 0,1,2...
// ids 必须恰好是该主页链接集合的一个完整排列，包含外部或缺失的 ID 时整体拒绝
func (s *LinkService) Reorder(profileID uint, ids []uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var links []db.Link
		if err := tx.Where("profile_id = ?", profileID).Find(&links).Error; err != nil {
			return fmt.Errorf("list links: %w", err)
		}

		if len(ids) != len(links) {
			return fmt.Errorf("%w: expected %d ids, got %d", ErrInvalidOrder, len(links), len(ids))
		}

		owned := make(map[uint]bool, len(links))
		for _, link := range links {
			owned[link.ID] = true
		}

		seen := make(map[uint]bool, len(ids))
		for _, id := range ids {
			if !owned[id] {
				return fmt.Errorf("%w: link %d does not belong to profile %d", ErrInvalidOrder, id, profileID)
			}
			if seen[id] {
				return fmt.Errorf("%w: duplicate link %d", ErrInvalidOrder, id)
			}
			seen[id] = true
		}

		for index, id := range ids {
			if err := tx.Model(&db.Link{}).Where("id = ?", id).
				Update("position", index).Error; err != nil {
				return fmt.Errorf("reorder links: %w", err)
			}
		}
		return nil
	})
}

// NormalizeURL 保证被接受的地址带有显式协议：
// mailto:/tel: 与已有 http(s):// 的地址原样通过，其余补上 https:// 前缀。
func NormalizeURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	lowered := strings.ToLower(trimmed)
	switch {
	case strings.HasPrefix(lowered, "http://"), strings.HasPrefix(lowered, "https://"):
		return trimmed
	case strings.HasPrefix(lowered, "mailto:"), strings.HasPrefix(lowered, "tel:"):
		return trimmed
	}

	return "https://" + trimmed
}

func validateLinkInput(input LinkInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrLinkInvalidInput)
	}
	if strings.TrimSpace(input.URL) == "" {
		return fmt.Errorf("%w: url is required", ErrLinkInvalidInput)
	}
	if strings.TrimSpace(input.Category) == "" {
		return fmt.Errorf("%w: category is required", ErrLinkInvalidInput)
	}
	return nil
}
