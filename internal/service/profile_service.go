package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/linkfolio/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	// ErrProfileNotFound 在指定主页不存在时返回
	ErrProfileNotFound = errors.New("profile not found")
	// ErrProfileInvalidInput 在输入数据不合法时返回
	ErrProfileInvalidInput = errors.New("invalid profile input")
	// ErrSlugConflict 在改名得到的 slug 已被其他主页占用时返回
	ErrSlugConflict = errors.New("slug already taken")
	// ErrPasswordMismatch 在解锁密码不匹配时返回
	ErrPasswordMismatch = errors.New("password mismatch")
)

var (
	hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
	emailPattern    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phonePattern    = regexp.MustCompile(`^\+?[0-9 ().-]{3,}$`)
)

// 新建主页使用的配色默认值。
const (
	defaultColorPrimary    = "#001F3F"
	defaultColorBackground = "#E9ECEF"
	defaultColorHeading    = "#001F3F"
	defaultColorBio        = "#444444"
)

// ProfileService 负责主页的增删改查、改名与访问保护
// 与 handler 解耦，所有写操作在事务内完成

type ProfileService struct {
	db *gorm.DB
}

// NewProfileService 构造 ProfileService
func NewProfileService(gdb *gorm.DB) *ProfileService {
	return &ProfileService{db: gdb}
}

// ProfileInput 描述创建或更新主页时可设置的字段
// PhotoPosX/PhotoPosY 使用指针判断是否显式传入

type ProfileInput struct {
	Name            string
	Title           string
	Biography       string
	Email           string
	Phone           string
	PhotoURL        string
	PhotoPosX       *int
	PhotoPosY       *int
	ColorPrimary    string
	ColorBackground string
	ColorHeading    string
	ColorBio        string
	Theme           string
	Layout          string
	Template        string
	WebhookURL      string
}

// List 返回全部主页，按创建时间升序
func (s *ProfileService) List() ([]db.Profile, error) {
	var profiles []db.Profile
	if err := s.db.Order("created_at ASC").Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}

// Get 根据主键获取主页
func (s *ProfileService) Get(id uint) (*db.Profile, error) {
	var profile db.Profile
	if err := s.db.First(&profile, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &profile, nil
}

// GetBySlug 根据 slug 获取主页
func (s *ProfileService) GetBySlug(slug string) (*db.Profile, error) {
	var profile db.Profile
	if err := s.db.Where("slug = ?", slug).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("get profile by slug: %w", err)
	}
	return &profile, nil
}

// GetOrCreate 获取指定 slug 的主页，不存在时用配色默认值创建一条空档案。
// 后台新建主页流程依赖这一首次访问即建档的语义。
func (s *ProfileService) GetOrCreate(slug string) (*db.Profile, error) {
	trimmed := strings.TrimSpace(slug)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: slug is required", ErrProfileInvalidInput)
	}

	var profile db.Profile
	err := s.db.Where("slug = ?", trimmed).First(&profile).Error
	if err == nil {
		return &profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("get or create profile: %w", err)
	}

	profile = db.Profile{
		Slug:            trimmed,
		ColorPrimary:    defaultColorPrimary,
		ColorBackground: defaultColorBackground,
		ColorHeading:    defaultColorHeading,
		ColorBio:        defaultColorBio,
		PhotoPosX:       50,
		PhotoPosY:       50,
		Theme:           "classic",
		Layout:          "list",
		Template:        "standard",
	}
	if err := s.db.Create(&profile).Error; err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return &profile, nil
}

// Create 新建主页，slug 由名称派生；已被占用时返回 ErrSlugConflict
func (s *ProfileService) Create(input ProfileInput) (*db.Profile, error) {
	if err := validateProfileInput(input, true); err != nil {
		return nil, err
	}

	slug := Slugify(input.Name)

	var count int64
	if err := s.db.Model(&db.Profile{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check slug: %w", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: %s", ErrSlugConflict, slug)
	}

	profile := db.Profile{
		Slug:            slug,
		ColorPrimary:    defaultColorPrimary,
		ColorBackground: defaultColorBackground,
		ColorHeading:    defaultColorHeading,
		ColorBio:        defaultColorBio,
		PhotoPosX:       50,
		PhotoPosY:       50,
		Theme:           "classic",
		Layout:          "list",
		Template:        "standard",
	}
	applyProfileInput(&profile, input)

	if err := s.db.Create(&profile).Error; err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return &profile, nil
}

// Update 更新主页资料。名称变化会触发重新取 slug，
// 新 slug 与其他主页冲突时整体拒绝并返回 ErrSlugConflict，旧 slug 保持不变。
func (s *ProfileService) Update(id uint, input ProfileInput) (*db.Profile, error) {
	if err := validateProfileInput(input, true); err != nil {
		return nil, err
	}

	var profile db.Profile
	if err := s.db.First(&profile, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}

	newSlug := Slugify(input.Name)
	if newSlug != profile.Slug {
		var count int64
		if err := s.db.Model(&db.Profile{}).
			Where("slug = ? AND id <> ?", newSlug, profile.ID).
			Count(&count).Error; err != nil {
			return nil, fmt.Errorf("check slug: %w", err)
		}
		if count > 0 {
			return nil, fmt.Errorf("%w: %s", ErrSlugConflict, newSlug)
		}
		profile.Slug = newSlug
	}

	applyProfileInput(&profile, input)

	if err := s.db.Save(&profile).Error; err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return &profile, nil
}

// Delete 删除主页并级联清理其链接与统计事件
func (s *ProfileService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var profile db.Profile
		if err := tx.First(&profile, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProfileNotFound
			}
			return fmt.Errorf("find profile: %w", err)
		}

		if err := tx.Where("profile_id = ?", profile.ID).Delete(&db.AnalyticsEvent{}).Error; err != nil {
			return fmt.Errorf("delete profile events: %w", err)
		}
		if err := tx.Where("profile_id = ?", profile.ID).Delete(&db.Link{}).Error; err != nil {
			return fmt.Errorf("delete profile links: %w", err)
		}
		if err := tx.Delete(&profile).Error; err != nil {
			return fmt.Errorf("delete profile: %w", err)
		}
		return nil
	})
}

// SetPassword 为主页设置访问密码并打开保护开关
func (s *ProfileService) SetPassword(id uint, password string) error {
	trimmed := strings.TrimSpace(password)
	if trimmed == "" {
		return fmt.Errorf("%w: password is required", ErrProfileInvalidInput)
	}

	profile, err := s.Get(id)
	if err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(trimmed), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	profile.Protected = true
	profile.PasswordHash = string(hashed)
	if err := s.db.Save(profile).Error; err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	return nil
}

// RemovePassword 清除访问密码并关闭保护开关
func (s *ProfileService) RemovePassword(id uint) error {
	profile, err := s.Get(id)
	if err != nil {
		return err
	}

	profile.Protected = false
	profile.PasswordHash = ""
	if err := s.db.Save(profile).Error; err != nil {
		return fmt.Errorf("remove password: %w", err)
	}
	return nil
}

// Unlock 校验访客提交的密码，失败时返回 ErrPasswordMismatch。
// 解锁状态由调用方记录在自己的会话里，服务端不保存全局解锁标记。
func (s *ProfileService) Unlock(profile *db.Profile, password string) error {
	if !profile.Protected || profile.PasswordHash == "" {
		return nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)); err != nil {
		return ErrPasswordMismatch
	}
	return nil
}

func applyProfileInput(profile *db.Profile, input ProfileInput) {
	profile.Name = strings.TrimSpace(input.Name)
	profile.Title = strings.TrimSpace(input.Title)
	profile.Biography = input.Biography
	profile.Email = strings.TrimSpace(input.Email)
	profile.Phone = strings.TrimSpace(input.Phone)
	profile.WebhookURL = strings.TrimSpace(input.WebhookURL)

	if photo := strings.TrimSpace(input.PhotoURL); photo != "" {
		profile.PhotoURL = photo
	}
	if input.PhotoPosX != nil {
		profile.PhotoPosX = *input.PhotoPosX
	}
	if input.PhotoPosY != nil {
		profile.PhotoPosY = *input.PhotoPosY
	}

	if color := strings.TrimSpace(input.ColorPrimary); color != "" {
		profile.ColorPrimary = color
	}
	if color := strings.TrimSpace(input.ColorBackground); color != "" {
		profile.ColorBackground = color
	}
	if color := strings.TrimSpace(input.ColorHeading); color != "" {
		profile.ColorHeading = color
	}
	if color := strings.TrimSpace(input.ColorBio); color != "" {
		profile.ColorBio = color
	}

	if theme := strings.TrimSpace(input.Theme); theme != "" {
		profile.Theme = theme
	}
	if layout := strings.TrimSpace(input.Layout); layout != "" {
		profile.Layout = layout
	}
	if tmpl := strings.TrimSpace(input.Template); tmpl != "" {
		profile.Template = tmpl
	}
}

func validateProfileInput(input ProfileInput, requireName bool) error {
	if requireName && strings.TrimSpace(input.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrProfileInvalidInput)
	}

	if email := strings.TrimSpace(input.Email); email != "" && !emailPattern.MatchString(email) {
		return fmt.Errorf("%w: malformed email", ErrProfileInvalidInput)
	}
	if phone := strings.TrimSpace(input.Phone); phone != "" && !phonePattern.MatchString(phone) {
		return fmt.Errorf("%w: malformed phone", ErrProfileInvalidInput)
	}

	for _, color := range []string{input.ColorPrimary, input.ColorBackground, input.ColorHeading, input.ColorBio} {
		if trimmed := strings.TrimSpace(color); trimmed != "" && !hexColorPattern.MatchString(trimmed) {
			return fmt.Errorf("%w: malformed hex color %q", ErrProfileInvalidInput, trimmed)
		}
	}

	for _, pos := range []*int{input.PhotoPosX, input.PhotoPosY} {
		if pos != nil && (*pos < 0 || *pos > 100) {
			return fmt.Errorf("%w: photo position must be within 0..100", ErrProfileInvalidInput)
		}
	}

	return nil
}
