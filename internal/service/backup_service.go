package service

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/linkfolio/internal/db"
)

// BackupService 在主页保存成功后把快照落盘为 JSON 文件。
// 快照是派生数据，写入失败不影响已提交的保存操作。
type BackupService struct {
	dir string
}

// NewBackupService 构造 BackupService，dir 为备份文件目录。
func NewBackupService(dir string) *BackupService {
	return &BackupService{dir: dir}
}

type backupLink struct {
	Category string `json:"category"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	Position int    `json:"position"`
}

type backupSnapshot struct {
	ID              uint         `json:"id"`
	Slug            string       `json:"slug"`
	Name            string       `json:"name"`
	Title           string       `json:"title"`
	Biography       string       `json:"biography"`
	Email           string       `json:"email"`
	Phone           string       `json:"phone"`
	PhotoURL        string       `json:"photo_url"`
	PhotoPosX       int          `json:"photo_pos_x"`
	PhotoPosY       int          `json:"photo_pos_y"`
	ColorPrimary    string       `json:"color_primary"`
	ColorBackground string       `json:"color_background"`
	ColorHeading    string       `json:"color_heading"`
	ColorBio        string       `json:"color_bio"`
	Links           []backupLink `json:"links"`
}

// Snapshot 把主页与其链接写入 <slug>_<unix>.json，返回生成的文件路径。
func (s *BackupService) Snapshot(profile *db.Profile, links []db.Link) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	snapshot := backupSnapshot{
		ID:              profile.ID,
		Slug:            profile.Slug,
		Name:            profile.Name,
		Title:           profile.Title,
		Biography:       profile.Biography,
		Email:           profile.Email,
		Phone:           profile.Phone,
		PhotoURL:        profile.PhotoURL,
		PhotoPosX:       profile.PhotoPosX,
		PhotoPosY:       profile.PhotoPosY,
		ColorPrimary:    profile.ColorPrimary,
		ColorBackground: profile.ColorBackground,
		ColorHeading:    profile.ColorHeading,
		ColorBio:        profile.ColorBio,
		Links:           make([]backupLink, 0, len(links)),
	}
	for _, link := range links {
		snapshot.Links = append(snapshot.Links, backupLink{
			Category: link.Category,
			Name:     link.Name,
			URL:      link.URL,
			Position: link.Position,
		})
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal backup: %w", err)
	}

	path := filepath.Join(s.dir, fmt.Sprintf("%s_%d.json", profile.Slug, time.Now().Unix()))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}
	return path, nil
}
