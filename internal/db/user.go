package db

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User 是后台管理员账号，密码以 bcrypt 哈希存储。
type User struct {
	gorm.Model
	Username string `gorm:"unique;not null"`
	Password string `gorm:"not null"`
}

// EnsureUser 在提供的用户名与密码均非空且账号不存在时创建管理员。
// 已存在的账号不会被覆盖，便于通过环境变量做一次性引导。
func EnsureUser(username, password string) error {
	trimmedUser := strings.TrimSpace(username)
	trimmedPassword := strings.TrimSpace(password)
	if trimmedUser == "" || trimmedPassword == "" {
		return nil
	}

	if DB == nil {
		return errors.New("database not initialized")
	}

	var existing User
	err := DB.Where("username = ?", trimmedUser).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(trimmedPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return DB.Create(&User{Username: trimmedUser, Password: string(hashed)}).Error
}

// FindUserByUsername 按用户名查找管理员账号。
func FindUserByUsername(username string) (*User, error) {
	var user User
	if err := DB.Where("username = ?", strings.TrimSpace(username)).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
