package models

import (
	"time"
)

type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Username    string    `gorm:"not null;index" json:"username"`
	Email       string    `gorm:"uniqueIndex;not null" json:"email"`
	Password    string    `gorm:"not null" json:"-"` // bcrypt hash
	Avatar      string    `gorm:"default:🦉" json:"avatar"`
	Bio         string    `gorm:"size:200" json:"bio"` // 个人简介
	Karma       int       `gorm:"default:0" json:"karma"`
	Role        string    `gorm:"size:20;default:'user';not null" json:"role"` // user, admin
	IsActivated bool      `gorm:"default:false" json:"is_activated"`
	VerifyCode  string    `gorm:"size:20" json:"-"` // 激活验证码
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
