package models

import (
	"time"
)

// Community 社区（版块），帖子必须归属于某个社区
type Community struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null;unique" json:"name"` // URL 标识，如 /c/:name
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description"`
	CreatorID   *uint     `gorm:"index" json:"creator_id"` // 种子社区为空
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// 非数据库字段，查询时填充
	PostCount int `gorm:"-" json:"post_count"`
}
