package models

import (
	"time"
)

// Favorite 收藏模型 - 用户收藏帖子
type Favorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_user_favorite" json:"user_id"`
	PostID    uint      `gorm:"not null;index;uniqueIndex:idx_user_favorite" json:"post_id"`
	Post      Post      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"post"`
	CreatedAt time.Time `json:"created_at"`
}
