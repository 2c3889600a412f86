package models

import (
	"time"
)

// DeletedCommentContent 软删除后的占位内容（墓碑）
const DeletedCommentContent = "该评论已删除。"

type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Cid       string    `gorm:"uniqueIndex;size:8;not null" json:"cid"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	Post      Post      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"post"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	ParentID  *uint     `gorm:"index" json:"parent_id"` // 顶层评论为空；必须指向同一帖子下更早的评论
	Parent    *Comment  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"parent"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Score     int       `gorm:"default:0" json:"score"`
	IsDeleted bool      `gorm:"default:false;index" json:"is_deleted"` // 有回复的评论只做软删除，保住树的连通性
	CreatedAt time.Time `json:"created_at"`
}
