package models

import (
	"time"
)

// 投票方向
const (
	VoteUp   = 1
	VoteDown = -1
)

// Vote 投票台账：每个用户对同一目标最多持有一行
// PostID 和 CommentID 恰好有一个非空
// PG 的唯一索引对 NULL 不生效，所以两个复合索引可以共存
type Vote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_user_post_vote;uniqueIndex:idx_user_comment_vote" json:"user_id"`
	PostID    *uint     `gorm:"index;uniqueIndex:idx_user_post_vote" json:"post_id"`
	CommentID *uint     `gorm:"index;uniqueIndex:idx_user_comment_vote" json:"comment_id"`
	Value     int       `gorm:"not null" json:"value"` // 1 或 -1
	CreatedAt time.Time `json:"created_at"`
}
