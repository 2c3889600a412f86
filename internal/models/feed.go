package models

import (
	"time"
)

// Feed 自定义信息流：用户把若干社区收进一个命名集合，聚合浏览
type Feed struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Fid         string    `gorm:"uniqueIndex;size:8;not null" json:"fid"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	User        User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// 非数据库字段，查询时填充
	CommunityCount int `gorm:"-" json:"community_count"`
}

// FeedCommunity 信息流与社区的关联
type FeedCommunity struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FeedID      uint      `gorm:"not null;index;uniqueIndex:idx_feed_community" json:"feed_id"`
	Feed        Feed      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"feed"`
	CommunityID uint      `gorm:"not null;index;uniqueIndex:idx_feed_community" json:"community_id"`
	Community   Community `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"community"`
	CreatedAt   time.Time `json:"created_at"`
}
