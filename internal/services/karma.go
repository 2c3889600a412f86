package services

import (
	"commune/internal/db"
	"commune/internal/models"
	"time"

	"gorm.io/gorm"
)

// karma 动作常量
const (
	ActionPostCreate       = "发布帖子"
	ActionPostLiked        = "帖子获赞"
	ActionPostFavorited    = "帖子被收藏"
	ActionPostUnfavorited  = "帖子取消收藏"
	ActionPostDownvoted    = "帖子被踩"
	ActionPostDeleted      = "删除帖子"
	ActionCommentCreate    = "发布评论"
	ActionCommentLiked     = "评论获赞"
	ActionCommentDownvoted = "评论被踩"
	ActionCommentDeleted   = "删除评论"
	ActionDownvoteOther    = "踩了别人"
)

// karma 变动值常量
const (
	KarmaPostCreate       = 1
	KarmaPostLiked        = 1
	KarmaPostFavorited    = 3
	KarmaPostUnfavorited  = -3
	KarmaPostDownvoted    = -3
	KarmaPostDeleted      = -10
	KarmaCommentCreate    = 1
	KarmaCommentLiked     = 1
	KarmaCommentDownvoted = -3
	KarmaCommentDeleted   = -3
	KarmaDownvoteOther    = -1
)

// 每日限制
const (
	DailyPostLimit    = 3 // 每天前3篇帖子有 karma
	DailyCommentLimit = 3 // 每天前3条评论有 karma
)

// AddKarma 使用事务变更 karma 并记录明细
// 传入用户ID、变动值（正数增加，负数扣除）、动作描述
func AddKarma(userID uint, amount int, action string) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		// 1. 创建明细记录
		entry := models.KarmaLog{
			UserID: userID,
			Amount: amount,
			Action: action,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		// 2. 更新用户 karma 余额
		if err := tx.Model(&models.User{}).
			Where("id = ?", userID).
			UpdateColumn("karma", gorm.Expr("karma + ?", amount)).
			Error; err != nil {
			return err
		}

		return nil
	})
}

// AddKarmaAsync 异步变更 karma（在 goroutine 中调用）
func AddKarmaAsync(userID uint, amount int, action string) {
	go func() {
		_ = AddKarma(userID, amount, action)
	}()
}

// getTodayRange 获取今日的开始和结束时间
func getTodayRange() (time.Time, time.Time) {
	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)
	return startOfDay, endOfDay
}

// countTodayKarmaLogs 统计今日指定动作的 karma 记录数
func countTodayKarmaLogs(userID uint, action string) int64 {
	startOfDay, endOfDay := getTodayRange()
	var count int64
	db.DB.Model(&models.KarmaLog{}).
		Where("user_id = ? AND action = ? AND created_at >= ? AND created_at < ?", userID, action, startOfDay, endOfDay).
		Count(&count)
	return count
}

// CanEarnPostKarma 检查用户今日是否还能通过发帖获取 karma
func CanEarnPostKarma(userID uint) bool {
	return countTodayKarmaLogs(userID, ActionPostCreate) < DailyPostLimit
}

// CanEarnCommentKarma 检查用户今日是否还能通过评论获取 karma
func CanEarnCommentKarma(userID uint) bool {
	return countTodayKarmaLogs(userID, ActionCommentCreate) < DailyCommentLimit
}
