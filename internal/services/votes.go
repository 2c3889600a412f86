package services

import (
	"commune/internal/db"
	"commune/internal/models"

	"gorm.io/gorm"
)

// 投票目标类型
const (
	VoteTargetPost    = "post"
	VoteTargetComment = "comment"
)

type voteAction int

const (
	voteActionCreate voteAction = iota
	voteActionRemove
	voteActionFlip
)

// VoteResult 投票后的最终状态，接口返回给前端作为唯一事实来源
type VoteResult struct {
	Score     int `json:"score"`
	Direction int `json:"direction"` // 1 赞, -1 踩, 0 未投

	// Created 仅当本次是从未投状态新增的一票时为 true
	// 翻转和撤销都是 false，karma 结算只看这个标记
	Created bool `json:"-"`
}

// resolveVote 根据用户当前持有的投票（0 表示未投）和请求方向，
// 给出台账动作、分数增量和投票后的最终方向
// 同方向再投 -> 撤销（toggle off）；反方向 -> 翻转（净变化 ±2）；未投 -> 新增（±1）
// 台账本身不做重试去重：同一请求发两次就是先撤销再投上
func resolveVote(current, requested int) (action voteAction, delta int, final int) {
	switch current {
	case requested:
		return voteActionRemove, -requested, 0
	case 0:
		return voteActionCreate, requested, requested
	default:
		return voteActionFlip, 2 * requested, requested
	}
}

// ToggleVote 对帖子或评论投票
// 不变式：用户在同一目标上最多持有一票（一行），赞/踩互斥
// 台账改动和分数列更新在同一事务内完成，分数列用表达式原子累加，
// 避免并发投票下的读改写丢更新
func ToggleVote(itemType string, itemID, userID uint, direction int) (VoteResult, error) {
	if direction != models.VoteUp && direction != models.VoteDown {
		return VoteResult{}, ErrInvalidState
	}
	if itemType != VoteTargetPost && itemType != VoteTargetComment {
		return VoteResult{}, ErrInvalidState
	}

	// 目标必须存在
	if itemType == VoteTargetPost {
		var post models.Post
		if err := db.DB.Select("id").First(&post, itemID).Error; err != nil {
			return VoteResult{}, ErrNotFound
		}
	} else {
		var comment models.Comment
		if err := db.DB.Select("id").First(&comment, itemID).Error; err != nil {
			return VoteResult{}, ErrNotFound
		}
	}

	var result VoteResult
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		query := tx.Where("user_id = ?", userID)
		if itemType == VoteTargetPost {
			query = query.Where("post_id = ?", itemID)
		} else {
			query = query.Where("comment_id = ?", itemID)
		}

		current := 0
		var existing models.Vote
		if err := query.First(&existing).Error; err == nil {
			current = existing.Value
		}

		action, delta, final := resolveVote(current, direction)

		switch action {
		case voteActionCreate:
			newVote := models.Vote{
				UserID: userID,
				Value:  direction,
			}
			if itemType == VoteTargetPost {
				newVote.PostID = &itemID
			} else {
				newVote.CommentID = &itemID
			}
			if err := tx.Create(&newVote).Error; err != nil {
				return err
			}
		case voteActionRemove:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
		case voteActionFlip:
			if err := tx.Model(&existing).Update("value", direction).Error; err != nil {
				return err
			}
		}

		// 分数列原子更新
		if itemType == VoteTargetPost {
			if err := tx.Model(&models.Post{}).Where("id = ?", itemID).
				UpdateColumn("score", gorm.Expr("score + ?", delta)).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Model(&models.Comment{}).Where("id = ?", itemID).
				UpdateColumn("score", gorm.Expr("score + ?", delta)).Error; err != nil {
				return err
			}
		}

		result.Direction = final
		result.Created = action == voteActionCreate
		return nil
	})
	if err != nil {
		return VoteResult{}, err
	}

	// 提交后按台账重数（赞数 - 踩数），作为权威分数返回
	result.Score = TallyScore(itemType, itemID)
	return result, nil
}

// TallyScore 按投票台账统计分数：赞数 - 踩数
func TallyScore(itemType string, itemID uint) int {
	column := "post_id"
	if itemType == VoteTargetComment {
		column = "comment_id"
	}

	var upvotes, downvotes int64
	db.DB.Model(&models.Vote{}).Where(column+" = ? AND value = 1", itemID).Count(&upvotes)
	db.DB.Model(&models.Vote{}).Where(column+" = ? AND value = -1", itemID).Count(&downvotes)
	return int(upvotes - downvotes)
}

// UserVote 查询用户对某个目标当前持有的投票方向，未投返回 0
func UserVote(itemType string, itemID, userID uint) int {
	if userID == 0 {
		return 0
	}

	query := db.DB.Where("user_id = ?", userID)
	if itemType == VoteTargetPost {
		query = query.Where("post_id = ?", itemID)
	} else {
		query = query.Where("comment_id = ?", itemID)
	}

	var vote models.Vote
	if err := query.First(&vote).Error; err != nil {
		return 0
	}
	return vote.Value
}

// UserCommentVotes 查询用户在某帖子全部评论上的投票方向，用于详情页渲染
func UserCommentVotes(userID, postID uint) map[uint]int {
	votes := make(map[uint]int)
	if userID == 0 {
		return votes
	}

	sub := db.DB.Model(&models.Comment{}).Select("id").Where("post_id = ?", postID)
	var rows []models.Vote
	db.DB.Where("user_id = ? AND comment_id IN (?)", userID, sub).Find(&rows)
	for _, v := range rows {
		if v.CommentID != nil {
			votes[*v.CommentID] = v.Value
		}
	}
	return votes
}

// UserPostVotes 批量查询用户对一组帖子的投票方向，用于列表页渲染
func UserPostVotes(userID uint, postIDs []uint) map[uint]int {
	votes := make(map[uint]int)
	if userID == 0 || len(postIDs) == 0 {
		return votes
	}

	var rows []models.Vote
	db.DB.Where("user_id = ? AND post_id IN ?", userID, postIDs).Find(&rows)
	for _, v := range rows {
		if v.PostID != nil {
			votes[*v.PostID] = v.Value
		}
	}
	return votes
}
