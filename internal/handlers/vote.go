package handlers

import (
	"commune/internal/db"
	"commune/internal/middleware"
	"commune/internal/models"
	"commune/internal/services"
	"commune/internal/utils"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

type VoteHandler struct{}

func NewVoteHandler() *VoteHandler {
	return &VoteHandler{}
}

// Toggle 投票接口：POST /vote/:type/:id/:dir
// 同方向再投是撤销，反方向是翻转，台账保证赞/踩互斥
// 返回的 {score, direction} 是服务端的最终状态，前端以此为准，
// 不维护自己的投票缓存
func (h *VoteHandler) Toggle(c *gin.Context) {
	user, exists := c.Get(middleware.CheckUserKey)
	if !exists {
		c.Header("HX-Redirect", "/login")
		c.Status(http.StatusOK)
		return
	}
	currentUser := user.(*models.User)

	itemType := c.Param("type") // "post" or "comment"
	itemID := utils.StringToUint(c.Param("id"))

	direction := 0
	switch c.Param("dir") {
	case "up":
		direction = models.VoteUp
	case "down":
		direction = models.VoteDown
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的投票方向"})
		return
	}

	result, err := services.ToggleVote(itemType, itemID, currentUser.ID, direction)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": "投票失败"})
		return
	}

	// 受影响页面的缓存失效，下一次渲染重新读库
	if itemType == services.VoteTargetPost {
		var post models.Post
		if err := db.DB.Select("id, pid, user_id").First(&post, itemID).Error; err == nil {
			utils.GetCache().Delete(fmt.Sprintf("post:detail:shared:%s", post.Pid))
		}
		utils.GetCache().Delete("post:top")

		// 异步对齐排名分数
		services.GetRankingService().ScheduleUpdate(itemID)
	} else {
		var comment models.Comment
		if err := db.DB.Preload("Post").First(&comment, itemID).Error; err == nil {
			utils.GetCache().Delete(fmt.Sprintf("post:detail:shared:%s", comment.Post.Pid))
		}
	}

	// 异步结算 karma：只有从未投状态新增的一票计入
	// 撤销不结算，翻转也不结算（否则反复 up↔down 就能刷作者的分）
	if result.Created {
		go h.settleKarma(itemType, itemID, currentUser.ID, direction)
	}

	c.JSON(http.StatusOK, result)
}

// settleKarma 给内容作者结算 karma，点踩的人自己也要扣一点
func (h *VoteHandler) settleKarma(itemType string, itemID, voterID uint, direction int) {
	var authorID uint
	if itemType == services.VoteTargetPost {
		var post models.Post
		if err := db.DB.First(&post, itemID).Error; err == nil {
			authorID = post.UserID
		}
	} else {
		var comment models.Comment
		if err := db.DB.First(&comment, itemID).Error; err == nil {
			authorID = comment.UserID
		}
	}

	if authorID != 0 && authorID != voterID {
		if direction == models.VoteUp {
			if itemType == services.VoteTargetPost {
				services.AddKarma(authorID, services.KarmaPostLiked, services.ActionPostLiked)
			} else {
				services.AddKarma(authorID, services.KarmaCommentLiked, services.ActionCommentLiked)
			}
		} else {
			if itemType == services.VoteTargetPost {
				services.AddKarma(authorID, services.KarmaPostDownvoted, services.ActionPostDownvoted)
			} else {
				services.AddKarma(authorID, services.KarmaCommentDownvoted, services.ActionCommentDownvoted)
			}
		}
	}

	if direction == models.VoteDown {
		services.AddKarma(voterID, services.KarmaDownvoteOther, services.ActionDownvoteOther)
	}
}
