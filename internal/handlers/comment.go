package handlers

import (
	"commune/internal/db"
	"commune/internal/middleware"
	"commune/internal/models"
	"commune/internal/services"
	"commune/internal/utils"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	mailService *services.MailService
}

func NewCommentHandler() *CommentHandler {
	return &CommentHandler{
		mailService: services.NewMailService(),
	}
}

// Create 发表评论/回复
func (h *CommentHandler) Create(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	pid := c.Param("pid")

	var post models.Post
	if err := db.DB.Where("pid = ?", pid).First(&post).Error; err != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}

	content := c.PostForm("content")
	parentIDStr := c.PostForm("parent_id")

	comment, err := services.SubmitReply(&post, user, parentIDStr, content)
	if err != nil {
		if err == services.ErrInvalidState && content == "" {
			c.Redirect(http.StatusFound, "/p/"+pid)
			return
		}
		RenderServiceError(c, err)
		return
	}

	// 详情页缓存失效
	utils.GetCache().Delete(fmt.Sprintf("post:detail:shared:%s", post.Pid))

	// 异步更新帖子排名
	services.GetRankingService().ScheduleUpdate(post.ID)

	// 异步加 karma（每天前3条评论）
	go func() {
		if services.CanEarnCommentKarma(user.ID) {
			services.AddKarma(user.ID, services.KarmaCommentCreate, services.ActionCommentCreate)
		}
	}()

	// Create Notifications
	go func() {
		// 回复评论只通知被回复者，顶层评论通知帖子作者
		if comment.ParentID != nil {
			var parentComment models.Comment
			if err := db.DB.Preload("User").First(&parentComment, *comment.ParentID).Error; err == nil {
				// 不要通知自己
				if parentComment.UserID != user.ID {
					notification := models.Notification{
						UserID:  parentComment.UserID,
						ActorID: &user.ID,
						Type:    models.NotificationTypeReplyComment,
						Reason: fmt.Sprintf("在帖子 <a href=\"/p/%s#comment-%d\" target=\"_blank\" class=\"notify-link\">《%s》</a> 中回复了您的评论",
							post.Pid, comment.ID, post.Title),
					}
					db.DB.Create(&notification)

					// Send Email Notification
					postLink := fmt.Sprintf("%s/p/%s#comment-%d", os.Getenv("SITE_URL"), post.Pid, comment.ID)
					h.mailService.SendReplyNotification(
						parentComment.User.Email,
						user.Username,
						post.Title,
						comment.Content,
						parentComment.Content,
						postLink,
					)
				}
			}
		} else {
			if post.UserID != user.ID {
				notification := models.Notification{
					UserID:  post.UserID,
					ActorID: &user.ID,
					Type:    models.NotificationTypeCommentPost,
					Reason: fmt.Sprintf("在您的帖子 <a href=\"/p/%s#comment-%d\" target=\"_blank\" class=\"notify-link\">《%s》</a> 中发布了新的评论",
						post.Pid, comment.ID, post.Title),
				}
				db.DB.Create(&notification)
			}
		}
	}()

	c.Redirect(http.StatusFound, "/p/"+pid)
}

// Edit 编辑评论内容（已删除的评论禁止编辑）
func (h *CommentHandler) Edit(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	cid := c.Param("cid")
	content := c.PostForm("content")

	comment, err := services.EditComment(cid, user.ID, content)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": "编辑失败"})
		return
	}

	var post models.Post
	if err := db.DB.First(&post, comment.PostID).Error; err == nil {
		utils.GetCache().Delete(fmt.Sprintf("post:detail:shared:%s", post.Pid))
		c.Redirect(http.StatusFound, "/p/"+post.Pid)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// Delete 删除评论：叶子评论物理删除，有回复的评论墓碑化
func (h *CommentHandler) Delete(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	cid := c.Param("cid")

	comment, err := services.DeleteComment(cid, user.ID)
	if err != nil {
		c.Status(statusFor(err))
		return
	}

	// 详情页缓存失效
	var post models.Post
	if err := db.DB.First(&post, comment.PostID).Error; err == nil {
		utils.GetCache().Delete(fmt.Sprintf("post:detail:shared:%s", post.Pid))
	}

	// 异步扣 karma
	services.AddKarmaAsync(user.ID, services.KarmaCommentDeleted, services.ActionCommentDeleted)

	c.Status(http.StatusOK)
}
