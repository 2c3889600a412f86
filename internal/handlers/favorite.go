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

type FavoriteHandler struct{}

func NewFavoriteHandler() *FavoriteHandler {
	return &FavoriteHandler{}
}

// Toggle 切换收藏状态 - 收藏/取消收藏
func (h *FavoriteHandler) Toggle(c *gin.Context) {
	user, exists := c.Get(middleware.CheckUserKey)
	if !exists {
		c.Header("HX-Redirect", "/login")
		c.Status(http.StatusOK)
		return
	}
	currentUser := user.(*models.User)

	postID := utils.StringToUint(c.Param("id"))
	if postID == 0 {
		c.Status(http.StatusBadRequest)
		return
	}

	// 检查帖子是否存在
	var post models.Post
	if err := db.DB.First(&post, postID).Error; err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	favorited := false
	var existing models.Favorite
	if err := db.DB.Where("user_id = ? AND post_id = ?", currentUser.ID, postID).First(&existing).Error; err == nil {
		// 已收藏，取消收藏
		db.DB.Delete(&existing)
		if post.UserID != currentUser.ID {
			services.AddKarmaAsync(post.UserID, services.KarmaPostUnfavorited, services.ActionPostUnfavorited)
		}
	} else {
		favorite := models.Favorite{
			UserID: currentUser.ID,
			PostID: postID,
		}
		db.DB.Create(&favorite)
		favorited = true
		if post.UserID != currentUser.ID {
			services.AddKarmaAsync(post.UserID, services.KarmaPostFavorited, services.ActionPostFavorited)
		}
	}

	// 详情页缓存失效
	utils.GetCache().Delete(fmt.Sprintf("post:detail:shared:%s", post.Pid))

	var count int64
	db.DB.Model(&models.Favorite{}).Where("post_id = ?", postID).Count(&count)

	c.JSON(http.StatusOK, gin.H{
		"favorited": favorited,
		"count":     count,
	})
}
