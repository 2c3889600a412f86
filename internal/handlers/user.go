package handlers

import (
	"commune/internal/db"
	"commune/internal/models"
	"commune/internal/utils"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type UserHandler struct{}

func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// Profile - 用户主页 /u/:id
func (h *UserHandler) Profile(c *gin.Context) {
	userID := c.Param("id")

	var user models.User
	if err := db.DB.First(&user, userID).Error; err != nil {
		Render(c, http.StatusNotFound, "error.html", gin.H{"Error": "用户不存在"})
		return
	}

	levelName, levelIcon := utils.GetUserLevel(user.Karma)
	daysSince := utils.GetDaysSinceJoined(user.CreatedAt)

	tab := c.DefaultQuery("tab", "posts")

	var posts []models.Post
	var comments []models.Comment
	var favoritePosts []models.Post

	if tab == "posts" {
		db.DB.Preload("Community").
			Preload("User").
			Where("user_id = ?", user.ID).
			Order("created_at DESC").
			Limit(50).
			Find(&posts)
		fillCommentCounts(posts)
	} else if tab == "comments" {
		db.DB.Preload("Post").
			Preload("User").
			Where("user_id = ? AND is_deleted = ?", user.ID, false).
			Order("created_at DESC").
			Limit(50).
			Find(&comments)
	} else if tab == "favorites" {
		var favorites []models.Favorite
		db.DB.Preload("Post").
			Preload("Post.Community").
			Preload("Post.User").
			Where("user_id = ?", user.ID).
			Order("created_at DESC").
			Limit(50).
			Find(&favorites)
		for _, f := range favorites {
			favoritePosts = append(favoritePosts, f.Post)
		}
		fillCommentCounts(favoritePosts)
	}

	Render(c, http.StatusOK, "user/public.html", gin.H{
		"Title":         user.Username + " 的主页",
		"User":          user,
		"LevelName":     levelName,
		"LevelIcon":     levelIcon,
		"DaysSince":     daysSince,
		"Posts":         posts,
		"Comments":      comments,
		"FavoritePosts": favoritePosts,
		"ActiveTab":     tab,
	})
}

// Dashboard - 个人后台概览
func (h *UserHandler) Dashboard(c *gin.Context) {
	session := sessions.Default(c)
	userID := session.Get("user_id")

	var user models.User
	if err := db.DB.First(&user, userID).Error; err != nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	// 统计数据
	var postCount, commentCount, favoriteCount int64
	db.DB.Model(&models.Post{}).Where("user_id = ?", user.ID).Count(&postCount)
	db.DB.Model(&models.Comment{}).Where("user_id = ?", user.ID).Count(&commentCount)
	db.DB.Model(&models.Favorite{}).Where("user_id = ?", user.ID).Count(&favoriteCount)

	levelName, levelIcon := utils.GetUserLevel(user.Karma)
	daysSince := utils.GetDaysSinceJoined(user.CreatedAt)

	Render(c, http.StatusOK, "dashboard/overview.html", gin.H{
		"Title":         "个人后台",
		"User":          user,
		"LevelName":     levelName,
		"LevelIcon":     levelIcon,
		"DaysSince":     daysSince,
		"PostCount":     postCount,
		"CommentCount":  commentCount,
		"FavoriteCount": favoriteCount,
	})
}

// KarmaLogs - karma 明细
func (h *UserHandler) KarmaLogs(c *gin.Context) {
	session := sessions.Default(c)
	userID := session.Get("user_id")

	var logs []models.KarmaLog
	db.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(100).
		Find(&logs)

	Render(c, http.StatusOK, "dashboard/karma.html", gin.H{
		"Title": "Karma 明细",
		"Logs":  logs,
	})
}

// ShowSettings - 显示设置页面
func (h *UserHandler) ShowSettings(c *gin.Context) {
	session := sessions.Default(c)
	userID := session.Get("user_id")

	var user models.User
	if err := db.DB.First(&user, userID).Error; err != nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	Render(c, http.StatusOK, "dashboard/settings.html", gin.H{
		"Title":        "设置",
		"User":         user,
		"CommonEmojis": utils.GetCommonEmojis(),
	})
}

// UpdateSettings - 更新设置
func (h *UserHandler) UpdateSettings(c *gin.Context) {
	session := sessions.Default(c)
	userID := session.Get("user_id")

	var user models.User
	if err := db.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "未登录"})
		return
	}

	username := c.PostForm("username")
	email := c.PostForm("email")
	avatar := c.PostForm("avatar")
	bio := c.PostForm("bio")
	oldPassword := c.PostForm("old_password")
	newPassword := c.PostForm("new_password")

	updates := make(map[string]interface{})

	if username != "" && username != user.Username {
		updates["username"] = username
	}

	if email != "" && email != user.Email {
		// 检查邮箱是否已被使用
		var existingUser models.User
		if err := db.DB.Where("email = ? AND id != ?", email, user.ID).First(&existingUser).Error; err == nil {
			Render(c, http.StatusBadRequest, "dashboard/settings.html", gin.H{
				"Error":        "该邮箱已被使用",
				"User":         user,
				"CommonEmojis": utils.GetCommonEmojis(),
			})
			return
		}
		updates["email"] = email
	}

	if avatar != "" {
		updates["avatar"] = avatar
	}

	if bio != user.Bio {
		updates["bio"] = bio
	}

	if oldPassword != "" && newPassword != "" {
		if !utils.CheckPasswordHash(oldPassword, user.Password) {
			Render(c, http.StatusBadRequest, "dashboard/settings.html", gin.H{
				"Error":        "原密码错误",
				"User":         user,
				"CommonEmojis": utils.GetCommonEmojis(),
			})
			return
		}

		if len(newPassword) < 6 {
			Render(c, http.StatusBadRequest, "dashboard/settings.html", gin.H{
				"Error":        "新密码至少6位",
				"User":         user,
				"CommonEmojis": utils.GetCommonEmojis(),
			})
			return
		}

		hash, err := utils.HashPassword(newPassword)
		if err != nil {
			Render(c, http.StatusInternalServerError, "dashboard/settings.html", gin.H{
				"Error":        "系统错误",
				"User":         user,
				"CommonEmojis": utils.GetCommonEmojis(),
			})
			return
		}
		updates["password"] = hash
	}

	if len(updates) > 0 {
		if err := db.DB.Model(&user).Updates(updates).Error; err != nil {
			Render(c, http.StatusInternalServerError, "dashboard/settings.html", gin.H{
				"Error":        "更新失败",
				"User":         user,
				"CommonEmojis": utils.GetCommonEmojis(),
			})
			return
		}
	}

	c.Redirect(http.StatusFound, "/dashboard/settings")
}
