package handlers

import (
	"commune/internal/db"
	"commune/internal/middleware"
	"commune/internal/models"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

type CommunityHandler struct{}

func NewCommunityHandler() *CommunityHandler {
	return &CommunityHandler{}
}

// 社区名只允许小写字母、数字和连字符，用在 /c/:name 路径里
var communityNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,30}$`)

// List 展示所有社区列表
func (h *CommunityHandler) List(c *gin.Context) {
	var communities []models.Community
	db.DB.Order("id ASC").Find(&communities)

	// 批量填充帖子数
	if len(communities) > 0 {
		type CountResult struct {
			CommunityID uint
			Count       int
		}
		var results []CountResult
		db.DB.Model(&models.Post{}).
			Select("community_id, COUNT(*) as count").
			Group("community_id").
			Scan(&results)

		countMap := make(map[uint]int)
		for _, r := range results {
			countMap[r.CommunityID] = r.Count
		}
		for i := range communities {
			communities[i].PostCount = countMap[communities[i].ID]
		}
	}

	Render(c, http.StatusOK, "community/list.html", gin.H{
		"Communities": communities,
		"Title":       "社区",
		"Active":      "communities",
	})
}

func (h *CommunityHandler) ShowCreate(c *gin.Context) {
	Render(c, http.StatusOK, "community/create.html", gin.H{
		"Title": "创建社区",
	})
}

// Create 创建新社区
func (h *CommunityHandler) Create(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	name := strings.ToLower(strings.TrimSpace(c.PostForm("name")))
	title := strings.TrimSpace(c.PostForm("title"))
	description := strings.TrimSpace(c.PostForm("description"))

	if !communityNamePattern.MatchString(name) {
		Render(c, http.StatusBadRequest, "community/create.html", gin.H{
			"Error": "社区名只能包含小写字母、数字和连字符，2-31 个字符",
		})
		return
	}
	if title == "" {
		title = name
	}

	community := models.Community{
		Name:        name,
		Title:       title,
		Description: description,
		CreatorID:   &user.ID,
	}

	if err := db.DB.Create(&community).Error; err != nil {
		Render(c, http.StatusConflict, "community/create.html", gin.H{
			"Error": "社区名已被占用",
		})
		return
	}

	c.Redirect(http.StatusFound, "/c/"+community.Name)
}
