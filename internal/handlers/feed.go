package handlers

import (
	"commune/internal/db"
	"commune/internal/middleware"
	"commune/internal/models"
	"commune/internal/utils"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

type FeedHandler struct{}

func NewFeedHandler() *FeedHandler {
	return &FeedHandler{}
}

// Index 我的自定义信息流列表
func (h *FeedHandler) Index(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	var feeds []models.Feed
	db.DB.Where("user_id = ?", user.ID).Order("created_at ASC").Find(&feeds)

	// 批量填充社区数
	if len(feeds) > 0 {
		feedIDs := make([]uint, len(feeds))
		for i, f := range feeds {
			feedIDs[i] = f.ID
		}

		type CountResult struct {
			FeedID uint
			Count  int
		}
		var results []CountResult
		db.DB.Model(&models.FeedCommunity{}).
			Select("feed_id, COUNT(*) as count").
			Where("feed_id IN ?", feedIDs).
			Group("feed_id").
			Scan(&results)

		countMap := make(map[uint]int)
		for _, r := range results {
			countMap[r.FeedID] = r.Count
		}
		for i := range feeds {
			feeds[i].CommunityCount = countMap[feeds[i].ID]
		}
	}

	Render(c, http.StatusOK, "feed/index.html", gin.H{
		"Title":       "我的信息流",
		"Feeds":       feeds,
		"Communities": loadSidebarCommunities(),
		"Active":      "feeds",
	})
}

// Create 创建自定义信息流
func (h *FeedHandler) Create(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	name := strings.TrimSpace(c.PostForm("name"))
	description := strings.TrimSpace(c.PostForm("description"))

	if name == "" {
		Render(c, http.StatusBadRequest, "feed/index.html", gin.H{"Error": "名字不能为空"})
		return
	}

	feed := models.Feed{
		Fid:         utils.RandPublicID(8),
		UserID:      user.ID,
		Name:        name,
		Description: description,
	}
	if err := db.DB.Create(&feed).Error; err != nil {
		Render(c, http.StatusInternalServerError, "feed/index.html", gin.H{"Error": "创建失败"})
		return
	}

	c.Redirect(http.StatusFound, "/f/"+feed.Fid)
}

// Delete 删除信息流（只能删自己的）
func (h *FeedHandler) Delete(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	fid := c.Param("fid")

	var feed models.Feed
	if err := db.DB.Where("fid = ?", fid).First(&feed).Error; err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	if feed.UserID != user.ID {
		c.Status(http.StatusForbidden)
		return
	}

	// 先删关联，再删信息流本身
	db.DB.Where("feed_id = ?", feed.ID).Delete(&models.FeedCommunity{})
	db.DB.Delete(&feed)

	c.Status(http.StatusOK)
}

// AddCommunity 把社区加进信息流
func (h *FeedHandler) AddCommunity(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	fid := c.Param("fid")

	var feed models.Feed
	if err := db.DB.Where("fid = ?", fid).First(&feed).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "信息流不存在"})
		return
	}
	if feed.UserID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "无权修改此信息流"})
		return
	}

	communityID := utils.StringToUint(c.PostForm("community_id"))
	var community models.Community
	if err := db.DB.First(&community, communityID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "社区不存在"})
		return
	}

	// 唯一索引兜底，重复添加直接忽略
	fc := models.FeedCommunity{
		FeedID:      feed.ID,
		CommunityID: community.ID,
	}
	db.DB.Where("feed_id = ? AND community_id = ?", feed.ID, community.ID).FirstOrCreate(&fc)

	c.JSON(http.StatusOK, gin.H{"added": true, "community": community.Name})
}

// RemoveCommunity 把社区从信息流中移除
func (h *FeedHandler) RemoveCommunity(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	fid := c.Param("fid")
	communityID := utils.StringToUint(c.Param("cid"))

	var feed models.Feed
	if err := db.DB.Where("fid = ?", fid).First(&feed).Error; err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	if feed.UserID != user.ID {
		c.Status(http.StatusForbidden)
		return
	}

	db.DB.Where("feed_id = ? AND community_id = ?", feed.ID, communityID).Delete(&models.FeedCommunity{})
	c.Status(http.StatusOK)
}

// Show 信息流聚合页：成员社区的帖子按时间倒序混排
func (h *FeedHandler) Show(c *gin.Context) {
	fid := c.Param("fid")

	var feed models.Feed
	if err := db.DB.Preload("User").Where("fid = ?", fid).First(&feed).Error; err != nil {
		RenderError(c, http.StatusNotFound, "信息流不存在")
		return
	}

	var members []models.FeedCommunity
	db.DB.Preload("Community").Where("feed_id = ?", feed.ID).Find(&members)

	communityIDs := make([]uint, len(members))
	for i, m := range members {
		communityIDs[i] = m.CommunityID
	}

	page := 1
	if p := c.Query("page"); p != "" {
		if pageNum, err := strconv.Atoi(p); err == nil && pageNum > 0 {
			page = pageNum
		}
	}
	perPage := 30
	offset := (page - 1) * perPage

	var posts []models.Post
	var total int64
	if len(communityIDs) > 0 {
		db.DB.Model(&models.Post{}).Where("community_id IN ?", communityIDs).Count(&total)
		db.DB.Preload("User").Preload("Community").
			Where("community_id IN ?", communityIDs).
			Order("created_at DESC").
			Limit(perPage).
			Offset(offset).
			Find(&posts)
	}
	fillCommentCounts(posts)

	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	if totalPages == 0 {
		totalPages = 1
	}

	Render(c, http.StatusOK, "feed/show.html", gin.H{
		"Title":       feed.Name,
		"Feed":        feed,
		"Members":     members,
		"Posts":       posts,
		"Communities": loadSidebarCommunities(),
		"CurrentPage": page,
		"TotalPages":  totalPages,
		"Active":      "feeds",
	})
}
