package handlers

import (
	"commune/internal/db"
	"commune/internal/middleware"
	"commune/internal/models"
	"commune/internal/services"
	"commune/internal/utils"
	"fmt"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PostHandler struct{}

func NewPostHandler() *PostHandler {
	return &PostHandler{}
}

// 热门页候选窗口：近 7 天内最多 500 篇
// 排序在内存中做，数据量大了要换数据库侧的增量排名
const (
	topWindowDays  = 7
	topWindowLimit = 500
)

// fillCommentCounts 批量填充帖子的评论数量
func fillCommentCounts(posts []models.Post) {
	if len(posts) == 0 {
		return
	}

	postIDs := make([]uint, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	type CountResult struct {
		PostID uint
		Count  int
	}
	var results []CountResult
	db.DB.Model(&models.Comment{}).
		Select("post_id, COUNT(*) as count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&results)

	countMap := make(map[uint]int)
	for _, r := range results {
		countMap[r.PostID] = r.Count
	}

	for i := range posts {
		posts[i].CommentCount = countMap[posts[i].ID]
	}
}

func loadSidebarCommunities() []models.Community {
	var communities []models.Community
	db.DB.Order("id ASC").Find(&communities)
	return communities
}

func siteURL() string {
	url := os.Getenv("SITE_URL")
	if url == "" {
		url = "http://localhost:8080"
	}
	return url
}

// ListTop 首页 - 热门帖子
// 每次请求在候选窗口上重新取 Top K，同分保持时间序（稳定排序）
func (h *PostHandler) ListTop(c *gin.Context) {
	cacheKey := "post:top"
	if cachedData := utils.GetCache().Get(cacheKey); cachedData != nil {
		if hData, ok := cachedData.(gin.H); ok {
			viewData := cloneRenderData(hData)
			h.injectListVotes(c, viewData)
			Render(c, http.StatusOK, "post/list.html", viewData)
			return
		}
	}

	since := time.Now().AddDate(0, 0, -topWindowDays)
	var window []models.Post
	db.DB.Preload("User").Preload("Community").
		Where("created_at >= ?", since).
		Order("created_at DESC").
		Limit(topWindowLimit).
		Find(&window)

	posts := utils.RankTop(window, utils.DefaultTopK)
	fillCommentCounts(posts)

	renderData := gin.H{
		"Posts":       posts,
		"Communities": loadSidebarCommunities(),
		"Active":      "top",
		"Title":       "热门",
		"Description": "Commune 社区近期热度最高的讨论",
		"FullURL":     siteURL(),
	}

	// 写入缓存，有效期 1 分钟
	utils.GetCache().Set(cacheKey, renderData, 1*time.Minute)

	viewData := cloneRenderData(renderData)
	h.injectListVotes(c, viewData)
	Render(c, http.StatusOK, "post/list.html", viewData)
}

// ListNew 最新帖子（分页）
func (h *PostHandler) ListNew(c *gin.Context) {
	page := 1
	if p := c.Query("page"); p != "" {
		if pageNum, err := strconv.Atoi(p); err == nil && pageNum > 0 {
			page = pageNum
		}
	}

	perPage := 30
	offset := (page - 1) * perPage

	var total int64
	db.DB.Model(&models.Post{}).Count(&total)

	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	if totalPages == 0 {
		totalPages = 1
	}

	var posts []models.Post
	db.DB.Preload("User").Preload("Community").
		Order("created_at DESC").
		Limit(perPage).
		Offset(offset).
		Find(&posts)

	fillCommentCounts(posts)

	renderData := gin.H{
		"Posts":       posts,
		"Communities": loadSidebarCommunities(),
		"Active":      "new",
		"Title":       "最新",
		"CurrentPage": page,
		"TotalPages":  totalPages,
		"Description": "Commune 社区的最新帖子",
		"FullURL":     fmt.Sprintf("%s/new", siteURL()),
	}
	h.injectListVotes(c, renderData)
	Render(c, http.StatusOK, "post/list.html", renderData)
}

// ListByCommunity 社区下的帖子列表
func (h *PostHandler) ListByCommunity(c *gin.Context) {
	name := c.Param("name")

	var community models.Community
	if err := db.DB.Where("name = ?", name).First(&community).Error; err != nil {
		RenderError(c, http.StatusNotFound, "社区不存在")
		return
	}

	page := 1
	if p := c.Query("page"); p != "" {
		if pageNum, err := strconv.Atoi(p); err == nil && pageNum > 0 {
			page = pageNum
		}
	}

	perPage := 30
	offset := (page - 1) * perPage

	var total int64
	db.DB.Model(&models.Post{}).Where("community_id = ?", community.ID).Count(&total)

	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	if totalPages == 0 {
		totalPages = 1
	}

	var posts []models.Post
	db.DB.Preload("User").Preload("Community").
		Where("community_id = ?", community.ID).
		Order("created_at DESC").
		Limit(perPage).
		Offset(offset).
		Find(&posts)

	fillCommentCounts(posts)

	renderData := gin.H{
		"Posts":       posts,
		"Communities": loadSidebarCommunities(),
		"Community":   community,
		"Active":      "community",
		"Title":       community.Title,
		"CurrentPage": page,
		"TotalPages":  totalPages,
		"Description": fmt.Sprintf("Commune - %s 社区的帖子", community.Title),
		"FullURL":     fmt.Sprintf("%s/c/%s", siteURL(), community.Name),
	}
	h.injectListVotes(c, renderData)
	Render(c, http.StatusOK, "post/list.html", renderData)
}

// Search 搜索标题和内容
func (h *PostHandler) Search(c *gin.Context) {
	query := c.Query("q")

	var posts []models.Post
	if query != "" {
		searchPattern := "%" + query + "%"
		db.DB.Preload("User").Preload("Community").
			Where("title ILIKE ? OR content ILIKE ?", searchPattern, searchPattern).
			Order("created_at DESC").
			Limit(50).
			Find(&posts)
	}

	fillCommentCounts(posts)

	Render(c, http.StatusOK, "search.html", gin.H{
		"Posts":       posts,
		"Query":       query,
		"Active":      "search",
		"Title":       "搜索 - " + query,
		"Description": fmt.Sprintf("在 Commune 搜索 '%s' 的结果", query),
		"FullURL":     fmt.Sprintf("%s/search?q=%s", siteURL(), query),
	})
}

func (h *PostHandler) ShowCreate(c *gin.Context) {
	Render(c, http.StatusOK, "post/create.html", gin.H{
		"Title":       "发布",
		"Communities": loadSidebarCommunities(),
	})
}

func (h *PostHandler) Create(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	title := strings.TrimSpace(c.PostForm("title"))
	url := strings.TrimSpace(c.PostForm("url"))
	content := c.PostForm("content")
	communityIDStr := c.PostForm("community_id")

	if title == "" {
		Render(c, http.StatusBadRequest, "post/create.html", gin.H{
			"Error":       "标题不能为空",
			"Communities": loadSidebarCommunities(),
		})
		return
	}

	communityID := utils.StringToUint(communityIDStr)
	if communityID == 0 {
		communityID = 1
	}
	var community models.Community
	if err := db.DB.First(&community, communityID).Error; err != nil {
		Render(c, http.StatusBadRequest, "post/create.html", gin.H{
			"Error":       "所选社区不存在",
			"Communities": loadSidebarCommunities(),
		})
		return
	}

	post := models.Post{
		Pid:         utils.RandPublicID(8),
		UserID:      user.ID,
		CommunityID: community.ID,
		Title:       title,
		URL:         url,
		Content:     content, // 存原始 Markdown，渲染时再转 HTML
	}

	if err := db.DB.Create(&post).Error; err != nil {
		Render(c, http.StatusInternalServerError, "post/create.html", gin.H{
			"Error":       "发布失败",
			"Communities": loadSidebarCommunities(),
		})
		return
	}

	// 首页缓存失效
	utils.GetCache().Delete("post:top")

	// 异步加 karma（每天前3篇）
	go func() {
		if services.CanEarnPostKarma(user.ID) {
			services.AddKarma(user.ID, services.KarmaPostCreate, services.ActionPostCreate)
		}
	}()

	c.Redirect(http.StatusFound, "/p/"+post.Pid)
}

// Detail 帖子详情页：帖子正文 + 嵌套评论树
func (h *PostHandler) Detail(c *gin.Context) {
	pid := c.Param("pid")

	userID := uint(0)
	if user := middleware.CurrentUser(c); user != nil {
		userID = user.ID
	}

	// 共享缓存：不含任何用户私有状态，私有状态每次请求实时注入
	cacheKey := fmt.Sprintf("post:detail:shared:%s", pid)
	if cachedData := utils.GetCache().Get(cacheKey); cachedData != nil {
		if hData, ok := cachedData.(gin.H); ok {
			if postData, ok := hData["Post"].(models.Post); ok {
				db.DB.Model(&models.Post{}).Where("id = ?", postData.ID).UpdateColumn("views", gorm.Expr("views + 1"))
				viewData := cloneRenderData(hData)
				h.injectViewerState(viewData, postData.ID, userID)
				Render(c, http.StatusOK, "post/detail.html", viewData)
				return
			}
		}
	}

	var post models.Post
	if err := db.DB.Preload("User").Preload("Community").Where("pid = ?", pid).First(&post).Error; err != nil {
		RenderError(c, http.StatusNotFound, "帖子不存在")
		return
	}

	// 增加浏览量
	db.DB.Model(&post).UpdateColumn("views", gorm.Expr("views + 1"))
	post.Views++

	// 评论树
	commentTree, commentCount, err := services.LoadCommentTree(post.ID)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "评论加载失败")
		return
	}

	postContentHTML := utils.RenderMarkdown(post.Content)

	var favoriteCount int64
	db.DB.Model(&models.Favorite{}).Where("post_id = ?", post.ID).Count(&favoriteCount)

	var upvoteCount int64
	db.DB.Model(&models.Vote{}).Where("post_id = ? AND value = 1", post.ID).Count(&upvoteCount)

	var downvoteCount int64
	db.DB.Model(&models.Vote{}).Where("post_id = ? AND value = -1", post.ID).Count(&downvoteCount)

	description := utils.StripHTML(string(postContentHTML))
	if runes := []rune(description); len(runes) > 150 {
		description = string(runes[:150]) + "..."
	}

	var prevPost models.Post
	hasPrev := db.DB.Select("pid, title").
		Where("created_at < ?", post.CreatedAt).
		Order("created_at DESC").
		First(&prevPost).Error == nil

	var nextPost models.Post
	hasNext := db.DB.Select("pid, title").
		Where("created_at > ?", post.CreatedAt).
		Order("created_at ASC").
		First(&nextPost).Error == nil

	renderData := gin.H{
		"Post":          post,
		"PostContent":   postContentHTML,
		"Comments":      commentTree,
		"CommentCount":  commentCount,
		"Title":         post.Title,
		"FavoriteCount": favoriteCount,
		"UpvoteCount":   upvoteCount,
		"DownvoteCount": downvoteCount,
		"Communities":   loadSidebarCommunities(),
		"Description":   description,
		"FullURL":       fmt.Sprintf("%s/p/%s", siteURL(), post.Pid),
		"Author":        post.User.Username,
		"PublishedTime": post.CreatedAt.Format(time.RFC3339),
		"HasPrev":       hasPrev,
		"PrevPost":      prevPost,
		"HasNext":       hasNext,
		"NextPost":      nextPost,
	}

	// 写入共享缓存，有效期 5 分钟
	utils.GetCache().Set(cacheKey, renderData, 5*time.Minute)

	viewData := cloneRenderData(renderData)
	h.injectViewerState(viewData, post.ID, userID)
	Render(c, http.StatusOK, "post/detail.html", viewData)
}

// cloneRenderData 浅拷贝渲染数据
// 共享缓存里的条目只读：按用户注入的键（以及 Render 补充的
// CurrentUser 等）只写进拷贝，并发请求各拿各的 map
func cloneRenderData(shared gin.H) gin.H {
	data := make(gin.H, len(shared)+4)
	for k, v := range shared {
		data[k] = v
	}
	return data
}

// injectViewerState 注入随用户变化的状态：收藏与投票方向
// 投票状态以数据库为唯一事实来源，绝不进共享缓存
func (h *PostHandler) injectViewerState(renderData gin.H, postID, userID uint) {
	isFavorited := false
	if userID > 0 {
		var favorite models.Favorite
		if err := db.DB.Where("user_id = ? AND post_id = ?", userID, postID).First(&favorite).Error; err == nil {
			isFavorited = true
		}
	}
	renderData["IsFavorited"] = isFavorited
	renderData["UserVote"] = services.UserVote(services.VoteTargetPost, postID, userID)
	renderData["CommentVotes"] = services.UserCommentVotes(userID, postID)
}

// injectListVotes 列表页注入当前用户对各帖子的投票方向
func (h *PostHandler) injectListVotes(c *gin.Context, renderData gin.H) {
	userID := uint(0)
	if user := middleware.CurrentUser(c); user != nil {
		userID = user.ID
	}

	posts, ok := renderData["Posts"].([]models.Post)
	if !ok {
		renderData["PostVotes"] = map[uint]int{}
		return
	}
	postIDs := make([]uint, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}
	renderData["PostVotes"] = services.UserPostVotes(userID, postIDs)
}

// Summarize 生成/返回帖子摘要（JSON）
// 首次生成后回填到帖子上，之后直接取缓存结果
func (h *PostHandler) Summarize(c *gin.Context) {
	pid := c.Param("pid")

	var post models.Post
	if err := db.DB.Where("pid = ?", pid).First(&post).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "帖子不存在"})
		return
	}

	if post.Summary != "" {
		c.JSON(http.StatusOK, gin.H{"summary": post.Summary, "cached": true})
		return
	}

	text := post.Content
	if strings.TrimSpace(text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "没有可以总结的正文"})
		return
	}

	summary := services.GetSummaryService().Summarize(post.Title, text)
	if summary == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "正文太短，不需要摘要"})
		return
	}

	db.DB.Model(&post).UpdateColumn("summary", summary)
	utils.GetCache().Delete(fmt.Sprintf("post:detail:shared:%s", post.Pid))

	c.JSON(http.StatusOK, gin.H{"summary": summary, "cached": false})
}

func (h *PostHandler) ShowEdit(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	pid := c.Param("pid")

	var post models.Post
	if err := db.DB.Where("pid = ?", pid).First(&post).Error; err != nil {
		RenderError(c, http.StatusNotFound, "帖子不存在")
		return
	}

	if post.UserID != user.ID {
		RenderError(c, http.StatusForbidden, "无权编辑此帖子")
		return
	}

	Render(c, http.StatusOK, "post/edit.html", gin.H{
		"Title":       "编辑帖子",
		"Post":        post,
		"Communities": loadSidebarCommunities(),
	})
}

func (h *PostHandler) Update(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	pid := c.Param("pid")

	var post models.Post
	if err := db.DB.Where("pid = ?", pid).First(&post).Error; err != nil {
		RenderError(c, http.StatusNotFound, "帖子不存在")
		return
	}

	if post.UserID != user.ID {
		RenderError(c, http.StatusForbidden, "无权编辑此帖子")
		return
	}

	title := strings.TrimSpace(c.PostForm("title"))
	url := strings.TrimSpace(c.PostForm("url"))
	content := c.PostForm("content")
	communityIDStr := c.PostForm("community_id")

	if title == "" {
		Render(c, http.StatusBadRequest, "post/edit.html", gin.H{
			"Error":       "标题不能为空",
			"Post":        post,
			"Communities": loadSidebarCommunities(),
		})
		return
	}

	communityID := post.CommunityID
	if id := utils.StringToUint(communityIDStr); id != 0 {
		communityID = id
	}

	post.Title = title
	post.URL = url
	post.Content = content
	post.CommunityID = communityID
	post.Summary = "" // 正文变了，旧摘要作废

	if err := db.DB.Save(&post).Error; err != nil {
		Render(c, http.StatusInternalServerError, "post/edit.html", gin.H{
			"Error":       "保存失败",
			"Post":        post,
			"Communities": loadSidebarCommunities(),
		})
		return
	}

	utils.GetCache().Delete(fmt.Sprintf("post:detail:shared:%s", post.Pid))

	c.Redirect(http.StatusFound, "/p/"+pid)
}

func (h *PostHandler) Delete(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	pid := c.Param("pid")

	var post models.Post
	if err := db.DB.Where("pid = ?", pid).First(&post).Error; err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	if post.UserID != user.ID {
		c.Status(http.StatusForbidden)
		return
	}

	// Hard Delete
	db.DB.Unscoped().Delete(&post)

	// 相关缓存失效
	utils.GetCache().Delete(fmt.Sprintf("post:detail:shared:%s", post.Pid))
	utils.GetCache().Delete("post:top")

	// 异步扣 karma
	services.AddKarmaAsync(user.ID, services.KarmaPostDeleted, services.ActionPostDeleted)

	redirect := c.GetHeader("HX-Current-URL")
	if strings.Contains(redirect, "/p/") {
		// We are on detail page
		c.Header("HX-Redirect", "/")
	}
	c.Status(http.StatusOK)
}
