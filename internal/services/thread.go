package services

import (
	"commune/internal/db"
	"commune/internal/models"
	"commune/internal/utils"
	"html/template"
	"time"
)

// CommentNode 回复树节点：一条评论加上它的直接回复
// Children 保持输入顺序（最新在前）
type CommentNode struct {
	models.Comment
	ContentHTML template.HTML  `json:"content_html"`
	Children    []*CommentNode `json:"children"`
}

// BuildCommentTree 把同一帖子下的平铺评论列表（已按创建时间倒序）组装为回复树森林
// 两次遍历，O(n)，非递归：第一遍建 id 索引，第二遍把每个节点挂到父节点或根列表
// 父评论不在列表里（悬空引用）时降级为根节点，绝不报错
// 不会成环：写入时已保证父评论早于回复创建
func BuildCommentTree(comments []models.Comment) []*CommentNode {
	nodes := make([]*CommentNode, len(comments))
	index := make(map[uint]*CommentNode, len(comments))
	for i := range comments {
		n := &CommentNode{Comment: comments[i]}
		nodes[i] = n
		index[comments[i].ID] = n
	}

	roots := make([]*CommentNode, 0, len(comments))
	for _, n := range nodes {
		if n.ParentID != nil {
			if parent, ok := index[*n.ParentID]; ok && parent != n {
				parent.Children = append(parent.Children, n)
				continue
			}
		}
		roots = append(roots, n)
	}
	return roots
}

// CountTreeNodes 统计森林里的节点总数（含所有层级）
func CountTreeNodes(forest []*CommentNode) int {
	count := 0
	stack := make([]*CommentNode, len(forest))
	copy(stack, forest)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		count++
		stack = append(stack, n.Children...)
	}
	return count
}

// LoadCommentTree 加载帖子的评论树并渲染每条评论的 HTML
func LoadCommentTree(postID uint) ([]*CommentNode, int, error) {
	var comments []models.Comment
	if err := db.DB.Preload("User").
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Find(&comments).Error; err != nil {
		return nil, 0, err
	}

	forest := BuildCommentTree(comments)
	renderForest(forest)
	return forest, len(comments), nil
}

func renderForest(forest []*CommentNode) {
	for _, n := range forest {
		if n.IsDeleted {
			n.ContentHTML = template.HTML(template.HTMLEscapeString(models.DeletedCommentContent))
		} else {
			n.ContentHTML = utils.RenderMarkdown(n.Content)
		}
		renderForest(n.Children)
	}
}

// SubmitReply 发表评论/回复
// 写入前校验父评论：必须属于同一帖子，且创建时间早于回复时刻
// （正常流程里父评论必然已存在，这里防御构造出来的请求）
func SubmitReply(post *models.Post, user *models.User, parentIDStr, content string) (*models.Comment, error) {
	if content == "" {
		return nil, ErrInvalidState
	}

	var parentID *uint
	if parentIDStr != "" {
		pID := utils.StringToUint(parentIDStr)
		if pID == 0 {
			return nil, ErrNotFound
		}

		var parent models.Comment
		if err := db.DB.First(&parent, pID).Error; err != nil {
			return nil, ErrNotFound
		}
		if parent.PostID != post.ID {
			return nil, ErrInvalidState
		}
		if parent.CreatedAt.After(time.Now()) {
			return nil, ErrInvalidState
		}
		parentID = &pID
	}

	comment := models.Comment{
		Cid:      utils.RandPublicID(8),
		PostID:   post.ID,
		UserID:   user.ID,
		Content:  content,
		ParentID: parentID,
	}

	if err := db.DB.Create(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// DeleteComment 删除评论：叶子评论物理删除，有回复的评论只做墓碑化软删除
// 软删除保住树的连通性，孙辈评论不会变成孤儿
func DeleteComment(cid string, userID uint) (*models.Comment, error) {
	var comment models.Comment
	if err := db.DB.Where("cid = ?", cid).First(&comment).Error; err != nil {
		return nil, ErrNotFound
	}

	if comment.UserID != userID {
		return nil, ErrForbidden
	}
	if comment.IsDeleted {
		return nil, ErrInvalidState
	}

	var replyCount int64
	db.DB.Model(&models.Comment{}).Where("parent_id = ?", comment.ID).Count(&replyCount)

	if replyCount > 0 {
		// 软删除：墓碑化
		comment.IsDeleted = true
		comment.Content = models.DeletedCommentContent
		if err := db.DB.Save(&comment).Error; err != nil {
			return nil, err
		}
	} else {
		if err := db.DB.Delete(&comment).Error; err != nil {
			return nil, err
		}
	}
	return &comment, nil
}

// EditComment 编辑评论内容，已删除的评论禁止编辑
func EditComment(cid string, userID uint, content string) (*models.Comment, error) {
	if content == "" {
		return nil, ErrInvalidState
	}

	var comment models.Comment
	if err := db.DB.Where("cid = ?", cid).First(&comment).Error; err != nil {
		return nil, ErrNotFound
	}
	if comment.UserID != userID {
		return nil, ErrForbidden
	}
	if comment.IsDeleted {
		return nil, ErrInvalidState
	}

	if err := db.DB.Model(&comment).Update("content", content).Error; err != nil {
		return nil, err
	}
	comment.Content = content
	return &comment, nil
}
