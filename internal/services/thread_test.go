package services

import (
	"commune/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uintPtr(v uint) *uint {
	return &v
}

func TestBuildCommentTreeNesting(t *testing.T) {
	// 1 有两条回复 2、3，2 又有一条回复 4
	comments := []models.Comment{
		{ID: 4, ParentID: uintPtr(2), Content: "d"},
		{ID: 3, ParentID: uintPtr(1), Content: "c"},
		{ID: 2, ParentID: uintPtr(1), Content: "b"},
		{ID: 1, Content: "a"},
	}

	forest := BuildCommentTree(comments)

	require.Len(t, forest, 1)
	root := forest[0]
	assert.Equal(t, uint(1), root.ID)

	require.Len(t, root.Children, 2)
	// 子节点保持输入顺序（最新在前）
	assert.Equal(t, uint(3), root.Children[0].ID)
	assert.Equal(t, uint(2), root.Children[1].ID)

	require.Len(t, root.Children[1].Children, 1)
	assert.Equal(t, uint(4), root.Children[1].Children[0].ID)
}

func TestBuildCommentTreeNoLoss(t *testing.T) {
	// 每条评论恰好出现在森林的一个位置，总数不变
	comments := []models.Comment{
		{ID: 5, ParentID: uintPtr(4)},
		{ID: 4, ParentID: uintPtr(2)},
		{ID: 3},
		{ID: 2, ParentID: uintPtr(1)},
		{ID: 1},
	}

	forest := BuildCommentTree(comments)

	assert.Equal(t, len(comments), CountTreeNodes(forest))
	assert.Len(t, forest, 2)
}

func TestBuildCommentTreeOrphanPromotion(t *testing.T) {
	// 父评论不在列表里时降级为根节点，不报错不丢数据
	comments := []models.Comment{
		{ID: 2, ParentID: uintPtr(99), Content: "悬空引用"},
		{ID: 1, Content: "正常"},
	}

	forest := BuildCommentTree(comments)

	require.Len(t, forest, 2)
	assert.Equal(t, uint(2), forest[0].ID)
	assert.Empty(t, forest[0].Children)
	assert.Equal(t, 2, CountTreeNodes(forest))
}

func TestBuildCommentTreeEmpty(t *testing.T) {
	forest := BuildCommentTree(nil)
	assert.Empty(t, forest)
	assert.Equal(t, 0, CountTreeNodes(forest))
}

func TestBuildCommentTreeRootsKeepOrder(t *testing.T) {
	comments := []models.Comment{
		{ID: 3},
		{ID: 2},
		{ID: 1},
	}

	forest := BuildCommentTree(comments)

	require.Len(t, forest, 3)
	assert.Equal(t, uint(3), forest[0].ID)
	assert.Equal(t, uint(2), forest[1].ID)
	assert.Equal(t, uint(1), forest[2].ID)
}
