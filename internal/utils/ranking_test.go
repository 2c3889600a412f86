package utils

import (
	"commune/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankTopOrdersByScoreDesc(t *testing.T) {
	posts := []models.Post{
		{Pid: "a", Score: 3},
		{Pid: "b", Score: 10},
		{Pid: "c", Score: 7},
	}

	top := RankTop(posts, 3)

	require.Len(t, top, 3)
	assert.Equal(t, "b", top[0].Pid)
	assert.Equal(t, "c", top[1].Pid)
	assert.Equal(t, "a", top[2].Pid)
}

func TestRankTopStableOnTies(t *testing.T) {
	// 同分帖子保持输入顺序
	posts := []models.Post{
		{Pid: "first", Score: 5},
		{Pid: "second", Score: 5},
		{Pid: "third", Score: 3},
	}

	top := RankTop(posts, 2)

	require.Len(t, top, 2)
	assert.Equal(t, "first", top[0].Pid)
	assert.Equal(t, "second", top[1].Pid)
}

func TestRankTopShortInput(t *testing.T) {
	posts := []models.Post{{Pid: "only", Score: 1}}

	top := RankTop(posts, DefaultTopK)
	require.Len(t, top, 1)
	assert.Equal(t, "only", top[0].Pid)
}

func TestRankTopZeroK(t *testing.T) {
	posts := []models.Post{{Pid: "a", Score: 1}}
	assert.Nil(t, RankTop(posts, 0))
}

func TestRankTopDoesNotMutateInput(t *testing.T) {
	posts := []models.Post{
		{Pid: "low", Score: 1},
		{Pid: "high", Score: 9},
	}

	RankTop(posts, 2)

	assert.Equal(t, "low", posts[0].Pid)
	assert.Equal(t, "high", posts[1].Pid)
}
