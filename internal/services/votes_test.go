package services

import (
	"commune/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveVoteCreate(t *testing.T) {
	// 未投状态下投票：新增一票，净变化 ±1
	action, delta, final := resolveVote(0, models.VoteUp)
	assert.Equal(t, voteActionCreate, action)
	assert.Equal(t, 1, delta)
	assert.Equal(t, models.VoteUp, final)

	action, delta, final = resolveVote(0, models.VoteDown)
	assert.Equal(t, voteActionCreate, action)
	assert.Equal(t, -1, delta)
	assert.Equal(t, models.VoteDown, final)
}

func TestResolveVoteToggleOff(t *testing.T) {
	// 同方向再投是撤销，回到未投状态
	action, delta, final := resolveVote(models.VoteUp, models.VoteUp)
	assert.Equal(t, voteActionRemove, action)
	assert.Equal(t, -1, delta)
	assert.Equal(t, 0, final)

	action, delta, final = resolveVote(models.VoteDown, models.VoteDown)
	assert.Equal(t, voteActionRemove, action)
	assert.Equal(t, 1, delta)
	assert.Equal(t, 0, final)
}

func TestResolveVoteFlip(t *testing.T) {
	// 反方向投票是翻转，净变化 ±2
	action, delta, final := resolveVote(models.VoteDown, models.VoteUp)
	assert.Equal(t, voteActionFlip, action)
	assert.Equal(t, 2, delta)
	assert.Equal(t, models.VoteUp, final)

	action, delta, final = resolveVote(models.VoteUp, models.VoteDown)
	assert.Equal(t, voteActionFlip, action)
	assert.Equal(t, -2, delta)
	assert.Equal(t, models.VoteDown, final)
}

func TestResolveVoteOnlyNeutralCreates(t *testing.T) {
	// 已持有投票时（同向或反向）动作都不是新增
	// karma 只在新增时结算，翻转刷不出结算
	for _, cur := range []int{models.VoteUp, models.VoteDown} {
		for _, req := range []int{models.VoteUp, models.VoteDown} {
			action, _, _ := resolveVote(cur, req)
			assert.NotEqual(t, voteActionCreate, action)
		}
	}

	action, _, _ := resolveVote(0, models.VoteUp)
	assert.Equal(t, voteActionCreate, action)
}

func TestResolveVoteToggleSymmetry(t *testing.T) {
	// 投一次再投一次，分数增量相互抵消
	for _, dir := range []int{models.VoteUp, models.VoteDown} {
		_, d1, mid := resolveVote(0, dir)
		_, d2, final := resolveVote(mid, dir)
		assert.Equal(t, 0, d1+d2)
		assert.Equal(t, 0, final)
	}
}
