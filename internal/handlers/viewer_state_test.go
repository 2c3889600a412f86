package handlers

import (
	"commune/internal/utils"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewerStateStaysOutOfSharedCache(t *testing.T) {
	cache := utils.GetCache()
	cache.Set("post:detail:shared:aaaa1111", gin.H{"Title": "帖子"}, time.Minute)

	hData, ok := cache.Get("post:detail:shared:aaaa1111").(gin.H)
	require.True(t, ok)

	// 第一个访问者注入自己的投票/收藏状态
	viewData := cloneRenderData(hData)
	viewData["UserVote"] = 1
	viewData["IsFavorited"] = true
	viewData["CommentVotes"] = map[uint]int{7: -1}

	// 第二个访问者拿到的共享条目不能带上前一个人的状态
	again, ok := cache.Get("post:detail:shared:aaaa1111").(gin.H)
	require.True(t, ok)
	assert.NotContains(t, again, "UserVote")
	assert.NotContains(t, again, "IsFavorited")
	assert.NotContains(t, again, "CommentVotes")
	assert.Equal(t, "帖子", again["Title"])
}

func TestCloneRenderDataConcurrentViewers(t *testing.T) {
	cache := utils.GetCache()
	cache.Set("post:top", gin.H{"Title": "热门"}, time.Minute)

	// 并发访问者各自注入，互不共享 map（-race 下必须干净）
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(vote int) {
			defer wg.Done()
			shared, ok := cache.Get("post:top").(gin.H)
			if !ok {
				t.Error("cache entry missing")
				return
			}
			viewData := cloneRenderData(shared)
			viewData["PostVotes"] = map[uint]int{1: vote}
			viewData["CurrentPath"] = "/"
		}(i%2*2 - 1)
	}
	wg.Wait()

	shared, ok := cache.Get("post:top").(gin.H)
	require.True(t, ok)
	assert.Len(t, shared, 1)
	assert.NotContains(t, shared, "PostVotes")
}
