package utils

import (
	"commune/internal/models"
	"sort"
)

// DefaultTopK 热门页默认取前 20 篇
const DefaultTopK = 20

// RankTop 按 Score 降序返回前 k 篇帖子
// 使用稳定排序：同分帖子保持输入顺序
// 每次请求全量重算，数据量大了需要换增量索引
func RankTop(posts []models.Post, k int) []models.Post {
	if k <= 0 {
		return nil
	}

	ranked := make([]models.Post, len(posts))
	copy(ranked, posts)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if k > len(ranked) {
		k = len(ranked)
	}
	return ranked[:k]
}
