package services

import (
	"commune/internal/db"
	"commune/internal/models"
	"log"
	"sync"
	"time"
)

// RankingService 异步把帖子的冗余 Score 列和投票台账对齐
// 投票、评论、浏览之后调 ScheduleUpdate，由后台 worker 批量重算
type RankingService struct {
	queue   chan uint // 待更新的帖子 ID 队列
	pending map[uint]bool
	mu      sync.Mutex
}

var (
	rankingService *RankingService
	once           sync.Once
)

// GetRankingService 获取单例排名服务
func GetRankingService() *RankingService {
	once.Do(func() {
		rankingService = &RankingService{
			queue:   make(chan uint, 1000), // 缓冲队列，防止阻塞
			pending: make(map[uint]bool),
		}
		// 启动后台 worker
		go rankingService.worker()
	})
	return rankingService
}

// ScheduleUpdate 将帖子加入更新队列（异步）
// 使用去重机制避免短时间内重复计算同一帖子
func (s *RankingService) ScheduleUpdate(postID uint) {
	s.mu.Lock()
	if s.pending[postID] {
		s.mu.Unlock()
		return
	}
	s.pending[postID] = true
	s.mu.Unlock()

	// 非阻塞发送到队列
	select {
	case s.queue <- postID:
	default:
		// 队列满了，移除 pending 标记
		s.mu.Lock()
		delete(s.pending, postID)
		s.mu.Unlock()
		log.Printf("排名更新队列已满，跳过帖子 %d", postID)
	}
}

// worker 后台处理队列中的更新请求
func (s *RankingService) worker() {
	batch := make([]uint, 0, 50)
	ticker := time.NewTicker(500 * time.Millisecond) // 每 500ms 处理一批
	defer ticker.Stop()

	for {
		select {
		case postID := <-s.queue:
			batch = append(batch, postID)
			if len(batch) >= 50 {
				s.processBatch(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				s.processBatch(batch)
				batch = batch[:0]
			}
		}
	}
}

func (s *RankingService) processBatch(postIDs []uint) {
	for _, postID := range postIDs {
		s.updatePostScore(postID)

		s.mu.Lock()
		delete(s.pending, postID)
		s.mu.Unlock()
	}
}

// updatePostScore 按台账重算单个帖子的分数（赞数 - 踩数）
func (s *RankingService) updatePostScore(postID uint) {
	var post models.Post
	if err := db.DB.Select("id").First(&post, postID).Error; err != nil {
		log.Printf("更新 Score 失败：帖子 %d 不存在", postID)
		return
	}

	score := TallyScore(VoteTargetPost, postID)

	if err := db.DB.Model(&post).UpdateColumn("score", score).Error; err != nil {
		log.Printf("更新帖子 %d Score 失败: %v", postID, err)
	}
}

// UpdatePostScoreSync 同步更新帖子 Score（用于需要立即生效的场景）
func UpdatePostScoreSync(postID uint) {
	GetRankingService().updatePostScore(postID)
}

// StartScheduledScoreUpdate 启动定时对账任务（每天凌晨 3 点执行）
// 正常路径上分数已经和台账一致，这里兜底修复错过的更新
func (s *RankingService) StartScheduledScoreUpdate() {
	go func() {
		for {
			now := time.Now()
			next := time.Date(now.Year(), now.Month(), now.Day(), 3, 0, 0, 0, now.Location())
			if now.After(next) {
				next = next.Add(24 * time.Hour)
			}
			time.Sleep(time.Until(next))

			log.Println("开始定时对账帖子分数...")
			s.reconcileRecentPosts()
			log.Println("定时对账完成")
		}
	}()
}

// reconcileRecentPosts 重算最近 7 天和分数最高的 30 篇帖子（边遍历边去重）
func (s *RankingService) reconcileRecentPosts() {
	processed := make(map[uint]bool)
	count := 0

	sevenDaysAgo := time.Now().AddDate(0, 0, -7)
	var recentPosts []models.Post
	db.DB.Where("created_at >= ?", sevenDaysAgo).Select("id").Find(&recentPosts)
	for _, p := range recentPosts {
		s.updatePostScore(p.ID)
		processed[p.ID] = true
		count++
	}

	var topPosts []models.Post
	db.DB.Order("score DESC").Limit(30).Select("id").Find(&topPosts)
	for _, p := range topPosts {
		if !processed[p.ID] {
			s.updatePostScore(p.ID)
			count++
		}
	}

	log.Printf("本次对账 %d 篇帖子", count)
}
