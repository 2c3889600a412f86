package router

import (
	"commune/internal/handlers"
	"commune/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	// Handlers
	authHandler := handlers.NewAuthHandler()
	postHandler := handlers.NewPostHandler()
	commentHandler := handlers.NewCommentHandler()
	voteHandler := handlers.NewVoteHandler()
	userHandler := handlers.NewUserHandler()
	communityHandler := handlers.NewCommunityHandler()
	favoriteHandler := handlers.NewFavoriteHandler()
	feedHandler := handlers.NewFeedHandler()
	notificationHandler := handlers.NewNotificationHandler()

	// 公共路由 (Public Routes)
	r.GET("/", postHandler.ListTop)                    // 首页 - 热门帖子
	r.GET("/new", postHandler.ListNew)                 // 最新帖子
	r.GET("/search", postHandler.Search)               // 搜索页面
	r.GET("/p/:pid", postHandler.Detail)               // 帖子详情页
	r.POST("/p/:pid/summary", postHandler.Summarize)   // 生成/读取帖子摘要
	r.GET("/c/:name", postHandler.ListByCommunity)     // 社区下的帖子列表
	r.GET("/communities", communityHandler.List)       // 所有社区列表
	r.GET("/u/:id", userHandler.Profile)               // 用户主页
	r.GET("/f/:fid", feedHandler.Show)                 // 自定义信息流聚合页

	r.GET("/signup", authHandler.ShowRegister)   // 注册页面
	r.POST("/signup", authHandler.Register)      // 提交注册
	r.GET("/activate", authHandler.ShowActivate) // 激活页面
	r.POST("/activate", authHandler.Activate)    // 提交激活码
	r.GET("/login", authHandler.ShowLogin)       // 登录页面
	r.POST("/login", authHandler.Login)          // 提交登录
	r.GET("/logout", authHandler.Logout)         // 退出登录

	// 受保护路由 (Protected Routes)
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/submit", postHandler.ShowCreate)              // 发帖页面
		authorized.POST("/submit", postHandler.Create)                 // 提交发帖
		authorized.POST("/p/:pid/comment", commentHandler.Create)      // 发表评论/回复
		authorized.POST("/vote/:type/:id/:dir", voteHandler.Toggle)    // 投票（再投撤销，反向翻转）
		authorized.POST("/favorite/:id", favoriteHandler.Toggle)       // 收藏/取消收藏
		authorized.GET("/p/:pid/edit", postHandler.ShowEdit)           // 编辑帖子页面
		authorized.POST("/p/:pid/edit", postHandler.Update)            // 提交帖子更新
		authorized.DELETE("/p/:pid", postHandler.Delete)               // 删除帖子

		authorized.POST("/comment/:cid/edit", commentHandler.Edit)  // 编辑评论
		authorized.DELETE("/comment/:cid", commentHandler.Delete)   // 删除评论（叶子硬删，有回复转墓碑）

		authorized.GET("/communities/new", communityHandler.ShowCreate) // 创建社区页面
		authorized.POST("/communities", communityHandler.Create)        // 提交创建社区

		authorized.POST("/notifications/:id/read", notificationHandler.Read)    // 标记单条通知为已读
		authorized.DELETE("/notifications/:id", notificationHandler.Delete)     // 删除单条通知
		authorized.POST("/notifications/read-all", notificationHandler.ReadAll) // 全部通知标记为已读
	}

	// 自定义信息流路由 (Custom Feed Routes)
	feeds := r.Group("/feeds")
	feeds.Use(middleware.AuthRequired())
	{
		feeds.GET("", feedHandler.Index)                                // 我的信息流列表
		feeds.POST("", feedHandler.Create)                              // 创建信息流
		feeds.DELETE("/:fid", feedHandler.Delete)                       // 删除信息流
		feeds.POST("/:fid/communities", feedHandler.AddCommunity)       // 往信息流里加社区
		feeds.DELETE("/:fid/communities/:cid", feedHandler.RemoveCommunity) // 从信息流里移除社区
	}

	// 仪表盘路由 (Dashboard Routes)
	dashboard := r.Group("/dashboard")
	dashboard.Use(middleware.AuthRequired())
	{
		dashboard.GET("", userHandler.Dashboard)                  // 仪表盘概览
		dashboard.GET("/notifications", notificationHandler.List) // 我的通知列表
		dashboard.GET("/karma", userHandler.KarmaLogs)            // karma 记录
		dashboard.GET("/settings", userHandler.ShowSettings)      // 用户设置页面
		dashboard.POST("/settings", userHandler.UpdateSettings)   // 提交用户设置更新
	}
}
