package db

import (
	"commune/internal/models"
	"log"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		// Fallback for local dev if not set
		dsn = "host=localhost user=postgres password=postgres dbname=commune port=5432 sslmode=disable TimeZone=Asia/Shanghai"
	}

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Database connection established")

	// Auto Migrate
	err = DB.AutoMigrate(
		&models.User{},
		&models.Community{},
		&models.Post{},
		&models.Comment{},
		&models.Vote{},
		&models.Favorite{},
		&models.Feed{},
		&models.FeedCommunity{},
		&models.Notification{},
		&models.KarmaLog{},
	)
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed")

	// Seed initial communities
	seedCommunities()
}

func seedCommunities() {
	// 检查是否已有社区数据
	var count int64
	DB.Model(&models.Community{}).Count(&count)
	if count > 0 {
		log.Println("Communities already seeded, skipping")
		return
	}

	// 创建预设社区
	communities := []models.Community{
		{Name: "tech", Title: "技术", Description: "技术相关的讨论和分享"},
		{Name: "news", Title: "资讯", Description: "科技与行业新闻"},
		{Name: "showcase", Title: "展示", Description: "作品展示、项目分享"},
		{Name: "chat", Title: "闲聊", Description: "随便聊聊"},
	}

	for _, community := range communities {
		if err := DB.Create(&community).Error; err != nil {
			log.Printf("Failed to create community %s: %v", community.Name, err)
		}
	}
	log.Println("Initial communities created successfully")
}
