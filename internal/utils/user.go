package utils

import (
	"math/rand"
	"time"
)

// GetUserLevel 根据 karma 返回用户等级
func GetUserLevel(karma int) (name string, icon string) {
	switch {
	case karma >= 2000:
		return "传说", "🏆"
	case karma >= 500:
		return "老鸟", "🦅"
	case karma >= 100:
		return "常客", "🦉"
	case karma >= 20:
		return "冒泡", "🐣"
	default:
		return "潜水", "🐟"
	}
}

// GetDaysSinceJoined 计算注册天数
func GetDaysSinceJoined(createdAt time.Time) int {
	return int(time.Since(createdAt).Hours() / 24)
}

// GetRandomEmoji 返回一个随机 emoji 用于默认头像
func GetRandomEmoji() string {
	emojis := []string{"🦉", "🦅", "🐣", "🐟", "🦊", "🐼", "🐸", "🐨", "🦫", "🐯", "🐱", "🐶"}
	return emojis[rand.Intn(len(emojis))]
}

// GetCommonEmojis 返回常用 emoji 列表供用户选择
func GetCommonEmojis() []string {
	return []string{
		"🦉", "🦅", "🐣", "🐟", "🦊", "🐼", "🐸", "🐨",
		"🦫", "🐯", "🐱", "🐶", "😀", "😎", "🤓", "🧐",
		"👨‍💻", "👩‍💻", "🧑‍🚀", "🧙", "⭐", "🔥", "🚀", "💎",
	}
}
