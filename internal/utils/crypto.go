package utils

import (
	"math/rand"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword 生成 bcrypt 密码哈希
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash 校验明文密码与哈希是否匹配
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

const idLetterBytes = "abcdefghijklmnopqrstuvwxyz0123456789"
const (
	idxBits = 6
	idxMask = 1<<idxBits - 1
	idxMax  = 63 / idxBits
)

// RandPublicID 生成短随机公开 ID（用于 Pid/Cid/Fid，避免暴露自增主键）
func RandPublicID(n int) string {
	b := make([]byte, n)
	for i, cache, remain := n-1, rand.Int63(), idxMax; i >= 0; {
		if remain == 0 {
			cache, remain = rand.Int63(), idxMax
		}
		if idx := int(cache & idxMask); idx < len(idLetterBytes) {
			b[i] = idLetterBytes[idx]
			i--
		}
		cache >>= idxBits
		remain--
	}
	return string(b)
}

// GenerateRandomCode 生成 n 位数字验证码
func GenerateRandomCode(n int) string {
	const digits = "0123456789"
	b := make([]byte, n)
	for i := range b {
		b[i] = digits[rand.Intn(len(digits))]
	}
	return string(b)
}
