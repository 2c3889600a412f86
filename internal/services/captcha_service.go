package services

import (
	"fmt"
	"math/rand"
	"time"
)

type CaptchaService struct {
	rnd *rand.Rand
}

func NewCaptchaService() *CaptchaService {
	return &CaptchaService{
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// GenerateMathProblem returns a display string (e.g. "3 + 5") and the integer answer.
// Usage: Store answer in session, display question to user.
func (s *CaptchaService) GenerateMathProblem() (string, int) {
	a := s.rnd.Intn(10) // 0-9
	b := s.rnd.Intn(10) // 0-9

	switch s.rnd.Intn(3) {
	case 0:
		return fmt.Sprintf("%d + %d", a, b), a + b
	case 1:
		// Ensure positive result for subtraction
		if a < b {
			a, b = b, a
		}
		return fmt.Sprintf("%d - %d", a, b), a - b
	default:
		// Keep products small
		a = s.rnd.Intn(5) + 1
		b = s.rnd.Intn(5) + 1
		return fmt.Sprintf("%d × %d", a, b), a * b
	}
}
