package services

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"
)

type MailService struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	Enabled  bool
}

func NewMailService() *MailService {
	host := os.Getenv("SMTP_HOST")
	port := os.Getenv("SMTP_PORT")
	user := os.Getenv("SMTP_USER")
	pass := os.Getenv("SMTP_PASS")
	from := os.Getenv("SMTP_FROM")

	enabled := host != "" && port != "" && user != "" && pass != "" && from != ""
	if !enabled {
		log.Println("⚠️ MailService disabled: Missing SMTP environment variables.")
	}

	return &MailService{
		Host:     host,
		Port:     port,
		Username: user,
		Password: pass,
		From:     from,
		Enabled:  enabled,
	}
}

func (s *MailService) sendAsync(to []string, subject string, body string) {
	if !s.Enabled {
		return
	}

	go func() {
		auth := smtp.PlainAuth("", s.Username, s.Password, s.Host)
		addr := fmt.Sprintf("%s:%s", s.Host, s.Port)

		mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
		msg := []byte(fmt.Sprintf("To: %s\r\n"+
			"From: Commune 通讯员 <%s>\r\n"+
			"Subject: %s\r\n"+
			"%s\r\n%s", strings.Join(to, ","), s.From, subject, mime, body))

		err := smtp.SendMail(addr, auth, s.From, to, msg)
		if err != nil {
			log.Printf("❌ Failed to send email to %v: %v", to, err)
		} else {
			log.Printf("✅ Email sent to %v: %s", to, subject)
		}
	}()
}

// SendWelcomeEmail 发送注册激活邮件
func (s *MailService) SendWelcomeEmail(to, code string) {
	body := fmt.Sprintf(`
		<div style="max-width:560px;margin:0 auto;font-family:sans-serif;color:#333;">
			<h2>欢迎加入 Commune 👋</h2>
			<p>你的激活码是：</p>
			<p style="font-size:28px;font-weight:bold;letter-spacing:4px;">%s</p>
			<p>登录后在激活页面填入即可。如果不是你本人注册，忽略这封邮件就好。</p>
		</div>`, code)
	s.sendAsync([]string{to}, "Commune 账号激活", body)
}

// SendReplyNotification 发送评论被回复的邮件提醒
func (s *MailService) SendReplyNotification(to, actorName, postTitle, replyContent, originalContent, link string) {
	body := fmt.Sprintf(`
		<div style="max-width:560px;margin:0 auto;font-family:sans-serif;color:#333;">
			<p><b>%s</b> 在《%s》中回复了你：</p>
			<blockquote style="border-left:3px solid #ddd;margin:8px 0;padding:4px 12px;color:#666;">%s</blockquote>
			<p>你的原评论：</p>
			<blockquote style="border-left:3px solid #ddd;margin:8px 0;padding:4px 12px;color:#999;">%s</blockquote>
			<p><a href="%s">点此查看对话</a></p>
		</div>`, actorName, postTitle, replyContent, originalContent, link)
	s.sendAsync([]string{to}, fmt.Sprintf("%s 回复了你的评论", actorName), body)
}
