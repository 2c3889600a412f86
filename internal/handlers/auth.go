package handlers

import (
	"commune/internal/db"
	"commune/internal/models"
	"commune/internal/services"
	"commune/internal/utils"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	mailService    *services.MailService
	captchaService *services.CaptchaService
}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{
		mailService:    services.NewMailService(),
		captchaService: services.NewCaptchaService(),
	}
}

func (h *AuthHandler) ShowRegister(c *gin.Context) {
	question, answer := h.captchaService.GenerateMathProblem()
	session := sessions.Default(c)
	session.Set("captcha_answer", answer)
	session.Save()
	Render(c, http.StatusOK, "auth/register.html", gin.H{"Captcha": question})
}

func (h *AuthHandler) renderRegisterError(c *gin.Context, code int, msg string) {
	question, answer := h.captchaService.GenerateMathProblem()
	session := sessions.Default(c)
	session.Set("captcha_answer", answer)
	session.Save()
	Render(c, code, "auth/register.html", gin.H{"Error": msg, "Captcha": question})
}

func (h *AuthHandler) Register(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")
	captchaInput := c.PostForm("captcha")

	// Validate Captcha
	session := sessions.Default(c)
	expectedAnswer, ok := session.Get("captcha_answer").(int)
	if !ok || utils.StringToInt(captchaInput) != expectedAnswer {
		h.renderRegisterError(c, http.StatusBadRequest, "验证码错误")
		return
	}
	// Clear captcha after use
	session.Delete("captcha_answer")
	session.Save()

	if username == "" {
		h.renderRegisterError(c, http.StatusBadRequest, "用户名不能为空")
		return
	}
	if len(strings.Split(email, "@")) != 2 {
		h.renderRegisterError(c, http.StatusBadRequest, "邮箱格式不正确")
		return
	}
	if len(password) < 6 {
		h.renderRegisterError(c, http.StatusBadRequest, "密码至少6位")
		return
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		h.renderRegisterError(c, http.StatusInternalServerError, "注册失败")
		return
	}

	user := models.User{
		Username: username,
		Email:    email,
		Password: hash,
		Avatar:   utils.GetRandomEmoji(),
	}
	if err := db.DB.Create(&user).Error; err != nil {
		h.renderRegisterError(c, http.StatusConflict, "邮箱已注册")
		return
	}

	// Send Activation Email
	code := utils.GenerateRandomCode(6)
	user.VerifyCode = code
	db.DB.Save(&user)
	h.mailService.SendWelcomeEmail(email, code)

	Render(c, http.StatusOK, "auth/login.html", gin.H{"Success": "注册成功！激活码已发送至您的邮箱，请登录后激活。"})
}

func (h *AuthHandler) ShowActivate(c *gin.Context) {
	Render(c, http.StatusOK, "auth/activate.html", nil)
}

func (h *AuthHandler) Activate(c *gin.Context) {
	email := c.PostForm("email")
	code := c.PostForm("code")

	var user models.User
	if err := db.DB.Where("email = ?", email).First(&user).Error; err != nil {
		Render(c, http.StatusBadRequest, "auth/activate.html", gin.H{"Error": "用户不存在"})
		return
	}

	if user.IsActivated {
		Render(c, http.StatusOK, "auth/login.html", gin.H{"Success": "账号已激活，请登录"})
		return
	}

	if user.VerifyCode == "" || user.VerifyCode != code {
		Render(c, http.StatusBadRequest, "auth/activate.html", gin.H{"Error": "激活码错误"})
		return
	}

	user.IsActivated = true
	user.VerifyCode = "" // 清除验证码
	db.DB.Save(&user)

	// 激活成功后自动登录
	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Save()

	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	Render(c, http.StatusOK, "auth/login.html", nil)
}

func (h *AuthHandler) Login(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")

	var user models.User
	if err := db.DB.Where("email = ?", email).First(&user).Error; err != nil {
		Render(c, http.StatusUnauthorized, "auth/login.html", gin.H{"Error": "邮箱或密码错误"})
		return
	}

	if !utils.CheckPasswordHash(password, user.Password) {
		Render(c, http.StatusUnauthorized, "auth/login.html", gin.H{"Error": "邮箱或密码错误"})
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Save()

	if !user.IsActivated {
		c.Redirect(http.StatusFound, "/activate")
		return
	}

	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.Redirect(http.StatusFound, "/")
}
