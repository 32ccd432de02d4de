package handlers

import (
	"net/http"

	"tastebook/backend/internal/auth"
	"tastebook/backend/internal/database"
	"tastebook/backend/internal/models"
	tblog "tastebook/backend/pkg/log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterForm struct {
	Username        string `form:"username" json:"username" binding:"required,min=2,max=20"`
	Email           string `form:"email" json:"email" binding:"required,email"`
	Password        string `form:"password" json:"password" binding:"required,min=6"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password" binding:"required,eqfield=Password"`
}

// RegisterPageHandler renders the registration form.
func RegisterPageHandler(c *gin.Context) {
	render(c, http.StatusOK, "register.html", gin.H{"Title": "Register", "Form": RegisterForm{}})
}

// RegisterHandler creates a new account. Duplicate username or email is a
// validation error rendered back into the form; the password is stored only
// as a bcrypt hash.
func RegisterHandler(c *gin.Context) {
	var form RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		render(c, http.StatusBadRequest, "register.html", gin.H{
			"Title": "Register",
			"Error": "Please check the form: " + err.Error(),
			"Form":  form,
		})
		return
	}

	db := database.GetDB()

	var count int64
	if err := db.Model(&models.User{}).Where("username = ?", form.Username).Count(&count).Error; err == nil && count > 0 {
		render(c, http.StatusBadRequest, "register.html", gin.H{
			"Title": "Register",
			"Error": "That username is taken. Please choose a different one.",
			"Form":  form,
		})
		return
	}
	if err := db.Model(&models.User{}).Where("email = ?", form.Email).Count(&count).Error; err == nil && count > 0 {
		render(c, http.StatusBadRequest, "register.html", gin.H{
			"Title": "Register",
			"Error": "That email is taken. Please choose a different one.",
			"Form":  form,
		})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		tblog.L.Error("Failed to hash password", zap.Error(err))
		render(c, http.StatusInternalServerError, "register.html", gin.H{
			"Title": "Register",
			"Error": "Could not create your account. Please try again.",
			"Form":  form,
		})
		return
	}

	user := models.User{
		Username:     form.Username,
		Email:        form.Email,
		PasswordHash: string(hashedPassword),
	}
	if err := db.Create(&user).Error; err != nil {
		// The unique indexes catch races the pre-checks missed.
		render(c, http.StatusBadRequest, "register.html", gin.H{
			"Title": "Register",
			"Error": "That username or email is taken. Please choose a different one.",
			"Form":  form,
		})
		return
	}

	SetFlash(c, "success", "Your account has been created! You are now able to log in")
	c.Redirect(http.StatusFound, "/login")
}

type LoginForm struct {
	Email    string `form:"email" json:"email" binding:"required,email"`
	Password string `form:"password" json:"password" binding:"required"`
}

// LoginPageHandler renders the login form.
func LoginPageHandler(c *gin.Context) {
	render(c, http.StatusOK, "login.html", gin.H{"Title": "Login", "Next": c.Query("next")})
}

// LoginHandler verifies credentials and establishes a session. The failure
// message is the same for unknown email and wrong password so accounts
// cannot be enumerated.
func LoginHandler(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		render(c, http.StatusBadRequest, "login.html", gin.H{
			"Title": "Login",
			"Error": "Please check the form: " + err.Error(),
		})
		return
	}

	db := database.GetDB()
	var user models.User
	err := db.Where("email = ?", form.Email).First(&user).Error
	if err == nil {
		err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(form.Password))
	}
	if err != nil {
		if err != gorm.ErrRecordNotFound && err != bcrypt.ErrMismatchedHashAndPassword {
			tblog.L.Error("Login lookup failed", zap.Error(err))
		}
		render(c, http.StatusUnauthorized, "login.html", gin.H{
			"Title": "Login",
			"Error": "Login unsuccessful. Please check email and password",
		})
		return
	}

	tokenString, err := auth.GenerateToken(&user)
	if err != nil {
		tblog.L.Error("Failed to generate session token", zap.Error(err))
		render(c, http.StatusInternalServerError, "login.html", gin.H{
			"Title": "Login",
			"Error": "Could not log you in. Please try again.",
		})
		return
	}

	auth.SetSessionCookie(c, tokenString)
	c.Redirect(http.StatusFound, safeNext(c.DefaultPostForm("next", c.Query("next"))))
}

// LogoutHandler invalidates the session.
func LogoutHandler(c *gin.Context) {
	auth.ClearSessionCookie(c)
	c.Redirect(http.StatusFound, "/home")
}
