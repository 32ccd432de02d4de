package handlers

import (
	"net/http"

	"tastebook/backend/internal/auth"
	"tastebook/backend/internal/database"
	"tastebook/backend/internal/models"
	"tastebook/backend/internal/notifications"
	tblog "tastebook/backend/pkg/log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type ResetRequestForm struct {
	Email string `form:"email" json:"email" binding:"required,email"`
}

type ResetPasswordForm struct {
	Password        string `form:"password" json:"password" binding:"required,min=6"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password" binding:"required,eqfield=Password"`
}

// ResetRequestPageHandler renders the form that asks for an email address.
func ResetRequestPageHandler(c *gin.Context) {
	render(c, http.StatusOK, "reset_request.html", gin.H{"Title": "Reset Password"})
}

// ResetRequestHandler issues a reset token for a known email. The response
// is the same whether the email exists or not, but a failed email send for
// a known account is reported so the user does not wait for a message that
// will never arrive.
func ResetRequestHandler(c *gin.Context) {
	var form ResetRequestForm
	if err := c.ShouldBind(&form); err != nil {
		render(c, http.StatusBadRequest, "reset_request.html", gin.H{
			"Title": "Reset Password",
			"Error": "Please check the form: " + err.Error(),
		})
		return
	}

	db := database.GetDB()
	var user models.User
	err := db.Where("email = ?", form.Email).First(&user).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			tblog.L.Error("Reset request lookup failed", zap.Error(err))
		}
		// Same outcome as the success path so accounts cannot be enumerated.
		SetFlash(c, "info", "An email has been sent with instructions to reset your password.")
		c.Redirect(http.StatusFound, "/login")
		return
	}

	token, jti, expiresAt, err := auth.GenerateResetToken(user.ID)
	if err != nil {
		tblog.L.Error("Failed to generate reset token", zap.Error(err))
		render(c, http.StatusInternalServerError, "reset_request.html", gin.H{
			"Title": "Reset Password",
			"Error": "Could not start the password reset. Please try again.",
		})
		return
	}

	record := models.PasswordResetToken{JTI: jti, UserID: user.ID, ExpiresAt: expiresAt}
	if err := db.Create(&record).Error; err != nil {
		tblog.L.Error("Failed to persist reset token", zap.Error(err))
		render(c, http.StatusInternalServerError, "reset_request.html", gin.H{
			"Title": "Reset Password",
			"Error": "Could not start the password reset. Please try again.",
		})
		return
	}

	if err := notifications.SendPasswordResetEmail(c.Request.Context(), &user, token); err != nil {
		tblog.L.Error("Failed to send reset email", zap.Error(err), zap.String("user_id", user.ID.String()))
		render(c, http.StatusInternalServerError, "reset_request.html", gin.H{
			"Title": "Reset Password",
			"Error": "The reset email could not be sent. Please try again later.",
		})
		return
	}

	SetFlash(c, "info", "An email has been sent with instructions to reset your password.")
	c.Redirect(http.StatusFound, "/login")
}

// consumableResetClaims validates the token signature and expiry, then
// checks that its JTI is still unspent. It does not consume the token.
func consumableResetClaims(c *gin.Context) (*auth.ResetClaims, bool) {
	claims, err := auth.VerifyResetToken(c.Param("token"))
	if err != nil {
		SetFlash(c, "warning", "That is an invalid or expired token")
		c.Redirect(http.StatusFound, "/reset_password")
		return nil, false
	}

	var record models.PasswordResetToken
	err = database.GetDB().Where("jti = ?", claims.ID).First(&record).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			tblog.L.Error("Reset token lookup failed", zap.Error(err))
		}
		SetFlash(c, "warning", "That is an invalid or expired token")
		c.Redirect(http.StatusFound, "/reset_password")
		return nil, false
	}
	return claims, true
}

// ResetPasswordPageHandler renders the new-password form if the token is
// still valid and unused.
func ResetPasswordPageHandler(c *gin.Context) {
	if _, ok := consumableResetClaims(c); !ok {
		return
	}
	render(c, http.StatusOK, "reset_token.html", gin.H{"Title": "Reset Password"})
}

// ResetPasswordHandler sets the new password and consumes the token so it
// cannot be replayed.
func ResetPasswordHandler(c *gin.Context) {
	claims, ok := consumableResetClaims(c)
	if !ok {
		return
	}

	var form ResetPasswordForm
	if err := c.ShouldBind(&form); err != nil {
		render(c, http.StatusBadRequest, "reset_token.html", gin.H{
			"Title": "Reset Password",
			"Error": "Please check the form: " + err.Error(),
		})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		tblog.L.Error("Failed to hash password", zap.Error(err))
		render(c, http.StatusInternalServerError, "reset_token.html", gin.H{
			"Title": "Reset Password",
			"Error": "Could not reset your password. Please try again.",
		})
		return
	}

	db := database.GetDB()
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", claims.UserID).
			Update("password_hash", string(hashedPassword)).Error; err != nil {
			return err
		}
		return tx.Where("jti = ?", claims.ID).Delete(&models.PasswordResetToken{}).Error
	})
	if err != nil {
		tblog.L.Error("Failed to reset password", zap.Error(err))
		render(c, http.StatusInternalServerError, "reset_token.html", gin.H{
			"Title": "Reset Password",
			"Error": "Could not reset your password. Please try again.",
		})
		return
	}

	SetFlash(c, "success", "Your password has been updated! You are now able to log in")
	c.Redirect(http.StatusFound, "/login")
}
