package handlers

import (
	"net/http"

	"tastebook/backend/internal/auth"
	"tastebook/backend/internal/database"
	"tastebook/backend/internal/filestorage"
	"tastebook/backend/internal/imaging"
	"tastebook/backend/internal/models"
	tblog "tastebook/backend/pkg/log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AccountForm struct {
	Username string `form:"username" json:"username" binding:"required,min=2,max=20"`
	Email    string `form:"email" json:"email" binding:"required,email"`
}

// AccountPageHandler renders the account page with the current profile values.
func AccountPageHandler(c *gin.Context) {
	userID, ok := auth.CurrentUserID(c)
	if !ok {
		notFound(c)
		return
	}

	var user models.User
	if err := database.GetDB().First(&user, "id = ?", userID).Error; err != nil {
		notFound(c)
		return
	}

	render(c, http.StatusOK, "account.html", gin.H{
		"Title":     "Account",
		"User":      user,
		"ImageFile": filestorage.DefaultProvider.URL("profile_pics/" + user.ImageFile),
	})
}

// UpdateAccountHandler updates username, email and optionally the profile
// picture. A failed picture ingest leaves the stored reference untouched.
func UpdateAccountHandler(c *gin.Context) {
	userID, ok := auth.CurrentUserID(c)
	if !ok {
		notFound(c)
		return
	}

	db := database.GetDB()
	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		notFound(c)
		return
	}

	var form AccountForm
	if err := c.ShouldBind(&form); err != nil {
		render(c, http.StatusBadRequest, "account.html", gin.H{
			"Title":     "Account",
			"User":      user,
			"ImageFile": filestorage.DefaultProvider.URL("profile_pics/" + user.ImageFile),
			"Error":     "Please check the form: " + err.Error(),
		})
		return
	}

	var count int64
	if form.Username != user.Username {
		if err := db.Model(&models.User{}).Where("username = ? AND id <> ?", form.Username, user.ID).Count(&count).Error; err == nil && count > 0 {
			render(c, http.StatusBadRequest, "account.html", gin.H{
				"Title":     "Account",
				"User":      user,
				"ImageFile": filestorage.DefaultProvider.URL("profile_pics/" + user.ImageFile),
				"Error":     "That username is taken. Please choose a different one.",
			})
			return
		}
	}
	if form.Email != user.Email {
		if err := db.Model(&models.User{}).Where("email = ? AND id <> ?", form.Email, user.ID).Count(&count).Error; err == nil && count > 0 {
			render(c, http.StatusBadRequest, "account.html", gin.H{
				"Title":     "Account",
				"User":      user,
				"ImageFile": filestorage.DefaultProvider.URL("profile_pics/" + user.ImageFile),
				"Error":     "That email is taken. Please choose a different one.",
			})
			return
		}
	}

	if fileHeader, err := c.FormFile("picture"); err == nil && fileHeader != nil {
		file, err := fileHeader.Open()
		if err != nil {
			tblog.L.Error("Failed to open uploaded picture", zap.Error(err))
			render(c, http.StatusBadRequest, "account.html", gin.H{
				"Title":     "Account",
				"User":      user,
				"ImageFile": filestorage.DefaultProvider.URL("profile_pics/" + user.ImageFile),
				"Error":     "Could not read the uploaded picture.",
			})
			return
		}
		defer file.Close()

		filename, err := imaging.Ingest(c.Request.Context(), filestorage.DefaultProvider, "profile_pics", fileHeader.Filename, file)
		if err != nil {
			render(c, http.StatusBadRequest, "account.html", gin.H{
				"Title":     "Account",
				"User":      user,
				"ImageFile": filestorage.DefaultProvider.URL("profile_pics/" + user.ImageFile),
				"Error":     "The uploaded file is not a valid image.",
			})
			return
		}
		user.ImageFile = filename
	}

	user.Username = form.Username
	user.Email = form.Email
	if err := db.Save(&user).Error; err != nil {
		tblog.L.Error("Failed to update account", zap.Error(err))
		render(c, http.StatusInternalServerError, "account.html", gin.H{
			"Title":     "Account",
			"User":      user,
			"ImageFile": filestorage.DefaultProvider.URL("profile_pics/" + user.ImageFile),
			"Error":     "Could not update your account. Please try again.",
		})
		return
	}

	SetFlash(c, "success", "Your account has been updated!")
	c.Redirect(http.StatusFound, "/account")
}
