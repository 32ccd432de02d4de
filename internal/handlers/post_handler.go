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
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type PostForm struct {
	Title       string `form:"title" json:"title" binding:"required,max=120"`
	Ingredients string `form:"ingredients" json:"ingredients" binding:"required"`
	Steps       string `form:"steps" json:"steps" binding:"required"`
	Time        string `form:"time" json:"time" binding:"max=64"`
	Serves      string `form:"serves" json:"serves" binding:"max=64"`
	Calories    string `form:"calories" json:"calories" binding:"max=64"`
}

// HomeHandler lists posts newest first, six per page. An out-of-range page
// renders an empty list rather than an error.
func HomeHandler(c *gin.Context) {
	page := GetPage(c)

	// Fetch one extra row to know whether a next page exists.
	var posts []models.Post
	err := database.GetDB().
		Preload("Author").
		Order("created_at DESC").
		Offset((page - 1) * HomePageSize).
		Limit(HomePageSize + 1).
		Find(&posts).Error
	if err != nil {
		tblog.L.Error("Failed to list posts", zap.Error(err))
		posts = nil
	}

	hasMore := len(posts) > HomePageSize
	if hasMore {
		posts = posts[:HomePageSize]
	}

	render(c, http.StatusOK, "home.html", gin.H{
		"Title":   "Home",
		"Posts":   posts,
		"Page":    page,
		"HasMore": hasMore,
	})
}

// AboutHandler renders the static about page.
func AboutHandler(c *gin.Context) {
	render(c, http.StatusOK, "about.html", gin.H{"Title": "About"})
}

func findPost(c *gin.Context) (*models.Post, bool) {
	postID, err := uuid.Parse(c.Param("post_id"))
	if err != nil {
		notFound(c)
		return nil, false
	}
	var post models.Post
	if err := database.GetDB().Preload("Author").First(&post, "id = ?", postID).Error; err != nil {
		notFound(c)
		return nil, false
	}
	return &post, true
}

// PostDetailHandler renders a single post.
func PostDetailHandler(c *gin.Context) {
	post, ok := findPost(c)
	if !ok {
		return
	}
	data := gin.H{"Title": post.Title, "Post": post}
	if post.ImageFile != "" {
		data["ImageURL"] = filestorage.DefaultProvider.URL("post_img/" + post.ImageFile)
	}
	render(c, http.StatusOK, "post.html", data)
}

// NewPostPageHandler renders the creation form.
func NewPostPageHandler(c *gin.Context) {
	render(c, http.StatusOK, "create_post.html", gin.H{"Title": "New Post", "Form": PostForm{}})
}

// CreatePostHandler creates a post for the current user. The image is
// optional; if its ingest fails nothing is persisted.
func CreatePostHandler(c *gin.Context) {
	userID, ok := auth.CurrentUserID(c)
	if !ok {
		forbidden(c)
		return
	}

	var form PostForm
	if err := c.ShouldBind(&form); err != nil {
		render(c, http.StatusBadRequest, "create_post.html", gin.H{
			"Title": "New Post",
			"Error": "Please check the form: " + err.Error(),
			"Form":  form,
		})
		return
	}

	var imageFile string
	if fileHeader, err := c.FormFile("image"); err == nil && fileHeader != nil {
		file, err := fileHeader.Open()
		if err != nil {
			tblog.L.Error("Failed to open uploaded image", zap.Error(err))
			render(c, http.StatusBadRequest, "create_post.html", gin.H{
				"Title": "New Post",
				"Error": "Could not read the uploaded image.",
				"Form":  form,
			})
			return
		}
		defer file.Close()

		imageFile, err = imaging.Ingest(c.Request.Context(), filestorage.DefaultProvider, "post_img", fileHeader.Filename, file)
		if err != nil {
			render(c, http.StatusBadRequest, "create_post.html", gin.H{
				"Title": "New Post",
				"Error": "The uploaded file is not a valid image.",
				"Form":  form,
			})
			return
		}
	}

	post := models.Post{
		UserID:      userID,
		Title:       form.Title,
		Ingredients: form.Ingredients,
		Steps:       form.Steps,
		Time:        form.Time,
		Serves:      form.Serves,
		Calories:    form.Calories,
		ImageFile:   imageFile,
	}
	if err := database.GetDB().Create(&post).Error; err != nil {
		tblog.L.Error("Failed to create post", zap.Error(err))
		render(c, http.StatusInternalServerError, "create_post.html", gin.H{
			"Title": "New Post",
			"Error": "Could not create the post. Please try again.",
			"Form":  form,
		})
		return
	}

	SetFlash(c, "success", "Your post has been created!")
	c.Redirect(http.StatusFound, "/post/"+post.ID.String())
}

// EditPostPageHandler renders the edit form for the post's owner.
func EditPostPageHandler(c *gin.Context) {
	post, ok := findPost(c)
	if !ok {
		return
	}
	userID, ok := auth.CurrentUserID(c)
	if !ok || !auth.CanMutate(userID, post.UserID) {
		forbidden(c)
		return
	}
	render(c, http.StatusOK, "edit_post.html", gin.H{"Title": "Update Post", "Post": post})
}

// UpdatePostHandler replaces a post's fields. JSON clients get a JSON
// acknowledgement; form clients are redirected back to the post. Only the
// owner may update.
func UpdatePostHandler(c *gin.Context) {
	post, ok := findPost(c)
	if !ok {
		return
	}
	userID, ok := auth.CurrentUserID(c)
	if !ok || !auth.CanMutate(userID, post.UserID) {
		forbidden(c)
		return
	}

	var form PostForm
	if err := c.ShouldBind(&form); err != nil {
		if wantsJSON(c) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload: " + err.Error()})
			return
		}
		render(c, http.StatusBadRequest, "edit_post.html", gin.H{
			"Title": "Update Post",
			"Post":  post,
			"Error": "Please check the form: " + err.Error(),
		})
		return
	}

	updates := map[string]interface{}{
		"title":       form.Title,
		"ingredients": form.Ingredients,
		"steps":       form.Steps,
		"time":        form.Time,
		"serves":      form.Serves,
		"calories":    form.Calories,
	}
	if err := database.GetDB().Model(post).Updates(updates).Error; err != nil {
		tblog.L.Error("Failed to update post", zap.Error(err), zap.String("post_id", post.ID.String()))
		if wantsJSON(c) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update the post"})
			return
		}
		render(c, http.StatusInternalServerError, "edit_post.html", gin.H{
			"Title": "Update Post",
			"Post":  post,
			"Error": "Could not update the post. Please try again.",
		})
		return
	}

	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}
	SetFlash(c, "success", "Your post has been updated!")
	c.Redirect(http.StatusFound, "/post/"+post.ID.String())
}

// DeletePostHandler removes a post. Only the owner may delete.
func DeletePostHandler(c *gin.Context) {
	post, ok := findPost(c)
	if !ok {
		return
	}
	userID, ok := auth.CurrentUserID(c)
	if !ok || !auth.CanMutate(userID, post.UserID) {
		forbidden(c)
		return
	}

	if err := database.GetDB().Delete(post).Error; err != nil {
		tblog.L.Error("Failed to delete post", zap.Error(err), zap.String("post_id", post.ID.String()))
		if wantsJSON(c) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete the post"})
			return
		}
		SetFlash(c, "danger", "Could not delete the post. Please try again.")
		c.Redirect(http.StatusFound, "/post/"+post.ID.String())
		return
	}

	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}
	SetFlash(c, "success", "Your post has been deleted!")
	c.Redirect(http.StatusFound, "/home")
}

// UserPostsHandler lists one author's posts, five per page.
func UserPostsHandler(c *gin.Context) {
	username := c.Param("username")

	db := database.GetDB()
	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			tblog.L.Error("Failed to look up author", zap.Error(err))
		}
		notFound(c)
		return
	}

	page := GetPage(c)
	var posts []models.Post
	err := db.
		Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Offset((page - 1) * AuthorPageSize).
		Limit(AuthorPageSize + 1).
		Find(&posts).Error
	if err != nil {
		tblog.L.Error("Failed to list author posts", zap.Error(err))
		posts = nil
	}

	hasMore := len(posts) > AuthorPageSize
	if hasMore {
		posts = posts[:AuthorPageSize]
	}

	render(c, http.StatusOK, "user_posts.html", gin.H{
		"Title":   user.Username,
		"Author":  user,
		"Posts":   posts,
		"Page":    page,
		"HasMore": hasMore,
	})
}
