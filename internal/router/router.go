package router

import (
	"html/template"
	"net/http"
	"time"

	"tastebook/backend/internal/auth"
	"tastebook/backend/internal/database"
	"tastebook/backend/internal/handlers"
	tbmiddleware "tastebook/backend/internal/middleware"
	"tastebook/backend/pkg/config"
	tblog "tastebook/backend/pkg/log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// SetupRouter configures and returns a Gin engine with all routes wired.
func SetupRouter(log *zap.Logger) *gin.Engine {
	router := gin.New()

	router.Use(tbmiddleware.Metrics())
	router.Use(tbmiddleware.GinZap(log, time.RFC3339, true))
	router.Use(tbmiddleware.GinRecovery(log, true))

	router.SetFuncMap(template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
	})
	router.LoadHTMLGlob("web/templates/*.html")

	// Uploaded images are only served directly when stored on local disk;
	// the other providers hand out absolute URLs.
	if config.Cfg.FileStorageProvider == "local" {
		router.Static("/static", config.Cfg.StaticDir)
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", healthCheckHandler)

	setupPublicRoutes(router)
	setupSessionRoutes(router)
	setupProtectedRoutes(router)

	return router
}

func healthCheckHandler(c *gin.Context) {
	sqlDB, err := database.GetDB().DB()
	if err != nil {
		tblog.L.Error("Failed to obtain DB instance for health check", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "message": "database instance error"})
		return
	}
	if err := sqlDB.Ping(); err != nil {
		tblog.L.Error("Database ping failed during health check", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "message": "database ping failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "connected"})
}

func setupPublicRoutes(r *gin.Engine) {
	public := r.Group("/")
	public.Use(auth.OptionalAuth())
	{
		public.GET("/", handlers.HomeHandler)
		public.GET("/home", handlers.HomeHandler)
		public.GET("/about", handlers.AboutHandler)
		public.GET("/post/:post_id", handlers.PostDetailHandler)
		public.GET("/user/:username", handlers.UserPostsHandler)
	}
}

func setupSessionRoutes(r *gin.Engine) {
	session := r.Group("/")
	session.Use(auth.OptionalAuth(), auth.AnonymousOnly())
	{
		session.GET("/register", handlers.RegisterPageHandler)
		session.POST("/register", handlers.RegisterHandler)
		session.GET("/login", handlers.LoginPageHandler)
		session.POST("/login", handlers.LoginHandler)
		session.GET("/reset_password", handlers.ResetRequestPageHandler)
		session.POST("/reset_password", handlers.ResetRequestHandler)
		session.GET("/reset_password/:token", handlers.ResetPasswordPageHandler)
		session.POST("/reset_password/:token", handlers.ResetPasswordHandler)
	}
	r.GET("/logout", auth.OptionalAuth(), handlers.LogoutHandler)
}

func setupProtectedRoutes(r *gin.Engine) {
	protected := r.Group("/")
	protected.Use(auth.RequireAuth())
	{
		protected.GET("/account", handlers.AccountPageHandler)
		protected.POST("/account", handlers.UpdateAccountHandler)
		protected.GET("/post/new", handlers.NewPostPageHandler)
		protected.POST("/post/new", handlers.CreatePostHandler)
		protected.GET("/post/:post_id/update", handlers.EditPostPageHandler)
		protected.POST("/post/:post_id/update", handlers.UpdatePostHandler)
		protected.PUT("/post/:post_id/update", handlers.UpdatePostHandler)
		protected.POST("/post/:post_id/delete", handlers.DeletePostHandler)
	}
}
