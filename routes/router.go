package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ShivamG1979/Blog-Post-Api/config"
	"github.com/ShivamG1979/Blog-Post-Api/controllers"
	"github.com/ShivamG1979/Blog-Post-Api/middleware"
	"github.com/ShivamG1979/Blog-Post-Api/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, uploader utils.MediaUploader) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Auth", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	userController := controllers.NewUserController(db)
	postController := controllers.NewPostController(db)
	reactionController := controllers.NewReactionController(db)
	commentController := controllers.NewCommentController(db)
	uploadController := controllers.NewUploadController(db, uploader)

	authRequired := middleware.AuthRequired(db)

	api := r.Group("/api")

	api.GET("/", func(ctx *gin.Context) {
		utils.SuccessMessage(ctx, "this is home route", nil)
	})

	// Registration and login share the per-IP rate limit.
	api.POST("/register", middleware.RateLimitMiddleware(), userController.Register)
	api.POST("/login", middleware.RateLimitMiddleware(), userController.Login)
	api.GET("/users", userController.ListUsers)
	api.GET("/user/:id", authRequired, userController.GetUser)
	api.GET("/me", authRequired, userController.Me)

	api.POST("/addpost", authRequired, postController.CreatePost)
	api.GET("/posts", postController.ListPosts)
	api.GET("/post/:id", authRequired, postController.GetPost)
	api.PUT("/post/:id", authRequired, postController.UpdatePost)
	api.DELETE("/post/:id", authRequired, postController.DeletePost)

	api.POST("/post/like/:id", authRequired, reactionController.Like)
	api.DELETE("/post/like/:id", authRequired, reactionController.Unlike)

	api.POST("/post/comment/:id", authRequired, commentController.Add)
	api.GET("/post/comment/:id", authRequired, commentController.ListByPost)

	api.POST("/upload", uploadController.UploadFile)
	api.POST("/post/upload-image/:id", authRequired, uploadController.UploadPostImage)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
