package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/quietpage/journal/config"
	"github.com/quietpage/journal/controllers"
	"github.com/quietpage/journal/middleware"
	"github.com/quietpage/journal/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *config.Database) *gin.Engine {
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
	r.Use(middleware.RequestID())

	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	// Readiness-gated health: fails until the store is reachable.
	r.GET("/health", func(ctx *gin.Context) {
		if !db.Ready() {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"ok": false})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"ok": true})
	})

	authController := controllers.NewAuthController(db)
	postController := controllers.NewPostController(db)
	commentController := controllers.NewCommentController(db)
	userController := controllers.NewUserController(db)

	api := r.Group("/api")
	api.Use(middleware.RequireReady(db))

	authRequired := middleware.AuthRequired(db)

	authGroup := api.Group("/auth")
	authGroup.POST("/register", middleware.AuthRateLimit("register"), authController.Register)
	authGroup.POST("/login", middleware.AuthRateLimit("login"), authController.Login)
	authGroup.GET("/me", authRequired, authController.Me)
	authGroup.GET("/verify", authRequired, authController.Verify)
	authGroup.PUT("/change-password", middleware.AuthRateLimit("change-password"), authRequired, authController.ChangePassword)

	postsGroup := api.Group("/posts")
	postsGroup.GET("", postController.ListPosts)
	postsGroup.GET("/:id", postController.GetPost)
	postsGroup.POST("", authRequired, middleware.RateLimitMiddleware(), postController.CreatePost)

	// The :id segment is the post id for listings and the comment id for
	// moderation; Gin requires a single wildcard name per position.
	commentsGroup := api.Group("/comments")
	commentsGroup.GET("/:id/root", commentController.ListRoot)
	commentsGroup.GET("/:id/replies", commentController.ListReplies)
	commentsGroup.POST("", authRequired, middleware.RateLimitMiddleware(), commentController.CreateComment)
	commentsGroup.PATCH("/:id/hide", authRequired, middleware.RateLimitMiddleware(), commentController.HideComment)
	commentsGroup.DELETE("/:id", authRequired, middleware.RateLimitMiddleware(), commentController.DeleteComment)

	usersGroup := api.Group("/users")
	usersGroup.Use(authRequired, middleware.RateLimitMiddleware())
	usersGroup.GET("", userController.ListUsers)
	usersGroup.PUT("/:id/display-name", userController.UpdateDisplayName)
	usersGroup.PUT("/:id/role", userController.UpdateRole)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		ctx.JSON(http.StatusNotFound, gin.H{"message": "not found"})
	})

	return r
}
