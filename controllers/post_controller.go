package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/quietpage/journal/config"
	"github.com/quietpage/journal/middleware"
	"github.com/quietpage/journal/models"
	"github.com/quietpage/journal/policy"
	"github.com/quietpage/journal/utils"
)

// PostController manages journal entries. Entries are created by the
// owner and immutable afterwards, so listings and details cache well.
type PostController struct {
	db *config.Database
}

// NewPostController creates a new PostController instance.
func NewPostController(db *config.Database) *PostController {
	return &PostController{db: db}
}

// ListPosts returns all journal entries, newest first.
func (p *PostController) ListPosts(ctx *gin.Context) {
	const cacheKey = "cache:posts:list"
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var posts []models.Post
	if err := p.db.Gorm().Preload("User").Order("created_at DESC").Find(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to list posts")
		return
	}

	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: posts}
	utils.CacheSetJSON(cacheKey, wrapper, time.Hour)
	utils.Success(ctx, posts)
}

// GetPost returns a single journal entry.
func (p *PostController) GetPost(ctx *gin.Context) {
	postID := ctx.Param("id")

	if b, ok := utils.CacheGetBytes("cache:post:detail:" + postID); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var post models.Post
	if err := p.db.Gorm().Preload("User").First(&post, "id = ?", postID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to load post")
		return
	}

	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: post}
	utils.CacheSetJSON("cache:post:detail:"+postID, wrapper, time.Hour)
	utils.Success(ctx, post)
}

// CreatePost publishes a new journal entry. Owner only.
func (p *PostController) CreatePost(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	if !policy.CanCreatePost(user.Role) {
		utils.Error(ctx, http.StatusForbidden, 40310, "only the owner can create posts")
		return
	}

	var req struct {
		Title   string `json:"title" binding:"required,min=1"`
		Content string `json:"content" binding:"required"`
		Image   string `json:"image"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "title and content are required")
		return
	}

	title := utils.Sanitize(strings.TrimSpace(req.Title))
	if title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40021, "title cannot be empty")
		return
	}
	content := utils.Sanitize(req.Content)
	if strings.TrimSpace(content) == "" {
		utils.Error(ctx, http.StatusBadRequest, 40022, "content cannot be empty")
		return
	}

	post := models.Post{
		UserID:  user.ID,
		Title:   title,
		Content: content,
		Image:   strings.TrimSpace(req.Image),
	}
	if err := p.db.Gorm().Create(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to create post")
		return
	}
	post.User = *user

	utils.InvalidateByPrefix("cache:posts:list")

	utils.Created(ctx, post)
}
