package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/quietpage/journal/config"
	"github.com/quietpage/journal/middleware"
	"github.com/quietpage/journal/models"
	"github.com/quietpage/journal/policy"
	"github.com/quietpage/journal/utils"
)

// CommentController manages threaded comments: root comments, one level
// of replies, moderation (hide/unhide) and owner-only cascade deletion.
type CommentController struct {
	db *config.Database
}

// NewCommentController creates a new CommentController instance.
func NewCommentController(db *config.Database) *CommentController {
	return &CommentController{db: db}
}

// ListRoot returns the paginated root comments of a post, ascending by
// creation time. Hidden comments are filtered out unless the request
// carries a token resolving to a live admin/owner.
func (c *CommentController) ListRoot(ctx *gin.Context) {
	c.listThread(ctx, nil)
}

// ListReplies returns the paginated direct replies of the parent comment
// given in the `parent` query parameter, same visibility rules as ListRoot.
func (c *CommentController) ListReplies(ctx *gin.Context) {
	parentStr := strings.TrimSpace(ctx.Query("parent"))
	if parentStr == "" {
		utils.Error(ctx, http.StatusBadRequest, 40031, "parent is required")
		return
	}
	parentID, err := strconv.ParseUint(parentStr, 10, 32)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40032, "parent must be a comment id")
		return
	}
	parent := uint(parentID)
	c.listThread(ctx, &parent)
}

func (c *CommentController) listThread(ctx *gin.Context, parent *uint) {
	postID := ctx.Param("id")
	page, limit := parsePagination(ctx.Query("page"), ctx.Query("limit"))

	query := c.db.Gorm().Model(&models.Comment{}).Where("post_id = ?", postID)
	if parent == nil {
		query = query.Where("parent_comment_id IS NULL")
	} else {
		query = query.Where("parent_comment_id = ?", *parent)
	}
	if !middleware.PrivilegedViewer(ctx, c.db) {
		query = query.Where("hidden = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to count comments")
		return
	}

	var comments []models.Comment
	if err := query.Preload("User").
		Order("created_at ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&comments).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to list comments")
		return
	}

	utils.Success(ctx, gin.H{
		"items": comments,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// CreateComment adds a comment or reply. The post must exist, and a
// supplied parent must be an existing comment on the same post.
func (c *CommentController) CreateComment(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		PostID        uint   `json:"postId" binding:"required"`
		Content       string `json:"content" binding:"required"`
		ParentComment *uint  `json:"parentComment"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40033, "postId and content are required")
		return
	}

	content := utils.Sanitize(req.Content)
	if strings.TrimSpace(content) == "" {
		utils.Error(ctx, http.StatusBadRequest, 40034, "content cannot be empty")
		return
	}

	var post models.Post
	if err := c.db.Gorm().First(&post, req.PostID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40402, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to load post")
		return
	}

	if req.ParentComment != nil {
		var parent models.Comment
		if err := c.db.Gorm().First(&parent, *req.ParentComment).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.Error(ctx, http.StatusNotFound, 40403, "parent comment not found")
				return
			}
			utils.Error(ctx, http.StatusInternalServerError, 50033, "failed to load parent comment")
			return
		}
		if parent.PostID != post.ID {
			utils.Error(ctx, http.StatusBadRequest, 40035, "parent comment belongs to a different post")
			return
		}
	}

	comment := models.Comment{
		PostID:          post.ID,
		UserID:          user.ID,
		Content:         content,
		ParentCommentID: req.ParentComment,
	}
	if err := c.db.Gorm().Create(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50034, "failed to create comment")
		return
	}
	comment.User = *user

	utils.Created(ctx, gin.H{"comment": comment})
}

// HideComment toggles the hidden flag. Admin/owner only, and admins
// cannot moderate comments authored by the owner. The toggle is
// idempotent per requested value.
func (c *CommentController) HideComment(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		Hidden *bool `json:"hidden" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil || req.Hidden == nil {
		utils.Error(ctx, http.StatusBadRequest, 40036, "hidden must be a boolean")
		return
	}

	var comment models.Comment
	if err := c.db.Gorm().Preload("User").First(&comment, "id = ?", ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40404, "comment not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50035, "failed to load comment")
		return
	}

	if !policy.CanModerateComment(user.Role, comment.User.Role) {
		utils.Error(ctx, http.StatusForbidden, 40330, "not allowed to moderate this comment")
		return
	}

	if err := c.db.Gorm().Model(&comment).Update("hidden", *req.Hidden).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50036, "failed to update comment")
		return
	}

	message := "comment unhidden"
	if *req.Hidden {
		message = "comment hidden"
	}
	utils.Success(ctx, gin.H{"message": message, "comment_id": comment.ID})
}

// DeleteComment removes a comment and its direct replies in one atomic
// statement. Owner only; grandchildren are not cascaded.
func (c *CommentController) DeleteComment(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	if !policy.CanDeleteComment(user.Role) {
		utils.Error(ctx, http.StatusForbidden, 40331, "only the owner can delete comments")
		return
	}

	var comment models.Comment
	if err := c.db.Gorm().First(&comment, "id = ?", ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40404, "comment not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50035, "failed to load comment")
		return
	}

	if err := c.db.Gorm().
		Where("id = ? OR parent_comment_id = ?", comment.ID, comment.ID).
		Delete(&models.Comment{}).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50037, "failed to delete comment")
		return
	}

	utils.Success(ctx, gin.H{"message": "comment and its replies deleted"})
}

func parsePagination(pageStr, limitStr string) (int, int) {
	page := 1
	limit := 10
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
		limit = l
	}
	return page, limit
}
