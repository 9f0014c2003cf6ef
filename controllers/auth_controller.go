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
	"github.com/quietpage/journal/utils"
)

// AuthController handles registration, login and self-service account endpoints.
type AuthController struct {
	db *config.Database
}

// NewAuthController creates an AuthController.
func NewAuthController(db *config.Database) *AuthController {
	return &AuthController{db: db}
}

// Register creates a local account with a bcrypt-hashed password and
// issues a full-claim session token, the same shape Login issues.
func (a *AuthController) Register(ctx *gin.Context) {
	type request struct {
		Username        string `json:"username" binding:"required,min=3,max=64"`
		Password        string `json:"password" binding:"required,min=6"`
		ConfirmPassword string `json:"confirmPassword" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "username, password and confirmPassword are required")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		utils.Error(ctx, http.StatusBadRequest, 40002, "username cannot be empty")
		return
	}

	if req.Password != req.ConfirmPassword {
		utils.Error(ctx, http.StatusBadRequest, 40003, "passwords do not match")
		return
	}

	var count int64
	if err := a.db.Gorm().Model(&models.User{}).Where("username = ?", req.Username).Count(&count).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to check username")
		return
	}
	if count > 0 {
		utils.Error(ctx, http.StatusConflict, 40901, "username already exists")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50002, "failed to hash password")
		return
	}

	user := models.User{
		Username:     req.Username,
		PasswordHash: hash,
		Role:         models.RoleUser,
	}
	if err := a.db.Gorm().Create(&user).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50003, "failed to create user")
		return
	}

	token, err := utils.GenerateToken(&user)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to generate token")
		return
	}

	utils.Created(ctx, gin.H{
		"token": token,
		"user":  userPayload(&user),
	})
}

// Login verifies credentials and issues a session token. Unknown
// usernames and wrong passwords produce the same response to prevent
// user enumeration.
func (a *AuthController) Login(ctx *gin.Context) {
	type request struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40004, "invalid request payload")
		return
	}

	var user models.User
	if err := a.db.Gorm().Where("username = ?", req.Username).First(&user).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusInternalServerError, 50005, "failed to load user")
			return
		}
		utils.Error(ctx, http.StatusBadRequest, 40005, "Invalid credentials")
		return
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusBadRequest, 40005, "Invalid credentials")
		return
	}

	token, err := utils.GenerateToken(&user)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to generate token")
		return
	}

	utils.Success(ctx, gin.H{
		"token": token,
		"user":  userPayload(&user),
	})
}

// Me returns the authenticated user's profile.
func (a *AuthController) Me(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}
	utils.Success(ctx, userPayload(user))
}

// Verify confirms the bearer token is still valid and echoes the live user.
func (a *AuthController) Verify(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}
	utils.Success(ctx, gin.H{"user": userPayload(user)})
}

// ChangePassword rotates the authenticated user's password and stamps
// PasswordChangedAt, which invalidates every previously issued token.
func (a *AuthController) ChangePassword(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	type request struct {
		CurrentPassword string `json:"currentPassword" binding:"required"`
		NewPassword     string `json:"newPassword" binding:"required"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40006, "currentPassword and newPassword are required")
		return
	}

	if !utils.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		utils.Error(ctx, http.StatusBadRequest, 40007, "current password is incorrect")
		return
	}
	if req.NewPassword == req.CurrentPassword {
		utils.Error(ctx, http.StatusBadRequest, 40008, "new password must differ from the current one")
		return
	}
	if !utils.PasswordStrongEnough(req.NewPassword, user.Username) {
		utils.Error(ctx, http.StatusBadRequest, 40009, "new password is too weak")
		return
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50002, "failed to hash password")
		return
	}

	now := time.Now()
	updates := map[string]interface{}{
		"password_hash":       hash,
		"password_changed_at": now,
	}
	if err := a.db.Gorm().Model(user).Updates(updates).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50006, "failed to update password")
		return
	}

	utils.Success(ctx, gin.H{"message": "password changed, please log in again"})
}

// userPayload is the public user shape shared by all endpoints.
func userPayload(user *models.User) gin.H {
	return gin.H{
		"id":           user.ID,
		"username":     user.Username,
		"display_name": user.DisplayName,
		"role":         user.Role,
		"created_at":   user.CreatedAt,
	}
}
