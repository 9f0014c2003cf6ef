package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/quietpage/journal/config"
	"github.com/quietpage/journal/middleware"
	"github.com/quietpage/journal/models"
	"github.com/quietpage/journal/policy"
	"github.com/quietpage/journal/utils"
)

// UserController exposes the admin user-management surface: listing
// accounts, display-name edits and role changes.
type UserController struct {
	db *config.Database
}

// NewUserController creates a new UserController instance.
func NewUserController(db *config.Database) *UserController {
	return &UserController{db: db}
}

// ListUsers returns every account. Admin/owner only.
func (u *UserController) ListUsers(ctx *gin.Context) {
	requester, ok := middleware.CurrentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	if !policy.CanListUsers(requester.Role) {
		utils.Error(ctx, http.StatusForbidden, 40340, "access denied")
		return
	}

	var users []models.User
	if err := u.db.Gorm().Order("created_at ASC").Find(&users).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to list users")
		return
	}

	payload := make([]gin.H, 0, len(users))
	for i := range users {
		payload = append(payload, userPayload(&users[i]))
	}
	utils.Success(ctx, payload)
}

// UpdateDisplayName changes a user's display name, subject to the
// policy matrix and exact-match uniqueness across other accounts.
func (u *UserController) UpdateDisplayName(ctx *gin.Context) {
	requester, ok := middleware.CurrentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		NewDisplayName string `json:"newDisplayName" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40041, "newDisplayName is required")
		return
	}
	name := strings.TrimSpace(req.NewDisplayName)
	if err := policy.ValidateDisplayName(name); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40042, err.Error())
		return
	}

	var target models.User
	if err := u.db.Gorm().First(&target, "id = ?", ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40405, "target user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to load user")
		return
	}

	if !policy.CanEditDisplayName(requester.ID, requester.Role, target.ID, target.Role) {
		utils.Error(ctx, http.StatusForbidden, 40341, "not allowed to change this display name")
		return
	}

	// Exact-match collision held by a different account is a conflict;
	// resubmitting the user's own current value is accepted.
	var holder models.User
	err := u.db.Gorm().Where("display_name = ?", name).First(&holder).Error
	switch {
	case err == nil:
		if holder.ID != target.ID {
			utils.Error(ctx, http.StatusConflict, 40902, "display name already in use")
			return
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// free to take
	default:
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to check display name")
		return
	}

	if err := u.db.Gorm().Model(&target).Update("display_name", name).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to update display name")
		return
	}

	utils.Success(ctx, gin.H{"message": "display name updated", "display_name": name})
}

// UpdateRole assigns a new role to a user. Owner only; the new role is
// restricted to admin/user and an owner's role is immutable.
func (u *UserController) UpdateRole(ctx *gin.Context) {
	requester, ok := middleware.CurrentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	// Checked before loading the target so non-owners learn nothing
	// about which user ids exist.
	if requester.Role != models.RoleOwner {
		utils.Error(ctx, http.StatusForbidden, 40342, "only the owner can change roles")
		return
	}

	var req struct {
		NewRole models.Role `json:"newRole" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40043, "newRole is required")
		return
	}

	var target models.User
	if err := u.db.Gorm().First(&target, "id = ?", ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40405, "target user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to load user")
		return
	}

	if err := policy.CanChangeRole(requester.Role, target.Role, req.NewRole); err != nil {
		status := http.StatusForbidden
		code := 40343
		if errors.Is(err, policy.ErrRoleNotAllowed) {
			status = http.StatusBadRequest
			code = 40044
		}
		utils.Error(ctx, status, code, err.Error())
		return
	}

	if err := u.db.Gorm().Model(&target).Update("role", req.NewRole).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50044, "failed to update role")
		return
	}

	utils.Success(ctx, gin.H{"message": "role updated", "new_role": req.NewRole})
}
