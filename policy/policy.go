// Package policy holds the role-based authorization rules as pure
// functions over (requester, target, action). Callers are expected to
// pass roles resolved from the store, never roles embedded in a token.
package policy

import (
	"errors"
	"unicode"

	"github.com/quietpage/journal/models"
)

var (
	// ErrRoleNotAllowed is returned when the requested new role is outside {admin, user}.
	ErrRoleNotAllowed = errors.New("role must be admin or user")
	// ErrOwnerImmutable is returned when a role change targets an owner.
	ErrOwnerImmutable = errors.New("owner role cannot be changed")
	// ErrNotOwner is returned when a non-owner attempts an owner-only action.
	ErrNotOwner = errors.New("only the owner may perform this action")
)

// CanCreatePost allows journal entries to be created by the owner only.
func CanCreatePost(requester models.Role) bool {
	return requester == models.RoleOwner
}

// CanChangeRole decides whether requester may assign newRole to a user
// currently holding target. Only the owner changes roles, the new role is
// restricted to admin/user, and an owner's own role is immutable.
func CanChangeRole(requester, target, newRole models.Role) error {
	if requester != models.RoleOwner {
		return ErrNotOwner
	}
	if newRole != models.RoleAdmin && newRole != models.RoleUser {
		return ErrRoleNotAllowed
	}
	if target == models.RoleOwner {
		return ErrOwnerImmutable
	}
	return nil
}

// CanEditDisplayName decides whether requester may change the display
// name of the given target. Self-service is always allowed; admins may
// edit anyone but the owner; the owner may edit anyone except another
// owner.
func CanEditDisplayName(requesterID uint, requester models.Role, targetID uint, target models.Role) bool {
	if requesterID == targetID {
		return true
	}
	if target == models.RoleOwner {
		// Cross-owner edits are denied even owner-to-owner.
		return false
	}
	return requester == models.RoleAdmin || requester == models.RoleOwner
}

// CanModerateComment decides whether requester may hide or unhide a
// comment written by a user holding author. Admins cannot moderate
// owner content.
func CanModerateComment(requester, author models.Role) bool {
	if !requester.Privileged() {
		return false
	}
	if requester == models.RoleAdmin && author == models.RoleOwner {
		return false
	}
	return true
}

// CanDeleteComment allows comment deletion by the owner only.
func CanDeleteComment(requester models.Role) bool {
	return requester == models.RoleOwner
}

// CanListUsers allows the user-management listing for admins and the owner.
func CanListUsers(requester models.Role) bool {
	return requester.Privileged()
}

// ValidateDisplayName rejects empty names and names containing any
// whitespace character. Uniqueness is checked separately at write time.
func ValidateDisplayName(name string) error {
	if name == "" {
		return errors.New("display name cannot be empty")
	}
	for _, r := range name {
		if unicode.IsSpace(r) {
			return errors.New("display name cannot contain whitespace")
		}
	}
	return nil
}
