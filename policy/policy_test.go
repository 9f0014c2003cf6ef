package policy

import (
	"testing"

	"github.com/quietpage/journal/models"
)

func TestCanCreatePost(t *testing.T) {
	cases := []struct {
		role models.Role
		want bool
	}{
		{models.RoleUser, false},
		{models.RoleAdmin, false},
		{models.RoleOwner, true},
	}
	for _, c := range cases {
		if got := CanCreatePost(c.role); got != c.want {
			t.Errorf("CanCreatePost(%s) = %v, want %v", c.role, got, c.want)
		}
	}
}

func TestCanChangeRole(t *testing.T) {
	cases := []struct {
		name      string
		requester models.Role
		target    models.Role
		newRole   models.Role
		wantErr   error
	}{
		{"owner promotes user to admin", models.RoleOwner, models.RoleUser, models.RoleAdmin, nil},
		{"owner demotes admin to user", models.RoleOwner, models.RoleAdmin, models.RoleUser, nil},
		{"admin cannot change roles", models.RoleAdmin, models.RoleUser, models.RoleAdmin, ErrNotOwner},
		{"user cannot change roles", models.RoleUser, models.RoleUser, models.RoleAdmin, ErrNotOwner},
		{"owner cannot be assigned", models.RoleOwner, models.RoleUser, models.RoleOwner, ErrRoleNotAllowed},
		{"owner role is immutable", models.RoleOwner, models.RoleOwner, models.RoleUser, ErrOwnerImmutable},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if err := CanChangeRole(c.requester, c.target, c.newRole); err != c.wantErr {
				t.Errorf("got %v, want %v", err, c.wantErr)
			}
		})
	}
}

func TestCanEditDisplayName(t *testing.T) {
	cases := []struct {
		name        string
		requesterID uint
		requester   models.Role
		targetID    uint
		target      models.Role
		want        bool
	}{
		{"self service", 1, models.RoleUser, 1, models.RoleUser, true},
		{"user cannot edit others", 1, models.RoleUser, 2, models.RoleUser, false},
		{"admin edits user", 1, models.RoleAdmin, 2, models.RoleUser, true},
		{"admin edits admin", 1, models.RoleAdmin, 2, models.RoleAdmin, true},
		{"admin cannot edit owner", 1, models.RoleAdmin, 2, models.RoleOwner, false},
		{"owner edits user", 1, models.RoleOwner, 2, models.RoleUser, true},
		{"owner edits self", 1, models.RoleOwner, 1, models.RoleOwner, true},
		{"owner cannot edit another owner", 1, models.RoleOwner, 2, models.RoleOwner, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := CanEditDisplayName(c.requesterID, c.requester, c.targetID, c.target)
			if got != c.want {
				t.Errorf("got %v, want %v", got, c.want)
			}
		})
	}
}

func TestCanModerateComment(t *testing.T) {
	cases := []struct {
		name      string
		requester models.Role
		author    models.Role
		want      bool
	}{
		{"user cannot moderate", models.RoleUser, models.RoleUser, false},
		{"admin hides user comment", models.RoleAdmin, models.RoleUser, true},
		{"admin hides admin comment", models.RoleAdmin, models.RoleAdmin, true},
		{"admin cannot touch owner comment", models.RoleAdmin, models.RoleOwner, false},
		{"owner hides anything", models.RoleOwner, models.RoleOwner, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := CanModerateComment(c.requester, c.author); got != c.want {
				t.Errorf("got %v, want %v", got, c.want)
			}
		})
	}
}

func TestCanDeleteComment(t *testing.T) {
	if CanDeleteComment(models.RoleAdmin) {
		t.Error("admin must not delete comments")
	}
	if !CanDeleteComment(models.RoleOwner) {
		t.Error("owner must delete comments")
	}
}

func TestCanListUsers(t *testing.T) {
	if CanListUsers(models.RoleUser) {
		t.Error("plain user must not list users")
	}
	if !CanListUsers(models.RoleAdmin) || !CanListUsers(models.RoleOwner) {
		t.Error("admin and owner must list users")
	}
}

func TestValidateDisplayName(t *testing.T) {
	valid := []string{"alice", "alice-q", "Ål1ce_9"}
	for _, name := range valid {
		if err := ValidateDisplayName(name); err != nil {
			t.Errorf("ValidateDisplayName(%q) = %v, want nil", name, err)
		}
	}
	invalid := []string{"", "has space", "tab\tname", "trailing ", "new\nline", "nb sp"}
	for _, name := range invalid {
		if err := ValidateDisplayName(name); err == nil {
			t.Errorf("ValidateDisplayName(%q) = nil, want error", name)
		}
	}
}
