package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/quietpage/journal/config"
	"github.com/quietpage/journal/models"
)

func seedComment(t *testing.T, db *config.Database, post *models.Post, author *models.User, content string, parent *uint) *models.Comment {
	t.Helper()
	comment := &models.Comment{
		PostID:          post.ID,
		UserID:          author.ID,
		Content:         content,
		ParentCommentID: parent,
	}
	if err := db.Gorm().Create(comment).Error; err != nil {
		t.Fatalf("seed comment: %v", err)
	}
	return comment
}

func rootPath(postID uint) string {
	return fmt.Sprintf("/api/comments/%d/root", postID)
}

type threadPage struct {
	Items []models.Comment `json:"items"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

func TestHiddenCommentVisibility(t *testing.T) {
	r, db := newTestEnv(t)
	owner := seedUser(t, db, "owner", "orbit-Mango-Trellis-88", models.RoleOwner)
	alice := seedUser(t, db, "alice", "Str0ng!Pass1", models.RoleUser)
	post := seedPost(t, db, owner, "entry")

	// Scenario: alice comments, comment starts visible.
	w := doJSON(t, r, http.MethodPost, "/api/comments", tokenFor(t, alice), map[string]interface{}{
		"postId":  post.ID,
		"content": "nice entry",
	})
	wantStatus(t, w, http.StatusCreated)
	var created struct {
		Comment models.Comment `json:"comment"`
	}
	decodeData(t, w, &created)
	if created.Comment.Hidden {
		t.Fatal("new comment must start visible")
	}

	// The owner hides it.
	w = doJSON(t, r, http.MethodPatch, fmt.Sprintf("/api/comments/%d/hide", created.Comment.ID),
		tokenFor(t, owner), map[string]bool{"hidden": true})
	wantStatus(t, w, http.StatusOK)

	// Anonymous listing excludes the hidden comment.
	w = doJSON(t, r, http.MethodGet, rootPath(post.ID), "", nil)
	wantStatus(t, w, http.StatusOK)
	var anon threadPage
	decodeData(t, w, &anon)
	if len(anon.Items) != 0 || anon.Total != 0 {
		t.Errorf("anonymous view shows hidden comments: %+v", anon)
	}

	// The owner sees it, flagged hidden.
	w = doJSON(t, r, http.MethodGet, rootPath(post.ID), tokenFor(t, owner), nil)
	wantStatus(t, w, http.StatusOK)
	var priv threadPage
	decodeData(t, w, &priv)
	if len(priv.Items) != 1 || !priv.Items[0].Hidden {
		t.Errorf("privileged view missing hidden comment: %+v", priv)
	}

	// Unhide is idempotent per requested value.
	for i := 0; i < 2; i++ {
		w = doJSON(t, r, http.MethodPatch, fmt.Sprintf("/api/comments/%d/hide", created.Comment.ID),
			tokenFor(t, owner), map[string]bool{"hidden": false})
		wantStatus(t, w, http.StatusOK)
	}
	w = doJSON(t, r, http.MethodGet, rootPath(post.ID), "", nil)
	decodeData(t, w, &anon)
	if len(anon.Items) != 1 {
		t.Errorf("unhidden comment not visible again: %+v", anon)
	}
}

func TestAdminCannotModerateOwnerComment(t *testing.T) {
	r, db := newTestEnv(t)
	owner := seedUser(t, db, "owner", "orbit-Mango-Trellis-88", models.RoleOwner)
	admin := seedUser(t, db, "admin", "orbit-Mango-Trellis-88", models.RoleAdmin)
	post := seedPost(t, db, owner, "entry")
	ownerComment := seedComment(t, db, post, owner, "owner remark", nil)

	w := doJSON(t, r, http.MethodPatch, fmt.Sprintf("/api/comments/%d/hide", ownerComment.ID),
		tokenFor(t, admin), map[string]bool{"hidden": true})
	wantStatus(t, w, http.StatusForbidden)

	w = doJSON(t, r, http.MethodPatch, fmt.Sprintf("/api/comments/%d/hide", ownerComment.ID),
		tokenFor(t, owner), map[string]bool{"hidden": true})
	wantStatus(t, w, http.StatusOK)
}

func TestCreateReplyValidatesParent(t *testing.T) {
	r, db := newTestEnv(t)
	owner := seedUser(t, db, "owner", "orbit-Mango-Trellis-88", models.RoleOwner)
	alice := seedUser(t, db, "alice", "Str0ng!Pass1", models.RoleUser)
	post := seedPost(t, db, owner, "entry one")
	otherPost := seedPost(t, db, owner, "entry two")
	root := seedComment(t, db, post, alice, "root", nil)

	// A reply on the same post is fine.
	w := doJSON(t, r, http.MethodPost, "/api/comments", tokenFor(t, alice), map[string]interface{}{
		"postId":        post.ID,
		"content":       "reply",
		"parentComment": root.ID,
	})
	wantStatus(t, w, http.StatusCreated)

	// A parent on a different post is rejected at write time.
	w = doJSON(t, r, http.MethodPost, "/api/comments", tokenFor(t, alice), map[string]interface{}{
		"postId":        otherPost.ID,
		"content":       "orphan",
		"parentComment": root.ID,
	})
	wantStatus(t, w, http.StatusBadRequest)

	// Nonexistent parent.
	w = doJSON(t, r, http.MethodPost, "/api/comments", tokenFor(t, alice), map[string]interface{}{
		"postId":        post.ID,
		"content":       "ghost reply",
		"parentComment": 999999,
	})
	wantStatus(t, w, http.StatusNotFound)

	// Nonexistent post.
	w = doJSON(t, r, http.MethodPost, "/api/comments", tokenFor(t, alice), map[string]interface{}{
		"postId":  999999,
		"content": "nowhere",
	})
	wantStatus(t, w, http.StatusNotFound)

	// Anonymous comment creation is rejected.
	w = doJSON(t, r, http.MethodPost, "/api/comments", "", map[string]interface{}{
		"postId":  post.ID,
		"content": "drive-by",
	})
	wantStatus(t, w, http.StatusUnauthorized)
}

func TestDeleteCascadesOneLevel(t *testing.T) {
	r, db := newTestEnv(t)
	owner := seedUser(t, db, "owner", "orbit-Mango-Trellis-88", models.RoleOwner)
	alice := seedUser(t, db, "alice", "Str0ng!Pass1", models.RoleUser)
	admin := seedUser(t, db, "admin", "orbit-Mango-Trellis-88", models.RoleAdmin)
	post := seedPost(t, db, owner, "entry")

	target := seedComment(t, db, post, alice, "root a", nil)
	replyOne := seedComment(t, db, post, alice, "reply 1", &target.ID)
	replyTwo := seedComment(t, db, post, alice, "reply 2", &target.ID)
	grandchild := seedComment(t, db, post, alice, "grandchild", &replyOne.ID)
	bystander := seedComment(t, db, post, alice, "root b", nil)
	bystanderReply := seedComment(t, db, post, alice, "reply b", &bystander.ID)

	// Admins cannot delete.
	w := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/comments/%d", target.ID), tokenFor(t, admin), nil)
	wantStatus(t, w, http.StatusForbidden)

	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/comments/%d", target.ID), tokenFor(t, owner), nil)
	wantStatus(t, w, http.StatusOK)

	var remaining []models.Comment
	if err := db.Gorm().Find(&remaining).Error; err != nil {
		t.Fatalf("load comments: %v", err)
	}
	left := map[uint]bool{}
	for _, c := range remaining {
		left[c.ID] = true
	}
	for _, gone := range []uint{target.ID, replyOne.ID, replyTwo.ID} {
		if left[gone] {
			t.Errorf("comment %d should have been deleted", gone)
		}
	}
	for _, kept := range []uint{grandchild.ID, bystander.ID, bystanderReply.ID} {
		if !left[kept] {
			t.Errorf("comment %d should have been kept", kept)
		}
	}

	// Deleting an already-deleted comment is a 404.
	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/comments/%d", target.ID), tokenFor(t, owner), nil)
	wantStatus(t, w, http.StatusNotFound)
}

func TestThreadPagination(t *testing.T) {
	r, db := newTestEnv(t)
	owner := seedUser(t, db, "owner", "orbit-Mango-Trellis-88", models.RoleOwner)
	alice := seedUser(t, db, "alice", "Str0ng!Pass1", models.RoleUser)
	post := seedPost(t, db, owner, "entry")

	root := seedComment(t, db, post, alice, "root", nil)
	for i := 0; i < 5; i++ {
		seedComment(t, db, post, alice, fmt.Sprintf("reply %d", i), &root.ID)
	}

	w := doJSON(t, r, http.MethodGet,
		fmt.Sprintf("/api/comments/%d/replies?parent=%d&page=2&limit=2", post.ID, root.ID), "", nil)
	wantStatus(t, w, http.StatusOK)
	var page threadPage
	decodeData(t, w, &page)
	if page.Total != 5 || page.Page != 2 || page.Limit != 2 || len(page.Items) != 2 {
		t.Errorf("unexpected page: %+v", page)
	}
	if page.Items[0].Content != "reply 2" || page.Items[1].Content != "reply 3" {
		t.Errorf("items out of order: %q, %q", page.Items[0].Content, page.Items[1].Content)
	}

	// Replies require the parent parameter.
	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/comments/%d/replies", post.ID), "", nil)
	wantStatus(t, w, http.StatusBadRequest)

	// Root listing excludes replies.
	w = doJSON(t, r, http.MethodGet, rootPath(post.ID), "", nil)
	wantStatus(t, w, http.StatusOK)
	decodeData(t, w, &page)
	if page.Total != 1 || len(page.Items) != 1 || page.Items[0].ID != root.ID {
		t.Errorf("root listing wrong: %+v", page)
	}
}
