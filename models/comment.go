package models

import "time"

// Comment represents a comment or reply on a post. Replies reference a
// root comment through ParentCommentID; only one level of nesting is
// surfaced, and a parent must belong to the same post.
type Comment struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	PostID          uint      `gorm:"index;not null" json:"post_id"`
	UserID          uint      `gorm:"index;not null" json:"user_id"`
	Content         string    `gorm:"type:text;not null" json:"content"`
	ParentCommentID *uint     `gorm:"index" json:"parent_comment"`
	Hidden          bool      `gorm:"not null;default:false" json:"hidden"`
	CreatedAt       time.Time `json:"created_at"`
	User            User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
}
