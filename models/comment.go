package models

import "time"

// Comment represents a reply to a post. Comments are never updated or
// deleted; deleting a post intentionally leaves its comments behind.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"index:idx_comment_post_created;not null" json:"post_id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"index:idx_comment_post_created" json:"created_at"`
}

// CommentView is the display shape of a comment: the author's current name
// is resolved at read time so renames never leave stale text behind.
type CommentView struct {
	ID        uint      `json:"id"`
	Text      string    `json:"text"`
	User      string    `json:"user"`
	UserID    uint      `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
