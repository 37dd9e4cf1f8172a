package models

import "time"

// Post represents a blog entry created by a user. The owning UserID is
// immutable after creation; only the owner may update or delete the post.
type Post struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"index;not null" json:"user_id"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	ImageURL    string         `gorm:"size:1024" json:"img_url"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	User        User           `json:"author"`
	Likes       []PostLike     `json:"-"`
	Files       []UploadedFile `json:"files,omitempty"`
}

// PostLike records a single user's like on a post. The composite unique
// index is the storage-level guard that keeps the likes set duplicate-free
// even under concurrent like/unlike requests.
type PostLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_post_like_user" json:"post_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_post_like_user" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
