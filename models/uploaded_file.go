package models

import "time"

// UploadedFile records a media upload proxied to the external media host.
// It carries its own identity-like fields and is only loosely related to
// User; PostID is set when the upload was attached to a post image.
type UploadedFile struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:64" json:"name"`
	Email        string    `gorm:"size:255" json:"email"`
	PasswordHash string    `gorm:"size:255" json:"-"`
	Filename     string    `gorm:"size:255" json:"filename"`
	PublicID     string    `gorm:"size:255;index" json:"public_id"`
	URL          string    `gorm:"size:1024;not null" json:"url"`
	PostID       *uint     `gorm:"index" json:"post_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
