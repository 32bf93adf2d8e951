package models

import "time"

// Post is an image published by a user, with an optional caption.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index:idx_posts_user_id" json:"user_id"`
	ImageURL  string    `gorm:"size:255;not null" json:"image_url"`
	Caption   *string   `gorm:"type:text" json:"caption"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;autoCreateTime" json:"created_at"`

	// Relationships
	Author   *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"author,omitempty"`
	Comments []Comment `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
	Likes    []Like    `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"likes,omitempty"`
}

// TableName specifies the table name for GORM.
func (Post) TableName() string {
	return "posts"
}

// Serialize returns the scalar fields of the post.
func (p *Post) Serialize() map[string]any {
	var caption any
	if p.Caption != nil {
		caption = *p.Caption
	}
	return map[string]any{
		"id":         p.ID,
		"user_id":    p.UserID,
		"image_url":  p.ImageURL,
		"caption":    caption,
		"created_at": FormatTimestamp(p.CreatedAt),
	}
}
