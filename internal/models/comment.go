package models

import "time"

// Comment is a text reply by a user on a post.
type Comment struct {
	// uq_comment_per_post repeats the primary key's uniqueness over (id, post_id).
	ID        uint      `gorm:"primaryKey;uniqueIndex:uq_comment_per_post,priority:1" json:"id"`
	PostID    uint      `gorm:"not null;index:idx_comments_post_id;uniqueIndex:uq_comment_per_post,priority:2" json:"post_id"`
	UserID    uint      `gorm:"not null;index:idx_comments_user_id" json:"user_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;autoCreateTime" json:"created_at"`

	// Relationships
	Post   *Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"post,omitempty"`
	Author *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"author,omitempty"`
}

// TableName specifies the table name for GORM.
func (Comment) TableName() string {
	return "comments"
}

// Serialize returns the scalar fields of the comment.
func (c *Comment) Serialize() map[string]any {
	return map[string]any{
		"id":         c.ID,
		"post_id":    c.PostID,
		"user_id":    c.UserID,
		"content":    c.Content,
		"created_at": FormatTimestamp(c.CreatedAt),
	}
}
