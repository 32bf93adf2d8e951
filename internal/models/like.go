package models

import "time"

// Like links one user to one post. The composite primary key allows a
// given (user, post) pair at most once.
type Like struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	PostID    uint      `gorm:"primaryKey;autoIncrement:false" json:"post_id"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;autoCreateTime" json:"created_at"`

	// Relationships
	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Post *Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"post,omitempty"`
}

// TableName specifies the table name for GORM.
func (Like) TableName() string {
	return "likes"
}

// Serialize returns the scalar fields of the like.
func (l *Like) Serialize() map[string]any {
	return map[string]any{
		"user_id":    l.UserID,
		"post_id":    l.PostID,
		"created_at": FormatTimestamp(l.CreatedAt),
	}
}
