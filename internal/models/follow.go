package models

import (
	"time"

	"gorm.io/gorm"
)

// Follow is a directed edge between two users: Follower follows Followed.
type Follow struct {
	FollowerID uint      `gorm:"primaryKey;autoIncrement:false;uniqueIndex:uq_follow_once,priority:1;check:ck_follow_not_self,follower_id <> followed_id" json:"follower_id"`
	FollowedID uint      `gorm:"primaryKey;autoIncrement:false;uniqueIndex:uq_follow_once,priority:2;index:idx_follows_followed_id" json:"followed_id"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;autoCreateTime" json:"created_at"`

	// Relationships
	Follower *User `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE" json:"follower,omitempty"`
	Followed *User `gorm:"foreignKey:FollowedID;constraint:OnDelete:CASCADE" json:"followed,omitempty"`
}

// TableName specifies the table name for GORM.
func (Follow) TableName() string {
	return "follows"
}

// BeforeCreate rejects self-follows before they reach the database.
func (f *Follow) BeforeCreate(_ *gorm.DB) error {
	if f.FollowerID != 0 && f.FollowerID == f.FollowedID {
		return ErrSelfFollow
	}
	return nil
}

// Serialize returns the scalar fields of the follow edge.
func (f *Follow) Serialize() map[string]any {
	return map[string]any{
		"follower_id": f.FollowerID,
		"followed_id": f.FollowedID,
		"created_at":  FormatTimestamp(f.CreatedAt),
	}
}
