// Package models contains the persistent domain models of the application.
package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User is an account that publishes posts, comments, likes and follows other users.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:50;not null;uniqueIndex:idx_users_username" json:"username"`
	Email     string    `gorm:"size:120;not null;uniqueIndex:idx_users_email" json:"email"`
	FullName  *string   `gorm:"size:120" json:"full_name"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;autoCreateTime" json:"created_at"`

	// Relationships
	Posts     []Post    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"posts,omitempty"`
	Comments  []Comment `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
	Likes     []Like    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"likes,omitempty"`
	Followers []Follow  `gorm:"foreignKey:FollowedID;constraint:OnDelete:CASCADE" json:"followers,omitempty"`
	Following []Follow  `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE" json:"following,omitempty"`
}

// TableName specifies the table name for GORM.
func (User) TableName() string {
	return "users"
}

// Serialize returns the public scalar fields of the user.
// The password hash is never included.
func (u *User) Serialize() map[string]any {
	var fullName any
	if u.FullName != nil {
		fullName = *u.FullName
	}
	return map[string]any{
		"id":         u.ID,
		"username":   u.Username,
		"email":      u.Email,
		"full_name":  fullName,
		"is_active":  u.Active(),
		"created_at": FormatTimestamp(u.CreatedAt),
	}
}

// Active reports the user's is_active flag. Unset means the column default, true.
func (u *User) Active() bool {
	return u.IsActive == nil || *u.IsActive
}

// Bool returns a pointer to b, for optional boolean columns such as User.IsActive.
func Bool(b bool) *bool {
	return &b
}

// SetPassword hashes plain with bcrypt and stores the hash.
func (u *User) SetPassword(plain string) error {
	hash, err := HashPassword(plain)
	if err != nil {
		return err
	}
	u.Password = hash
	return nil
}

// CheckPassword reports whether plain matches the stored hash.
func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plain)) == nil
}

// HashPassword returns the bcrypt hash of plain.
func HashPassword(plain string) (string, error) {
	if plain == "" {
		return "", NewValidationError("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", NewInternalError(err)
	}
	return string(hash), nil
}
