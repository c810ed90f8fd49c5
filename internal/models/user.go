// Package models contains data structures for the application's domain models.
package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// DefaultImageURL is the placeholder profile image assigned at signup when
// the user does not supply one.
const DefaultImageURL = "/static/images/default-pic.png"

// DefaultHeaderImageURL is the placeholder profile header image.
const DefaultHeaderImageURL = "/static/images/warbler-hero.jpg"

// User represents a registered Warbler account.
type User struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Username       string         `gorm:"unique;not null" json:"username"`
	Email          string         `gorm:"unique;not null" json:"email"`
	Password       string         `gorm:"not null" json:"-"`
	ImageURL       string         `json:"image_url"`
	HeaderImageURL string         `json:"header_image_url"`
	Bio            string         `json:"bio"`
	Location       string         `json:"location"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
	Messages       []Message      `gorm:"foreignKey:UserID" json:"messages,omitempty"`

	// FollowersCount and FollowingCount are not persisted; computed at query time
	FollowersCount int `gorm:"-" json:"followers_count"`
	FollowingCount int `gorm:"-" json:"following_count"`
}

// Handle returns the user's display handle, e.g. "@testuser".
func (u *User) Handle() string {
	return "@" + u.Username
}

// String implements fmt.Stringer with the canonical account representation.
func (u *User) String() string {
	return fmt.Sprintf("<User #%d: %s, %s>", u.ID, u.Username, u.Email)
}
