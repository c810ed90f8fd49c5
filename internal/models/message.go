package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// MaxMessageLength mirrors the 140-character warble limit.
const MaxMessageLength = 140

// Message is a single warble authored by a user.
type Message struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Text      string         `gorm:"size:140;not null" json:"text"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	User      User           `gorm:"foreignKey:UserID" json:"user"`
	CreatedAt time.Time      `json:"timestamp"`
	UpdatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"-" json:"likes_count"`
	// Liked indicates whether the current requesting user liked this message (computed)
	Liked bool `gorm:"-" json:"liked"`
}

// String implements fmt.Stringer with the canonical message representation.
func (m *Message) String() string {
	return fmt.Sprintf("<Message %d>", m.ID)
}
