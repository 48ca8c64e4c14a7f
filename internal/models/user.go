package models

import (
	"strings"
	"time"
)

const (
	UserStateActive   = "active"
	UserStateArchived = "archived"
)

type User struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	FirstName     string     `gorm:"not null" json:"first_name"`
	MiddleInitial string     `gorm:"not null;default:''" json:"middle_initial,omitempty"`
	LastName      string     `gorm:"not null" json:"last_name"`
	Email         string     `gorm:"uniqueIndex;not null" json:"email"`
	State         string     `gorm:"not null;default:active" json:"state"`
	ArchivedAt    *time.Time `json:"archived_at,omitempty"`
	LastActive    *time.Time `json:"last_active,omitempty"`
	CreatedAt     time.Time  `gorm:"not null" json:"created_at"`
}

func (user User) IsArchived() bool {
	return user.State == UserStateArchived
}

// DisplayName renders "First M. Last", skipping the initial when it is empty.
func (user User) DisplayName() string {
	parts := make([]string, 0, 3)
	if name := strings.TrimSpace(user.FirstName); name != "" {
		parts = append(parts, name)
	}
	if initial := strings.TrimSpace(user.MiddleInitial); initial != "" {
		parts = append(parts, initial+".")
	}
	if name := strings.TrimSpace(user.LastName); name != "" {
		parts = append(parts, name)
	}
	return strings.Join(parts, " ")
}
