package models

import "time"

const (
	ProjectStateActive   = "active"
	ProjectStateArchived = "archived"
)

// ProjectOrder selects how project listings are sorted.
type ProjectOrder string

const (
	ProjectOrderCreated ProjectOrder = "created"
	ProjectOrderName    ProjectOrder = "name"
)

func (order ProjectOrder) Valid() bool {
	return order == ProjectOrderCreated || order == ProjectOrderName
}

type Project struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UserID        uint       `gorm:"not null;uniqueIndex:uidx_projects_user_name" json:"user_id"`
	Name          string     `gorm:"not null;uniqueIndex:uidx_projects_user_name" json:"name"`
	State         string     `gorm:"not null;default:active" json:"state"`
	ArchivedAt    *time.Time `json:"archived_at,omitempty"`
	TrackingCount int        `gorm:"not null;default:0" json:"tracking_count"`
	CreatedAt     time.Time  `gorm:"not null" json:"created_at"`
}

func (project Project) IsArchived() bool {
	return project.State == ProjectStateArchived
}
