package models

import "time"

// Action is stored verbatim in events.action.
type Action string

const (
	ActionWorkdayStart  Action = "Workday Start"
	ActionWorkdayEnd    Action = "Workday End"
	ActionProjectStart  Action = "Project Start"
	ActionProjectEnd    Action = "Project End"
	ActionProjectResume Action = "Project Resume"
	ActionBreakStart    Action = "Break Start"
	ActionBreakEnd      Action = "Break End"
)

func (action Action) Valid() bool {
	switch action {
	case ActionWorkdayStart, ActionWorkdayEnd,
		ActionProjectStart, ActionProjectEnd, ActionProjectResume,
		ActionBreakStart, ActionBreakEnd:
		return true
	default:
		return false
	}
}

func (action Action) IsWorkday() bool {
	return action == ActionWorkdayStart || action == ActionWorkdayEnd
}

func (action Action) IsBreak() bool {
	return action == ActionBreakStart || action == ActionBreakEnd
}

func (action Action) IsProject() bool {
	return action == ActionProjectStart || action == ActionProjectEnd || action == ActionProjectResume
}

// Event is one immutable entry of a user's tracking log.
type Event struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index:idx_events_user_timestamp,priority:1" json:"user_id"`
	ProjectID *uint     `gorm:"index" json:"project_id,omitempty"`
	Action    Action    `gorm:"not null" json:"action"`
	Timestamp time.Time `gorm:"not null;index:idx_events_user_timestamp,priority:2" json:"timestamp"`
	Message   string    `gorm:"not null;default:''" json:"message,omitempty"`
	Project   *Project  `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
}

// ProjectName is empty for events without a loaded project.
func (event Event) ProjectName() string {
	if event.Project == nil {
		return ""
	}
	return event.Project.Name
}
