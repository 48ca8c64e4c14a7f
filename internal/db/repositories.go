package db

import (
	"context"

	"gorm.io/gorm"
)

type Repositories struct {
	Users    *UserRepository
	Projects *ProjectRepository
	Events   *EventRepository

	database *gorm.DB
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Users:    NewUserRepository(database),
		Projects: NewProjectRepository(database),
		Events:   NewEventRepository(database),
		database: database,
	}
}

// Transaction runs fn against repositories bound to one transaction. The
// transaction commits when fn returns nil and rolls back otherwise. Calls
// made on the Repositories passed to fn never open a nested transaction.
func (repos *Repositories) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	return repos.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
