// Package app wires repositories, services and metrics over one database.
package app

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/terraincognita07/sitr/internal/db"
	"github.com/terraincognita07/sitr/internal/services"
	"gorm.io/gorm"
)

// Services is the full set of domain services over one database.
type Services struct {
	Repositories *db.Repositories
	Time         *services.TimeService
	Users        *services.UserService
	Projects     *services.ProjectService
	Events       *services.EventService
	Reports      *services.ReportService
}

func NewServices(database *gorm.DB, recorder services.OperationRecorder, logger zerolog.Logger) *Services {
	repositories := db.NewRepositories(database)
	return &Services{
		Repositories: repositories,
		Time:         services.NewTimeService(TimeTransactor(repositories), recorder, logger),
		Users:        services.NewUserService(repositories.Users, UserDeletionTransactor(repositories)),
		Projects:     services.NewProjectService(repositories.Users, repositories.Projects),
		Events:       services.NewEventService(repositories.Users, repositories.Events),
		Reports:      services.NewReportService(repositories.Users, repositories.Projects, repositories.Events),
	}
}

// TimeTransactor binds tracking operations to a database transaction.
func TimeTransactor(repositories *db.Repositories) services.TimeTransactor {
	return func(ctx context.Context, fn func(unit services.TimeUnit) error) error {
		return repositories.Transaction(ctx, func(tx *db.Repositories) error {
			return fn(services.TimeUnit{
				Users:    tx.Users,
				Projects: tx.Projects,
				Events:   tx.Events,
			})
		})
	}
}

// UserDeletionTransactor binds user deletion and its cascade to a database
// transaction.
func UserDeletionTransactor(repositories *db.Repositories) services.UserDeletionTransactor {
	return func(ctx context.Context, fn func(unit services.UserDeletionUnit) error) error {
		return repositories.Transaction(ctx, func(tx *db.Repositories) error {
			return fn(services.UserDeletionUnit{
				Users:    tx.Users,
				Projects: tx.Projects,
				Events:   tx.Events,
			})
		})
	}
}
