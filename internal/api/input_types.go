package api

import "github.com/terraincognita07/sitr/internal/services"

type userIDInput struct {
	UserID uint `json:"user_id" validate:"required,gt=0"`
}

type updateUserInput struct {
	FirstName     *string `json:"first_name" validate:"omitempty,max=100"`
	MiddleInitial *string `json:"middle_initial" validate:"omitempty,max=1"`
	LastName      *string `json:"last_name" validate:"omitempty,max=100"`
	Email         *string `json:"email" validate:"omitempty,max=254"`
}

func (input updateUserInput) toUpdate() services.UserUpdate {
	return services.UserUpdate{
		FirstName:     input.FirstName,
		MiddleInitial: input.MiddleInitial,
		LastName:      input.LastName,
		Email:         input.Email,
	}
}

type startProjectInput struct {
	UserID      uint   `json:"user_id" validate:"required,gt=0"`
	ProjectName string `json:"project_name" validate:"required,max=100"`
	AutoCreate  *bool  `json:"auto_create"`
}

func (input startProjectInput) autoCreate() bool {
	return input.AutoCreate == nil || *input.AutoCreate
}

type endProjectInput struct {
	UserID      uint   `json:"user_id" validate:"required,gt=0"`
	ProjectName string `json:"project_name" validate:"omitempty,max=100"`
}

type breakInput struct {
	UserID  uint   `json:"user_id" validate:"required,gt=0"`
	Message string `json:"message" validate:"max=500"`
}

type projectInput struct {
	UserID uint   `json:"user_id" validate:"required,gt=0"`
	Name   string `json:"name" validate:"required,max=100"`
}
