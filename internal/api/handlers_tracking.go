package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/sitr/internal/models"
	"github.com/terraincognita07/sitr/internal/services"
)

func (handler *Handler) respondOperation(c *fiber.Ctx, result services.OperationResult, err error) error {
	if err != nil {
		return handler.serviceError(c, err)
	}

	events := result.Events
	if events == nil {
		events = []models.Event{}
	}
	return c.JSON(operationResponse{
		Success:   result.Success,
		Message:   result.Message,
		Timestamp: result.Timestamp.In(handler.location),
		Data: operationData{
			ProjectID:      result.ProjectID,
			ProjectName:    result.ProjectName,
			EndedProjectID: result.EndedProjectID,
			ClosedProject:  result.ClosedProject,
			ClosedBreak:    result.ClosedBreak,
			WasCreated:     result.WasCreated,
			Events:         events,
		},
	})
}

func (handler *Handler) StartDay(c *fiber.Ctx) error {
	payload := userIDInput{}
	if err := parseBody(c, &payload); err != nil {
		return handler.bodyError(c, err)
	}
	result, err := handler.tracking.StartDay(c.UserContext(), payload.UserID)
	return handler.respondOperation(c, result, err)
}

func (handler *Handler) EndDay(c *fiber.Ctx) error {
	payload := userIDInput{}
	if err := parseBody(c, &payload); err != nil {
		return handler.bodyError(c, err)
	}
	result, err := handler.tracking.EndDay(c.UserContext(), payload.UserID)
	return handler.respondOperation(c, result, err)
}

func (handler *Handler) StartProject(c *fiber.Ctx) error {
	payload := startProjectInput{}
	if err := parseBody(c, &payload); err != nil {
		return handler.bodyError(c, err)
	}
	result, err := handler.tracking.StartProject(c.UserContext(), payload.UserID, payload.ProjectName, payload.autoCreate())
	return handler.respondOperation(c, result, err)
}

func (handler *Handler) EndProject(c *fiber.Ctx) error {
	payload := endProjectInput{}
	if err := parseBody(c, &payload); err != nil {
		return handler.bodyError(c, err)
	}
	result, err := handler.tracking.EndProject(c.UserContext(), payload.UserID, payload.ProjectName)
	return handler.respondOperation(c, result, err)
}

func (handler *Handler) ContinueProject(c *fiber.Ctx) error {
	payload := userIDInput{}
	if err := parseBody(c, &payload); err != nil {
		return handler.bodyError(c, err)
	}
	result, err := handler.tracking.ContinueProject(c.UserContext(), payload.UserID)
	return handler.respondOperation(c, result, err)
}

func (handler *Handler) StartBreak(c *fiber.Ctx) error {
	payload := breakInput{}
	if err := parseBody(c, &payload); err != nil {
		return handler.bodyError(c, err)
	}
	result, err := handler.tracking.StartBreak(c.UserContext(), payload.UserID, payload.Message)
	return handler.respondOperation(c, result, err)
}

func (handler *Handler) EndBreak(c *fiber.Ctx) error {
	payload := userIDInput{}
	if err := parseBody(c, &payload); err != nil {
		return handler.bodyError(c, err)
	}
	result, err := handler.tracking.EndBreak(c.UserContext(), payload.UserID)
	return handler.respondOperation(c, result, err)
}
