package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/sitr/internal/services"
)

// ListEvents returns events between the from and to days, both inclusive.
// Missing bounds are open.
func (handler *Handler) ListEvents(c *fiber.Ctx) error {
	userID, err := queryUserID(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	from, to, err := services.ParseEventRange(c.Query("from"), c.Query("to"), handler.location)
	if err != nil {
		return handler.serviceError(c, err)
	}

	events, err := handler.events.Range(c.UserContext(), userID, from, to)
	if err != nil {
		return handler.serviceError(c, err)
	}
	return c.JSON(events)
}

func (handler *Handler) TodayEvents(c *fiber.Ctx) error {
	userID, err := queryUserID(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	events, err := handler.events.Today(c.UserContext(), userID, handler.location)
	if err != nil {
		return handler.serviceError(c, err)
	}
	return c.JSON(events)
}

func (handler *Handler) LatestEvent(c *fiber.Ctx) error {
	userID, err := queryUserID(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	event, err := handler.events.Latest(c.UserContext(), userID)
	if err != nil {
		return handler.serviceError(c, err)
	}
	return c.JSON(event)
}

func (handler *Handler) Status(c *fiber.Ctx) error {
	userID, err := queryUserID(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	status, err := handler.events.Status(c.UserContext(), userID, handler.location)
	if err != nil {
		return handler.serviceError(c, err)
	}
	return c.JSON(statusResponse{
		User:               status.User,
		State:              status.State,
		ActiveProject:      status.ActiveProjectName,
		ResumeProject:      status.ResumeProjectName,
		WorkedToday:        services.FormatDuration(status.WorkedToday),
		BreakToday:         services.FormatDuration(status.BreakToday),
		WorkedTodaySeconds: durationSeconds(status.WorkedToday),
		BreakTodaySeconds:  durationSeconds(status.BreakToday),
		LatestEvent:        status.LatestEvent,
	})
}
