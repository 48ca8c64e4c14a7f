package api

import (
	"bytes"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/sitr/internal/services"
)

func (handler *Handler) DailyReport(c *fiber.Ctx) error {
	userID, format, err := reportQuery(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}
	day, err := handler.queryDay(c, "date", handler.today())
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	period, err := handler.reports.Daily(c.UserContext(), userID, day, handler.location)
	if err != nil {
		return handler.serviceError(c, err)
	}
	return handler.sendReport(c, period, format)
}

func (handler *Handler) WeeklyReport(c *fiber.Ctx) error {
	userID, format, err := reportQuery(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}
	day, err := handler.queryDay(c, "date", handler.today())
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	period, err := handler.reports.Weekly(c.UserContext(), userID, day, handler.location)
	if err != nil {
		return handler.serviceError(c, err)
	}
	return handler.sendReport(c, period, format)
}

// ProjectReport covers the from and to days inclusive; both default to today.
func (handler *Handler) ProjectReport(c *fiber.Ctx) error {
	userID, format, err := reportQuery(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}
	today := handler.today()
	from, err := handler.queryDay(c, "from", today)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}
	to, err := handler.queryDay(c, "to", today)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	period, err := handler.reports.Project(c.UserContext(), userID, c.Query("name"), from, to, handler.location)
	if err != nil {
		return handler.serviceError(c, err)
	}
	return handler.sendReport(c, period, format)
}

func reportQuery(c *fiber.Ctx) (uint, services.ReportFormat, error) {
	userID, err := queryUserID(c)
	if err != nil {
		return 0, "", err
	}
	format, err := services.ParseReportFormat(c.Query("format", string(services.FormatJSON)))
	if err != nil {
		return 0, "", err
	}
	return userID, format, nil
}

func (handler *Handler) sendReport(c *fiber.Ctx, period services.PeriodReport, format services.ReportFormat) error {
	var body bytes.Buffer
	if err := services.RenderReport(&body, period, format); err != nil {
		return handler.serviceError(c, err)
	}
	c.Set(fiber.HeaderContentType, format.ContentType())
	return c.Send(body.Bytes())
}
