package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/sitr/internal/models"
)

func (handler *Handler) CreateProject(c *fiber.Ctx) error {
	payload := projectInput{}
	if err := parseBody(c, &payload); err != nil {
		return handler.bodyError(c, err)
	}

	project, err := handler.projects.Create(c.UserContext(), payload.UserID, payload.Name)
	if err != nil {
		return handler.serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(project)
}

func (handler *Handler) ListProjects(c *fiber.Ctx) error {
	userID, err := queryUserID(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	order := models.ProjectOrder(c.Query("order", string(models.ProjectOrderCreated)))
	projects, err := handler.projects.List(c.UserContext(), userID, c.QueryBool("include_archived", false), order)
	if err != nil {
		return handler.serviceError(c, err)
	}
	return c.JSON(projects)
}

func (handler *Handler) ArchiveProject(c *fiber.Ctx) error {
	payload := projectInput{}
	if err := parseBody(c, &payload); err != nil {
		return handler.bodyError(c, err)
	}

	project, err := handler.projects.Archive(c.UserContext(), payload.UserID, payload.Name)
	if err != nil {
		return handler.serviceError(c, err)
	}
	return c.JSON(project)
}

func (handler *Handler) UnarchiveProject(c *fiber.Ctx) error {
	payload := projectInput{}
	if err := parseBody(c, &payload); err != nil {
		return handler.bodyError(c, err)
	}

	project, err := handler.projects.Unarchive(c.UserContext(), payload.UserID, payload.Name)
	if err != nil {
		return handler.serviceError(c, err)
	}
	return c.JSON(project)
}
