package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/sitr/internal/services"
)

func (handler *Handler) CreateUser(c *fiber.Ctx) error {
	payload := services.UserInput{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}

	user, err := handler.users.Create(c.UserContext(), payload)
	if err != nil {
		return handler.serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

func (handler *Handler) ListUsers(c *fiber.Ctx) error {
	users, err := handler.users.List(c.UserContext(), c.QueryBool("include_archived", false))
	if err != nil {
		return handler.serviceError(c, err)
	}
	return c.JSON(users)
}

func (handler *Handler) GetUserByEmail(c *fiber.Ctx) error {
	user, err := handler.users.GetByEmail(c.UserContext(), emailParam(c))
	if err != nil {
		return handler.serviceError(c, err)
	}
	return c.JSON(user)
}

func (handler *Handler) UpdateUser(c *fiber.Ctx) error {
	payload := updateUserInput{}
	if err := parseBody(c, &payload); err != nil {
		return handler.bodyError(c, err)
	}

	user, err := handler.users.Update(c.UserContext(), emailParam(c), payload.toUpdate())
	if err != nil {
		return handler.serviceError(c, err)
	}
	return c.JSON(user)
}

func (handler *Handler) DeleteUser(c *fiber.Ctx) error {
	user, err := handler.users.Delete(c.UserContext(), emailParam(c), c.QueryBool("cascade", false))
	if err != nil {
		return handler.serviceError(c, err)
	}
	return c.JSON(fiber.Map{"deleted": true, "user": user})
}

func (handler *Handler) SelectUser(c *fiber.Ctx) error {
	user, err := handler.users.Select(c.UserContext(), emailParam(c))
	if err != nil {
		return handler.serviceError(c, err)
	}
	return c.JSON(user)
}

func (handler *Handler) ArchiveUser(c *fiber.Ctx) error {
	user, err := handler.users.Archive(c.UserContext(), emailParam(c))
	if err != nil {
		return handler.serviceError(c, err)
	}
	return c.JSON(user)
}

func (handler *Handler) UnarchiveUser(c *fiber.Ctx) error {
	user, err := handler.users.Unarchive(c.UserContext(), emailParam(c))
	if err != nil {
		return handler.serviceError(c, err)
	}
	return c.JSON(user)
}
