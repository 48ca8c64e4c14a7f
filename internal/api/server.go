package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
)

// NewServer builds the fiber app with middleware and every route registered.
func NewServer(handler *Handler, gatherer prometheus.Gatherer) *fiber.App {
	server := fiber.New(fiber.Config{
		AppName:               "sitr",
		DisableStartupMessage: true,
		ErrorHandler:          handler.ErrorHandler,
	})

	server.Use(recover.New())
	server.Use(requestid.New())
	server.Use(RequestLogger(handler.logger))

	RegisterRoutes(server, handler, gatherer)
	server.Use(handler.NotFound)
	return server
}
