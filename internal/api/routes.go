package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/terraincognita07/sitr/internal/metrics"
)

func RegisterRoutes(app *fiber.App, handler *Handler, gatherer prometheus.Gatherer) {
	app.Get("/health", handler.Health)
	if gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler(gatherer)))
	}
	registerAPIRoutes(app, handler)
}

func registerAPIRoutes(app *fiber.App, handler *Handler) {
	api := app.Group("/api")

	users := api.Group("/users")
	users.Post("", handler.CreateUser)
	users.Get("", handler.ListUsers)
	users.Get("/email/:email", handler.GetUserByEmail)
	users.Post("/select/:email", handler.SelectUser)
	users.Put("/:email", handler.UpdateUser)
	users.Delete("/:email", handler.DeleteUser)
	users.Post("/:email/archive", handler.ArchiveUser)
	users.Post("/:email/unarchive", handler.UnarchiveUser)

	workday := api.Group("/workday")
	workday.Post("/start", handler.StartDay)
	workday.Post("/end", handler.EndDay)

	projects := api.Group("/projects")
	projects.Post("/start", handler.StartProject)
	projects.Post("/end", handler.EndProject)
	projects.Post("/continue", handler.ContinueProject)
	projects.Post("/archive", handler.ArchiveProject)
	projects.Post("/unarchive", handler.UnarchiveProject)
	projects.Post("", handler.CreateProject)
	projects.Get("", handler.ListProjects)

	breaks := api.Group("/breaks")
	breaks.Post("/start", handler.StartBreak)
	breaks.Post("/end", handler.EndBreak)

	events := api.Group("/events")
	events.Get("", handler.ListEvents)
	events.Get("/today", handler.TodayEvents)
	events.Get("/latest", handler.LatestEvent)
	api.Get("/status", handler.Status)

	reports := api.Group("/reports")
	reports.Get("/daily", handler.DailyReport)
	reports.Get("/weekly", handler.WeeklyReport)
	reports.Get("/project", handler.ProjectReport)
}
