package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/stringdesk/stringing-service/internal/api/http/handlers"
	"github.com/stringdesk/stringing-service/internal/auth"
	"github.com/stringdesk/stringing-service/internal/domain"
	"github.com/stringdesk/stringing-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Staff          *handlers.StaffHandler
	Intake         *handlers.IntakeHandler
	Jobs           *handlers.JobsHandler
	Payments       *handlers.PaymentsHandler
	Reminders      *handlers.RemindersHandler
	Attachments    *handlers.AttachmentsHandler
	Strings        *handlers.StringsHandler
	Metrics        *observability.Metrics
	AuthMiddleware fiber.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	if cfg.Health != nil {
		app.Get("/health/live", cfg.Health.Live)
		app.Get("/health/ready", cfg.Health.Ready)
	}
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	app.Post("/auth/staff/login", cfg.Auth.Login)

	app.Post("/intake/jobs", cfg.Intake.CreateJob)
	app.Post("/intake/quote", cfg.Intake.Quote)
	app.Get("/strings", cfg.Strings.ListActive)

	staff := app.Group("/staff", cfg.AuthMiddleware, auth.RequireStaffRole())
	frontDesk := auth.RequireStaffRole(domain.StaffRoleFrontDesk)
	bench := auth.RequireStaffRole(domain.StaffRoleStringer)
	manager := auth.RequireManager()

	members := staff.Group("/members", manager)
	members.Post("", cfg.Auth.CreateStaff)
	if cfg.Staff != nil {
		members.Get("", cfg.Staff.ListStaff)
		members.Get("/:id", cfg.Staff.GetStaff)
		members.Patch("/:id", cfg.Staff.UpdateStaff)
		members.Put("/:id/password", cfg.Staff.SetPassword)
	}

	jobs := staff.Group("/jobs")
	jobs.Get("", cfg.Jobs.ListJobs)
	jobs.Get("/:id", cfg.Jobs.GetJob)
	jobs.Get("/:id/timeline", cfg.Jobs.Timeline)
	jobs.Post("/:id/receive", frontDesk, cfg.Jobs.Receive)
	jobs.Post("/:id/status", cfg.Jobs.ChangeStatus)
	jobs.Post("/:id/cancel", frontDesk, cfg.Jobs.Cancel)
	jobs.Post("/:id/pickup", frontDesk, cfg.Jobs.Pickup)
	jobs.Post("/:id/payments", frontDesk, cfg.Payments.RecordPayment)
	jobs.Post("/:id/payments/full", frontDesk, cfg.Payments.PayFullBalance)
	jobs.Post("/:id/tension", bench, cfg.Jobs.SetTension)
	jobs.Delete("/:id/tension", bench, cfg.Jobs.ClearTension)
	jobs.Post("/:id/tension/notify", cfg.Reminders.SendTensionNotice)
	jobs.Put("/:id/max-tension", bench, cfg.Jobs.SetMaxTension)
	jobs.Post("/:id/stringer", cfg.Jobs.AssignStringer)
	jobs.Post("/:id/reminders", frontDesk, cfg.Reminders.SendReminder)
	jobs.Get("/:id/attachments", cfg.Attachments.List)
	jobs.Post("/:id/attachments", cfg.Attachments.Add)
	jobs.Delete("/:id/attachments/:attachmentId", cfg.Attachments.Delete)
	jobs.Delete("/:id", manager, cfg.Jobs.DeleteJob)

	staff.Post("/reminders/sweep", manager, cfg.Reminders.Sweep)

	catalog := staff.Group("/strings")
	catalog.Get("", cfg.Strings.ListAll)
	catalog.Post("", manager, cfg.Strings.Create)
	catalog.Put("/:id", manager, cfg.Strings.Update)
	catalog.Delete("/:id", manager, cfg.Strings.Delete)
}
