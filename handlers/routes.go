package handlers

import (
	"github.com/gofiber/fiber/v2"

	"meet-registration-portal/middleware"
	"meet-registration-portal/services"
)

func SetupAuthRoutes(app *fiber.App, authService *services.AuthService) {
	app.Post("/auth/login", authService.Login)

	secured := app.Group("/auth", middleware.RequireAuth(authService.JWTSecret))
	secured.Get("/me", authService.Me)
}

func SetupTeamRoutes(app *fiber.App, teamService *services.TeamService, jwtSecret []byte) {
	team := app.Group("/team", middleware.RequireAuth(jwtSecret), middleware.RequireTeam())

	team.Get("/registration", teamService.GetRegistration)
	team.Get("/catalog", teamService.GetCatalog)
	team.Get("/fee", teamService.GetFee)

	team.Post("/drafts", teamService.GenerateSlots)
	team.Put("/drafts/:index", teamService.UpdateDraft)
	team.Patch("/drafts/:index", teamService.UpdateDraft)
	team.Delete("/drafts/:index", teamService.RemoveDraft)
	team.Post("/drafts/:index/photo", teamService.UploadPhoto)

	team.Post("/submit", teamService.SubmitAll)
	team.Post("/delete-requests", teamService.RequestDelete)
	team.Post("/sync", teamService.SyncNow)
}

func SetupAdminRoutes(app *fiber.App, adminService *services.AdminService, jwtSecret []byte) {
	admin := app.Group("/admin", middleware.RequireAuth(jwtSecret), middleware.RequireAdmin())

	admin.Get("/participants", adminService.ListParticipants)
	admin.Get("/participants/export.csv", adminService.ExportCSV)
	admin.Get("/participants/:id/photo", adminService.DownloadPhoto)
	admin.Get("/fees", adminService.FeesSummary)

	admin.Get("/delete-requests", adminService.ListDeleteRequests)
	admin.Post("/delete-requests/:req_id/approve", adminService.ApproveDelete)
	admin.Post("/delete-requests/:req_id/reject", adminService.RejectDelete)
}
