package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/megazord/team-search/internal/api/http/handlers"
	"github.com/megazord/team-search/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Profiles       *handlers.ProfilesHandler
	Hackathons     *handlers.HackathonsHandler
	Teams          *handlers.TeamsHandler
	Resumes        *handlers.ResumesHandler
	Notifications  *handlers.NotificationsHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/signup", cfg.Auth.Signup)
	authGroup.Post("/activate", cfg.Auth.Activate)
	authGroup.Post("/resend_code", cfg.Auth.ResendCode)
	authGroup.Post("/signin", cfg.Auth.Signin)
	authGroup.Post("/password/reset/request", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Auth.ConfirmPasswordReset)

	authed := cfg.AuthMiddleware.Handle

	profile := app.Group("/profile", authed)
	profile.Get("/", cfg.Profiles.GetSelf)
	profile.Patch("/", cfg.Profiles.Update)
	profile.Patch("/telegram", cfg.Profiles.LinkTelegram)
	app.Get("/profiles/:id", authed, cfg.Profiles.GetByID)

	hackathons := app.Group("/hackathons", authed)
	hackathons.Post("/", auth.RequireOrganizer(), cfg.Hackathons.Create)
	hackathons.Get("/", cfg.Hackathons.List)
	hackathons.Post("/join", cfg.Hackathons.Join)
	hackathons.Get("/get_user_team/:id", cfg.Hackathons.GetUserTeam)
	hackathons.Get("/:id", cfg.Hackathons.Get)
	hackathons.Patch("/:id", cfg.Hackathons.Update)
	hackathons.Post("/:id/start", cfg.Hackathons.Start)
	hackathons.Post("/:id/end", cfg.Hackathons.End)
	hackathons.Post("/:id/add_user", cfg.Hackathons.Invite)
	hackathons.Post("/:id/remove_user", cfg.Hackathons.RemoveParticipant)
	hackathons.Post("/:id/upload_csv", cfg.Hackathons.UploadCSV)
	hackathons.Get("/:id/export_csv", cfg.Hackathons.ExportCSV)
	hackathons.Get("/:id/summary", cfg.Hackathons.Summary)

	app.Get("/myhackathons", authed, cfg.Hackathons.ListMine)

	teams := app.Group("/teams", authed)
	teams.Post("/create", cfg.Teams.Create)
	teams.Get("/", cfg.Teams.List)
	teams.Post("/join-team", cfg.Teams.Join)
	teams.Post("/leave", cfg.Teams.Leave)
	teams.Post("/apply_for_job", cfg.Teams.Apply)
	teams.Post("/accept_application", cfg.Teams.AcceptApplication)
	teams.Post("/decline_application", cfg.Teams.DeclineApplication)
	teams.Get("/get_applies_for_team", cfg.Teams.ListApplies)
	teams.Get("/team_vacancies", cfg.Teams.ListVacancies)
	teams.Get("/suggest_users_for_vacancy/:id", cfg.Teams.SuggestUsers)
	teams.Get("/suggest_vacancies_for_resume/:id", cfg.Teams.SuggestVacancies)
	teams.Post("/merge/:team1_id/:team2_id", cfg.Teams.Merge)
	teams.Get("/analytic/:hackathon_id", cfg.Teams.Analytics)
	teams.Get("/analytic_difficulty/:hackathon_id", cfg.Teams.ExperienceAnalytics)
	teams.Get("/analytic_skills/:hackathon_id", cfg.Teams.SkillAnalytics)
	teams.Get("/:id", cfg.Teams.Get)
	teams.Patch("/:id", cfg.Teams.Update)
	teams.Delete("/:id", cfg.Teams.Delete)
	teams.Post("/:id/add_user", cfg.Teams.Invite)
	teams.Post("/:id/remove_user", cfg.Teams.RemoveMember)

	resumes := app.Group("/resumes", authed)
	resumes.Post("/create", cfg.Resumes.Create)
	resumes.Get("/get", cfg.Resumes.Get)
	resumes.Patch("/edit", cfg.Resumes.Update)

	app.Get("/notifications/status", authed, auth.RequireOrganizer(), cfg.Notifications.DeliveryStatus)

	projects := app.Group("/projects", authed)
	projects.Post("/create", cfg.Resumes.CreateProject)
	projects.Get("/", cfg.Resumes.ListProjects)
}
