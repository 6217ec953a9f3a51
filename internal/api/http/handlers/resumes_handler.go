package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/megazord/team-search/internal/api/dto"
	"github.com/megazord/team-search/internal/auth"
	"github.com/megazord/team-search/internal/service"
	apperrors "github.com/megazord/team-search/pkg/util"
)

// ResumesHandler exposes resume and project endpoints.
type ResumesHandler struct {
	resumes *service.ResumeService
}

// NewResumesHandler constructs handler.
func NewResumesHandler(resumes *service.ResumeService) *ResumesHandler {
	return &ResumesHandler{resumes: resumes}
}

// Create handles POST /resumes/create.
func (h *ResumesHandler) Create(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Provided token is not valid")
	}

	var req dto.ResumeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Request body is not valid")
	}
	if req.HackathonID == "" {
		return apperrors.NewValidationError("Hackathon id is required")
	}

	resume, err := h.resumes.Create(c.UserContext(), account, resumeInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewResumeResponse(*resume))
}

// Get handles GET /resumes/get?hackathon_id=...
func (h *ResumesHandler) Get(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Provided token is not valid")
	}
	hackathonID := c.Query("hackathon_id")
	if hackathonID == "" {
		return apperrors.NewValidationError("hackathon_id query parameter is required")
	}

	resume, err := h.resumes.Get(c.UserContext(), account, hackathonID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewResumeResponse(*resume))
}

// Update handles PATCH /resumes/edit.
func (h *ResumesHandler) Update(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Provided token is not valid")
	}

	var req dto.ResumeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Request body is not valid")
	}
	if req.HackathonID == "" {
		return apperrors.NewValidationError("Hackathon id is required")
	}

	resume, err := h.resumes.Update(c.UserContext(), account, resumeInput(req))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewResumeResponse(*resume))
}

// CreateProject handles POST /projects/create.
func (h *ResumesHandler) CreateProject(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Provided token is not valid")
	}

	var req dto.CreateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Request body is not valid")
	}
	if req.ResumeID == "" {
		return apperrors.NewValidationError("Resume id is required")
	}

	project, err := h.resumes.CreateProject(c.UserContext(), account, service.ProjectInput{
		ResumeID:    req.ResumeID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewProjectResponse(*project))
}

// ListProjects handles GET /projects?resume_id=...
func (h *ResumesHandler) ListProjects(c *fiber.Ctx) error {
	resumeID := c.Query("resume_id")
	if resumeID == "" {
		return apperrors.NewValidationError("resume_id query parameter is required")
	}
	projects, err := h.resumes.ListProjects(c.UserContext(), resumeID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewProjectResponses(projects))
}

func resumeInput(req dto.ResumeRequest) service.ResumeInput {
	return service.ResumeInput{
		HackathonID:     req.HackathonID,
		Bio:             req.Bio,
		PersonalWebsite: req.PersonalWebsite,
		GitHub:          req.GitHub,
		HHru:            req.HHru,
		Telegram:        req.Telegram,
		HardSkills:      req.HardSkills,
		SoftSkills:      req.SoftSkills,
	}
}
