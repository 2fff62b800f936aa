package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/recruitment-assistant/internal/models"
	"alfredoptarigan/recruitment-assistant/internal/repositories"
)

type JobHandler struct {
	jobRepo repositories.JobRepository
}

func NewJobHandler(jobRepo repositories.JobRepository) *JobHandler {
	return &JobHandler{jobRepo: jobRepo}
}

// HandleCreateJob handles POST /jobs.
func (h *JobHandler) HandleCreateJob(c *fiber.Ctx) error {
	var req models.CreateJobRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request payload",
		})
	}

	if req.Company == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "company is required",
		})
	}

	if req.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "text is required",
		})
	}

	job := &models.JobDescription{
		Title:     req.Title,
		Company:   req.Company,
		Text:      req.Text,
		CreatedAt: time.Now(),
	}

	if err := h.jobRepo.Create(job); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create job description",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(jobResponse(job))
}

// HandleListJobs handles GET /jobs, newest first.
func (h *JobHandler) HandleListJobs(c *fiber.Ctx) error {
	jobs, err := h.jobRepo.List()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to list job descriptions",
		})
	}

	responses := make([]models.JobResponse, 0, len(jobs))
	for i := range jobs {
		responses = append(responses, jobResponse(&jobs[i]))
	}

	return c.JSON(fiber.Map{"jobs": responses})
}

// HandleDeleteJob handles DELETE /jobs/:id.
func (h *JobHandler) HandleDeleteJob(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid job id",
		})
	}

	if err := h.jobRepo.Delete(uint(id)); err != nil {
		if errors.Is(err, repositories.ErrJobNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "job description not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to delete job description",
		})
	}

	return c.JSON(fiber.Map{"deleted": id})
}

func jobResponse(job *models.JobDescription) models.JobResponse {
	return models.JobResponse{
		ID:        job.ID,
		Title:     job.Title,
		Company:   job.Company,
		Text:      job.Text,
		CreatedAt: job.CreatedAt.Format(time.RFC3339),
	}
}
