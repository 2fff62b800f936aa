package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/recruitment-assistant/internal/models"
	"alfredoptarigan/recruitment-assistant/internal/repositories"
	"alfredoptarigan/recruitment-assistant/internal/services"
)

type PipelineHandler struct {
	pipeline       *services.Pipeline
	sessions       services.SessionStore
	storageService services.StorageService
	jobRepo        repositories.JobRepository
	maxFileSize    int64
}

func NewPipelineHandler(
	pipeline *services.Pipeline,
	sessions services.SessionStore,
	storageService services.StorageService,
	jobRepo repositories.JobRepository,
	maxFileSize int64,
) *PipelineHandler {
	return &PipelineHandler{
		pipeline:       pipeline,
		sessions:       sessions,
		storageService: storageService,
		jobRepo:        jobRepo,
		maxFileSize:    maxFileSize,
	}
}

// HandleResumeUpload handles POST /resume-upload. It creates a session,
// stores the uploaded resume and runs the resume stage.
func (h *PipelineHandler) HandleResumeUpload(c *fiber.Ctx) error {
	file, err := c.FormFile("resume")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "resume file is required",
		})
	}

	if file.Size > h.maxFileSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "resume file too large",
		})
	}

	filename, filePath, err := h.storageService.SaveResume(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to save resume file: " + err.Error(),
		})
	}
	defer h.storageService.DeleteFile(filename)

	sessionID := uuid.New().String()
	state := models.NewCandidateState()
	state.ResumeFile = filePath

	var outcome models.StageOutcome
	var snapshot *models.CandidateState
	h.sessions.WithLock(sessionID, func() {
		outcome = h.pipeline.ResumeUpload(c.Context(), state)
		state.ResumeFile = ""
		h.sessions.Put(sessionID, state)
		snapshot = state.Clone()
	})

	return c.JSON(stageResponse(sessionID, outcome, snapshot))
}

// HandleJDUpload handles POST /jd-upload. The JD text comes either inline or
// from a stored job posting.
func (h *PipelineHandler) HandleJDUpload(c *fiber.Ctx) error {
	payload, state, errResp := h.loadSession(c)
	if errResp != nil {
		return errResp(c)
	}

	jdText := payload.JDText
	if jdText == "" && payload.JobID != 0 {
		job, err := h.jobRepo.FindByID(payload.JobID)
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "job description not found",
			})
		}
		jdText = job.Text
	}

	if jdText == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "jd_text or job_id is required",
		})
	}

	var outcome models.StageOutcome
	var snapshot *models.CandidateState
	h.sessions.WithLock(payload.SessionID, func() {
		state.JDText = jdText
		outcome = h.pipeline.JDUpload(c.Context(), state)
		h.sessions.Put(payload.SessionID, state)
		snapshot = state.Clone()
	})

	return c.JSON(stageResponse(payload.SessionID, outcome, snapshot))
}

// HandleMatch handles POST /match.
func (h *PipelineHandler) HandleMatch(c *fiber.Ctx) error {
	return h.runStage(c, h.pipeline.Match)
}

// HandleSkillGap handles POST /skill-gap.
func (h *PipelineHandler) HandleSkillGap(c *fiber.Ctx) error {
	return h.runStage(c, h.pipeline.SkillGap)
}

// HandleAssessment handles POST /assessment.
func (h *PipelineHandler) HandleAssessment(c *fiber.Ctx) error {
	return h.runStage(c, h.pipeline.Assessment)
}

// HandleInterview handles POST /interview.
func (h *PipelineHandler) HandleInterview(c *fiber.Ctx) error {
	return h.runStage(c, h.pipeline.Interview)
}

// HandleEvaluateInterview handles POST /evaluate-interview.
func (h *PipelineHandler) HandleEvaluateInterview(c *fiber.Ctx) error {
	payload, state, errResp := h.loadSession(c)
	if errResp != nil {
		return errResp(c)
	}

	var outcome models.StageOutcome
	var snapshot *models.CandidateState
	h.sessions.WithLock(payload.SessionID, func() {
		if len(payload.CandidateAnswers) > 0 {
			state.CandidateAnswers = payload.CandidateAnswers
		}
		outcome = h.pipeline.Evaluation(c.Context(), state)
		h.sessions.Put(payload.SessionID, state)
		snapshot = state.Clone()
	})

	return c.JSON(stageResponse(payload.SessionID, outcome, snapshot))
}

// HandleFullPipeline handles POST /pipeline: resume upload plus JD text in
// one request, running the whole chain through the interview stage.
func (h *PipelineHandler) HandleFullPipeline(c *fiber.Ctx) error {
	file, err := c.FormFile("resume")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "resume file is required",
		})
	}

	jdText := c.FormValue("jd_text")
	if jdText == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "jd_text is required",
		})
	}

	filename, filePath, err := h.storageService.SaveResume(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to save resume file: " + err.Error(),
		})
	}
	defer h.storageService.DeleteFile(filename)

	sessionID := uuid.New().String()
	state := models.NewCandidateState()
	state.ResumeFile = filePath
	state.JDText = jdText

	var outcomes []models.StageOutcome
	var snapshot *models.CandidateState
	h.sessions.WithLock(sessionID, func() {
		outcomes = h.pipeline.Run(c.Context(), state)
		state.ResumeFile = ""
		h.sessions.Put(sessionID, state)
		snapshot = state.Clone()
	})

	degraded := []string{}
	for _, outcome := range outcomes {
		if outcome.Degraded() {
			degraded = append(degraded, outcome.Stage)
		}
	}

	return c.JSON(fiber.Map{
		"session_id":      sessionID,
		"degraded_stages": degraded,
		"state":           snapshot,
	})
}

func (h *PipelineHandler) runStage(c *fiber.Ctx, stage func(context.Context, *models.CandidateState) models.StageOutcome) error {
	payload, state, errResp := h.loadSession(c)
	if errResp != nil {
		return errResp(c)
	}

	var outcome models.StageOutcome
	var snapshot *models.CandidateState
	h.sessions.WithLock(payload.SessionID, func() {
		outcome = stage(c.Context(), state)
		h.sessions.Put(payload.SessionID, state)
		snapshot = state.Clone()
	})

	return c.JSON(stageResponse(payload.SessionID, outcome, snapshot))
}

func (h *PipelineHandler) loadSession(c *fiber.Ctx) (*models.StagePayload, *models.CandidateState, func(*fiber.Ctx) error) {
	var payload models.StagePayload
	if err := c.BodyParser(&payload); err != nil {
		return nil, nil, func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request payload",
			})
		}
	}

	if payload.SessionID == "" {
		return nil, nil, func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "session_id is required",
			})
		}
	}

	state, ok := h.sessions.Get(payload.SessionID)
	if !ok {
		return nil, nil, func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "session not found",
			})
		}
	}

	return &payload, state, nil
}

func stageResponse(sessionID string, outcome models.StageOutcome, state *models.CandidateState) fiber.Map {
	return fiber.Map{
		"session_id": sessionID,
		"stage":      outcome.Stage,
		"degraded":   outcome.Degraded(),
		"state":      state,
	}
}
