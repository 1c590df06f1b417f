package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/survey-seeder/internal/middleware"
	"github.com/stemsi/survey-seeder/internal/model"
	"github.com/stemsi/survey-seeder/internal/response"
	"github.com/stemsi/survey-seeder/internal/service"
	"github.com/stemsi/survey-seeder/internal/template"
	"github.com/stemsi/survey-seeder/internal/validator"
)

// SeedRunner is what the seed endpoints need from service.SeedRunService.
type SeedRunner interface {
	RunTemplate(ctx context.Context, templateID string) (model.SurveyOutcome, error)
	Run(ctx context.Context, templateIDs []string, requestedBy string) (*model.SeedRun, error)
	Enqueue(ctx context.Context, templateIDs []string, requestedBy string) (*model.SeedRun, error)
	Get(ctx context.Context, runID string) (*model.SeedRun, error)
	Last(ctx context.Context) (*model.SeedRun, error)
}

// SeedHandler triggers template materialization and reports on runs.
type SeedHandler struct {
	runner SeedRunner
	log    zerolog.Logger
}

// NewSeedHandler creates a new SeedHandler.
func NewSeedHandler(runner SeedRunner, log zerolog.Logger) *SeedHandler {
	return &SeedHandler{
		runner: runner,
		log:    log.With().Str("component", "seed_handler").Logger(),
	}
}

// SeedTemplate godoc
// POST /api/v1/admin/seed/templates/:id
// Materializes one template synchronously and returns its outcome.
func (h *SeedHandler) SeedTemplate(c *gin.Context) {
	outcome, err := h.runner.RunTemplate(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	h.log.Info().
		Str("template_id", outcome.TemplateID).
		Str("requested_by", requester(c)).
		Bool("survey_created", outcome.SurveyCreated).
		Msg("Template seeded")

	response.Success(c, http.StatusOK, outcome)
}

// SeedBatch godoc
// POST /api/v1/admin/seed/batch
// Body: {"template_ids": [...], "async": false}. Without ids every template
// is seeded. Async requests are queued and answered with 202 and the run id.
func (h *SeedHandler) SeedBatch(c *gin.Context) {
	var req model.SeedBatchRequest
	if c.Request.ContentLength != 0 {
		if fields := validator.Bind(c, &req); fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}
	}

	if req.Async {
		run, err := h.runner.Enqueue(c.Request.Context(), req.TemplateIDs, requester(c))
		if err != nil {
			h.fail(c, err)
			return
		}
		response.Success(c, http.StatusAccepted, gin.H{"run_id": run.ID, "status": run.Status})
		return
	}

	run, err := h.runner.Run(c.Request.Context(), req.TemplateIDs, requester(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"run_id": run.ID, "outcome": run.Outcome})
}

// GetLastRun godoc
// GET /api/v1/admin/seed/runs/last
func (h *SeedHandler) GetLastRun(c *gin.Context) {
	run, err := h.runner.Last(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, run)
}

// GetRun godoc
// GET /api/v1/admin/seed/runs/:id
func (h *SeedHandler) GetRun(c *gin.Context) {
	run, err := h.runner.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, run)
}

func (h *SeedHandler) fail(c *gin.Context, err error) {
	var verr *template.ValidationError
	switch {
	case errors.Is(err, template.ErrTemplateNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrTemplateNotFound)
	case errors.As(err, &verr):
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrInvalidTemplate, validationFields(err))
	case errors.Is(err, template.ErrMalformedTemplate):
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrMalformedTemplate, map[string]string{"detail": err.Error()})
	case errors.Is(err, service.ErrSeedInProgress):
		response.Fail(c, http.StatusConflict, response.ErrSeedInProgress)
	case errors.Is(err, service.ErrRunNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrRunNotFound)
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("Seed request failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// validationFields flattens one or more ValidationErrors into template id → problems.
func validationFields(err error) map[string]string {
	fields := map[string]string{}
	var errs []error
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	} else {
		errs = []error{err}
	}
	for _, e := range errs {
		var verr *template.ValidationError
		if errors.As(e, &verr) {
			fields[verr.TemplateID] = strings.Join(verr.Problems, "; ")
		}
	}
	return fields
}

func requester(c *gin.Context) string {
	if claims := middleware.GetClaims(c); claims != nil {
		return claims.Subject
	}
	return "anonymous"
}
