package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/survey-seeder/internal/model"
	"github.com/stemsi/survey-seeder/internal/response"
	"github.com/stemsi/survey-seeder/internal/service"
	"github.com/stemsi/survey-seeder/internal/validator"
)

const maxPerPage = 100

// CatalogHandler exposes the survey catalog over HTTP. It is also the
// remote end the HTTP gateway talks to.
type CatalogHandler struct {
	catalogService *service.CatalogService
	log            zerolog.Logger
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalogService *service.CatalogService, log zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		log:            log.With().Str("component", "catalog_handler").Logger(),
	}
}

// CreateSurvey godoc
// POST /api/v1/catalog/surveys
func (h *CatalogHandler) CreateSurvey(c *gin.Context) {
	var req model.SurveyMetadata
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	survey, err := h.catalogService.CreateSurvey(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusCreated, survey)
}

// CreateSection godoc
// POST /api/v1/catalog/surveys/:id/sections
func (h *CatalogHandler) CreateSection(c *gin.Context) {
	surveyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SectionMetadata
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	section, err := h.catalogService.CreateSection(c.Request.Context(), surveyID, req)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusCreated, section)
}

// CreateQuestion godoc
// POST /api/v1/catalog/sections/:id/questions
// Creates a question and its options. The section comes from the path.
func (h *CatalogHandler) CreateQuestion(c *gin.Context) {
	sectionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.QuestionPayload
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	req.SectionID = sectionID.String()

	question, err := h.catalogService.CreateQuestion(c.Request.Context(), sectionID, req)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusCreated, question)
}

// ListSurveys godoc
// GET /api/v1/catalog/surveys?page=1&per_page=20
func (h *CatalogHandler) ListSurveys(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > maxPerPage {
		perPage = 20
	}

	surveys, total, err := h.catalogService.ListSurveys(c.Request.Context(), perPage, (page-1)*perPage)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"surveys": surveys}, response.NewPagination(page, perPage, total))
}

// GetSurvey godoc
// GET /api/v1/catalog/surveys/:id
// Returns the survey with its sections, questions and options.
func (h *CatalogHandler) GetSurvey(c *gin.Context) {
	surveyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	tree, err := h.catalogService.GetSurveyTree(c.Request.Context(), surveyID)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, tree)
}

func (h *CatalogHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSurveyNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrSurveyNotFound)
	case errors.Is(err, service.ErrSectionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrSectionNotFound)
	case errors.Is(err, service.ErrDuplicateOrder):
		response.Fail(c, http.StatusConflict, response.ErrDuplicateOrder)
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("Catalog operation failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
