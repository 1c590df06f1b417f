package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/survey-seeder/internal/response"
	"github.com/stemsi/survey-seeder/internal/template"
)

// TemplateHandler serves the registered survey templates.
type TemplateHandler struct {
	templates *template.Store
}

// NewTemplateHandler creates a new TemplateHandler.
func NewTemplateHandler(templates *template.Store) *TemplateHandler {
	return &TemplateHandler{templates: templates}
}

// ListTemplates godoc
// GET /api/v1/admin/templates
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"templates": h.templates.Summaries()})
}

// GetTemplate godoc
// GET /api/v1/admin/templates/:id
// Returns the full template hierarchy and any invariant it breaks.
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	tpl, ok := h.templates.Get(c.Param("id"))
	if !ok {
		response.Fail(c, http.StatusNotFound, response.ErrTemplateNotFound)
		return
	}

	problems := template.Problems(tpl)
	if problems == nil {
		problems = []string{}
	}

	response.Success(c, http.StatusOK, gin.H{
		"template": tpl,
		"valid":    len(problems) == 0,
		"problems": problems,
	})
}
