package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"leadcrm/internal/crm"
	"leadcrm/internal/estimate"
	"leadcrm/internal/projects"
	"leadcrm/pkg/response"
)

type contactInfoRequest struct {
	Name  string `json:"name" validate:"max=200"`
	Email string `json:"email" validate:"omitempty,leademail"`
	Phone string `json:"phone" validate:"max=50"`
}

type createProjectRequest struct {
	Name              string             `json:"name" validate:"max=200"`
	Description       string             `json:"description" validate:"max=10000"`
	Type              string             `json:"type" validate:"omitempty,oneof=website-redesign new-website ecommerce web-app mobile-app branding"`
	Urgency           string             `json:"urgency" validate:"omitempty,oneof=low medium high urgent"`
	HasContent        string             `json:"hasContent" validate:"omitempty,oneof=ready partial need-help not-sure"`
	Industry          string             `json:"industry" validate:"max=200"`
	TargetAudience    string             `json:"targetAudience" validate:"max=1000"`
	ExistingWebsite   string             `json:"existingWebsite" validate:"max=500"`
	Goals             []string           `json:"goals" validate:"max=50"`
	Features          []string           `json:"features" validate:"max=50"`
	Timeline          string             `json:"timeline" validate:"max=100"`
	Budget            string             `json:"budget" validate:"max=100"`
	DesignPreferences string             `json:"designPreferences" validate:"max=2000"`
	Contact           contactInfoRequest `json:"contact"`
	Company           string             `json:"company" validate:"max=200"`
	PreferredContact  string             `json:"preferredContact" validate:"max=50"`
	AdditionalInfo    string             `json:"additionalInfo" validate:"max=5000"`
	Source            string             `json:"source" validate:"max=100"`
}

type createProjectResponse struct {
	ID                string   `json:"id"`
	EstimatedBudget   *int     `json:"estimatedBudget"`
	EstimatedTimeline *int     `json:"estimatedTimeline"`
	ComplexityScore   *float64 `json:"complexityScore"`
}

// CreateProject accepts a public project-consultation intake and returns the estimates.
func (h Handlers) CreateProject(c *gin.Context) {
	var req createProjectRequest
	if !bind(c, &req) {
		return
	}
	p, err := h.Projects.Create(c.Request.Context(), projects.CreateInput{
		Name:              req.Name,
		Description:       req.Description,
		Type:              estimate.ProjectType(req.Type),
		Urgency:           estimate.Urgency(req.Urgency),
		HasContent:        estimate.ContentReadiness(req.HasContent),
		Industry:          req.Industry,
		TargetAudience:    req.TargetAudience,
		ExistingWebsite:   req.ExistingWebsite,
		Goals:             req.Goals,
		Features:          req.Features,
		Timeline:          req.Timeline,
		Budget:            req.Budget,
		DesignPreferences: req.DesignPreferences,
		Contact:           projects.ContactInfo(req.Contact),
		Company:           req.Company,
		PreferredContact:  req.PreferredContact,
		AdditionalInfo:    req.AdditionalInfo,
		Source:            req.Source,
		UserAgent:         c.Request.UserAgent(),
		IPAddress:         c.ClientIP(),
		Referrer:          c.Request.Referer(),
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, createProjectResponse{
		ID:                p.ID,
		EstimatedBudget:   p.EstimatedBudget,
		EstimatedTimeline: p.EstimatedTimeline,
		ComplexityScore:   p.ComplexityScore,
	})
}

func (h Handlers) ListProjects(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid query")
		return
	}
	limit, ok := queryLimit(c, 0)
	if !ok {
		return
	}
	f := projects.Filter{
		Status:     projects.Status(q.Status),
		Type:       estimate.ProjectType(q.Type),
		Priority:   crm.Priority(q.Priority),
		AssignedTo: q.AssignedTo,
		Limit:      limit,
	}

	// count is the number of matches before the limit
	out, total, err := h.Projects.Page(c.Request.Context(), q.Q, f)
	if err != nil {
		fail(c, err)
		return
	}
	response.List(c, http.StatusOK, out, total)
}

func (h Handlers) GetProject(c *gin.Context) {
	out, err := h.Projects.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

func (h Handlers) ProjectStats(c *gin.Context) {
	out, err := h.Reporting.ProjectStats(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

type updateEstimatesRequest struct {
	Budget          *int     `json:"budget" validate:"omitempty,gte=0"`
	Timeline        *int     `json:"timeline" validate:"omitempty,gte=0"`
	ComplexityScore *float64 `json:"complexityScore" validate:"omitempty,gte=0"`
}

// UpdateEstimates overrides some or all of a project's estimates.
func (h Handlers) UpdateEstimates(c *gin.Context) {
	var req updateEstimatesRequest
	if !bind(c, &req) {
		return
	}
	id, err := h.Projects.UpdateEstimates(c.Request.Context(), c.Param("id"), projects.EstimatesInput{
		Budget:          req.Budget,
		Timeline:        req.Timeline,
		ComplexityScore: req.ComplexityScore,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id})
}
