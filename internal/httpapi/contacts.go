package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"leadcrm/internal/contacts"
	"leadcrm/internal/crm"
	"leadcrm/pkg/response"
)

type createContactRequest struct {
	Name             string `json:"name" validate:"required,max=200"`
	Email            string `json:"email" validate:"required,leademail"`
	Phone            string `json:"phone" validate:"max=50"`
	Company          string `json:"company" validate:"max=200"`
	Subject          string `json:"subject" validate:"max=300"`
	Message          string `json:"message" validate:"required,max=10000"`
	ContactType      string `json:"contactType" validate:"required,oneof=general business support partnership careers"`
	Priority         string `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Source           string `json:"source" validate:"max=100"`
	GDPRConsent      *bool  `json:"gdprConsent"`
	MarketingConsent *bool  `json:"marketingConsent"`
}

// CreateContact accepts a public contact-form submission.
func (h Handlers) CreateContact(c *gin.Context) {
	var req createContactRequest
	if !bind(c, &req) {
		return
	}
	id, err := h.Contacts.Create(c.Request.Context(), contacts.CreateInput{
		Name:             req.Name,
		Email:            req.Email,
		Phone:            req.Phone,
		Company:          req.Company,
		Subject:          req.Subject,
		Message:          req.Message,
		Type:             contacts.ContactType(req.ContactType),
		Priority:         crm.Priority(req.Priority),
		Source:           req.Source,
		UserAgent:        c.Request.UserAgent(),
		IPAddress:        c.ClientIP(),
		Referrer:         c.Request.Referer(),
		GDPRConsent:      req.GDPRConsent,
		MarketingConsent: req.MarketingConsent,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"id": id})
}

type listQuery struct {
	Status     string `form:"status"`
	Type       string `form:"type"`
	Priority   string `form:"priority"`
	AssignedTo string `form:"assignedTo"`
	Q          string `form:"q"`
}

// ListContacts serves both filtered listings and ?q= full-text search.
func (h Handlers) ListContacts(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid query")
		return
	}
	limit, ok := queryLimit(c, 0)
	if !ok {
		return
	}
	f := contacts.Filter{
		Status:     contacts.Status(q.Status),
		Type:       contacts.ContactType(q.Type),
		Priority:   crm.Priority(q.Priority),
		AssignedTo: q.AssignedTo,
		Limit:      limit,
	}

	// count is the number of matches before the limit
	out, total, err := h.Contacts.Page(c.Request.Context(), q.Q, f)
	if err != nil {
		fail(c, err)
		return
	}
	response.List(c, http.StatusOK, out, total)
}

func (h Handlers) GetContact(c *gin.Context) {
	out, err := h.Contacts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

func (h Handlers) ContactStats(c *gin.Context) {
	out, err := h.Reporting.ContactStats(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}
