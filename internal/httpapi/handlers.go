package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"leadcrm/internal/activity"
	"leadcrm/internal/auth"
	"leadcrm/internal/contacts"
	"leadcrm/internal/crm"
	"leadcrm/internal/metrics"
	"leadcrm/internal/projects"
	"leadcrm/internal/reporting"
	"leadcrm/internal/users"
	"leadcrm/pkg/response"
	"leadcrm/pkg/validate"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Auth      *auth.Manager
	Users     *users.Service
	Contacts  *contacts.Service
	Projects  *projects.Service
	Reporting *reporting.Service
	Activity  *activity.Service
}

// fail maps service errors onto status codes. Anything unexpected becomes a
// generic 500 and the cause is attached to the gin context for the request logger.
func fail(c *gin.Context, err error) {
	var verr *crm.ValidationError
	switch {
	case errors.As(err, &verr):
		details := map[string]string{}
		if verr.Field != "" {
			details[verr.Field] = verr.Message
		}
		response.ErrorWithDetails(c, http.StatusBadRequest, verr.Error(), details)
	case errors.Is(err, crm.ErrValidation):
		response.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, crm.ErrNotFound):
		response.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, users.ErrInvalidCredentials), errors.Is(err, users.ErrInactive):
		response.Error(c, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, users.ErrEmailTaken):
		response.Error(c, http.StatusConflict, err.Error())
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "internal server error")
	}
}

// bind decodes the JSON body into req and runs its validate tags.
// It writes the 400 itself and reports false on failure.
func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid json")
		return false
	}
	if details := validate.Struct(req); details != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "validation failed", details)
		return false
	}
	return true
}

// queryLimit reads ?limit=, returning def when absent.
func queryLimit(c *gin.Context, def int) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		response.ErrorWithDetails(c, http.StatusBadRequest, "validation failed",
			map[string]string{"limit": "must be a non-negative integer"})
		return 0, false
	}
	return n, true
}

// --- Auth ---

type loginRequest struct {
	Email    string `json:"email" validate:"required,leademail"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type tokenResponse struct {
	auth.TokenPair
	User users.User `json:"user"`
}

// Login exchanges staff credentials for a token pair.
func (h Handlers) Login(c *gin.Context) {
	var req loginRequest
	if !bind(c, &req) {
		return
	}
	u, err := h.Users.Authenticate(c.Request.Context(), req.Email, req.Password)
	metrics.RecordAuthAttempt(err == nil)
	if err != nil {
		fail(c, err)
		return
	}
	h.issue(c, u)
}

// Refresh trades a refresh token for a new pair. Role and name come from the
// directory, so demotions and deactivations apply at the next refresh.
func (h Handlers) Refresh(c *gin.Context) {
	var req refreshRequest
	if !bind(c, &req) {
		return
	}
	claims, err := h.Auth.Verify(req.RefreshToken, auth.TokenTypeRefresh, time.Now())
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "invalid token")
		return
	}
	u, err := h.Users.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, crm.ErrNotFound) {
			response.Error(c, http.StatusUnauthorized, "invalid token")
			return
		}
		fail(c, err)
		return
	}
	if !u.Active {
		response.Error(c, http.StatusUnauthorized, "invalid token")
		return
	}
	h.issue(c, u)
}

func (h Handlers) issue(c *gin.Context, u users.User) {
	pair, err := h.Auth.IssuePair(time.Now(), auth.Identity{UserID: u.ID, Name: u.Name, Role: string(u.Role)})
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, tokenResponse{TokenPair: pair, User: u})
}

// Me returns the authenticated staff member.
func (h Handlers) Me(c *gin.Context) {
	uid, _ := auth.UserID(c.Request.Context())
	u, err := h.Users.Get(c.Request.Context(), uid)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, u)
}

// ListUsers returns the staff directory, used to populate assignee pickers.
func (h Handlers) ListUsers(c *gin.Context) {
	out, err := h.Users.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.List(c, http.StatusOK, out, len(out))
}

// --- Dashboard ---

// Overview returns contact and project statistics plus the latest activity.
func (h Handlers) Overview(c *gin.Context) {
	limit, ok := queryLimit(c, reporting.DefaultRecentActivity)
	if !ok {
		return
	}
	out, err := h.Reporting.Overview(c.Request.Context(), limit)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

const defaultActivityLimit = 50

// RecentActivities lists activity across both record kinds, newest first.
func (h Handlers) RecentActivities(c *gin.Context) {
	limit, ok := queryLimit(c, defaultActivityLimit)
	if !ok {
		return
	}
	out, err := h.Activity.ListRecent(c.Request.Context(), limit)
	if err != nil {
		fail(c, err)
		return
	}
	response.List(c, http.StatusOK, out, len(out))
}
