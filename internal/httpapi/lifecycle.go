package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"leadcrm/internal/activity"
	"leadcrm/internal/auth"
	"leadcrm/internal/contacts"
	"leadcrm/internal/crm"
	"leadcrm/internal/projects"
	"leadcrm/internal/rbac"
	"leadcrm/pkg/response"
)

// Lifecycle holds the mutations shared by both record kinds so one set of
// handlers can serve /contacts/:id/... and /projects/:id/... alike.
type Lifecycle struct {
	Kind         crm.Kind
	UpdateStatus func(ctx context.Context, id, status, note string) (string, error)
	Assign       func(ctx context.Context, id, userID, assignedBy string) (string, error)
	AddNote      func(ctx context.Context, id, content, author string, t crm.NoteType) (string, error)
	Delete       func(ctx context.Context, id string, permanent bool) (string, error)
	Activities   func(ctx context.Context, id string, limit int) ([]activity.Activity, error)
}

func ContactLifecycle(s *contacts.Service) Lifecycle {
	return Lifecycle{
		Kind: crm.KindContact,
		UpdateStatus: func(ctx context.Context, id, status, note string) (string, error) {
			return s.UpdateStatus(ctx, id, contacts.Status(status), note)
		},
		Assign: s.Assign,
		AddNote: func(ctx context.Context, id, content, author string, t crm.NoteType) (string, error) {
			return s.AddNote(ctx, id, contacts.NoteInput{Content: content, Author: author, Type: t})
		},
		Delete:     s.Delete,
		Activities: s.ListActivities,
	}
}

func ProjectLifecycle(s *projects.Service) Lifecycle {
	return Lifecycle{
		Kind: crm.KindProject,
		UpdateStatus: func(ctx context.Context, id, status, note string) (string, error) {
			return s.UpdateStatus(ctx, id, projects.Status(status), note)
		},
		Assign: s.Assign,
		AddNote: func(ctx context.Context, id, content, author string, t crm.NoteType) (string, error) {
			return s.AddNote(ctx, id, projects.NoteInput{Content: content, Author: author, Type: t})
		},
		Delete:     s.Delete,
		Activities: s.ListActivities,
	}
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes" validate:"max=5000"`
}

type assignRequest struct {
	UserID string `json:"userId" validate:"required"`
}

type addNoteRequest struct {
	Content string `json:"content" validate:"required,max=10000"`
	Author  string `json:"author" validate:"max=200"`
	Type    string `json:"type" validate:"omitempty,oneof=note call email meeting"`
}

func (l Lifecycle) HandleUpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if !bind(c, &req) {
		return
	}
	id, err := l.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, req.Notes)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id, "status": req.Status})
}

func (l Lifecycle) HandleAssign(c *gin.Context) {
	var req assignRequest
	if !bind(c, &req) {
		return
	}
	by, _ := auth.UserID(c.Request.Context())
	id, err := l.Assign(c.Request.Context(), c.Param("id"), req.UserID, by)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id, "assignedTo": req.UserID})
}

// HandleAddNote defaults the author to the caller's name, then their user id.
func (l Lifecycle) HandleAddNote(c *gin.Context) {
	var req addNoteRequest
	if !bind(c, &req) {
		return
	}
	author := strings.TrimSpace(req.Author)
	if author == "" {
		if who, err := auth.FromContext(c.Request.Context()); err == nil {
			author = who.Name
			if author == "" {
				author = who.UserID
			}
		}
	}
	id, err := l.AddNote(c.Request.Context(), c.Param("id"), req.Content, author, crm.NoteType(req.Type))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"id": id})
}

// HandleDelete soft-deletes by default. ?permanent=true removes the row and is admin-only.
func (l Lifecycle) HandleDelete(c *gin.Context) {
	permanent := false
	if raw := c.Query("permanent"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			response.ErrorWithDetails(c, http.StatusBadRequest, "validation failed",
				map[string]string{"permanent": "must be true or false"})
			return
		}
		permanent = v
	}
	if permanent {
		role, _ := auth.Role(c.Request.Context())
		if !rbac.IsAdmin(role) {
			response.Error(c, http.StatusForbidden, "permanent delete requires admin")
			return
		}
	}
	id, err := l.Delete(c.Request.Context(), c.Param("id"), permanent)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id, "permanent": permanent})
}

func (l Lifecycle) HandleActivities(c *gin.Context) {
	limit, ok := queryLimit(c, defaultActivityLimit)
	if !ok {
		return
	}
	out, err := l.Activities(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		fail(c, err)
		return
	}
	response.List(c, http.StatusOK, out, len(out))
}

// Register mounts the shared lifecycle routes on a /{kind} group.
func (l Lifecycle) Register(g gin.IRoutes) {
	g.GET("/:id/activities", l.HandleActivities)
	g.PATCH("/:id/status", l.HandleUpdateStatus)
	g.PATCH("/:id/assign", l.HandleAssign)
	g.POST("/:id/notes", l.HandleAddNote)
	g.DELETE("/:id", l.HandleDelete)
}
