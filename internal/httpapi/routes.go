package httpapi

import (
	"github.com/gin-gonic/gin"

	"leadcrm/internal/rbac"
)

// Register mounts the /api surface. authMW verifies bearer tokens; submitMW
// guards the public form posts (rate limiting) and may be nil.
func (h Handlers) Register(r gin.IRouter, authMW, submitMW gin.HandlerFunc) {
	api := r.Group("/api")

	// public intake
	public := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		if submitMW == nil {
			return []gin.HandlerFunc{handler}
		}
		return []gin.HandlerFunc{submitMW, handler}
	}
	api.POST("/contacts", public(h.CreateContact)...)
	api.POST("/projects", public(h.CreateProject)...)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh", h.Refresh)
	}

	admin := api.Group("/admin")
	admin.Use(authMW, rbac.RequireAnyRole(rbac.RoleStaff))
	{
		admin.GET("/me", h.Me)
		admin.GET("/users", h.ListUsers)
		admin.GET("/overview", h.Overview)
		admin.GET("/activities", h.RecentActivities)

		cs := admin.Group("/contacts")
		cs.GET("", h.ListContacts)
		cs.GET("/stats", h.ContactStats)
		cs.GET("/:id", h.GetContact)
		ContactLifecycle(h.Contacts).Register(cs)

		ps := admin.Group("/projects")
		ps.GET("", h.ListProjects)
		ps.GET("/stats", h.ProjectStats)
		ps.GET("/:id", h.GetProject)
		ps.PATCH("/:id/estimates", h.UpdateEstimates)
		ProjectLifecycle(h.Projects).Register(ps)
	}
}
