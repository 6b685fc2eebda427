package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"leadcrm/internal/auth"
)

func withRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := auth.WithIdentity(c.Request.Context(), auth.Identity{UserID: "u", Role: role})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func serve(t *testing.T, chain ...gin.HandlerFunc) int {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	chain = append(chain, func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/x", chain...)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	return w.Code
}

func TestRequireAnyRole_AdminBypasses(t *testing.T) {
	if code := serve(t, withRole(RoleAdmin), RequireAnyRole(RoleStaff)); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
}

func TestRequireAnyRole_StaffDeniedFromAdminOnly(t *testing.T) {
	if code := serve(t, withRole(RoleStaff), RequireAnyRole(RoleAdmin)); code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", code)
	}
}

func TestRequireAnyRole_StaffAllowed(t *testing.T) {
	if code := serve(t, withRole(RoleStaff), RequireAnyRole(RoleStaff)); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
}

func TestRequireAnyRole_RoleRequired(t *testing.T) {
	if code := serve(t, RequireAnyRole(RoleStaff)); code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
}
