package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"leadcrm/internal/config"
)

func newManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(config.AuthConfig{
		JWTSecret:       "secret",
		JWTIssuer:       "issuer",
		JWTAudience:     "aud",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	return m
}

func TestIssueAndVerifyAccessToken(t *testing.T) {
	m := newManager(t)

	now := time.Unix(1700000000, 0).UTC()
	pair, err := m.IssuePair(now, Identity{UserID: "user-1", Name: "Ana", Role: "staff"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected token strings")
	}

	claims, err := m.Verify(pair.AccessToken, TokenTypeAccess, now.Add(1*time.Minute))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != "user-1" || claims.Role != "staff" || claims.Name != "Ana" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	refresh, err := m.Verify(pair.RefreshToken, TokenTypeRefresh, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("verify refresh: %v", err)
	}
	if refresh.Role != "" {
		t.Fatalf("refresh tokens must not carry a role")
	}
}

func TestVerifyRejectsWrongTokenType(t *testing.T) {
	m, _ := NewManager(config.AuthConfig{JWTSecret: "secret", AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Hour})
	p, err := m.IssuePair(time.Now(), Identity{UserID: "u", Role: "admin"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Verify(p.RefreshToken, TokenTypeAccess, time.Now()); !errors.Is(err, ErrTokenTypeMismatch) {
		t.Fatalf("expected token_type mismatch, got %v", err)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	m := newManager(t)
	now := time.Unix(1700000000, 0).UTC()
	p, err := m.IssuePair(now, Identity{UserID: "u", Role: "admin"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Verify(p.AccessToken, TokenTypeAccess, now.Add(time.Hour)); err == nil {
		t.Fatalf("expected expired token to fail")
	}
}

func TestRequireAccessToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := newManager(t)
	pair, err := m.IssuePair(time.Now(), Identity{UserID: "u1", Name: "Ana", Role: "staff"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	r := gin.New()
	var got Identity
	r.GET("/x", RequireAccessToken(m), func(c *gin.Context) {
		got, _ = FromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got.UserID != "u1" || got.Name != "Ana" || got.Role != "staff" {
		t.Fatalf("unexpected identity %+v", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+pair.RefreshToken)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("refresh token must not authorize requests, got %d", w.Code)
	}
}
