package config

import (
	"strings"
	"testing"
	"time"
)

func baseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "local")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "")
	t.Setenv("DB_USER", "postgres")
	t.Setenv("DB_PASSWORD", "x")
	t.Setenv("DB_NAME", "leadcrm")
	t.Setenv("DB_SSLMODE", "")
	t.Setenv("REDIS_HOST", "")
	t.Setenv("REDIS_PORT", "")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("JWT_ISSUER", "")
	t.Setenv("JWT_AUDIENCE", "")
	t.Setenv("JWT_ACCESS_TTL", "")
	t.Setenv("JWT_REFRESH_TTL", "")
	t.Setenv("RATE_LIMIT_SUBMISSIONS", "")
	t.Setenv("RATE_LIMIT_WINDOW", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
}

func TestValidate_ReportsMissingRequired(t *testing.T) {
	c := Config{}
	c.ApplyDefaults()
	err := c.Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"APP_ENV is required", "DB_HOST is required", "JWT_SECRET is required"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %q", want, err.Error())
		}
	}
}

func TestFromEnv_LocalDefaults(t *testing.T) {
	baseEnv(t)
	c, err := FromEnv()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.DB.SSLMode != "disable" || c.DB.Port != 5432 {
		t.Fatalf("expected db defaults, got %+v", c.DB)
	}
	if c.Store.Driver != StorePostgres {
		t.Fatalf("expected postgres default, got %q", c.Store.Driver)
	}
	if c.RedisEnabled() {
		t.Fatalf("redis should be off without REDIS_HOST")
	}
	if c.RateLimit.Submissions != 5 || c.RateLimit.Window != time.Minute {
		t.Fatalf("unexpected rate limit defaults %+v", c.RateLimit)
	}
	if len(c.CORS.AllowedOrigins) != 1 || c.CORS.AllowedOrigins[0] != "*" {
		t.Fatalf("expected wildcard cors locally, got %v", c.CORS.AllowedOrigins)
	}
}

func TestFromEnv_ProductionRequiresExplicitSettings(t *testing.T) {
	baseEnv(t)
	t.Setenv("APP_ENV", "production")
	_, err := FromEnv()
	if err == nil {
		t.Fatalf("expected error")
	}
	for _, want := range []string{"DB_SSLMODE", "JWT_ISSUER", "JWT_AUDIENCE", "CORS_ALLOWED_ORIGINS"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %s in %q", want, err.Error())
		}
	}
}

func TestFromEnv_MemoryStoreSkipsDB(t *testing.T) {
	baseEnv(t)
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("DB_HOST", "")
	t.Setenv("DB_USER", "")
	t.Setenv("DB_NAME", "")
	if _, err := FromEnv(); err != nil {
		t.Fatalf("expected memory store to need no db, got %v", err)
	}
}

func TestFromEnv_ParseErrors(t *testing.T) {
	baseEnv(t)
	t.Setenv("APP_PORT", "eighty")
	t.Setenv("RATE_LIMIT_WINDOW", "soon")
	_, err := FromEnv()
	if err == nil || !strings.Contains(err.Error(), "APP_PORT") || !strings.Contains(err.Error(), "RATE_LIMIT_WINDOW") {
		t.Fatalf("expected both parse errors, got %v", err)
	}
}

func TestFromEnv_RedisAndCORSLists(t *testing.T) {
	baseEnv(t)
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://example.com, https://www.example.com ,")
	c, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if c.RedisAddr() != "cache:6379" {
		t.Fatalf("expected default redis port, got %s", c.RedisAddr())
	}
	if len(c.CORS.AllowedOrigins) != 2 || c.CORS.AllowedOrigins[1] != "https://www.example.com" {
		t.Fatalf("unexpected origins %v", c.CORS.AllowedOrigins)
	}
}
