package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"

	"leadcrm/internal/activity"
	"leadcrm/internal/auth"
	"leadcrm/internal/config"
	"leadcrm/internal/contacts"
	"leadcrm/internal/httpapi"
	"leadcrm/internal/metrics"
	"leadcrm/internal/projects"
	"leadcrm/internal/ratelimit"
	"leadcrm/internal/reporting"
	"leadcrm/internal/users"
	"leadcrm/pkg/logger"
	"leadcrm/pkg/utils"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	st, err := openStores(rootCtx, cfg)
	if err != nil {
		log.Error("store init failed", "driver", cfg.Store.Driver, "err", err)
		os.Exit(1)
	}
	defer st.Close()
	if cfg.Store.Driver == config.StoreMemory {
		log.Warn("using in-memory store; data is lost on restart")
	}

	var limiter *ratelimit.Limiter
	if cfg.RedisEnabled() {
		rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr(), Password: cfg.Redis.Password})
		if err != nil {
			log.Error("redis init failed", "err", err)
			os.Exit(1)
		}
		defer rdb.Close()

		limiter, err = ratelimit.New(rdb, ratelimit.DefaultPrefix, cfg.RateLimit.Submissions, cfg.RateLimit.Window)
		if err != nil {
			log.Error("rate limiter init failed", "err", err)
			os.Exit(1)
		}
	} else {
		log.Info("redis not configured; submission rate limiting disabled")
	}

	activitySvc := activity.NewService(st.activity)
	userSvc := users.NewService(st.users)
	contactSvc := contacts.NewService(st.contacts, activitySvc, userSvc)
	projectSvc := projects.NewService(st.projects, activitySvc, userSvc)

	h := httpapi.Handlers{
		Auth:      authManager,
		Users:     userSvc,
		Contacts:  contactSvc,
		Projects:  projectSvc,
		Reporting: reporting.NewService(contactSvc, projectSvc, activitySvc),
		Activity:  activitySvc,
	}

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))
	r.Use(metrics.Middleware())
	r.Use(httpapi.CORS(cfg.CORS.AllowedOrigins))

	registerRoutes(r, h, st.db, auth.RequireAccessToken(authManager), ratelimit.Middleware(limiter))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env, "store", cfg.Store.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
