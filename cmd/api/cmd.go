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

	"github.com/GregMSThompson/imihigo-backend/internal/bootstrap"
	"github.com/GregMSThompson/imihigo-backend/internal/config"
	"github.com/GregMSThompson/imihigo-backend/internal/handlers"
	"github.com/GregMSThompson/imihigo-backend/internal/middleware"
	"github.com/GregMSThompson/imihigo-backend/internal/response"
	"github.com/GregMSThompson/imihigo-backend/internal/router"
	"github.com/GregMSThompson/imihigo-backend/internal/services"
	"github.com/GregMSThompson/imihigo-backend/internal/store"
	"github.com/GregMSThompson/imihigo-backend/internal/validate"
)

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

func main() {
	// bootstrap
	cfg := config.New()
	bs, err := bootstrap.Run(cfg)
	exitOnError("bootstrap failed", err, bs.Log)
	defer bs.Close()

	// stores
	ustore := store.NewUserStore(bs.Firestore)
	sstore := store.NewSubmissionStore(bs.Firestore)
	slstore := store.NewSlideStore(bs.Firestore)
	astore := store.NewAuditStore(bs.Firestore)
	mstore := store.NewMigrationStore(bs.Firestore)

	// services
	userv := services.NewUserService(ustore, bs.Firebase, cfg.AdminEmails)
	subserv := services.NewSubmissionService(sstore, bs.Catalog, astore, bs.Cache)
	anserv := services.NewAnalyticsService(sstore, bs.Catalog, bs.Cache)
	repserv := services.NewReportService(anserv)
	slserv := services.NewSlideService(slstore, bs.Catalog)
	mserv := services.NewMaintenanceService(sstore, mstore, astore, bs.Cache, cfg.AllowDataReset)

	// response handler
	rh := response.New(bs.Log)

	// dependancies
	deps := new(handlers.Deps)
	deps.Log = bs.Log
	deps.ResponseHandler = rh
	deps.Validator = validate.New()
	deps.Catalog = bs.Catalog
	deps.UserSvc = userv
	deps.SubmissionSvc = subserv
	deps.AnalyticsSvc = anserv
	deps.ReportSvc = repserv
	deps.SlideSvc = slserv
	deps.MaintenanceSvc = mserv

	// router
	r := router.NewRouter(deps, router.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		Auth:           middleware.NewMiddleware(bs.Firebase, ustore, rh),
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			bs.Log.Error("server shutdown failed", "error", err)
		}
	}()

	bs.Log.Info("server listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		exitOnError("server start failed", err, bs.Log)
	}
}
