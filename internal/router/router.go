package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/GregMSThompson/imihigo-backend/internal/handlers"
	"github.com/GregMSThompson/imihigo-backend/internal/middleware"
	"github.com/GregMSThompson/imihigo-backend/internal/models"
)

const adminRole = models.RoleAdmin

type Options struct {
	AllowedOrigins []string
	Auth           *middleware.Middleware
}

func NewRouter(deps *handlers.Deps, opts Options) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggerMiddleware(deps.Log).LoggerMiddleware)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		deps.ResponseHandler.WriteSuccess(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	meta := handlers.NewMetadataHandlers(deps)
	auth := handlers.NewAuthHandlers(deps)
	subs := handlers.NewSubmissionHandlers(deps)
	an := handlers.NewAnalyticsHandlers(deps)
	sl := handlers.NewSlideHandlers(deps)
	adm := handlers.NewAdminHandlers(deps)

	r.Route("/api", func(r chi.Router) {
		r.Get("/metadata", meta.Metadata)
		r.Get("/quarters", meta.Quarters)
		r.Get("/targets", meta.Targets)
		r.Mount("/auth", auth.AuthRoutes(opts.Auth.FirebaseAuth))

		r.Group(func(r chi.Router) {
			r.Use(opts.Auth.FirebaseAuth)
			r.Mount("/submissions", subs.SubmissionRoutes())
			r.Mount("/analytics", an.AnalyticsRoutes())
			r.Mount("/slides", sl.SlideRoutes())
			r.Route("/admin", func(r chi.Router) {
				r.Use(opts.Auth.RequireRole(adminRole))
				r.Mount("/", adm.AdminRoutes())
			})
		})
	})
	return r
}
