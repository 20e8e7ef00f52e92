package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/imihigo-backend/internal/dto"
	"github.com/GregMSThompson/imihigo-backend/internal/middleware"
	"github.com/GregMSThompson/imihigo-backend/internal/models"
	"github.com/GregMSThompson/imihigo-backend/internal/progress"
	"github.com/GregMSThompson/imihigo-backend/internal/response"
)

type maintenanceService interface {
	MigrateSubValues(ctx context.Context, uid string) (progress.MigrationResult, error)
	MigrationHistory(ctx context.Context) ([]*models.MigrationRun, error)
	ClearData(ctx context.Context, uid string) (dto.ClearDataResponse, error)
}

type adminHandlers struct {
	ResponseHandler response.ResponseHandler
	MaintenanceSvc  maintenanceService
}

func NewAdminHandlers(deps *Deps) *adminHandlers {
	return &adminHandlers{
		ResponseHandler: deps.ResponseHandler,
		MaintenanceSvc:  deps.MaintenanceSvc,
	}
}

func (h *adminHandlers) AdminRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/migrate-subvalues", h.MigrateSubValues)
	r.Get("/migrations", h.MigrationHistory)
	r.Post("/clear-data", h.ClearData)
	return r
}

func (h *adminHandlers) MigrateSubValues(w http.ResponseWriter, r *http.Request) {
	result, err := h.MaintenanceSvc.MigrateSubValues(r.Context(), middleware.UID(r.Context()))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, result)
}

func (h *adminHandlers) MigrationHistory(w http.ResponseWriter, r *http.Request) {
	runs, err := h.MaintenanceSvc.MigrationHistory(r.Context())
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, runs)
}

func (h *adminHandlers) ClearData(w http.ResponseWriter, r *http.Request) {
	resp, err := h.MaintenanceSvc.ClearData(r.Context(), middleware.UID(r.Context()))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, resp)
}
