package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/imihigo-backend/internal/dto"
	"github.com/GregMSThompson/imihigo-backend/internal/errs"
	"github.com/GregMSThompson/imihigo-backend/internal/models"
	"github.com/GregMSThompson/imihigo-backend/internal/response"
)

type analyticsService interface {
	QuarterProgress(ctx context.Context, indicatorID, quarterID string) (dto.QuarterProgressResponse, error)
	AnnualProgress(ctx context.Context, indicatorID string) (dto.AnnualProgressResponse, error)
	PillarOverview(ctx context.Context, pillarID, quarterID string) (dto.PillarOverviewResponse, error)
	LatestSubmission(ctx context.Context, indicatorID string) (*models.Submission, error)
}

type reportService interface {
	QuarterReport(ctx context.Context, indicatorID, quarterID string) (string, []byte, error)
}

type analyticsHandlers struct {
	ResponseHandler response.ResponseHandler
	AnalyticsSvc    analyticsService
	ReportSvc       reportService
}

func NewAnalyticsHandlers(deps *Deps) *analyticsHandlers {
	return &analyticsHandlers{
		ResponseHandler: deps.ResponseHandler,
		AnalyticsSvc:    deps.AnalyticsSvc,
		ReportSvc:       deps.ReportSvc,
	}
}

func (h *analyticsHandlers) AnalyticsRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/indicators/{indicatorId}/quarters/{quarterId}", h.QuarterProgress)
	r.Get("/indicators/{indicatorId}/quarters/{quarterId}/export", h.ExportQuarter)
	r.Get("/indicators/{indicatorId}/annual", h.AnnualProgress)
	r.Get("/indicators/{indicatorId}/latest", h.LatestSubmission)
	r.Get("/pillars/{pillarId}", h.PillarOverview)
	return r
}

func (h *analyticsHandlers) QuarterProgress(w http.ResponseWriter, r *http.Request) {
	resp, err := h.AnalyticsSvc.QuarterProgress(r.Context(), chi.URLParam(r, "indicatorId"), chi.URLParam(r, "quarterId"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, resp)
}

func (h *analyticsHandlers) ExportQuarter(w http.ResponseWriter, r *http.Request) {
	name, body, err := h.ReportSvc.QuarterReport(r.Context(), chi.URLParam(r, "indicatorId"), chi.URLParam(r, "quarterId"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteFile(w, r, name, dto.XLSXContentType, body)
}

func (h *analyticsHandlers) AnnualProgress(w http.ResponseWriter, r *http.Request) {
	resp, err := h.AnalyticsSvc.AnnualProgress(r.Context(), chi.URLParam(r, "indicatorId"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, resp)
}

func (h *analyticsHandlers) LatestSubmission(w http.ResponseWriter, r *http.Request) {
	sub, err := h.AnalyticsSvc.LatestSubmission(r.Context(), chi.URLParam(r, "indicatorId"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, sub)
}

func (h *analyticsHandlers) PillarOverview(w http.ResponseWriter, r *http.Request) {
	quarterID := r.URL.Query().Get("quarterId")
	if quarterID == "" {
		h.ResponseHandler.HandleError(w, r, errs.NewFieldValidationError("invalid fields: quarterId",
			map[string]string{"quarterId": "quarterId is required"}))
		return
	}
	resp, err := h.AnalyticsSvc.PillarOverview(r.Context(), chi.URLParam(r, "pillarId"), quarterID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, resp)
}
