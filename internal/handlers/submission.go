package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/imihigo-backend/internal/dto"
	"github.com/GregMSThompson/imihigo-backend/internal/errs"
	"github.com/GregMSThompson/imihigo-backend/internal/middleware"
	"github.com/GregMSThompson/imihigo-backend/internal/models"
	"github.com/GregMSThompson/imihigo-backend/internal/response"
)

type submissionService interface {
	Create(ctx context.Context, uid string, req dto.CreateSubmissionRequest) (*models.Submission, error)
	Get(ctx context.Context, id string) (*models.Submission, error)
	List(ctx context.Context, q dto.SubmissionQuery) ([]*models.Submission, error)
	Update(ctx context.Context, uid, id string, req dto.UpdateSubmissionRequest) (*models.Submission, error)
	Delete(ctx context.Context, uid, id string) error
	ByQuarter(ctx context.Context, pillarID, indicatorID string) (dto.ByQuarterResponse, error)
}

type submissionHandlers struct {
	ResponseHandler response.ResponseHandler
	Validator       requestValidator
	SubmissionSvc   submissionService
}

func NewSubmissionHandlers(deps *Deps) *submissionHandlers {
	return &submissionHandlers{
		ResponseHandler: deps.ResponseHandler,
		Validator:       deps.Validator,
		SubmissionSvc:   deps.SubmissionSvc,
	}
}

func (h *submissionHandlers) SubmissionRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListSubmissions)
	r.Post("/", h.CreateSubmission)
	r.Get("/by-quarter", h.ByQuarter) // must be before /{id}
	r.Get("/{id}", h.GetSubmission)
	r.Patch("/{id}", h.UpdateSubmission)
	r.Delete("/{id}", h.DeleteSubmission)
	return r
}

func (h *submissionHandlers) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := dto.SubmissionQuery{
		PillarID:    q.Get("pillarId"),
		QuarterID:   q.Get("quarterId"),
		IndicatorID: q.Get("indicatorId"),
		Month:       q.Get("month"),
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			h.ResponseHandler.HandleError(w, r, errs.NewFieldValidationError("invalid fields: limit",
				map[string]string{"limit": "limit must be a non-negative integer"}))
			return
		}
		query.Limit = limit
	}

	subs, err := h.SubmissionSvc.List(r.Context(), query)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, subs)
}

func (h *submissionHandlers) CreateSubmission(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateSubmissionRequest
	if err := decode(r, h.Validator, &req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	uid := middleware.UID(r.Context())
	sub, err := h.SubmissionSvc.Create(r.Context(), uid, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, sub)
}

func (h *submissionHandlers) ByQuarter(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp, err := h.SubmissionSvc.ByQuarter(r.Context(), q.Get("pillarId"), q.Get("indicatorId"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, resp)
}

func (h *submissionHandlers) GetSubmission(w http.ResponseWriter, r *http.Request) {
	sub, err := h.SubmissionSvc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, sub)
}

func (h *submissionHandlers) UpdateSubmission(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req dto.UpdateSubmissionRequest
	if err := decode(r, h.Validator, &req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	uid := middleware.UID(r.Context())
	sub, err := h.SubmissionSvc.Update(r.Context(), uid, id, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, sub)
}

func (h *submissionHandlers) DeleteSubmission(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	if err := h.SubmissionSvc.Delete(r.Context(), uid, chi.URLParam(r, "id")); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}
