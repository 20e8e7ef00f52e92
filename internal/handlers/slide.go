package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/imihigo-backend/internal/dto"
	"github.com/GregMSThompson/imihigo-backend/internal/middleware"
	"github.com/GregMSThompson/imihigo-backend/internal/models"
	"github.com/GregMSThompson/imihigo-backend/internal/response"
)

type slideService interface {
	ListSlides(ctx context.Context, uid string) ([]*models.Slide, error)
	AddSlide(ctx context.Context, uid string, req dto.CreateSlideRequest) (*models.Slide, error)
	UpdateSlide(ctx context.Context, uid, slideID string, req dto.UpdateSlideRequest) (*models.Slide, error)
	ReorderSlides(ctx context.Context, uid string, req dto.ReorderSlidesRequest) error
	DeleteSlide(ctx context.Context, uid, slideID string) error
	PreviewSlide(ctx context.Context, uid, slideID string) (dto.SlidePreview, error)
}

type slideHandlers struct {
	ResponseHandler response.ResponseHandler
	Validator       requestValidator
	SlideSvc        slideService
}

func NewSlideHandlers(deps *Deps) *slideHandlers {
	return &slideHandlers{
		ResponseHandler: deps.ResponseHandler,
		Validator:       deps.Validator,
		SlideSvc:        deps.SlideSvc,
	}
}

func (h *slideHandlers) SlideRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListSlides)
	r.Post("/", h.AddSlide)
	r.Put("/reorder", h.ReorderSlides) // must be before /{slideId}
	r.Put("/{slideId}", h.UpdateSlide)
	r.Delete("/{slideId}", h.DeleteSlide)
	r.Get("/{slideId}/preview", h.PreviewSlide)
	return r
}

func (h *slideHandlers) ListSlides(w http.ResponseWriter, r *http.Request) {
	slides, err := h.SlideSvc.ListSlides(r.Context(), middleware.UID(r.Context()))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, slides)
}

func (h *slideHandlers) AddSlide(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateSlideRequest
	if err := decode(r, h.Validator, &req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	slide, err := h.SlideSvc.AddSlide(r.Context(), middleware.UID(r.Context()), req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, slide)
}

func (h *slideHandlers) UpdateSlide(w http.ResponseWriter, r *http.Request) {
	slideID := chi.URLParam(r, "slideId")
	var req dto.UpdateSlideRequest
	if err := decode(r, h.Validator, &req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	slide, err := h.SlideSvc.UpdateSlide(r.Context(), middleware.UID(r.Context()), slideID, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, slide)
}

func (h *slideHandlers) ReorderSlides(w http.ResponseWriter, r *http.Request) {
	var req dto.ReorderSlidesRequest
	if err := decode(r, h.Validator, &req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	if err := h.SlideSvc.ReorderSlides(r.Context(), middleware.UID(r.Context()), req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

func (h *slideHandlers) DeleteSlide(w http.ResponseWriter, r *http.Request) {
	slideID := chi.URLParam(r, "slideId")
	if err := h.SlideSvc.DeleteSlide(r.Context(), middleware.UID(r.Context()), slideID); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

func (h *slideHandlers) PreviewSlide(w http.ResponseWriter, r *http.Request) {
	slideID := chi.URLParam(r, "slideId")
	preview, err := h.SlideSvc.PreviewSlide(r.Context(), middleware.UID(r.Context()), slideID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, preview)
}
