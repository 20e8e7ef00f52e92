package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/GregMSThompson/imihigo-backend/internal/dto"
	"github.com/GregMSThompson/imihigo-backend/internal/errs"
	"github.com/GregMSThompson/imihigo-backend/internal/models"
	"github.com/GregMSThompson/imihigo-backend/internal/validate"
)

// --- Stub service ---

type stubSlideService struct {
	slides         []*models.Slide
	slide          *models.Slide
	preview        dto.SlidePreview
	err            error
	called         bool
	lastSlideID    string
	lastAddReq     dto.CreateSlideRequest
	lastUpdateReq  dto.UpdateSlideRequest
	lastReorderReq dto.ReorderSlidesRequest
}

func (s *stubSlideService) ListSlides(context.Context, string) ([]*models.Slide, error) {
	s.called = true
	return s.slides, s.err
}

func (s *stubSlideService) AddSlide(_ context.Context, _ string, req dto.CreateSlideRequest) (*models.Slide, error) {
	s.called, s.lastAddReq = true, req
	return s.slide, s.err
}

func (s *stubSlideService) UpdateSlide(_ context.Context, _, slideID string, req dto.UpdateSlideRequest) (*models.Slide, error) {
	s.called, s.lastSlideID, s.lastUpdateReq = true, slideID, req
	return s.slide, s.err
}

func (s *stubSlideService) ReorderSlides(_ context.Context, _ string, req dto.ReorderSlidesRequest) error {
	s.called, s.lastReorderReq = true, req
	return s.err
}

func (s *stubSlideService) DeleteSlide(_ context.Context, _, slideID string) error {
	s.called, s.lastSlideID = true, slideID
	return s.err
}

func (s *stubSlideService) PreviewSlide(_ context.Context, _, slideID string) (dto.SlidePreview, error) {
	s.called, s.lastSlideID = true, slideID
	return s.preview, s.err
}

func newSlideTestHandlers(svc *stubSlideService) (*slideHandlers, *stubResponseHandler) {
	resp := &stubResponseHandler{}
	return NewSlideHandlers(&Deps{ResponseHandler: resp, Validator: validate.New(), SlideSvc: svc}), resp
}

// --- Tests ---

func TestListSlides_OK(t *testing.T) {
	svc := &stubSlideService{slides: []*models.Slide{{SlideID: "s1"}}}
	h, resp := newSlideTestHandlers(svc)

	h.ListSlides(httptest.NewRecorder(), withUID(httptest.NewRequest(http.MethodGet, "/api/slides", nil), "uid1"))

	if !resp.writeSuccessCalled || resp.writeSuccessStatus != http.StatusOK {
		t.Fatalf("expected WriteSuccess with 200, got called=%v status=%d", resp.writeSuccessCalled, resp.writeSuccessStatus)
	}
}

func TestAddSlide_OK(t *testing.T) {
	svc := &stubSlideService{slide: &models.Slide{SlideID: "s2"}}
	h, resp := newSlideTestHandlers(svc)

	body := `{"title":"Agriculture","pillarId":"economic","indicatorId":"8","showGraph":true}`
	req := withUID(httptest.NewRequest(http.MethodPost, "/api/slides", strings.NewReader(body)), "uid1")
	h.AddSlide(httptest.NewRecorder(), req)

	if resp.writeSuccessStatus != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.writeSuccessStatus)
	}
	if svc.lastAddReq.IndicatorID != "8" || !svc.lastAddReq.ShowGraph {
		t.Errorf("unexpected request passed to service: %+v", svc.lastAddReq)
	}
}

func TestAddSlide_InvalidJSON(t *testing.T) {
	svc := &stubSlideService{}
	h, resp := newSlideTestHandlers(svc)

	req := withUID(httptest.NewRequest(http.MethodPost, "/api/slides", strings.NewReader("not json")), "uid1")
	h.AddSlide(httptest.NewRecorder(), req)

	if !resp.handleErrorCalled || svc.called {
		t.Fatal("expected HandleError without a service call")
	}
}

func TestUpdateSlide_ServiceError(t *testing.T) {
	svc := &stubSlideService{err: errs.NewNotFoundError("slide not found")}
	h, resp := newSlideTestHandlers(svc)

	req := httptest.NewRequest(http.MethodPut, "/api/slides/s1", strings.NewReader(`{"title":"New"}`))
	req = withUID(withChiParams(req, "slideId", "s1"), "uid1")
	h.UpdateSlide(httptest.NewRecorder(), req)

	var nf *errs.NotFoundError
	if !errors.As(resp.handleError, &nf) {
		t.Fatalf("expected NotFoundError, got %T", resp.handleError)
	}
	if svc.lastSlideID != "s1" || svc.lastUpdateReq.Title == nil || *svc.lastUpdateReq.Title != "New" {
		t.Errorf("unexpected update call %q %+v", svc.lastSlideID, svc.lastUpdateReq)
	}
}

func TestReorderSlides_OK(t *testing.T) {
	svc := &stubSlideService{}
	h, resp := newSlideTestHandlers(svc)

	body := `{"slideOrder":[{"slideId":"a","position":1},{"slideId":"b","position":0}]}`
	req := withUID(httptest.NewRequest(http.MethodPut, "/api/slides/reorder", strings.NewReader(body)), "uid1")
	h.ReorderSlides(httptest.NewRecorder(), req)

	if !resp.writeSuccessCalled || len(svc.lastReorderReq.SlideOrder) != 2 {
		t.Fatalf("unexpected reorder call %+v", svc.lastReorderReq)
	}
}

func TestReorderSlides_Empty(t *testing.T) {
	svc := &stubSlideService{}
	h, resp := newSlideTestHandlers(svc)

	req := withUID(httptest.NewRequest(http.MethodPut, "/api/slides/reorder", strings.NewReader(`{"slideOrder":[]}`)), "uid1")
	h.ReorderSlides(httptest.NewRecorder(), req)

	var ve *errs.ValidationError
	if !errors.As(resp.handleError, &ve) || svc.called {
		t.Fatalf("expected ValidationError, got %v", resp.handleError)
	}
}

func TestDeleteSlide_LastSlide(t *testing.T) {
	svc := &stubSlideService{err: errs.NewValidationError("a deck must keep at least one slide")}
	h, resp := newSlideTestHandlers(svc)

	req := withUID(withChiParams(httptest.NewRequest(http.MethodDelete, "/api/slides/s1", nil), "slideId", "s1"), "uid1")
	h.DeleteSlide(httptest.NewRecorder(), req)

	if !resp.handleErrorCalled || svc.lastSlideID != "s1" {
		t.Fatal("expected HandleError for the last slide")
	}
}

func TestPreviewSlide_OK(t *testing.T) {
	svc := &stubSlideService{preview: dto.SlidePreview{SlideID: "s1", Bars: []dto.TargetBar{{Label: "Q1"}}}}
	h, resp := newSlideTestHandlers(svc)

	req := withUID(withChiParams(httptest.NewRequest(http.MethodGet, "/api/slides/s1/preview", nil), "slideId", "s1"), "uid1")
	h.PreviewSlide(httptest.NewRecorder(), req)

	preview, ok := resp.writeSuccessData.(dto.SlidePreview)
	if !ok || len(preview.Bars) != 1 {
		t.Fatalf("unexpected preview %#v", resp.writeSuccessData)
	}
}
