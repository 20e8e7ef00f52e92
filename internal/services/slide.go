package services

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/GregMSThompson/imihigo-backend/internal/catalog"
	"github.com/GregMSThompson/imihigo-backend/internal/dto"
	"github.com/GregMSThompson/imihigo-backend/internal/errs"
	"github.com/GregMSThompson/imihigo-backend/internal/models"
	"github.com/GregMSThompson/imihigo-backend/internal/progress"
	"github.com/GregMSThompson/imihigo-backend/pkg/logger"
)

const newSlideTitle = "New Slide"

// slideStore is the Firestore storage interface for slides.
type slideStore interface {
	Create(ctx context.Context, uid string, sl *models.Slide) error
	Get(ctx context.Context, uid, slideID string) (*models.Slide, error)
	List(ctx context.Context, uid string) ([]*models.Slide, error)
	Update(ctx context.Context, uid string, sl *models.Slide) error
	Delete(ctx context.Context, uid, slideID string) error
	Count(ctx context.Context, uid string) (int, error)
	BulkUpdatePositions(ctx context.Context, uid string, positions map[string]int) error
}

type slideService struct {
	store   slideStore
	catalog *catalog.Catalog
}

func NewSlideService(store slideStore, cat *catalog.Catalog) *slideService {
	return &slideService{store: store, catalog: cat}
}

// ListSlides returns the user's deck ordered by position, creating the
// default summary slide for a user without one.
func (s *slideService) ListSlides(ctx context.Context, uid string) ([]*models.Slide, error) {
	slides, err := s.store.List(ctx, uid)
	if err != nil {
		return nil, err
	}
	if len(slides) > 0 {
		sort.SliceStable(slides, func(i, j int) bool { return slides[i].Position < slides[j].Position })
		return slides, nil
	}

	first := &models.Slide{
		SlideID:  uuid.NewString(),
		Title:    dto.DefaultSlideTitle,
		Comments: "Introduction to the quarterly performance results.",
		Position: 1,
	}
	if err := s.store.Create(ctx, uid, first); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("default slide created", "slide_id", first.SlideID)
	return []*models.Slide{first}, nil
}

func (s *slideService) AddSlide(ctx context.Context, uid string, req dto.CreateSlideRequest) (*models.Slide, error) {
	if err := s.checkLinks(req.PillarID, req.IndicatorID); err != nil {
		return nil, err
	}
	count, err := s.store.Count(ctx, uid)
	if err != nil {
		return nil, err
	}
	title := req.Title
	if title == "" {
		title = newSlideTitle
	}
	sl := &models.Slide{
		SlideID:     uuid.NewString(),
		Title:       title,
		Comments:    req.Comments,
		PillarID:    req.PillarID,
		IndicatorID: req.IndicatorID,
		ShowGraph:   req.ShowGraph,
		Position:    count + 1,
	}
	if err := s.store.Create(ctx, uid, sl); err != nil {
		return nil, err
	}
	return sl, nil
}

func (s *slideService) UpdateSlide(ctx context.Context, uid, slideID string, req dto.UpdateSlideRequest) (*models.Slide, error) {
	sl, err := s.store.Get(ctx, uid, slideID)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		sl.Title = *req.Title
	}
	if req.Comments != nil {
		sl.Comments = *req.Comments
	}
	if req.PillarID != nil {
		sl.PillarID = *req.PillarID
		// a new pillar invalidates the indicator unless one is given too
		if req.IndicatorID == nil {
			sl.IndicatorID = ""
		}
	}
	if req.IndicatorID != nil {
		sl.IndicatorID = *req.IndicatorID
	}
	if req.ShowGraph != nil {
		sl.ShowGraph = *req.ShowGraph
	}
	if err := s.checkLinks(sl.PillarID, sl.IndicatorID); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, uid, sl); err != nil {
		return nil, err
	}
	return sl, nil
}

func (s *slideService) ReorderSlides(ctx context.Context, uid string, req dto.ReorderSlidesRequest) error {
	positions := make(map[string]int, len(req.SlideOrder))
	for _, item := range req.SlideOrder {
		if _, dup := positions[item.SlideID]; dup {
			return errs.NewValidationError("slide listed twice: " + item.SlideID)
		}
		positions[item.SlideID] = item.Position
	}
	return s.store.BulkUpdatePositions(ctx, uid, positions)
}

// DeleteSlide removes a slide; the last remaining slide cannot be deleted.
func (s *slideService) DeleteSlide(ctx context.Context, uid, slideID string) error {
	if _, err := s.store.Get(ctx, uid, slideID); err != nil {
		return err
	}
	count, err := s.store.Count(ctx, uid)
	if err != nil {
		return err
	}
	if count <= 1 {
		return errs.NewValidationError("a deck must keep at least one slide")
	}
	return s.store.Delete(ctx, uid, slideID)
}

// PreviewSlide resolves the slide's links and, when the graph is shown, the
// quarterly target bars of its indicator.
func (s *slideService) PreviewSlide(ctx context.Context, uid, slideID string) (dto.SlidePreview, error) {
	sl, err := s.store.Get(ctx, uid, slideID)
	if err != nil {
		return dto.SlidePreview{}, err
	}
	preview := dto.SlidePreview{
		SlideID:   sl.SlideID,
		Title:     sl.Title,
		Comments:  sl.Comments,
		ShowGraph: sl.ShowGraph,
	}
	if p, ok := s.catalog.Pillar(sl.PillarID); ok {
		preview.PillarName = p.Name
	}
	ind, ok := s.catalog.Indicator(sl.IndicatorID)
	if !ok {
		return preview, nil
	}
	preview.IndicatorName = ind.Name
	if sl.ShowGraph {
		preview.Bars = targetBars(ind.Targets)
	}
	return preview, nil
}

func (s *slideService) checkLinks(pillarID, indicatorID string) error {
	if pillarID != "" {
		if _, ok := s.catalog.Pillar(pillarID); !ok {
			return errs.NewValidationError("unknown pillar: " + pillarID)
		}
	}
	if indicatorID == "" {
		return nil
	}
	if pillarID == "" {
		return errs.NewValidationError("an indicator needs a pillar")
	}
	ind, ok := s.catalog.Indicator(indicatorID)
	if !ok || ind.PillarID != pillarID {
		return errs.NewValidationError("indicator " + indicatorID + " is not part of pillar " + pillarID)
	}
	return nil
}

func targetBars(t progress.Targets) []dto.TargetBar {
	quarters := []struct {
		label  string
		target progress.Target
	}{
		{"Q1", t.Q1}, {"Q2", t.Q2}, {"Q3", t.Q3}, {"Q4", t.Q4},
	}
	bars := make([]dto.TargetBar, 0, len(quarters))
	for _, q := range quarters {
		bars = append(bars, dto.TargetBar{Label: q.label, Value: q.target.Value, Kind: q.target.Kind.String()})
	}
	return bars
}
