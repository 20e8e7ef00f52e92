package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/GregMSThompson/imihigo-backend/internal/catalog"
	"github.com/GregMSThompson/imihigo-backend/internal/dto"
	"github.com/GregMSThompson/imihigo-backend/internal/errs"
	"github.com/GregMSThompson/imihigo-backend/internal/models"
	"github.com/GregMSThompson/imihigo-backend/internal/progress"
	"github.com/GregMSThompson/imihigo-backend/pkg/logger"
)

type submissionReader interface {
	Query(ctx context.Context, q dto.SubmissionQuery, fn func(*models.Submission) error) error
	Latest(ctx context.Context, indicatorID string) (*models.Submission, error)
}

type statsCache interface {
	VersionedKey(ctx context.Context, parts ...string) (string, error)
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, v any) error
}

type analyticsService struct {
	subs    submissionReader
	catalog *catalog.Catalog
	cache   statsCache
}

func NewAnalyticsService(subs submissionReader, cat *catalog.Catalog, cache statsCache) *analyticsService {
	return &analyticsService{subs: subs, catalog: cat, cache: cache}
}

func (s *analyticsService) QuarterProgress(ctx context.Context, indicatorID, quarterID string) (dto.QuarterProgressResponse, error) {
	ind, err := s.indicator(indicatorID)
	if err != nil {
		return dto.QuarterProgressResponse{}, err
	}
	quarter, ok := s.catalog.Quarter(quarterID)
	if !ok {
		return dto.QuarterProgressResponse{}, errs.NewNotFoundError("quarter not found: " + quarterID)
	}

	return cached(ctx, s.cache, []string{"quarter", indicatorID, quarterID}, func() (dto.QuarterProgressResponse, error) {
		entries, err := s.entries(ctx, dto.SubmissionQuery{IndicatorID: indicatorID})
		if err != nil {
			return dto.QuarterProgressResponse{}, err
		}
		stats := progress.ComputeQuarterProgress(ind.Indicator, entries, quarter.ID, quarter.Months, s.catalog.Lookup)
		return dto.QuarterProgressResponse{
			IndicatorID:   ind.ID,
			IndicatorName: ind.Name,
			PillarID:      ind.PillarID,
			QuarterName:   quarter.Name,
			IsDual:        ind.IsDual,
			Band:          progress.PerformanceBand(stats.Performance),
			QuarterStats:  stats,
		}, nil
	})
}

func (s *analyticsService) AnnualProgress(ctx context.Context, indicatorID string) (dto.AnnualProgressResponse, error) {
	ind, err := s.indicator(indicatorID)
	if err != nil {
		return dto.AnnualProgressResponse{}, err
	}

	return cached(ctx, s.cache, []string{"annual", indicatorID}, func() (dto.AnnualProgressResponse, error) {
		entries, err := s.entries(ctx, dto.SubmissionQuery{IndicatorID: indicatorID})
		if err != nil {
			return dto.AnnualProgressResponse{}, err
		}
		completion := progress.ComputeAnnualProgress(ind.Indicator, entries)
		return dto.AnnualProgressResponse{
			IndicatorID:   ind.ID,
			IndicatorName: ind.Name,
			AnnualTarget:  ind.Targets.Annual.Value,
			TotalActual:   sumValues(entries),
			Completion:    completion,
			Band:          progress.PerformanceBand(completion),
			Submissions:   len(entries),
		}, nil
	})
}

// PillarOverview computes quarter performance and annual completion for
// every top-level indicator of a pillar from a single submissions read.
func (s *analyticsService) PillarOverview(ctx context.Context, pillarID, quarterID string) (dto.PillarOverviewResponse, error) {
	pillar, ok := s.catalog.Pillar(pillarID)
	if !ok {
		return dto.PillarOverviewResponse{}, errs.NewNotFoundError("pillar not found: " + pillarID)
	}
	quarter, ok := s.catalog.Quarter(quarterID)
	if !ok {
		return dto.PillarOverviewResponse{}, errs.NewNotFoundError("quarter not found: " + quarterID)
	}

	return cached(ctx, s.cache, []string{"pillar", pillarID, quarterID}, func() (dto.PillarOverviewResponse, error) {
		byIndicator := make(map[string][]progress.Entry)
		err := s.subs.Query(ctx, dto.SubmissionQuery{PillarID: pillarID}, func(sub *models.Submission) error {
			byIndicator[sub.IndicatorID] = append(byIndicator[sub.IndicatorID], sub.Entry())
			return nil
		})
		if err != nil {
			return dto.PillarOverviewResponse{}, err
		}

		resp := dto.PillarOverviewResponse{
			PillarID:   pillar.ID,
			PillarName: pillar.Name,
			QuarterID:  quarter.ID,
			Bands:      map[progress.Band]int{progress.BandLow: 0, progress.BandMedium: 0, progress.BandHigh: 0},
			Indicators: make([]dto.IndicatorOverviewItem, 0),
		}
		total := decimal.Zero
		for _, ind := range s.catalog.PillarIndicators(pillarID) {
			entries := byIndicator[ind.ID]
			stats := progress.ComputeQuarterProgress(ind.Indicator, entries, quarter.ID, quarter.Months, s.catalog.Lookup)
			band := progress.PerformanceBand(stats.Performance)
			resp.Indicators = append(resp.Indicators, dto.IndicatorOverviewItem{
				IndicatorID:        ind.ID,
				IndicatorName:      ind.Name,
				OutputID:           ind.OutputID,
				QuarterPerformance: stats.Performance,
				TargetDefaulted:    stats.TargetDefaulted,
				Band:               band,
				AnnualCompletion:   progress.ComputeAnnualProgress(ind.Indicator, entries),
				Submissions:        len(entries),
			})
			resp.Bands[band]++
			total = total.Add(decimal.NewFromFloat(capPercent(stats.Performance)))
		}
		if n := len(resp.Indicators); n > 0 {
			resp.AveragePerformance = total.Div(decimal.NewFromInt(int64(n))).Round(2).InexactFloat64()
		}
		return resp, nil
	})
}

func (s *analyticsService) LatestSubmission(ctx context.Context, indicatorID string) (*models.Submission, error) {
	if _, err := s.indicator(indicatorID); err != nil {
		return nil, err
	}
	return s.subs.Latest(ctx, indicatorID)
}

func (s *analyticsService) indicator(id string) (catalog.Indicator, error) {
	ind, ok := s.catalog.Indicator(id)
	if !ok {
		return catalog.Indicator{}, errs.NewNotFoundError("indicator not found: " + id)
	}
	return ind, nil
}

func (s *analyticsService) entries(ctx context.Context, q dto.SubmissionQuery) ([]progress.Entry, error) {
	var entries []progress.Entry
	err := s.subs.Query(ctx, q, func(sub *models.Submission) error {
		entries = append(entries, sub.Entry())
		return nil
	})
	return entries, err
}

// cached serves compute from the analytics cache when possible. Cache
// failures are logged and the value is computed directly.
func cached[T any](ctx context.Context, c statsCache, parts []string, compute func() (T, error)) (T, error) {
	if c == nil {
		return compute()
	}
	log := logger.FromContext(ctx)

	key, err := c.VersionedKey(ctx, parts...)
	if err != nil {
		log.Warn("analytics cache unavailable", "error", err)
		return compute()
	}
	var hit T
	found, err := c.GetJSON(ctx, key, &hit)
	if err != nil {
		log.Warn("analytics cache read failed", "key", key, "error", err)
	}
	if found {
		log.Debug("analytics cache hit", "key", key)
		return hit, nil
	}

	v, err := compute()
	if err != nil {
		return v, err
	}
	if err := c.SetJSON(ctx, key, v); err != nil {
		log.Warn("analytics cache write failed", "key", key, "error", err)
	}
	return v, nil
}

func sumValues(entries []progress.Entry) float64 {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(decimal.NewFromFloat(e.Value))
	}
	return total.InexactFloat64()
}

func capPercent(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}
