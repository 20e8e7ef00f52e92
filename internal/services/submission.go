package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/GregMSThompson/imihigo-backend/internal/catalog"
	"github.com/GregMSThompson/imihigo-backend/internal/dto"
	"github.com/GregMSThompson/imihigo-backend/internal/errs"
	"github.com/GregMSThompson/imihigo-backend/internal/models"
	"github.com/GregMSThompson/imihigo-backend/pkg/logger"
)

type submissionStore interface {
	Create(ctx context.Context, sub *models.Submission) error
	Get(ctx context.Context, id string) (*models.Submission, error)
	Update(ctx context.Context, sub *models.Submission) error
	Delete(ctx context.Context, id string) error
	Query(ctx context.Context, q dto.SubmissionQuery, fn func(*models.Submission) error) error
}

type auditRecorder interface {
	Record(ctx context.Context, entry *models.AuditLog) error
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

type submissionService struct {
	store   submissionStore
	catalog *catalog.Catalog
	audit   auditRecorder
	cache   cacheInvalidator
}

func NewSubmissionService(store submissionStore, cat *catalog.Catalog, audit auditRecorder, cache cacheInvalidator) *submissionService {
	return &submissionService{store: store, catalog: cat, audit: audit, cache: cache}
}

func (s *submissionService) Create(ctx context.Context, uid string, req dto.CreateSubmissionRequest) (*models.Submission, error) {
	log := logger.FromContext(ctx)

	ind, pillar, err := s.resolve(req.PillarID, req.OutputID, req.IndicatorID)
	if err != nil {
		return nil, err
	}
	sub := &models.Submission{
		ID:            uuid.NewString(),
		PillarID:      pillar.ID,
		PillarName:    pillar.Name,
		OutputID:      ind.OutputID,
		IndicatorID:   ind.ID,
		IndicatorName: ind.Name,
		QuarterID:     req.QuarterID,
		Month:         req.Month,
		TargetValue:   req.TargetValue,
		SubValues:     req.SubValues,
		Comments:      req.Comments,
		SubmittedBy:   uid,
		Timestamp:     time.Now(),
	}
	if req.Value != nil {
		sub.Value = *req.Value
	}
	if err := s.check(ind, sub); err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, sub); err != nil {
		log.Error("failed to create submission", "error", err)
		return nil, err
	}
	s.afterWrite(ctx, models.AuditCreate, uid, sub.ID, map[string]any{
		"indicatorId": sub.IndicatorID,
		"quarterId":   sub.QuarterID,
		"month":       sub.Month,
		"value":       sub.Value,
	})

	log.Info("submission created", "submission_id", sub.ID, "indicator_id", sub.IndicatorID, "quarter_id", sub.QuarterID)
	return sub, nil
}

func (s *submissionService) Get(ctx context.Context, id string) (*models.Submission, error) {
	return s.store.Get(ctx, id)
}

// List returns the matching submissions, newest first.
func (s *submissionService) List(ctx context.Context, q dto.SubmissionQuery) ([]*models.Submission, error) {
	subs := make([]*models.Submission, 0)
	err := s.store.Query(ctx, q, func(sub *models.Submission) error {
		subs = append(subs, sub)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortNewestFirst(subs)
	if q.Limit > 0 && len(subs) > q.Limit {
		subs = subs[:q.Limit]
	}
	return subs, nil
}

func (s *submissionService) Update(ctx context.Context, uid, id string, req dto.UpdateSubmissionRequest) (*models.Submission, error) {
	log := logger.FromContext(ctx)

	sub, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	ind, ok := s.catalog.Indicator(sub.IndicatorID)
	if !ok {
		return nil, errs.NewValidationError("submission references unknown indicator " + sub.IndicatorID)
	}

	changes := make(map[string]any)
	if req.QuarterID != nil {
		sub.QuarterID = *req.QuarterID
		changes["quarterId"] = sub.QuarterID
	}
	if req.Month != nil {
		sub.Month = *req.Month
		changes["month"] = sub.Month
	}
	if req.Value != nil {
		sub.Value = *req.Value
		changes["value"] = sub.Value
	}
	if req.TargetValue != nil {
		sub.TargetValue = req.TargetValue
		changes["targetValue"] = *req.TargetValue
	}
	if req.SubValues != nil {
		sub.SubValues = req.SubValues
		changes["subValues"] = req.SubValues
	}
	if req.Comments != nil {
		sub.Comments = *req.Comments
		changes["comments"] = sub.Comments
	}
	if len(changes) == 0 {
		return sub, nil
	}
	if err := s.check(ind, sub); err != nil {
		return nil, err
	}

	if err := s.store.Update(ctx, sub); err != nil {
		log.Error("failed to update submission", "submission_id", id, "error", err)
		return nil, err
	}
	s.afterWrite(ctx, models.AuditUpdate, uid, id, changes)
	return sub, nil
}

func (s *submissionService) Delete(ctx context.Context, uid, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.afterWrite(ctx, models.AuditDelete, uid, id, nil)
	logger.FromContext(ctx).Info("submission deleted", "submission_id", id)
	return nil
}

// ByQuarter groups submissions per quarter and indicator with totals.
func (s *submissionService) ByQuarter(ctx context.Context, pillarID, indicatorID string) (dto.ByQuarterResponse, error) {
	subs, err := s.List(ctx, dto.SubmissionQuery{PillarID: pillarID, IndicatorID: indicatorID})
	if err != nil {
		return dto.ByQuarterResponse{}, err
	}

	type groupKey struct{ quarter, indicator, pillar string }
	groups := make(map[groupKey]*dto.IndicatorGroup)
	var keys []groupKey
	for _, sub := range subs {
		k := groupKey{sub.QuarterID, sub.IndicatorID, sub.PillarID}
		g, ok := groups[k]
		if !ok {
			g = &dto.IndicatorGroup{
				IndicatorID:   sub.IndicatorID,
				IndicatorName: sub.IndicatorName,
				PillarID:      sub.PillarID,
				PillarName:    sub.PillarName,
			}
			groups[k] = g
			keys = append(keys, k)
		}
		g.TotalValue += sub.Value
		g.Count++
		g.Submissions = append(g.Submissions, dto.GroupedSubmission{
			ID:          sub.ID,
			Month:       sub.Month,
			Value:       sub.Value,
			SubValues:   sub.SubValues,
			Comments:    sub.Comments,
			SubmittedBy: sub.SubmittedBy,
			Timestamp:   sub.Timestamp,
		})
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].quarter != keys[j].quarter {
			return keys[i].quarter < keys[j].quarter
		}
		if keys[i].indicator != keys[j].indicator {
			return lessIndicatorID(keys[i].indicator, keys[j].indicator)
		}
		return keys[i].pillar < keys[j].pillar
	})

	resp := dto.ByQuarterResponse{Quarters: make([]dto.QuarterGroup, 0)}
	for _, k := range keys {
		n := len(resp.Quarters)
		if n == 0 || resp.Quarters[n-1].QuarterID != k.quarter {
			resp.Quarters = append(resp.Quarters, dto.QuarterGroup{
				QuarterID:   k.quarter,
				QuarterName: s.quarterName(k.quarter),
			})
			n++
		}
		g := groups[k]
		resp.Quarters[n-1].Indicators = append(resp.Quarters[n-1].Indicators, *g)
		resp.Summary.TotalSubmissions += g.Count
	}
	resp.Summary.TotalIndicators = len(keys)
	resp.Summary.QuartersWithData = len(resp.Quarters)
	return resp, nil
}

func (s *submissionService) resolve(pillarID, outputID, indicatorID string) (catalog.Indicator, catalog.Pillar, error) {
	ind, ok := s.catalog.Indicator(indicatorID)
	if !ok {
		return catalog.Indicator{}, catalog.Pillar{}, errs.NewNotFoundError("indicator not found: " + indicatorID)
	}
	if ind.ParentID != "" {
		return catalog.Indicator{}, catalog.Pillar{}, errs.NewValidationError(
			fmt.Sprintf("indicator %s is part of %s; report it as a sub-value of %s", ind.ID, ind.ParentID, ind.ParentID))
	}
	if ind.PillarID != pillarID {
		return catalog.Indicator{}, catalog.Pillar{}, errs.NewValidationError(
			fmt.Sprintf("indicator %s does not belong to pillar %s", ind.ID, pillarID))
	}
	if outputID != "" && outputID != ind.OutputID {
		return catalog.Indicator{}, catalog.Pillar{}, errs.NewValidationError(
			fmt.Sprintf("indicator %s does not belong to output %s", ind.ID, outputID))
	}
	pillar, _ := s.catalog.Pillar(ind.PillarID)
	return ind, pillar, nil
}

// check enforces the catalog rules on a submission about to be written.
func (s *submissionService) check(ind catalog.Indicator, sub *models.Submission) error {
	if _, ok := s.catalog.Quarter(sub.QuarterID); !ok {
		return errs.NewValidationError("unknown quarter: " + sub.QuarterID)
	}
	q, ok := s.catalog.QuarterForMonth(sub.Month)
	if !ok {
		return errs.NewValidationError("unknown month: " + sub.Month)
	}
	if q.ID != sub.QuarterID {
		return errs.NewValidationError(fmt.Sprintf("month %s is not part of quarter %s; it belongs to %s", sub.Month, sub.QuarterID, q.ID))
	}
	if sub.TargetValue != nil && !ind.IsDual {
		return errs.NewValidationError("targetValue is only accepted for dual indicators")
	}
	if len(sub.SubValues) == 0 {
		return nil
	}
	if !ind.IsComposite() {
		return errs.NewValidationError("subValues are only accepted for indicators with sub-indicators")
	}
	declared := make(map[string]bool, len(ind.SubIndicators))
	for _, ref := range ind.SubIndicators {
		declared[ref.Key] = true
	}
	var unknown []string
	for key := range sub.SubValues {
		if !declared[key] {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return errs.NewValidationError("unknown sub-value keys: " + strings.Join(unknown, ", "))
	}
	return nil
}

// afterWrite drops cached analytics and records the change. Failures are
// logged; the write itself already succeeded.
func (s *submissionService) afterWrite(ctx context.Context, action models.AuditAction, uid, id string, changes map[string]any) {
	log := logger.FromContext(ctx)
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			log.Warn("failed to invalidate analytics cache", "error", err)
		}
	}
	if s.audit != nil {
		err := s.audit.Record(ctx, &models.AuditLog{
			Action:     action,
			Collection: "submissions",
			DocumentID: id,
			UserID:     uid,
			Changes:    changes,
		})
		if err != nil {
			log.Warn("failed to write audit log", "submission_id", id, "error", err)
		}
	}
}

func (s *submissionService) quarterName(id string) string {
	if q, ok := s.catalog.Quarter(id); ok {
		return q.Name
	}
	return id
}

func sortNewestFirst(subs []*models.Submission) {
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].Timestamp.After(subs[j].Timestamp)
	})
}

// lessIndicatorID orders "2" before "10" and "8" before "8a".
func lessIndicatorID(a, b string) bool {
	na, ra := splitIndicatorID(a)
	nb, rb := splitIndicatorID(b)
	if na != nb {
		return na < nb
	}
	return ra < rb
}

func splitIndicatorID(id string) (int, string) {
	i := 0
	for i < len(id) && id[i] >= '0' && id[i] <= '9' {
		i++
	}
	n, err := strconv.Atoi(id[:i])
	if err != nil {
		return -1, id
	}
	return n, id[i:]
}
