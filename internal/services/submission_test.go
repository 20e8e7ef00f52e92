package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/GregMSThompson/imihigo-backend/internal/dto"
	"github.com/GregMSThompson/imihigo-backend/internal/errs"
	"github.com/GregMSThompson/imihigo-backend/internal/models"
	"github.com/GregMSThompson/imihigo-backend/pkg/helpers"
)

func newTestSubmissionService(t *testing.T, subs ...*models.Submission) (*submissionService, *fakeSubmissionStore, *fakeAudit, *fakeCache) {
	t.Helper()
	store := newFakeSubmissionStore(subs...)
	audit := &fakeAudit{}
	c := newFakeCache()
	return NewSubmissionService(store, testCatalog(t), audit, c), store, audit, c
}

func validCreate() dto.CreateSubmissionRequest {
	return dto.CreateSubmissionRequest{
		PillarID:    "economic",
		IndicatorID: "3",
		QuarterID:   "q1",
		Month:       "July",
		Value:       helpers.Ptr(1200.0),
		Comments:    "consolidated plots",
	}
}

func TestSubmissionCreate(t *testing.T) {
	svc, store, audit, c := newTestSubmissionService(t)

	sub, err := svc.Create(helpers.TestCtx(), "uid-1", validCreate())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.ID == "" || sub.SubmittedBy != "uid-1" || sub.Value != 1200 {
		t.Fatalf("unexpected submission %+v", sub)
	}
	if sub.PillarName == "" || sub.IndicatorName == "" || sub.OutputID == "" {
		t.Fatalf("catalog names not resolved: %+v", sub)
	}
	if _, ok := store.subs[sub.ID]; !ok {
		t.Fatalf("submission not stored")
	}
	if c.invalidated != 1 {
		t.Fatalf("expected cache invalidation got %d", c.invalidated)
	}
	if len(audit.entries) != 1 || audit.entries[0].Action != models.AuditCreate || audit.entries[0].DocumentID != sub.ID {
		t.Fatalf("unexpected audit entries %+v", audit.entries)
	}
}

func TestSubmissionCreateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*dto.CreateSubmissionRequest)
		want   string
	}{
		{"unknown indicator", func(r *dto.CreateSubmissionRequest) { r.IndicatorID = "9999" }, "indicator not found"},
		{"wrong pillar", func(r *dto.CreateSubmissionRequest) { r.PillarID = "social" }, "does not belong to pillar"},
		{"wrong output", func(r *dto.CreateSubmissionRequest) { r.OutputID = "nope" }, "does not belong to output"},
		{"sub-indicator record", func(r *dto.CreateSubmissionRequest) { r.IndicatorID = "8a" }, "sub-value of 8"},
		{"unknown quarter", func(r *dto.CreateSubmissionRequest) { r.QuarterID = "q9" }, "unknown quarter"},
		{"month outside quarter", func(r *dto.CreateSubmissionRequest) { r.Month = "January" }, "not part of quarter q1; it belongs to q3"},
		{"unknown month", func(r *dto.CreateSubmissionRequest) { r.Month = "Smarch" }, "unknown month"},
		{"target on single indicator", func(r *dto.CreateSubmissionRequest) { r.TargetValue = helpers.Ptr(10.0) }, "dual indicators"},
		{"sub-values on plain indicator", func(r *dto.CreateSubmissionRequest) {
			r.SubValues = map[string]float64{"maize": 1}
		}, "sub-indicators"},
		{"undeclared sub-value key", func(r *dto.CreateSubmissionRequest) {
			r.IndicatorID = "8"
			r.SubValues = map[string]float64{"maize": 1, "rice": 2, "beans": 3}
		}, "beans, rice"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, store, audit, _ := newTestSubmissionService(t)
			req := validCreate()
			tc.mutate(&req)

			_, err := svc.Create(helpers.TestCtx(), "uid-1", req)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q got %v", tc.want, err)
			}
			if len(store.subs) != 0 || len(audit.entries) != 0 {
				t.Fatalf("rejected submission must not be written")
			}
		})
	}
}

func TestSubmissionCreateComposite(t *testing.T) {
	svc, _, _, _ := newTestSubmissionService(t)
	req := validCreate()
	req.IndicatorID = "8"
	req.TargetValue = helpers.Ptr(27472.0)
	req.SubValues = map[string]float64{"maize": 800, "soya": 400}

	sub, err := svc.Create(helpers.TestCtx(), "uid-1", req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.SubValues["soya"] != 400 || *sub.TargetValue != 27472 {
		t.Fatalf("unexpected submission %+v", sub)
	}
}

func TestSubmissionCreateStoreError(t *testing.T) {
	svc, store, audit, c := newTestSubmissionService(t)
	store.createErr = errs.NewDatabaseError("create", "failed to create submission", errors.New("boom"))

	_, err := svc.Create(helpers.TestCtx(), "uid-1", validCreate())
	var dbErr *errs.DatabaseError
	if !errors.As(err, &dbErr) {
		t.Fatalf("expected DatabaseError got %v", err)
	}
	if c.invalidated != 0 || len(audit.entries) != 0 {
		t.Fatalf("failed write must not invalidate or audit")
	}
}

func TestSubmissionCreateAuditFailureIgnored(t *testing.T) {
	svc, _, audit, _ := newTestSubmissionService(t)
	audit.err = errors.New("audit down")

	if _, err := svc.Create(helpers.TestCtx(), "uid-1", validCreate()); err != nil {
		t.Fatalf("audit failure should not fail the write: %v", err)
	}
}

func TestSubmissionListNewestFirst(t *testing.T) {
	now := time.Now()
	svc, store, _, _ := newTestSubmissionService(t,
		&models.Submission{ID: "old", PillarID: "economic", Timestamp: now.Add(-2 * time.Hour)},
		&models.Submission{ID: "new", PillarID: "economic", Timestamp: now},
		&models.Submission{ID: "mid", PillarID: "economic", Timestamp: now.Add(-time.Hour)},
		&models.Submission{ID: "other", PillarID: "social", Timestamp: now},
	)

	subs, err := svc.List(helpers.TestCtx(), dto.SubmissionQuery{PillarID: "economic", Limit: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(subs) != 2 || subs[0].ID != "new" || subs[1].ID != "mid" {
		t.Fatalf("unexpected order %v", ids(subs))
	}
	if store.lastQuery.PillarID != "economic" {
		t.Fatalf("filter not forwarded: %+v", store.lastQuery)
	}
}

func TestSubmissionListEmpty(t *testing.T) {
	svc, _, _, _ := newTestSubmissionService(t)
	subs, err := svc.List(helpers.TestCtx(), dto.SubmissionQuery{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if subs == nil || len(subs) != 0 {
		t.Fatalf("expected empty non-nil list got %v", subs)
	}
}

func TestSubmissionUpdate(t *testing.T) {
	existing := &models.Submission{ID: "s1", PillarID: "economic", IndicatorID: "3", QuarterID: "q1", Month: "July", Value: 10}
	svc, store, audit, c := newTestSubmissionService(t, existing)

	sub, err := svc.Update(helpers.TestCtx(), "uid-2", "s1", dto.UpdateSubmissionRequest{
		Value:    helpers.Ptr(25.0),
		Comments: helpers.Ptr("corrected"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.Value != 25 || store.subs["s1"].Comments != "corrected" {
		t.Fatalf("update not applied %+v", store.subs["s1"])
	}
	if c.invalidated != 1 {
		t.Fatalf("expected invalidation")
	}
	changes := audit.entries[0].Changes
	if audit.entries[0].Action != models.AuditUpdate || changes["value"] != 25.0 || len(changes) != 2 {
		t.Fatalf("unexpected audit %+v", audit.entries[0])
	}
}

func TestSubmissionUpdateNoChanges(t *testing.T) {
	existing := &models.Submission{ID: "s1", PillarID: "economic", IndicatorID: "3", QuarterID: "q1", Month: "July"}
	svc, _, audit, c := newTestSubmissionService(t, existing)

	if _, err := svc.Update(helpers.TestCtx(), "uid", "s1", dto.UpdateSubmissionRequest{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.invalidated != 0 || len(audit.entries) != 0 {
		t.Fatalf("empty update should not write")
	}
}

func TestSubmissionUpdateMovesMonthOutOfQuarter(t *testing.T) {
	existing := &models.Submission{ID: "s1", PillarID: "economic", IndicatorID: "3", QuarterID: "q1", Month: "July"}
	svc, store, _, _ := newTestSubmissionService(t, existing)

	_, err := svc.Update(helpers.TestCtx(), "uid", "s1", dto.UpdateSubmissionRequest{Month: helpers.Ptr("October")})
	var ve *errs.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError got %v", err)
	}
	if store.subs["s1"].Month != "July" {
		t.Fatalf("stored submission changed")
	}
}

func TestSubmissionUpdateNotFound(t *testing.T) {
	svc, _, _, _ := newTestSubmissionService(t)
	_, err := svc.Update(helpers.TestCtx(), "uid", "missing", dto.UpdateSubmissionRequest{Value: helpers.Ptr(1.0)})
	var nf *errs.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError got %v", err)
	}
}

func TestSubmissionDelete(t *testing.T) {
	svc, store, audit, c := newTestSubmissionService(t, &models.Submission{ID: "s1"})

	if err := svc.Delete(helpers.TestCtx(), "uid", "s1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.subs) != 0 || c.invalidated != 1 || audit.entries[0].Action != models.AuditDelete {
		t.Fatalf("delete side effects missing")
	}

	err := svc.Delete(helpers.TestCtx(), "uid", "s1")
	var nf *errs.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError got %v", err)
	}
}

func TestSubmissionByQuarter(t *testing.T) {
	now := time.Now()
	svc, _, _, _ := newTestSubmissionService(t,
		&models.Submission{ID: "a", PillarID: "economic", IndicatorID: "10", QuarterID: "q1", Month: "July", Value: 5, Timestamp: now},
		&models.Submission{ID: "b", PillarID: "economic", IndicatorID: "2", QuarterID: "q1", Month: "July", Value: 3, Timestamp: now},
		&models.Submission{ID: "c", PillarID: "economic", IndicatorID: "2", QuarterID: "q1", Month: "August", Value: 4, Timestamp: now.Add(time.Minute)},
		&models.Submission{ID: "d", PillarID: "economic", IndicatorID: "2", QuarterID: "q2", Month: "October", Value: 1, Timestamp: now},
	)

	resp, err := svc.ByQuarter(helpers.TestCtx(), "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Summary.TotalSubmissions != 4 || resp.Summary.TotalIndicators != 3 || resp.Summary.QuartersWithData != 2 {
		t.Fatalf("unexpected summary %+v", resp.Summary)
	}
	q1 := resp.Quarters[0]
	if q1.QuarterID != "q1" || len(q1.Indicators) != 2 {
		t.Fatalf("unexpected q1 group %+v", q1)
	}
	if q1.Indicators[0].IndicatorID != "2" || q1.Indicators[1].IndicatorID != "10" {
		t.Fatalf("indicators not in natural order: %s, %s", q1.Indicators[0].IndicatorID, q1.Indicators[1].IndicatorID)
	}
	if q1.Indicators[0].TotalValue != 7 || q1.Indicators[0].Count != 2 {
		t.Fatalf("unexpected totals %+v", q1.Indicators[0])
	}
	if q1.Indicators[0].Submissions[0].ID != "c" {
		t.Fatalf("group submissions should be newest first")
	}
	if resp.Quarters[1].QuarterID != "q2" {
		t.Fatalf("unexpected quarter order")
	}
}

func TestSubmissionByQuarterEmpty(t *testing.T) {
	svc, _, _, _ := newTestSubmissionService(t)
	resp, err := svc.ByQuarter(helpers.TestCtx(), "economic", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Quarters == nil || len(resp.Quarters) != 0 || resp.Summary.TotalSubmissions != 0 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestLessIndicatorID(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"2", "10", true},
		{"10", "2", false},
		{"8", "8a", true},
		{"8a", "8b", true},
		{"abc", "1", true},
	}
	for _, tc := range cases {
		if got := lessIndicatorID(tc.a, tc.b); got != tc.want {
			t.Fatalf("lessIndicatorID(%q, %q) = %v want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func ids(subs []*models.Submission) []string {
	out := make([]string, 0, len(subs))
	for _, s := range subs {
		out = append(out, s.ID)
	}
	return out
}
