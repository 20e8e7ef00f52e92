package services

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/GregMSThompson/imihigo-backend/internal/cache"
	"github.com/GregMSThompson/imihigo-backend/internal/catalog"
	"github.com/GregMSThompson/imihigo-backend/internal/dto"
	"github.com/GregMSThompson/imihigo-backend/internal/errs"
	"github.com/GregMSThompson/imihigo-backend/internal/models"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Default()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return c
}

// --- Submissions ---

type fakeSubmissionStore struct {
	subs        map[string]*models.Submission
	createErr   error
	queryErr    error
	bulkErr     error
	lastQuery   dto.SubmissionQuery
	queries     int
	bulkUpdates map[string]map[string]float64
}

func newFakeSubmissionStore(subs ...*models.Submission) *fakeSubmissionStore {
	f := &fakeSubmissionStore{subs: make(map[string]*models.Submission)}
	for _, s := range subs {
		f.subs[s.ID] = s
	}
	return f
}

func (f *fakeSubmissionStore) Create(_ context.Context, sub *models.Submission) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.subs[sub.ID] = sub
	return nil
}

func (f *fakeSubmissionStore) Get(_ context.Context, id string) (*models.Submission, error) {
	s, ok := f.subs[id]
	if !ok {
		return nil, errs.NewNotFoundError("submission not found")
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSubmissionStore) Update(_ context.Context, sub *models.Submission) error {
	f.subs[sub.ID] = sub
	return nil
}

func (f *fakeSubmissionStore) Delete(_ context.Context, id string) error {
	if _, ok := f.subs[id]; !ok {
		return errs.NewNotFoundError("submission not found")
	}
	delete(f.subs, id)
	return nil
}

func (f *fakeSubmissionStore) Query(_ context.Context, q dto.SubmissionQuery, fn func(*models.Submission) error) error {
	f.lastQuery = q
	f.queries++
	if f.queryErr != nil {
		return f.queryErr
	}
	for _, s := range f.subs {
		if q.PillarID != "" && s.PillarID != q.PillarID ||
			q.IndicatorID != "" && s.IndicatorID != q.IndicatorID ||
			q.QuarterID != "" && s.QuarterID != q.QuarterID ||
			q.Month != "" && s.Month != q.Month {
			continue
		}
		cp := *s
		if err := fn(&cp); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeSubmissionStore) Latest(ctx context.Context, indicatorID string) (*models.Submission, error) {
	var latest *models.Submission
	_ = f.Query(ctx, dto.SubmissionQuery{IndicatorID: indicatorID}, func(s *models.Submission) error {
		if latest == nil || s.Timestamp.After(latest.Timestamp) {
			latest = s
		}
		return nil
	})
	if latest == nil {
		return nil, errs.NewNotFoundError("no submissions for indicator")
	}
	return latest, nil
}

func (f *fakeSubmissionStore) BulkUpdateSubValues(_ context.Context, subValues map[string]map[string]float64) error {
	if f.bulkErr != nil {
		return f.bulkErr
	}
	f.bulkUpdates = subValues
	for id, sv := range subValues {
		f.subs[id].SubValues = sv
	}
	return nil
}

func (f *fakeSubmissionStore) DeleteAll(_ context.Context) (int, error) {
	n := len(f.subs)
	f.subs = make(map[string]*models.Submission)
	return n, nil
}

type fakeAudit struct {
	entries []*models.AuditLog
	err     error
}

func (f *fakeAudit) Record(_ context.Context, e *models.AuditLog) error {
	f.entries = append(f.entries, e)
	return f.err
}

// fakeCache keeps values in memory with the same versioning rules as the
// Redis cache.
type fakeCache struct {
	version     int64
	values      map[string][]byte
	hits        int
	invalidated int
	locked      map[string]bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[string][]byte), locked: make(map[string]bool)}
}

func (f *fakeCache) Invalidate(context.Context) error {
	f.version++
	f.invalidated++
	return nil
}

func (f *fakeCache) VersionedKey(_ context.Context, parts ...string) (string, error) {
	return cache.Key(append([]string{"v" + strconv.FormatInt(f.version, 10)}, parts...)...), nil
}

func (f *fakeCache) GetJSON(_ context.Context, key string, dest any) (bool, error) {
	b, ok := f.values[key]
	if !ok {
		return false, nil
	}
	f.hits++
	return true, json.Unmarshal(b, dest)
}

func (f *fakeCache) SetJSON(_ context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	f.values[key] = b
	return nil
}

func (f *fakeCache) Lock(_ context.Context, name string, _ time.Duration) (func(), error) {
	if f.locked[name] {
		return nil, cache.ErrLocked
	}
	f.locked[name] = true
	return func() { delete(f.locked, name) }, nil
}

func (f *fakeCache) keys(prefix string) []string {
	var out []string
	for k := range f.values {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out
}

type fakeMigrations struct {
	runs []*models.MigrationRun
}

func (f *fakeMigrations) Record(_ context.Context, run *models.MigrationRun) error {
	f.runs = append(f.runs, run)
	return nil
}

func (f *fakeMigrations) List(context.Context) ([]*models.MigrationRun, error) {
	return f.runs, nil
}
