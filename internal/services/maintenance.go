package services

import (
	"context"
	"errors"
	"time"

	"github.com/GregMSThompson/imihigo-backend/internal/cache"
	"github.com/GregMSThompson/imihigo-backend/internal/dto"
	"github.com/GregMSThompson/imihigo-backend/internal/errs"
	"github.com/GregMSThompson/imihigo-backend/internal/models"
	"github.com/GregMSThompson/imihigo-backend/internal/progress"
	"github.com/GregMSThompson/imihigo-backend/pkg/logger"
)

const migrationLockTTL = 5 * time.Minute

type maintenanceSubmissionStore interface {
	Query(ctx context.Context, q dto.SubmissionQuery, fn func(*models.Submission) error) error
	BulkUpdateSubValues(ctx context.Context, subValues map[string]map[string]float64) error
	DeleteAll(ctx context.Context) (int, error)
}

type migrationRecorder interface {
	Record(ctx context.Context, run *models.MigrationRun) error
	List(ctx context.Context) ([]*models.MigrationRun, error)
}

type maintenanceCache interface {
	Invalidate(ctx context.Context) error
	Lock(ctx context.Context, name string, ttl time.Duration) (func(), error)
}

type maintenanceService struct {
	subs       maintenanceSubmissionStore
	migrations migrationRecorder
	audit      auditRecorder
	cache      maintenanceCache
	allowReset bool
}

func NewMaintenanceService(subs maintenanceSubmissionStore, migrations migrationRecorder, audit auditRecorder, cache maintenanceCache, allowReset bool) *maintenanceService {
	return &maintenanceService{
		subs:       subs,
		migrations: migrations,
		audit:      audit,
		cache:      cache,
		allowReset: allowReset,
	}
}

// MigrateSubValues rewrites historical sub-value keys with the current
// migration. Running it again changes nothing.
func (s *maintenanceService) MigrateSubValues(ctx context.Context, uid string) (progress.MigrationResult, error) {
	return s.migrate(ctx, uid, progress.SubValueKeysV1)
}

func (s *maintenanceService) migrate(ctx context.Context, uid string, m progress.Migration) (progress.MigrationResult, error) {
	log := logger.FromContext(ctx).With("migration", m.Version)

	release, err := s.cache.Lock(ctx, "migration:"+m.Version, migrationLockTTL)
	if err != nil {
		if errors.Is(err, cache.ErrLocked) {
			return progress.MigrationResult{}, errs.NewAlreadyExistsError("migration already running")
		}
		return progress.MigrationResult{}, err
	}
	defer release()

	started := time.Now()
	var ids []string
	var subValues []map[string]float64
	err = s.subs.Query(ctx, dto.SubmissionQuery{}, func(sub *models.Submission) error {
		if sub.SubValues == nil {
			return nil
		}
		ids = append(ids, sub.ID)
		subValues = append(subValues, sub.SubValues)
		return nil
	})
	if err != nil {
		return progress.MigrationResult{}, err
	}

	migrated, result := progress.MigrateSubValueKeys(subValues, m)
	updates := make(map[string]map[string]float64, len(result.Updated))
	for _, i := range result.Updated {
		updates[ids[i]] = migrated[i]
	}
	if err := s.subs.BulkUpdateSubValues(ctx, updates); err != nil {
		log.Error("failed to write migrated sub-values", "error", err)
		return progress.MigrationResult{}, err
	}
	if len(updates) > 0 {
		if err := s.cache.Invalidate(ctx); err != nil {
			log.Warn("failed to invalidate analytics cache", "error", err)
		}
	}

	run := &models.MigrationRun{
		Version:      m.Version,
		Description:  m.Description,
		UpdatedCount: result.UpdatedCount,
		TotalChecked: result.TotalChecked,
		RunBy:        uid,
		StartedAt:    started,
		FinishedAt:   time.Now(),
	}
	if err := s.migrations.Record(ctx, run); err != nil {
		log.Warn("failed to record migration run", "error", err)
	}

	log.Info("sub-value migration completed", "updated", result.UpdatedCount, "checked", result.TotalChecked)
	return result, nil
}

func (s *maintenanceService) MigrationHistory(ctx context.Context) ([]*models.MigrationRun, error) {
	return s.migrations.List(ctx)
}

// ClearData deletes every submission. It is refused unless resets were
// enabled in the configuration.
func (s *maintenanceService) ClearData(ctx context.Context, uid string) (dto.ClearDataResponse, error) {
	log := logger.FromContext(ctx)
	if !s.allowReset {
		return dto.ClearDataResponse{}, errs.NewForbiddenError("data reset is disabled")
	}

	deleted, err := s.subs.DeleteAll(ctx)
	if err != nil {
		log.Error("data reset failed", "deleted", deleted, "error", err)
		return dto.ClearDataResponse{}, err
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		log.Warn("failed to invalidate analytics cache", "error", err)
	}
	if err := s.audit.Record(ctx, &models.AuditLog{
		Action:     models.AuditClear,
		Collection: "submissions",
		DocumentID: "*",
		UserID:     uid,
		Changes:    map[string]any{"deleted": deleted},
	}); err != nil {
		log.Warn("failed to write audit log", "error", err)
	}

	log.Warn("all submissions deleted", "deleted", deleted, "uid", uid)
	return dto.ClearDataResponse{DeletedSubmissions: deleted}, nil
}
