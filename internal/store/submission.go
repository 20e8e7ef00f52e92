package store

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GregMSThompson/imihigo-backend/internal/dto"
	"github.com/GregMSThompson/imihigo-backend/internal/errs"
	"github.com/GregMSThompson/imihigo-backend/internal/models"
	"github.com/GregMSThompson/imihigo-backend/pkg/logger"
)

type submissionStore struct {
	client *firestore.Client
}

func NewSubmissionStore(client *firestore.Client) *submissionStore {
	return &submissionStore{client: client}
}

func (s *submissionStore) collection() *firestore.CollectionRef {
	return s.client.Collection("submissions")
}

func (s *submissionStore) Create(ctx context.Context, sub *models.Submission) error {
	now := time.Now()
	if sub.Timestamp.IsZero() {
		sub.Timestamp = now
	}
	sub.UpdatedAt = now
	_, err := s.collection().Doc(sub.ID).Create(ctx, sub)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return errs.NewAlreadyExistsError("submission already exists")
		}
		return errs.NewDatabaseError("create", "failed to create submission", err)
	}
	return nil
}

func (s *submissionStore) Get(ctx context.Context, id string) (*models.Submission, error) {
	doc, err := s.collection().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errs.NewNotFoundError("submission not found")
		}
		return nil, errs.NewDatabaseError("read", "failed to get submission", err)
	}
	var sub models.Submission
	if err := doc.DataTo(&sub); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse submission data", err)
	}
	return &sub, nil
}

func (s *submissionStore) Update(ctx context.Context, sub *models.Submission) error {
	sub.UpdatedAt = time.Now()
	_, err := s.collection().Doc(sub.ID).Set(ctx, sub)
	if err != nil {
		return errs.NewDatabaseError("update", "failed to update submission", err)
	}
	return nil
}

func (s *submissionStore) Delete(ctx context.Context, id string) error {
	_, err := s.collection().Doc(id).Delete(ctx, firestore.Exists)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errs.NewNotFoundError("submission not found")
		}
		return errs.NewDatabaseError("delete", "failed to delete submission", err)
	}
	return nil
}

// Query streams the submissions matching q to fn in no particular order.
// Returning an error from fn stops the iteration and is passed back.
func (s *submissionStore) Query(ctx context.Context, q dto.SubmissionQuery, fn func(*models.Submission) error) error {
	query := s.collection().Query
	if q.PillarID != "" {
		query = query.Where("pillarId", "==", q.PillarID)
	}
	if q.IndicatorID != "" {
		query = query.Where("indicatorId", "==", q.IndicatorID)
	}
	if q.QuarterID != "" {
		query = query.Where("quarterId", "==", q.QuarterID)
	}
	if q.Month != "" {
		query = query.Where("month", "==", q.Month)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return errs.NewDatabaseError("read", "failed to query submissions", err)
		}
		var sub models.Submission
		if err := doc.DataTo(&sub); err != nil {
			return errs.NewDatabaseError("read", "failed to parse submission data", err)
		}
		if err := fn(&sub); err != nil {
			return err
		}
	}
}

// Latest returns the most recent submission of an indicator.
func (s *submissionStore) Latest(ctx context.Context, indicatorID string) (*models.Submission, error) {
	var latest *models.Submission
	err := s.Query(ctx, dto.SubmissionQuery{IndicatorID: indicatorID}, func(sub *models.Submission) error {
		if latest == nil || sub.Timestamp.After(latest.Timestamp) {
			latest = sub
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, errs.NewNotFoundError("no submissions for indicator")
	}
	return latest, nil
}

type bulkSubmissionJob struct {
	id  string
	job *firestore.BulkWriterJob
}

// BulkUpdateSubValues replaces the subValues field of each listed submission.
func (s *submissionStore) BulkUpdateSubValues(ctx context.Context, subValues map[string]map[string]float64) error {
	if len(subValues) == 0 {
		return nil
	}
	log := logger.FromContext(ctx)
	bw := s.client.BulkWriter(ctx)
	now := time.Now()

	jobs := make([]bulkSubmissionJob, 0, len(subValues))
	for id, values := range subValues {
		j, err := bw.Update(s.collection().Doc(id), []firestore.Update{
			{Path: "subValues", Value: values},
			{Path: "updatedAt", Value: now},
		})
		if err != nil {
			bw.End()
			return errs.NewDatabaseError("update", "failed to schedule sub-value update", err)
		}
		jobs = append(jobs, bulkSubmissionJob{id: id, job: j})
	}
	bw.End()

	for _, entry := range jobs {
		if _, err := entry.job.Results(); err != nil {
			log.Error("failed to update submission sub-values", "submission_id", entry.id, "error", err)
			return errs.NewDatabaseError("update", "failed to update submission sub-values", err)
		}
	}
	return nil
}

// DeleteAll removes every submission and reports how many were deleted.
func (s *submissionStore) DeleteAll(ctx context.Context) (int, error) {
	bw := s.client.BulkWriter(ctx)
	var jobs []bulkSubmissionJob

	iter := s.collection().Documents(ctx)
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			bw.End()
			return 0, errs.NewDatabaseError("read", "failed to list submissions", err)
		}
		j, err := bw.Delete(doc.Ref)
		if err != nil {
			bw.End()
			return 0, errs.NewDatabaseError("delete", "failed to schedule submission delete", err)
		}
		jobs = append(jobs, bulkSubmissionJob{id: doc.Ref.ID, job: j})
	}
	bw.End()

	deleted := 0
	for _, entry := range jobs {
		if _, err := entry.job.Results(); err != nil {
			logger.FromContext(ctx).Error("failed to delete submission", "submission_id", entry.id, "error", err)
			return deleted, errs.NewDatabaseError("delete", "failed to delete submission", err)
		}
		deleted++
	}
	return deleted, nil
}
