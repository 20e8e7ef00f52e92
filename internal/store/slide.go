package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GregMSThompson/imihigo-backend/internal/errs"
	"github.com/GregMSThompson/imihigo-backend/internal/models"
	"github.com/GregMSThompson/imihigo-backend/pkg/logger"
)

type slideStore struct {
	client *firestore.Client
}

func NewSlideStore(client *firestore.Client) *slideStore {
	return &slideStore{client: client}
}

func (s *slideStore) collection(uid string) *firestore.CollectionRef {
	return s.client.Collection("users").Doc(uid).Collection("slides")
}

func (s *slideStore) Create(ctx context.Context, uid string, sl *models.Slide) error {
	now := time.Now()
	if sl.CreatedAt.IsZero() {
		sl.CreatedAt = now
	}
	sl.UpdatedAt = now
	_, err := s.collection(uid).Doc(sl.SlideID).Set(ctx, sl)
	if err != nil {
		return errs.NewDatabaseError("create", "failed to create slide", err)
	}
	return nil
}

func (s *slideStore) Get(ctx context.Context, uid, slideID string) (*models.Slide, error) {
	doc, err := s.collection(uid).Doc(slideID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errs.NewNotFoundError("slide not found")
		}
		return nil, errs.NewDatabaseError("read", "failed to get slide", err)
	}
	var sl models.Slide
	if err := doc.DataTo(&sl); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse slide data", err)
	}
	return &sl, nil
}

func (s *slideStore) List(ctx context.Context, uid string) ([]*models.Slide, error) {
	docs, err := s.collection(uid).OrderBy("position", firestore.Asc).Documents(ctx).GetAll()
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to list slides", err)
	}
	slides := make([]*models.Slide, 0, len(docs))
	for _, d := range docs {
		var sl models.Slide
		if err := d.DataTo(&sl); err != nil {
			return nil, errs.NewDatabaseError("read", "failed to parse slide data", err)
		}
		slides = append(slides, &sl)
	}
	return slides, nil
}

func (s *slideStore) Update(ctx context.Context, uid string, sl *models.Slide) error {
	sl.UpdatedAt = time.Now()
	_, err := s.collection(uid).Doc(sl.SlideID).Set(ctx, sl)
	if err != nil {
		return errs.NewDatabaseError("update", "failed to update slide", err)
	}
	return nil
}

func (s *slideStore) Delete(ctx context.Context, uid, slideID string) error {
	_, err := s.collection(uid).Doc(slideID).Delete(ctx)
	if err != nil {
		return errs.NewDatabaseError("delete", "failed to delete slide", err)
	}
	return nil
}

func (s *slideStore) Count(ctx context.Context, uid string) (int, error) {
	docs, err := s.collection(uid).Documents(ctx).GetAll()
	if err != nil {
		return 0, errs.NewDatabaseError("read", "failed to count slides", err)
	}
	return len(docs), nil
}

type bulkPositionJob struct {
	slideID string
	job     *firestore.BulkWriterJob
}

func (s *slideStore) BulkUpdatePositions(ctx context.Context, uid string, positions map[string]int) error {
	log := logger.FromContext(ctx)
	bw := s.client.BulkWriter(ctx)
	coll := s.collection(uid)
	now := time.Now()

	jobs := make([]bulkPositionJob, 0, len(positions))
	for slideID, pos := range positions {
		j, err := bw.Update(coll.Doc(slideID), []firestore.Update{
			{Path: "position", Value: pos},
			{Path: "updatedAt", Value: now},
		})
		if err != nil {
			bw.End()
			return errs.NewDatabaseError("update", "failed to schedule position update", err)
		}
		jobs = append(jobs, bulkPositionJob{slideID: slideID, job: j})
	}
	bw.End()

	for _, entry := range jobs {
		if _, err := entry.job.Results(); err != nil {
			log.Error("failed to update slide position", "slide_id", entry.slideID, "error", err)
			return errs.NewDatabaseError("update", "failed to update slide position", err)
		}
	}
	return nil
}
