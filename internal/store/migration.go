package store

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"github.com/GregMSThompson/imihigo-backend/internal/errs"
	"github.com/GregMSThompson/imihigo-backend/internal/models"
)

type migrationStore struct {
	client *firestore.Client
}

func NewMigrationStore(client *firestore.Client) *migrationStore {
	return &migrationStore{client: client}
}

func (s *migrationStore) collection() *firestore.CollectionRef {
	return s.client.Collection("migrations")
}

func (s *migrationStore) Record(ctx context.Context, run *models.MigrationRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	_, err := s.collection().Doc(run.ID).Set(ctx, run)
	if err != nil {
		return errs.NewDatabaseError("create", "failed to record migration run", err)
	}
	return nil
}

// List returns the recorded runs, newest first.
func (s *migrationStore) List(ctx context.Context) ([]*models.MigrationRun, error) {
	docs, err := s.collection().OrderBy("startedAt", firestore.Desc).Documents(ctx).GetAll()
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to list migration runs", err)
	}
	runs := make([]*models.MigrationRun, 0, len(docs))
	for _, d := range docs {
		var run models.MigrationRun
		if err := d.DataTo(&run); err != nil {
			return nil, errs.NewDatabaseError("read", "failed to parse migration run", err)
		}
		runs = append(runs, &run)
	}
	return runs, nil
}
