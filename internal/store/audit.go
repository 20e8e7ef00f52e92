package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"github.com/GregMSThompson/imihigo-backend/internal/errs"
	"github.com/GregMSThompson/imihigo-backend/internal/models"
)

type auditStore struct {
	client *firestore.Client
}

func NewAuditStore(client *firestore.Client) *auditStore {
	return &auditStore{client: client}
}

func (s *auditStore) Record(ctx context.Context, entry *models.AuditLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	_, err := s.client.Collection("audit_logs").Doc(entry.ID).Set(ctx, entry)
	if err != nil {
		return errs.NewDatabaseError("create", "failed to write audit log", err)
	}
	return nil
}
