package bootstrap

import (
	"context"

	"cloud.google.com/go/firestore"
)

// InitFirestore opens a client for projectID, detecting the project from the
// environment when it is empty.
func InitFirestore(ctx context.Context, projectID string) (*firestore.Client, error) {
	if projectID == "" {
		projectID = firestore.DetectProjectID
	}
	return firestore.NewClient(ctx, projectID)
}
