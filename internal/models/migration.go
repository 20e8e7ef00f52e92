package models

import "time"

// MigrationRun records one execution of a versioned data migration.
type MigrationRun struct {
	ID           string    `firestore:"id" json:"id"`
	Version      string    `firestore:"version" json:"version"`
	Description  string    `firestore:"description" json:"description"`
	UpdatedCount int       `firestore:"updatedCount" json:"updatedCount"`
	TotalChecked int       `firestore:"totalChecked" json:"totalChecked"`
	RunBy        string    `firestore:"runBy" json:"runBy"`
	StartedAt    time.Time `firestore:"startedAt" json:"startedAt"`
	FinishedAt   time.Time `firestore:"finishedAt" json:"finishedAt"`
}
