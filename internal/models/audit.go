package models

import "time"

type AuditAction string

const (
	AuditCreate AuditAction = "create"
	AuditUpdate AuditAction = "update"
	AuditDelete AuditAction = "delete"
	AuditClear  AuditAction = "clear"
)

type AuditLog struct {
	ID         string         `firestore:"id" json:"id"`
	Action     AuditAction    `firestore:"action" json:"action"`
	Collection string         `firestore:"collection" json:"collection"`
	DocumentID string         `firestore:"documentId" json:"documentId"`
	UserID     string         `firestore:"userId,omitempty" json:"userId,omitempty"`
	Changes    map[string]any `firestore:"changes,omitempty" json:"changes,omitempty"`
	Timestamp  time.Time      `firestore:"timestamp" json:"timestamp"`
}
