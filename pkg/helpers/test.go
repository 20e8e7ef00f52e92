// Package helpers holds small utilities shared by the package tests.
package helpers

import (
	"context"
	"log/slog"

	"github.com/GregMSThompson/imihigo-backend/pkg/logger"
)

// TestCtx returns a context carrying a discarding logger.
func TestCtx() context.Context {
	log := slog.New(logger.NewTestHandler(slog.LevelInfo))
	return logger.ToContext(context.Background(), log)
}

// Ptr returns a pointer to v, for optional request fields.
func Ptr[T any](v T) *T {
	return &v
}
