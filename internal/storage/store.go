package storage

import (
	"context"

	"mamdani/internal/model"
)

// Store persists evaluation history.
type Store interface {
	Init(ctx context.Context) error
	SaveEvaluation(ctx context.Context, record model.EvaluationRecord) error
	GetEvaluation(ctx context.Context, id string) (model.EvaluationRecord, bool, error)
	// ListEvaluations returns records newest first. An empty profile matches
	// every profile and a non-positive limit returns everything.
	ListEvaluations(ctx context.Context, profile string, limit int) ([]model.EvaluationRecord, error)
}
