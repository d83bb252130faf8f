// Package session stores answered questions so results can be fetched again
// without re-running the pipeline.
package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/metaquery-ai/metaquery-engine/pkg/config"
	"github.com/metaquery-ai/metaquery-engine/pkg/models"
	"github.com/metaquery-ai/metaquery-engine/pkg/warehouse"
)

// Record is one answered question with everything needed to re-render it.
type Record struct {
	ID        string                 `json:"id"`
	Question  string                 `json:"question"`
	Concepts  []models.Concept       `json:"concepts,omitempty"`
	SQL       string                 `json:"sql"`
	Result    *warehouse.QueryResult `json:"result,omitempty"`
	Summary   string                 `json:"summary"`
	CreatedAt time.Time              `json:"created_at"`
}

// Entry is one listing row: enough to identify and order sessions without
// fetching full records. Listing order is not guaranteed; clients sort by
// CreatedAt.
type Entry struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists answer records with a TTL. Get returns
// apperrors.ErrSessionNotFound for unknown or expired IDs.
type Store interface {
	Put(ctx context.Context, record *Record) error
	Get(ctx context.Context, id string) (*Record, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Entry, error)
}

// New creates the configured store: Redis when a host is set, otherwise the
// in-process store.
func New(cfg *config.SessionConfig, logger *zap.Logger) (Store, error) {
	ttl := time.Duration(cfg.TTLMinutes) * time.Minute

	if cfg.RedisHost == "" {
		logger.Info("using in-memory session store")
		return NewMemoryStore(ttl), nil
	}
	return NewRedisStore(cfg, ttl, logger)
}
