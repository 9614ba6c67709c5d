// Package store persists leads and search records. The pipeline treats
// both as opaque JSON documents; only the identifiers and the search key
// are queryable columns.
package store

import (
	"context"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// Store defines the persistence interface for the search pipeline.
type Store interface {
	// Leads
	SaveLead(ctx context.Context, lead *model.Lead) error
	GetLead(ctx context.Context, id string) (*model.Lead, error)
	// GetLeads returns the leads for the given ids, in no particular
	// order. Unknown ids are skipped, not errors.
	GetLeads(ctx context.Context, ids []string) ([]model.Lead, error)
	ListLeads(ctx context.Context, limit int) ([]model.Lead, error)

	// Search records
	// GetSearch returns nil, nil when no record exists for the key.
	GetSearch(ctx context.Context, key string) (*model.SearchRecord, error)
	SaveSearch(ctx context.Context, rec *model.SearchRecord) error
	ListSearches(ctx context.Context) ([]model.SearchRecord, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
