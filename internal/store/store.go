package store

import (
	"context"

	"github.com/sells-group/lead-intake/internal/model"
)

// LeadFilter specifies criteria for listing leads.
type LeadFilter struct {
	Email         string         `json:"email,omitempty"`
	LeadSize      model.LeadSize `json:"lead_size,omitempty"`
	MinConfidence int            `json:"min_confidence,omitempty"`
	Limit         int            `json:"limit,omitempty"`
	Offset        int            `json:"offset,omitempty"`
}

// Store defines the persistence interface for parsed lead batches.
type Store interface {
	// Batches
	SaveBatch(ctx context.Context, result *model.ParseResult) (*model.IntakeBatch, error)
	GetBatch(ctx context.Context, batchID string) (*model.IntakeBatch, error)
	ListBatches(ctx context.Context, limit int) ([]model.IntakeBatch, error)

	// Leads
	GetLead(ctx context.Context, leadID string) (*model.CustomerRecord, error)
	ListLeads(ctx context.Context, filter LeadFilter) ([]model.CustomerRecord, error)
	DeleteLead(ctx context.Context, leadID string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
