package model

import "time"

// IntakeBatch is one persisted parse submission with its aggregate outcome.
// Individual leads reference the batch they arrived in.
type IntakeBatch struct {
	ID          string        `json:"id"`
	Format      Format        `json:"format"`
	Confidence  int           `json:"confidence"`
	RecordCount int           `json:"record_count"`
	Warnings    []string      `json:"warnings,omitempty"`
	Errors      []string      `json:"errors,omitempty"`
	Metadata    ParseMetadata `json:"metadata"`
	CreatedAt   time.Time     `json:"created_at"`
}
