package workflow

import "time"

// Record is the workflow-relevant view of a governed entity. Repositories
// project their rows into this shape so the engine can validate and commit
// transitions without knowing entity-specific fields.
type Record struct {
	Kind         Kind      `json:"kind"`
	ID           int64     `json:"id"`
	OwnerID      int64     `json:"owner_id"`
	Status       State     `json:"status"`
	StatusReason string    `json:"status_reason,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
