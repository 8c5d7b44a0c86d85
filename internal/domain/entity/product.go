package entity

import (
	"time"

	"github.com/taptosell/marketplace-workflow/internal/domain/workflow"
)

// Product is a marketplace listing owned by a supplier. It becomes visible
// to dropshippers only once published.
type Product struct {
	ID             int64     `json:"id"`
	SupplierID     int64     `json:"supplier_id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	SKU            string    `json:"sku,omitempty"`
	Price          float64   `json:"price"`
	Stock          int       `json:"stock"`
	CommissionRate float64   `json:"commission_rate"`
	Status         string    `json:"status"`
	StatusReason   string    `json:"status_reason,omitempty"`
	SourceItemID   *int64    `json:"source_item_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// WorkflowRecord projects the product into the engine's record view
func (p *Product) WorkflowRecord() workflow.Record {
	return workflow.Record{
		Kind:         workflow.KindProduct,
		ID:           p.ID,
		OwnerID:      p.SupplierID,
		Status:       workflow.State(p.Status),
		StatusReason: p.StatusReason,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
