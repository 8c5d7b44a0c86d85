package entity

import (
	"time"

	"github.com/taptosell/marketplace-workflow/internal/domain/workflow"
)

// InventoryItem is a supplier's private stock record. It is never visible
// outside the owning supplier's view until promoted into a Product, and
// once promoted it is immutable and permanently linked to that product.
type InventoryItem struct {
	ID                int64     `json:"id"`
	SupplierID        int64     `json:"supplier_id"`
	Name              string    `json:"name"`
	Description       string    `json:"description,omitempty"`
	SKU               string    `json:"sku,omitempty"`
	Price             float64   `json:"price"`
	Stock             int       `json:"stock"`
	Status            string    `json:"status"`
	StatusReason      string    `json:"status_reason,omitempty"`
	PromotedProductID *int64    `json:"promoted_product_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// WorkflowRecord projects the item into the engine's record view
func (i *InventoryItem) WorkflowRecord() workflow.Record {
	return workflow.Record{
		Kind:         workflow.KindInventoryItem,
		ID:           i.ID,
		OwnerID:      i.SupplierID,
		Status:       workflow.State(i.Status),
		StatusReason: i.StatusReason,
		CreatedAt:    i.CreatedAt,
		UpdatedAt:    i.UpdatedAt,
	}
}
