package entity

import (
	"fmt"
	"time"

	"github.com/taptosell/marketplace-workflow/internal/domain/workflow"
)

// PriceAppeal is a supplier's request to change the price of one of their
// published products. Approval must update the product's price in the same
// commit as the appeal's status flip.
type PriceAppeal struct {
	ID           int64     `json:"id"`
	SupplierID   int64     `json:"supplier_id"`
	ProductID    int64     `json:"product_id"`
	OldPrice     float64   `json:"old_price"`
	NewPrice     float64   `json:"new_price"`
	Status       string    `json:"status"`
	StatusReason string    `json:"status_reason,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewPriceAppeal validates and constructs a price appeal in its initial state
func NewPriceAppeal(supplierID, productID int64, oldPrice, newPrice float64) (*PriceAppeal, error) {
	if oldPrice <= 0 || newPrice <= 0 {
		return nil, fmt.Errorf("prices must be positive: old=%.2f new=%.2f", oldPrice, newPrice)
	}
	if oldPrice == newPrice {
		return nil, fmt.Errorf("new price must differ from old price: %.2f", newPrice)
	}
	return &PriceAppeal{
		SupplierID: supplierID,
		ProductID:  productID,
		OldPrice:   oldPrice,
		NewPrice:   newPrice,
		Status:     workflow.InitialState(workflow.KindPriceAppeal).String(),
	}, nil
}

// WorkflowRecord projects the appeal into the engine's record view
func (a *PriceAppeal) WorkflowRecord() workflow.Record {
	return workflow.Record{
		Kind:         workflow.KindPriceAppeal,
		ID:           a.ID,
		OwnerID:      a.SupplierID,
		Status:       workflow.State(a.Status),
		StatusReason: a.StatusReason,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}
