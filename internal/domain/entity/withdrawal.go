package entity

import (
	"fmt"
	"time"

	"github.com/taptosell/marketplace-workflow/internal/domain/workflow"
)

// WithdrawalRequest is a supplier's request to pay out wallet balance.
// Amount and bank details are fixed at creation; only status and the
// status reason change afterwards.
type WithdrawalRequest struct {
	ID           int64     `json:"id"`
	SupplierID   int64     `json:"supplier_id"`
	Amount       float64   `json:"amount"`
	BankDetails  string    `json:"bank_details"`
	Status       string    `json:"status"`
	StatusReason string    `json:"status_reason,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewWithdrawalRequest validates and constructs a withdrawal request in
// its initial state
func NewWithdrawalRequest(supplierID int64, amount float64, bankDetails string) (*WithdrawalRequest, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("withdrawal amount must be positive: %.2f", amount)
	}
	if bankDetails == "" {
		return nil, fmt.Errorf("bank details are required")
	}
	return &WithdrawalRequest{
		SupplierID:  supplierID,
		Amount:      amount,
		BankDetails: bankDetails,
		Status:      workflow.InitialState(workflow.KindWithdrawalRequest).String(),
	}, nil
}

// WorkflowRecord projects the request into the engine's record view
func (w *WithdrawalRequest) WorkflowRecord() workflow.Record {
	return workflow.Record{
		Kind:         workflow.KindWithdrawalRequest,
		ID:           w.ID,
		OwnerID:      w.SupplierID,
		Status:       workflow.State(w.Status),
		StatusReason: w.StatusReason,
		CreatedAt:    w.CreatedAt,
		UpdatedAt:    w.UpdatedAt,
	}
}
