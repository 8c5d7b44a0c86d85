package entity

import "time"

// StatusHistory is the audit trail of status transitions. Every engine
// commit appends one row in the same transaction as the status write, so
// replaying a record's history yields exactly the table-legal edges it
// traversed.
type StatusHistory struct {
	ID             int64     `json:"id"`
	Kind           string    `json:"kind"`
	RecordID       int64     `json:"record_id"`
	ActorID        int64     `json:"actor_id"`
	ActorRole      string    `json:"actor_role"`
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	Action         string    `json:"action"`
	Reason         string    `json:"reason,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// PlatformSetting is one global configuration key-value pair
type PlatformSetting struct {
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Description string    `json:"description,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Setting keys recognized by the platform
const (
	SettingDefaultCommissionRate   = "default_commission_rate"
	SettingMaintenanceMode         = "maintenance_mode"
	SettingSupplierRegistrationKey = "supplier_registration_key"
)
