package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/movedocs/tariffworks/utils"
)

// MethodChangeStatus represents the decision state of a method change request
type MethodChangeStatus string

const (
	MethodChangeStatusPending  MethodChangeStatus = "pending"
	MethodChangeStatusApproved MethodChangeStatus = "approved"
	MethodChangeStatusRejected MethodChangeStatus = "rejected"
)

// String returns the string representation of the status
func (s MethodChangeStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s MethodChangeStatus) Valid() bool {
	switch s {
	case MethodChangeStatusPending, MethodChangeStatusApproved, MethodChangeStatusRejected:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for MethodChangeStatus
func (s *MethodChangeStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = MethodChangeStatus(v)
	case []byte:
		*s = MethodChangeStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into MethodChangeStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for MethodChangeStatus
func (s MethodChangeStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid MethodChangeStatus: %s", s)
	}
	return string(s), nil
}

// PricingMethodChangeRequest is a carrier-submitted request to switch an
// order's pricing method. The switch requires manual approval; rate edits
// never change the method on their own. ProposedRates carries the raw rate
// submission for the new method and is normalized only on approval.
type PricingMethodChangeRequest struct {
	ID            uint               `gorm:"primaryKey" json:"id"`
	UUID          uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex:uk_method_change_requests_uuid" json:"uuid"`
	OrderID       uint               `gorm:"not null;index:idx_method_change_requests_order_id" json:"order_id"`
	CarrierID     uint               `gorm:"not null;index:idx_method_change_requests_carrier_id" json:"carrier_id"`
	FromMethod    PricingMethod      `gorm:"type:pricing_method;not null" json:"from_method"`
	ToMethod      PricingMethod      `gorm:"type:pricing_method;not null" json:"to_method"`
	ProposedRates json.RawMessage    `gorm:"type:jsonb" json:"proposed_rates,omitempty"`
	Status        MethodChangeStatus `gorm:"type:method_change_status;not null;default:'pending';index:idx_method_change_requests_status" json:"status"`
	DecisionNote  *string            `gorm:"type:text" json:"decision_note,omitempty"`
	DecidedAt     *time.Time         `json:"decided_at,omitempty"`
	CreatedAt     time.Time          `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt     *time.Time         `json:"updated_at,omitempty"`

	// Relations
	Order   *TariffOrder    `gorm:"foreignKey:OrderID;references:ID" json:"order,omitempty"`
	Carrier *CarrierProfile `gorm:"foreignKey:CarrierID;references:ID" json:"carrier,omitempty"`
}

// TableName returns the table name for the model
func (PricingMethodChangeRequest) TableName() string {
	return "pricing_method_change_requests"
}

// BeforeCreate is called before creating a new record
func (r *PricingMethodChangeRequest) BeforeCreate(tx *gorm.DB) error {
	if r.UUID == uuid.Nil {
		r.UUID = uuid.New()
	}
	if r.Status == "" {
		r.Status = MethodChangeStatusPending
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (r *PricingMethodChangeRequest) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	r.UpdatedAt = &now
	return nil
}

// IsDecided reports whether the request has been approved or rejected
func (r *PricingMethodChangeRequest) IsDecided() bool {
	return r.Status != MethodChangeStatusPending
}

// MethodChangeRequestFilter represents filter criteria for change requests
type MethodChangeRequestFilter struct {
	ID        *uint               `json:"id,omitempty"`
	UUID      *uuid.UUID          `json:"uuid,omitempty"`
	OrderID   *uint               `json:"order_id,omitempty"`
	CarrierID *uint               `json:"carrier_id,omitempty"`
	Status    *MethodChangeStatus `json:"status,omitempty"`
}
