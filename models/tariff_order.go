package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/movedocs/tariffworks/utils"
	"gorm.io/gorm"
)

// OrderStatus represents the lifecycle status of a tariff order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusExpired   OrderStatus = "expired"
)

// String returns the string representation of the status
func (s OrderStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusExpired:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for OrderStatus
func (s *OrderStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = OrderStatus(v)
	case []byte:
		*s = OrderStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into OrderStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for OrderStatus
func (s OrderStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid OrderStatus: %s", s)
	}
	return string(s), nil
}

// TariffOrder is one carrier's active tariff purchase/version. It owns the
// persisted RateSchedule and points at the most recently generated document
// artifact. A new order (or an in-place rate update) supersedes the prior
// artifact; the order surfaces to history once expired.
type TariffOrder struct {
	ID               uint          `gorm:"primaryKey" json:"id"`
	UUID             uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:uk_tariff_orders_uuid" json:"uuid"`
	CarrierID        uint          `gorm:"not null;index:idx_tariff_orders_carrier_id" json:"carrier_id"`
	PricingMethod    PricingMethod `gorm:"type:pricing_method;not null" json:"pricing_method"`
	ServiceTerritory string        `gorm:"size:255" json:"service_territory"`
	Accessorials     StringList    `gorm:"type:jsonb;not null" json:"accessorials"`
	Rates            RateSchedule  `gorm:"type:jsonb;not null" json:"rates"`
	Status           OrderStatus   `gorm:"type:tariff_order_status;not null;default:'pending';index:idx_tariff_orders_status" json:"status"`
	EnrolledDate     time.Time     `gorm:"not null" json:"enrolled_date"`
	ExpiryDate       time.Time     `gorm:"not null;index:idx_tariff_orders_expiry_date" json:"expiry_date"`
	DocumentURL      *string       `gorm:"size:512" json:"document_url,omitempty"`
	CreatedAt        time.Time     `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt        *time.Time    `json:"updated_at,omitempty"`

	// Relations
	Carrier   *CarrierProfile  `gorm:"foreignKey:CarrierID;references:ID" json:"carrier,omitempty"`
	Documents []TariffDocument `gorm:"foreignKey:OrderID" json:"documents,omitempty"`
}

// TableName returns the table name for the model
func (TariffOrder) TableName() string {
	return "tariff_orders"
}

// BeforeCreate is called before creating a new record
func (o *TariffOrder) BeforeCreate(tx *gorm.DB) error {
	if o.UUID == uuid.Nil {
		o.UUID = uuid.New()
	}
	if o.Status == "" {
		o.Status = OrderStatusPending
	}
	if o.EnrolledDate.IsZero() {
		o.EnrolledDate = utils.UTCNow()
	}
	if o.ExpiryDate.IsZero() {
		o.ExpiryDate = o.EnrolledDate.Add(utils.TariffValidityPeriod)
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (o *TariffOrder) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	o.UpdatedAt = &now
	return nil
}

// IsExpired reports whether the order's validity period has passed
func (o *TariffOrder) IsExpired() bool {
	return utils.IsExpired(o.ExpiryDate)
}

// IsEditable checks if the order's rates can still be edited
func (o *TariffOrder) IsEditable() bool {
	return !o.IsExpired() && (o.Status == OrderStatusPending || o.Status == OrderStatusCompleted)
}

// CanTransitionTo checks if the order can transition to the given status
func (o *TariffOrder) CanTransitionTo(newStatus OrderStatus) bool {
	switch o.Status {
	case OrderStatusPending:
		return newStatus == OrderStatusCompleted || newStatus == OrderStatusExpired
	case OrderStatusCompleted:
		return newStatus == OrderStatusExpired
	default:
		return false
	}
}

// TariffOrderFilter represents filter criteria for tariff orders
type TariffOrderFilter struct {
	ID            *uint          `json:"id,omitempty"`
	UUID          *uuid.UUID     `json:"uuid,omitempty"`
	CarrierID     *uint          `json:"carrier_id,omitempty"`
	PricingMethod *PricingMethod `json:"pricing_method,omitempty"`
	Status        *OrderStatus   `json:"status,omitempty"`
	ExpiresAfter  *time.Time     `json:"expires_after,omitempty"`
	ExpiresBefore *time.Time     `json:"expires_before,omitempty"`
	CreatedAfter  *time.Time     `json:"created_after,omitempty"`
	CreatedBefore *time.Time     `json:"created_before,omitempty"`
}
