package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CarrierProfile identifies one interstate household-goods mover. Account
// credentials and sessions live in the external auth system; this record
// carries only the identity fields stamped into generated documents.
type CarrierProfile struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UUID        uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uk_carrier_profiles_uuid" json:"uuid"`
	CompanyName string     `gorm:"size:255;not null" json:"company_name"`
	MCNumber    string     `gorm:"size:32;not null;uniqueIndex:uk_carrier_profiles_mc_number" json:"mc_number"`
	USDOTNumber string     `gorm:"size:32;not null;index:idx_carrier_profiles_usdot" json:"usdot_number"`
	Address     string     `gorm:"type:text" json:"address"`
	Phone       string     `gorm:"size:32" json:"phone"`
	Email       string     `gorm:"size:255;not null;index:idx_carrier_profiles_email" json:"email"`
	IsActive    *bool      `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`

	// Relations
	TariffOrders []TariffOrder `gorm:"foreignKey:CarrierID" json:"tariff_orders,omitempty"`
}

// TableName returns the table name for the model
func (CarrierProfile) TableName() string {
	return "carrier_profiles"
}

// BeforeCreate is called before creating a new record
func (p *CarrierProfile) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == uuid.Nil {
		p.UUID = uuid.New()
	}
	return nil
}

// CarrierProfileFilter represents filter criteria for carrier profiles
type CarrierProfileFilter struct {
	ID          *uint      `json:"id,omitempty"`
	UUID        *uuid.UUID `json:"uuid,omitempty"`
	MCNumber    *string    `json:"mc_number,omitempty"`
	USDOTNumber *string    `json:"usdot_number,omitempty"`
	Email       *string    `json:"email,omitempty"`
	IsActive    *bool      `json:"is_active,omitempty"`
}
