package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/movedocs/tariffworks/utils"
)

// TariffDocument is one generated artifact for a tariff order. A new row
// supersedes the prior one for the same order; the latest row is the served
// version. Checksum is the sha256 of the rendered bytes and makes the
// assembler's idempotence observable: regenerating from identical inputs
// must reproduce it.
type TariffDocument struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UUID          uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uk_tariff_documents_uuid" json:"uuid"`
	OrderID       uint       `gorm:"not null;index:idx_tariff_documents_order_id" json:"order_id"`
	DocType       string     `gorm:"size:64;not null;default:'Tariff'" json:"doc_type"`
	Checksum      string     `gorm:"size:64;not null;index:idx_tariff_documents_checksum" json:"checksum"`
	SizeBytes     int64      `gorm:"not null" json:"size_bytes"`
	Content       []byte     `gorm:"type:bytea;not null" json:"-"`
	EffectiveDate time.Time  `gorm:"not null" json:"effective_date"`
	ExpiryDate    time.Time  `gorm:"not null" json:"expiry_date"`
	GeneratedAt   time.Time  `gorm:"not null" json:"generated_at"`
	SupersededBy  *uint      `gorm:"index:idx_tariff_documents_superseded_by" json:"superseded_by,omitempty"`
	CreatedAt     time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`

	// Relations
	Order *TariffOrder `gorm:"foreignKey:OrderID;references:ID" json:"order,omitempty"`
}

// TableName returns the table name for the model
func (TariffDocument) TableName() string {
	return "tariff_documents"
}

// BeforeCreate is called before creating a new record
func (d *TariffDocument) BeforeCreate(tx *gorm.DB) error {
	if d.UUID == uuid.Nil {
		d.UUID = uuid.New()
	}
	if d.DocType == "" {
		d.DocType = utils.DocTypeTariff
	}
	if d.GeneratedAt.IsZero() {
		d.GeneratedAt = utils.UTCNow()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = utils.UTCNow()
	}
	return nil
}

// IsCurrent reports whether this artifact is still the served version
func (d *TariffDocument) IsCurrent() bool {
	return d.SupersededBy == nil
}

// TariffDocumentFilter represents filter criteria for tariff documents
type TariffDocumentFilter struct {
	ID       *uint      `json:"id,omitempty"`
	UUID     *uuid.UUID `json:"uuid,omitempty"`
	OrderID  *uint      `json:"order_id,omitempty"`
	DocType  *string    `json:"doc_type,omitempty"`
	Checksum *string    `json:"checksum,omitempty"`
}
