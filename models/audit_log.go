package models

import (
	"encoding/json"
	"time"
)

type AuditLog struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	CarrierID    *uint           `gorm:"index:idx_audit_carrier_id" json:"carrier_id,omitempty"`
	Carrier      *CarrierProfile `gorm:"foreignKey:CarrierID;references:ID" json:"carrier,omitempty"`
	Action       string          `gorm:"type:audit_action_enum;not null;index:idx_audit_action" json:"action"`
	Description  *string         `gorm:"type:text" json:"description,omitempty"`
	IPAddress    *string         `gorm:"type:inet;index:idx_audit_ip_address" json:"ip_address,omitempty"`
	UserAgent    *string         `gorm:"type:text" json:"user_agent,omitempty"`
	RequestID    *string         `gorm:"size:255;index:idx_audit_request_id" json:"request_id,omitempty"`
	Metadata     json.RawMessage `gorm:"type:jsonb" json:"metadata,omitempty"`
	Success      *bool           `gorm:"default:true;index:idx_audit_success" json:"success"`
	ErrorMessage *string         `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time       `gorm:"default:CURRENT_TIMESTAMP;index:idx_audit_created_at" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_log"
}

// Audit action constants
const (
	AuditActionTariffPurchased           = "tariff_purchased"
	AuditActionTariffPurchaseFailed      = "tariff_purchase_failed"
	AuditActionTariffRatesUpdated        = "tariff_rates_updated"
	AuditActionTariffRateUpdateFailed    = "tariff_rate_update_failed"
	AuditActionTariffRatesCoerced        = "tariff_rates_coerced"
	AuditActionTariffRenewed             = "tariff_renewed"
	AuditActionTariffExpired             = "tariff_expired"
	AuditActionMethodChangeSubmitted     = "method_change_submitted"
	AuditActionMethodChangeApproved      = "method_change_approved"
	AuditActionMethodChangeRejected      = "method_change_rejected"
	AuditActionDocumentGenerated         = "document_generated"
	AuditActionDocumentGenerationFailed  = "document_generation_failed"
	AuditActionDocumentDownloaded        = "document_downloaded"
	AuditActionRateSheetExported         = "rate_sheet_exported"
	AuditActionRegenerationSuperseded    = "regeneration_superseded"
)

// AuditLogFilter represents filter criteria for audit log queries
type AuditLogFilter struct {
	ID            *uint
	CarrierID     *uint
	Action        *string
	Success       *bool
	IPAddress     *string
	RequestID     *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

func (a *AuditLog) IsFailed() bool {
	return a.Success != nil && !*a.Success
}
