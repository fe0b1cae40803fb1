// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"
	"time"

	"github.com/movedocs/tariffworks/app/dto"
	"github.com/movedocs/tariffworks/models"
	"github.com/movedocs/tariffworks/repository"
	"github.com/movedocs/tariffworks/utils"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds all client-related information for audit logging
type ClientMetadata struct {
	IPAddress  string            `json:"ip_address"`
	UserAgent  string            `json:"user_agent"`
	RequestID  string            `json:"request_id,omitempty"`
	Additional map[string]string `json:"additional,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Additional: make(map[string]string),
	}
}

// AddAdditional adds additional custom information to the metadata
func (cm *ClientMetadata) AddAdditional(key, value string) {
	if cm.Additional == nil {
		cm.Additional = make(map[string]string)
	}
	cm.Additional[key] = value
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

func ToTariffOrderDTO(order models.TariffOrder) dto.TariffOrderDTO {
	out := dto.TariffOrderDTO{
		UUID:             order.UUID.String(),
		PricingMethod:    string(order.PricingMethod),
		ServiceTerritory: order.ServiceTerritory,
		Accessorials:     []string(order.Accessorials),
		Status:           string(order.Status),
		EnrolledDate:     order.EnrolledDate.Format(time.RFC3339),
		ExpiryDate:       order.ExpiryDate.Format(time.RFC3339),
		CreatedAt:        order.CreatedAt.Format(time.RFC3339),
	}
	if order.DocumentURL != nil {
		out.DocumentURL = *order.DocumentURL
	}
	return out
}

func ToMethodChangeRequestDTO(req models.PricingMethodChangeRequest) dto.MethodChangeRequestDTO {
	out := dto.MethodChangeRequestDTO{
		UUID:       req.UUID.String(),
		FromMethod: string(req.FromMethod),
		ToMethod:   string(req.ToMethod),
		Status:     string(req.Status),
		Note:       req.DecisionNote,
		CreatedAt:  req.CreatedAt.Format(time.RFC3339),
	}
	if req.Order != nil {
		out.OrderUUID = req.Order.UUID.String()
	}
	return out
}

// saveAuditLog persists a single audit record. Errors are returned so callers
// can decide whether the failure matters for the flow at hand.
func saveAuditLog(ctx context.Context, auditRepo repository.AuditLogRepository, carrierID *uint, action, description string, success bool, errorMsg *string, metadata *ClientMetadata) error {
	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		CarrierID:    carrierID,
		Action:       action,
		Description:  &description,
		Success:      utils.ToPtr(success),
		IPAddress:    &ipAddress,
		UserAgent:    &userAgent,
		ErrorMessage: errorMsg,
	}

	// Extract request ID from context if available
	requestID := ctx.Value(RequestIDKey)
	if requestID != nil {
		requestIDStr, ok := requestID.(string)
		if ok {
			audit.RequestID = &requestIDStr
		}
	}

	return auditRepo.Save(ctx, audit)
}

func validatePagination(page, pageSize int) (int, int, error) {
	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = 20
	}
	if page < 1 {
		return 0, 0, NewBusinessError("INVALID_PAGE", "page must be at least 1", ErrInvalidPage)
	}
	if pageSize < 1 || pageSize > 100 {
		return 0, 0, NewBusinessError("INVALID_PAGE_SIZE", "page size must be between 1 and 100", ErrInvalidPageSize)
	}
	return page, pageSize, nil
}
