// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/movedocs/tariffworks/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Update(ctx context.Context, entity *T) error
}

// CarrierProfileRepository defines operations for carrier profiles
type CarrierProfileRepository interface {
	Repository[models.CarrierProfile, models.CarrierProfileFilter]
	ByUUID(ctx context.Context, uuid uuid.UUID) (*models.CarrierProfile, error)
	ByMCNumber(ctx context.Context, mcNumber string) (*models.CarrierProfile, error)
}

// TariffOrderRepository defines operations for tariff orders
type TariffOrderRepository interface {
	Repository[models.TariffOrder, models.TariffOrderFilter]
	ByUUID(ctx context.Context, uuid uuid.UUID) (*models.TariffOrder, error)
	ListByCarrier(ctx context.Context, carrierID uint, limit, offset int) ([]*models.TariffOrder, error)
	ListActiveByCarrier(ctx context.Context, carrierID uint) ([]*models.TariffOrder, error)
	ListExpiredActive(ctx context.Context, limit int) ([]*models.TariffOrder, error)
	MarkExpired(ctx context.Context, orderID uint) error
}

// MethodChangeRequestRepository defines operations for pricing method change requests
type MethodChangeRequestRepository interface {
	Repository[models.PricingMethodChangeRequest, models.MethodChangeRequestFilter]
	ByUUID(ctx context.Context, uuid uuid.UUID) (*models.PricingMethodChangeRequest, error)
	PendingByOrder(ctx context.Context, orderID uint) (*models.PricingMethodChangeRequest, error)
	ListPending(ctx context.Context, limit, offset int) ([]*models.PricingMethodChangeRequest, error)
}

// TariffDocumentRepository defines operations for generated tariff documents
type TariffDocumentRepository interface {
	Repository[models.TariffDocument, models.TariffDocumentFilter]
	LatestByOrder(ctx context.Context, orderID uint) (*models.TariffDocument, error)
	SupersedePrior(ctx context.Context, orderID uint, newDocumentID uint) error
}

// AuditLogRepository defines operations for audit logs
type AuditLogRepository interface {
	Repository[models.AuditLog, models.AuditLogFilter]
	ListByCarrier(ctx context.Context, carrierID uint, limit, offset int) ([]*models.AuditLog, error)
	ListByAction(ctx context.Context, action string, limit, offset int) ([]*models.AuditLog, error)
}
