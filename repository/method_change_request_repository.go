package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/movedocs/tariffworks/models"
)

// MethodChangeRequestRepositoryImpl implements the MethodChangeRequestRepository interface
type MethodChangeRequestRepositoryImpl struct {
	*BaseRepository[models.PricingMethodChangeRequest, models.MethodChangeRequestFilter]
}

// NewMethodChangeRequestRepository creates a new method change request repository
func NewMethodChangeRequestRepository(db *gorm.DB) MethodChangeRequestRepository {
	return &MethodChangeRequestRepositoryImpl{
		BaseRepository: NewBaseRepository[models.PricingMethodChangeRequest, models.MethodChangeRequestFilter](db),
	}
}

// ByUUID retrieves a change request by UUID with its order preloaded
func (r *MethodChangeRequestRepositoryImpl) ByUUID(ctx context.Context, id uuid.UUID) (*models.PricingMethodChangeRequest, error) {
	db := r.getDB(ctx)

	var req models.PricingMethodChangeRequest
	err := db.Preload("Order").Where("uuid = ?", id).Last(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &req, nil
}

// PendingByOrder retrieves the pending change request for an order, if any
func (r *MethodChangeRequestRepositoryImpl) PendingByOrder(ctx context.Context, orderID uint) (*models.PricingMethodChangeRequest, error) {
	db := r.getDB(ctx)

	var req models.PricingMethodChangeRequest
	err := db.Where("order_id = ? AND status = ?", orderID, models.MethodChangeStatusPending).
		Last(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &req, nil
}

// ListPending retrieves pending change requests, oldest first
func (r *MethodChangeRequestRepositoryImpl) ListPending(ctx context.Context, limit, offset int) ([]*models.PricingMethodChangeRequest, error) {
	db := r.getDB(ctx)

	var reqs []*models.PricingMethodChangeRequest
	query := db.Where("status = ?", models.MethodChangeStatusPending).Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&reqs).Error; err != nil {
		return nil, err
	}

	return reqs, nil
}
