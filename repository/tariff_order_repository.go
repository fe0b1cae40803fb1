package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/movedocs/tariffworks/models"
	"github.com/movedocs/tariffworks/utils"
)

// TariffOrderRepositoryImpl implements the TariffOrderRepository interface
type TariffOrderRepositoryImpl struct {
	*BaseRepository[models.TariffOrder, models.TariffOrderFilter]
}

// NewTariffOrderRepository creates a new tariff order repository
func NewTariffOrderRepository(db *gorm.DB) TariffOrderRepository {
	return &TariffOrderRepositoryImpl{
		BaseRepository: NewBaseRepository[models.TariffOrder, models.TariffOrderFilter](db),
	}
}

// ByID retrieves a tariff order by ID with its carrier preloaded
func (r *TariffOrderRepositoryImpl) ByID(ctx context.Context, id uint) (*models.TariffOrder, error) {
	db := r.getDB(ctx)

	var order models.TariffOrder
	err := db.Preload("Carrier").Last(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &order, nil
}

// ByUUID retrieves a tariff order by UUID with its carrier preloaded
func (r *TariffOrderRepositoryImpl) ByUUID(ctx context.Context, id uuid.UUID) (*models.TariffOrder, error) {
	db := r.getDB(ctx)

	var order models.TariffOrder
	err := db.Preload("Carrier").Where("uuid = ?", id).Last(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &order, nil
}

// ListByCarrier retrieves a carrier's tariff orders, newest first
func (r *TariffOrderRepositoryImpl) ListByCarrier(ctx context.Context, carrierID uint, limit, offset int) ([]*models.TariffOrder, error) {
	db := r.getDB(ctx)

	var orders []*models.TariffOrder
	query := db.Where("carrier_id = ?", carrierID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}

	return orders, nil
}

// ListActiveByCarrier retrieves a carrier's non-expired orders
func (r *TariffOrderRepositoryImpl) ListActiveByCarrier(ctx context.Context, carrierID uint) ([]*models.TariffOrder, error) {
	db := r.getDB(ctx)

	var orders []*models.TariffOrder
	err := db.Where("carrier_id = ? AND status <> ? AND expiry_date > ?",
		carrierID, models.OrderStatusExpired, utils.UTCNow()).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	return orders, nil
}

// ListExpiredActive retrieves orders whose validity period has passed but
// whose status has not yet been moved to expired
func (r *TariffOrderRepositoryImpl) ListExpiredActive(ctx context.Context, limit int) ([]*models.TariffOrder, error) {
	db := r.getDB(ctx)

	var orders []*models.TariffOrder
	query := db.Where("status <> ? AND expiry_date <= ?", models.OrderStatusExpired, utils.UTCNow()).
		Order("expiry_date ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}

	return orders, nil
}

// MarkExpired transitions an order to the expired status
func (r *TariffOrderRepositoryImpl) MarkExpired(ctx context.Context, orderID uint) error {
	db := r.getDB(ctx)

	return db.Model(&models.TariffOrder{}).
		Where("id = ?", orderID).
		Updates(map[string]any{
			"status":     models.OrderStatusExpired,
			"updated_at": utils.UTCNow(),
		}).Error
}
