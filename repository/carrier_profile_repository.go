package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/movedocs/tariffworks/models"
)

// CarrierProfileRepositoryImpl implements the CarrierProfileRepository interface
type CarrierProfileRepositoryImpl struct {
	*BaseRepository[models.CarrierProfile, models.CarrierProfileFilter]
}

// NewCarrierProfileRepository creates a new carrier profile repository
func NewCarrierProfileRepository(db *gorm.DB) CarrierProfileRepository {
	return &CarrierProfileRepositoryImpl{
		BaseRepository: NewBaseRepository[models.CarrierProfile, models.CarrierProfileFilter](db),
	}
}

// ByUUID retrieves a carrier profile by UUID
func (r *CarrierProfileRepositoryImpl) ByUUID(ctx context.Context, id uuid.UUID) (*models.CarrierProfile, error) {
	db := r.getDB(ctx)

	var profile models.CarrierProfile
	err := db.Where("uuid = ?", id).Last(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &profile, nil
}

// ByMCNumber retrieves a carrier profile by its MC number
func (r *CarrierProfileRepositoryImpl) ByMCNumber(ctx context.Context, mcNumber string) (*models.CarrierProfile, error) {
	db := r.getDB(ctx)

	var profile models.CarrierProfile
	err := db.Where("mc_number = ?", mcNumber).Last(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &profile, nil
}
