package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/movedocs/tariffworks/models"
	"github.com/movedocs/tariffworks/utils"
)

// TariffDocumentRepositoryImpl implements the TariffDocumentRepository interface
type TariffDocumentRepositoryImpl struct {
	*BaseRepository[models.TariffDocument, models.TariffDocumentFilter]
}

// NewTariffDocumentRepository creates a new tariff document repository
func NewTariffDocumentRepository(db *gorm.DB) TariffDocumentRepository {
	return &TariffDocumentRepositoryImpl{
		BaseRepository: NewBaseRepository[models.TariffDocument, models.TariffDocumentFilter](db),
	}
}

// LatestByOrder retrieves the current (non-superseded) artifact for an order
func (r *TariffDocumentRepositoryImpl) LatestByOrder(ctx context.Context, orderID uint) (*models.TariffDocument, error) {
	db := r.getDB(ctx)

	var doc models.TariffDocument
	err := db.Where("order_id = ? AND superseded_by IS NULL", orderID).
		Order("generated_at DESC").
		First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &doc, nil
}

// SupersedePrior marks every other current artifact of the order as
// superseded by the new document
func (r *TariffDocumentRepositoryImpl) SupersedePrior(ctx context.Context, orderID uint, newDocumentID uint) error {
	db := r.getDB(ctx)

	return db.Model(&models.TariffDocument{}).
		Where("order_id = ? AND id <> ? AND superseded_by IS NULL", orderID, newDocumentID).
		Updates(map[string]any{
			"superseded_by": newDocumentID,
			"updated_at":    utils.UTCNow(),
		}).Error
}
