package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrp/backend/internal/domain/manufacturing"
)

// GormMaterialReservationRepository implements MaterialReservationRepository
// using GORM
type GormMaterialReservationRepository struct {
	db *gorm.DB
}

// NewGormMaterialReservationRepository creates a new repository
func NewGormMaterialReservationRepository(db *gorm.DB) *GormMaterialReservationRepository {
	return &GormMaterialReservationRepository{db: db}
}

// GetTotalReservedQuantity sums active reservations for a component
func (r *GormMaterialReservationRepository) GetTotalReservedQuantity(ctx context.Context, componentID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&MaterialReservationModel{}).
		Select("SUM(quantity)").
		Where("component_id = ? AND status = ?", componentID, string(manufacturing.ReservationStatusActive)).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// Save upserts the reservation
func (r *GormMaterialReservationRepository) Save(ctx context.Context, reservation *manufacturing.MaterialReservation) error {
	model := MaterialReservationModelFromDomain(reservation)
	model.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(model).Error
}

// FindActiveByOrder returns the active reservations held by an order
func (r *GormMaterialReservationRepository) FindActiveByOrder(ctx context.Context, orderID uuid.UUID) ([]manufacturing.MaterialReservation, error) {
	var models []MaterialReservationModel
	err := r.db.WithContext(ctx).
		Where("manufacturing_order_id = ? AND status = ?", orderID, string(manufacturing.ReservationStatusActive)).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	reservations := make([]manufacturing.MaterialReservation, 0, len(models))
	for i := range models {
		reservations = append(reservations, *models[i].ToDomain())
	}
	return reservations, nil
}

var _ manufacturing.MaterialReservationRepository = (*GormMaterialReservationRepository)(nil)
