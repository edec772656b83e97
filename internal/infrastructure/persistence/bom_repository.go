package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrp/backend/internal/domain/manufacturing"
)

// GormBOMRepository implements BOMRepository using GORM
type GormBOMRepository struct {
	db *gorm.DB
}

// NewGormBOMRepository creates a new repository
func NewGormBOMRepository(db *gorm.DB) *GormBOMRepository {
	return &GormBOMRepository{db: db}
}

// FindComplete returns the BOM with all its components, or nil when it does
// not exist
func (r *GormBOMRepository) FindComplete(ctx context.Context, id uuid.UUID) (*manufacturing.BOM, error) {
	var model BOMModel
	err := r.db.WithContext(ctx).
		Preload("Components", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence_number ASC")
		}).
		First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

var _ manufacturing.BOMRepository = (*GormBOMRepository)(nil)
