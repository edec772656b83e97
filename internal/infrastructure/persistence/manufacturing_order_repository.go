package persistence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrp/backend/internal/domain/manufacturing"
	"github.com/mrp/backend/internal/domain/shared"
)

// GormManufacturingOrderRepository implements ManufacturingOrderRepository
// using GORM
type GormManufacturingOrderRepository struct {
	db *gorm.DB
}

// NewGormManufacturingOrderRepository creates a new repository
func NewGormManufacturingOrderRepository(db *gorm.DB) *GormManufacturingOrderRepository {
	return &GormManufacturingOrderRepository{db: db}
}

// FindByID returns the order or nil when it does not exist
func (r *GormManufacturingOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*manufacturing.ManufacturingOrder, error) {
	var model ManufacturingOrderModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return model.ToDomain()
}

// FindByMoNumber returns the order or nil when it does not exist
func (r *GormManufacturingOrderRepository) FindByMoNumber(ctx context.Context, moNumber string) (*manufacturing.ManufacturingOrder, error) {
	var model ManufacturingOrderModel
	err := r.db.WithContext(ctx).First(&model, "mo_number = ?", moNumber).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return model.ToDomain()
}

// FindAll returns orders matching the filter
func (r *GormManufacturingOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]manufacturing.ManufacturingOrder, error) {
	var models []ManufacturingOrderModel
	query := r.applyFilter(r.db.WithContext(ctx), filter)
	query = query.Order(fmt.Sprintf("%s %s", orderColumn(filter.OrderBy), orderDirection(filter.OrderDir)))
	query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	orders := make([]manufacturing.ManufacturingOrder, 0, len(models))
	for i := range models {
		order, err := models[i].ToDomain()
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, nil
}

// Count returns the number of orders matching the filter
func (r *GormManufacturingOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&ManufacturingOrderModel{}), filter).Count(&count).Error
	return count, err
}

// CountByStatus returns the number of orders in the given status
func (r *GormManufacturingOrderRepository) CountByStatus(ctx context.Context, status manufacturing.Status) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&ManufacturingOrderModel{}).
		Where("status = ?", status.String()).Count(&count).Error
	return count, err
}

// Save upserts the order
func (r *GormManufacturingOrderRepository) Save(ctx context.Context, order *manufacturing.ManufacturingOrder) error {
	model, err := ManufacturingOrderModelFromDomain(order)
	if err != nil {
		return err
	}
	model.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(model).Error
}

// Delete removes the order
func (r *GormManufacturingOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&ManufacturingOrderModel{}, "id = ?", id).Error
}

// GenerateMoNumber returns the next order number for the current month.
// Numbers are MO{yyyy}{mm}{0000-padded sequence}; the sequence restarts each
// month and is derived from the highest existing number under the month's
// prefix, so it is monotonic even across deletions of earlier drafts.
func (r *GormManufacturingOrderRepository) GenerateMoNumber(ctx context.Context) (string, error) {
	now := time.Now()
	prefix := fmt.Sprintf("MO%04d%02d", now.Year(), int(now.Month()))

	// Longer numbers sort first so a five-digit sequence outranks any
	// four-digit one; plain lexicographic ordering would not.
	var latest string
	err := r.db.WithContext(ctx).Model(&ManufacturingOrderModel{}).
		Select("mo_number").
		Where("mo_number LIKE ?", prefix+"%").
		Order("LENGTH(mo_number) DESC, mo_number DESC").
		Limit(1).
		Scan(&latest).Error
	if err != nil {
		return "", err
	}

	sequence := 1
	if latest != "" {
		parsed, err := strconv.Atoi(strings.TrimPrefix(latest, prefix))
		if err != nil {
			return "", fmt.Errorf("malformed MO number %q: %w", latest, err)
		}
		sequence = parsed + 1
	}
	return fmt.Sprintf("%s%04d", prefix, sequence), nil
}

// applyFilter adds status, priority, and search conditions
func (r *GormManufacturingOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if priority, ok := filter.Filters["priority"]; ok {
		query = query.Where("priority = ?", priority)
	}
	if filter.Search != "" {
		query = query.Where("mo_number LIKE ?", "%"+filter.Search+"%")
	}
	return query
}

// orderColumn whitelists sortable columns
func orderColumn(column string) string {
	switch column {
	case "mo_number", "status", "priority", "planned_start_date", "planned_end_date", "updated_at":
		return column
	default:
		return "created_at"
	}
}

func orderDirection(dir string) string {
	if strings.EqualFold(dir, "asc") {
		return "ASC"
	}
	return "DESC"
}

var _ manufacturing.ManufacturingOrderRepository = (*GormManufacturingOrderRepository)(nil)
