package persistence

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mrp/backend/internal/domain/catalog"
	"github.com/mrp/backend/internal/domain/manufacturing"
	"github.com/mrp/backend/internal/domain/shared"
	"github.com/mrp/backend/internal/domain/shared/valueobject"
)

// ProductModel is the GORM model for products
type ProductModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SKU          string          `gorm:"size:50;uniqueIndex;not null"`
	Name         string          `gorm:"size:255;not null"`
	UnitSymbol   string          `gorm:"size:20;not null"`
	CostAmount   decimal.Decimal `gorm:"type:decimal(15,4);not null;default:0"`
	CostCurrency string          `gorm:"size:3;not null;default:'USD'"`
	IsActive     bool            `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName returns the table name
func (ProductModel) TableName() string { return "products" }

// ToDomain converts the model to a domain entity
func (m *ProductModel) ToDomain() (*catalog.Product, error) {
	currency := m.CostCurrency
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	cost, err := valueobject.NewMoney(m.CostAmount, currency)
	if err != nil {
		return nil, err
	}
	return &catalog.Product{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		SKU:          m.SKU,
		Name:         m.Name,
		UnitSymbol:   m.UnitSymbol,
		StandardCost: cost,
		IsActive:     m.IsActive,
	}, nil
}

// ProductModelFromDomain converts a domain entity to the model
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	return &ProductModel{
		ID:           p.ID,
		SKU:          p.SKU,
		Name:         p.Name,
		UnitSymbol:   p.UnitSymbol,
		CostAmount:   p.StandardCost.Amount(),
		CostCurrency: p.StandardCost.Currency(),
		IsActive:     p.IsActive,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// BOMModel is the GORM model for bills of materials
type BOMModel struct {
	ID         uuid.UUID           `gorm:"type:uuid;primaryKey"`
	ProductID  uuid.UUID           `gorm:"type:uuid;index;not null"`
	Name       string              `gorm:"size:255;not null"`
	Components []BOMComponentModel `gorm:"foreignKey:BOMID"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName returns the table name
func (BOMModel) TableName() string { return "boms" }

// BOMComponentModel is the GORM model for BOM component lines
type BOMComponentModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	BOMID          uuid.UUID       `gorm:"type:uuid;index;not null"`
	ComponentID    uuid.UUID       `gorm:"type:uuid;index;not null"`
	Quantity       decimal.Decimal `gorm:"type:decimal(15,4);not null"`
	ScrapFactor    decimal.Decimal `gorm:"type:decimal(5,4);not null;default:0"`
	Unit           string          `gorm:"size:20;not null"`
	SequenceNumber int             `gorm:"not null;default:0"`
}

// TableName returns the table name
func (BOMComponentModel) TableName() string { return "bom_components" }

// ToDomain converts the model to a domain projection
func (m *BOMModel) ToDomain() *manufacturing.BOM {
	components := make([]manufacturing.BOMComponent, 0, len(m.Components))
	for _, c := range m.Components {
		components = append(components, manufacturing.BOMComponent{
			ComponentID:    c.ComponentID,
			Quantity:       c.Quantity,
			ScrapFactor:    c.ScrapFactor,
			Unit:           c.Unit,
			SequenceNumber: c.SequenceNumber,
		})
	}
	return &manufacturing.BOM{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ProductID:  m.ProductID,
		Name:       m.Name,
		Components: components,
	}
}

// ManufacturingOrderModel is the GORM model for manufacturing orders
type ManufacturingOrderModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	MoNumber         string          `gorm:"size:50;uniqueIndex;not null"`
	ProductID        uuid.UUID       `gorm:"type:uuid;index;not null"`
	BOMID            uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity         decimal.Decimal `gorm:"type:decimal(15,4);not null"`
	Unit             string          `gorm:"size:20;not null"`
	Status           string          `gorm:"size:20;index;not null"`
	Priority         string          `gorm:"size:20;not null"`
	PlannedStartDate *time.Time
	PlannedEndDate   *time.Time
	ActualStartDate  *time.Time
	ActualEndDate    *time.Time
	AssignedTo       *uuid.UUID `gorm:"type:uuid"`
	Notes            string     `gorm:"size:1000"`
	CancelReason     string     `gorm:"size:500"`
	Metadata         string     `gorm:"type:jsonb;default:'{}'"`
	CreatedBy        uuid.UUID  `gorm:"type:uuid;not null"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Version          int `gorm:"not null;default:1"`
}

// TableName returns the table name
func (ManufacturingOrderModel) TableName() string { return "manufacturing_orders" }

// ToDomain converts the model to a domain aggregate, re-validating the state
func (m *ManufacturingOrderModel) ToDomain() (*manufacturing.ManufacturingOrder, error) {
	metadata := map[string]string{}
	if m.Metadata != "" {
		if err := json.Unmarshal([]byte(m.Metadata), &metadata); err != nil {
			return nil, err
		}
	}
	quantity, err := valueobject.NewQuantity(m.Quantity, m.Unit)
	if err != nil {
		return nil, err
	}
	return manufacturing.FromPersistence(manufacturing.ManufacturingOrderProps{
		ID:               m.ID,
		MoNumber:         m.MoNumber,
		ProductID:        m.ProductID,
		BOMID:            m.BOMID,
		Quantity:         quantity,
		Status:           manufacturing.Status(m.Status),
		Priority:         manufacturing.Priority(m.Priority),
		PlannedStartDate: m.PlannedStartDate,
		PlannedEndDate:   m.PlannedEndDate,
		ActualStartDate:  m.ActualStartDate,
		ActualEndDate:    m.ActualEndDate,
		AssignedTo:       m.AssignedTo,
		Notes:            m.Notes,
		CancelReason:     m.CancelReason,
		Metadata:         metadata,
		CreatedBy:        m.CreatedBy,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
		Version:          m.Version,
	})
}

// ManufacturingOrderModelFromDomain converts a domain aggregate to the model
func ManufacturingOrderModelFromDomain(order *manufacturing.ManufacturingOrder) (*ManufacturingOrderModel, error) {
	props := order.Props()
	metadata, err := json.Marshal(props.Metadata)
	if err != nil {
		return nil, err
	}
	return &ManufacturingOrderModel{
		ID:               props.ID,
		MoNumber:         props.MoNumber,
		ProductID:        props.ProductID,
		BOMID:            props.BOMID,
		Quantity:         props.Quantity.Amount(),
		Unit:             props.Quantity.Unit(),
		Status:           props.Status.String(),
		Priority:         props.Priority.String(),
		PlannedStartDate: props.PlannedStartDate,
		PlannedEndDate:   props.PlannedEndDate,
		ActualStartDate:  props.ActualStartDate,
		ActualEndDate:    props.ActualEndDate,
		AssignedTo:       props.AssignedTo,
		Notes:            props.Notes,
		CancelReason:     props.CancelReason,
		Metadata:         string(metadata),
		CreatedBy:        props.CreatedBy,
		CreatedAt:        props.CreatedAt,
		UpdatedAt:        props.UpdatedAt,
		Version:          props.Version,
	}, nil
}

// StockLedgerEntryModel is the GORM model for stock ledger entries. Each row
// is a signed movement; on-hand stock for a component is the sum of its rows.
type StockLedgerEntryModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ComponentID uuid.UUID       `gorm:"type:uuid;index;not null"`
	WarehouseID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(15,4);not null"`
	Reference   string          `gorm:"size:100"`
	CreatedAt   time.Time
}

// TableName returns the table name
func (StockLedgerEntryModel) TableName() string { return "stock_ledger_entries" }

// MaterialReservationModel is the GORM model for material reservations
type MaterialReservationModel struct {
	ID                   uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ManufacturingOrderID uuid.UUID       `gorm:"type:uuid;index;not null"`
	ComponentID          uuid.UUID       `gorm:"type:uuid;index;not null"`
	WarehouseID          uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity             decimal.Decimal `gorm:"type:decimal(15,4);not null"`
	Unit                 string          `gorm:"size:20;not null"`
	ReservedBy           uuid.UUID       `gorm:"type:uuid;not null"`
	Status               string          `gorm:"size:20;index;not null"`
	ReleasedAt           *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// TableName returns the table name
func (MaterialReservationModel) TableName() string { return "material_reservations" }

// ToDomain converts the model to a domain entity
func (m *MaterialReservationModel) ToDomain() *manufacturing.MaterialReservation {
	return &manufacturing.MaterialReservation{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ManufacturingOrderID: m.ManufacturingOrderID,
		ComponentID:          m.ComponentID,
		WarehouseID:          m.WarehouseID,
		Quantity:             m.Quantity,
		Unit:                 m.Unit,
		ReservedBy:           m.ReservedBy,
		Status:               manufacturing.ReservationStatus(m.Status),
		ReleasedAt:           m.ReleasedAt,
	}
}

// MaterialReservationModelFromDomain converts a domain entity to the model
func MaterialReservationModelFromDomain(r *manufacturing.MaterialReservation) *MaterialReservationModel {
	return &MaterialReservationModel{
		ID:                   r.ID,
		ManufacturingOrderID: r.ManufacturingOrderID,
		ComponentID:          r.ComponentID,
		WarehouseID:          r.WarehouseID,
		Quantity:             r.Quantity,
		Unit:                 r.Unit,
		ReservedBy:           r.ReservedBy,
		Status:               string(r.Status),
		ReleasedAt:           r.ReleasedAt,
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
	}
}
