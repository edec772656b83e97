package valueobject

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Quantity is a value object representing material and order quantities.
// It supports decimal quantities for materials measured by weight/volume.
// It is immutable - all operations return new Quantity instances.
//
// Persisted columns are DECIMAL(15,4); Round(4) keeps computed values inside
// that precision.
type Quantity struct {
	value decimal.Decimal
	unit  string
}

// NewQuantity creates a new Quantity with the specified value and unit
func NewQuantity(value decimal.Decimal, unit string) (Quantity, error) {
	if value.IsNegative() {
		return Quantity{}, errors.New("quantity cannot be negative")
	}
	if unit == "" {
		return Quantity{}, errors.New("quantity unit cannot be empty")
	}
	return Quantity{
		value: value,
		unit:  unit,
	}, nil
}

// NewQuantityFromFloat creates Quantity from a float64 value
func NewQuantityFromFloat(value float64, unit string) (Quantity, error) {
	return NewQuantity(decimal.NewFromFloat(value), unit)
}

// NewQuantityFromInt creates Quantity from an int64 value
func NewQuantityFromInt(value int64, unit string) (Quantity, error) {
	return NewQuantity(decimal.NewFromInt(value), unit)
}

// NewQuantityFromString creates Quantity from a string representation
func NewQuantityFromString(value string, unit string) (Quantity, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Quantity{}, fmt.Errorf("invalid quantity string: %w", err)
	}
	return NewQuantity(d, unit)
}

// MustNewQuantity creates a Quantity and panics on error
func MustNewQuantity(value decimal.Decimal, unit string) Quantity {
	q, err := NewQuantity(value, unit)
	if err != nil {
		panic(err)
	}
	return q
}

// ZeroQuantity returns a zero quantity with the specified unit
func ZeroQuantity(unit string) Quantity {
	return Quantity{value: decimal.Zero, unit: unit}
}

// Amount returns the decimal value
func (q Quantity) Amount() decimal.Decimal {
	return q.value
}

// Unit returns the unit of measurement
func (q Quantity) Unit() string {
	return q.unit
}

// IsZero returns true if the quantity is zero
func (q Quantity) IsZero() bool {
	return q.value.IsZero()
}

// IsPositive returns true if the quantity is positive
func (q Quantity) IsPositive() bool {
	return q.value.IsPositive()
}

// Add returns a new Quantity with the sum of both quantities
// Returns error if units don't match
func (q Quantity) Add(other Quantity) (Quantity, error) {
	if q.unit != other.unit {
		return Quantity{}, fmt.Errorf("cannot add quantities with different units: %s and %s", q.unit, other.unit)
	}
	return Quantity{
		value: q.value.Add(other.value),
		unit:  q.unit,
	}, nil
}

// Subtract returns a new Quantity with the difference
// Returns error if units don't match or result would be negative
func (q Quantity) Subtract(other Quantity) (Quantity, error) {
	if q.unit != other.unit {
		return Quantity{}, fmt.Errorf("cannot subtract quantities with different units: %s and %s", q.unit, other.unit)
	}
	result := q.value.Sub(other.value)
	if result.IsNegative() {
		return Quantity{}, errors.New("resulting quantity would be negative")
	}
	return Quantity{
		value: result,
		unit:  q.unit,
	}, nil
}

// Multiply returns a new Quantity multiplied by the given factor
func (q Quantity) Multiply(factor decimal.Decimal) (Quantity, error) {
	result := q.value.Mul(factor)
	if result.IsNegative() {
		return Quantity{}, errors.New("resulting quantity would be negative")
	}
	return Quantity{
		value: result,
		unit:  q.unit,
	}, nil
}

// Round returns a new Quantity rounded to the specified decimal places
func (q Quantity) Round(places int32) Quantity {
	return Quantity{
		value: q.value.Round(places),
		unit:  q.unit,
	}
}

// Equals returns true if both quantities are equal (same value and unit)
func (q Quantity) Equals(other Quantity) bool {
	return q.unit == other.unit && q.value.Equal(other.value)
}

// LessThan returns true if this quantity is less than the other
func (q Quantity) LessThan(other Quantity) (bool, error) {
	if q.unit != other.unit {
		return false, fmt.Errorf("cannot compare quantities with different units: %s and %s", q.unit, other.unit)
	}
	return q.value.LessThan(other.value), nil
}

// GreaterThanOrEqual returns true if this quantity is greater than or equal to the other
func (q Quantity) GreaterThanOrEqual(other Quantity) (bool, error) {
	if q.unit != other.unit {
		return false, fmt.Errorf("cannot compare quantities with different units: %s and %s", q.unit, other.unit)
	}
	return q.value.GreaterThanOrEqual(other.value), nil
}

// SufficientFor returns true if this quantity is sufficient for the required amount
func (q Quantity) SufficientFor(required Quantity) (bool, error) {
	return q.GreaterThanOrEqual(required)
}

// Deficit returns how much more is needed to meet the required amount
// Returns zero if quantity is sufficient
func (q Quantity) Deficit(required Quantity) (Quantity, error) {
	if q.unit != required.unit {
		return Quantity{}, fmt.Errorf("cannot calculate deficit with different units: %s and %s", q.unit, required.unit)
	}
	if q.value.GreaterThanOrEqual(required.value) {
		return ZeroQuantity(q.unit), nil
	}
	return Quantity{
		value: required.value.Sub(q.value),
		unit:  q.unit,
	}, nil
}

// String returns a string representation of the Quantity
func (q Quantity) String() string {
	if q.unit == "" {
		return q.value.String()
	}
	return fmt.Sprintf("%s %s", q.value.String(), q.unit)
}

// MarshalJSON implements json.Marshaler
func (q Quantity) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Value string `json:"value"`
		Unit  string `json:"unit"`
	}{
		Value: q.value.String(),
		Unit:  q.unit,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
// It validates that the quantity is non-negative during unmarshaling,
// maintaining the domain invariant that quantities cannot be negative.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	var v struct {
		Value string `json:"value"`
		Unit  string `json:"unit"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	value, err := decimal.NewFromString(v.Value)
	if err != nil {
		return fmt.Errorf("invalid value: %w", err)
	}
	if value.IsNegative() {
		return errors.New("quantity cannot be negative")
	}
	q.value = value
	q.unit = v.Unit
	return nil
}
