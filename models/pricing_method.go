// Package models contains domain entities and business models for the tariff system
package models

import (
	"database/sql/driver"
	"fmt"
)

// PricingMethod selects which rate matrix of a RateSchedule is in effect
type PricingMethod string

const (
	PricingMethodWeight PricingMethod = "weight"
	PricingMethodCubic  PricingMethod = "cubic"
	PricingMethodFlat   PricingMethod = "flat"
	PricingMethodMixed  PricingMethod = "mixed"
)

// String returns the string representation of the pricing method
func (m PricingMethod) String() string {
	return string(m)
}

// Valid checks if the pricing method is valid
func (m PricingMethod) Valid() bool {
	switch m {
	case PricingMethodWeight, PricingMethodCubic, PricingMethodFlat, PricingMethodMixed:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for PricingMethod
func (m *PricingMethod) Scan(value any) error {
	if value == nil {
		*m = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*m = PricingMethod(v)
	case []byte:
		*m = PricingMethod(string(v))
	default:
		return fmt.Errorf("cannot scan %T into PricingMethod", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for PricingMethod
func (m PricingMethod) Value() (driver.Value, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("invalid PricingMethod: %s", m)
	}
	return string(m), nil
}

// GetDisplayName returns a human-readable method name
func (m PricingMethod) GetDisplayName() string {
	switch m {
	case PricingMethodWeight:
		return "Weight-Based"
	case PricingMethodCubic:
		return "Cubic-Foot"
	case PricingMethodFlat:
		return "Flat-Rate by Square Footage"
	case PricingMethodMixed:
		return "Mixed Hourly/Long-Distance"
	default:
		return "Unknown"
	}
}
