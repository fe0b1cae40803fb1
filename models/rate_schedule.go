package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// RateMatrix maps a size tier key (w1000, v600, s2500, ...) to a distance
// tier key (local, d250, d500, d1000, d1500) to a rate or flat amount.
// Normalization guarantees every cell of the active matrix is present, so
// lookups never need nil checks.
type RateMatrix map[string]map[string]float64

// Rate returns the cell value, or 0 for a cell that was never populated
func (m RateMatrix) Rate(sizeKey, distanceKey string) float64 {
	if row, ok := m[sizeKey]; ok {
		return row[distanceKey]
	}
	return 0
}

// OverageTerms governs flat-rate billing when actual weight exceeds the
// assumed weight for the booked square footage
type OverageTerms struct {
	ThresholdPercent float64 `json:"threshold_percent"`
	RatePerLb        float64 `json:"rate_per_lb"`
}

// MixedLocalRates holds hourly crew rates for local moves under mixed pricing
type MixedLocalRates struct {
	TwoMenHourly   float64 `json:"two_men"`
	ThreeMenHourly float64 `json:"three_men"`
}

// MixedLongDistanceRates holds per-pound billing terms for long-distance
// moves under mixed pricing
type MixedLongDistanceRates struct {
	BaseRatePerLb float64 `json:"base_rate"`
	MinWeightLbs  float64 `json:"min_weight"`
}

// MixedRates is the rate payload used only when pricing_method = mixed
type MixedRates struct {
	Local        MixedLocalRates        `json:"local"`
	LongDistance MixedLongDistanceRates `json:"long_distance"`
}

// LaborRates describes loading or unloading labor billing
type LaborRates struct {
	PerManHour float64 `json:"per_man_hour"`
	MinHours   float64 `json:"min_hours"`
	MinMen     float64 `json:"min_men"`
}

// Minimums are floor charges applied regardless of the computed total
type Minimums struct {
	Local        float64 `json:"local"`
	LongDistance float64 `json:"long_distance"`
	Hours        float64 `json:"hours"`
}

// AccessorialRates are add-on service charges billed alongside line-haul
// and labor. FuelSurchargePercent applies to line-haul only.
type AccessorialRates struct {
	Packing              float64 `json:"packing"`
	Storage              float64 `json:"storage"`
	Stairs               float64 `json:"stairs"`
	LongCarry            float64 `json:"long_carry"`
	Shuttle              float64 `json:"shuttle"`
	Waiting              float64 `json:"waiting"`
	FuelSurchargePercent float64 `json:"fuel_surcharge"`
}

// SpecialtyRates are named flat add-ons for specialty items
type SpecialtyRates struct {
	PianoUpright float64 `json:"piano_upright"`
	PianoGrand   float64 `json:"piano_grand"`
	PoolTable    float64 `json:"pool_table"`
	Safe         float64 `json:"safe"`
	Gym          float64 `json:"gym"`
	Appliance    float64 `json:"appliance"`
}

// RateSchedule is one carrier's complete pricing configuration. Exactly one
// of the three matrices is semantically active, selected by PricingMethod;
// the others may carry stale data from a prior method but are never read by
// calculators. A RateSchedule is an immutable value once normalized: edits
// produce a new value rather than mutating in place.
type RateSchedule struct {
	PricingMethod  PricingMethod    `json:"pricing_method"`
	Transportation RateMatrix       `json:"transportation_matrix"`
	Flat           RateMatrix       `json:"flat_matrix"`
	Overage        OverageTerms     `json:"overage"`
	Mixed          MixedRates       `json:"mixed_rates"`
	Loading        LaborRates       `json:"loading"`
	Unloading      LaborRates       `json:"unloading"`
	Minimums       Minimums         `json:"minimums"`
	Accessorial    AccessorialRates `json:"accessorial"`
	Specialty      SpecialtyRates   `json:"specialty"`
}

// Value implements the driver.Valuer interface for RateSchedule
func (s RateSchedule) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements the sql.Scanner interface for RateSchedule
func (s *RateSchedule) Scan(value any) error {
	if value == nil {
		*s = RateSchedule{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into RateSchedule", value)
	}

	return json.Unmarshal(bytes, s)
}

// AccessorialRate returns the schedule rate for a named accessorial service,
// or 0 for an unknown name
func (s *RateSchedule) AccessorialRate(name string) float64 {
	switch name {
	case "packing":
		return s.Accessorial.Packing
	case "storage":
		return s.Accessorial.Storage
	case "stairs":
		return s.Accessorial.Stairs
	case "long_carry":
		return s.Accessorial.LongCarry
	case "shuttle":
		return s.Accessorial.Shuttle
	case "waiting":
		return s.Accessorial.Waiting
	default:
		return 0
	}
}

// SpecialtyRate returns the flat add-on for a named specialty item, or 0
// for an unknown name
func (s *RateSchedule) SpecialtyRate(name string) float64 {
	switch name {
	case "piano_upright":
		return s.Specialty.PianoUpright
	case "piano_grand":
		return s.Specialty.PianoGrand
	case "pool_table":
		return s.Specialty.PoolTable
	case "safe":
		return s.Specialty.Safe
	case "gym":
		return s.Specialty.Gym
	case "appliance":
		return s.Specialty.Appliance
	default:
		return 0
	}
}
