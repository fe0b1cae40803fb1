package pricing

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/movedocs/tariffworks/models"
	"github.com/movedocs/tariffworks/utils"
)

// RawRateSubmission is the JSON-like rate-edit payload as submitted by the
// dashboard. Field names mirror the persisted RateSchedule; unknown fields
// are ignored and missing fields take their documented defaults.
type RawRateSubmission map[string]any

// ValidationWarning flags a single rate field that failed to parse and was
// substituted with zero. Warnings never block persistence or document
// generation; they are surfaced so the dashboard can prompt correction.
type ValidationWarning struct {
	Field  string `json:"field"`
	Raw    string `json:"raw"`
	Reason string `json:"reason"`
}

func (w ValidationWarning) String() string {
	return fmt.Sprintf("%s: %s (%q)", w.Field, w.Reason, w.Raw)
}

// Normalize turns a raw, possibly-partial rate submission into a complete
// RateSchedule for the given pricing method. Only the matrix the method
// requires is populated from the submission; every cell and numeric leaf of
// the output is present so calculators never need defensive nil checks.
// Non-numeric or negative input is coerced to 0 with a warning rather than
// rejected — a saved schedule is allowed to show $0.00 pending correction.
func Normalize(raw RawRateSubmission, method models.PricingMethod) (models.RateSchedule, []ValidationWarning) {
	n := &normalizer{raw: raw}

	schedule := models.RateSchedule{
		PricingMethod:  method,
		Transportation: emptyTransportationMatrix(method),
		Flat:           emptyFlatMatrix(),
		Overage: models.OverageTerms{
			ThresholdPercent: utils.DefaultOverageThresholdPercent,
			RatePerLb:        utils.DefaultOverageRatePerLb,
		},
	}

	switch method {
	case models.PricingMethodWeight:
		n.fillTransportation(&schedule, WeightTiers, WeightTierKey)
	case models.PricingMethodCubic:
		n.fillTransportation(&schedule, VolumeTiers, VolumeTierKey)
	case models.PricingMethodFlat:
		n.fillFlat(&schedule)
	case models.PricingMethodMixed:
		n.fillMixed(&schedule)
	}

	n.fillLabor(&schedule)
	n.fillMinimums(&schedule)
	n.fillAccessorial(&schedule)
	n.fillSpecialty(&schedule)

	return schedule, n.warnings
}

type normalizer struct {
	raw      RawRateSubmission
	warnings []ValidationWarning
}

func (n *normalizer) warn(field, raw, reason string) {
	n.warnings = append(n.warnings, ValidationWarning{Field: field, Raw: raw, Reason: reason})
}

// rate reads a non-negative decimal at the dotted path, defaulting to
// fallback when absent and to 0 (with a warning) when unparsable or negative
func (n *normalizer) rate(fallback float64, path ...string) float64 {
	v, present := lookup(n.raw, path...)
	if !present {
		return fallback
	}

	field := strings.Join(path, ".")
	f, ok := coerceNumber(v)
	if !ok {
		n.warn(field, fmt.Sprintf("%v", v), "not a number")
		return 0
	}
	if f < 0 {
		n.warn(field, fmt.Sprintf("%v", v), "negative rate")
		return 0
	}
	return f
}

func (n *normalizer) fillTransportation(s *models.RateSchedule, tiers []int, keyFn func(int) string) {
	for _, t := range tiers {
		row := make(map[string]float64, len(DistanceTiers))
		for _, d := range DistanceTiers {
			dk := DistanceTierKey(d)
			row[dk] = n.rate(0, "transportation_matrix", keyFn(t), dk)
		}
		s.Transportation[keyFn(t)] = row
	}
}

func (n *normalizer) fillFlat(s *models.RateSchedule) {
	for _, t := range SquareFootageTiers {
		sk := SquareFootageTierKey(t)
		row := make(map[string]float64, len(FlatDistanceKeys))
		for _, dk := range FlatDistanceKeys {
			row[dk] = n.rate(0, "flat_matrix", sk, dk)
		}
		s.Flat[sk] = row
	}

	s.Overage.ThresholdPercent = n.rate(utils.DefaultOverageThresholdPercent, "flat_matrix", "overage", "threshold_percent")
	s.Overage.RatePerLb = n.rate(utils.DefaultOverageRatePerLb, "flat_matrix", "overage", "rate_per_lb")
}

func (n *normalizer) fillMixed(s *models.RateSchedule) {
	s.Mixed.Local.TwoMenHourly = n.rate(0, "mixed_rates", "local", "two_men")
	s.Mixed.Local.ThreeMenHourly = n.rate(0, "mixed_rates", "local", "three_men")
	s.Mixed.LongDistance.BaseRatePerLb = n.rate(0, "mixed_rates", "long_distance", "base_rate")
	s.Mixed.LongDistance.MinWeightLbs = n.rate(0, "mixed_rates", "long_distance", "min_weight")
}

func (n *normalizer) fillLabor(s *models.RateSchedule) {
	s.Loading = models.LaborRates{
		PerManHour: n.rate(0, "loading", "per_man_hour"),
		MinHours:   n.rate(utils.DefaultMinLaborHours, "loading", "min_hours"),
		MinMen:     n.rate(utils.DefaultMinCrew, "loading", "min_men"),
	}
	s.Unloading = models.LaborRates{
		PerManHour: n.rate(0, "unloading", "per_man_hour"),
		MinHours:   n.rate(utils.DefaultMinLaborHours, "unloading", "min_hours"),
		MinMen:     n.rate(utils.DefaultMinCrew, "unloading", "min_men"),
	}
}

func (n *normalizer) fillMinimums(s *models.RateSchedule) {
	s.Minimums = models.Minimums{
		Local:        n.rate(0, "minimums", "local"),
		LongDistance: n.rate(0, "minimums", "long_distance"),
		Hours:        n.rate(0, "minimums", "hours"),
	}
}

func (n *normalizer) fillAccessorial(s *models.RateSchedule) {
	s.Accessorial = models.AccessorialRates{
		Packing:   n.rate(0, "accessorial", "packing"),
		Storage:   n.rate(0, "accessorial", "storage"),
		Stairs:    n.rate(0, "accessorial", "stairs"),
		LongCarry: n.rate(0, "accessorial", "long_carry"),
		Shuttle:   n.rate(0, "accessorial", "shuttle"),
		Waiting:   n.rate(0, "accessorial", "waiting"),
	}

	// Fuel surcharge is a percentage in [0, 100); anything outside collapses
	// to 0 like any other bad cell
	pct := n.rate(0, "accessorial", "fuel_surcharge")
	if pct >= 100 {
		n.warn("accessorial.fuel_surcharge", fmt.Sprintf("%v", pct), "surcharge percent must be below 100")
		pct = 0
	}
	s.Accessorial.FuelSurchargePercent = pct
}

func (n *normalizer) fillSpecialty(s *models.RateSchedule) {
	s.Specialty = models.SpecialtyRates{
		PianoUpright: n.rate(0, "specialty", "piano_upright"),
		PianoGrand:   n.rate(0, "specialty", "piano_grand"),
		PoolTable:    n.rate(0, "specialty", "pool_table"),
		Safe:         n.rate(0, "specialty", "safe"),
		Gym:          n.rate(0, "specialty", "gym"),
		Appliance:    n.rate(0, "specialty", "appliance"),
	}
}

func emptyTransportationMatrix(method models.PricingMethod) models.RateMatrix {
	m := models.RateMatrix{}
	tiers, keyFn := WeightTiers, WeightTierKey
	if method == models.PricingMethodCubic {
		tiers, keyFn = VolumeTiers, VolumeTierKey
	}
	for _, t := range tiers {
		row := make(map[string]float64, len(DistanceTiers))
		for _, d := range DistanceTiers {
			row[DistanceTierKey(d)] = 0
		}
		m[keyFn(t)] = row
	}
	return m
}

func emptyFlatMatrix() models.RateMatrix {
	m := models.RateMatrix{}
	for _, t := range SquareFootageTiers {
		row := make(map[string]float64, len(FlatDistanceKeys))
		for _, dk := range FlatDistanceKeys {
			row[dk] = 0
		}
		m[SquareFootageTierKey(t)] = row
	}
	return m
}

// lookup walks nested map[string]any objects along the path
func lookup(raw map[string]any, path ...string) (any, bool) {
	var cur any = map[string]any(raw)
	for _, p := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// coerceNumber accepts the numeric shapes a JSON-ish submission can carry:
// floats, ints, and decimal strings (with optional $ and thousands commas)
func coerceNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		cleaned := strings.TrimSpace(strings.ReplaceAll(strings.TrimPrefix(strings.TrimSpace(n), "$"), ",", ""))
		if cleaned == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
