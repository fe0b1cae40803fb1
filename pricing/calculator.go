package pricing

import (
	"github.com/movedocs/tariffworks/models"
)

// Shipment is a synthetic shipment used to compute illustrative sample
// charges for tariff documents. Volume and square footage matter only to
// the cubic and flat methods respectively.
type Shipment struct {
	WeightLbs      float64  `json:"weight_lbs"`
	CubicFeet      float64  `json:"cubic_feet"`
	SquareFeet     float64  `json:"square_feet"`
	DistanceMiles  float64  `json:"distance_miles"`
	CrewSize       float64  `json:"crew_size"`
	LoadHours      float64  `json:"load_hours"`
	UnloadHours    float64  `json:"unload_hours"`
	Accessorials   []string `json:"accessorials,omitempty"`
	SpecialtyItems []string `json:"specialty_items,omitempty"`
}

// ChargeBreakdown is a fully itemized sample charge. All amounts are
// illustrative document content, not binding billing; out-of-range
// shipments clamp to the nearest published tier and proceed.
type ChargeBreakdown struct {
	Method           models.PricingMethod `json:"method"`
	SizeTierKey      string               `json:"size_tier_key"`
	DistanceTierKey  string               `json:"distance_tier_key"`
	IsLocal          bool                 `json:"is_local"`
	LineHaul         float64              `json:"line_haul"`
	OverageCharge    float64              `json:"overage_charge"`
	FuelSurcharge    float64              `json:"fuel_surcharge"`
	LoadingCost      float64              `json:"loading_cost"`
	UnloadingCost    float64              `json:"unloading_cost"`
	AccessorialTotal float64              `json:"accessorial_total"`
	SpecialtyTotal   float64              `json:"specialty_total"`
	Subtotal         float64              `json:"subtotal"`
	MinimumFloor     float64              `json:"minimum_floor"`
	FloorApplied     bool                 `json:"floor_applied"`
	Total            float64              `json:"total"`
}

// ComputeSample computes a fully itemized sample charge for the schedule's
// active pricing method. It never fails: bad inputs clamp, absent rates are
// zeros by normalization.
func ComputeSample(schedule models.RateSchedule, shipment Shipment) ChargeBreakdown {
	b := ChargeBreakdown{
		Method:  schedule.PricingMethod,
		IsLocal: IsLocalMove(shipment.DistanceMiles),
	}

	switch schedule.PricingMethod {
	case models.PricingMethodWeight:
		computeWeightLineHaul(&b, schedule, shipment)
	case models.PricingMethodCubic:
		computeCubicLineHaul(&b, schedule, shipment)
	case models.PricingMethodFlat:
		computeFlatLineHaul(&b, schedule, shipment)
	case models.PricingMethodMixed:
		computeMixedLineHaul(&b, schedule, shipment)
	}

	// Uniform add-ons across all methods. The fuel surcharge applies to the
	// line-haul charge only, never to labor or accessorials.
	b.FuelSurcharge = b.LineHaul * (schedule.Accessorial.FuelSurchargePercent / 100)
	b.LoadingCost = laborCost(schedule.Loading, shipment.CrewSize, shipment.LoadHours)
	b.UnloadingCost = laborCost(schedule.Unloading, shipment.CrewSize, shipment.UnloadHours)

	for _, name := range shipment.Accessorials {
		b.AccessorialTotal += schedule.AccessorialRate(name)
	}
	for _, name := range shipment.SpecialtyItems {
		b.SpecialtyTotal += schedule.SpecialtyRate(name)
	}

	b.Subtotal = b.LineHaul + b.OverageCharge + b.FuelSurcharge +
		b.LoadingCost + b.UnloadingCost + b.AccessorialTotal + b.SpecialtyTotal

	b.MinimumFloor = schedule.Minimums.LongDistance
	if b.IsLocal {
		b.MinimumFloor = schedule.Minimums.Local
	}

	b.Total = b.Subtotal
	if b.Total < b.MinimumFloor {
		b.Total = b.MinimumFloor
		b.FloorApplied = true
	}

	return b
}

func computeWeightLineHaul(b *ChargeBreakdown, schedule models.RateSchedule, shipment Shipment) {
	b.SizeTierKey = WeightTierKey(SelectTier(shipment.WeightLbs, WeightTiers))
	b.DistanceTierKey = DistanceTierKey(SelectTier(shipment.DistanceMiles, DistanceTiers))
	rate := schedule.Transportation.Rate(b.SizeTierKey, b.DistanceTierKey)
	b.LineHaul = shipment.WeightLbs * rate
}

func computeCubicLineHaul(b *ChargeBreakdown, schedule models.RateSchedule, shipment Shipment) {
	b.SizeTierKey = VolumeTierKey(SelectTier(shipment.CubicFeet, VolumeTiers))
	b.DistanceTierKey = DistanceTierKey(SelectTier(shipment.DistanceMiles, DistanceTiers))
	rate := schedule.Transportation.Rate(b.SizeTierKey, b.DistanceTierKey)
	b.LineHaul = shipment.CubicFeet * rate
}

func computeFlatLineHaul(b *ChargeBreakdown, schedule models.RateSchedule, shipment Shipment) {
	sqftTier := SelectTier(shipment.SquareFeet, SquareFootageTiers)
	b.SizeTierKey = SquareFootageTierKey(sqftTier)
	b.DistanceTierKey = FlatDistanceKey(shipment.DistanceMiles)
	b.LineHaul = schedule.Flat.Rate(b.SizeTierKey, b.DistanceTierKey)

	// Overage kicks in when actual weight exceeds the tier's assumed weight
	// by more than the threshold; the whole excess over the assumption is
	// billed per pound
	assumed := AssumedWeightBySquareFootage[sqftTier]
	allowance := assumed * (1 + schedule.Overage.ThresholdPercent/100)
	if assumed > 0 && shipment.WeightLbs > allowance {
		b.OverageCharge = schedule.Overage.RatePerLb * (shipment.WeightLbs - assumed)
	}
}

func computeMixedLineHaul(b *ChargeBreakdown, schedule models.RateSchedule, shipment Shipment) {
	if b.IsLocal {
		hourly := schedule.Mixed.Local.TwoMenHourly
		if shipment.CrewSize >= 3 {
			hourly = schedule.Mixed.Local.ThreeMenHourly
		}
		hours := shipment.LoadHours + shipment.UnloadHours
		if hours < schedule.Minimums.Hours {
			hours = schedule.Minimums.Hours
		}
		b.SizeTierKey = "hourly"
		b.DistanceTierKey = "local"
		b.LineHaul = hourly * hours
		return
	}

	weight := shipment.WeightLbs
	if weight < schedule.Mixed.LongDistance.MinWeightLbs {
		weight = schedule.Mixed.LongDistance.MinWeightLbs
	}
	b.SizeTierKey = "long_distance"
	b.DistanceTierKey = "long_distance"
	b.LineHaul = schedule.Mixed.LongDistance.BaseRatePerLb * weight
}

// laborCost bills max(crew, min_men) * max(hours, min_hours) * per_man_hour;
// the floors apply before the hourly rate is multiplied
func laborCost(rates models.LaborRates, crew, hours float64) float64 {
	if crew < rates.MinMen {
		crew = rates.MinMen
	}
	if hours < rates.MinHours {
		hours = rates.MinHours
	}
	return crew * hours * rates.PerManHour
}
