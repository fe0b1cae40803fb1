package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/movedocs/tariffworks/models"
)

func weightSchedule() models.RateSchedule {
	schedule, _ := Normalize(RawRateSubmission{
		"transportation_matrix": map[string]any{
			"w6000": map[string]any{"d1000": 0.75},
		},
		"loading": map[string]any{
			"per_man_hour": 40,
		},
		"unloading": map[string]any{
			"per_man_hour": 40,
		},
		"accessorial": map[string]any{
			"fuel_surcharge": 8.5,
			"stairs":         75,
			"shuttle":        250,
		},
		"specialty": map[string]any{
			"piano_upright": 150,
		},
		"minimums": map[string]any{
			"local":         500,
			"long_distance": 1500,
		},
	}, models.PricingMethodWeight)
	return schedule
}

func TestComputeSampleWeight(t *testing.T) {
	b := ComputeSample(weightSchedule(), Shipment{
		WeightLbs:     5000,
		DistanceMiles: 800,
		CrewSize:      3,
		LoadHours:     4,
		UnloadHours:   3,
	})

	assert.Equal(t, models.PricingMethodWeight, b.Method)
	assert.Equal(t, "w6000", b.SizeTierKey)
	assert.Equal(t, "d1000", b.DistanceTierKey)
	assert.False(t, b.IsLocal)
	assert.InDelta(t, 3750.00, b.LineHaul, 0.001)
	assert.InDelta(t, 318.75, b.FuelSurcharge, 0.001)
	assert.InDelta(t, 480.00, b.LoadingCost, 0.001)
	assert.InDelta(t, 360.00, b.UnloadingCost, 0.001)
	assert.Equal(t, 0.0, b.OverageCharge)
	assert.InDelta(t, 4908.75, b.Subtotal, 0.001)
	assert.False(t, b.FloorApplied)
	assert.Equal(t, b.Subtotal, b.Total)
}

func TestComputeSampleFuelAppliesToLineHaulOnly(t *testing.T) {
	b := ComputeSample(weightSchedule(), Shipment{
		WeightLbs:     5000,
		DistanceMiles: 800,
		CrewSize:      3,
		LoadHours:     4,
		UnloadHours:   3,
		Accessorials:  []string{"stairs", "shuttle"},
	})

	// surcharge unchanged by the added accessorials
	assert.InDelta(t, 318.75, b.FuelSurcharge, 0.001)
	assert.InDelta(t, 325.00, b.AccessorialTotal, 0.001)
}

func TestComputeSampleLaborFloors(t *testing.T) {
	schedule := weightSchedule()

	// one man for one hour still bills the 2-man 2-hour minimum
	b := ComputeSample(schedule, Shipment{
		WeightLbs:     1000,
		DistanceMiles: 20,
		CrewSize:      1,
		LoadHours:     1,
		UnloadHours:   1,
	})

	assert.InDelta(t, 160.00, b.LoadingCost, 0.001)
	assert.InDelta(t, 160.00, b.UnloadingCost, 0.001)
}

func TestComputeSampleMinimumFloor(t *testing.T) {
	tests := []struct {
		name          string
		distanceMiles float64
		expectedFloor float64
	}{
		{name: "local floor", distanceMiles: 20, expectedFloor: 500},
		{name: "long distance floor", distanceMiles: 800, expectedFloor: 1500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// no rates in the matrix for this lane, so the subtotal is labor only
			schedule := weightSchedule()
			b := ComputeSample(schedule, Shipment{
				WeightLbs:     1000,
				DistanceMiles: tt.distanceMiles,
				CrewSize:      2,
				LoadHours:     2,
				UnloadHours:   2,
			})

			assert.Equal(t, tt.expectedFloor, b.MinimumFloor)
			if b.Subtotal < tt.expectedFloor {
				assert.True(t, b.FloorApplied)
				assert.Equal(t, tt.expectedFloor, b.Total)
			}
		})
	}
}

func TestComputeSampleCubic(t *testing.T) {
	schedule, _ := Normalize(RawRateSubmission{
		"transportation_matrix": map[string]any{
			"v1000": map[string]any{"d500": 4.25},
		},
	}, models.PricingMethodCubic)

	b := ComputeSample(schedule, Shipment{
		CubicFeet:     850,
		DistanceMiles: 400,
	})

	assert.Equal(t, "v1000", b.SizeTierKey)
	assert.Equal(t, "d500", b.DistanceTierKey)
	assert.InDelta(t, 3612.50, b.LineHaul, 0.001)
}

func TestComputeSampleCubicClampsOversize(t *testing.T) {
	schedule, _ := Normalize(RawRateSubmission{
		"transportation_matrix": map[string]any{
			"v1500": map[string]any{"d1500": 3.00},
		},
	}, models.PricingMethodCubic)

	// both dimensions beyond the published brackets clamp to the last tier
	b := ComputeSample(schedule, Shipment{
		CubicFeet:     4000,
		DistanceMiles: 2600,
	})

	assert.Equal(t, "v1500", b.SizeTierKey)
	assert.Equal(t, "d1500", b.DistanceTierKey)
	assert.InDelta(t, 12000.00, b.LineHaul, 0.001)
}

func TestComputeSampleFlat(t *testing.T) {
	schedule, _ := Normalize(RawRateSubmission{
		"flat_matrix": map[string]any{
			"s2500": map[string]any{"d1000": 7800},
			"overage": map[string]any{
				"threshold_percent": 10,
				"rate_per_lb":       0.55,
			},
		},
	}, models.PricingMethodFlat)

	tests := []struct {
		name            string
		weightLbs       float64
		expectedOverage float64
	}{
		{
			name:            "within allowance",
			weightLbs:       8000,
			expectedOverage: 0,
		},
		{
			name:            "at allowance boundary",
			weightLbs:       8800, // assumed 8000 * 1.10
			expectedOverage: 0,
		},
		{
			name:      "over allowance bills full excess over assumption",
			weightLbs: 9500,
			// (9500 - 8000) * 0.55
			expectedOverage: 825.00,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := ComputeSample(schedule, Shipment{
				SquareFeet:    2200,
				WeightLbs:     tt.weightLbs,
				DistanceMiles: 900,
			})

			assert.Equal(t, "s2500", b.SizeTierKey)
			assert.Equal(t, "d1000", b.DistanceTierKey)
			assert.InDelta(t, 7800.00, b.LineHaul, 0.001)
			assert.InDelta(t, tt.expectedOverage, b.OverageCharge, 0.001)
		})
	}
}

func TestComputeSampleFlatLocal(t *testing.T) {
	schedule, _ := Normalize(RawRateSubmission{
		"flat_matrix": map[string]any{
			"s1000": map[string]any{"local": 2400},
		},
	}, models.PricingMethodFlat)

	b := ComputeSample(schedule, Shipment{
		SquareFeet:    900,
		WeightLbs:     3500,
		DistanceMiles: 25,
	})

	assert.True(t, b.IsLocal)
	assert.Equal(t, "local", b.DistanceTierKey)
	assert.InDelta(t, 2400.00, b.LineHaul, 0.001)
}

func TestComputeSampleMixed(t *testing.T) {
	schedule, _ := Normalize(RawRateSubmission{
		"mixed_rates": map[string]any{
			"local":         map[string]any{"two_men": 120, "three_men": 160},
			"long_distance": map[string]any{"base_rate": 0.62, "min_weight": 2000},
		},
		"minimums": map[string]any{
			"hours": 3,
		},
	}, models.PricingMethodMixed)

	tests := []struct {
		name             string
		shipment         Shipment
		expectedLineHaul float64
		expectedSizeKey  string
	}{
		{
			name: "local two man crew",
			shipment: Shipment{
				DistanceMiles: 15,
				CrewSize:      2,
				LoadHours:     3,
				UnloadHours:   2,
			},
			// 120 * 5 hours
			expectedLineHaul: 600.00,
			expectedSizeKey:  "hourly",
		},
		{
			name: "local three man crew uses higher hourly",
			shipment: Shipment{
				DistanceMiles: 15,
				CrewSize:      3,
				LoadHours:     2,
				UnloadHours:   2,
			},
			expectedLineHaul: 640.00,
			expectedSizeKey:  "hourly",
		},
		{
			name: "local below minimum hours bills the minimum",
			shipment: Shipment{
				DistanceMiles: 15,
				CrewSize:      2,
				LoadHours:     1,
				UnloadHours:   1,
			},
			// max(2, 3 minimum hours) * 120
			expectedLineHaul: 360.00,
			expectedSizeKey:  "hourly",
		},
		{
			name: "long distance per pound",
			shipment: Shipment{
				DistanceMiles: 600,
				WeightLbs:     5000,
			},
			expectedLineHaul: 3100.00,
			expectedSizeKey:  "long_distance",
		},
		{
			name: "long distance below minimum weight bills the minimum",
			shipment: Shipment{
				DistanceMiles: 600,
				WeightLbs:     1200,
			},
			// 2000 lbs minimum * 0.62
			expectedLineHaul: 1240.00,
			expectedSizeKey:  "long_distance",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := ComputeSample(schedule, tt.shipment)

			assert.Equal(t, tt.expectedSizeKey, b.SizeTierKey)
			assert.InDelta(t, tt.expectedLineHaul, b.LineHaul, 0.001)
		})
	}
}

func TestComputeSampleSpecialtyItems(t *testing.T) {
	b := ComputeSample(weightSchedule(), Shipment{
		WeightLbs:      5000,
		DistanceMiles:  800,
		SpecialtyItems: []string{"piano_upright"},
	})

	assert.InDelta(t, 150.00, b.SpecialtyTotal, 0.001)
}
