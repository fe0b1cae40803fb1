package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movedocs/tariffworks/models"
	"github.com/movedocs/tariffworks/utils"
)

func TestNormalizeEmptySubmissionIsComplete(t *testing.T) {
	tests := []struct {
		name       string
		method     models.PricingMethod
		sizeKeys   []string
		matrixRows int
	}{
		{name: "weight", method: models.PricingMethodWeight, sizeKeys: []string{"w1000", "w2000", "w4000", "w6000", "w8000"}, matrixRows: 5},
		{name: "cubic", method: models.PricingMethodCubic, sizeKeys: []string{"v300", "v600", "v1000", "v1500"}, matrixRows: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schedule, warnings := Normalize(RawRateSubmission{}, tt.method)

			assert.Empty(t, warnings)
			assert.Equal(t, tt.method, schedule.PricingMethod)
			require.Len(t, schedule.Transportation, tt.matrixRows)
			for _, sk := range tt.sizeKeys {
				row, ok := schedule.Transportation[sk]
				require.True(t, ok, "missing row %s", sk)
				require.Len(t, row, len(DistanceTiers))
				for _, d := range DistanceTiers {
					assert.Equal(t, 0.0, row[DistanceTierKey(d)])
				}
			}
		})
	}
}

func TestNormalizeFlatDefaults(t *testing.T) {
	schedule, warnings := Normalize(RawRateSubmission{}, models.PricingMethodFlat)

	assert.Empty(t, warnings)
	require.Len(t, schedule.Flat, len(SquareFootageTiers))
	for _, tier := range SquareFootageTiers {
		row, ok := schedule.Flat[SquareFootageTierKey(tier)]
		require.True(t, ok)
		require.Len(t, row, len(FlatDistanceKeys))
	}
	assert.Equal(t, utils.DefaultOverageThresholdPercent, schedule.Overage.ThresholdPercent)
	assert.Equal(t, utils.DefaultOverageRatePerLb, schedule.Overage.RatePerLb)
}

func TestNormalizeLaborAndMinimumDefaults(t *testing.T) {
	schedule, _ := Normalize(RawRateSubmission{}, models.PricingMethodWeight)

	assert.Equal(t, utils.DefaultMinLaborHours, schedule.Loading.MinHours)
	assert.Equal(t, utils.DefaultMinCrew, schedule.Loading.MinMen)
	assert.Equal(t, utils.DefaultMinLaborHours, schedule.Unloading.MinHours)
	assert.Equal(t, utils.DefaultMinCrew, schedule.Unloading.MinMen)
	assert.Equal(t, 0.0, schedule.Loading.PerManHour)
	assert.Equal(t, 0.0, schedule.Minimums.Local)
	assert.Equal(t, 0.0, schedule.Minimums.LongDistance)
	assert.Equal(t, 0.0, schedule.Accessorial.FuelSurchargePercent)
}

func TestNormalizeParsesSubmittedRates(t *testing.T) {
	raw := RawRateSubmission{
		"transportation_matrix": map[string]any{
			"w4000": map[string]any{"d500": 0.75},
		},
		"loading": map[string]any{
			"per_man_hour": "45.50",
			"min_hours":    3,
		},
		"minimums": map[string]any{
			"local": "$1,250.00",
		},
		"accessorial": map[string]any{
			"fuel_surcharge": 8.5,
			"stairs":         75,
		},
		"specialty": map[string]any{
			"piano_grand": 350,
		},
	}

	schedule, warnings := Normalize(raw, models.PricingMethodWeight)

	assert.Empty(t, warnings)
	assert.Equal(t, 0.75, schedule.Transportation["w4000"]["d500"])
	assert.Equal(t, 0.0, schedule.Transportation["w4000"]["d250"])
	assert.Equal(t, 45.50, schedule.Loading.PerManHour)
	assert.Equal(t, 3.0, schedule.Loading.MinHours)
	assert.Equal(t, 1250.0, schedule.Minimums.Local)
	assert.Equal(t, 8.5, schedule.Accessorial.FuelSurchargePercent)
	assert.Equal(t, 75.0, schedule.Accessorial.Stairs)
	assert.Equal(t, 350.0, schedule.Specialty.PianoGrand)
}

func TestNormalizeCoercesBadValues(t *testing.T) {
	tests := []struct {
		name   string
		raw    RawRateSubmission
		field  string
		reason string
		check  func(t *testing.T, s models.RateSchedule)
	}{
		{
			name: "non-numeric string becomes zero",
			raw: RawRateSubmission{
				"loading": map[string]any{"per_man_hour": "forty-five"},
			},
			field:  "loading.per_man_hour",
			reason: "not a number",
			check: func(t *testing.T, s models.RateSchedule) {
				assert.Equal(t, 0.0, s.Loading.PerManHour)
			},
		},
		{
			name: "negative rate becomes zero",
			raw: RawRateSubmission{
				"minimums": map[string]any{"long_distance": -500},
			},
			field:  "minimums.long_distance",
			reason: "negative rate",
			check: func(t *testing.T, s models.RateSchedule) {
				assert.Equal(t, 0.0, s.Minimums.LongDistance)
			},
		},
		{
			name: "fuel surcharge at or above 100 collapses to zero",
			raw: RawRateSubmission{
				"accessorial": map[string]any{"fuel_surcharge": 100},
			},
			field:  "accessorial.fuel_surcharge",
			reason: "surcharge percent must be below 100",
			check: func(t *testing.T, s models.RateSchedule) {
				assert.Equal(t, 0.0, s.Accessorial.FuelSurchargePercent)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schedule, warnings := Normalize(tt.raw, models.PricingMethodWeight)

			require.Len(t, warnings, 1)
			assert.Equal(t, tt.field, warnings[0].Field)
			assert.Equal(t, tt.reason, warnings[0].Reason)
			tt.check(t, schedule)
		})
	}
}

func TestNormalizeOnlyActiveMatrixPopulated(t *testing.T) {
	raw := RawRateSubmission{
		"transportation_matrix": map[string]any{
			"w4000": map[string]any{"d500": 0.75},
		},
		"flat_matrix": map[string]any{
			"s1500": map[string]any{"local": 3200},
		},
	}

	schedule, _ := Normalize(raw, models.PricingMethodFlat)

	// flat submission lands, transportation submission is ignored
	assert.Equal(t, 3200.0, schedule.Flat["s1500"]["local"])
	assert.Equal(t, 0.0, schedule.Transportation["w4000"]["d500"])
}

func TestNormalizeMixedRates(t *testing.T) {
	raw := RawRateSubmission{
		"mixed_rates": map[string]any{
			"local":         map[string]any{"two_men": 120, "three_men": 160},
			"long_distance": map[string]any{"base_rate": 0.62, "min_weight": 2000},
		},
	}

	schedule, warnings := Normalize(raw, models.PricingMethodMixed)

	assert.Empty(t, warnings)
	assert.Equal(t, 120.0, schedule.Mixed.Local.TwoMenHourly)
	assert.Equal(t, 160.0, schedule.Mixed.Local.ThreeMenHourly)
	assert.Equal(t, 0.62, schedule.Mixed.LongDistance.BaseRatePerLb)
	assert.Equal(t, 2000.0, schedule.Mixed.LongDistance.MinWeightLbs)
}

func TestCoerceNumber(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected float64
		ok       bool
	}{
		{name: "float64", input: 1.5, expected: 1.5, ok: true},
		{name: "int", input: 42, expected: 42, ok: true},
		{name: "plain string", input: "0.75", expected: 0.75, ok: true},
		{name: "dollar sign and commas", input: "$1,250.50", expected: 1250.50, ok: true},
		{name: "whitespace", input: "  12 ", expected: 12, ok: true},
		{name: "empty string", input: "", ok: false},
		{name: "word", input: "abc", ok: false},
		{name: "bool", input: true, ok: false},
		{name: "nil", input: nil, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := coerceNumber(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, f)
			}
		})
	}
}
