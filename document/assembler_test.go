package document

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movedocs/tariffworks/models"
	"github.com/movedocs/tariffworks/pricing"
)

func testCarrier() models.CarrierProfile {
	return models.CarrierProfile{
		CompanyName: "Acme Van Lines Inc",
		MCNumber:    "MC-123456",
		USDOTNumber: "7654321",
		Address:     "100 Main St, Springfield, IL 62701",
		Phone:       "2175551234",
		Email:       "dispatch@acmevanlines.example",
	}
}

func testOrder(method models.PricingMethod, rates models.RateSchedule) models.TariffOrder {
	enrolled := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	return models.TariffOrder{
		PricingMethod:    method,
		ServiceTerritory: "48 contiguous states",
		Rates:            rates,
		EnrolledDate:     enrolled,
		ExpiryDate:       enrolled.AddDate(1, 0, 0),
	}
}

func planText(blocks []ContentBlock) string {
	var sb strings.Builder
	for _, b := range blocks {
		sb.WriteString(b.Text)
		sb.WriteString("\n")
		if b.Table != nil {
			sb.WriteString(b.Table.Caption)
			sb.WriteString("\n")
		}
		for _, kv := range b.KeyValues {
			sb.WriteString(kv.Key + ": " + kv.Value + "\n")
		}
	}
	return sb.String()
}

func TestBuildContentPlanIsDeterministic(t *testing.T) {
	rates, _ := pricing.Normalize(pricing.RawRateSubmission{
		"transportation_matrix": map[string]any{
			"w4000": map[string]any{"d500": 0.75},
		},
		"accessorial": map[string]any{"fuel_surcharge": 8.5},
	}, models.PricingMethodWeight)
	carrier := testCarrier()
	order := testOrder(models.PricingMethodWeight, rates)

	first := BuildContentPlan(carrier, rates, order)
	second := BuildContentPlan(carrier, rates, order)

	require.Equal(t, len(first), len(second))
	assert.Equal(t, first, second)
}

func TestBuildContentPlanExactlyOneRateSection(t *testing.T) {
	rateSectionTitles := []string{
		"Section 7 — Transportation Rates (Weight-Based)",
		"Section 7 — Transportation Rates (Cubic-Foot)",
		"Section 7 — Flat Rates by Residence Size",
		"Section 7 — Hourly and Long-Distance Rates",
	}
	expectedByMethod := map[models.PricingMethod]string{
		models.PricingMethodWeight: rateSectionTitles[0],
		models.PricingMethodCubic:  rateSectionTitles[1],
		models.PricingMethodFlat:   rateSectionTitles[2],
		models.PricingMethodMixed:  rateSectionTitles[3],
	}

	for method, expected := range expectedByMethod {
		t.Run(string(method), func(t *testing.T) {
			// a schedule carrying stale data for every other method; only the
			// active method's section may render
			rates, _ := pricing.Normalize(pricing.RawRateSubmission{
				"transportation_matrix": map[string]any{
					"w4000": map[string]any{"d500": 0.75},
					"v600":  map[string]any{"d500": 4.25},
				},
				"flat_matrix": map[string]any{
					"s1500": map[string]any{"local": 3200},
				},
				"mixed_rates": map[string]any{
					"local": map[string]any{"two_men": 120},
				},
			}, method)

			blocks := BuildContentPlan(testCarrier(), rates, testOrder(method, rates))

			found := map[string]int{}
			for _, b := range blocks {
				if b.Type == BlockHeading {
					for _, title := range rateSectionTitles {
						if b.Text == title {
							found[title]++
						}
					}
				}
			}

			require.Len(t, found, 1, "exactly one rate section expected, got %v", found)
			assert.Equal(t, 1, found[expected])
		})
	}
}

func TestBuildContentPlanCarrierTokens(t *testing.T) {
	rates, _ := pricing.Normalize(pricing.RawRateSubmission{}, models.PricingMethodWeight)
	carrier := testCarrier()
	order := testOrder(models.PricingMethodWeight, rates)

	text := planText(BuildContentPlan(carrier, rates, order))

	assert.Contains(t, text, carrier.CompanyName)
	assert.Contains(t, text, carrier.MCNumber)
	assert.Contains(t, text, carrier.USDOTNumber)
	assert.Contains(t, text, order.ServiceTerritory)
	assert.NotContains(t, text, "{{COMPANY}}")
	assert.NotContains(t, text, "{{MC}}")
	assert.NotContains(t, text, "{{USDOT}}")
	assert.NotContains(t, text, "{{TERRITORY}}")
}

func TestBuildContentPlanCoverDates(t *testing.T) {
	rates, _ := pricing.Normalize(pricing.RawRateSubmission{}, models.PricingMethodWeight)
	order := testOrder(models.PricingMethodWeight, rates)

	text := planText(BuildContentPlan(testCarrier(), rates, order))

	assert.Contains(t, text, "March 15, 2026")
	assert.Contains(t, text, "March 15, 2027")
}

func TestBuildContentPlanStartsWithCover(t *testing.T) {
	rates, _ := pricing.Normalize(pricing.RawRateSubmission{}, models.PricingMethodCubic)
	blocks := BuildContentPlan(testCarrier(), rates, testOrder(models.PricingMethodCubic, rates))

	require.NotEmpty(t, blocks)
	assert.Equal(t, BlockHeading, blocks[0].Type)
	assert.Equal(t, "Household Goods Tariff", blocks[0].Text)
	assert.Equal(t, 1, blocks[0].Level)
	assert.False(t, blocks[0].PageBreakBefore)
}

func TestBuildContentPlanSampleTotalsMatchCalculator(t *testing.T) {
	rates, _ := pricing.Normalize(pricing.RawRateSubmission{
		"transportation_matrix": map[string]any{
			"w4000": map[string]any{"d500": 0.75},
			"w8000": map[string]any{"d1500": 0.60},
		},
		"loading":     map[string]any{"per_man_hour": 40},
		"unloading":   map[string]any{"per_man_hour": 40},
		"accessorial": map[string]any{"fuel_surcharge": 8.5},
	}, models.PricingMethodWeight)

	blocks := BuildContentPlan(testCarrier(), rates, testOrder(models.PricingMethodWeight, rates))
	text := planText(blocks)

	for _, shipment := range sampleShipmentsByMethod[models.PricingMethodWeight] {
		b := pricing.ComputeSample(rates, shipment)
		assert.Contains(t, text, "Total: "+money(b.Total))
	}
}

func TestBuildContentPlanSectionPageBreaks(t *testing.T) {
	rates, _ := pricing.Normalize(pricing.RawRateSubmission{}, models.PricingMethodFlat)
	blocks := BuildContentPlan(testCarrier(), rates, testOrder(models.PricingMethodFlat, rates))

	breaks := 0
	for _, b := range blocks {
		if b.PageBreakBefore {
			assert.Equal(t, BlockHeading, b.Type)
			breaks++
		}
	}
	// six boilerplate sections plus rates, labor, accessorial, and samples
	assert.Equal(t, 10, breaks)
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "$0.00", money(0))
	assert.Equal(t, "$1250.50", money(1250.5))
	assert.Equal(t, "750", formatInt(750))
	assert.Equal(t, "1,000", formatInt(1000))
	assert.Equal(t, "12,500", formatInt(12500))
	assert.Equal(t, "2.0 hrs", formatHours(2))
	assert.Equal(t, "3 men", formatCrew(3))
}
