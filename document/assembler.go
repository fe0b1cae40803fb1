package document

import (
	"fmt"

	"github.com/movedocs/tariffworks/models"
	"github.com/movedocs/tariffworks/pricing"
	"github.com/movedocs/tariffworks/utils"
)

// Sample shipments rendered into the document so the published examples are
// always consistent with the underlying schedule. Fixed constants: the plan
// must be byte-for-byte reproducible for identical inputs.
var sampleShipmentsByMethod = map[models.PricingMethod][]pricing.Shipment{
	models.PricingMethodWeight: {
		{WeightLbs: 3500, DistanceMiles: 400, CrewSize: 3, LoadHours: 4, UnloadHours: 3},
		{WeightLbs: 7000, DistanceMiles: 1200, CrewSize: 4, LoadHours: 6, UnloadHours: 5},
	},
	models.PricingMethodCubic: {
		{CubicFeet: 500, WeightLbs: 3500, DistanceMiles: 400, CrewSize: 3, LoadHours: 4, UnloadHours: 3},
		{CubicFeet: 1200, WeightLbs: 8000, DistanceMiles: 1200, CrewSize: 4, LoadHours: 6, UnloadHours: 5},
	},
	models.PricingMethodFlat: {
		{SquareFeet: 1400, WeightLbs: 6200, DistanceMiles: 800, CrewSize: 3, LoadHours: 5, UnloadHours: 4},
		{SquareFeet: 2800, WeightLbs: 12500, DistanceMiles: 1400, CrewSize: 4, LoadHours: 8, UnloadHours: 6},
	},
	models.PricingMethodMixed: {
		{WeightLbs: 3000, DistanceMiles: 20, CrewSize: 2, LoadHours: 3, UnloadHours: 2},
		{WeightLbs: 2500, DistanceMiles: 15, CrewSize: 3, LoadHours: 4, UnloadHours: 3},
		{WeightLbs: 9000, DistanceMiles: 900, CrewSize: 4, LoadHours: 6, UnloadHours: 5},
	},
}

// BuildContentPlan produces the ordered content blocks for one tariff
// document: cover, fixed boilerplate sections, and exactly one
// rate-presentation section matching the schedule's pricing method.
// The function is pure — identical inputs yield identical blocks; the only
// dates in the plan are the order's stored effective/expiry dates.
func BuildContentPlan(profile models.CarrierProfile, schedule models.RateSchedule, order models.TariffOrder) []ContentBlock {
	blocks := make([]ContentBlock, 0, 48)

	blocks = append(blocks, coverBlocks(profile, order)...)

	replacer := carrierTokens(profile, order.ServiceTerritory)
	for _, section := range boilerplateSections {
		blocks = append(blocks, sectionHeading(section.Title))
		for _, body := range section.Body {
			blocks = append(blocks, paragraph(replacer.Replace(body)))
		}
	}

	blocks = append(blocks, rateSectionBlocks(schedule)...)
	blocks = append(blocks, laborSectionBlocks(schedule)...)
	blocks = append(blocks, accessorialSectionBlocks(schedule)...)
	blocks = append(blocks, sampleSectionBlocks(schedule)...)

	return blocks
}

func coverBlocks(profile models.CarrierProfile, order models.TariffOrder) []ContentBlock {
	return []ContentBlock{
		heading("Household Goods Tariff", 1),
		heading(profile.CompanyName, 2),
		keyValueBox([]KeyValue{
			{Key: "MC Number", Value: profile.MCNumber},
			{Key: "USDOT Number", Value: profile.USDOTNumber},
			{Key: "Address", Value: profile.Address},
			{Key: "Telephone", Value: profile.Phone},
			{Key: "Service Territory", Value: order.ServiceTerritory},
			{Key: "Pricing Method", Value: order.PricingMethod.GetDisplayName()},
			{Key: "Effective Date", Value: order.EnrolledDate.Format("January 2, 2006")},
			{Key: "Expiration Date", Value: order.ExpiryDate.Format("January 2, 2006")},
		}),
		paragraph("This tariff is issued in compliance with federal regulations governing the interstate transportation of household goods and is available for public inspection at the Carrier's place of business."),
	}
}

// rateSectionBlocks emits the single rate-presentation section for the
// active pricing method. Stale matrices from a prior method are never
// rendered.
func rateSectionBlocks(schedule models.RateSchedule) []ContentBlock {
	switch schedule.PricingMethod {
	case models.PricingMethodWeight:
		return weightRateBlocks(schedule)
	case models.PricingMethodCubic:
		return cubicRateBlocks(schedule)
	case models.PricingMethodFlat:
		return flatRateBlocks(schedule)
	case models.PricingMethodMixed:
		return mixedRateBlocks(schedule)
	default:
		return nil
	}
}

func weightRateBlocks(schedule models.RateSchedule) []ContentBlock {
	rows := make([][]string, 0, len(pricing.WeightTiers))
	for _, w := range pricing.WeightTiers {
		row := []string{fmt.Sprintf("Up to %s lbs", formatInt(w))}
		for _, d := range pricing.DistanceTiers {
			row = append(row, money(schedule.Transportation.Rate(pricing.WeightTierKey(w), pricing.DistanceTierKey(d))))
		}
		rows = append(rows, row)
	}

	return []ContentBlock{
		sectionHeading("Section 7 — Transportation Rates (Weight-Based)"),
		paragraph("Line-haul charges are computed by multiplying the actual shipment weight in pounds by the per-pound rate for the applicable weight and distance brackets below. A shipment is rated at the smallest published bracket equal to or exceeding its weight and distance; shipments exceeding the largest bracket are rated at that bracket."),
		table("Rate per pound by weight and distance", distanceColumns("Weight"), rows),
	}
}

func cubicRateBlocks(schedule models.RateSchedule) []ContentBlock {
	rows := make([][]string, 0, len(pricing.VolumeTiers))
	for _, v := range pricing.VolumeTiers {
		row := []string{fmt.Sprintf("Up to %s cu ft", formatInt(v))}
		for _, d := range pricing.DistanceTiers {
			row = append(row, money(schedule.Transportation.Rate(pricing.VolumeTierKey(v), pricing.DistanceTierKey(d))))
		}
		rows = append(rows, row)
	}

	return []ContentBlock{
		sectionHeading("Section 7 — Transportation Rates (Cubic-Foot)"),
		paragraph("Line-haul charges are computed by multiplying the measured shipment volume in cubic feet by the per-cubic-foot rate for the applicable volume and distance brackets below. A shipment is rated at the smallest published bracket equal to or exceeding its volume and distance; shipments exceeding the largest bracket are rated at that bracket."),
		table("Rate per cubic foot by volume and distance", distanceColumns("Volume"), rows),
	}
}

func flatRateBlocks(schedule models.RateSchedule) []ContentBlock {
	columns := []string{"Residence Size", "Local", "Up to 500 mi", "Up to 1,000 mi", "Up to 1,500 mi"}
	rows := make([][]string, 0, len(pricing.SquareFootageTiers))
	for _, s := range pricing.SquareFootageTiers {
		row := []string{fmt.Sprintf("Up to %s sq ft", formatInt(s))}
		for _, dk := range pricing.FlatDistanceKeys {
			row = append(row, money(schedule.Flat.Rate(pricing.SquareFootageTierKey(s), dk)))
		}
		rows = append(rows, row)
	}

	assumedRows := make([][]string, 0, len(pricing.SquareFootageTiers))
	for _, s := range pricing.SquareFootageTiers {
		assumedRows = append(assumedRows, []string{
			fmt.Sprintf("Up to %s sq ft", formatInt(s)),
			fmt.Sprintf("%s lbs", formatInt(int(pricing.AssumedWeightBySquareFootage[s]))),
		})
	}

	return []ContentBlock{
		sectionHeading("Section 7 — Flat Rates by Residence Size"),
		paragraph("Charges are a flat amount determined by the square footage of the origin residence and the move distance, per the table below. Each residence size carries an assumed shipment weight. When the actual weight exceeds the assumed weight by more than " +
			fmt.Sprintf("%.0f%%", schedule.Overage.ThresholdPercent) +
			", the excess weight above the assumption is billed at " + money(schedule.Overage.RatePerLb) + " per pound in addition to the flat amount."),
		table("Flat amount by residence size and distance", columns, rows),
		table("Assumed weight by residence size", []string{"Residence Size", "Assumed Weight"}, assumedRows),
	}
}

func mixedRateBlocks(schedule models.RateSchedule) []ContentBlock {
	localRows := [][]string{
		{"Two-man crew", money(schedule.Mixed.Local.TwoMenHourly) + " per hour"},
		{"Three-man crew", money(schedule.Mixed.Local.ThreeMenHourly) + " per hour"},
	}
	longRows := [][]string{
		{"Base rate", money(schedule.Mixed.LongDistance.BaseRatePerLb) + " per pound"},
		{"Minimum billed weight", fmt.Sprintf("%s lbs", formatInt(int(schedule.Mixed.LongDistance.MinWeightLbs)))},
	}

	return []ContentBlock{
		sectionHeading("Section 7 — Hourly and Long-Distance Rates"),
		paragraph(fmt.Sprintf("Moves of %.0f miles or less are billed hourly at the crew rate below, subject to a minimum of %.1f billable hours. Moves beyond %.0f miles are billed at the long-distance base rate applied to the actual shipment weight or the minimum billed weight, whichever is greater.",
			utils.LocalMoveDistanceMiles, schedule.Minimums.Hours, utils.LocalMoveDistanceMiles)),
		table("Local hourly rates", []string{"Crew", "Rate"}, localRows),
		table("Long-distance rates", []string{"Item", "Rate"}, longRows),
	}
}

func laborSectionBlocks(schedule models.RateSchedule) []ContentBlock {
	rows := [][]string{
		{"Loading", money(schedule.Loading.PerManHour), formatHours(schedule.Loading.MinHours), formatCrew(schedule.Loading.MinMen)},
		{"Unloading", money(schedule.Unloading.PerManHour), formatHours(schedule.Unloading.MinHours), formatCrew(schedule.Unloading.MinMen)},
	}

	minRows := [][]string{
		{"Local move minimum charge", money(schedule.Minimums.Local)},
		{"Long-distance minimum charge", money(schedule.Minimums.LongDistance)},
		{"Minimum billable hours", formatHours(schedule.Minimums.Hours)},
	}

	return []ContentBlock{
		sectionHeading("Section 8 — Labor Charges and Minimums"),
		paragraph("Loading and unloading labor is billed per man-hour subject to the minimum crew size and minimum hours below. Billable crew and hours are the greater of the actual and the minimum. Total charges on any shipment are never less than the applicable minimum charge."),
		table("Labor rates", []string{"Service", "Per Man-Hour", "Minimum Hours", "Minimum Crew"}, rows),
		table("Minimum charges", []string{"Item", "Amount"}, minRows),
	}
}

func accessorialSectionBlocks(schedule models.RateSchedule) []ContentBlock {
	rows := [][]string{
		{"Packing", money(schedule.Accessorial.Packing)},
		{"Storage", money(schedule.Accessorial.Storage)},
		{"Stair carry", money(schedule.Accessorial.Stairs)},
		{"Long carry", money(schedule.Accessorial.LongCarry)},
		{"Shuttle service", money(schedule.Accessorial.Shuttle)},
		{"Waiting time", money(schedule.Accessorial.Waiting)},
		{"Fuel surcharge", fmt.Sprintf("%.2f%% of line-haul", schedule.Accessorial.FuelSurchargePercent)},
	}

	specialtyRows := [][]string{
		{"Piano (upright)", money(schedule.Specialty.PianoUpright)},
		{"Piano (grand)", money(schedule.Specialty.PianoGrand)},
		{"Pool table", money(schedule.Specialty.PoolTable)},
		{"Safe", money(schedule.Specialty.Safe)},
		{"Gym equipment", money(schedule.Specialty.Gym)},
		{"Appliance servicing", money(schedule.Specialty.Appliance)},
	}

	return []ContentBlock{
		sectionHeading("Section 9 — Accessorial and Specialty Charges"),
		paragraph("The following charges apply when the corresponding service is requested or required. The fuel surcharge applies to line-haul transportation charges only and is never assessed against labor or accessorial charges."),
		table("Accessorial charges", []string{"Service", "Charge"}, rows),
		table("Specialty items", []string{"Item", "Charge"}, specialtyRows),
	}
}

// sampleSectionBlocks renders literal sample calculations produced by the
// matching calculator, so the printed examples cannot drift from the
// schedule they illustrate.
func sampleSectionBlocks(schedule models.RateSchedule) []ContentBlock {
	shipments := sampleShipmentsByMethod[schedule.PricingMethod]
	blocks := []ContentBlock{
		sectionHeading("Section 10 — Sample Calculations"),
		paragraph("The examples below are illustrative applications of the rates named in this tariff to representative shipments. Actual charges depend on the actual weight, distance, and services performed."),
	}

	for i, shipment := range shipments {
		b := pricing.ComputeSample(schedule, shipment)

		blocks = append(blocks, heading(fmt.Sprintf("Example %d: %s", i+1, describeShipment(schedule.PricingMethod, shipment)), 3))

		pairs := []KeyValue{
			{Key: "Line-haul", Value: money(b.LineHaul)},
		}
		if b.OverageCharge > 0 {
			pairs = append(pairs, KeyValue{Key: "Weight overage", Value: money(b.OverageCharge)})
		}
		pairs = append(pairs,
			KeyValue{Key: "Fuel surcharge", Value: money(b.FuelSurcharge)},
			KeyValue{Key: "Loading labor", Value: money(b.LoadingCost)},
			KeyValue{Key: "Unloading labor", Value: money(b.UnloadingCost)},
		)
		if b.AccessorialTotal > 0 {
			pairs = append(pairs, KeyValue{Key: "Accessorial services", Value: money(b.AccessorialTotal)})
		}
		if b.SpecialtyTotal > 0 {
			pairs = append(pairs, KeyValue{Key: "Specialty items", Value: money(b.SpecialtyTotal)})
		}
		if b.FloorApplied {
			pairs = append(pairs, KeyValue{Key: "Minimum charge applied", Value: money(b.MinimumFloor)})
		}
		pairs = append(pairs, KeyValue{Key: "Total", Value: money(b.Total)})

		blocks = append(blocks, keyValueBox(pairs))
	}

	return blocks
}

func describeShipment(method models.PricingMethod, s pricing.Shipment) string {
	switch method {
	case models.PricingMethodCubic:
		return fmt.Sprintf("%s cu ft, %s miles, crew of %.0f", formatInt(int(s.CubicFeet)), formatInt(int(s.DistanceMiles)), s.CrewSize)
	case models.PricingMethodFlat:
		return fmt.Sprintf("%s sq ft residence, %s lbs, %s miles", formatInt(int(s.SquareFeet)), formatInt(int(s.WeightLbs)), formatInt(int(s.DistanceMiles)))
	default:
		return fmt.Sprintf("%s lbs, %s miles, crew of %.0f", formatInt(int(s.WeightLbs)), formatInt(int(s.DistanceMiles)), s.CrewSize)
	}
}

func distanceColumns(sizeLabel string) []string {
	cols := []string{sizeLabel}
	for _, d := range pricing.DistanceTiers {
		cols = append(cols, fmt.Sprintf("Up to %s mi", formatInt(d)))
	}
	cols[len(cols)-1] = fmt.Sprintf("Over %s mi", formatInt(pricing.DistanceTiers[len(pricing.DistanceTiers)-2]))
	return cols
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func formatInt(v int) string {
	if v < 1000 {
		return fmt.Sprintf("%d", v)
	}
	return fmt.Sprintf("%d,%03d", v/1000, v%1000)
}

func formatHours(v float64) string {
	return fmt.Sprintf("%.1f hrs", v)
}

func formatCrew(v float64) string {
	return fmt.Sprintf("%.0f men", v)
}
