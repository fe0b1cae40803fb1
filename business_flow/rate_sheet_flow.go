package businessflow

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/movedocs/tariffworks/models"
	"github.com/movedocs/tariffworks/pricing"
	"github.com/movedocs/tariffworks/repository"
)

// RateSheetFlow exports an order's rate schedule as an Excel workbook so
// carriers can review their filed rates outside the generated document.
type RateSheetFlow interface {
	ExportRateSheet(ctx context.Context, orderUUID string, carrierID uint, metadata *ClientMetadata) (string, []byte, error)
}

type RateSheetFlowImpl struct {
	orderRepo   repository.TariffOrderRepository
	carrierRepo repository.CarrierProfileRepository
	auditRepo   repository.AuditLogRepository
}

func NewRateSheetFlow(
	orderRepo repository.TariffOrderRepository,
	carrierRepo repository.CarrierProfileRepository,
	auditRepo repository.AuditLogRepository,
) RateSheetFlow {
	return &RateSheetFlowImpl{
		orderRepo:   orderRepo,
		carrierRepo: carrierRepo,
		auditRepo:   auditRepo,
	}
}

func (f *RateSheetFlowImpl) ExportRateSheet(ctx context.Context, orderUUID string, carrierID uint, metadata *ClientMetadata) (string, []byte, error) {
	id, err := uuid.Parse(orderUUID)
	if err != nil {
		return "", nil, NewBusinessError("INVALID_ORDER_UUID", "Invalid order UUID", err)
	}

	order, err := f.orderRepo.ByUUID(ctx, id)
	if err != nil {
		return "", nil, NewBusinessError("ORDER_FETCH_FAILED", "Failed to fetch tariff order", err)
	}
	if order == nil {
		return "", nil, NewBusinessError("ORDER_NOT_FOUND", "Tariff order not found", ErrOrderNotFound)
	}
	if order.CarrierID != carrierID {
		return "", nil, NewBusinessError("ORDER_ACCESS_DENIED", "Tariff order access denied", ErrOrderAccessDenied)
	}

	carrier, err := f.carrierRepo.ByID(ctx, order.CarrierID)
	if err != nil {
		return "", nil, NewBusinessError("CARRIER_FETCH_FAILED", "Failed to fetch carrier profile", err)
	}
	if carrier == nil {
		return "", nil, NewBusinessError("CARRIER_NOT_FOUND", "Carrier profile not found", ErrCarrierNotFound)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	schedule := order.Rates
	xl.SetSheetName(xl.GetSheetName(0), "Rates")

	row := 1
	setRow := func(values []any) {
		cellRef, _ := excelize.CoordinatesToCellName(1, row)
		_ = xl.SetSheetRow("Rates", cellRef, &values)
		row++
	}

	setRow([]any{"Carrier", carrier.CompanyName})
	setRow([]any{"MC Number", carrier.MCNumber})
	setRow([]any{"Pricing Method", order.PricingMethod.GetDisplayName()})
	row++

	switch order.PricingMethod {
	case models.PricingMethodWeight:
		writeMatrixRows(setRow, "Weight (lbs)", schedule.Transportation, weightSizeKeys(), matrixDistanceKeys())
	case models.PricingMethodCubic:
		writeMatrixRows(setRow, "Volume (cu ft)", schedule.Transportation, volumeSizeKeys(), matrixDistanceKeys())
	case models.PricingMethodFlat:
		writeMatrixRows(setRow, "Home Size (sq ft)", schedule.Flat, squareFootageSizeKeys(), pricing.FlatDistanceKeys)
		setRow([]any{"Overage Threshold (%)", schedule.Overage.ThresholdPercent})
		setRow([]any{"Overage Rate ($/lb)", schedule.Overage.RatePerLb})
	case models.PricingMethodMixed:
		setRow([]any{"Local Hourly (2 men)", schedule.Mixed.Local.TwoMenHourly})
		setRow([]any{"Local Hourly (3 men)", schedule.Mixed.Local.ThreeMenHourly})
		setRow([]any{"Long-Distance Rate ($/lb)", schedule.Mixed.LongDistance.BaseRatePerLb})
		setRow([]any{"Long-Distance Minimum Weight (lbs)", schedule.Mixed.LongDistance.MinWeightLbs})
	}
	row++

	setRow([]any{"Loading ($/man-hour)", schedule.Loading.PerManHour})
	setRow([]any{"Unloading ($/man-hour)", schedule.Unloading.PerManHour})
	setRow([]any{"Minimum Charge (Local)", schedule.Minimums.Local})
	setRow([]any{"Minimum Charge (Long-Distance)", schedule.Minimums.LongDistance})
	setRow([]any{"Fuel Surcharge (%)", schedule.Accessorial.FuelSurchargePercent})
	row++

	setRow([]any{"Accessorial", "Rate"})
	for _, name := range []string{"packing", "storage", "stairs", "long_carry", "shuttle", "waiting"} {
		setRow([]any{name, schedule.AccessorialRate(name)})
	}
	row++

	setRow([]any{"Specialty Item", "Rate"})
	for _, name := range []string{"piano_upright", "piano_grand", "pool_table", "safe", "gym", "appliance"} {
		setRow([]any{name, schedule.SpecialtyRate(name)})
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write rate sheet", err)
	}

	_ = saveAuditLog(ctx, f.auditRepo, &order.CarrierID, models.AuditActionRateSheetExported,
		fmt.Sprintf("Rate sheet exported for order %s", order.UUID), true, nil, metadata)

	filename := fmt.Sprintf("RateSheet-%s.xlsx", SanitizeMCNumber(carrier.MCNumber))
	return filename, buf.Bytes(), nil
}

func writeMatrixRows(setRow func([]any), sizeLabel string, matrix models.RateMatrix, sizeKeys, distanceKeys []string) {
	header := make([]any, 0, len(distanceKeys)+1)
	header = append(header, sizeLabel)
	for _, dk := range distanceKeys {
		header = append(header, distanceHeader(dk))
	}
	setRow(header)

	for _, sk := range sizeKeys {
		record := make([]any, 0, len(distanceKeys)+1)
		record = append(record, sizeHeader(sk))
		for _, dk := range distanceKeys {
			record = append(record, matrix.Rate(sk, dk))
		}
		setRow(record)
	}
}

func weightSizeKeys() []string {
	out := make([]string, 0, len(pricing.WeightTiers))
	for _, t := range pricing.WeightTiers {
		out = append(out, pricing.WeightTierKey(t))
	}
	return out
}

func volumeSizeKeys() []string {
	out := make([]string, 0, len(pricing.VolumeTiers))
	for _, t := range pricing.VolumeTiers {
		out = append(out, pricing.VolumeTierKey(t))
	}
	return out
}

func squareFootageSizeKeys() []string {
	out := make([]string, 0, len(pricing.SquareFootageTiers))
	for _, t := range pricing.SquareFootageTiers {
		out = append(out, pricing.SquareFootageTierKey(t))
	}
	return out
}

func matrixDistanceKeys() []string {
	out := make([]string, 0, len(pricing.DistanceTiers))
	for _, t := range pricing.DistanceTiers {
		out = append(out, pricing.DistanceTierKey(t))
	}
	return out
}

func distanceHeader(key string) string {
	if key == "local" {
		return "Local"
	}
	return "Up to " + key[1:] + " miles"
}

func sizeHeader(key string) string {
	if len(key) < 2 {
		return key
	}
	n, err := strconv.Atoi(key[1:])
	if err != nil {
		return key
	}
	return strconv.Itoa(n)
}
