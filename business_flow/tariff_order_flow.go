package businessflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/movedocs/tariffworks/app/dto"
	"github.com/movedocs/tariffworks/models"
	"github.com/movedocs/tariffworks/pricing"
	"github.com/movedocs/tariffworks/repository"
	"github.com/movedocs/tariffworks/utils"
)

// TariffOrderFlow covers the lifecycle of a tariff order: purchase, in-place
// rate edits, renewal after expiry, and reads.
type TariffOrderFlow interface {
	PurchaseTariff(ctx context.Context, req *dto.PurchaseTariffRequest, metadata *ClientMetadata) (*dto.PurchaseTariffResponse, error)
	UpdateRates(ctx context.Context, req *dto.UpdateRatesRequest, metadata *ClientMetadata) (*dto.UpdateRatesResponse, error)
	RenewTariff(ctx context.Context, orderUUID string, carrierID uint, metadata *ClientMetadata) (*dto.RenewTariffResponse, error)
	GetOrder(ctx context.Context, orderUUID string, carrierID uint) (*dto.TariffOrderDTO, error)
	ListOrders(ctx context.Context, req *dto.ListTariffOrdersRequest) (*dto.ListTariffOrdersResponse, error)
	ExpireDue(ctx context.Context, batchSize int) (int, error)
}

type TariffOrderFlowImpl struct {
	db           *gorm.DB
	orderRepo    repository.TariffOrderRepository
	carrierRepo  repository.CarrierProfileRepository
	auditRepo    repository.AuditLogRepository
	documentFlow *DocumentFlowImpl
}

func NewTariffOrderFlow(
	db *gorm.DB,
	orderRepo repository.TariffOrderRepository,
	carrierRepo repository.CarrierProfileRepository,
	auditRepo repository.AuditLogRepository,
	documentFlow *DocumentFlowImpl,
) TariffOrderFlow {
	return &TariffOrderFlowImpl{
		db:           db,
		orderRepo:    orderRepo,
		carrierRepo:  carrierRepo,
		auditRepo:    auditRepo,
		documentFlow: documentFlow,
	}
}

// ShouldRegenerate reports whether an order's document must be rebuilt after
// a state change. Document rebuilds follow the persisted schedule, so only
// changes that touch it qualify.
func ShouldRegenerate(scheduleChanged, methodChangeApproved bool) bool {
	return scheduleChanged || methodChangeApproved
}

func (f *TariffOrderFlowImpl) PurchaseTariff(ctx context.Context, req *dto.PurchaseTariffRequest, metadata *ClientMetadata) (*dto.PurchaseTariffResponse, error) {
	carrier, err := f.carrierRepo.ByID(ctx, req.CarrierID)
	if err != nil {
		return nil, NewBusinessError("CARRIER_FETCH_FAILED", "Failed to fetch carrier profile", err)
	}
	if carrier == nil {
		return nil, NewBusinessError("CARRIER_NOT_FOUND", "Carrier profile not found", ErrCarrierNotFound)
	}
	if !utils.IsTrue(carrier.IsActive) {
		return nil, NewBusinessError("CARRIER_INACTIVE", "Carrier profile is inactive", ErrCarrierInactive)
	}

	method := models.PricingMethod(req.PricingMethod)
	if !method.Valid() {
		return nil, NewBusinessError("INVALID_PRICING_METHOD", "Invalid pricing method", ErrInvalidPricingMethod)
	}

	schedule, warnings := pricing.Normalize(pricing.RawRateSubmission(req.Rates), method)

	order := &models.TariffOrder{
		CarrierID:        carrier.ID,
		PricingMethod:    method,
		ServiceTerritory: req.ServiceTerritory,
		Accessorials:     models.StringList(req.Accessorials),
		Rates:            schedule,
		Status:           models.OrderStatusPending,
	}

	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		return f.orderRepo.Save(txCtx, order)
	})
	if err != nil {
		errMsg := err.Error()
		_ = saveAuditLog(ctx, f.auditRepo, &carrier.ID, models.AuditActionTariffPurchaseFailed,
			"Tariff purchase failed", false, &errMsg, metadata)
		return nil, NewBusinessError("ORDER_SAVE_FAILED", "Failed to create tariff order", err)
	}

	_ = saveAuditLog(ctx, f.auditRepo, &carrier.ID, models.AuditActionTariffPurchased,
		fmt.Sprintf("Tariff purchased: order %s, method %s", order.UUID, method), true, nil, metadata)
	f.auditCoercions(ctx, carrier.ID, order.UUID, warnings, metadata)

	if err := f.documentFlow.Regenerate(ctx, order.ID, metadata); err != nil {
		// The order stands; the document can be rebuilt on the next edit.
		if !IsRegenerationBusy(err) {
			errMsg := err.Error()
			_ = saveAuditLog(ctx, f.auditRepo, &carrier.ID, models.AuditActionDocumentGenerationFailed,
				fmt.Sprintf("Initial document generation failed for order %s", order.UUID), false, &errMsg, metadata)
		}
	} else if refreshed, rerr := f.orderRepo.ByID(ctx, order.ID); rerr == nil && refreshed != nil {
		order = refreshed
	}

	resp := &dto.PurchaseTariffResponse{
		Message:      "Tariff order created",
		UUID:         order.UUID.String(),
		Status:       string(order.Status),
		EnrolledDate: order.EnrolledDate.Format(time.RFC3339),
		ExpiryDate:   order.ExpiryDate.Format(time.RFC3339),
		Warnings:     warningMessages(warnings),
	}
	if order.DocumentURL != nil {
		resp.DocumentURL = *order.DocumentURL
	}
	return resp, nil
}

func (f *TariffOrderFlowImpl) UpdateRates(ctx context.Context, req *dto.UpdateRatesRequest, metadata *ClientMetadata) (*dto.UpdateRatesResponse, error) {
	order, err := f.ownedEditableOrder(ctx, req.UUID, req.CarrierID)
	if err != nil {
		return nil, err
	}

	// Method switches are approval-gated; an edit must keep the method.
	if models.PricingMethod(req.PricingMethod) != order.PricingMethod {
		return nil, NewBusinessError("METHOD_MISMATCH", "Pricing method does not match the order; method changes require approval", ErrMethodMismatch)
	}

	schedule, warnings := pricing.Normalize(pricing.RawRateSubmission(req.Rates), order.PricingMethod)
	order.Rates = schedule

	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		return f.orderRepo.Update(txCtx, order)
	})
	if err != nil {
		errMsg := err.Error()
		_ = saveAuditLog(ctx, f.auditRepo, &order.CarrierID, models.AuditActionTariffRateUpdateFailed,
			fmt.Sprintf("Rate update failed for order %s", order.UUID), false, &errMsg, metadata)
		return nil, NewBusinessError("ORDER_UPDATE_FAILED", "Failed to update rates", err)
	}

	_ = saveAuditLog(ctx, f.auditRepo, &order.CarrierID, models.AuditActionTariffRatesUpdated,
		fmt.Sprintf("Rates updated for order %s", order.UUID), true, nil, metadata)
	f.auditCoercions(ctx, order.CarrierID, order.UUID, warnings, metadata)

	if ShouldRegenerate(true, false) {
		if err := f.documentFlow.Regenerate(ctx, order.ID, metadata); err != nil {
			if IsRegenerationBusy(err) {
				return nil, err
			}
			// Failed render leaves the prior document current.
		} else if refreshed, rerr := f.orderRepo.ByID(ctx, order.ID); rerr == nil && refreshed != nil {
			order = refreshed
		}
	}

	resp := &dto.UpdateRatesResponse{
		Message:   "Rates updated",
		UUID:      order.UUID.String(),
		Status:    string(order.Status),
		UpdatedAt: utils.UTCNowRFC3339(),
		Warnings:  warningMessages(warnings),
	}
	if order.DocumentURL != nil {
		resp.DocumentURL = *order.DocumentURL
	}
	return resp, nil
}

// RenewTariff creates a fresh order for the next validity period, carrying
// the expired order's method, territory, accessorials, and schedule forward.
func (f *TariffOrderFlowImpl) RenewTariff(ctx context.Context, orderUUID string, carrierID uint, metadata *ClientMetadata) (*dto.RenewTariffResponse, error) {
	prior, err := f.ownedOrder(ctx, orderUUID, carrierID)
	if err != nil {
		return nil, err
	}
	if !prior.IsExpired() {
		return nil, NewBusinessError("ORDER_NOT_EXPIRED", "Tariff order is not yet due for renewal", ErrOrderNotExpired)
	}

	renewed := &models.TariffOrder{
		CarrierID:        prior.CarrierID,
		PricingMethod:    prior.PricingMethod,
		ServiceTerritory: prior.ServiceTerritory,
		Accessorials:     prior.Accessorials,
		Rates:            prior.Rates,
		Status:           models.OrderStatusPending,
	}

	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		if err := f.orderRepo.Save(txCtx, renewed); err != nil {
			return err
		}
		if prior.Status != models.OrderStatusExpired {
			return f.orderRepo.MarkExpired(txCtx, prior.ID)
		}
		return nil
	})
	if err != nil {
		return nil, NewBusinessError("ORDER_RENEW_FAILED", "Failed to renew tariff order", err)
	}

	_ = saveAuditLog(ctx, f.auditRepo, &carrierID, models.AuditActionTariffRenewed,
		fmt.Sprintf("Tariff renewed: %s -> %s", prior.UUID, renewed.UUID), true, nil, metadata)

	if err := f.documentFlow.Regenerate(ctx, renewed.ID, metadata); err == nil {
		if refreshed, rerr := f.orderRepo.ByID(ctx, renewed.ID); rerr == nil && refreshed != nil {
			renewed = refreshed
		}
	}

	resp := &dto.RenewTariffResponse{
		Message:      "Tariff renewed",
		UUID:         renewed.UUID.String(),
		PriorUUID:    prior.UUID.String(),
		EnrolledDate: renewed.EnrolledDate.Format(time.RFC3339),
		ExpiryDate:   renewed.ExpiryDate.Format(time.RFC3339),
	}
	if renewed.DocumentURL != nil {
		resp.DocumentURL = *renewed.DocumentURL
	}
	return resp, nil
}

func (f *TariffOrderFlowImpl) GetOrder(ctx context.Context, orderUUID string, carrierID uint) (*dto.TariffOrderDTO, error) {
	order, err := f.ownedOrder(ctx, orderUUID, carrierID)
	if err != nil {
		return nil, err
	}
	out := ToTariffOrderDTO(*order)
	return &out, nil
}

func (f *TariffOrderFlowImpl) ListOrders(ctx context.Context, req *dto.ListTariffOrdersRequest) (*dto.ListTariffOrdersResponse, error) {
	page, pageSize, err := validatePagination(req.Page, req.PageSize)
	if err != nil {
		return nil, err
	}

	orders, err := f.orderRepo.ListByCarrier(ctx, req.CarrierID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("ORDER_LIST_FAILED", "Failed to list tariff orders", err)
	}

	out := make([]dto.TariffOrderDTO, 0, len(orders))
	for _, order := range orders {
		out = append(out, ToTariffOrderDTO(*order))
	}
	return &dto.ListTariffOrdersResponse{
		Message:  "Tariff orders retrieved",
		Orders:   out,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// ExpireDue moves orders whose validity period has lapsed to expired status.
// Documents stay downloadable for expired orders; only editing is closed off.
// Returns the number of orders expired in this pass.
func (f *TariffOrderFlowImpl) ExpireDue(ctx context.Context, batchSize int) (int, error) {
	due, err := f.orderRepo.ListExpiredActive(ctx, batchSize)
	if err != nil {
		return 0, NewBusinessError("ORDER_EXPIRY_SCAN_FAILED", "Failed to scan for expired tariff orders", err)
	}

	expired := 0
	for _, order := range due {
		err := repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
			return f.orderRepo.MarkExpired(txCtx, order.ID)
		})
		if err != nil {
			errMsg := err.Error()
			_ = saveAuditLog(ctx, f.auditRepo, &order.CarrierID, models.AuditActionTariffExpired,
				fmt.Sprintf("Failed to expire order %s", order.UUID), false, &errMsg, nil)
			continue
		}
		expired++
		_ = saveAuditLog(ctx, f.auditRepo, &order.CarrierID, models.AuditActionTariffExpired,
			fmt.Sprintf("Tariff order %s expired (validity ended %s)", order.UUID, order.ExpiryDate.Format(time.RFC3339)), true, nil, nil)
	}
	return expired, nil
}

func (f *TariffOrderFlowImpl) ownedOrder(ctx context.Context, orderUUID string, carrierID uint) (*models.TariffOrder, error) {
	id, err := uuid.Parse(orderUUID)
	if err != nil {
		return nil, NewBusinessError("INVALID_ORDER_UUID", "Invalid order UUID", err)
	}

	order, err := f.orderRepo.ByUUID(ctx, id)
	if err != nil {
		return nil, NewBusinessError("ORDER_FETCH_FAILED", "Failed to fetch tariff order", err)
	}
	if order == nil {
		return nil, NewBusinessError("ORDER_NOT_FOUND", "Tariff order not found", ErrOrderNotFound)
	}
	if order.CarrierID != carrierID {
		return nil, NewBusinessError("ORDER_ACCESS_DENIED", "Tariff order access denied", ErrOrderAccessDenied)
	}
	return order, nil
}

func (f *TariffOrderFlowImpl) ownedEditableOrder(ctx context.Context, orderUUID string, carrierID uint) (*models.TariffOrder, error) {
	order, err := f.ownedOrder(ctx, orderUUID, carrierID)
	if err != nil {
		return nil, err
	}
	if order.IsExpired() {
		return nil, NewBusinessError("ORDER_EXPIRED", "Tariff order has expired", ErrOrderExpired)
	}
	if !order.IsEditable() {
		return nil, NewBusinessError("ORDER_NOT_EDITABLE", "Tariff order cannot be edited in current status", ErrOrderNotEditable)
	}
	return order, nil
}

func (f *TariffOrderFlowImpl) auditCoercions(ctx context.Context, carrierID uint, orderUUID uuid.UUID, warnings []pricing.ValidationWarning, metadata *ClientMetadata) {
	if len(warnings) == 0 {
		return
	}
	description := fmt.Sprintf("Coerced %d rate field(s) to zero for order %s: %s",
		len(warnings), orderUUID, strings.Join(warningMessages(warnings), "; "))
	_ = saveAuditLog(ctx, f.auditRepo, &carrierID, models.AuditActionTariffRatesCoerced, description, true, nil, metadata)
}

func warningMessages(warnings []pricing.ValidationWarning) []string {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]string, 0, len(warnings))
	for _, w := range warnings {
		out = append(out, fmt.Sprintf("%s: %s (got %q)", w.Field, w.Reason, w.Raw))
	}
	return out
}
