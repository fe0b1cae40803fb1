package businessflow

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/movedocs/tariffworks/app/dto"
	"github.com/movedocs/tariffworks/models"
	"github.com/movedocs/tariffworks/pricing"
	"github.com/movedocs/tariffworks/repository"
	"github.com/movedocs/tariffworks/utils"
)

// MethodChangeFlow handles the approval-gated switch of an order's pricing
// method. Carriers submit; staff approve or reject. Approval rewrites the
// order's method and schedule atomically and forces a document rebuild.
type MethodChangeFlow interface {
	Submit(ctx context.Context, req *dto.SubmitMethodChangeRequest, metadata *ClientMetadata) (*dto.SubmitMethodChangeResponse, error)
	Approve(ctx context.Context, req *dto.DecideMethodChangeRequest, metadata *ClientMetadata) (*dto.DecideMethodChangeResponse, error)
	Reject(ctx context.Context, req *dto.DecideMethodChangeRequest, metadata *ClientMetadata) (*dto.DecideMethodChangeResponse, error)
	ListPending(ctx context.Context, page, pageSize int) ([]dto.MethodChangeRequestDTO, error)
}

type MethodChangeFlowImpl struct {
	db           *gorm.DB
	orderRepo    repository.TariffOrderRepository
	requestRepo  repository.MethodChangeRequestRepository
	auditRepo    repository.AuditLogRepository
	documentFlow *DocumentFlowImpl
}

func NewMethodChangeFlow(
	db *gorm.DB,
	orderRepo repository.TariffOrderRepository,
	requestRepo repository.MethodChangeRequestRepository,
	auditRepo repository.AuditLogRepository,
	documentFlow *DocumentFlowImpl,
) MethodChangeFlow {
	return &MethodChangeFlowImpl{
		db:           db,
		orderRepo:    orderRepo,
		requestRepo:  requestRepo,
		auditRepo:    auditRepo,
		documentFlow: documentFlow,
	}
}

func (f *MethodChangeFlowImpl) Submit(ctx context.Context, req *dto.SubmitMethodChangeRequest, metadata *ClientMetadata) (*dto.SubmitMethodChangeResponse, error) {
	orderID, err := uuid.Parse(req.OrderUUID)
	if err != nil {
		return nil, NewBusinessError("INVALID_ORDER_UUID", "Invalid order UUID", err)
	}

	order, err := f.orderRepo.ByUUID(ctx, orderID)
	if err != nil {
		return nil, NewBusinessError("ORDER_FETCH_FAILED", "Failed to fetch tariff order", err)
	}
	if order == nil {
		return nil, NewBusinessError("ORDER_NOT_FOUND", "Tariff order not found", ErrOrderNotFound)
	}
	if order.CarrierID != req.CarrierID {
		return nil, NewBusinessError("ORDER_ACCESS_DENIED", "Tariff order access denied", ErrOrderAccessDenied)
	}
	if order.IsExpired() {
		return nil, NewBusinessError("ORDER_EXPIRED", "Tariff order has expired", ErrOrderExpired)
	}

	toMethod := models.PricingMethod(req.ToMethod)
	if !toMethod.Valid() {
		return nil, NewBusinessError("INVALID_PRICING_METHOD", "Invalid pricing method", ErrInvalidPricingMethod)
	}
	if toMethod == order.PricingMethod {
		return nil, NewBusinessError("METHOD_UNCHANGED", "Requested pricing method equals the current method", ErrMethodUnchanged)
	}

	pending, err := f.requestRepo.PendingByOrder(ctx, order.ID)
	if err != nil {
		return nil, NewBusinessError("METHOD_CHANGE_FETCH_FAILED", "Failed to check pending method changes", err)
	}
	if pending != nil {
		return nil, NewBusinessError("METHOD_CHANGE_PENDING", "A method change request is already pending for this order", ErrMethodChangePending)
	}

	var proposed json.RawMessage
	if len(req.ProposedRates) > 0 {
		proposed, err = json.Marshal(req.ProposedRates)
		if err != nil {
			return nil, NewBusinessError("PROPOSED_RATES_INVALID", "Failed to encode proposed rates", err)
		}
	}

	change := &models.PricingMethodChangeRequest{
		OrderID:       order.ID,
		CarrierID:     order.CarrierID,
		FromMethod:    order.PricingMethod,
		ToMethod:      toMethod,
		ProposedRates: proposed,
		Status:        models.MethodChangeStatusPending,
	}

	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		return f.requestRepo.Save(txCtx, change)
	})
	if err != nil {
		return nil, NewBusinessError("METHOD_CHANGE_SAVE_FAILED", "Failed to create method change request", err)
	}

	_ = saveAuditLog(ctx, f.auditRepo, &order.CarrierID, models.AuditActionMethodChangeSubmitted,
		fmt.Sprintf("Method change submitted for order %s: %s -> %s", order.UUID, change.FromMethod, change.ToMethod), true, nil, metadata)

	return &dto.SubmitMethodChangeResponse{
		Message:    "Method change request submitted",
		UUID:       change.UUID.String(),
		FromMethod: string(change.FromMethod),
		ToMethod:   string(change.ToMethod),
		Status:     string(change.Status),
		CreatedAt:  change.CreatedAt.Format(time.RFC3339),
	}, nil
}

func (f *MethodChangeFlowImpl) Approve(ctx context.Context, req *dto.DecideMethodChangeRequest, metadata *ClientMetadata) (*dto.DecideMethodChangeResponse, error) {
	change, err := f.pendingRequest(ctx, req.UUID)
	if err != nil {
		return nil, err
	}

	order, err := f.orderRepo.ByID(ctx, change.OrderID)
	if err != nil {
		return nil, NewBusinessError("ORDER_FETCH_FAILED", "Failed to fetch tariff order", err)
	}
	if order == nil {
		return nil, NewBusinessError("ORDER_NOT_FOUND", "Tariff order not found", ErrOrderNotFound)
	}

	// Normalize the proposed rates under the new method. An empty proposal
	// still yields a complete schedule of defaults and zeros.
	var raw pricing.RawRateSubmission
	if len(change.ProposedRates) > 0 {
		if err := json.Unmarshal(change.ProposedRates, &raw); err != nil {
			return nil, NewBusinessError("PROPOSED_RATES_INVALID", "Failed to decode proposed rates", err)
		}
	}
	schedule, warnings := pricing.Normalize(raw, change.ToMethod)

	now := utils.UTCNow()
	change.Status = models.MethodChangeStatusApproved
	change.DecisionNote = req.Note
	change.DecidedAt = &now

	order.PricingMethod = change.ToMethod
	order.Rates = schedule

	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		if err := f.requestRepo.Update(txCtx, change); err != nil {
			return err
		}
		return f.orderRepo.Update(txCtx, order)
	})
	if err != nil {
		return nil, NewBusinessError("METHOD_CHANGE_APPLY_FAILED", "Failed to apply method change", err)
	}

	_ = saveAuditLog(ctx, f.auditRepo, &order.CarrierID, models.AuditActionMethodChangeApproved,
		fmt.Sprintf("Method change approved for order %s: %s -> %s", order.UUID, change.FromMethod, change.ToMethod), true, nil, metadata)

	if ShouldRegenerate(false, true) {
		if err := f.documentFlow.Regenerate(ctx, order.ID, metadata); err != nil && IsRegenerationBusy(err) {
			return nil, err
		}
	}

	return &dto.DecideMethodChangeResponse{
		Message:   "Method change approved",
		UUID:      change.UUID.String(),
		Status:    string(change.Status),
		DecidedAt: now.Format(time.RFC3339),
		Warnings:  warningMessages(warnings),
	}, nil
}

func (f *MethodChangeFlowImpl) Reject(ctx context.Context, req *dto.DecideMethodChangeRequest, metadata *ClientMetadata) (*dto.DecideMethodChangeResponse, error) {
	change, err := f.pendingRequest(ctx, req.UUID)
	if err != nil {
		return nil, err
	}

	now := utils.UTCNow()
	change.Status = models.MethodChangeStatusRejected
	change.DecisionNote = req.Note
	change.DecidedAt = &now

	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		return f.requestRepo.Update(txCtx, change)
	})
	if err != nil {
		return nil, NewBusinessError("METHOD_CHANGE_UPDATE_FAILED", "Failed to reject method change", err)
	}

	_ = saveAuditLog(ctx, f.auditRepo, &change.CarrierID, models.AuditActionMethodChangeRejected,
		fmt.Sprintf("Method change rejected: %s", change.UUID), true, nil, metadata)

	// A rejection leaves the order untouched, so the existing document
	// stays current and no rebuild is queued.
	return &dto.DecideMethodChangeResponse{
		Message:   "Method change rejected",
		UUID:      change.UUID.String(),
		Status:    string(change.Status),
		DecidedAt: now.Format(time.RFC3339),
	}, nil
}

func (f *MethodChangeFlowImpl) ListPending(ctx context.Context, page, pageSize int) ([]dto.MethodChangeRequestDTO, error) {
	page, pageSize, err := validatePagination(page, pageSize)
	if err != nil {
		return nil, err
	}

	pending, err := f.requestRepo.ListPending(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("METHOD_CHANGE_LIST_FAILED", "Failed to list pending method changes", err)
	}

	out := make([]dto.MethodChangeRequestDTO, 0, len(pending))
	for _, change := range pending {
		out = append(out, ToMethodChangeRequestDTO(*change))
	}
	return out, nil
}

func (f *MethodChangeFlowImpl) pendingRequest(ctx context.Context, requestUUID string) (*models.PricingMethodChangeRequest, error) {
	id, err := uuid.Parse(requestUUID)
	if err != nil {
		return nil, NewBusinessError("INVALID_REQUEST_UUID", "Invalid method change request UUID", err)
	}

	change, err := f.requestRepo.ByUUID(ctx, id)
	if err != nil {
		return nil, NewBusinessError("METHOD_CHANGE_FETCH_FAILED", "Failed to fetch method change request", err)
	}
	if change == nil {
		return nil, NewBusinessError("METHOD_CHANGE_NOT_FOUND", "Method change request not found", ErrMethodChangeNotFound)
	}
	if change.IsDecided() {
		return nil, NewBusinessError("METHOD_CHANGE_DECIDED", "Method change request already decided", ErrMethodChangeAlreadyDecided)
	}
	return change, nil
}
