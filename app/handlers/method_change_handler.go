package handlers

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/movedocs/tariffworks/app/dto"
	businessflow "github.com/movedocs/tariffworks/business_flow"
	"github.com/movedocs/tariffworks/utils"
)

// MethodChangeHandlerInterface defines the contract for method change handlers
type MethodChangeHandlerInterface interface {
	SubmitMethodChange(c fiber.Ctx) error
	ApproveMethodChange(c fiber.Ctx) error
	RejectMethodChange(c fiber.Ctx) error
	ListPendingMethodChanges(c fiber.Ctx) error
}

// MethodChangeHandler handles pricing method change HTTP requests
type MethodChangeHandler struct {
	changeFlow businessflow.MethodChangeFlow
	validator  *validator.Validate
}

// NewMethodChangeHandler creates a new method change handler
func NewMethodChangeHandler(changeFlow businessflow.MethodChangeFlow) *MethodChangeHandler {
	return &MethodChangeHandler{
		changeFlow: changeFlow,
		validator:  validator.New(),
	}
}

func (h *MethodChangeHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *MethodChangeHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// SubmitMethodChange handles a carrier's request to switch pricing methods
func (h *MethodChangeHandler) SubmitMethodChange(c fiber.Ctx) error {
	orderUUID := c.Params("uuid")
	if orderUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Order UUID is required", "MISSING_ORDER_UUID", nil)
	}

	var req dto.SubmitMethodChangeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.OrderUUID = orderUUID

	carrierID, ok := c.Locals("carrier_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Carrier ID not found in context", "MISSING_CARRIER_ID", nil)
	}
	req.CarrierID = carrierID

	// Validate request
	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.changeFlow.Submit(h.createRequestContext(c, "/api/v1/tariffs/"+orderUUID+"/method-change"), &req, metadata)
	if err != nil {
		if businessflow.IsOrderNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Tariff order not found", "ORDER_NOT_FOUND", nil)
		}
		if businessflow.IsOrderAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Access denied: order belongs to another carrier", "ORDER_ACCESS_DENIED", nil)
		}
		if businessflow.IsOrderExpired(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Tariff order has expired", "ORDER_EXPIRED", nil)
		}
		if businessflow.IsMethodUnchanged(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Requested method equals the current method", "METHOD_UNCHANGED", nil)
		}
		if businessflow.IsMethodChangePending(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "A method change request is already pending", "METHOD_CHANGE_PENDING", nil)
		}
		if businessflow.IsInvalidPricingMethod(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid pricing method", "INVALID_PRICING_METHOD", nil)
		}

		log.Println("Method change submission failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Method change submission failed", "METHOD_CHANGE_SUBMIT_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Method change request submitted successfully", result)
}

// ApproveMethodChange applies a pending method change to its order
func (h *MethodChangeHandler) ApproveMethodChange(c fiber.Ctx) error {
	return h.decide(c, true)
}

// RejectMethodChange declines a pending method change, leaving the order untouched
func (h *MethodChangeHandler) RejectMethodChange(c fiber.Ctx) error {
	return h.decide(c, false)
}

func (h *MethodChangeHandler) decide(c fiber.Ctx, approve bool) error {
	requestUUID := c.Params("uuid")
	if requestUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Request UUID is required", "MISSING_REQUEST_UUID", nil)
	}

	var req dto.DecideMethodChangeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.UUID = requestUUID

	// Validate request
	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	endpoint := "/api/v1/method-changes/" + requestUUID + "/reject"
	decide := h.changeFlow.Reject
	if approve {
		endpoint = "/api/v1/method-changes/" + requestUUID + "/approve"
		decide = h.changeFlow.Approve
	}

	result, err := decide(h.createRequestContext(c, endpoint), &req, metadata)
	if err != nil {
		if businessflow.IsMethodChangeNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Method change request not found", "METHOD_CHANGE_NOT_FOUND", nil)
		}
		if businessflow.IsMethodChangeAlreadyDecided(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Method change request already decided", "METHOD_CHANGE_DECIDED", nil)
		}
		if businessflow.IsRegenerationBusy(err) {
			return h.ErrorResponse(c, fiber.StatusTooManyRequests, "Document regeneration queue is full, retry later", "REGENERATION_BUSY", nil)
		}

		log.Println("Method change decision failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Method change decision failed", "METHOD_CHANGE_DECISION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Method change decision recorded", result)
}

// ListPendingMethodChanges returns undecided requests for staff review
func (h *MethodChangeHandler) ListPendingMethodChanges(c fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "20"))

	result, err := h.changeFlow.ListPending(h.createRequestContext(c, "/api/v1/method-changes"), page, pageSize)
	if err != nil {
		if businessflow.IsInvalidPage(err) || businessflow.IsInvalidPageSize(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid pagination parameters", "INVALID_PAGINATION", nil)
		}

		log.Println("Method change list failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Method change list failed", "METHOD_CHANGE_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Pending method changes retrieved successfully", fiber.Map{
		"requests": result,
	})
}

// createRequestContext creates a context with timeout and request-scoped values
func (h *MethodChangeHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)

	return ctx
}
