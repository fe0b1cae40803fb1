// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
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

// TariffHandlerInterface defines the contract for tariff order handlers
type TariffHandlerInterface interface {
	PurchaseTariff(c fiber.Ctx) error
	UpdateRates(c fiber.Ctx) error
	RenewTariff(c fiber.Ctx) error
	GetTariff(c fiber.Ctx) error
	ListTariffs(c fiber.Ctx) error
}

// TariffHandler handles tariff order HTTP requests
type TariffHandler struct {
	orderFlow businessflow.TariffOrderFlow
	validator *validator.Validate
}

// NewTariffHandler creates a new tariff order handler
func NewTariffHandler(orderFlow businessflow.TariffOrderFlow) *TariffHandler {
	return &TariffHandler{
		orderFlow: orderFlow,
		validator: validator.New(),
	}
}

func (h *TariffHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *TariffHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// PurchaseTariff handles the tariff purchase process
func (h *TariffHandler) PurchaseTariff(c fiber.Ctx) error {
	var req dto.PurchaseTariffRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	// Validate request
	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	// Get client information
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	// Get authenticated carrier ID from context
	carrierID, ok := c.Locals("carrier_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Carrier ID not found in context", "MISSING_CARRIER_ID", nil)
	}
	req.CarrierID = carrierID

	result, err := h.orderFlow.PurchaseTariff(h.createRequestContext(c, "/api/v1/tariffs"), &req, metadata)
	if err != nil {
		if businessflow.IsCarrierNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusUnauthorized, "Carrier not found", "CARRIER_NOT_FOUND", nil)
		}
		if businessflow.IsCarrierInactive(err) {
			return h.ErrorResponse(c, fiber.StatusUnauthorized, "Carrier account is inactive", "CARRIER_INACTIVE", nil)
		}
		if businessflow.IsInvalidPricingMethod(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid pricing method", "INVALID_PRICING_METHOD", nil)
		}

		log.Println("Tariff purchase failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Tariff purchase failed", "TARIFF_PURCHASE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Tariff order created successfully", result)
}

// UpdateRates handles in-place rate edits on an existing order
func (h *TariffHandler) UpdateRates(c fiber.Ctx) error {
	orderUUID := c.Params("uuid")
	if orderUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Order UUID is required", "MISSING_ORDER_UUID", nil)
	}

	var req dto.UpdateRatesRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.UUID = orderUUID

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

	result, err := h.orderFlow.UpdateRates(h.createRequestContext(c, "/api/v1/tariffs/"+orderUUID+"/rates"), &req, metadata)
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
		if businessflow.IsOrderNotEditable(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Tariff order cannot be edited in current status", "ORDER_NOT_EDITABLE", nil)
		}
		if businessflow.IsMethodMismatch(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Pricing method changes require an approved request", "METHOD_MISMATCH", nil)
		}
		if businessflow.IsRegenerationBusy(err) {
			return h.ErrorResponse(c, fiber.StatusTooManyRequests, "Document regeneration queue is full, retry later", "REGENERATION_BUSY", nil)
		}

		log.Println("Rate update failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Rate update failed", "RATE_UPDATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Rates updated successfully", result)
}

// RenewTariff handles renewal of an expired order into a new validity period
func (h *TariffHandler) RenewTariff(c fiber.Ctx) error {
	orderUUID := c.Params("uuid")
	if orderUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Order UUID is required", "MISSING_ORDER_UUID", nil)
	}

	carrierID, ok := c.Locals("carrier_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Carrier ID not found in context", "MISSING_CARRIER_ID", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.orderFlow.RenewTariff(h.createRequestContext(c, "/api/v1/tariffs/"+orderUUID+"/renew"), orderUUID, carrierID, metadata)
	if err != nil {
		if businessflow.IsOrderNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Tariff order not found", "ORDER_NOT_FOUND", nil)
		}
		if businessflow.IsOrderAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Access denied: order belongs to another carrier", "ORDER_ACCESS_DENIED", nil)
		}
		if businessflow.IsOrderNotExpired(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Tariff order is not yet due for renewal", "ORDER_NOT_EXPIRED", nil)
		}

		log.Println("Tariff renewal failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Tariff renewal failed", "TARIFF_RENEWAL_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Tariff renewed successfully", result)
}

// GetTariff returns a single order owned by the authenticated carrier
func (h *TariffHandler) GetTariff(c fiber.Ctx) error {
	orderUUID := c.Params("uuid")
	if orderUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Order UUID is required", "MISSING_ORDER_UUID", nil)
	}

	carrierID, ok := c.Locals("carrier_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Carrier ID not found in context", "MISSING_CARRIER_ID", nil)
	}

	result, err := h.orderFlow.GetOrder(h.createRequestContext(c, "/api/v1/tariffs/"+orderUUID), orderUUID, carrierID)
	if err != nil {
		if businessflow.IsOrderNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Tariff order not found", "ORDER_NOT_FOUND", nil)
		}
		if businessflow.IsOrderAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Access denied: order belongs to another carrier", "ORDER_ACCESS_DENIED", nil)
		}

		log.Println("Tariff fetch failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Tariff fetch failed", "TARIFF_FETCH_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Tariff order retrieved successfully", result)
}

// ListTariffs returns the authenticated carrier's orders, paginated
func (h *TariffHandler) ListTariffs(c fiber.Ctx) error {
	carrierID, ok := c.Locals("carrier_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Carrier ID not found in context", "MISSING_CARRIER_ID", nil)
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "20"))

	req := &dto.ListTariffOrdersRequest{
		Page:      page,
		PageSize:  pageSize,
		CarrierID: carrierID,
	}

	result, err := h.orderFlow.ListOrders(h.createRequestContext(c, "/api/v1/tariffs"), req)
	if err != nil {
		if businessflow.IsInvalidPage(err) || businessflow.IsInvalidPageSize(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid pagination parameters", "INVALID_PAGINATION", nil)
		}

		log.Println("Tariff list failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Tariff list failed", "TARIFF_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Tariff orders retrieved successfully", result)
}

// createRequestContext creates a context with timeout and request-scoped values
func (h *TariffHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

// createRequestContextWithTimeout creates a context with custom timeout and request-scoped values
func (h *TariffHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	// Add request-scoped values for observability
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel) // Store cancel function for cleanup

	return ctx
}
