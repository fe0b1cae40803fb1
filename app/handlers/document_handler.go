package handlers

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/movedocs/tariffworks/app/dto"
	businessflow "github.com/movedocs/tariffworks/business_flow"
	"github.com/movedocs/tariffworks/utils"
)

// DocumentHandlerInterface defines the contract for document handlers
type DocumentHandlerInterface interface {
	DownloadDocument(c fiber.Ctx) error
	DownloadRateSheet(c fiber.Ctx) error
	RegenerateDocument(c fiber.Ctx) error
}

// DocumentHandler serves generated tariff documents and rate sheet exports
type DocumentHandler struct {
	documentFlow  businessflow.DocumentFlow
	rateSheetFlow businessflow.RateSheetFlow
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(documentFlow businessflow.DocumentFlow, rateSheetFlow businessflow.RateSheetFlow) *DocumentHandler {
	return &DocumentHandler{
		documentFlow:  documentFlow,
		rateSheetFlow: rateSheetFlow,
	}
}

func (h *DocumentHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

// DownloadDocument streams the latest rendered tariff document for an order
func (h *DocumentHandler) DownloadDocument(c fiber.Ctx) error {
	orderUUID := c.Params("uuid")
	if orderUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Order UUID is required", "MISSING_ORDER_UUID", nil)
	}

	carrierID, ok := c.Locals("carrier_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Carrier ID not found in context", "MISSING_CARRIER_ID", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	download, err := h.documentFlow.Download(h.createRequestContext(c, "/api/v1/tariffs/"+orderUUID+"/document"), orderUUID, carrierID, metadata)
	if err != nil {
		if businessflow.IsOrderNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Tariff order not found", "ORDER_NOT_FOUND", nil)
		}
		if businessflow.IsOrderAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Access denied: order belongs to another carrier", "ORDER_ACCESS_DENIED", nil)
		}
		if businessflow.IsDocumentNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "No document has been generated for this order", "DOCUMENT_NOT_FOUND", nil)
		}

		log.Println("Document download failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Document download failed", "DOCUMENT_DOWNLOAD_FAILED", nil)
	}

	c.Set("Content-Type", download.ContentType)
	c.Set("Content-Disposition", "attachment; filename="+download.Filename)
	c.Set("X-Document-Checksum", download.Checksum)
	return c.Send(download.Content)
}

// DownloadRateSheet streams the order's rate schedule as an Excel workbook
func (h *DocumentHandler) DownloadRateSheet(c fiber.Ctx) error {
	orderUUID := c.Params("uuid")
	if orderUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Order UUID is required", "MISSING_ORDER_UUID", nil)
	}

	carrierID, ok := c.Locals("carrier_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Carrier ID not found in context", "MISSING_CARRIER_ID", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	filename, data, err := h.rateSheetFlow.ExportRateSheet(h.createRequestContext(c, "/api/v1/tariffs/"+orderUUID+"/rate-sheet"), orderUUID, carrierID, metadata)
	if err != nil {
		if businessflow.IsOrderNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Tariff order not found", "ORDER_NOT_FOUND", nil)
		}
		if businessflow.IsOrderAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Access denied: order belongs to another carrier", "ORDER_ACCESS_DENIED", nil)
		}

		log.Println("Rate sheet export failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Rate sheet export failed", "RATE_SHEET_EXPORT_FAILED", nil)
	}

	c.Set("Content-Type", utils.XLSXContentType)
	c.Set("Content-Disposition", "attachment; filename="+filename)
	return c.Send(data)
}

// RegenerateDocument forces a rebuild of the order's document from its
// current rates. Useful after a renderer fix or template update.
func (h *DocumentHandler) RegenerateDocument(c fiber.Ctx) error {
	orderUUID := c.Params("uuid")
	if orderUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Order UUID is required", "MISSING_ORDER_UUID", nil)
	}

	carrierID, ok := c.Locals("carrier_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Carrier ID not found in context", "MISSING_CARRIER_ID", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	ctx := h.createRequestContext(c, "/api/v1/tariffs/"+orderUUID+"/document/regenerate")

	if err := h.documentFlow.RegenerateByUUID(ctx, orderUUID, carrierID, metadata); err != nil {
		if businessflow.IsOrderNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Tariff order not found", "ORDER_NOT_FOUND", nil)
		}
		if businessflow.IsOrderAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Access denied: order belongs to another carrier", "ORDER_ACCESS_DENIED", nil)
		}
		if businessflow.IsRegenerationBusy(err) {
			return h.ErrorResponse(c, fiber.StatusTooManyRequests, "Document regeneration queue is full, retry later", "REGENERATION_BUSY", nil)
		}
		if businessflow.IsRendererFailed(err) {
			return h.ErrorResponse(c, fiber.StatusInternalServerError, "Document rendering failed; previous document remains available", "DOCUMENT_RENDER_FAILED", nil)
		}

		log.Println("Document regeneration failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Document regeneration failed", "DOCUMENT_REGENERATION_FAILED", nil)
	}

	return c.Status(fiber.StatusAccepted).JSON(dto.APIResponse{
		Success: true,
		Message: "Document regenerated",
	})
}

// createRequestContext creates a context with timeout and request-scoped values
func (h *DocumentHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)

	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)

	return ctx
}
