package businessflow

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/movedocs/tariffworks/app/dto"
	"github.com/movedocs/tariffworks/app/middleware"
	"github.com/movedocs/tariffworks/document"
	"github.com/movedocs/tariffworks/models"
	"github.com/movedocs/tariffworks/repository"
	"github.com/movedocs/tariffworks/utils"
)

// DocumentFlow owns the assemble-render-persist pipeline for tariff
// documents and the download path that serves the latest artifact.
type DocumentFlow interface {
	// Regenerate rebuilds the order's document from its current rates.
	// Safe to call concurrently; bursts of calls for the same order
	// collapse so only the newest state produces a persisted artifact.
	Regenerate(ctx context.Context, orderID uint, metadata *ClientMetadata) error

	// RegenerateByUUID is the owner-checked variant used by the API.
	RegenerateByUUID(ctx context.Context, orderUUID string, carrierID uint, metadata *ClientMetadata) error

	// Download returns the latest rendered document for the order.
	Download(ctx context.Context, orderUUID string, carrierID uint, metadata *ClientMetadata) (*dto.DocumentDownload, error)
}

type DocumentFlowImpl struct {
	orderRepo    repository.TariffOrderRepository
	carrierRepo  repository.CarrierProfileRepository
	documentRepo repository.TariffDocumentRepository
	auditRepo    repository.AuditLogRepository
	renderer     document.Renderer
	redisClient  *redis.Client
	locks        *orderLockTable
}

func NewDocumentFlow(
	orderRepo repository.TariffOrderRepository,
	carrierRepo repository.CarrierProfileRepository,
	documentRepo repository.TariffDocumentRepository,
	auditRepo repository.AuditLogRepository,
	renderer document.Renderer,
	redisClient *redis.Client,
) *DocumentFlowImpl {
	return &DocumentFlowImpl{
		orderRepo:    orderRepo,
		carrierRepo:  carrierRepo,
		documentRepo: documentRepo,
		auditRepo:    auditRepo,
		renderer:     renderer,
		redisClient:  redisClient,
		locks:        newOrderLockTable(),
	}
}

func (f *DocumentFlowImpl) Regenerate(ctx context.Context, orderID uint, metadata *ClientMetadata) error {
	generation := f.locks.bump(orderID)
	return f.regenerate(ctx, orderID, generation, metadata)
}

func (f *DocumentFlowImpl) RegenerateByUUID(ctx context.Context, orderUUID string, carrierID uint, metadata *ClientMetadata) error {
	orderID, err := uuid.Parse(orderUUID)
	if err != nil {
		return NewBusinessError("INVALID_ORDER_UUID", "Invalid order UUID", err)
	}

	order, err := f.orderRepo.ByUUID(ctx, orderID)
	if err != nil {
		return NewBusinessError("ORDER_FETCH_FAILED", "Failed to fetch tariff order", err)
	}
	if order == nil {
		return NewBusinessError("ORDER_NOT_FOUND", "Tariff order not found", ErrOrderNotFound)
	}
	if order.CarrierID != carrierID {
		return NewBusinessError("ORDER_ACCESS_DENIED", "Tariff order access denied", ErrOrderAccessDenied)
	}

	return f.Regenerate(ctx, order.ID, metadata)
}

func (f *DocumentFlowImpl) regenerate(ctx context.Context, orderID uint, generation uint64, metadata *ClientMetadata) error {
	if !f.locks.acquire(orderID) {
		return NewBusinessError("REGENERATION_BUSY", "Too many pending regenerations for this order", ErrRegenerationBusy)
	}
	defer f.locks.release(orderID)

	// A newer state change queued behind us while we waited; let its
	// regeneration do the work and keep the last good artifact meanwhile.
	if f.locks.current(orderID) != generation {
		return nil
	}

	order, err := f.orderRepo.ByID(ctx, orderID)
	if err != nil {
		return NewBusinessError("ORDER_FETCH_FAILED", "Failed to fetch tariff order", err)
	}
	if order == nil {
		return NewBusinessError("ORDER_NOT_FOUND", "Tariff order not found", ErrOrderNotFound)
	}

	carrier, err := f.carrierRepo.ByID(ctx, order.CarrierID)
	if err != nil {
		return NewBusinessError("CARRIER_FETCH_FAILED", "Failed to fetch carrier profile", err)
	}
	if carrier == nil {
		return NewBusinessError("CARRIER_NOT_FOUND", "Carrier profile not found", ErrCarrierNotFound)
	}

	blocks := document.BuildContentPlan(*carrier, order.Rates, *order)

	renderStart := time.Now()
	rendered, err := f.renderer.Render(ctx, blocks)
	if err != nil {
		middleware.ObserveDocumentGeneration("failed", 0)
		// Rendering failed: the previous document stays current so
		// downloads keep working while someone investigates.
		errMsg := err.Error()
		_ = saveAuditLog(ctx, f.auditRepo, &order.CarrierID, models.AuditActionDocumentGenerationFailed,
			fmt.Sprintf("Document generation failed for order %s", order.UUID), false, &errMsg, metadata)
		return NewBusinessError("DOCUMENT_RENDER_FAILED", "Document rendering failed", ErrRendererFailed)
	}

	// State moved on while we rendered; discard rather than persist a
	// document built from stale inputs.
	if f.locks.current(orderID) != generation {
		middleware.ObserveDocumentGeneration("superseded", 0)
		_ = saveAuditLog(ctx, f.auditRepo, &order.CarrierID, models.AuditActionRegenerationSuperseded,
			fmt.Sprintf("Regeneration superseded by a newer edit for order %s", order.UUID), true, nil, metadata)
		return nil
	}

	checksum := sha256.Sum256(rendered)
	doc := &models.TariffDocument{
		OrderID:       order.ID,
		DocType:       utils.DocTypeTariff,
		Checksum:      hex.EncodeToString(checksum[:]),
		SizeBytes:     int64(len(rendered)),
		Content:       rendered,
		EffectiveDate: order.EnrolledDate,
		ExpiryDate:    order.ExpiryDate,
		GeneratedAt:   utils.UTCNow(),
	}

	if err := f.documentRepo.Save(ctx, doc); err != nil {
		return NewBusinessError("DOCUMENT_SAVE_FAILED", "Failed to persist tariff document", err)
	}
	if err := f.documentRepo.SupersedePrior(ctx, order.ID, doc.ID); err != nil {
		return NewBusinessError("DOCUMENT_SUPERSEDE_FAILED", "Failed to supersede prior documents", err)
	}

	documentURL := fmt.Sprintf("/api/v1/tariffs/%s/document", order.UUID.String())
	order.DocumentURL = &documentURL
	if order.Status == models.OrderStatusPending {
		order.Status = models.OrderStatusCompleted
	}
	if err := f.orderRepo.Update(ctx, order); err != nil {
		return NewBusinessError("ORDER_UPDATE_FAILED", "Failed to update order document URL", err)
	}

	f.cacheArtifact(ctx, order.UUID, doc)
	middleware.ObserveDocumentGeneration("generated", time.Since(renderStart))

	_ = saveAuditLog(ctx, f.auditRepo, &order.CarrierID, models.AuditActionDocumentGenerated,
		fmt.Sprintf("Document generated for order %s (%d bytes)", order.UUID, doc.SizeBytes), true, nil, metadata)

	return nil
}

func (f *DocumentFlowImpl) Download(ctx context.Context, orderUUID string, carrierID uint, metadata *ClientMetadata) (*dto.DocumentDownload, error) {
	orderID, err := uuid.Parse(orderUUID)
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
	if order.CarrierID != carrierID {
		return nil, NewBusinessError("ORDER_ACCESS_DENIED", "Tariff order access denied", ErrOrderAccessDenied)
	}

	carrier, err := f.carrierRepo.ByID(ctx, order.CarrierID)
	if err != nil {
		return nil, NewBusinessError("CARRIER_FETCH_FAILED", "Failed to fetch carrier profile", err)
	}
	if carrier == nil {
		return nil, NewBusinessError("CARRIER_NOT_FOUND", "Carrier profile not found", ErrCarrierNotFound)
	}

	doc := f.cachedArtifact(ctx, order.UUID)
	if doc == nil {
		doc, err = f.documentRepo.LatestByOrder(ctx, order.ID)
		if err != nil {
			return nil, NewBusinessError("DOCUMENT_FETCH_FAILED", "Failed to fetch tariff document", err)
		}
		if doc == nil {
			return nil, NewBusinessError("DOCUMENT_NOT_FOUND", "No document has been generated for this order", ErrDocumentNotFound)
		}
		f.cacheArtifact(ctx, order.UUID, doc)
	}

	_ = saveAuditLog(ctx, f.auditRepo, &order.CarrierID, models.AuditActionDocumentDownloaded,
		fmt.Sprintf("Document downloaded for order %s", order.UUID), true, nil, metadata)

	return &dto.DocumentDownload{
		Filename:    DocumentFilename(doc.DocType, carrier.MCNumber),
		ContentType: utils.PDFContentType,
		Content:     doc.Content,
		Checksum:    doc.Checksum,
		GeneratedAt: doc.GeneratedAt.Format(time.RFC3339),
	}, nil
}

// DocumentFilename builds the artifact filename from the document type and
// the carrier's MC number, with filesystem-hostile characters stripped out
// of the MC number.
func DocumentFilename(docType, mcNumber string) string {
	return fmt.Sprintf("%s-%s.pdf", docType, SanitizeMCNumber(mcNumber))
}

// SanitizeMCNumber keeps letters, digits, and hyphens; everything else
// becomes a hyphen. Empty input falls back to "UNKNOWN".
func SanitizeMCNumber(mc string) string {
	var b strings.Builder
	for _, r := range mc {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "UNKNOWN"
	}
	return out
}

func artifactCacheKey(orderUUID uuid.UUID) string {
	return "tariffdoc:" + orderUUID.String()
}

// cacheArtifact stores the rendered bytes in redis so repeat downloads skip
// the database. Cache failures are logged and ignored.
func (f *DocumentFlowImpl) cacheArtifact(ctx context.Context, orderUUID uuid.UUID, doc *models.TariffDocument) {
	if f.redisClient == nil {
		return
	}
	key := artifactCacheKey(orderUUID)
	payload := doc.Checksum + "|" + doc.GeneratedAt.Format(time.RFC3339) + "|" + string(doc.Content)
	if err := f.redisClient.Set(ctx, key, payload, utils.ArtifactCacheTTL).Err(); err != nil {
		log.Printf("failed to cache document artifact %s: %v", key, err)
	}
}

func (f *DocumentFlowImpl) cachedArtifact(ctx context.Context, orderUUID uuid.UUID) *models.TariffDocument {
	if f.redisClient == nil {
		return nil
	}
	payload, err := f.redisClient.Get(ctx, artifactCacheKey(orderUUID)).Result()
	if err != nil {
		return nil
	}
	parts := strings.SplitN(payload, "|", 3)
	if len(parts) != 3 {
		return nil
	}
	generatedAt, err := time.Parse(time.RFC3339, parts[1])
	if err != nil {
		return nil
	}
	return &models.TariffDocument{
		DocType:     utils.DocTypeTariff,
		Checksum:    parts[0],
		SizeBytes:   int64(len(parts[2])),
		Content:     []byte(parts[2]),
		GeneratedAt: generatedAt,
	}
}
