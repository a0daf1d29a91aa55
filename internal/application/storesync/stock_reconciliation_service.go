package storesync

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/storesync/backend/internal/domain/shared"
	"github.com/storesync/backend/internal/domain/storesync"
	"github.com/storesync/backend/internal/infrastructure/telemetry"
)

// ReconcileStatus is the acknowledgement returned for a delivery
type ReconcileStatus string

const (
	StatusReceived  ReconcileStatus = "received"
	StatusDuplicate ReconcileStatus = "duplicate"
	// StatusPartial means a remote failure stopped the batch after earlier
	// adjustments were already applied.
	StatusPartial ReconcileStatus = "partial"
)

// Webhook and adjustment outcomes reported to metrics
const (
	outcomeApplied   = "applied"
	outcomeSkipped   = "skipped"
	outcomeNotFound  = "not_found"
	outcomeFailed    = "failed"
	outcomeRejected  = "rejected"
	outcomeDuplicate = "duplicate"
)

// Delivery is one inventory webhook request
type Delivery struct {
	Category       storesync.WebhookCategory
	OrganizationID string
	Signature      string
	DeliveryID     string
	Body           []byte
}

// ReconcileResult summarizes a processed delivery
type ReconcileResult struct {
	Status     ReconcileStatus
	StoreID    int64
	AuditID    int64
	Applied    int
	Skipped    int
	NotFound   int
	ArchiveKey string
}

// StockReconciliationService applies inventory webhook deltas to the
// storefront's stock levels.
type StockReconciliationService struct {
	validator         *storesync.SignatureValidator
	normalizers       *storesync.NormalizerRegistry
	resolver          *IdentityResolver
	audits            storesync.AuditRepository
	storefront        storesync.StorefrontConnector
	idempotency       shared.IdempotencyStore
	idempotencyTTL    time.Duration
	archive           PayloadArchive
	targetWarehouseID string
	metrics           MetricsRecorder
	logger            *zap.Logger
}

// StockReconciliationServiceConfig holds the service dependencies.
// Idempotency and Archive are optional.
type StockReconciliationServiceConfig struct {
	Validator         *storesync.SignatureValidator
	Normalizers       *storesync.NormalizerRegistry
	Resolver          *IdentityResolver
	Audits            storesync.AuditRepository
	Storefront        storesync.StorefrontConnector
	Idempotency       shared.IdempotencyStore
	IdempotencyTTL    time.Duration
	Archive           PayloadArchive
	TargetWarehouseID string
	Metrics           MetricsRecorder
	Logger            *zap.Logger
}

// NewStockReconciliationService creates a new StockReconciliationService
func NewStockReconciliationService(cfg StockReconciliationServiceConfig) *StockReconciliationService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := cfg.IdempotencyTTL
	if ttl <= 0 {
		ttl = shared.DefaultIdempotencyTTL
	}
	return &StockReconciliationService{
		validator:         cfg.Validator,
		normalizers:       cfg.Normalizers,
		resolver:          cfg.Resolver,
		audits:            cfg.Audits,
		storefront:        cfg.Storefront,
		idempotency:       cfg.Idempotency,
		idempotencyTTL:    ttl,
		archive:           cfg.Archive,
		targetWarehouseID: cfg.TargetWarehouseID,
		metrics:           metricsOrNoop(cfg.Metrics),
		logger:            logger,
	}
}

// Reconcile authenticates a delivery and applies its line items.
//
// Items that are filtered out by warehouse or have no local mapping are
// skipped. A failed storefront call stops the batch: the result is
// returned together with the error, with status StatusPartial. Adjustments
// applied before the failure are kept.
func (s *StockReconciliationService) Reconcile(ctx context.Context, d Delivery) (*ReconcileResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stock_reconciliation", "reconcile",
		telemetry.WithAttribute(telemetry.SpanAttrCategory, string(d.Category)),
		telemetry.WithAttribute(telemetry.SpanAttrDeliveryID, d.DeliveryID))
	defer span.End()

	category := string(d.Category)
	log := s.logger.With(zap.String("category", category), zap.String("delivery_id", d.DeliveryID))

	if err := s.validator.Validate(d.Body, d.Signature, d.Category); err != nil {
		log.Warn("Webhook signature rejected", zap.Error(err))
		s.metrics.RecordWebhook(ctx, category, outcomeRejected)
		telemetry.RecordError(span, err)
		return nil, err
	}

	key, fresh := s.claim(ctx, log, d)
	if !fresh {
		log.Info("Duplicate webhook delivery acknowledged", zap.String("idempotency_key", key))
		s.metrics.RecordWebhook(ctx, category, outcomeDuplicate)
		return &ReconcileResult{Status: StatusDuplicate}, nil
	}

	result, err := s.process(ctx, log, d)
	if err != nil && key != "" && (result == nil || result.Applied == 0) {
		if rErr := s.idempotency.Release(ctx, key); rErr != nil {
			log.Warn("Failed to release idempotency key", zap.String("idempotency_key", key), zap.Error(rErr))
		}
	}

	switch {
	case err == nil:
		s.metrics.RecordWebhook(ctx, category, string(StatusReceived))
		telemetry.SetOK(span)
	case result != nil && result.Status == StatusPartial:
		s.metrics.RecordWebhook(ctx, category, string(StatusPartial))
		telemetry.RecordError(span, err)
	default:
		s.metrics.RecordWebhook(ctx, category, outcomeFailed)
		telemetry.RecordError(span, err)
	}
	if result != nil {
		s.metrics.RecordAdjustment(ctx, category, outcomeApplied, result.Applied)
		s.metrics.RecordAdjustment(ctx, category, outcomeSkipped, result.Skipped)
		s.metrics.RecordAdjustment(ctx, category, outcomeNotFound, result.NotFound)
	}
	return result, err
}

// claim marks the delivery as seen. It returns the key it claimed ("" when
// deduplication is off or the store is unavailable) and whether the delivery
// is new. Store failures fail open.
func (s *StockReconciliationService) claim(ctx context.Context, log *zap.Logger, d Delivery) (string, bool) {
	if s.idempotency == nil {
		return "", true
	}
	key := DeliveryKey(d.Category, d.DeliveryID, d.Body)
	fresh, err := s.idempotency.MarkProcessed(ctx, key, s.idempotencyTTL)
	if err != nil {
		log.Warn("Idempotency store unavailable, processing delivery", zap.Error(err))
		return "", true
	}
	return key, fresh
}

func (s *StockReconciliationService) process(ctx context.Context, log *zap.Logger, d Delivery) (*ReconcileResult, error) {
	store, err := s.resolver.ResolveStore(ctx, d.OrganizationID)
	if err != nil {
		log.Warn("Webhook store not resolved", zap.String("organization_id", d.OrganizationID), zap.Error(err))
		return nil, err
	}
	log = log.With(zap.Int64("store_id", store.ID))

	audit := storesync.NewWebhookAudit(store.ID, d.Category, d.DeliveryID)
	if err := s.audits.Create(ctx, audit); err != nil {
		return nil, err
	}

	result := &ReconcileResult{Status: StatusReceived, StoreID: store.ID, AuditID: audit.ID}
	result.ArchiveKey = s.archivePayload(ctx, log, d, audit)

	normalizer, err := s.normalizers.For(d.Category)
	if err != nil {
		return nil, err
	}
	items, err := normalizer.Normalize(d.Body)
	if err != nil {
		log.Warn("Webhook payload rejected", zap.Error(err))
		return nil, err
	}

	gateway := s.storefront.Connect(store)
	for _, li := range items {
		if s.targetWarehouseID != "" && li.WarehouseID != s.targetWarehouseID {
			result.Skipped++
			continue
		}

		item, err := s.resolver.ResolveItem(ctx, store, li.InventoryItemID)
		if err != nil {
			if errors.Is(err, storesync.ErrItemNotFound) {
				log.Info("Skipping unmapped inventory item", zap.String("inventory_item_id", li.InventoryItemID))
				result.NotFound++
				continue
			}
			return nil, err
		}

		if err := gateway.AdjustProductStock(ctx, item.StorefrontItemID, li.Quantity); err != nil {
			log.Error("Storefront stock adjustment failed, aborting batch",
				zap.String("inventory_item_id", li.InventoryItemID),
				zap.Int64("storefront_item_id", item.StorefrontItemID),
				zap.Int64("quantity", li.Quantity),
				zap.Int("applied", result.Applied),
				zap.Error(err))
			result.Status = StatusPartial
			return result, err
		}
		result.Applied++

		if err := s.audits.AddItem(ctx, audit.NewItem(item.ID, li.Quantity)); err != nil {
			log.Error("Failed to record applied adjustment",
				zap.Int64("item_id", item.ID),
				zap.Int64("quantity", li.Quantity),
				zap.Error(err))
		}
	}

	log.Info("Webhook reconciled",
		zap.Int("applied", result.Applied),
		zap.Int("skipped", result.Skipped),
		zap.Int("not_found", result.NotFound))
	return result, nil
}

func (s *StockReconciliationService) archivePayload(ctx context.Context, log *zap.Logger, d Delivery, audit *storesync.WebhookAudit) string {
	if s.archive == nil {
		return ""
	}
	key, err := s.archive.Archive(ctx, ArchivedPayload{
		Source:     SourceInventory,
		Category:   string(d.Category),
		StoreRef:   d.OrganizationID,
		DeliveryID: d.DeliveryID,
		Body:       d.Body,
		ReceivedAt: audit.ReceivedAt,
	})
	if err != nil {
		log.Warn("Failed to archive webhook payload", zap.Error(err))
		return ""
	}
	return key
}
